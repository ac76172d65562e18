package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePDB_Crambin(t *testing.T) {
	h := ParsePDB([]byte(crambin))

	assert.Equal(t, "PLANT PROTEIN", h.Classification)
	assert.Equal(t, "30-APR-81", h.Deposited)
	assert.Equal(t, "1CRN", h.IDCode)
	assert.Equal(t, "WATER STRUCTURE OF A HYDROPHOBIC PROTEIN AT ATOMIC RESOLUTION. PENTAGON RINGS OF WATER MOLECULES IN CRYSTALS OF CRAMBIN", h.Title)
	assert.Equal(t, "X-RAY DIFFRACTION", h.Method)
	res, ok := h.Resolution.Get()
	assert.True(t, ok)
	assert.InDelta(t, 1.5, res, 1e-9)
	assert.Equal(t, 1, h.Models)
	assert.Equal(t, 6, h.Atoms)
	assert.Equal(t, 1, h.HetAtoms)
	assert.Equal(t, 1, h.Waters)
	assert.Equal(t, []Chain{{ID: "A", Residues: 3, Atoms: 6}}, h.Chains)
	assert.Equal(t, []string{"EOH"}, h.Ligands)
}

func TestParsePDB_FirstModelOnly(t *testing.T) {
	h := ParsePDB([]byte(nmrModels))

	assert.Equal(t, 2, h.Models)
	assert.Equal(t, 3, h.Atoms)
	assert.False(t, h.Resolution.Valid)
	assert.Equal(t, []Chain{
		{ID: "A", Residues: 1, Atoms: 2},
		{ID: "B", Residues: 1, Atoms: 1},
	}, h.Chains)
}

func TestParsePDB_Garbage(t *testing.T) {
	h := ParsePDB([]byte("not a pdb file\nATOM\n\n"))
	assert.Zero(t, h.Atoms)
	assert.Empty(t, h.Chains)
	assert.Zero(t, h.Models)
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  float64
		valid bool
	}{
		{"stated", "REMARK   2 RESOLUTION.    1.74 ANGSTROMS.", 1.74, true},
		{"nmr", "REMARK   2 RESOLUTION. NOT APPLICABLE.", 0, false},
		{"zero is a value", "REMARK   2 RESOLUTION.    0.00 ANGSTROMS.", 0, true},
		{"other remark", "REMARK   2", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseResolution(tt.line)
			assert.Equal(t, tt.valid, got.Valid)
			assert.InDelta(t, tt.want, got.Or(0), 1e-9)
		})
	}
}
