package rcsb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryDetail_Meta(t *testing.T) {
	tests := []struct {
		name   string
		detail EntryDetail
		want   string
	}{
		{
			name: "all known",
			detail: EntryDetail{
				ExperimentalMethod: Some("X-ray"),
				Resolution:         Some(1.7),
				MolecularWeight:    Some(1064.738),
			},
			want: "X-ray · 1.70 Å · 1,064.74 kDa",
		},
		{
			name:   "method only",
			detail: EntryDetail{ExperimentalMethod: Some("NMR")},
			want:   "NMR",
		},
		{
			name:   "nothing known",
			detail: EntryDetail{},
			want:   "N/A",
		},
		{
			name:   "zero resolution is still shown",
			detail: EntryDetail{Resolution: Some(0.0)},
			want:   "N/A · 0.00 Å",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.detail.Meta())
		})
	}
}

func TestGroupByMethod(t *testing.T) {
	entries := []EntryDetail{
		{ID: "A", ExperimentalMethod: Some("X-ray"), Resolution: Some(2.0), MolecularWeight: Some(10.0)},
		{ID: "B", ExperimentalMethod: Some("EM"), Resolution: Some(3.1), MolecularWeight: Some(900.0)},
		{ID: "C", ExperimentalMethod: Some("EM"), Resolution: Some(2.8), MolecularWeight: Some(500.0)},
		{ID: "D", Resolution: Some(1.0), MolecularWeight: Some(5.0)},
		{ID: "E", ExperimentalMethod: Some("NMR"), MolecularWeight: Some(8.0)}, // not plottable
	}

	groups := GroupByMethod(entries)

	var methods []string
	for _, g := range groups {
		methods = append(methods, g.Method)
	}
	assert.Equal(t, []string{"EM", "X-ray", OtherMethod}, methods)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, "D", groups[2].Entries[0].ID)

	assert.Empty(t, GroupByMethod(nil))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, NotAvailable, FormatResolution(None[float64]()))
	assert.Equal(t, NotAvailable, FormatWeight(None[float64]()))
	assert.Equal(t, "64.74 kDa", FormatWeight(Some(64.738)))
}
