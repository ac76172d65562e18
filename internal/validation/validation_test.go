package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEntryID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"1crn", "1CRN", false},
		{" 4HHB ", "4HHB", false},
		{"pdb_00001crn", "PDB_00001CRN", false},
		{"", "", true},
		{"0ABC", "", true}, // leading zero is not a valid code
		{"ABCD", "", true},
		{"1CR", "", true},
		{"1CRN5", "", true},
		{"1C-N", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeEntryID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, IsEntryID("2hhb"))
	assert.False(t, IsEntryID("hemoglobin"))
}

func TestParseDeepLink(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    DeepLink
		wantOK  bool
		wantErr bool
	}{
		{"empty", "", DeepLink{}, false, false},
		{"query only", "?pdb=4hhb&title=HEMOGLOBIN", DeepLink{ID: "4HHB", Title: "HEMOGLOBIN"}, true, false},
		{"bare", "pdb=1CRN", DeepLink{ID: "1CRN"}, true, false},
		{"full url", "https://example.org/?pdb=1CRN&title=1CRN%20-%20CRAMBIN", DeepLink{ID: "1CRN", Title: "1CRN - CRAMBIN"}, true, false},
		{"no pdb", "?title=orphan", DeepLink{}, false, false},
		{"bad id", "?pdb=nope", DeepLink{}, false, true},
		{"bad escape", "?pdb=%zz", DeepLink{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseDeepLink(tt.link)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDeepLink(t *testing.T) {
	_, _, err := NewDeepLink("1CRN", "line\nbreak")
	assert.Error(t, err)

	link, ok, err := NewDeepLink("1crn", "CRAMBIN")
	require.NoError(t, err)
	require.True(t, ok)

	back, ok, err := ParseDeepLink(link.Query())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, link, back)
}

func TestEndpointValidator(t *testing.T) {
	strict := NewEndpointValidator()
	permissive := NewPermissiveEndpointValidator()

	tests := []struct {
		name          string
		input         string
		want          string
		strictErr     bool
		permissiveErr bool
	}{
		{"rcsb search", "https://search.rcsb.org/rcsbsearch/v2/query", "https://search.rcsb.org/rcsbsearch/v2/query", false, false},
		{"trailing slash", "https://files.rcsb.org/download/", "https://files.rcsb.org/download", false, false},
		{"plain http", "http://mirror.example.org/graphql", "http://mirror.example.org/graphql", true, false},
		{"localhost", "http://localhost:8080/query", "http://localhost:8080/query", true, false},
		{"private ip", "https://192.168.1.10/graphql", "https://192.168.1.10/graphql", true, false},
		{"empty", "  ", "", true, true},
		{"ftp", "ftp://files.rcsb.org/download", "", true, true},
		{"no host", "https:///query", "", true, true},
		{"query string", "https://data.rcsb.org/graphql?x=1", "", true, true},
		{"bad chars", "https://data.rcsb.org/<graphql>", "", true, true},
		{"too long", "https://data.rcsb.org/" + strings.Repeat("a", 2100), "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := strict.ValidateAndNormalize(tt.input)
			if tt.strictErr {
				assert.Error(t, err, "strict")
			} else {
				require.NoError(t, err, "strict")
				assert.Equal(t, tt.want, got)
			}

			got, err = permissive.ValidateAndNormalize(tt.input)
			if tt.permissiveErr {
				assert.Error(t, err, "permissive")
			} else {
				require.NoError(t, err, "permissive")
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPrepareFilePath(t *testing.T) {
	dir := t.TempDir()

	path, err := PrepareFilePath(filepath.Join(dir, "nested", "cache.db"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))

	info, err := os.Stat(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = PrepareFilePath(dir)
	assert.Error(t, err, "a directory cannot hold the cache")

	_, err = PrepareFilePath("")
	assert.Error(t, err)

	_, err = PrepareFilePath("bad\x00path")
	assert.Error(t, err)
}

func TestDefaultDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pdbscope"), dir)
}
