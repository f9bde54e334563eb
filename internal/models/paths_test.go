package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/wordgen/internal/model"
	"github.com/MeKo-Tech/wordgen/internal/testutil"
)

func TestGetModelsDir(t *testing.T) {
	tests := []struct {
		name           string
		explicitDir    string
		envVar         string
		expectedResult string
	}{
		{"explicit directory takes precedence", "/explicit/path", "/env/path", "/explicit/path"},
		{"environment variable used when no explicit dir", "", "/env/path", "/env/path"},
		{"default when nothing is set", "", "", DefaultModelsDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvModelsDir, tt.envVar)
			assert.Equal(t, tt.expectedResult, GetModelsDir(tt.explicitDir))
		})
	}
}

func TestResolveModelPath(t *testing.T) {
	dir := t.TempDir()
	txt := testutil.WriteFile(t, dir, "catsat.txt", testutil.CatSatText)
	yml := testutil.WriteFile(t, dir, "garden.yml", "words: []\n")
	t.Setenv(EnvModelsDir, "")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"existing path is kept", txt, txt},
		{"stdin marker is kept", "-", "-"},
		{"empty is kept", "", ""},
		{"bare name gets an extension", "catsat", txt},
		{"later extensions are tried", "garden", yml},
		{"file name inside models dir", "catsat.txt", txt},
		{"unknown name is returned unchanged", "nothing", "nothing"},
		{"absolute path is not searched", "/no/such/catsat", "/no/such/catsat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveModelPath(dir, tt.ref))
		})
	}
}

func TestResolveModelPath_Environment(t *testing.T) {
	dir := t.TempDir()
	want := testutil.WriteFile(t, dir, "catsat.json", "{}")
	t.Setenv(EnvModelsDir, dir)

	assert.Equal(t, want, ResolveModelPath("", "catsat"))
}

func TestValidateModelExists(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "m.txt", testutil.CatSatText)

	require.NoError(t, ValidateModelExists(path))
	err := ValidateModelExists(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file not found")
}

func TestListAvailableModels(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "b.yaml", "words: []\n")
	testutil.WriteFile(t, dir, "a.txt", testutil.CatSatText)
	testutil.WriteFile(t, dir, "notes.md", "ignored")
	testutil.WriteFile(t, filepath.Join(dir, "sub"), "c.txt", testutil.CatSatText)

	list, err := ListAvailableModels(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, model.FormatText, list[0].Format)
	assert.Equal(t, int64(len(testutil.CatSatText)), list[0].Size)
	assert.Equal(t, "b", list[1].Name)
	assert.Equal(t, model.FormatYAML, list[1].Format)

	missing, err := ListAvailableModels(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}
