package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/wordgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOptions(recursive bool) DiscoveryOptions {
	return DiscoveryOptions{Recursive: recursive, IncludePatterns: DefaultIncludePatterns}
}

func TestDiscoverModelFiles_EmptyArgs(t *testing.T) {
	files, err := DiscoverModelFiles(nil, defaultOptions(false))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverModelFiles_SingleFiles(t *testing.T) {
	dir := t.TempDir()
	txt := testutil.WriteFile(t, dir, "a.txt", testutil.CatSatText)
	yml := testutil.WriteFile(t, dir, "b.yml", "words: []")
	md := testutil.WriteFile(t, dir, "notes.md", "# notes")

	files, err := DiscoverModelFiles([]string{txt, md, yml}, defaultOptions(false))
	require.NoError(t, err)
	assert.Equal(t, []string{txt, yml}, files)
}

func TestDiscoverModelFiles_Directory(t *testing.T) {
	dir := t.TempDir()
	b := testutil.WriteFile(t, dir, "b.json", "{}")
	a := testutil.WriteFile(t, dir, "a.txt", testutil.CatSatText)
	testutil.WriteFile(t, dir, "readme.md", "x")
	testutil.WriteFile(t, dir, "sub/c.txt", testutil.CatSatText)

	files, err := DiscoverModelFiles([]string{dir}, defaultOptions(false))
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestDiscoverModelFiles_Recursive(t *testing.T) {
	dir := t.TempDir()
	root := testutil.WriteFile(t, dir, "root.txt", testutil.CatSatText)
	sub := testutil.WriteFile(t, dir, "sub/nested.yaml", "words: []")

	files, err := DiscoverModelFiles([]string{dir}, defaultOptions(true))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root, sub}, files)
}

func TestDiscoverModelFiles_IncludeExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	m1 := testutil.WriteFile(t, dir, "model1.txt", "")
	m2 := testutil.WriteFile(t, dir, "model2.txt", "")
	draft := testutil.WriteFile(t, dir, "draft.txt", "")

	files, err := DiscoverModelFiles([]string{dir}, DiscoveryOptions{
		IncludePatterns: []string{"*.txt"},
		ExcludePatterns: []string{"draft*"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{m1, m2}, files)
	assert.NotContains(t, files, draft)
}

func TestDiscoverModelFiles_NoIncludePatterns(t *testing.T) {
	dir := t.TempDir()
	md := testutil.WriteFile(t, dir, "x.md", "")

	files, err := DiscoverModelFiles([]string{dir}, DiscoveryOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{md}, files)
}

func TestDiscoverModelFiles_Missing(t *testing.T) {
	files, err := DiscoverModelFiles([]string{filepath.Join(t.TempDir(), "missing")}, defaultOptions(false))
	require.Error(t, err)
	assert.Nil(t, files)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestDiscoverModelFiles_UnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o700) })

	_, err := DiscoverModelFiles([]string{dir}, defaultOptions(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning")
}

func TestMatchesAnyPattern(t *testing.T) {
	testCases := []struct {
		filename string
		patterns []string
		expected bool
	}{
		{"model.txt", []string{"*.txt"}, true},
		{"model.TXT", []string{"*.txt"}, false},
		{"model.yaml", []string{"*.txt", "*.yaml"}, true},
		{"dir/model.json", []string{"model.*"}, true},
		{"model.txt", nil, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, matchesAnyPattern(tc.filename, tc.patterns),
			"filename=%s, patterns=%v", tc.filename, tc.patterns)
	}
}
