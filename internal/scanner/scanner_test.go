package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func validDoc(name string) string {
	return "# " + name + "\n## Function Syntax\n```\nint " + name + "()\n```\n## Description\nDoes " + name + " things.\n"
}

func TestScan_MixedCorpus(t *testing.T) {
	tmpDir := t.TempDir()
	writeDoc(t, tmpDir, "alpha.md", validDoc("alpha"))
	writeDoc(t, tmpDir, "beta.md", validDoc("beta"))
	writeDoc(t, tmpDir, "broken.md", "just prose, no headings at all\n")
	writeDoc(t, tmpDir, "notes.txt", "ignored extension")

	sub := filepath.Join(tmpDir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	writeDoc(t, sub, "gamma.md", validDoc("gamma"))

	docs, failures := New().Scan([]string{tmpDir})

	names := make(map[string]bool)
	for _, d := range docs {
		names[d.Name] = true
	}
	assert.True(t, names["alpha"])
	assert.True(t, names["beta"])
	assert.True(t, names["gamma"])
	assert.Len(t, docs, 3)

	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Path, "broken.md")
}

func TestScan_SkipsHiddenDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	hidden := filepath.Join(tmpDir, ".cache")
	require.NoError(t, os.Mkdir(hidden, 0755))
	writeDoc(t, hidden, "skip.md", validDoc("skip"))
	writeDoc(t, tmpDir, "keep.md", validDoc("keep"))

	docs, failures := New().Scan([]string{tmpDir})
	require.Len(t, docs, 1)
	assert.Equal(t, "keep", docs[0].Name)
	assert.Empty(t, failures)
}

func TestScan_MultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeDoc(t, rootA, "a.md", validDoc("fromA"))
	writeDoc(t, rootB, "b.md", validDoc("fromB"))

	docs, failures := New().Scan([]string{rootA, rootB})
	assert.Len(t, docs, 2)
	assert.Empty(t, failures)
}

func TestScan_MissingRoot(t *testing.T) {
	docs, failures := New().Scan([]string{filepath.Join(t.TempDir(), "absent")})
	assert.Empty(t, docs)
	assert.Empty(t, failures, "a missing root is a traversal error, not a document failure")
}

func TestScanForName(t *testing.T) {
	tmpDir := t.TempDir()
	writeDoc(t, tmpDir, "settimer.md", validDoc("setTimer"))
	writeDoc(t, tmpDir, "canceltimer.md", validDoc("cancelTimer"))
	writeDoc(t, tmpDir, "output.md", validDoc("output"))

	matches := New().ScanForName("timer", []string{tmpDir}, 10)
	require.Len(t, matches, 2)
	for _, m := range matches {
		require.NotNil(t, m.Doc)
		assert.Contains(t, m.Doc.Name, "Timer")
	}
}

func TestScanForName_CaseInsensitive(t *testing.T) {
	tmpDir := t.TempDir()
	writeDoc(t, tmpDir, "settimer.md", validDoc("setTimer"))

	matches := New().ScanForName("SETTIMER", []string{tmpDir}, 10)
	assert.Len(t, matches, 1)
}

func TestScanForName_CapsResults(t *testing.T) {
	tmpDir := t.TempDir()
	for _, n := range []string{"timerOne", "timerTwo", "timerThree"} {
		writeDoc(t, tmpDir, n+".md", validDoc(n))
	}

	matches := New().ScanForName("timer", []string{tmpDir}, 2)
	assert.Len(t, matches, 2)
}

func TestScanForName_UnparsedMatch(t *testing.T) {
	tmpDir := t.TempDir()
	writeDoc(t, tmpDir, "index.md", "Overview of all timer functions.\n")

	matches := New().ScanForName("timer", []string{tmpDir}, 10)
	require.Len(t, matches, 1)
	assert.Nil(t, matches[0].Doc, "matched file with no record keeps a nil Doc")
}
