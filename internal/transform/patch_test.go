package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestReplaceAll(t *testing.T) {
	path := writeFile(t, "alpha beta alpha gamma")

	require.NoError(t, ReplaceAll(path, "alpha", "delta"))
	assert.Equal(t, "delta beta delta gamma", readFile(t, path))

	// Removing a block entirely.
	require.NoError(t, ReplaceAll(path, "delta ", ""))
	assert.Equal(t, "beta gamma", readFile(t, path))
}

func TestInsertAfter(t *testing.T) {
	t.Run("inserts after first occurrence", func(t *testing.T) {
		path := writeFile(t, "header\nMARK\nfooter\nMARK\n")

		require.NoError(t, InsertAfter(path, "MARK", "inserted"))

		want := "header\nMARK\ninserted\n\nfooter\nMARK\n"
		if diff := cmp.Diff(want, readFile(t, path)); diff != "" {
			t.Errorf("file content mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing marker is a no-op", func(t *testing.T) {
		path := writeFile(t, "nothing to see\n")

		require.NoError(t, InsertAfter(path, "ABSENT", "inserted"))
		assert.Equal(t, "nothing to see\n", readFile(t, path))
	})

	t.Run("missing marker warns through the global logger", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		restore := zap.ReplaceGlobals(zap.New(core))
		defer restore()

		path := writeFile(t, "nothing to see\n")
		require.NoError(t, InsertAfter(path, "ABSENT", "inserted"))

		entries := logs.FilterMessage("insertion marker not found, leaving file unchanged").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "ABSENT", entries[0].ContextMap()["marker"])
	})
}

func TestRemoveLines(t *testing.T) {
	path := writeFile(t, "keep\ndrop this one\nkeep too\nalso drop\n")

	require.NoError(t, RemoveLines(path, "drop"))
	assert.Equal(t, "keep\nkeep too\n", readFile(t, path))
}

func TestPrepend(t *testing.T) {
	path := writeFile(t, "body\n")

	require.NoError(t, Prepend(path, "head\n"))
	assert.Equal(t, "head\nbody\n", readFile(t, path))
}
