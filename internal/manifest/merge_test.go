package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readManifest(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMergeDependencies(t *testing.T) {
	t.Run("appends missing keys only", func(t *testing.T) {
		dir := t.TempDir()
		src := writeManifest(t, dir, "src.toml", "[dependencies]\nserde = \"1.0\"\nrand = \"0.8\"\n")
		dst := writeManifest(t, dir, "dst.toml", "[package]\nname = \"guest\"\n\n[dependencies]\nserde = \"0.9\"\n")

		require.NoError(t, MergeDependencies(src, dst))

		merged := readManifest(t, dst)
		assert.Equal(t, 1, strings.Count(merged, "serde"), "existing key must not be duplicated")
		assert.Contains(t, merged, "serde = \"0.9\"", "destination specification wins")
		assert.NotContains(t, merged, "serde = \"1.0\"")
		assert.Contains(t, merged, "rand = \"0.8\"")
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		src := writeManifest(t, dir, "src.toml", "[dependencies]\nserde = \"1.0\"\nsha2 = \"0.10\"\n")
		dst := writeManifest(t, dir, "dst.toml", "[dependencies]\n")

		require.NoError(t, MergeDependencies(src, dst))
		once := readManifest(t, dst)
		require.NoError(t, MergeDependencies(src, dst))
		twice := readManifest(t, dst)

		assert.Equal(t, once, twice)
	})

	t.Run("section bounded by next header", func(t *testing.T) {
		dir := t.TempDir()
		src := writeManifest(t, dir, "src.toml",
			"[dependencies]\nserde = \"1.0\"\n\n[dev-dependencies]\nquickcheck = \"1\"\n")
		dst := writeManifest(t, dir, "dst.toml", "[dependencies]\n")

		require.NoError(t, MergeDependencies(src, dst))

		merged := readManifest(t, dst)
		assert.Contains(t, merged, "serde = \"1.0\"")
		assert.NotContains(t, merged, "quickcheck", "dev-dependencies are outside the merged section")
	})

	t.Run("destination without section gets a header", func(t *testing.T) {
		dir := t.TempDir()
		src := writeManifest(t, dir, "src.toml", "[dependencies]\nserde = \"1.0\"\n")
		dst := writeManifest(t, dir, "dst.toml", "[package]\nname = \"host\"\n")

		require.NoError(t, MergeDependencies(src, dst))

		merged := readManifest(t, dst)
		assert.Contains(t, merged, DependenciesHeader)
		assert.Contains(t, merged, "serde = \"1.0\"")
	})

	t.Run("source without section fails", func(t *testing.T) {
		dir := t.TempDir()
		src := writeManifest(t, dir, "src.toml", "[package]\nname = \"guest\"\n")
		dst := writeManifest(t, dir, "dst.toml", "[dependencies]\n")

		err := MergeDependencies(src, dst)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoDependenciesSection)
	})

	t.Run("nothing new is a no-op", func(t *testing.T) {
		dir := t.TempDir()
		src := writeManifest(t, dir, "src.toml", "[dependencies]\nserde = \"1.0\"\n")
		dst := writeManifest(t, dir, "dst.toml", "[dependencies]\nserde = { version = \"1.0\", features = [\"derive\"] }\n")

		before := readManifest(t, dst)
		require.NoError(t, MergeDependencies(src, dst))
		assert.Equal(t, before, readManifest(t, dst))
	})
}

func TestReadMetadata(t *testing.T) {
	t.Run("full package table", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "Cargo.toml", `[package]
name = "fibonacci"
version = "0.1.0"
authors = ["dev@example.com"]
edition = "2021"

[dependencies]
serde = "1.0"
sha2 = "0.10"
`)

		md := ReadMetadata(dir)
		assert.Equal(t, "fibonacci", md.PackageName)
		assert.Equal(t, "0.1.0", md.Version)
		assert.Equal(t, []string{"dev@example.com"}, md.Authors)
		assert.Equal(t, "2021", md.Edition)
		assert.Equal(t, []string{"serde", "sha2"}, md.Dependencies)
	})

	t.Run("missing manifest yields zero value", func(t *testing.T) {
		md := ReadMetadata(t.TempDir())
		assert.Equal(t, Metadata{}, md)
	})
}
