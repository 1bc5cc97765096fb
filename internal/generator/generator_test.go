package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkforge/internal/backend"
)

func TestWriteGuest(t *testing.T) {
	b := backend.For(backend.SP1)

	t.Run("assembles header, imports and wrapped body", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "main.rs")
		imports := "use sha2::Sha256;\n"
		body := "let n: u32 = zkio::read();\n    zkio::commit(&n);"

		require.NoError(t, WriteGuest(imports, body, b, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		guest := string(data)

		assert.True(t, strings.HasPrefix(guest, b.GuestHeader))
		assert.Contains(t, guest, imports)
		assert.Contains(t, guest, "pub fn main() {")
		assert.Contains(t, guest, "cycle-tracker-report-start")
		assert.Contains(t, guest, "cycle-tracker-report-end")
		assert.Contains(t, guest, "let n: u32 = sp1_zkvm::io::read();")
		assert.Contains(t, guest, "sp1_zkvm::io::commit(&n);")
		assert.NotContains(t, guest, "zkio::")
	})

	t.Run("overwrites prior content", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "main.rs")
		require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o644))

		require.NoError(t, WriteGuest("", "", b, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "stale")
	})
}

func TestWriteHost(t *testing.T) {
	b := backend.For(backend.SP1)

	template := `use sp1_sdk::SP1Stdin;

fn main() {
    let mut stdin = SP1Stdin::new();

    // INPUT //

    let proof = prove(&stdin);

    // OUTPUT //
}
`

	t.Run("splices bodies and remaps tokens", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "host")
		require.NoError(t, os.WriteFile(base, []byte(template), 0o644))
		dst := filepath.Join(dir, "main.rs")

		inputBody := "let a = 1;\n    zkio::write(&a).unwrap();"
		outputBody := "let res: u32 = zkio::out();\n    println!(\"done\");"
		imports := "use demo::check;\n"

		require.NoError(t, WriteHost(inputBody, outputBody, imports, b, base, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		host := string(data)

		assert.True(t, strings.HasPrefix(host, imports))
		assert.Contains(t, host, "let a = 1;")
		assert.Contains(t, host, "stdin.write(&a).unwrap();")
		assert.Contains(t, host, "let res: u32 = proof.public_values.read();")
		assert.NotContains(t, host, backend.InputMarker)
		assert.NotContains(t, host, backend.OutputMarker)
		assert.NotContains(t, host, "zkio::")
	})

	t.Run("leaves every other template line unchanged", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "host")
		require.NoError(t, os.WriteFile(base, []byte(template), 0o644))
		dst := filepath.Join(dir, "main.rs")

		require.NoError(t, WriteHost("let a = 1;", "println!(\"done\");", "", b, base, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)

		want := strings.ReplaceAll(template, backend.InputMarker, "let a = 1;")
		want = strings.ReplaceAll(want, backend.OutputMarker, "println!(\"done\");")
		if diff := cmp.Diff(want, string(data)); diff != "" {
			t.Errorf("generated host mismatch (-want +got):\n%s", diff)
		}
	})
}
