package backend

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"zkforge/internal/workspace"
)

//go:embed templates
var templateFS embed.FS

// EnsureHome materializes each backend's base files and workspace skeleton
// under the zkforge home directory. Base templates are rewritten on every
// call so they stay pristine; the persisted metrics helper is only written
// when missing, matching its preserved-across-purge lifecycle.
func EnsureHome(home string) error {
	for _, b := range []Backend{sp1Backend, risc0Backend} {
		for _, dir := range []string{
			filepath.Join(home, b.GuestDir, "src"),
			filepath.Join(home, b.HostDir, "src"),
			filepath.Dir(filepath.Join(home, b.BaseHost)),
		} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}

		base := "templates/" + b.Name
		pristine := map[string]string{
			base + "/host":        filepath.Join(home, b.BaseHost),
			base + "/cargo_guest": filepath.Join(home, b.BaseGuestManifest),
			base + "/cargo_host":  filepath.Join(home, b.BaseHostManifest),
		}
		for src, dst := range pristine {
			if err := materialize(src, dst); err != nil {
				return err
			}
		}

		for src, rel := range b.Scaffold {
			dst := filepath.Join(home, rel)
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
			}
			if err := materialize(base+"/"+src, dst); err != nil {
				return err
			}
		}

		helper := filepath.Join(home, b.HostDir, "src", workspace.PreservedHelper)
		if _, err := os.Stat(helper); os.IsNotExist(err) {
			if err := materialize(base+"/metrics.rs", helper); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResetHost restores the generated host entrypoint from the pristine base
// template. Runs after every invocation, success or failure, so a later run
// never builds on top of spliced output.
func ResetHost(home string, b Backend) error {
	data, err := os.ReadFile(filepath.Join(home, b.BaseHost))
	if err != nil {
		return fmt.Errorf("read base host template: %w", err)
	}
	if err := os.WriteFile(filepath.Join(home, b.HostMain), data, 0o644); err != nil {
		return fmt.Errorf("reset host program: %w", err)
	}
	return nil
}

func materialize(src, dst string) error {
	data, err := templateFS.ReadFile(src)
	if err != nil {
		return fmt.Errorf("embedded template %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write template %s: %w", dst, err)
	}
	return nil
}
