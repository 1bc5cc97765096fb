package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateProject checks the directory/file existence contract for a user
// project: a Cargo.toml manifest, a src/ tree, and a src/main.rs entrypoint.
// That the entrypoint actually defines main, input and output functions is
// the caller's responsibility; it surfaces later as an extraction mismatch.
func ValidateProject(root string) error {
	if _, err := os.Stat(filepath.Join(root, "Cargo.toml")); err != nil {
		return fmt.Errorf("project %s: Cargo.toml not found", root)
	}
	srcDir := filepath.Join(root, "src")
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return fmt.Errorf("project %s: src/ directory not found", root)
	}
	if _, err := os.Stat(filepath.Join(srcDir, "main.rs")); err != nil {
		return fmt.Errorf("project %s: src/main.rs not found", root)
	}
	return nil
}
