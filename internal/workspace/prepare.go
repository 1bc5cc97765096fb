// Package workspace materializes the per-backend build trees zkforge hands
// to the external toolchains. Preparation is a full purge-and-recopy: it is
// not atomic, but re-running it after any failure yields a pristine tree, so
// callers treat every step failure as fatal for the current attempt and
// simply retry.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"zkforge/internal/manifest"
)

// PreservedHelper is the one file a purge never removes: the persisted
// metrics module the generated host program links against.
const PreservedHelper = "metrics.rs"

// Layout names the files and directories one backend workspace is built
// from. All paths are absolute.
type Layout struct {
	GuestDir          string // guest crate root
	GuestManifest     string // guest manifest destination
	HostDir           string // host crate root
	HostManifest      string // host manifest destination
	BaseGuestManifest string // pristine guest manifest template
	BaseHostManifest  string // pristine host manifest template
}

// Prepare builds the guest and host trees from the user's project. Both
// trees start from an identical snapshot of the project's src/ (and lib/,
// when present); manifests are reset to the backend base templates and the
// user's dependencies merged in.
func Prepare(projectRoot string, layout Layout) error {
	guestSrc := filepath.Join(layout.GuestDir, "src")
	hostSrc := filepath.Join(layout.HostDir, "src")

	for _, dir := range []string{guestSrc, hostSrc} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		if err := purgeExcept(dir, PreservedHelper); err != nil {
			return err
		}
	}

	projectSrc := filepath.Join(projectRoot, "src")
	entries, err := os.ReadDir(projectSrc)
	if err != nil {
		return fmt.Errorf("read project src %s: %w", projectSrc, err)
	}
	for _, entry := range entries {
		if entry.Name() == PreservedHelper {
			continue
		}
		src := filepath.Join(projectSrc, entry.Name())
		for _, dstRoot := range []string{guestSrc, hostSrc} {
			dst := filepath.Join(dstRoot, entry.Name())
			if entry.IsDir() {
				err = copyDir(src, dst)
			} else {
				err = copyFile(src, dst)
			}
			if err != nil {
				return err
			}
		}
	}

	projectLib := filepath.Join(projectRoot, "lib")
	if info, err := os.Stat(projectLib); err == nil && info.IsDir() {
		if err := copyDir(projectLib, filepath.Join(layout.GuestDir, "lib")); err != nil {
			return err
		}
		if err := copyDir(projectLib, filepath.Join(layout.HostDir, "lib")); err != nil {
			return err
		}
	}

	if err := copyFile(layout.BaseGuestManifest, layout.GuestManifest); err != nil {
		return err
	}
	if err := copyFile(layout.BaseHostManifest, layout.HostManifest); err != nil {
		return err
	}

	userManifest := filepath.Join(projectRoot, "Cargo.toml")
	if err := manifest.MergeDependencies(userManifest, layout.GuestManifest); err != nil {
		return err
	}
	if err := manifest.MergeDependencies(userManifest, layout.HostManifest); err != nil {
		return err
	}
	return nil
}

// purgeExcept removes everything inside dir except entries named keep.
func purgeExcept(dir, keep string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.Name() == keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("purge %s: %w", filepath.Join(dir, entry.Name()), err)
		}
	}
	return nil
}
