package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock acquires the advisory lock serializing invocations against one
// zkforge home. Preparation rewrites workspace files in place, so two
// concurrent attempts against the same home would race on file contents.
// Callers must Unlock when the attempt finishes, success or failure.
func Lock(home string) (*flock.Flock, error) {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("create home %s: %w", home, err)
	}
	fl := flock.New(filepath.Join(home, ".zkforge.lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock workspace %s: %w", home, err)
	}
	if !locked {
		return nil, fmt.Errorf("workspace %s is in use by another zkforge invocation", home)
	}
	return fl, nil
}
