package transform

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ReplaceAll rewrites the file with every occurrence of old replaced by new.
// Used to strip the acceleration patch block from a guest manifest between
// runs, among other things.
func ReplaceAll(path, old, new string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	replaced := strings.ReplaceAll(string(data), old, new)
	if err := os.WriteFile(path, []byte(replaced), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// InsertAfter inserts text on its own line immediately after the first
// occurrence of marker. A missing marker is not an error: the file is left
// untouched and a diagnostic is logged, since a template without its splice
// point is a template problem, not an I/O failure.
func InsertAfter(path, marker, text string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)

	pos := strings.Index(content, marker)
	if pos < 0 {
		zap.L().Warn("insertion marker not found, leaving file unchanged",
			zap.String("file", path),
			zap.String("marker", marker))
		return nil
	}

	cut := pos + len(marker)
	patched := content[:cut] + "\n" + text + "\n" + content[cut:]
	if err := os.WriteFile(path, []byte(patched), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RemoveLines rewrites the file, dropping every line containing target.
func RemoveLines(path, target string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.Contains(line, target) {
			kept = append(kept, line)
		}
	}
	if err := os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Prepend writes text in front of the file's existing content.
func Prepend(path, text string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := os.WriteFile(path, append([]byte(text), data...), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
