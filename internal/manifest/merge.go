// Package manifest handles the project dependency manifest consumed by the
// backend build tools. Merging is textual: entries are unioned by key, and
// the destination's existing specification for a key always wins. No version
// resolution happens here.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DependenciesHeader opens the dependency section of a manifest. The section
// runs to the next bracketed header or end of file.
const DependenciesHeader = "[dependencies]"

// ErrNoDependenciesSection is returned when the source manifest has no
// [dependencies] section at all.
var ErrNoDependenciesSection = errors.New("no [dependencies] section in manifest")

// MergeDependencies unions the source manifest's dependency lines into the
// destination manifest. A source line is appended only if no destination line
// already uses its key (the text before the first '='); re-merging the same
// source is therefore a no-op. If the destination lacks a [dependencies]
// header one is appended before the new lines.
func MergeDependencies(srcPath, dstPath string) error {
	srcData, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", srcPath, err)
	}
	dstData, err := os.ReadFile(dstPath)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", dstPath, err)
	}

	srcDeps, ok := dependencyLines(string(srcData))
	if !ok {
		return fmt.Errorf("%s: %w", srcPath, ErrNoDependenciesSection)
	}
	dstDeps, hasSection := dependencyLines(string(dstData))

	existing := make(map[string]struct{}, len(dstDeps))
	for _, dep := range dstDeps {
		existing[dependencyKey(dep)] = struct{}{}
	}

	var fresh []string
	for _, dep := range srcDeps {
		if _, dup := existing[dependencyKey(dep)]; dup {
			continue
		}
		fresh = append(fresh, dep)
	}
	if len(fresh) == 0 {
		return nil
	}

	f, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open manifest %s: %w", dstPath, err)
	}
	defer f.Close()

	var tail strings.Builder
	if !strings.HasSuffix(string(dstData), "\n") {
		tail.WriteByte('\n')
	}
	if !hasSection {
		tail.WriteString("\n" + DependenciesHeader + "\n")
	}
	tail.WriteString(strings.Join(fresh, "\n"))
	tail.WriteByte('\n')

	if _, err := f.WriteString(tail.String()); err != nil {
		return fmt.Errorf("append to manifest %s: %w", dstPath, err)
	}
	return nil
}

// dependencyLines returns the trimmed, non-empty, non-header lines of the
// [dependencies] section, and whether the section exists.
func dependencyLines(content string) ([]string, bool) {
	idx := strings.Index(content, DependenciesHeader)
	if idx < 0 {
		return nil, false
	}
	section := content[idx+len(DependenciesHeader):]
	if end := strings.Index(section, "\n["); end >= 0 {
		section = section[:end]
	}

	var lines []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, true
}

func dependencyKey(line string) string {
	key, _, _ := strings.Cut(line, "=")
	return strings.TrimSpace(key)
}
