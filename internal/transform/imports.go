package transform

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// importPrefixes open a logical import entry. "pub mod " must be checked
// before "mod " would match it, but HasPrefix on each keeps order irrelevant.
var importPrefixes = []string{"use ", "pub mod ", "mod "}

// ExtractImports returns the file's import and module declarations as one
// newline-terminated block, preserving source order. A declaration spanning
// several physical lines is captured whole: lines are consumed until one
// containing the ';' terminator appears. No deduplication, no reordering.
func ExtractImports(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()

	var imports strings.Builder
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Text()
		if !isImportLine(line) {
			continue
		}
		imports.WriteString(line)
		imports.WriteByte('\n')
		if strings.ContainsRune(line, ';') {
			continue
		}
		// Declaration wrapped across lines: keep consuming until the
		// terminator shows up.
		for sc.Scan() {
			cont := sc.Text()
			imports.WriteString(cont)
			imports.WriteByte('\n')
			if strings.ContainsRune(cont, ';') {
				break
			}
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read source %s: %w", path, err)
	}
	return imports.String(), nil
}

func isImportLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, prefix := range importPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
