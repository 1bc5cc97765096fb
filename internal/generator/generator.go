// Package generator assembles the final guest and host programs from the
// fragments the transform package extracted. The algorithms are backend
// agnostic: every backend difference lives in its configuration record.
package generator

import (
	"fmt"
	"os"
	"strings"

	"zkforge/internal/backend"
)

// Generic I/O vocabulary a user program writes against. Generation replaces
// every occurrence with the selected backend's own invocation; replacements
// are literal, whole-occurrence and order independent.
const (
	ReadToken   = "zkio::read();" // guest: read a value from the host
	CommitToken = "zkio::commit"  // guest: commit a public output
	WriteToken  = "zkio::write"   // host: write a guest input
	OutToken    = "zkio::out();"  // host: read a committed result
)

// Instrumentation lines wrapped around the user's main body so the host can
// attribute cycles to the program by package name.
const (
	cycleTrackerStart = "    println!(\"cycle-tracker-report-start: {}\", env!(\"CARGO_PKG_NAME\"));\n"
	cycleTrackerEnd   = "\n    println!(\"cycle-tracker-report-end: {}\", env!(\"CARGO_PKG_NAME\"));\n"
)

// WriteGuest assembles a buildable guest entrypoint: backend header, the
// program's imports, then a synthesized main wrapping the user's body between
// cycle tracker markers. Generic read/commit tokens are remapped to the
// backend's invocations. Any prior content at dst is overwritten.
func WriteGuest(imports, mainBody string, b backend.Backend, dst string) error {
	var sb strings.Builder
	sb.WriteString(b.GuestHeader)
	sb.WriteString(imports)
	sb.WriteString("pub fn main() {\n")
	sb.WriteString(cycleTrackerStart)
	sb.WriteString(mainBody)
	sb.WriteString(cycleTrackerEnd)
	sb.WriteString("}\n")

	program := sb.String()
	program = strings.ReplaceAll(program, ReadToken, b.GuestRead)
	program = strings.ReplaceAll(program, CommitToken, b.GuestCommit)

	if err := os.WriteFile(dst, []byte(program), 0o644); err != nil {
		return fmt.Errorf("write guest program %s: %w", dst, err)
	}
	return nil
}

// WriteHost splices the extracted input/output bodies into the backend's
// base host template: imports are prepended, the INPUT and OUTPUT marker
// lines are replaced wholesale, and generic write/read-result tokens are
// remapped. Any prior content at dst is overwritten.
func WriteHost(inputBody, outputBody, imports string, b backend.Backend, baseTemplate, dst string) error {
	base, err := os.ReadFile(baseTemplate)
	if err != nil {
		return fmt.Errorf("read host template %s: %w", baseTemplate, err)
	}

	program := imports + string(base)
	program = strings.ReplaceAll(program, backend.InputMarker, inputBody)
	program = strings.ReplaceAll(program, backend.OutputMarker, outputBody)
	program = strings.ReplaceAll(program, WriteToken, b.HostWrite)
	program = strings.ReplaceAll(program, OutToken, b.HostRead)

	if err := os.WriteFile(dst, []byte(program), 0o644); err != nil {
		return fmt.Errorf("write host program %s: %w", dst, err)
	}
	return nil
}
