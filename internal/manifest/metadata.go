package manifest

import (
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Metadata is the package description lifted from a project manifest. It
// labels telemetry reports; nothing downstream depends on it being present.
type Metadata struct {
	PackageName  string   `json:"package_name,omitempty"`
	Version      string   `json:"version,omitempty"`
	Authors      []string `json:"authors,omitempty"`
	Edition      string   `json:"edition,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type cargoManifest struct {
	Package struct {
		Name    string   `toml:"name"`
		Version string   `toml:"version"`
		Authors []string `toml:"authors"`
		Edition string   `toml:"edition"`
	} `toml:"package"`
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
}

// ReadMetadata parses projectDir/Cargo.toml. A missing or malformed manifest
// yields zero metadata rather than an error: metadata is decoration and never
// a reason to abort a proving attempt. Unlike the merge path, this is a real
// TOML parse, so dependency keys come out structured regardless of spacing.
func ReadMetadata(projectDir string) Metadata {
	var cm cargoManifest
	if _, err := toml.DecodeFile(filepath.Join(projectDir, "Cargo.toml"), &cm); err != nil {
		return Metadata{}
	}

	deps := make([]string, 0, len(cm.Dependencies))
	for key := range cm.Dependencies {
		deps = append(deps, key)
	}
	sort.Strings(deps)

	return Metadata{
		PackageName:  cm.Package.Name,
		Version:      cm.Package.Version,
		Authors:      cm.Package.Authors,
		Edition:      cm.Package.Edition,
		Dependencies: deps,
	}
}
