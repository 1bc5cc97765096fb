// Package backend holds the per-toolchain configuration records and the
// glue that drives each toolchain's native build and prove steps. The
// generation pipeline is identical for every backend; only the constants in
// a Backend record differ, so adding a toolchain means adding a record.
package backend

import (
	"fmt"
	"path/filepath"

	"zkforge/internal/workspace"
)

// Host template splice points. Every base host template must contain exactly
// one of each; generation replaces the marker wholesale.
const (
	InputMarker  = "// INPUT //"
	OutputMarker = "// OUTPUT //"
)

// ID selects a proving toolchain.
type ID int

const (
	SP1 ID = iota
	Risc0
)

func (id ID) String() string {
	switch id {
	case SP1:
		return "sp1"
	case Risc0:
		return "risc0"
	default:
		return fmt.Sprintf("backend(%d)", int(id))
	}
}

// Backend is the immutable constant set for one proving toolchain: path
// layout inside the zkforge home, template header text, I/O tokens, and
// artifact locations. Records are consumed, never mutated, by the generators
// and the orchestration in cmd/zkforge.
type Backend struct {
	ID   ID
	Name string

	// Workspace layout, relative to the zkforge home directory.
	GuestDir          string // guest crate root
	GuestMain         string // generated guest entrypoint
	GuestManifest     string // guest Cargo.toml (overwritten each run)
	HostDir           string // host crate root; also where cargo runs
	HostMain          string // generated host entrypoint
	HostManifest      string // host Cargo.toml (overwritten each run)
	BaseGuestManifest string // pristine guest manifest template
	BaseHostManifest  string // pristine host manifest template
	BaseHost          string // pristine host source template

	// Guest generation constants.
	GuestHeader string
	GuestRead   string
	GuestCommit string

	// Host generation constants.
	HostWrite string
	HostRead  string

	// Optional precompile acceleration block appended to the guest manifest
	// when --precompiles is set, and stripped again after the run.
	AccelerationPatch string

	// Scaffold maps embedded template names to home-relative destinations
	// for the static crate files the toolchain build needs: build scripts,
	// workspace manifests, the methods glue crate. Rewritten pristine on
	// every EnsureHome; never touched by workspace preparation.
	Scaffold map[string]string

	// Compiled guest artifact, relative to home. Stat'd for size telemetry.
	CompiledProgram string

	// Proof artifacts the host program writes, relative to the directory
	// zkforge was invoked from.
	ProofPath       string
	ProgramPath     string
	PublicInputPath string
	MetricsPath     string
}

var sp1Backend = Backend{
	ID:   SP1,
	Name: "sp1",

	GuestDir:          "workspaces/sp1/program",
	GuestMain:         "workspaces/sp1/program/src/main.rs",
	GuestManifest:     "workspaces/sp1/program/Cargo.toml",
	HostDir:           "workspaces/sp1/script",
	HostMain:          "workspaces/sp1/script/src/main.rs",
	HostManifest:      "workspaces/sp1/script/Cargo.toml",
	BaseGuestManifest: "workspaces/base_files/sp1/cargo_guest",
	BaseHostManifest:  "workspaces/base_files/sp1/cargo_host",
	BaseHost:          "workspaces/base_files/sp1/host",

	GuestHeader: "#![no_main]\nsp1_zkvm::entrypoint!(main);\n",
	GuestRead:   "sp1_zkvm::io::read();",
	GuestCommit: "sp1_zkvm::io::commit",

	HostWrite: "stdin.write",
	HostRead:  "proof.public_values.read();",

	AccelerationPatch: "\n[patch.crates-io]\n" +
		"sha2 = { git = \"https://github.com/sp1-patches/RustCrypto-hashes\", package = \"sha2\", branch = \"patch-sha2-v0.10.8\" }\n" +
		"sha3 = { git = \"https://github.com/sp1-patches/RustCrypto-hashes\", package = \"sha3\", branch = \"patch-sha3-v0.10.8\" }\n" +
		"crypto-bigint = { git = \"https://github.com/sp1-patches/RustCrypto-bigint\", branch = \"patch-v0.5.5\" }\n" +
		"tiny-keccak = { git = \"https://github.com/sp1-patches/tiny-keccak\", branch = \"patch-v2.0.2\" }\n" +
		"ed25519-consensus = { git = \"https://github.com/sp1-patches/ed25519-consensus\", branch = \"patch-v2.1.0\" }\n" +
		"ecdsa-core = { git = \"https://github.com/sp1-patches/signatures\", package = \"ecdsa\", branch = \"patch-ecdsa-v0.16.9\" }\n",

	// The script's build.rs compiles the guest crate before the host build.
	Scaffold: map[string]string{
		"build_script": "workspaces/sp1/script/build.rs",
	},

	CompiledProgram: "workspaces/sp1/program/target/elf-compilation/riscv32im-succinct-zkvm-elf/release/method",

	ProofPath:       "proof_data/sp1/sp1.proof",
	ProgramPath:     "proof_data/sp1/sp1.elf",
	PublicInputPath: "proof_data/sp1/sp1.pub",
	MetricsPath:     "proof_data/sp1/sp1_metrics.json",
}

var risc0Backend = Backend{
	ID:   Risc0,
	Name: "risc0",

	GuestDir:          "workspaces/risc0/methods/guest",
	GuestMain:         "workspaces/risc0/methods/guest/src/main.rs",
	GuestManifest:     "workspaces/risc0/methods/guest/Cargo.toml",
	HostDir:           "workspaces/risc0/host",
	HostMain:          "workspaces/risc0/host/src/main.rs",
	HostManifest:      "workspaces/risc0/host/Cargo.toml",
	BaseGuestManifest: "workspaces/base_files/risc0/cargo_guest",
	BaseHostManifest:  "workspaces/base_files/risc0/cargo_host",
	BaseHost:          "workspaces/base_files/risc0/host",

	GuestHeader: "#![no_main]\nrisc0_zkvm::guest::entry!(main);\n",
	GuestRead:   "risc0_zkvm::guest::env::read();",
	GuestCommit: "risc0_zkvm::guest::env::commit",

	HostWrite: "env_builder.write",
	HostRead:  "receipt.journal.decode().unwrap();",

	AccelerationPatch: "\n[patch.crates-io]\n" +
		"sha2 = { git = \"https://github.com/risc0/RustCrypto-hashes\", tag = \"sha2-v0.10.6-risczero.0\" }\n" +
		"k256 = { git = \"https://github.com/risc0/RustCrypto-elliptic-curves\", tag = \"k256/v0.13.1-risczero.1\" }\n" +
		"crypto-bigint = { git = \"https://github.com/risc0/RustCrypto-crypto-bigint\", tag = \"v0.5.2-risczero.0\" }\n",

	// Host and methods crates share one workspace root; the methods crate
	// embeds the guest ELF and image id the host imports.
	Scaffold: map[string]string{
		"cargo_workspace": "workspaces/risc0/Cargo.toml",
		"cargo_methods":   "workspaces/risc0/methods/Cargo.toml",
		"methods_build":   "workspaces/risc0/methods/build.rs",
		"methods_lib":     "workspaces/risc0/methods/src/lib.rs",
	},

	CompiledProgram: "workspaces/risc0/target/riscv-guest/riscv32im-risc0-zkvm-elf/release/method",

	ProofPath:       "proof_data/risc0/risc0.proof",
	ProgramPath:     "proof_data/risc0/risc0.imageid",
	PublicInputPath: "proof_data/risc0/risc0_pub_input.pub",
	MetricsPath:     "proof_data/risc0/risc0_metrics.json",
}

// For returns the configuration record for a toolchain.
func For(id ID) Backend {
	switch id {
	case SP1:
		return sp1Backend
	case Risc0:
		return risc0Backend
	default:
		panic(fmt.Sprintf("unknown backend %d", int(id)))
	}
}

// WorkspaceLayout resolves the record's relative paths against the zkforge
// home directory for the Workspace Preparer.
func (b Backend) WorkspaceLayout(home string) workspace.Layout {
	return workspace.Layout{
		GuestDir:          filepath.Join(home, b.GuestDir),
		GuestManifest:     filepath.Join(home, b.GuestManifest),
		HostDir:           filepath.Join(home, b.HostDir),
		HostManifest:      filepath.Join(home, b.HostManifest),
		BaseGuestManifest: filepath.Join(home, b.BaseGuestManifest),
		BaseHostManifest:  filepath.Join(home, b.BaseHostManifest),
	}
}
