// Package telemetry collects timing, resource and proving metrics for a
// single proving attempt. The collector shares no state with the
// transformation pipeline: the resource sampler runs on its own goroutine
// into a mutex-guarded buffer and is stopped with a one-shot signal.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"zkforge/internal/manifest"
)

// ProgramInfo describes the user program a report belongs to.
type ProgramInfo struct {
	Path         string            `json:"path"`
	Name         string            `json:"name"`
	AbsolutePath string            `json:"absolute_path,omitempty"`
	Manifest     manifest.Metadata `json:"manifest"`
}

// TimingMetrics are wall-clock durations for the attempt's phases.
type TimingMetrics struct {
	WorkspaceSetup  time.Duration `json:"workspace_setup"`
	Compilation     time.Duration `json:"compilation"`
	ProofGeneration time.Duration `json:"proof_generation"`
	CoreProve       time.Duration `json:"core_prove"`
	CoreVerify      time.Duration `json:"core_verify"`
	CompressProve   time.Duration `json:"compress_prove"`
	CompressVerify  time.Duration `json:"compress_verify"`
	Total           time.Duration `json:"total"`
}

// ZkMetrics are the proving statistics reported by the host program.
type ZkMetrics struct {
	Cycles             uint64  `json:"cycles"`
	NumSegments        int     `json:"num_segments"`
	CoreProofSize      int     `json:"core_proof_size"`
	RecursiveProofSize int     `json:"recursive_proof_size"`
	ExecutionSpeed     float64 `json:"execution_speed,omitempty"` // cycles per second of proof generation
}

// ResourceMetrics summarize the sampler's observations.
type ResourceMetrics struct {
	MaxMemoryKB   uint64  `json:"max_memory_kb"`
	MinMemoryKB   uint64  `json:"min_memory_kb"`
	AvgMemoryKB   uint64  `json:"avg_memory_kb"`
	MaxCPUPercent float64 `json:"max_cpu_percent"`
	MinCPUPercent float64 `json:"min_cpu_percent"`
	AvgCPUPercent float64 `json:"avg_cpu_percent"`
	Samples       int     `json:"samples"`
}

// Report is the final telemetry document for one proving attempt.
type Report struct {
	RunID              string          `json:"run_id"`
	ProvingSystem      string          `json:"proving_system"`
	PrecompilesEnabled bool            `json:"precompiles_enabled"`
	Program            ProgramInfo     `json:"program"`
	ProgramSizeBytes   uint64          `json:"program_size_bytes,omitempty"`
	Timing             TimingMetrics   `json:"timing"`
	Resources          ResourceMetrics `json:"resources"`
	ZkMetrics          ZkMetrics       `json:"zk_metrics"`
}

// WriteFile saves the report as timestamped JSON under dir and returns the
// file path. Failed attempts are marked in the file name so successive runs
// never overwrite each other.
func (r *Report) WriteFile(dir string, failed bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create telemetry dir %s: %w", dir, err)
	}

	name := r.Program.Manifest.PackageName
	if name == "" {
		name = "unknown"
	}
	stamp := time.Now().Format("20060102_150405")
	file := fmt.Sprintf("%s_telemetry_%s_%s.json", r.ProvingSystem, name, stamp)
	if failed {
		file = fmt.Sprintf("%s_telemetry_%s_failed_%s.json", r.ProvingSystem, name, stamp)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode telemetry: %w", err)
	}
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write telemetry %s: %w", path, err)
	}
	return path, nil
}

func programInfo(projectDir string) ProgramInfo {
	info := ProgramInfo{
		Path:     projectDir,
		Name:     filepath.Base(projectDir),
		Manifest: manifest.ReadMetadata(projectDir),
	}
	if abs, err := filepath.Abs(projectDir); err == nil {
		info.AbsolutePath = abs
	}
	return info
}

func newRunID() string {
	return uuid.NewString()
}
