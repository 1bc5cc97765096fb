package telemetry

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

const (
	bytesPerKB     = 1024
	sampleInterval = time.Second
)

type resourceSample struct {
	memoryKB   uint64
	cpuPercent float64
}

// Collector accumulates metrics for one proving attempt. All record methods
// are no-ops when telemetry is disabled, so call sites stay unconditional.
type Collector struct {
	logger  *zap.Logger
	enabled bool
	start   time.Time

	mu      sync.Mutex
	report  Report
	samples []resourceSample
}

// New creates a collector for one attempt against the given proving system.
func New(logger *zap.Logger, provingSystem string, precompiles, enabled bool, projectDir string) *Collector {
	return &Collector{
		logger:  logger,
		enabled: enabled,
		start:   time.Now(),
		report: Report{
			RunID:              newRunID(),
			ProvingSystem:      provingSystem,
			PrecompilesEnabled: precompiles,
			Program:            programInfo(projectDir),
		},
	}
}

// RecordWorkspaceSetup stores the workspace preparation duration.
func (c *Collector) RecordWorkspaceSetup(d time.Duration) {
	c.record(func(r *Report) { r.Timing.WorkspaceSetup = d })
}

// RecordCompilation stores the guest/host build duration.
func (c *Collector) RecordCompilation(d time.Duration) {
	c.record(func(r *Report) { r.Timing.Compilation = d })
}

// RecordProofGeneration stores the end-to-end proving duration.
func (c *Collector) RecordProofGeneration(d time.Duration) {
	c.record(func(r *Report) { r.Timing.ProofGeneration = d })
}

// RecordProgramSize stores the compiled guest artifact size.
func (c *Collector) RecordProgramSize(bytes uint64) {
	c.record(func(r *Report) { r.ProgramSizeBytes = bytes })
}

// RecordZkMetrics stores the host-reported proving statistics. Execution
// speed is derived from the proof generation duration recorded earlier.
func (c *Collector) RecordZkMetrics(cycles uint64, segments, coreSize, recursiveSize int) {
	c.record(func(r *Report) {
		r.ZkMetrics = ZkMetrics{
			Cycles:             cycles,
			NumSegments:        segments,
			CoreProofSize:      coreSize,
			RecursiveProofSize: recursiveSize,
		}
		if d := r.Timing.ProofGeneration; d > 0 && cycles > 0 {
			r.ZkMetrics.ExecutionSpeed = float64(cycles) / d.Seconds()
		}
	})
}

// RecordProofTimings stores the per-phase prove/verify durations.
func (c *Collector) RecordProofTimings(coreProve, coreVerify, compressProve, compressVerify time.Duration) {
	c.record(func(r *Report) {
		r.Timing.CoreProve = coreProve
		r.Timing.CoreVerify = coreVerify
		r.Timing.CompressProve = compressProve
		r.Timing.CompressVerify = compressVerify
	})
}

func (c *Collector) record(apply func(*Report)) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	apply(&c.report)
}

// StartResourceMonitoring launches the sampler goroutine, polling system
// CPU and memory once per second into the collector's buffer. Closing the
// returned channel stops the sampler; it is safe to close it even when
// telemetry is disabled.
func (c *Collector) StartResourceMonitoring() chan<- struct{} {
	stop := make(chan struct{})
	go func() {
		if !c.enabled {
			return
		}
		ticker := time.NewTicker(sampleInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.sample()
			}
		}
	}()
	return stop
}

func (c *Collector) sample() {
	s := resourceSample{}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.memoryKB = vm.Used / bytesPerKB
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		s.cpuPercent = percents[0]
	}

	c.mu.Lock()
	c.samples = append(c.samples, s)
	c.mu.Unlock()
}

// Finalize computes resource statistics and the total duration, logs a
// summary, and returns the report. Returns nil when telemetry is disabled.
func (c *Collector) Finalize() *Report {
	if !c.enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	report := c.report
	report.Timing.Total = time.Since(c.start)
	report.Resources = summarize(c.samples)

	c.logger.Info("telemetry summary",
		zap.String("run_id", report.RunID),
		zap.String("proving_system", report.ProvingSystem),
		zap.String("program", report.Program.Name),
		zap.Uint64("cycles", report.ZkMetrics.Cycles),
		zap.Int("segments", report.ZkMetrics.NumSegments),
		zap.Int("core_proof_size", report.ZkMetrics.CoreProofSize),
		zap.Int("recursive_proof_size", report.ZkMetrics.RecursiveProofSize),
		zap.Float64("cycles_per_second", report.ZkMetrics.ExecutionSpeed),
		zap.Duration("workspace_setup", report.Timing.WorkspaceSetup),
		zap.Duration("compilation", report.Timing.Compilation),
		zap.Duration("proof_generation", report.Timing.ProofGeneration),
		zap.Duration("total", report.Timing.Total),
		zap.Uint64("max_memory_kb", report.Resources.MaxMemoryKB),
		zap.Float64("avg_cpu_percent", report.Resources.AvgCPUPercent),
		zap.Int("resource_samples", report.Resources.Samples),
	)
	return &report
}

func summarize(samples []resourceSample) ResourceMetrics {
	if len(samples) == 0 {
		return ResourceMetrics{}
	}

	res := ResourceMetrics{
		MinMemoryKB:   samples[0].memoryKB,
		MinCPUPercent: samples[0].cpuPercent,
		Samples:       len(samples),
	}
	var memSum uint64
	var cpuSum float64
	for _, s := range samples {
		if s.memoryKB > res.MaxMemoryKB {
			res.MaxMemoryKB = s.memoryKB
		}
		if s.memoryKB < res.MinMemoryKB {
			res.MinMemoryKB = s.memoryKB
		}
		if s.cpuPercent > res.MaxCPUPercent {
			res.MaxCPUPercent = s.cpuPercent
		}
		if s.cpuPercent < res.MinCPUPercent {
			res.MinCPUPercent = s.cpuPercent
		}
		memSum += s.memoryKB
		cpuSum += s.cpuPercent
	}
	res.AvgMemoryKB = memSum / uint64(len(samples))
	res.AvgCPUPercent = cpuSum / float64(len(samples))
	return res
}
