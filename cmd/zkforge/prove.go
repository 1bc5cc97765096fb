package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"zkforge/internal/backend"
	"zkforge/internal/config"
	"zkforge/internal/generator"
	"zkforge/internal/submit"
	"zkforge/internal/telemetry"
	"zkforge/internal/transform"
	"zkforge/internal/workspace"
)

// bodyMarkers are the function signatures a program must define, in the
// order their bodies are consumed by generation.
var bodyMarkers = []string{"fn main()", "fn input()", "fn output()"}

// runProve drives a full proving run: prepare the backend workspace from the
// user's program, generate the guest and host, build, prove, and clean up.
// The pipeline is identical for every backend; b carries all the differences.
func runProve(ctx context.Context, id backend.ID, projectPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if submitProof && cfg.Submit.Endpoint == "" {
		return fmt.Errorf("--submit requires an endpoint (--endpoint flag or submit.endpoint in config)")
	}

	b := backend.For(id)
	logger.Info("proving program",
		zap.String("backend", b.Name),
		zap.String("program", projectPath),
	)

	if err := workspace.ValidateProject(projectPath); err != nil {
		return err
	}

	invokeDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to locate current directory: %w", err)
	}
	if _, err := os.Stat(cfg.ProofDataDir); os.IsNotExist(err) {
		logger.Info("saving proofs to", zap.String("dir", cfg.ProofDataDir))
		if err := os.MkdirAll(cfg.ProofDataDir, 0o755); err != nil {
			return fmt.Errorf("failed to create proof data directory: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(b.ProofPath), 0o755); err != nil {
		return fmt.Errorf("failed to create proof data directory: %w", err)
	}

	home := cfg.HomeDir
	if err := backend.EnsureHome(home); err != nil {
		return err
	}

	lock, err := workspace.Lock(home)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	collector := telemetry.New(logger, b.Name, precompiles, cfg.Telemetry.Enabled, projectPath)
	failed := true
	defer func() {
		report := collector.Finalize()
		if report == nil {
			return
		}
		path, werr := report.WriteFile(cfg.Telemetry.OutDir, failed)
		if werr != nil {
			logger.Warn("failed to write telemetry report", zap.Error(werr))
			return
		}
		logger.Info("telemetry report written", zap.String("path", path))
	}()

	setupStart := time.Now()
	if err := workspace.Prepare(projectPath, b.WorkspaceLayout(home)); err != nil {
		return fmt.Errorf("failed to prepare workspace: %w", err)
	}

	// Extract from the workspace copy of the program; WriteGuest replaces
	// it afterwards.
	mainPath := filepath.Join(home, b.GuestMain)
	imports, err := transform.ExtractImports(mainPath)
	if err != nil {
		return fmt.Errorf("failed to extract imports: %w", err)
	}
	bodies, err := transform.ExtractFunctionBodies(mainPath, bodyMarkers)
	if err != nil {
		return fmt.Errorf("failed to extract function bodies: %w", err)
	}
	if len(bodies) < len(bodyMarkers) {
		return fmt.Errorf("program must define fn main(), fn input() and fn output(); found %d of %d", len(bodies), len(bodyMarkers))
	}

	if err := generator.WriteGuest(imports, bodies[0], b, filepath.Join(home, b.GuestMain)); err != nil {
		return err
	}
	if err := generator.WriteHost(bodies[1], bodies[2], imports, b, filepath.Join(home, b.BaseHost), filepath.Join(home, b.HostMain)); err != nil {
		return err
	}
	collector.RecordWorkspaceSetup(time.Since(setupStart))

	// The generated host must never survive the run; the next invocation
	// splices into the pristine template.
	defer func() {
		if rerr := backend.ResetHost(home, b); rerr != nil {
			logger.Warn("failed to reset host program", zap.Error(rerr))
		}
	}()

	guestManifest := filepath.Join(home, b.GuestManifest)
	if precompiles {
		if err := appendAcceleration(guestManifest, b.AccelerationPatch); err != nil {
			return err
		}
	}

	buildCtx, cancelBuild := withTimeout(ctx, cfg.GetBuildTimeout())
	defer cancelBuild()
	buildStart := time.Now()
	if err := backend.Build(buildCtx, logger, home, b); err != nil {
		return err
	}
	collector.RecordCompilation(time.Since(buildStart))

	if info, err := os.Stat(filepath.Join(home, b.CompiledProgram)); err == nil {
		collector.RecordProgramSize(uint64(info.Size()))
	} else {
		logger.Debug("compiled program not found for size telemetry", zap.Error(err))
	}

	proveCtx, cancelProve := withTimeout(ctx, cfg.GetProveTimeout())
	defer cancelProve()
	stopSampler := collector.StartResourceMonitoring()
	proveStart := time.Now()
	err = backend.Prove(proveCtx, logger, home, b, invokeDir, useGPU)
	close(stopSampler)
	if err != nil {
		return err
	}
	collector.RecordProofGeneration(time.Since(proveStart))

	if precompiles {
		if serr := transform.ReplaceAll(guestManifest, b.AccelerationPatch, ""); serr != nil {
			logger.Warn("failed to strip acceleration patches", zap.Error(serr))
		}
	}

	if m, merr := backend.ReadMetrics(b); merr != nil {
		logger.Warn("failed to read proving metrics", zap.Error(merr))
	} else {
		collector.RecordZkMetrics(m.Cycles, m.NumSegments, m.CoreProofSize, m.RecursiveProofSize)
		collector.RecordProofTimings(
			m.CoreProve.Duration(),
			m.CoreVerify.Duration(),
			m.CompressProve.Duration(),
			m.CompressVerify.Duration(),
		)
	}

	if submitProof {
		client := submit.NewClient(cfg.Submit.Endpoint, cfg.GetSubmitTimeout(), logger)
		defer client.Close()
		receipt, serr := client.Submit(ctx, submit.Artifacts{
			ProvingSystem: b.Name,
			ProofPath:     b.ProofPath,
			ProgramPath:   b.ProgramPath,
			PublicInput:   b.PublicInputPath,
		})
		if serr != nil {
			return fmt.Errorf("proof not submitted: %w", serr)
		}
		logger.Info("proof submitted and verified on the network",
			zap.String("batch_id", receipt.BatchID),
		)
	}

	failed = false
	logger.Info("proof generated and verified",
		zap.String("backend", b.Name),
		zap.String("proof", b.ProofPath),
	)
	return nil
}

// applyFlagOverrides layers set flags over the loaded file config.
func applyFlagOverrides(cfg *config.Config) {
	if proofDataDir != "" {
		cfg.ProofDataDir = proofDataDir
	}
	if telemetryOut != "" {
		cfg.Telemetry.OutDir = telemetryOut
	}
	if endpoint != "" {
		cfg.Submit.Endpoint = endpoint
	}
	if enableTelemetry {
		cfg.Telemetry.Enabled = true
	}
}

func appendAcceleration(manifest, patch string) error {
	f, err := os.OpenFile(manifest, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open guest manifest: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(patch); err != nil {
		return fmt.Errorf("failed to apply acceleration patches: %w", err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
