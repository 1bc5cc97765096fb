package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// Exit codes the generated host programs use to classify prove failures.
const (
	exitVerifyFailed = 101
	exitElfFailed    = 102
)

// Build compiles the backend workspace with the toolchain's native build
// tool. Subprocess output streams straight through to the operator.
func Build(ctx context.Context, logger *zap.Logger, home string, b Backend) error {
	dir := filepath.Join(home, b.HostDir)
	logger.Info("building program", zap.String("backend", b.Name), zap.String("dir", dir))

	cmd := exec.CommandContext(ctx, "cargo", "build", "--release")
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s build failed: %w", b.Name, err)
	}
	return nil
}

// Prove runs the generated host program, which executes the guest, writes
// the proof artifacts and the metrics JSON under invokeDir, and verifies the
// proof. The GPU flag switches SP1 to its CUDA prover; other backends ignore
// it.
func Prove(ctx context.Context, logger *zap.Logger, home string, b Backend, invokeDir string, gpu bool) error {
	args := []string{"run", "--release"}
	env := os.Environ()
	if gpu && b.ID == SP1 {
		args = append(args, "--features", "cuda")
		env = append(env, "SP1_PROVER=cuda")
	}
	args = append(args, "--", invokeDir)

	dir := filepath.Join(home, b.HostDir)
	logger.Info("generating proof", zap.String("backend", b.Name), zap.Bool("gpu", gpu))

	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s proving failed: %s", b.Name, proveFailure(exitErr.ExitCode()))
		}
		return fmt.Errorf("%s proving failed: %w", b.Name, err)
	}
	return nil
}

func proveFailure(code int) string {
	switch code {
	case exitVerifyFailed:
		return "proof verification failed - the generated proof could not be verified"
	case exitElfFailed:
		return "program artifact generation failed"
	default:
		return fmt.Sprintf("exit code %d", code)
	}
}
