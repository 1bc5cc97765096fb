package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"zkforge/internal/backend"
	"zkforge/internal/config"
)

var (
	// Global flags
	verbose bool
	cfgPath string

	// Prove flags
	precompiles     bool
	useGPU          bool
	submitProof     bool
	enableTelemetry bool
	proofDataDir    string
	telemetryOut    string
	endpoint        string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zkforge",
	Short: "zkforge - prove Rust programs on zkVMs without writing zkVM code",
	Long: `zkforge turns an ordinary Rust program into a zkVM guest/host pair,
builds it with the selected proving toolchain, and generates a verified
proof of its execution.

The program declares its inputs in fn input(), its logic in fn main(), and
how committed outputs are read back in fn output(), using the generic
zkio::read / zkio::commit / zkio::write / zkio::out vocabulary. zkforge
rewrites those calls for the selected backend.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		// Diagnostics logged through zap.L() in library packages must land
		// in the same sink.
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// proveSp1Cmd generates a proof with the SP1 toolchain
var proveSp1Cmd = &cobra.Command{
	Use:   "prove-sp1 [program-path]",
	Short: "Generate a proof of execution of a program using SP1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProve(cmd.Context(), backend.SP1, args[0])
	},
}

// proveRisc0Cmd generates a proof with the RISC Zero toolchain
var proveRisc0Cmd = &cobra.Command{
	Use:   "prove-risc0 [program-path]",
	Short: "Generate a proof of execution of a program using RISC Zero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProve(cmd.Context(), backend.Risc0, args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Path to the zkforge config file")

	for _, cmd := range []*cobra.Command{proveSp1Cmd, proveRisc0Cmd} {
		cmd.Flags().BoolVar(&precompiles, "precompiles", false, "Patch in accelerated crypto crates for the guest build")
		cmd.Flags().BoolVar(&submitProof, "submit", false, "Submit the proof to the verification network after proving")
		cmd.Flags().BoolVar(&enableTelemetry, "telemetry", false, "Collect and write a telemetry report for this run")
		cmd.Flags().StringVar(&proofDataDir, "proof-data", "", "Directory to save proof artifacts to (default \"proof_data\")")
		cmd.Flags().StringVar(&telemetryOut, "telemetry-out", "", "Directory to write telemetry reports to (default \".\")")
		cmd.Flags().StringVar(&endpoint, "endpoint", "", "Verification network endpoint for --submit")
	}
	proveSp1Cmd.Flags().BoolVar(&useGPU, "gpu", false, "Use the CUDA prover")

	rootCmd.AddCommand(proveSp1Cmd)
	rootCmd.AddCommand(proveRisc0Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
