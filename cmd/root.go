package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackup/internal/config"
	"stackup/internal/dependency"
	"stackup/internal/descriptor"
	"stackup/internal/orchestrator"
	"stackup/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeRuntime indicates a runtime failure: a service failed to start,
	// become ready, or complete.
	ExitCodeRuntime = 1
	// ExitCodeValidation indicates a configuration or dependency graph error
	// detected before anything started.
	ExitCodeValidation = 2
)

var (
	stackPath string
	envFile   string
	logLevel  string
	noColor   bool
)

// rootCmd represents the base command for the stackup application.
var rootCmd = &cobra.Command{
	Use:   "stackup",
	Short: "Start a local service stack in dependency order",
	Long: `stackup reads a declarative stack file, resolves configuration from
the environment, computes a tiered startup order from the declared
dependencies, and brings the services up tier by tier, gating each
dependent on its dependencies' readiness.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLogLevel(logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, os.Stderr, noColor)
		return nil
	},
}

// SetVersion sets the version for the root command. This is called from the
// main package to inject the version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It is called by
// main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "stackup version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the exit code based on the error type. Declaration
// problems (bad stack file, missing config, broken graph) are distinguished
// from runtime failures for scripting.
func getExitCode(err error) int {
	var invalidStack *descriptor.InvalidStackError
	if errors.As(err, &invalidStack) {
		return ExitCodeValidation
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitCodeValidation
	}

	var unknownDep *dependency.UnknownDependencyError
	if errors.As(err, &unknownDep) {
		return ExitCodeValidation
	}

	var cycle *dependency.CycleError
	if errors.As(err, &cycle) {
		return ExitCodeValidation
	}

	var svcErr *orchestrator.ServiceError
	if errors.As(err, &svcErr) {
		return ExitCodeRuntime
	}

	return ExitCodeRuntime
}

func parseLogLevel(s string) (logging.LogLevel, error) {
	switch s {
	case "debug":
		return logging.LevelDebug, nil
	case "info":
		return logging.LevelInfo, nil
	case "warn":
		return logging.LevelWarn, nil
	case "error":
		return logging.LevelError, nil
	default:
		return logging.LevelInfo, fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", s)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&stackPath, "stack", "f", "stack.yaml", "path to the stack declaration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file layered under the process environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newTeardownCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
