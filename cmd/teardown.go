package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"stackup/internal/orchestrator"
	"stackup/pkg/logging"
)

var (
	teardownStatePath string
	teardownGrace     time.Duration
)

func newTeardownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Stop services started by a previous run",
		Long: `Reads the state file written by a successful run and stops the recorded
services in reverse ready order. Without a state file there is nothing
to do and teardown exits successfully.`,
		RunE: runTeardown,
	}
	cmd.Flags().StringVar(&teardownStatePath, "state-file", defaultStatePath, "state file written by run")
	cmd.Flags().DurationVar(&teardownGrace, "grace", 5*time.Second, "how long to wait after SIGTERM before SIGKILL")
	return cmd
}

func runTeardown(cmd *cobra.Command, args []string) error {
	state, err := orchestrator.LoadStateFile(teardownStatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("Nothing to tear down.")
			return nil
		}
		return err
	}

	logging.Info("CLI", "Tearing down run %s: %d service(s)", state.RunID, len(state.Services))

	if err := state.Teardown(teardownGrace); err != nil {
		return fmt.Errorf("teardown of run %s incomplete: %w", state.RunID, err)
	}

	if err := orchestrator.RemoveStateFile(teardownStatePath); err != nil {
		return err
	}

	fmt.Printf("%s run %s torn down\n", text.FgGreen.Sprint("✓"), state.RunID)
	return nil
}
