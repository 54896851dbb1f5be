package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"stackup/internal/app"
	"stackup/internal/orchestrator"
	"stackup/internal/services"
	"stackup/pkg/logging"
)

// defaultStatePath is where run records started services for a later
// teardown invocation.
const defaultStatePath = ".stackup/state.yaml"

var (
	runStatePath string
	runQuiet     bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the stack",
		Long: `Starts every service in the stack file, tier by tier. Dependents wait
for their dependencies to pass readiness checks; one-shot tasks must
complete before anything depending on them starts. On any failure the
already-started services are stopped again, in reverse ready order.`,
		RunE: runRun,
	}
	cmd.Flags().StringVar(&runStatePath, "state-file", defaultStatePath, "where to record started services for teardown")
	cmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress the progress spinner")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Load(app.Options{StackPath: stackPath, EnvFile: envFile})
	if err != nil {
		return err
	}

	members, err := a.BuildMembers()
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(a.Plan, members, orchestrator.DefaultHealthGate())
	if err != nil {
		return err
	}

	var s *spinner.Spinner
	if !runQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" Starting %d service(s)...", len(members))
		s.Start()
	}

	result := orch.Run(ctx)

	if s != nil {
		s.Stop()
	}

	renderRunResult(result)

	switch result.Outcome {
	case orchestrator.OutcomeSucceeded:
		state := orchestrator.BuildStateFile(result)
		if err := state.Save(runStatePath); err != nil {
			logging.Warn("CLI", "Run succeeded but state could not be saved: %v", err)
		}
		// Let systemd know the stack is up when running as a notify unit.
		if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
			logging.Debug("CLI", "sd_notify not delivered: %v", err)
		}
		fmt.Printf("%s run %s: all services up\n", text.FgGreen.Sprint("✓"), result.RunID)
		return nil
	case orchestrator.OutcomeCancelled:
		return fmt.Errorf("run %s cancelled: %w", result.RunID, result.Cause)
	default:
		return fmt.Errorf("run %s failed: %w", result.RunID, result.Cause)
	}
}

// renderRunResult prints the tier-by-tier outcome table.
func renderRunResult(result *orchestrator.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TIER", "SERVICE", "KIND", "STATE", "PID", "DETAIL"})

	for i, tier := range result.Tiers {
		for _, svc := range tier.Services {
			pid := ""
			if svc.PID > 0 {
				pid = fmt.Sprintf("%d", svc.PID)
			}
			detail := ""
			if svc.Err != nil && svc.State == services.StateFailed {
				detail = svc.Err.Error()
			}
			t.AppendRow(table.Row{i + 1, svc.Name, svc.Kind, colorState(svc.State), pid, detail})
		}
	}
	t.Render()
}

func colorState(state services.ServiceState) string {
	switch state {
	case services.StateReady:
		return text.FgGreen.Sprint(state)
	case services.StateStopped:
		return text.FgCyan.Sprint(state)
	case services.StateFailed:
		return text.FgRed.Sprint(state)
	case services.StateStarting, services.StateStopping:
		return text.FgYellow.Sprint(state)
	default:
		return string(state)
	}
}
