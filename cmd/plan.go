package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"stackup/internal/app"
	"stackup/internal/descriptor"
	"stackup/pkg/logging"
)

var (
	planOutput string
	planWatch  bool
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the startup order without starting anything",
		Long: `Validates the stack file, resolves configuration, and prints the tiered
execution plan. Nothing is started. With --watch the plan is re-rendered
whenever the stack file changes.`,
		RunE: runPlan,
	}
	cmd.Flags().StringVarP(&planOutput, "output", "o", "table", "output format (table, yaml, json)")
	cmd.Flags().BoolVarP(&planWatch, "watch", "w", false, "re-render the plan when the stack file changes")
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	if err := renderPlan(); err != nil {
		if !planWatch {
			return err
		}
		// In watch mode a broken stack file is reported, not fatal: the next
		// edit may fix it.
		fmt.Fprintf(os.Stderr, "%s %v\n", text.FgRed.Sprint("✗"), err)
	}

	if !planWatch {
		return nil
	}

	watcher := descriptor.NewWatcher(descriptor.WatcherConfig{
		Path: stackPath,
		OnChange: func() {
			fmt.Printf("\n%s %s changed\n", text.FgYellow.Sprint("↻"), stackPath)
			if err := renderPlan(); err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", text.FgRed.Sprint("✗"), err)
			}
		},
	})
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("watching %s: %w", stackPath, err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			logging.Warn("CLI", "Stopping stack watcher: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

// planDocument is the machine-readable shape of an execution plan.
type planDocument struct {
	Tiers []planTier `yaml:"tiers" json:"tiers"`
}

type planTier struct {
	Tier     int        `yaml:"tier" json:"tier"`
	Services []planItem `yaml:"services" json:"services"`
}

type planItem struct {
	Name      string   `yaml:"name" json:"name"`
	Kind      string   `yaml:"kind" json:"kind"`
	DependsOn []string `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
}

func renderPlan() error {
	a, err := app.Load(app.Options{StackPath: stackPath, EnvFile: envFile})
	if err != nil {
		return err
	}

	byName := make(map[string]descriptor.ServiceDescriptor, len(a.Stack.Services))
	for _, desc := range a.Stack.Services {
		byName[desc.Name] = desc
	}

	doc := planDocument{}
	for i, tier := range a.Plan.Tiers {
		pt := planTier{Tier: i + 1}
		for _, name := range tier {
			desc := byName[name]
			pt.Services = append(pt.Services, planItem{
				Name:      name,
				Kind:      string(desc.Kind),
				DependsOn: desc.DependsOn,
			})
		}
		doc.Tiers = append(doc.Tiers, pt)
	}

	switch planOutput {
	case "table":
		renderPlanTable(doc)
		return nil
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table, yaml or json)", planOutput)
	}
}

func renderPlanTable(doc planDocument) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TIER", "SERVICE", "KIND", "DEPENDS ON"})

	for _, tier := range doc.Tiers {
		for _, svc := range tier.Services {
			t.AppendRow(table.Row{tier.Tier, svc.Name, svc.Kind, strings.Join(svc.DependsOn, ", ")})
		}
	}
	t.Render()
}
