package app

import (
	"fmt"
	"os"

	"stackup/internal/config"
	"stackup/internal/dependency"
	"stackup/internal/descriptor"
	"stackup/internal/orchestrator"
	"stackup/internal/services"
	"stackup/internal/template"
	"stackup/pkg/logging"
)

// Options configures application startup.
type Options struct {
	// StackPath is the stack declaration file.
	StackPath string
	// EnvFile is an optional env file layered under the process environment.
	EnvFile string
	// ProcessEnv overrides the inherited environment; nil means os.Environ().
	ProcessEnv []string
}

// App holds everything derived from the stack file and the environment:
// the parsed declarations, the resolved configuration, and the execution
// plan. Construction fails on any validation, configuration, or graph error,
// so a non-nil App is safe to run.
type App struct {
	Stack  descriptor.StackFile
	Config config.ResolvedConfig
	Plan   dependency.ExecutionPlan
}

// Load parses and validates the stack file, resolves configuration against
// it, and builds the execution plan.
func Load(opts Options) (*App, error) {
	stack, err := descriptor.Load(opts.StackPath)
	if err != nil {
		return nil, err
	}
	logging.Debug("App", "Loaded %d service(s) from %s", len(stack.Services), opts.StackPath)

	processEnv := opts.ProcessEnv
	if processEnv == nil {
		processEnv = os.Environ()
	}

	cfg, err := config.Resolve(opts.EnvFile, processEnv, stack.RequiredEnv)
	if err != nil {
		return nil, err
	}
	logging.Debug("App", "Resolved %d configuration value(s)", cfg.Len())

	plan, err := dependency.BuildPlan(stack.Services)
	if err != nil {
		return nil, err
	}
	logging.Debug("App", "Execution plan: %s", plan.String())

	return &App{
		Stack:  stack,
		Config: cfg,
		Plan:   plan,
	}, nil
}

// BuildMembers turns the stack's descriptors into process-backed run members.
// Service env values may be templates over the resolved configuration; they
// are rendered here, before anything starts.
func (a *App) BuildMembers() ([]orchestrator.Member, error) {
	data := a.Config.Map()

	members := make([]orchestrator.Member, 0, len(a.Stack.Services))
	for _, desc := range a.Stack.Services {
		env, err := template.RenderAll(desc.Env, data)
		if err != nil {
			return nil, fmt.Errorf("rendering env for service %s: %w", desc.Name, err)
		}
		svc := services.NewExecService(desc, env)
		members = append(members, orchestrator.NewMember(desc, svc))
	}
	return members, nil
}
