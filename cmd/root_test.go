package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"stackup/internal/config"
	"stackup/internal/dependency"
	"stackup/internal/descriptor"
	"stackup/internal/orchestrator"
	"stackup/pkg/logging"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "invalid stack file",
			err:      &descriptor.InvalidStackError{Path: "stack.yaml", Err: errors.New("parsing")},
			expected: ExitCodeValidation,
		},
		{
			name:     "missing config key",
			err:      &config.ConfigError{Reason: config.ReasonMissingKey, Key: "POSTGRES_HOST"},
			expected: ExitCodeValidation,
		},
		{
			name:     "unknown dependency",
			err:      &dependency.UnknownDependencyError{Service: "api", Dependency: "ghost"},
			expected: ExitCodeValidation,
		},
		{
			name:     "dependency cycle",
			err:      &dependency.CycleError{Path: []string{"a", "b", "a"}},
			expected: ExitCodeValidation,
		},
		{
			name: "service failure",
			err: &orchestrator.ServiceError{
				Service: "migrate",
				Reason:  orchestrator.ReasonOneShotNonZeroExit,
				Err:     errors.New("exit status 3"),
			},
			expected: ExitCodeRuntime,
		},
		{
			name:     "wrapped validation error",
			err:      fmt.Errorf("run failed: %w", &dependency.CycleError{Path: []string{"a", "a"}}),
			expected: ExitCodeValidation,
		},
		{
			name:     "generic error",
			err:      errors.New("something broke"),
			expected: ExitCodeRuntime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getExitCode(tt.err))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logging.LogLevel
		wantErr  bool
	}{
		{input: "debug", expected: logging.LevelDebug},
		{input: "info", expected: logging.LevelInfo},
		{input: "warn", expected: logging.LevelWarn},
		{input: "error", expected: logging.LevelError},
		{input: "verbose", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestVersionInjection(t *testing.T) {
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())
}
