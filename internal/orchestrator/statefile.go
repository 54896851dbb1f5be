package orchestrator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"stackup/internal/descriptor"
	"stackup/pkg/logging"
)

// StateEntry records one started service so a later teardown invocation can
// find its process again.
type StateEntry struct {
	Name string                 `yaml:"name"`
	Kind descriptor.ServiceKind `yaml:"kind"`
	PID  int                    `yaml:"pid"`
}

// StateFile is the persisted record of a successful run. Services are listed
// in ready order; teardown walks them in reverse.
type StateFile struct {
	RunID     string       `yaml:"runId"`
	CreatedAt time.Time    `yaml:"createdAt"`
	Services  []StateEntry `yaml:"services"`
}

// BuildStateFile captures the long-running services of a successful run.
func BuildStateFile(result *RunResult) *StateFile {
	pids := make(map[string]int)
	for _, tier := range result.Tiers {
		for _, svc := range tier.Services {
			pids[svc.Name] = svc.PID
		}
	}

	state := &StateFile{
		RunID:     result.RunID,
		CreatedAt: time.Now().UTC(),
	}
	for _, name := range result.ReadyOrder {
		state.Services = append(state.Services, StateEntry{
			Name: name,
			Kind: descriptor.KindLongRunning,
			PID:  pids[name],
		})
	}
	return state
}

// Save writes the state file, creating parent directories as needed.
func (s *StateFile) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling run state: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating state directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing run state to %s: %w", path, err)
	}
	return nil
}

// LoadStateFile reads a previously saved state file. A missing file returns
// os.ErrNotExist so callers can treat it as "nothing to tear down".
func LoadStateFile(path string) (*StateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("reading run state from %s: %w", path, err)
	}

	var state StateFile
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing run state from %s: %w", path, err)
	}
	return &state, nil
}

// RemoveStateFile deletes the state file. Missing files are not an error.
func RemoveStateFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing run state %s: %w", path, err)
	}
	return nil
}

// Teardown stops the recorded processes in reverse ready order. Each process
// group gets SIGTERM, a grace period, then SIGKILL. Processes that already
// exited are skipped.
func (s *StateFile) Teardown(grace time.Duration) error {
	var firstErr error
	for i := len(s.Services) - 1; i >= 0; i-- {
		entry := s.Services[i]
		if err := stopProcessGroup(entry, grace); err != nil {
			logging.Error("Teardown", err, "Failed to stop %s (PID %d)", entry.Name, entry.PID)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		logging.Info("Teardown", "Stopped %s (PID %d)", entry.Name, entry.PID)
	}
	return firstErr
}

func stopProcessGroup(entry StateEntry, grace time.Duration) error {
	if entry.PID <= 0 {
		return nil
	}

	if !processAlive(entry.PID) {
		logging.Debug("Teardown", "%s (PID %d) already exited", entry.Name, entry.PID)
		return nil
	}

	if err := syscall.Kill(-entry.PID, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("SIGTERM to process group %d: %w", entry.PID, err)
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !processAlive(entry.PID) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	if err := syscall.Kill(-entry.PID, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("SIGKILL to process group %d: %w", entry.PID, err)
	}
	return nil
}

func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
