package descriptor

import (
	"fmt"
	"os"

	"stackup/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a stack file from the given path.
func Load(path string) (StackFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StackFile{}, &InvalidStackError{Path: path, Err: fmt.Errorf("reading: %w", err)}
	}

	var stack StackFile
	if err := yaml.Unmarshal(data, &stack); err != nil {
		return StackFile{}, &InvalidStackError{Path: path, Err: fmt.Errorf("parsing: %w", err)}
	}

	if err := Validate(stack); err != nil {
		return StackFile{}, &InvalidStackError{Path: path, Err: err}
	}

	logging.Info("Descriptor", "Loaded %d service descriptors from %s", len(stack.Services), path)
	return stack, nil
}
