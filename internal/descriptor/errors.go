package descriptor

import "fmt"

// InvalidStackError wraps any failure to read, parse, or validate a stack
// file. It lets callers distinguish declaration problems from runtime
// failures.
type InvalidStackError struct {
	Path string
	Err  error
}

func (e *InvalidStackError) Error() string {
	return fmt.Sprintf("invalid stack file %s: %v", e.Path, e.Err)
}

func (e *InvalidStackError) Unwrap() error {
	return e.Err
}
