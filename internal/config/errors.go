package config

import "fmt"

// ConfigErrorReason categorizes configuration resolution failures.
type ConfigErrorReason string

const (
	// ReasonMissingKey indicates a required key was absent from the merged result.
	ReasonMissingKey ConfigErrorReason = "MissingKey"
	// ReasonMalformedLine indicates an env file line that is not KEY=VALUE.
	ReasonMalformedLine ConfigErrorReason = "MalformedLine"
	// ReasonFileUnreadable indicates the env file exists but could not be read.
	ReasonFileUnreadable ConfigErrorReason = "FileUnreadable"
)

// ConfigError represents a failure to resolve configuration. It is detected
// before any service starts, so it never requires teardown.
type ConfigError struct {
	Reason ConfigErrorReason
	Key    string // the missing key, for ReasonMissingKey
	Path   string // the env file path, for file related reasons
	Line   int    // 1-based line number, for ReasonMalformedLine
	Err    error  // underlying error, if any
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch e.Reason {
	case ReasonMissingKey:
		return fmt.Sprintf("config: required key %s is missing", e.Key)
	case ReasonMalformedLine:
		return fmt.Sprintf("config: %s:%d: malformed line, expected KEY=VALUE", e.Path, e.Line)
	case ReasonFileUnreadable:
		return fmt.Sprintf("config: cannot read env file %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("config: %v", e.Err)
	}
}

// Unwrap returns the underlying error, if any.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
