package config

import (
	"bufio"
	"os"
	"strings"

	"stackup/pkg/logging"
)

// Resolve merges the optional env file at envFilePath with the process
// environment (as returned by os.Environ) and validates that every key in
// requiredKeys is present. Process environment values override file values
// for the same key.
//
// An empty envFilePath skips file loading entirely. A nonexistent file at a
// non-empty path is an error: the operator named a file that is not there.
func Resolve(envFilePath string, processEnv []string, requiredKeys []string) (ResolvedConfig, error) {
	merged := make(map[string]string)

	if envFilePath != "" {
		fileValues, err := parseEnvFile(envFilePath)
		if err != nil {
			return ResolvedConfig{}, err
		}
		for k, v := range fileValues {
			merged[k] = v
		}
		logging.Debug("Config", "Loaded %d values from env file %s", len(fileValues), envFilePath)
	}

	for _, entry := range processEnv {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		merged[key] = value
	}

	for _, key := range requiredKeys {
		if _, ok := merged[key]; !ok {
			return ResolvedConfig{}, &ConfigError{Reason: ReasonMissingKey, Key: key}
		}
	}

	return NewResolvedConfig(merged), nil
}

// parseEnvFile reads newline-separated KEY=VALUE pairs. Lines starting with #
// and blank lines are ignored. No quoting or escaping is applied.
func parseEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Reason: ReasonFileUnreadable, Path: path, Err: err}
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			return nil, &ConfigError{Reason: ReasonMalformedLine, Path: path, Line: lineNo}
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, &ConfigError{Reason: ReasonFileUnreadable, Path: path, Err: err}
	}

	return values, nil
}
