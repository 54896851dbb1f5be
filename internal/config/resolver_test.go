package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolve_FileOnly(t *testing.T) {
	path := writeEnvFile(t, "POSTGRES_HOST=db\nPOSTGRES_PORT=5432\n")

	cfg, err := Resolve(path, nil, nil)
	require.NoError(t, err)

	host, ok := cfg.Get("POSTGRES_HOST")
	assert.True(t, ok)
	assert.Equal(t, "db", host)

	port, ok := cfg.Get("POSTGRES_PORT")
	assert.True(t, ok)
	assert.Equal(t, "5432", port)
}

func TestResolve_ProcessEnvOverridesFile(t *testing.T) {
	path := writeEnvFile(t, "POSTGRES_HOST=db\n")

	cfg, err := Resolve(path, []string{"POSTGRES_HOST=localhost"}, nil)
	require.NoError(t, err)

	host, _ := cfg.Get("POSTGRES_HOST")
	assert.Equal(t, "localhost", host)
}

func TestResolve_CommentsAndBlankLines(t *testing.T) {
	path := writeEnvFile(t, "# database settings\n\nPOSTGRES_HOST=db\n\n# trailing comment\n")

	cfg, err := Resolve(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Len())
}

func TestResolve_MissingRequiredKey(t *testing.T) {
	path := writeEnvFile(t, "POSTGRES_HOST=db\n")

	_, err := Resolve(path, nil, []string{"POSTGRES_HOST", "POSTGRES_PASSWORD"})
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ReasonMissingKey, cfgErr.Reason)
	assert.Equal(t, "POSTGRES_PASSWORD", cfgErr.Key)
}

func TestResolve_RequiredKeySatisfiedByProcessEnv(t *testing.T) {
	cfg, err := Resolve("", []string{"API_TOKEN=secret"}, []string{"API_TOKEN"})
	require.NoError(t, err)

	token, ok := cfg.Get("API_TOKEN")
	assert.True(t, ok)
	assert.Equal(t, "secret", token)
}

func TestResolve_MalformedLine(t *testing.T) {
	path := writeEnvFile(t, "POSTGRES_HOST=db\nnot a pair\n")

	_, err := Resolve(path, nil, nil)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ReasonMalformedLine, cfgErr.Reason)
	assert.Equal(t, 2, cfgErr.Line)
}

func TestResolve_NonexistentFile(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "missing.env"), nil, nil)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ReasonFileUnreadable, cfgErr.Reason)
}

func TestResolve_Idempotent(t *testing.T) {
	path := writeEnvFile(t, "A=1\nB=2\n")
	env := []string{"B=3", "C=4"}

	first, err := Resolve(path, env, []string{"A", "B", "C"})
	require.NoError(t, err)
	second, err := Resolve(path, env, []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, first.Map(), second.Map())
}

func TestResolvedConfig_Immutable(t *testing.T) {
	source := map[string]string{"KEY": "value"}
	cfg := NewResolvedConfig(source)

	// Mutating the source map or an accessor copy must not affect the snapshot.
	source["KEY"] = "changed"
	m := cfg.Map()
	m["KEY"] = "changed too"

	v, _ := cfg.Get("KEY")
	assert.Equal(t, "value", v)
}

func TestResolvedConfig_KeysSorted(t *testing.T) {
	cfg := NewResolvedConfig(map[string]string{"B": "2", "A": "1", "C": "3"})
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Keys())
}
