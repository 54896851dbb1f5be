package descriptor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStack = `
requiredEnv:
  - POSTGRES_PASSWORD
services:
  - name: db
    kind: long-running
    command: postgres
    ports: [5432]
    readyCheck:
      type: tcp
      port: 5432
  - name: migrate
    kind: one-shot
    command: migrate-tool
    args: [up]
    dependsOn: [db]
    env:
      PGHOST: "{{ .POSTGRES_HOST }}"
    retry:
      attempts: 3
      backoff: 2s
  - name: api
    kind: long-running
    command: api-server
    dependsOn: [migrate]
    ports: [8000]
`

func writeStackFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	stack, err := Load(writeStackFile(t, sampleStack))
	require.NoError(t, err)

	assert.Equal(t, []string{"POSTGRES_PASSWORD"}, stack.RequiredEnv)
	require.Len(t, stack.Services, 3)

	db := stack.Services[0]
	assert.Equal(t, "db", db.Name)
	assert.Equal(t, KindLongRunning, db.Kind)
	assert.Equal(t, []int{5432}, db.Ports)
	require.NotNil(t, db.ReadyCheck)
	assert.Equal(t, ReadyCheckTCP, db.ReadyCheck.Type)

	migrate := stack.Services[1]
	assert.Equal(t, KindOneShot, migrate.Kind)
	assert.Equal(t, []string{"db"}, migrate.DependsOn)
	assert.Equal(t, 3, migrate.Retry.Attempts)
	assert.Equal(t, 2*time.Second, migrate.Retry.Backoff)
	assert.Equal(t, "{{ .POSTGRES_HOST }}", migrate.Env["PGHOST"])
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeStackFile(t, "services: [not closed"))
	assert.Error(t, err)

	var invalidErr *InvalidStackError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestLoad_EmptyServices(t *testing.T) {
	_, err := Load(writeStackFile(t, "services: []"))
	assert.Error(t, err)
}

func TestEffectiveReadyCheck(t *testing.T) {
	tests := []struct {
		name     string
		desc     ServiceDescriptor
		expected ReadyCheck
	}{
		{
			name:     "one-shot always uses exit",
			desc:     ServiceDescriptor{Name: "migrate", Kind: KindOneShot},
			expected: ReadyCheck{Type: ReadyCheckExit},
		},
		{
			name: "declared check wins",
			desc: ServiceDescriptor{
				Name: "api", Kind: KindLongRunning, Ports: []int{8000},
				ReadyCheck: &ReadyCheck{Type: ReadyCheckHTTP, URL: "http://localhost:8000/healthz"},
			},
			expected: ReadyCheck{Type: ReadyCheckHTTP, URL: "http://localhost:8000/healthz"},
		},
		{
			name:     "defaults to tcp on first port",
			desc:     ServiceDescriptor{Name: "db", Kind: KindLongRunning, Ports: []int{5432, 5433}},
			expected: ReadyCheck{Type: ReadyCheckTCP, Port: 5432},
		},
		{
			name:     "no ports means ready on spawn",
			desc:     ServiceDescriptor{Name: "worker", Kind: KindLongRunning},
			expected: ReadyCheck{Type: ReadyCheckNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.desc.EffectiveReadyCheck())
		})
	}
}
