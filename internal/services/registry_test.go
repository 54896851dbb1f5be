package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackup/internal/descriptor"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	svc := NewBaseService("db", descriptor.KindLongRunning, nil)
	require.NoError(t, reg.Register(svc))

	got, ok := reg.Get("db")
	require.True(t, ok)
	assert.Equal(t, "db", got.GetName())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(NewBaseService("db", descriptor.KindLongRunning, nil)))
	err := reg.Register(NewBaseService("db", descriptor.KindLongRunning, nil))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestRegistryGetAllSorted(t *testing.T) {
	reg := NewRegistry()

	for _, name := range []string{"worker", "api", "db"} {
		require.NoError(t, reg.Register(NewBaseService(name, descriptor.KindLongRunning, nil)))
	}

	all := reg.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, "api", all[0].GetName())
	assert.Equal(t, "db", all[1].GetName())
	assert.Equal(t, "worker", all[2].GetName())
}

func TestRegistryGetByKind(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(NewBaseService("db", descriptor.KindLongRunning, nil)))
	require.NoError(t, reg.Register(NewBaseService("migrate", descriptor.KindOneShot, []string{"db"})))
	require.NoError(t, reg.Register(NewBaseService("api", descriptor.KindLongRunning, []string{"migrate"})))

	oneShots := reg.GetByKind(descriptor.KindOneShot)
	require.Len(t, oneShots, 1)
	assert.Equal(t, "migrate", oneShots[0].GetName())

	longRunning := reg.GetByKind(descriptor.KindLongRunning)
	assert.Len(t, longRunning, 2)
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(NewBaseService("db", descriptor.KindLongRunning, nil)))
	require.NoError(t, reg.Unregister("db"))

	_, ok := reg.Get("db")
	assert.False(t, ok)
	assert.Empty(t, reg.GetAll())

	assert.Error(t, reg.Unregister("db"))
}
