package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackup/internal/descriptor"
)

func longRunning(name string, deps ...string) descriptor.ServiceDescriptor {
	return descriptor.ServiceDescriptor{
		Name: name, Kind: descriptor.KindLongRunning, Command: name, DependsOn: deps,
	}
}

func oneShot(name string, deps ...string) descriptor.ServiceDescriptor {
	return descriptor.ServiceDescriptor{
		Name: name, Kind: descriptor.KindOneShot, Command: name, DependsOn: deps,
	}
}

func TestBuildPlan_WorkedExample(t *testing.T) {
	// db <- migrate (one-shot) <- api
	plan, err := BuildPlan([]descriptor.ServiceDescriptor{
		longRunning("db"),
		oneShot("migrate", "db"),
		longRunning("api", "migrate"),
	})
	require.NoError(t, err)

	assert.Equal(t, []Tier{{"db"}, {"migrate"}, {"api"}}, plan.Tiers)
}

func TestBuildPlan_DependenciesInStrictlyEarlierTiers(t *testing.T) {
	descs := []descriptor.ServiceDescriptor{
		longRunning("db"),
		longRunning("cache"),
		oneShot("migrate", "db"),
		longRunning("api", "migrate", "cache"),
		longRunning("worker", "api", "cache"),
		longRunning("proxy", "api"),
	}

	plan, err := BuildPlan(descs)
	require.NoError(t, err)

	for _, d := range descs {
		tier := plan.TierOf(d.Name)
		require.GreaterOrEqual(t, tier, 0, "service %s missing from plan", d.Name)
		for _, dep := range d.DependsOn {
			assert.Less(t, plan.TierOf(dep), tier,
				"dependency %s of %s must be in a strictly earlier tier", dep, d.Name)
		}
	}
}

func TestBuildPlan_IndependentServicesShareATier(t *testing.T) {
	plan, err := BuildPlan([]descriptor.ServiceDescriptor{
		longRunning("db"),
		longRunning("cache"),
		longRunning("api", "db", "cache"),
	})
	require.NoError(t, err)

	assert.Equal(t, []Tier{{"cache", "db"}, {"api"}}, plan.Tiers)
}

func TestBuildPlan_OneShotsNeverShareATier(t *testing.T) {
	plan, err := BuildPlan([]descriptor.ServiceDescriptor{
		longRunning("db"),
		oneShot("migrate", "db"),
		oneShot("seed", "db"),
		longRunning("api", "migrate", "seed"),
	})
	require.NoError(t, err)

	// Both one-shots become placeable after db, each in its own singleton
	// tier, ascending name order.
	assert.Equal(t, []Tier{{"db"}, {"migrate"}, {"seed"}, {"api"}}, plan.Tiers)
}

func TestBuildPlan_Deterministic(t *testing.T) {
	descs := []descriptor.ServiceDescriptor{
		longRunning("zeta"),
		longRunning("alpha"),
		longRunning("mid", "zeta", "alpha"),
		oneShot("task", "mid"),
		longRunning("top", "task"),
	}

	first, err := BuildPlan(descs)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := BuildPlan(descs)
		require.NoError(t, err)
		assert.Equal(t, first.Tiers, again.Tiers, "plan must be reproducible")
	}
}

func TestBuildPlan_UnknownDependency(t *testing.T) {
	_, err := BuildPlan([]descriptor.ServiceDescriptor{
		longRunning("api", "db"),
	})
	require.Error(t, err)

	var unknownErr *UnknownDependencyError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "api", unknownErr.Service)
	assert.Equal(t, "db", unknownErr.Dependency)
}

func TestBuildPlan_CycleDetected(t *testing.T) {
	plan, err := BuildPlan([]descriptor.ServiceDescriptor{
		longRunning("a", "c"),
		longRunning("b", "a"),
		longRunning("c", "b"),
	})
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.NotEmpty(t, cycleErr.Path)
	// The path closes the cycle: first and last elements match.
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[len(cycleErr.Path)-1])
	// Never a partial plan.
	assert.Empty(t, plan.Tiers)
}

func TestBuildPlan_SelfCycle(t *testing.T) {
	_, err := BuildPlan([]descriptor.ServiceDescriptor{
		longRunning("a", "a"),
	})
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "a"}, cycleErr.Path)
}

func TestGraph_Dependents(t *testing.T) {
	g := FromDescriptors([]descriptor.ServiceDescriptor{
		longRunning("db"),
		oneShot("migrate", "db"),
		longRunning("api", "db", "migrate"),
	})

	assert.Equal(t, []string{"api", "migrate"}, g.Dependents("db"))
	assert.Equal(t, []string{"api"}, g.Dependents("migrate"))
	assert.Empty(t, g.Dependents("api"))
}

func TestGraph_DependenciesReturnsCopy(t *testing.T) {
	g := FromDescriptors([]descriptor.ServiceDescriptor{
		longRunning("db"),
		longRunning("api", "db"),
	})

	deps := g.Dependencies("api")
	deps[0] = "mutated"
	assert.Equal(t, []string{"db"}, g.Dependencies("api"))
}

func TestExecutionPlan_StartOrderAndString(t *testing.T) {
	plan, err := BuildPlan([]descriptor.ServiceDescriptor{
		longRunning("db"),
		oneShot("migrate", "db"),
		longRunning("api", "migrate"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"db", "migrate", "api"}, plan.StartOrder())
	assert.Equal(t, "[db] [migrate] [api]", plan.String())
	assert.Equal(t, -1, plan.TierOf("ghost"))
}
