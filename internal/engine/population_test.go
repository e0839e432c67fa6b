package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrokodileDandy/quarantine-server/internal/domain/agent"
	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/logger"
)

func newTestPopulation(t *testing.T, seed int64) (*PopulationManager, *stats.Stats) {
	t.Helper()
	st := stats.New(testEngineProfile())
	return NewPopulationManager(st, logger.New(), rand.New(rand.NewSource(seed))), st
}

func TestInitializeAssignsExactQuotas(t *testing.T) {
	pm, st := newTestPopulation(t, 7)
	pm.Initialize(200, 0.05, 0.04, 0.01)

	assert.Equal(t, 200, pm.Size())
	assert.Equal(t, 10, pm.CountRole(agent.RolePolice), "police quota must be hit exactly")
	assert.Equal(t, 8, pm.CountRole(agent.RoleHealthWorker), "health worker quota must be hit exactly")
	assert.Equal(t, 2, pm.CountState(agent.UnknowinglyInfected), "seeded infections must be hit exactly")
	assert.Equal(t, 2, st.UnknowinglyInfected, "the store sees every seeded infection")
	assert.Equal(t, 10, st.NbrPolice)
	assert.Equal(t, 8, st.NbrHW)
}

func TestInitializeQuotasAcrossSeeds(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		pm, _ := newTestPopulation(t, seed)
		pm.Initialize(100, 0.10, 0.10, 0.02)
		require.Equal(t, 10, pm.CountRole(agent.RolePolice), "seed %d", seed)
		require.Equal(t, 10, pm.CountRole(agent.RoleHealthWorker), "seed %d", seed)
		require.Equal(t, 2, pm.CountState(agent.UnknowinglyInfected), "seed %d", seed)
	}
}

func TestDistributeNewRolesConservation(t *testing.T) {
	pm, _ := newTestPopulation(t, 7)
	pm.Initialize(100, 0.10, 0.10, 0.0)

	citizensBefore := pm.CountRole(agent.RoleCitizen)
	require.True(t, pm.DistributeNewRoles(5, agent.RolePolice, false))

	assert.Equal(t, citizensBefore-5, pm.CountRole(agent.RoleCitizen))
	assert.Equal(t, 15, pm.CountRole(agent.RolePolice))
	assert.Equal(t, 100, pm.Size(), "conversion never changes the population size")
}

func TestDistributeNewRolesInsufficientEligible(t *testing.T) {
	pm, _ := newTestPopulation(t, 7)
	pm.Initialize(10, 0.5, 0.3, 0.0)

	// 2 citizens remain; asking for 3 must fail without any mutation.
	citizensBefore := pm.CountRole(agent.RoleCitizen)
	require.Equal(t, 2, citizensBefore)
	require.False(t, pm.DistributeNewRoles(3, agent.RolePolice, false))
	assert.Equal(t, citizensBefore, pm.CountRole(agent.RoleCitizen))
	assert.Equal(t, 5, pm.CountRole(agent.RolePolice))
}

func TestDistributeNewRolesWithTestKit(t *testing.T) {
	pm, _ := newTestPopulation(t, 7)
	pm.Initialize(50, 0.0, 0.0, 0.0)

	require.True(t, pm.DistributeNewRoles(5, agent.RoleHealthWorker, true))
	assert.Equal(t, 5, pm.CountState(agent.TestKit), "healthy hires carry the kit state")
}

func TestEquipCureDistributors(t *testing.T) {
	pm, _ := newTestPopulation(t, 7)
	pm.Initialize(50, 0.0, 0.2, 0.0)
	require.True(t, pm.DistributeNewRoles(5, agent.RoleHealthWorker, true))

	equipped := pm.EquipCureDistributors()
	assert.Equal(t, 15, equipped, "healthy and kit-carrying workers become distributors")
	assert.Equal(t, 15, pm.CountState(agent.Cure))
	assert.Zero(t, pm.CountState(agent.TestKit))
}

func TestProgressDiseaseMortalityAndRecovery(t *testing.T) {
	pm, st := newTestPopulation(t, 7)
	pm.Initialize(100, 0.0, 0.0, 0.0)

	// Turn everyone into a known case and force the outcomes.
	for i := range pm.agents {
		pm.agents[i].State = agent.Infected
		st.AddUnknowinglyInfected()
		st.FoundInfected()
	}

	pm.mortalityRate = 1
	pm.recoveryRate = 0
	pm.progressDisease()
	assert.Equal(t, 100, pm.CountState(agent.Deceased), "certain mortality kills every case")
	assert.Equal(t, 100, st.Deceased)
	assert.Zero(t, st.Infected)
}

func TestProgressDiseaseHiddenCasesRecoverSilently(t *testing.T) {
	pm, st := newTestPopulation(t, 7)
	pm.Initialize(100, 0.0, 0.0, 0.0)

	for i := range pm.agents {
		pm.agents[i].State = agent.UnknowinglyInfected
		st.AddUnknowinglyInfected()
	}

	pm.mortalityRate = 1 // must not apply to hidden cases
	pm.recoveryRate = 1
	pm.progressDisease()
	assert.Equal(t, 100, pm.CountState(agent.Healthy))
	assert.Zero(t, st.UnknowinglyInfected)
	assert.Zero(t, st.Deceased, "hidden cases never die undetected")
}

func TestApplyRulesSpreadsInfection(t *testing.T) {
	pm, st := newTestPopulation(t, 7)
	pm.Initialize(100, 0.0, 0.0, 0.1)

	pm.infectionProbability = 1
	st.BasicInteractionRate = 2
	st.MaxInteractionVariance = 0

	pm.applyRules()
	assert.Greater(t, st.UnknowinglyInfected, 10, "certain transmission must grow the hidden pool")
}

func TestInteractionDampingZeroStopsContact(t *testing.T) {
	pm, st := newTestPopulation(t, 7)
	pm.Initialize(100, 0.0, 0.0, 0.1)

	pm.infectionProbability = 1
	pm.SetInteractionDamping(0)
	before := st.UnknowinglyInfected

	pm.applyRules()
	assert.Equal(t, before, st.UnknowinglyInfected, "zero damping means zero interactions")
}

func TestScaleSettersMultiply(t *testing.T) {
	pm, _ := newTestPopulation(t, 7)

	pm.ScaleInfectionProbability(2)
	assert.InDelta(t, baseInfectionProbability*2, pm.infectionProbability, 1e-9)

	pm.ScaleRecoveryRate(1.2)
	assert.InDelta(t, baseRecoveryRate*1.2, pm.recoveryRate, 1e-9)

	pm.ScaleMortalityRate(0.7)
	assert.InDelta(t, baseMortalityRate*0.7, pm.mortalityRate, 1e-9)

	pm.SetInteractionDamping(-1)
	assert.Equal(t, 0.0, pm.interactionDamping, "negative damping clamps to zero")
}

func TestCureRulesImmunize(t *testing.T) {
	pm, st := newTestPopulation(t, 7)
	for _, r := range pm.CureRules() {
		pm.AddRule(r)
	}

	carrier := &agent.Agent{Role: agent.RoleHealthWorker, State: agent.Cure}

	sick := &agent.Agent{State: agent.Infected}
	st.AddUnknowinglyInfected()
	st.FoundInfected()
	require.True(t, pm.rules.Apply(sick, carrier))
	assert.Equal(t, agent.Immune, sick.State)
	assert.Equal(t, agent.Cure, carrier.State, "the distributor keeps distributing")
	assert.Zero(t, st.Infected)
	assert.Equal(t, 1, st.UsedVaccinesThisDay)

	healthy := &agent.Agent{State: agent.Healthy}
	require.True(t, pm.rules.Apply(healthy, carrier))
	assert.Equal(t, agent.Immune, healthy.State)
	assert.Equal(t, 2, st.UsedVaccinesThisDay)
}
