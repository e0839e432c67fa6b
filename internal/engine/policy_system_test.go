package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrokodileDandy/quarantine-server/internal/domain/agent"
	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
	"github.com/KrokodileDandy/quarantine-server/internal/events"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/logger"
)

func testEngineProfile() stats.Profile {
	return stats.Profile{
		Population:             10_000, // 100 agents
		PortionOfPolice:        0.10,
		PortionOfHealthWorkers: 0.10,
		InitialInfectedPortion: 0.02,
		Happiness:              70,
		HappinessRate:          0,
		Compliance:             65,
		BasicInteractionRate:   0.25,
		MaxInteractionVariance: 0.3,
		AvgSalaryPO:            150,
		AvgSalaryHW:            120,
		AvgPriceTestKit:        40,
		AvgPriceVaccination:    60,
		Budget:                 2_000_000_000,
		MaxIncome:              40_000_000,
		LowerBoundBankruptcy:   -500_000_000,
	}
}

// newTestPolicy wires a small initialized population behind a policy engine.
func newTestPolicy(t *testing.T) (*EconomicPolicySystem, *PopulationManager, *stats.Stats, *events.EventLog) {
	t.Helper()
	profile := testEngineProfile()
	st := stats.New(profile)
	log := logger.New()
	rng := rand.New(rand.NewSource(42))

	pop := NewPopulationManager(st, log, rng)
	pop.Initialize(profile.AgentCount(), profile.PortionOfPolice, profile.PortionOfHealthWorkers, profile.InitialInfectedPortion)

	eventLog := events.NewEventLog(nil)
	return NewEconomicPolicySystem(st, pop, eventLog, log), pop, st, eventLog
}

func TestUpdateComplianceEndpoints(t *testing.T) {
	ps, _, st, _ := newTestPolicy(t)

	st.Happiness = 0
	ps.UpdateCompliance()
	assert.InDelta(t, 10.0, st.Compliance, 1e-9, "happiness 0 maps to compliance 10")

	st.Happiness = 100
	ps.UpdateCompliance()
	assert.InDelta(t, 100.0, st.Compliance, 1e-9, "happiness 100 maps to compliance 100")
}

func TestUpdateComplianceIsMonotonic(t *testing.T) {
	ps, _, st, _ := newTestPolicy(t)

	prev := -1.0
	for h := 0.0; h <= 100; h += 5 {
		st.Happiness = h
		ps.UpdateCompliance()
		require.Greater(t, st.Compliance, prev, "compliance must grow with happiness")
		prev = st.Compliance
	}
}

func TestCalculateIncomeBands(t *testing.T) {
	ps, _, st, _ := newTestPolicy(t)

	st.Compliance = 71
	assert.Equal(t, st.MaxIncome, ps.CalculateIncome(), "above 70 the full maximum is collected")

	st.Compliance = 19
	assert.Zero(t, ps.CalculateIncome(), "below 20 nothing is collected")

	st.Compliance = 45
	assert.Equal(t, st.MaxIncome/2, ps.CalculateIncome(), "the midpoint of the blend yields half the maximum")

	st.Compliance = 70
	assert.Equal(t, st.MaxIncome, ps.CalculateIncome(), "the blend meets the maximum exactly at 70")
}

func TestCalculateExpensesBreakdown(t *testing.T) {
	ps, _, st, _ := newTestPolicy(t)

	st.NbrPolice = 10
	st.NbrHW = 5
	st.UsedTestKitsThisDay = 3
	st.UsedVaccinesThisDay = 2
	require.True(t, ps.ToggleMeasure("sd"))

	statement := ps.CalculateExpenses()
	assert.Equal(t, int64(10*150), statement.Expenses.PoliceSalary)
	assert.Equal(t, int64(5*120), statement.Expenses.HealthWorkerSalary)
	assert.Equal(t, int64(3*40), statement.Expenses.TestKits)
	assert.Equal(t, int64(2*60), statement.Expenses.Vaccines)
	assert.Equal(t, int64(2_000_000), statement.Expenses.Measures)
}

func TestOnDayEndClosesTheBooks(t *testing.T) {
	ps, _, st, _ := newTestPolicy(t)
	st.Budget = 0
	st.Happiness = 100 // full compliance, full income
	before := st.Weeks()

	ps.OnDayEnd(1)

	expenses := int64(st.NbrPolice)*st.CurrentSalaryPO + int64(st.NbrHW)*st.CurrentSalaryHW
	assert.Equal(t, st.MaxIncome-expenses, st.Budget)
	assert.Equal(t, before, st.Weeks(), "day 1 stays in the seeded week-0 bucket")
}

func TestBuyPoliceOfficersExactBudget(t *testing.T) {
	ps, pop, st, _ := newTestPolicy(t)
	policeBefore := pop.CountRole(agent.RolePolice)

	price := int64(2) * st.CurrentSalaryPO * hiringCostDays
	st.Budget = price

	require.True(t, ps.BuyPoliceOfficers(2), "an exactly sufficient budget must buy")
	assert.Zero(t, st.Budget)
	assert.Equal(t, policeBefore+2, pop.CountRole(agent.RolePolice))
}

func TestBuyPoliceOfficersInsolvent(t *testing.T) {
	ps, pop, st, _ := newTestPolicy(t)
	policeBefore := pop.CountRole(agent.RolePolice)
	nbrBefore := st.NbrPolice

	price := int64(2) * st.CurrentSalaryPO * hiringCostDays
	st.Budget = price - 1

	require.False(t, ps.BuyPoliceOfficers(2), "one unit short must reject")
	assert.Equal(t, price-1, st.Budget, "a rejected purchase leaves the budget untouched")
	assert.Equal(t, policeBefore, pop.CountRole(agent.RolePolice), "no roles converted on rejection")
	assert.Equal(t, nbrBefore, st.NbrPolice)
}

func TestBuyPoliceOfficersRejectsNonPositiveAmount(t *testing.T) {
	ps, _, _, _ := newTestPolicy(t)
	assert.False(t, ps.BuyPoliceOfficers(0))
	assert.False(t, ps.BuyPoliceOfficers(-3))
}

func TestBuyTestKitHWsPricesTheKit(t *testing.T) {
	ps, pop, st, _ := newTestPolicy(t)
	hwBefore := pop.CountRole(agent.RoleHealthWorker)

	price := int64(1) * (st.CurrentSalaryHW*hiringCostDays + st.CurrentPriceTestKit)
	st.Budget = price

	require.True(t, ps.BuyTestKitHWs(1))
	assert.Zero(t, st.Budget)
	assert.Equal(t, hwBefore+1, pop.CountRole(agent.RoleHealthWorker))
}

func TestIntroduceCureOnce(t *testing.T) {
	ps, pop, st, eventLog := newTestPolicy(t)
	st.Budget = 2 * curePrice
	rulesBefore := pop.RuleCount()

	require.True(t, ps.IntroduceCure())
	assert.Equal(t, int64(curePrice), st.Budget)
	assert.Equal(t, rulesBefore+3, pop.RuleCount(), "the cure adds three transition rules")
	assert.True(t, ps.CureIntroduced())
	assert.Len(t, eventLog.GetByType(events.EventTypeCureIntroduced), 1)

	require.False(t, ps.IntroduceCure(), "a second introduction must fail")
	assert.Equal(t, int64(curePrice), st.Budget, "the failed retry costs nothing")
	assert.Equal(t, rulesBefore+3, pop.RuleCount())
}

func TestToggleMeasure(t *testing.T) {
	ps, pop, st, eventLog := newTestPolicy(t)
	rateBefore := st.HappinessRate

	require.True(t, ps.ToggleMeasure("ld"))
	assert.InDelta(t, rateBefore-0.45, st.HappinessRate, 1e-9)
	assert.InDelta(t, 0.35, pop.interactionDamping, 1e-9)

	require.True(t, ps.ToggleMeasure("sd"))
	assert.InDelta(t, 0.35*0.85, pop.interactionDamping, 1e-9, "active measures multiply")

	require.True(t, ps.ToggleMeasure("ld"), "toggling off restores the rate and damping")
	assert.InDelta(t, rateBefore-0.05, st.HappinessRate, 1e-9)
	assert.InDelta(t, 0.85, pop.interactionDamping, 1e-9)

	assert.Len(t, eventLog.GetByType(events.EventTypeMeasureToggled), 3)
}

func TestToggleMeasureUnknownCode(t *testing.T) {
	ps, _, _, _ := newTestPolicy(t)
	assert.False(t, ps.ToggleMeasure("nope"))
}

func TestMeasuresOrdered(t *testing.T) {
	ps, _, _, _ := newTestPolicy(t)
	list := ps.Measures()
	require.Len(t, list, 4)
	codes := []string{list[0].Code, list[1].Code, list[2].Code, list[3].Code}
	assert.Equal(t, []string{"sd", "mm", "cf", "ld"}, codes)
}

func TestDriftHappinessClamps(t *testing.T) {
	ps, _, st, _ := newTestPolicy(t)

	st.Happiness = 99.8
	st.HappinessRate = 1
	ps.driftHappiness()
	assert.Equal(t, 100.0, st.Happiness)

	st.Happiness = 0.1
	st.HappinessRate = -1
	ps.driftHappiness()
	assert.Equal(t, 0.0, st.Happiness)
}
