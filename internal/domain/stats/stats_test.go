package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	return Profile{
		Population:             1_000_000,
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

func TestNewSeedsWeekZero(t *testing.T) {
	s := New(testProfile())

	assert.Equal(t, 10_000, s.Population, "population is agent-compressed")
	require.Equal(t, 1, s.Weeks(), "week-0 bucket must exist from the start")

	// Mutators fired during day 1 land in week 0 without panicking.
	s.AddUnknowinglyInfected()
	s.FoundInfected()
	assert.Equal(t, PopulationFactor, s.GetWeeklyStats(0).Infected)
}

func TestUpdateWeekFoldsAndResetsDailyCounters(t *testing.T) {
	s := New(testProfile())

	s.TestKitUsed()
	s.TestKitUsed()
	s.VaccineUsed()
	s.UpdateWeek(1, IncomeStatement{Income: TaxIncome{Tax: 100}})

	assert.Zero(t, s.UsedTestKitsThisDay, "daily counters reset after the fold")
	assert.Zero(t, s.UsedVaccinesThisDay)

	week := s.GetWeeklyStats(0)
	assert.Equal(t, 2, week.TestKits)
	assert.Equal(t, 1, week.Vaccines)
	assert.Equal(t, int64(100), week.IncomeStatement.Income.Tax)
}

func TestUpdateWeekAppendsOnSevenDayBoundary(t *testing.T) {
	s := New(testProfile())

	for day := 1; day <= 6; day++ {
		s.UpdateWeek(day, IncomeStatement{Income: TaxIncome{Tax: 10}})
	}
	require.Equal(t, 1, s.Weeks(), "days 1-6 stay in week 0")
	assert.Equal(t, int64(60), s.GetWeeklyStats(0).IncomeStatement.Income.Tax)

	s.UpdateWeek(7, IncomeStatement{Income: TaxIncome{Tax: 10}})
	require.Equal(t, 2, s.Weeks(), "day 7 opens week 1")
	assert.Equal(t, int64(60), s.GetWeeklyStats(0).IncomeStatement.Income.Tax, "week 0 frozen")
	assert.Equal(t, int64(10), s.GetWeeklyStats(1).IncomeStatement.Income.Tax)
}

func TestWeeklyArraysStayAligned(t *testing.T) {
	s := New(testProfile())

	for day := 1; day <= 21; day++ {
		s.AddUnknowinglyInfected()
		s.FoundInfected()
		if day%3 == 0 {
			s.CureInfected()
		}
		s.UpdateWeek(day, IncomeStatement{})
	}

	require.Equal(t, 4, s.Weeks())
	for w := 0; w < s.Weeks(); w++ {
		// Every index must be readable in every array.
		_ = s.GetWeeklyStats(w)
	}
}

func TestGetWeeklyStatsScalesPopulationFigures(t *testing.T) {
	s := New(testProfile())

	s.AddUnknowinglyInfected()
	s.AddUnknowinglyInfected()
	s.FoundInfected()
	s.FoundInfected()
	s.DeceasedCitizen()
	s.IncreasePoliceOfficers(3)
	s.IncreaseHealthWorkers(2)
	s.IncreaseResearchLevel()
	s.TestKitUsed()
	s.UpdateWeek(1, IncomeStatement{})

	week := s.GetWeeklyStats(0)
	assert.Equal(t, 2*PopulationFactor, week.Infected)
	assert.Equal(t, 1*PopulationFactor, week.Dead)
	assert.Equal(t, 3*PopulationFactor, week.Police)
	assert.Equal(t, 2*PopulationFactor, week.HealthWorkers)
	assert.Equal(t, 1, week.ResearchLevel, "research level is not population-scaled")
	assert.Equal(t, 1, week.TestKits, "consumables are not population-scaled")
}

func TestDeceasedCitizenAccounting(t *testing.T) {
	s := New(testProfile())
	before := s.Population

	s.AddUnknowinglyInfected()
	s.FoundInfected()
	s.DeceasedCitizen()

	assert.Equal(t, 0, s.Infected)
	assert.Equal(t, 1, s.Deceased)
	assert.Equal(t, before-1, s.Population)
}

func TestHiddenCasesStayHidden(t *testing.T) {
	s := New(testProfile())

	s.AddUnknowinglyInfected()
	s.CureUnknowinglyInfected()
	s.UpdateWeek(1, IncomeStatement{})

	week := s.GetWeeklyStats(0)
	assert.Zero(t, week.Infected, "undetected cases never show in the weekly infection numbers")
	assert.Zero(t, week.Cured, "silent recoveries never show in the weekly cured numbers")
}

func TestIsSolvent(t *testing.T) {
	s := New(testProfile())
	s.Budget = 500

	assert.True(t, s.IsSolvent(500), "an exact match is solvent")
	assert.False(t, s.IsSolvent(501))
}

func TestCheckInvariant(t *testing.T) {
	s := New(testProfile())
	assert.NoError(t, s.CheckInvariant())

	s.Infected = s.Population + 1
	assert.Error(t, s.CheckInvariant())
}

func TestIncomeStatementTotals(t *testing.T) {
	st := IncomeStatement{
		Income: TaxIncome{Tax: 1000},
		Expenses: ExpenseBreakdown{
			PoliceSalary:       300,
			HealthWorkerSalary: 200,
			TestKits:           50,
			Vaccines:           30,
			Measures:           20,
		},
	}
	assert.Equal(t, int64(600), st.TotalExpenses())
	assert.Equal(t, int64(400), st.Total())
}
