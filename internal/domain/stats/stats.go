// Package stats holds all numeric simulation state: population counters,
// finances, happiness and compliance, and the weekly time series. It exposes
// controlled mutators that keep the time-series invariants intact and carries
// no business logic of its own.
// This package is PURE and must NOT import any infrastructure packages.
package stats

import "fmt"

// PopulationFactor compresses the real population into simulated agents.
// One agent stands for this many people; weekly population figures are
// multiplied back up when read for display.
const PopulationFactor = 100

// Profile is the difficulty configuration record consumed once at
// construction (EASY/NORMAL/HARD, supplied by the config package).
type Profile struct {
	Population             int
	PortionOfPolice        float64
	PortionOfHealthWorkers float64
	InitialInfectedPortion float64

	Happiness              float64
	HappinessRate          float64
	Compliance             float64
	BasicInteractionRate   float64
	MaxInteractionVariance float64

	AvgSalaryPO         int64
	AvgSalaryHW         int64
	AvgPriceTestKit     int64
	AvgPriceVaccination int64

	Budget               int64
	MaxIncome            int64
	Income               int64
	LowerBoundBankruptcy int64
}

// AgentCount returns the number of simulated agents for this profile.
func (p Profile) AgentCount() int {
	return p.Population / PopulationFactor
}

// Stats is the single source of truth for numeric simulation state.
// All mutation happens through the policy, skill and population engines;
// nothing here is safe for concurrent use, the owning session serializes.
type Stats struct {
	// Population scalars (agent-compressed counts).
	Population          int
	Deceased            int
	Infected            int
	UnknowinglyInfected int
	NbrPolice           int
	NbrHW               int

	// Mood and interaction scalars.
	Happiness              float64
	HappinessRate          float64
	Compliance             float64
	BasicInteractionRate   float64
	MaxInteractionVariance float64

	// Salaries and prices.
	AvgSalaryPO             int64
	CurrentSalaryPO         int64
	AvgSalaryHW             int64
	CurrentSalaryHW         int64
	AvgPriceTestKit         int64
	CurrentPriceTestKit     int64
	AvgPriceVaccination     int64
	CurrentPriceVaccination int64

	// Finances.
	Budget               int64
	MaxIncome            int64
	Income               int64
	LowerBoundBankruptcy int64

	// Research progress, consumed by the upgrade price table.
	ResearchLevel int

	// Daily consumable counters, folded into the weekly arrays once per day.
	UsedTestKitsThisDay int
	UsedVaccinesThisDay int

	initialPopulation int

	// Weekly time series, one entry per elapsed in-game week. All arrays have
	// identical length at any observation point.
	weeklyInfected []int
	weeklyCured    []int
	weeklyDead     []int
	weeklyHW       []int
	weeklyPolice   []int
	weeklyResearch []int
	weeklyTestKits []int
	weeklyVaccines []int
	weeklyIncome   []IncomeStatement
}

// New builds a statistics store from a difficulty profile. The week-0 bucket
// is seeded so that mutators fired during the very first day have somewhere
// to land.
func New(p Profile) *Stats {
	s := &Stats{
		Population:             p.AgentCount(),
		Happiness:              p.Happiness,
		HappinessRate:          p.HappinessRate,
		Compliance:             p.Compliance,
		BasicInteractionRate:   p.BasicInteractionRate,
		MaxInteractionVariance: p.MaxInteractionVariance,

		AvgSalaryPO:             p.AvgSalaryPO,
		CurrentSalaryPO:         p.AvgSalaryPO,
		AvgSalaryHW:             p.AvgSalaryHW,
		CurrentSalaryHW:         p.AvgSalaryHW,
		AvgPriceTestKit:         p.AvgPriceTestKit,
		CurrentPriceTestKit:     p.AvgPriceTestKit,
		AvgPriceVaccination:     p.AvgPriceVaccination,
		CurrentPriceVaccination: p.AvgPriceVaccination,

		Budget:               p.Budget,
		MaxIncome:            p.MaxIncome,
		Income:               p.Income,
		LowerBoundBankruptcy: p.LowerBoundBankruptcy,
	}
	s.initialPopulation = s.Population
	s.appendWeek()
	return s
}

// appendWeek adds a fresh zero-valued element to every weekly array. The
// arrays grow atomically: either all of them gain an element or none do.
func (s *Stats) appendWeek() {
	s.weeklyInfected = append(s.weeklyInfected, 0)
	s.weeklyCured = append(s.weeklyCured, 0)
	s.weeklyDead = append(s.weeklyDead, 0)
	s.weeklyHW = append(s.weeklyHW, 0)
	s.weeklyPolice = append(s.weeklyPolice, 0)
	s.weeklyResearch = append(s.weeklyResearch, s.ResearchLevel)
	s.weeklyTestKits = append(s.weeklyTestKits, 0)
	s.weeklyVaccines = append(s.weeklyVaccines, 0)
	s.weeklyIncome = append(s.weeklyIncome, IncomeStatement{})
}

func (s *Stats) cur() int {
	return len(s.weeklyInfected) - 1
}

// Weeks returns the number of recorded weeks (including the current one).
func (s *Stats) Weeks() int {
	return len(s.weeklyInfected)
}

// UpdateWeek performs the once-per-day fold: on a 7-day boundary it first
// appends a fresh element to every weekly array, then folds the daily
// consumable counters into the current week, resets them, and accumulates
// the supplied income statement into the current week's bucket.
func (s *Stats) UpdateWeek(day int, statement IncomeStatement) {
	if day%7 == 0 {
		s.appendWeek()
	}
	w := s.cur()
	s.weeklyTestKits[w] += s.UsedTestKitsThisDay
	s.weeklyVaccines[w] += s.UsedVaccinesThisDay
	s.weeklyResearch[w] = s.ResearchLevel
	s.UsedTestKitsThisDay = 0
	s.UsedVaccinesThisDay = 0
	s.weeklyIncome[w].add(statement)
}

// GetWeeklyStats returns the fixed record for the requested week index.
// Asking for a week beyond the recorded history is a programming error.
func (s *Stats) GetWeeklyStats(week int) WeeklyStats {
	return WeeklyStats{
		Infected:        s.weeklyInfected[week] * PopulationFactor,
		Cured:           s.weeklyCured[week] * PopulationFactor,
		Dead:            s.weeklyDead[week] * PopulationFactor,
		HealthWorkers:   s.weeklyHW[week] * PopulationFactor,
		Police:          s.weeklyPolice[week] * PopulationFactor,
		ResearchLevel:   s.weeklyResearch[week],
		IncomeStatement: s.weeklyIncome[week],
		TestKits:        s.weeklyTestKits[week],
		Vaccines:        s.weeklyVaccines[week],
	}
}

// SetInitialWorkforce records the starting police and health worker counts
// without touching the weekly hiring arrays.
func (s *Stats) SetInitialWorkforce(police, healthWorkers int) {
	s.NbrPolice = police
	s.NbrHW = healthWorkers
}

// DeceasedCitizen moves one known infected agent to the deceased pool.
func (s *Stats) DeceasedCitizen() {
	s.Infected--
	s.Deceased++
	s.Population--
	s.weeklyDead[s.cur()]++
}

// FoundInfected converts one unknowing carrier into a known case.
func (s *Stats) FoundInfected() {
	s.UnknowinglyInfected--
	s.Infected++
	s.weeklyInfected[s.cur()]++
}

// CureInfected removes one known case from the infected pool.
func (s *Stats) CureInfected() {
	s.Infected--
	s.weeklyCured[s.cur()]++
}

// AddUnknowinglyInfected registers a new hidden infection. Hidden cases are
// not visible in the weekly infection numbers until detected.
func (s *Stats) AddUnknowinglyInfected() {
	s.UnknowinglyInfected++
}

// CureUnknowinglyInfected removes one hidden case. The player never saw it,
// so it does not show up in the weekly cured numbers either.
func (s *Stats) CureUnknowinglyInfected() {
	s.UnknowinglyInfected--
}

// IncreasePoliceOfficers records n newly hired police officers.
func (s *Stats) IncreasePoliceOfficers(n int) {
	s.NbrPolice += n
	s.weeklyPolice[s.cur()] += n
}

// IncreaseHealthWorkers records n newly hired health workers.
func (s *Stats) IncreaseHealthWorkers(n int) {
	s.NbrHW += n
	s.weeklyHW[s.cur()] += n
}

// TestKitUsed counts one consumed test kit for today's expense fold.
func (s *Stats) TestKitUsed() {
	s.UsedTestKitsThisDay++
}

// VaccineUsed counts one administered vaccine for today's expense fold.
func (s *Stats) VaccineUsed() {
	s.UsedVaccinesThisDay++
}

// IncreaseResearchLevel bumps the research counter used by the upgrade
// price table.
func (s *Stats) IncreaseResearchLevel() {
	s.ResearchLevel++
}

// IsSolvent reports whether the budget covers the given price.
func (s *Stats) IsSolvent(price int64) bool {
	return s.Budget >= price
}

// CheckInvariant verifies the accounting identity
// infected + unknowinglyInfected + deceased <= initial population.
// The store does not enforce it on every mutation; the session checks it
// once per day and logs violations.
func (s *Stats) CheckInvariant() error {
	if s.Infected+s.UnknowinglyInfected+s.Deceased > s.initialPopulation {
		return fmt.Errorf("population accounting broken: infected=%d unknowing=%d deceased=%d initial=%d",
			s.Infected, s.UnknowinglyInfected, s.Deceased, s.initialPopulation)
	}
	return nil
}
