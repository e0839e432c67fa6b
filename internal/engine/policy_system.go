package engine

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/KrokodileDandy/quarantine-server/internal/domain/agent"
	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
	"github.com/KrokodileDandy/quarantine-server/internal/events"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/logger"
)

// Purchase pricing. Hiring a worker costs a signing bonus worth this many
// daily salaries on top of equipping them.
const (
	hiringCostDays = 10
	curePrice      = 1_000_000_000
)

// EconomicPolicySystem runs the daily financial close and gates all
// budget-touching purchases. It is a Clock subscriber: once per in-game day
// it recomputes compliance, income and expenses, updates the budget and
// hands the day's income statement to the statistics store.
type EconomicPolicySystem struct {
	stats    *stats.Stats
	pop      *PopulationManager
	eventLog *events.EventLog
	logger   *logger.Logger

	measures       map[string]*Measure
	cureIntroduced bool
}

// NewEconomicPolicySystem creates the policy engine with the default
// measure catalog.
func NewEconomicPolicySystem(st *stats.Stats, pop *PopulationManager, eventLog *events.EventLog, log *logger.Logger) *EconomicPolicySystem {
	return &EconomicPolicySystem{
		stats:    st,
		pop:      pop,
		eventLog: eventLog,
		logger:   log,
		measures: defaultMeasures(),
	}
}

// OnDayEnd performs the daily close: happiness drift, compliance, income,
// expenses, budget update and the income statement fold.
func (ps *EconomicPolicySystem) OnDayEnd(day int) {
	ps.driftHappiness()
	ps.UpdateCompliance()
	income := ps.CalculateIncome()
	statement := ps.CalculateExpenses()
	statement.Income.Tax = income
	ps.UpdateBudget(income, statement.TotalExpenses())

	ps.stats.UpdateWeek(day, statement)

	ps.logger.Event("DAILY_CLOSE", "SYSTEM_POLICY",
		"day "+humanize.Comma(int64(day))+
			" income "+humanize.Comma(income)+
			" expenses "+humanize.Comma(statement.TotalExpenses())+
			" budget "+humanize.Comma(ps.stats.Budget))
}

// driftHappiness moves happiness by the current rate, clamped to [0,100].
func (ps *EconomicPolicySystem) driftHappiness() {
	h := ps.stats.Happiness + ps.stats.HappinessRate
	ps.stats.Happiness = math.Min(100, math.Max(0, h))
}

// UpdateCompliance derives compliance from happiness:
// compliance = (19/4950)*h^2 + (511/990)*h + 10, which maps happiness 0 to
// compliance 10 and happiness 100 to compliance 100.
func (ps *EconomicPolicySystem) UpdateCompliance() {
	h := ps.stats.Happiness
	ps.stats.Compliance = (19.0/4950.0)*h*h + (511.0/990.0)*h + 10
}

// CalculateIncome derives today's tax income from compliance. Above 70 the
// treasury collects the full maximum; below 20 nothing; in between a linear
// blend of (compliance-20)*2 percent of the maximum, which meets the full
// amount exactly at compliance 70.
func (ps *EconomicPolicySystem) CalculateIncome() int64 {
	c := ps.stats.Compliance
	var income int64
	switch {
	case c > 70:
		income = ps.stats.MaxIncome
	case c < 20:
		income = 0
	default:
		income = int64(math.Round((c - 20) * 2 / 100 * float64(ps.stats.MaxIncome)))
	}
	ps.stats.Income = income
	return income
}

// CalculateExpenses aggregates salaries, today's consumable usage and the
// daily cost of every active measure into an expense breakdown.
func (ps *EconomicPolicySystem) CalculateExpenses() stats.IncomeStatement {
	var st stats.IncomeStatement
	st.Expenses.PoliceSalary = int64(ps.stats.NbrPolice) * ps.stats.CurrentSalaryPO
	st.Expenses.HealthWorkerSalary = int64(ps.stats.NbrHW) * ps.stats.CurrentSalaryHW
	st.Expenses.TestKits = int64(ps.stats.UsedTestKitsThisDay) * ps.stats.CurrentPriceTestKit
	st.Expenses.Vaccines = int64(ps.stats.UsedVaccinesThisDay) * ps.stats.CurrentPriceVaccination
	for _, m := range ps.measures {
		if m.Active {
			st.Expenses.Measures += m.DailyCost
		}
	}
	return st
}

// UpdateBudget applies the day's result to the budget.
func (ps *EconomicPolicySystem) UpdateBudget(income, expenses int64) {
	ps.stats.Budget += income - expenses
}

// BuyPoliceOfficers hires amount new police officers. Verifies solvency and
// that the population can supply the headcount before any mutation.
func (ps *EconomicPolicySystem) BuyPoliceOfficers(amount int) bool {
	if amount <= 0 {
		return false
	}
	price := int64(amount) * ps.stats.CurrentSalaryPO * hiringCostDays
	if !ps.stats.IsSolvent(price) {
		ps.logger.Warn("police purchase rejected: price %s exceeds budget %s",
			humanize.Comma(price), humanize.Comma(ps.stats.Budget))
		return false
	}
	if !ps.pop.DistributeNewRoles(amount, agent.RolePolice, false) {
		return false
	}
	ps.stats.Budget -= price
	ps.stats.IncreasePoliceOfficers(amount)
	ps.emitPurchase("POLICE_OFFICERS", amount, price)
	return true
}

// BuyHealthWorkers hires amount new health workers without test kits.
func (ps *EconomicPolicySystem) BuyHealthWorkers(amount int) bool {
	if amount <= 0 {
		return false
	}
	price := int64(amount) * ps.stats.CurrentSalaryHW * hiringCostDays
	if !ps.stats.IsSolvent(price) {
		ps.logger.Warn("health worker purchase rejected: price %s exceeds budget %s",
			humanize.Comma(price), humanize.Comma(ps.stats.Budget))
		return false
	}
	if !ps.pop.DistributeNewRoles(amount, agent.RoleHealthWorker, false) {
		return false
	}
	ps.stats.Budget -= price
	ps.stats.IncreaseHealthWorkers(amount)
	ps.emitPurchase("HEALTH_WORKERS", amount, price)
	return true
}

// BuyTestKitHWs hires amount health workers equipped with test kits, so
// they detect hidden infections on contact.
func (ps *EconomicPolicySystem) BuyTestKitHWs(amount int) bool {
	if amount <= 0 {
		return false
	}
	price := int64(amount) * (ps.stats.CurrentSalaryHW*hiringCostDays + ps.stats.CurrentPriceTestKit)
	if !ps.stats.IsSolvent(price) {
		ps.logger.Warn("test kit team purchase rejected: price %s exceeds budget %s",
			humanize.Comma(price), humanize.Comma(ps.stats.Budget))
		return false
	}
	if !ps.pop.DistributeNewRoles(amount, agent.RoleHealthWorker, true) {
		return false
	}
	ps.stats.Budget -= price
	ps.stats.IncreaseHealthWorkers(amount)
	ps.emitPurchase("TEST_KIT_HEALTH_WORKERS", amount, price)
	return true
}

// IntroduceCure pays for the cure research, appends the three cure
// transition rules and turns eligible health workers into cure
// distributors. A second introduction fails.
func (ps *EconomicPolicySystem) IntroduceCure() bool {
	if ps.cureIntroduced {
		return false
	}
	if !ps.stats.IsSolvent(curePrice) {
		ps.logger.Warn("cure rejected: price %s exceeds budget %s",
			humanize.Comma(int64(curePrice)), humanize.Comma(ps.stats.Budget))
		return false
	}
	ps.stats.Budget -= curePrice
	for _, r := range ps.pop.CureRules() {
		ps.pop.AddRule(r)
	}
	equipped := ps.pop.EquipCureDistributors()
	ps.cureIntroduced = true

	ps.logger.Event("CURE_INTRODUCED", "PLAYER", humanize.Comma(int64(equipped))+" distributors equipped")
	ps.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeCureIntroduced,
		Actor:   "PLAYER",
		Payload: map[string]any{"price": int64(curePrice), "distributors": equipped},
	})
	return true
}

// CureIntroduced reports whether the cure has been purchased.
func (ps *EconomicPolicySystem) CureIntroduced() bool {
	return ps.cureIntroduced
}

// ToggleMeasure flips the named measure and rewires its side effects:
// interaction damping on the population and a drag on the happiness trend.
// Returns false for an unknown code.
func (ps *EconomicPolicySystem) ToggleMeasure(code string) bool {
	m, ok := ps.measures[code]
	if !ok {
		return false
	}
	m.Active = !m.Active
	if m.Active {
		ps.stats.HappinessRate -= m.MoodPenalty
	} else {
		ps.stats.HappinessRate += m.MoodPenalty
	}

	damping := 1.0
	for _, measure := range ps.measures {
		if measure.Active {
			damping *= measure.ContactDamp
		}
	}
	ps.pop.SetInteractionDamping(damping)

	ps.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeMeasureToggled,
		Actor:   "PLAYER",
		Payload: map[string]any{"code": m.Code, "name": m.Name, "active": m.Active},
	})
	return true
}

// Measures returns the measure catalog for display.
func (ps *EconomicPolicySystem) Measures() []*Measure {
	list := make([]*Measure, 0, len(ps.measures))
	for _, code := range []string{"sd", "mm", "cf", "ld"} {
		if m, ok := ps.measures[code]; ok {
			list = append(list, m)
		}
	}
	return list
}

// measure returns the named measure for skill effects; nil if unknown.
func (ps *EconomicPolicySystem) measure(code string) *Measure {
	return ps.measures[code]
}

func (ps *EconomicPolicySystem) emitPurchase(kind string, amount int, price int64) {
	ps.logger.Event("PURCHASE", "PLAYER", kind+" x"+humanize.Comma(int64(amount))+" for "+humanize.Comma(price))
	ps.eventLog.Append(events.GameEvent{
		Type:    events.EventTypePurchase,
		Actor:   "PLAYER",
		Payload: map[string]any{"kind": kind, "amount": amount, "price": price},
	})
}
