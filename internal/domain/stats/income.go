package stats

// TaxIncome is the income side of a daily or weekly income statement.
type TaxIncome struct {
	Tax int64 `json:"tax"`
}

// ExpenseBreakdown is the expense side of an income statement.
type ExpenseBreakdown struct {
	PoliceSalary       int64 `json:"policeSalary"`
	HealthWorkerSalary int64 `json:"healthWorkerSalary"`
	TestKits           int64 `json:"testKits"`
	Vaccines           int64 `json:"vaccines"`
	Measures           int64 `json:"measures"`
}

// IncomeStatement is the daily financial close emitted by the policy engine
// and accumulated into the current week's bucket.
type IncomeStatement struct {
	Income   TaxIncome        `json:"income"`
	Expenses ExpenseBreakdown `json:"expenses"`
}

// Total returns income minus the sum of all expense categories.
func (is IncomeStatement) Total() int64 {
	return is.Income.Tax - is.TotalExpenses()
}

// TotalExpenses returns the sum of all expense categories.
func (is IncomeStatement) TotalExpenses() int64 {
	e := is.Expenses
	return e.PoliceSalary + e.HealthWorkerSalary + e.TestKits + e.Vaccines + e.Measures
}

// add folds another statement into this one, category by category.
func (is *IncomeStatement) add(other IncomeStatement) {
	is.Income.Tax += other.Income.Tax
	is.Expenses.PoliceSalary += other.Expenses.PoliceSalary
	is.Expenses.HealthWorkerSalary += other.Expenses.HealthWorkerSalary
	is.Expenses.TestKits += other.Expenses.TestKits
	is.Expenses.Vaccines += other.Expenses.Vaccines
	is.Expenses.Measures += other.Expenses.Measures
}

// WeeklyStats is the fixed record returned for one week of history.
// Population-derived figures are already scaled by PopulationFactor;
// research level, consumable counts and the income statement are raw.
type WeeklyStats struct {
	Infected        int             `json:"infected"`
	Cured           int             `json:"cured"`
	Dead            int             `json:"dead"`
	HealthWorkers   int             `json:"healthWorkers"`
	Police          int             `json:"police"`
	ResearchLevel   int             `json:"researchLevel"`
	IncomeStatement IncomeStatement `json:"incomeStatement"`
	TestKits        int             `json:"testKits"`
	Vaccines        int             `json:"vaccines"`
}
