package agent

// Rule is a declarative state transition for a pair of interacting agents.
// Input states are given in normalized order (lower HealthState value first).
// When is an optional gate evaluated per candidate application; a nil When
// always passes. OnApply runs exactly once after the outputs have been
// written, so bookkeeping side effects (counters, consumables) stay attached
// to the transition that caused them.
type Rule struct {
	In1, In2   HealthState
	Out1, Out2 HealthState
	When       func() bool
	OnApply    func()
}

// RuleSet is an ordered collection of transition rules. Matching is
// first-match-wins in insertion order: the first rule whose input pair equals
// the (normalized) agent pair AND whose When gate passes is applied, and the
// scan stops. A rule whose inputs match but whose gate fails does not stop
// the scan, since several rules may share input states behind different
// gates.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet creates a rule set seeded with the given rules, in order.
func NewRuleSet(rules ...Rule) *RuleSet {
	rs := &RuleSet{}
	rs.rules = append(rs.rules, rules...)
	return rs
}

// Add appends a rule. New rules are consulted after all existing ones.
func (rs *RuleSet) Add(r Rule) {
	rs.rules = append(rs.rules, r)
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Apply normalizes the pair, scans for the first applicable rule and, on a
// hit, writes both output states and runs the rule's OnApply hook. It reports
// whether any rule fired.
func (rs *RuleSet) Apply(a, b *Agent) bool {
	if a.State > b.State {
		a, b = b, a
	}
	for i := range rs.rules {
		r := &rs.rules[i]
		if r.In1 != a.State || r.In2 != b.State {
			continue
		}
		if r.When != nil && !r.When() {
			continue
		}
		a.State = r.Out1
		b.State = r.Out2
		if r.OnApply != nil {
			r.OnApply()
		}
		return true
	}
	return false
}
