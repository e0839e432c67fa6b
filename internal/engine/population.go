package engine

import (
	"math/rand"

	"github.com/KrokodileDandy/quarantine-server/internal/domain/agent"
	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/logger"
)

// Baseline disease parameters. Skills and events scale these through the
// multiplier setters; they never write them directly.
const (
	baseInfectionProbability = 0.35
	knownCaseContactFactor   = 0.3 // known cases are partially isolated
	baseRecoveryRate         = 0.05
	baseMortalityRate        = 0.0015
)

// PopulationManager owns the agent collection, assigns roles, seeds the
// initial infections and runs the rule-based interaction step once per day.
type PopulationManager struct {
	stats  *stats.Stats
	logger *logger.Logger
	rng    *rand.Rand

	agents []agent.Agent
	rules  *agent.RuleSet

	infectionProbability float64
	recoveryRate         float64
	mortalityRate        float64
	interactionDamping   float64
}

// NewPopulationManager creates an empty population manager. Call Initialize
// before the first day runs.
func NewPopulationManager(st *stats.Stats, log *logger.Logger, rng *rand.Rand) *PopulationManager {
	pm := &PopulationManager{
		stats:  st,
		logger: log,
		rng:    rng,

		infectionProbability: baseInfectionProbability,
		recoveryRate:         baseRecoveryRate,
		mortalityRate:        baseMortalityRate,
		interactionDamping:   1.0,
	}
	pm.rules = agent.NewRuleSet(pm.baseRules()...)
	return pm
}

// baseRules returns the transition rules present from game start, authored
// in normalized input order (lower HealthState value first).
func (pm *PopulationManager) baseRules() []agent.Rule {
	return []agent.Rule{
		{
			In1: agent.Healthy, In2: agent.UnknowinglyInfected,
			Out1: agent.UnknowinglyInfected, Out2: agent.UnknowinglyInfected,
			When:    func() bool { return pm.rng.Float64() < pm.infectionProbability },
			OnApply: pm.stats.AddUnknowinglyInfected,
		},
		{
			In1: agent.Healthy, In2: agent.Infected,
			Out1: agent.UnknowinglyInfected, Out2: agent.Infected,
			When:    func() bool { return pm.rng.Float64() < pm.infectionProbability*knownCaseContactFactor },
			OnApply: pm.stats.AddUnknowinglyInfected,
		},
		{
			// A health worker carrying test kits detects a hidden case.
			In1: agent.UnknowinglyInfected, In2: agent.TestKit,
			Out1: agent.Infected, Out2: agent.TestKit,
			OnApply: func() {
				pm.stats.FoundInfected()
				pm.stats.TestKitUsed()
			},
		},
	}
}

// CureRules returns the three transitions introduced together with the cure.
// Every application administers one vaccine.
func (pm *PopulationManager) CureRules() []agent.Rule {
	vaccinate := func(also func()) func() {
		return func() {
			pm.stats.VaccineUsed()
			if also != nil {
				also()
			}
		}
	}
	return []agent.Rule{
		{
			In1: agent.Healthy, In2: agent.Cure,
			Out1: agent.Immune, Out2: agent.Cure,
			OnApply: vaccinate(nil),
		},
		{
			In1: agent.UnknowinglyInfected, In2: agent.Cure,
			Out1: agent.Immune, Out2: agent.Cure,
			OnApply: vaccinate(pm.stats.CureUnknowinglyInfected),
		},
		{
			In1: agent.Infected, In2: agent.Cure,
			Out1: agent.Immune, Out2: agent.Cure,
			OnApply: vaccinate(pm.stats.CureInfected),
		},
	}
}

// AddRule appends a transition rule at runtime.
func (pm *PopulationManager) AddRule(r agent.Rule) {
	pm.rules.Add(r)
}

// RuleCount returns the number of registered transition rules.
func (pm *PopulationManager) RuleCount() int {
	return pm.rules.Len()
}

// Initialize creates the agent population, assigns police by quota-weighted
// probability (guaranteeing the exact requested count by the end of the
// pass), selects health workers by sampling without replacement among the
// remaining citizens, and seeds the initial hidden infections the same way.
func (pm *PopulationManager) Initialize(size int, policePortion, healthWorkerPortion, infectedPortion float64) {
	pm.agents = make([]agent.Agent, size)

	policeQuota := int(float64(size) * policePortion)
	hwQuota := int(float64(size) * healthWorkerPortion)
	infectedQuota := int(float64(size) * infectedPortion)

	policeLeft := policeQuota
	for i := range pm.agents {
		remaining := size - i
		if policeLeft > 0 && pm.rng.Float64() < float64(policeLeft)/float64(remaining) {
			pm.agents[i].Role = agent.RolePolice
			policeLeft--
		}
	}

	assigned := 0
	for assigned < hwQuota {
		idx := pm.rng.Intn(size)
		if pm.agents[idx].Role != agent.RoleCitizen {
			continue
		}
		pm.agents[idx].Role = agent.RoleHealthWorker
		assigned++
	}

	seeded := 0
	for seeded < infectedQuota {
		idx := pm.rng.Intn(size)
		if pm.agents[idx].State != agent.Healthy {
			continue
		}
		pm.agents[idx].State = agent.UnknowinglyInfected
		pm.stats.AddUnknowinglyInfected()
		seeded++
	}

	pm.stats.SetInitialWorkforce(policeQuota, hwQuota)
	pm.logger.Info("population initialized: %d agents, %d police, %d health workers, %d hidden infections",
		size, policeQuota, hwQuota, infectedQuota)
}

// Size returns the number of agents, deceased included.
func (pm *PopulationManager) Size() int {
	return len(pm.agents)
}

// CountRole returns the number of living agents holding the given role.
func (pm *PopulationManager) CountRole(r agent.Role) int {
	n := 0
	for i := range pm.agents {
		if pm.agents[i].Role == r && pm.agents[i].Alive() {
			n++
		}
	}
	return n
}

// CountState returns the number of agents in the given health state.
func (pm *PopulationManager) CountState(s agent.HealthState) int {
	n := 0
	for i := range pm.agents {
		if pm.agents[i].State == s {
			n++
		}
	}
	return n
}

// DistributeNewRoles reassigns amount living citizens to the given role.
// Health workers hired with test kits start in the TEST_KIT state unless
// they are already carrying the infection. Returns false without any
// mutation when not enough eligible agents remain.
func (pm *PopulationManager) DistributeNewRoles(amount int, role agent.Role, withTestKit bool) bool {
	eligible := 0
	for i := range pm.agents {
		if pm.agents[i].Role == agent.RoleCitizen && pm.agents[i].Alive() {
			eligible++
		}
	}
	if eligible < amount {
		pm.logger.Warn("role conversion rejected: requested %d %s, only %d eligible citizens", amount, role, eligible)
		return false
	}

	converted := 0
	for converted < amount {
		idx := pm.rng.Intn(len(pm.agents))
		a := &pm.agents[idx]
		if a.Role != agent.RoleCitizen || !a.Alive() {
			continue
		}
		a.Role = role
		if role == agent.RoleHealthWorker && withTestKit && a.State == agent.Healthy {
			a.State = agent.TestKit
		}
		converted++
	}
	return true
}

// EquipCureDistributors upgrades every health worker who is not infected to
// a cure carrier and returns how many were equipped.
func (pm *PopulationManager) EquipCureDistributors() int {
	equipped := 0
	for i := range pm.agents {
		a := &pm.agents[i]
		if a.Role != agent.RoleHealthWorker {
			continue
		}
		if a.State == agent.Healthy || a.State == agent.TestKit {
			a.State = agent.Cure
			equipped++
		}
	}
	return equipped
}

// SetInteractionDamping scales the daily interaction volume; active policy
// measures push it below one.
func (pm *PopulationManager) SetInteractionDamping(f float64) {
	if f < 0 {
		f = 0
	}
	pm.interactionDamping = f
}

// ScaleInfectionProbability multiplies the per-contact infection chance.
func (pm *PopulationManager) ScaleInfectionProbability(f float64) {
	pm.infectionProbability *= f
}

// ScaleRecoveryRate multiplies the daily recovery chance.
func (pm *PopulationManager) ScaleRecoveryRate(f float64) {
	pm.recoveryRate *= f
}

// ScaleMortalityRate multiplies the daily mortality chance.
func (pm *PopulationManager) ScaleMortalityRate(f float64) {
	pm.mortalityRate *= f
}

// OnDayEnd runs the daily population step: sampled pairwise interactions
// through the rule set, then the mortality/recovery pass.
func (pm *PopulationManager) OnDayEnd(day int) {
	pm.applyRules()
	pm.progressDisease()
}

// dailyInteractions derives today's interaction count from the base rate,
// the per-day variance and the measure damping.
func (pm *PopulationManager) dailyInteractions() int {
	alive := 0
	for i := range pm.agents {
		if pm.agents[i].Alive() {
			alive++
		}
	}
	rate := pm.stats.BasicInteractionRate
	variance := 1 + (pm.rng.Float64()*2-1)*pm.stats.MaxInteractionVariance
	return int(float64(alive) * rate * variance * pm.interactionDamping)
}

// applyRules samples interaction pairs and applies the first matching rule
// to each. Pair order is normalized inside the rule set, so the convention
// of authoring rules with the lower state value first holds throughout.
func (pm *PopulationManager) applyRules() {
	n := len(pm.agents)
	if n < 2 {
		return
	}
	for k := pm.dailyInteractions(); k > 0; k-- {
		i := pm.rng.Intn(n)
		j := pm.rng.Intn(n)
		if i == j {
			continue
		}
		a, b := &pm.agents[i], &pm.agents[j]
		if !a.Alive() || !b.Alive() {
			continue
		}
		pm.rules.Apply(a, b)
	}
}

// progressDisease applies direct engine mutation: known cases either die or
// recover with small daily probabilities, hidden cases recover silently.
// Hidden cases do not die undetected; severe ones surface through testing
// before that point.
func (pm *PopulationManager) progressDisease() {
	for i := range pm.agents {
		a := &pm.agents[i]
		switch a.State {
		case agent.Infected:
			if pm.rng.Float64() < pm.mortalityRate {
				a.State = agent.Deceased
				pm.stats.DeceasedCitizen()
			} else if pm.rng.Float64() < pm.recoveryRate {
				a.State = agent.Healthy
				pm.stats.CureInfected()
			}
		case agent.UnknowinglyInfected:
			if pm.rng.Float64() < pm.recoveryRate {
				a.State = agent.Healthy
				pm.stats.CureUnknowinglyInfected()
			}
		}
	}
}
