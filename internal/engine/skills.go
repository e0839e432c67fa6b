package engine

import (
	"github.com/KrokodileDandy/quarantine-server/internal/domain/agent"
	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
)

// Skill tree names.
const (
	treeMedical  = "medical"
	treePolice   = "police"
	treeTesting  = "testing"
	treeLockdown = "lockdown"
	treeCitizen  = "citizen"
)

// buildSkillCatalog returns the fixed upgrade graph. Effects are plain
// closures over the engines they mutate; prerequisite edges are hard-coded
// per skill and validated by the skill system at startup.
func buildSkillCatalog(st *stats.Stats, pop *PopulationManager, policy *EconomicPolicySystem) []Skill {
	scalePrice := func(price *int64, factor float64) func() {
		return func() { *price = int64(float64(*price) * factor) }
	}
	scaleMeasureCost := func(code string, factor float64) func() {
		return func() {
			if m := policy.measure(code); m != nil {
				m.DailyCost = int64(float64(m.DailyCost) * factor)
			}
		}
	}
	freeHires := func(amount int, role agent.Role, withTestKit bool) func() {
		return func() {
			if pop.DistributeNewRoles(amount, role, withTestKit) {
				if role == agent.RolePolice {
					st.IncreasePoliceOfficers(amount)
				} else {
					st.IncreaseHealthWorkers(amount)
				}
			}
		}
	}

	return []Skill{
		// --- medical treatment tree ---
		{
			ID: "med_research_1", Tree: treeMedical, Points: 1,
			Title:       "Research Funding I",
			Description: "Seed funding for university virology labs.",
			Effect:      st.IncreaseResearchLevel,
		},
		{
			ID: "med_research_2", Tree: treeMedical, Points: 2, Requires: []SkillID{"med_research_1"},
			Title:       "Research Funding II",
			Description: "National research program with dedicated institutes.",
			Effect:      st.IncreaseResearchLevel,
		},
		{
			ID: "med_research_3", Tree: treeMedical, Points: 3, Requires: []SkillID{"med_research_2"},
			Title:       "Research Funding III",
			Description: "International cooperation on antiviral research.",
			Effect:      st.IncreaseResearchLevel,
		},
		{
			ID: "med_suppliers", Tree: treeMedical, Points: 2, Requires: []SkillID{"med_research_1"},
			Title:       "Additional Medical Suppliers",
			Description: "Second-source contracts push vaccine prices down.",
			Effect:      scalePrice(&st.CurrentPriceVaccination, 0.8),
		},
		{
			ID: "med_facilities_1", Tree: treeMedical, Points: 2, Requires: []SkillID{"med_research_1"},
			Title:       "Upgrade Medical Facilities I",
			Description: "More beds and oxygen shorten the average case.",
			Effect:      func() { pop.ScaleRecoveryRate(1.2) },
		},
		{
			ID: "med_facilities_2", Tree: treeMedical, Points: 3, Requires: []SkillID{"med_facilities_1"},
			Title:       "Upgrade Medical Facilities II",
			Description: "Dedicated infection wards speed up recovery further.",
			Effect:      func() { pop.ScaleRecoveryRate(1.2) },
		},
		{
			ID: "med_facilities_3", Tree: treeMedical, Points: 4, Requires: []SkillID{"med_facilities_2"},
			Title:       "Upgrade Medical Facilities III",
			Description: "Intensive care expansion cuts mortality.",
			Effect:      func() { pop.ScaleMortalityRate(0.7) },
		},
		{
			ID: "med_vaccine_program", Tree: treeMedical, Points: 4, Requires: []SkillID{"med_research_3"},
			Title:       "National Vaccine Program",
			Description: "Bulk production makes every dose cheaper.",
			Effect:      scalePrice(&st.CurrentPriceVaccination, 0.7),
		},

		// --- police tree ---
		{
			ID: "pol_training", Tree: treePolice, Points: 1,
			Title:       "Police Academy Reform",
			Description: "Streamlined training lowers the cost per officer.",
			Effect:      scalePrice(&st.CurrentSalaryPO, 0.95),
		},
		{
			ID: "pol_expertise", Tree: treePolice, Points: 2, Requires: []SkillID{"pol_training"},
			Title:       "Learn Expertise",
			Description: "De-escalation training keeps public order without friction.",
			Effect:      func() { st.HappinessRate += 0.1 },
		},
		{
			ID: "pol_drones", Tree: treePolice, Points: 3, Requires: []SkillID{"pol_expertise"},
			Title:       "Aerial Patrols",
			Description: "Drone patrols break up large gatherings early.",
			Effect:      func() { st.BasicInteractionRate *= 0.95 },
		},
		{
			ID: "pol_military_1", Tree: treePolice, Points: 2, Requires: []SkillID{"pol_training"},
			Title:       "Military Support I",
			Description: "A first contingent of soldiers joins patrol duty.",
			Effect:      freeHires(100, agent.RolePolice, false),
		},
		{
			ID: "pol_military_2", Tree: treePolice, Points: 3, Requires: []SkillID{"pol_military_1"},
			Title:       "Military Support II",
			Description: "Reserve units are called up.",
			Effect:      freeHires(250, agent.RolePolice, false),
		},
		{
			ID: "pol_military_3", Tree: treePolice, Points: 4, Requires: []SkillID{"pol_military_2"},
			Title:       "Military Support III",
			Description: "Full deployment of the armed forces.",
			Effect:      freeHires(500, agent.RolePolice, false),
		},

		// --- testing tree ---
		{
			ID: "test_dna", Tree: treeTesting, Points: 1,
			Title:       "DNA Sequencing",
			Description: "Sequencing the pathogen unlocks targeted test design.",
			Effect:      st.IncreaseResearchLevel,
		},
		{
			ID: "test_rapid", Tree: treeTesting, Points: 2, Requires: []SkillID{"test_dna"},
			Title:       "Rapid Tests",
			Description: "Lateral-flow kits are far cheaper to produce.",
			Effect:      scalePrice(&st.CurrentPriceTestKit, 0.8),
		},
		{
			ID: "test_suppliers", Tree: treeTesting, Points: 2, Requires: []SkillID{"test_dna"},
			Title:       "Additional Test Kit Suppliers",
			Description: "Competing suppliers drive kit prices down.",
			Effect:      scalePrice(&st.CurrentPriceTestKit, 0.9),
		},
		{
			ID: "test_mobile_units", Tree: treeTesting, Points: 3, Requires: []SkillID{"test_rapid"},
			Title:       "Mobile Testing Units",
			Description: "Equipped teams sweep residential districts.",
			Effect:      freeHires(50, agent.RoleHealthWorker, true),
		},
		{
			ID: "test_nationwide", Tree: treeTesting, Points: 4, Requires: []SkillID{"test_suppliers", "test_mobile_units"},
			Title:       "Nationwide Testing",
			Description: "Blanket testing puts the lab network years ahead.",
			Effect: func() {
				st.IncreaseResearchLevel()
				st.CurrentPriceTestKit = int64(float64(st.CurrentPriceTestKit) * 0.9)
			},
		},

		// --- lockdown tree ---
		{
			ID: "ld_awareness", Tree: treeLockdown, Points: 1,
			Title:       "Public Awareness Campaign",
			Description: "Posters and spots make distancing cheaper to run.",
			Effect:      scaleMeasureCost("sd", 0.9),
		},
		{
			ID: "ld_border_control", Tree: treeLockdown, Points: 2, Requires: []SkillID{"ld_awareness"},
			Title:       "Border Controls",
			Description: "Entry screening evens out interaction spikes.",
			Effect:      func() { st.MaxInteractionVariance *= 0.8 },
		},
		{
			ID: "ld_curfew_logistics", Tree: treeLockdown, Points: 2, Requires: []SkillID{"ld_awareness"},
			Title:       "Curfew Logistics",
			Description: "Practiced procedures reduce the cost of curfews.",
			Effect:      scaleMeasureCost("cf", 0.8),
		},
		{
			ID: "ld_enforcement", Tree: treeLockdown, Points: 3, Requires: []SkillID{"ld_curfew_logistics"},
			Title:       "Lockdown Enforcement",
			Description: "Coordinated enforcement makes full lockdowns cheaper.",
			Effect:      scaleMeasureCost("ld", 0.8),
		},
		{
			ID: "ld_exit_strategy", Tree: treeLockdown, Points: 4, Requires: []SkillID{"ld_enforcement"},
			Title:       "Exit Strategy",
			Description: "A published reopening plan restores public morale.",
			Effect:      func() { st.HappinessRate += 0.2 },
		},

		// --- citizen tree ---
		{
			ID: "cit_financial_support", Tree: treeCitizen, Points: 1,
			Title:       "Financial Support",
			Description: "Direct payments soften the crisis for households.",
			Effect:      func() { st.Happiness = min(100, st.Happiness+5) },
		},
		{
			ID: "cit_home_office", Tree: treeCitizen, Points: 2, Requires: []SkillID{"cit_financial_support"},
			Title:       "Home Office Subsidies",
			Description: "Remote work keeps commuters out of circulation.",
			Effect:      func() { st.BasicInteractionRate *= 0.9 },
		},
		{
			ID: "cit_masks", Tree: treeCitizen, Points: 2, Requires: []SkillID{"cit_financial_support"},
			Title:       "Free Mask Distribution",
			Description: "Masks for everyone cut contact effectiveness.",
			Effect:      func() { st.BasicInteractionRate *= 0.9 },
		},
		{
			ID: "cit_event_ban", Tree: treeCitizen, Points: 3, Requires: []SkillID{"cit_home_office"},
			Title:       "Large Event Ban",
			Description: "No concerts or matches; fewer super-spreader days.",
			Effect: func() {
				st.MaxInteractionVariance *= 0.7
				st.HappinessRate -= 0.1
			},
		},
		{
			ID: "cit_hygiene_campaign", Tree: treeCitizen, Points: 3, Requires: []SkillID{"cit_masks"},
			Title:       "Hygiene Campaign",
			Description: "Hand-washing education lowers infection per contact.",
			Effect:      func() { pop.ScaleInfectionProbability(0.9) },
		},
		{
			ID: "cit_solidarity", Tree: treeCitizen, Points: 4, Requires: []SkillID{"cit_event_ban", "cit_hygiene_campaign"},
			Title:       "Solidarity Movement",
			Description: "Neighborhood aid networks lift the public mood.",
			Effect:      func() { st.HappinessRate += 0.3 },
		},
	}
}
