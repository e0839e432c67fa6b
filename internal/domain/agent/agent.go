// Package agent defines the core domain entities for the simulated population.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package agent

// Role represents the occupation of an agent within the population.
type Role int8

const (
	RoleCitizen Role = iota
	RolePolice
	RoleHealthWorker
)

// String returns the display name of the role.
func (r Role) String() string {
	switch r {
	case RoleCitizen:
		return "CITIZEN"
	case RolePolice:
		return "POLICE"
	case RoleHealthWorker:
		return "HEALTH_WORKER"
	default:
		return "UNKNOWN"
	}
}

// HealthState identifies what an agent currently carries or suffers from.
// The numeric order is load-bearing: interaction pairs are normalized so the
// agent with the lower state value comes first before rule matching.
type HealthState int8

const (
	Healthy HealthState = iota
	UnknowinglyInfected
	Infected
	Deceased
	Immune
	// TestKit marks a health worker equipped with test kits. Contact with an
	// unknowing carrier turns the carrier into a known case.
	TestKit
	// Cure marks a health worker distributing the cure once it is researched.
	Cure
)

// String returns the display name of the health state.
func (s HealthState) String() string {
	switch s {
	case Healthy:
		return "HEALTHY"
	case UnknowinglyInfected:
		return "UNKNOWINGLY_INFECTED"
	case Infected:
		return "INFECTED"
	case Deceased:
		return "DECEASED"
	case Immune:
		return "IMMUNE"
	case TestKit:
		return "TEST_KIT"
	case Cure:
		return "CURE"
	default:
		return "UNKNOWN"
	}
}

// Infectious reports whether the state can pass the disease on.
func (s HealthState) Infectious() bool {
	return s == UnknowinglyInfected || s == Infected
}

// Agent is a single unit of the simulated population. Role changes only go
// through the population manager's reassignment operation; health states only
// change through transition rules or direct engine mutation (cure, death,
// detection).
type Agent struct {
	Role  Role
	State HealthState
}

// Alive reports whether the agent still participates in interactions.
func (a *Agent) Alive() bool {
	return a.State != Deceased
}
