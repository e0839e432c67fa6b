package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
	"github.com/KrokodileDandy/quarantine-server/internal/events"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/logger"
)

// Skill point pricing: geometric growth capped at a ceiling.
const (
	initialSkillPointPrice = 100_000_000
	maximumSkillPointPrice = 500_000_000
)

// SkillID names one node of the upgrade graph.
type SkillID string

// Skill is a one-time-purchasable upgrade node. Requires lists the skills
// that must already be active; Effect mutates the statistics store or the
// population manager through the closures built at system construction.
type Skill struct {
	ID          SkillID
	Tree        string
	Title       string
	Description string
	Points      int
	Requires    []SkillID
	Effect      func()
}

// SkillSystem gates and applies skill unlocks across the five prerequisite
// trees and sells the skill points they cost.
type SkillSystem struct {
	stats    *stats.Stats
	eventLog *events.EventLog
	logger   *logger.Logger

	catalog []Skill
	byID    map[SkillID]*Skill
	active  map[SkillID]bool

	availablePoints     int
	nextSkillPointPrice int64
}

// NewSkillSystem builds the skill catalog and validates the prerequisite
// graph: every referenced prerequisite must exist and the graph must be
// acyclic. A broken catalog is a programming error.
func NewSkillSystem(st *stats.Stats, pop *PopulationManager, policy *EconomicPolicySystem, eventLog *events.EventLog, log *logger.Logger) (*SkillSystem, error) {
	ss := &SkillSystem{
		stats:               st,
		eventLog:            eventLog,
		logger:              log,
		active:              make(map[SkillID]bool),
		nextSkillPointPrice: initialSkillPointPrice,
	}
	ss.catalog = buildSkillCatalog(st, pop, policy)
	ss.byID = make(map[SkillID]*Skill, len(ss.catalog))
	for i := range ss.catalog {
		sk := &ss.catalog[i]
		if _, dup := ss.byID[sk.ID]; dup {
			return nil, fmt.Errorf("skill catalog: duplicate id %q", sk.ID)
		}
		ss.byID[sk.ID] = sk
	}
	if err := ss.validateGraph(); err != nil {
		return nil, err
	}
	return ss, nil
}

// validateGraph checks that every prerequisite exists and that following
// prerequisite edges never loops.
func (ss *SkillSystem) validateGraph() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[SkillID]int, len(ss.catalog))

	var visit func(id SkillID) error
	visit = func(id SkillID) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("skill catalog: cyclic prerequisites through %q", id)
		case done:
			return nil
		}
		state[id] = visiting
		for _, req := range ss.byID[id].Requires {
			if _, ok := ss.byID[req]; !ok {
				return fmt.Errorf("skill catalog: %q requires unknown skill %q", id, req)
			}
			if err := visit(req); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for i := range ss.catalog {
		if err := visit(ss.catalog[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// Catalog returns the ordered skill list for display.
func (ss *SkillSystem) Catalog() []Skill {
	return ss.catalog
}

// IsActive reports whether the skill has been unlocked.
func (ss *SkillSystem) IsActive(id SkillID) bool {
	return ss.active[id]
}

// AvailablePoints returns the unspent skill points.
func (ss *SkillSystem) AvailablePoints() int {
	return ss.availablePoints
}

// NextSkillPointPrice returns the price of the next skill point.
func (ss *SkillSystem) NextSkillPointPrice() int64 {
	return ss.nextSkillPointPrice
}

// GrantPoints adds free skill points (random events use this).
func (ss *SkillSystem) GrantPoints(n int) {
	ss.availablePoints += n
}

// BuySkillPoint debits the current skill point price from the budget and
// grows the price geometrically, capped at the ceiling. Returns false
// without side effects when insolvent.
func (ss *SkillSystem) BuySkillPoint() bool {
	price := ss.nextSkillPointPrice
	if !ss.stats.IsSolvent(price) {
		return false
	}
	ss.stats.Budget -= price
	ss.availablePoints++

	next := price * 120 / 100
	if next > maximumSkillPointPrice {
		next = maximumSkillPointPrice
	}
	ss.nextSkillPointPrice = next

	ss.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeSkillPoint,
		Actor:   "PLAYER",
		Payload: map[string]any{"price": price, "available": ss.availablePoints, "nextPrice": next},
	})
	return true
}

// Activate unlocks the given skill: it fails without side effects when the
// skill is unknown, already active, costs more points than are available,
// or any prerequisite is still locked. On success the effect runs once, the
// points are spent and the skill's flag is set.
func (ss *SkillSystem) Activate(id SkillID) bool {
	sk, ok := ss.byID[id]
	if !ok {
		ss.logger.Warn("skill activation rejected: unknown skill %q", id)
		return false
	}
	if ss.active[id] {
		return false
	}
	if sk.Points > ss.availablePoints {
		return false
	}
	for _, req := range sk.Requires {
		if !ss.active[req] {
			return false
		}
	}

	sk.Effect()
	ss.availablePoints -= sk.Points
	ss.active[id] = true

	ss.logger.Event("SKILL_UNLOCKED", "PLAYER",
		string(id)+" ("+sk.Tree+") for "+humanize.Comma(int64(sk.Points))+" points")
	ss.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeSkillUnlocked,
		Actor:   "PLAYER",
		Payload: map[string]any{"skill": id, "tree": sk.Tree, "points": sk.Points},
	})
	return true
}
