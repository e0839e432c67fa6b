package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
	"github.com/KrokodileDandy/quarantine-server/internal/events"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/logger"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/metrics"
)

// DefaultFrameInterval is the host frame rate of the run loop. Each frame
// advances gameSpeed sub-tics, so one in-game day takes 12 real seconds at
// speed 1.
const DefaultFrameInterval = 50 * time.Millisecond

// Session is the top-level simulation wiring: it constructs the clock, the
// statistics store, the population manager and the three engines, and owns
// the one mutex that serializes gameplay mutation against the run loop.
type Session struct {
	mu sync.Mutex

	clock  *Clock
	stats  *stats.Stats
	pop    *PopulationManager
	policy *EconomicPolicySystem
	skills *SkillSystem
	random *EventSystem

	eventLog *events.EventLog
	logger   *logger.Logger

	gameOver bool
}

// NewSession builds a complete simulation from a difficulty profile. The
// seed makes a session reproducible; pass time.Now().UnixNano() for normal
// play. Subscription order is fixed: population step, financial close,
// random events, then the session's own day-close bookkeeping.
func NewSession(profile stats.Profile, seed int64, eventLog *events.EventLog, log *logger.Logger) (*Session, error) {
	st := stats.New(profile)
	rng := rand.New(rand.NewSource(seed))

	pop := NewPopulationManager(st, log, rng)
	pop.Initialize(profile.AgentCount(), profile.PortionOfPolice, profile.PortionOfHealthWorkers, profile.InitialInfectedPortion)

	policy := NewEconomicPolicySystem(st, pop, eventLog, log)
	skills, err := NewSkillSystem(st, pop, policy, eventLog, log)
	if err != nil {
		return nil, err
	}
	random := NewEventSystem(st, pop, skills, eventLog, log, rng)

	s := &Session{
		clock:    NewClock(DefaultTicsPerDay),
		stats:    st,
		pop:      pop,
		policy:   policy,
		skills:   skills,
		random:   random,
		eventLog: eventLog,
		logger:   log,
	}
	s.clock.Subscribe(pop).Subscribe(policy).Subscribe(random).Subscribe(s)
	return s, nil
}

// OnDayEnd is the session's own subscriber slot, running after all engines:
// bankruptcy detection, the day/week notifications for view collaborators
// and the population accounting check.
func (s *Session) OnDayEnd(day int) {
	metrics.Get().RecordDayClosed()

	if !s.gameOver && s.stats.Budget < s.stats.LowerBoundBankruptcy {
		s.gameOver = true
		s.logger.Warn("bankruptcy: budget %s fell below %s",
			humanize.Comma(s.stats.Budget), humanize.Comma(s.stats.LowerBoundBankruptcy))
		s.eventLog.Append(events.GameEvent{
			Type:    events.EventTypeBankruptcy,
			Actor:   "SYSTEM_POLICY",
			GameDay: day,
			Payload: map[string]any{"budget": s.stats.Budget},
		})
	}

	if err := s.stats.CheckInvariant(); err != nil {
		s.logger.Warn("statistics check failed on day %d: %v", day, err)
	}

	s.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeDayClosed,
		Actor:   "SYSTEM_CLOCK",
		GameDay: day,
		Payload: s.snapshotLocked(),
	})

	if day%7 == 0 && day > 0 {
		week := day/7 - 1
		s.eventLog.Append(events.GameEvent{
			Type:    events.EventTypeWeekClosed,
			Actor:   "SYSTEM_CLOCK",
			GameDay: day,
			Payload: map[string]any{"week": week, "stats": s.stats.GetWeeklyStats(week)},
		})
	}
}

// Run drives the host frame loop until the context is cancelled. Each frame
// advances gameSpeed sub-tics under the session mutex, so purchases between
// frames always observe a consistent state.
func (s *Session) Run(ctx context.Context) {
	s.logger.Info("simulation session started")
	ticker := time.NewTicker(DefaultFrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation session stopped")
			return
		case <-ticker.C:
			start := time.Now()
			s.mu.Lock()
			for i := 0; i < s.clock.GameSpeed(); i++ {
				s.clock.Tick()
			}
			s.mu.Unlock()
			metrics.Get().RecordTick(time.Since(start))
		}
	}
}

// StateSnapshot is the scalar view handed to the front end. Counts are
// scaled back to real population figures; hidden infections stay hidden.
type StateSnapshot struct {
	Day  int `json:"day"`
	Week int `json:"week"`
	Hour int `json:"hour"`

	Population    int `json:"population"`
	Infected      int `json:"infected"`
	Deceased      int `json:"deceased"`
	Police        int `json:"police"`
	HealthWorkers int `json:"healthWorkers"`

	Happiness  float64 `json:"happiness"`
	Compliance float64 `json:"compliance"`

	Budget              int64 `json:"budget"`
	Income              int64 `json:"income"`
	SkillPoints         int   `json:"skillPoints"`
	NextSkillPointPrice int64 `json:"nextSkillPointPrice"`
	ResearchLevel       int   `json:"researchLevel"`

	GameSpeed      int       `json:"gameSpeed"`
	GameOver       bool      `json:"gameOver"`
	CureIntroduced bool      `json:"cureIntroduced"`
	Measures       []Measure `json:"measures"`
}

func (s *Session) snapshotLocked() StateSnapshot {
	measures := make([]Measure, 0, 4)
	for _, m := range s.policy.Measures() {
		measures = append(measures, *m)
	}
	return StateSnapshot{
		Day:  s.clock.Days(),
		Week: s.clock.Weeks(),
		Hour: s.clock.Hours() % 24,

		Population:    s.stats.Population * stats.PopulationFactor,
		Infected:      s.stats.Infected * stats.PopulationFactor,
		Deceased:      s.stats.Deceased * stats.PopulationFactor,
		Police:        s.stats.NbrPolice * stats.PopulationFactor,
		HealthWorkers: s.stats.NbrHW * stats.PopulationFactor,

		Happiness:  s.stats.Happiness,
		Compliance: s.stats.Compliance,

		Budget:              s.stats.Budget,
		Income:              s.stats.Income,
		SkillPoints:         s.skills.AvailablePoints(),
		NextSkillPointPrice: s.skills.NextSkillPointPrice(),
		ResearchLevel:       s.stats.ResearchLevel,

		GameSpeed:      s.clock.GameSpeed(),
		GameOver:       s.gameOver,
		CureIntroduced: s.policy.CureIntroduced(),
		Measures:       measures,
	}
}

// Snapshot returns a consistent scalar view of the running simulation.
func (s *Session) Snapshot() StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// WeeklyHistory returns the recorded weekly statistics, oldest first.
func (s *Session) WeeklyHistory() []stats.WeeklyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]stats.WeeklyStats, s.stats.Weeks())
	for w := range history {
		history[w] = s.stats.GetWeeklyStats(w)
	}
	return history
}

// SetGameSpeed adjusts how fast simulated time passes.
func (s *Session) SetGameSpeed(speed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.SetGameSpeed(speed)
}

// GameOver reports whether the session ended in bankruptcy.
func (s *Session) GameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameOver
}

// BuyPoliceOfficers forwards to the policy engine under the session mutex.
func (s *Session) BuyPoliceOfficers(amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameOver {
		return false
	}
	ok := s.policy.BuyPoliceOfficers(amount)
	metrics.Get().RecordPurchase(ok)
	return ok
}

// BuyHealthWorkers forwards to the policy engine under the session mutex.
func (s *Session) BuyHealthWorkers(amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameOver {
		return false
	}
	ok := s.policy.BuyHealthWorkers(amount)
	metrics.Get().RecordPurchase(ok)
	return ok
}

// BuyTestKitHWs forwards to the policy engine under the session mutex.
func (s *Session) BuyTestKitHWs(amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameOver {
		return false
	}
	ok := s.policy.BuyTestKitHWs(amount)
	metrics.Get().RecordPurchase(ok)
	return ok
}

// IntroduceCure forwards to the policy engine under the session mutex.
func (s *Session) IntroduceCure() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameOver {
		return false
	}
	ok := s.policy.IntroduceCure()
	metrics.Get().RecordPurchase(ok)
	return ok
}

// ToggleMeasure forwards to the policy engine under the session mutex.
func (s *Session) ToggleMeasure(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.ToggleMeasure(code)
}

// BuySkillPoint forwards to the skill engine under the session mutex.
func (s *Session) BuySkillPoint() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameOver {
		return false
	}
	ok := s.skills.BuySkillPoint()
	metrics.Get().RecordPurchase(ok)
	return ok
}

// ActivateSkill forwards to the skill engine under the session mutex.
func (s *Session) ActivateSkill(id SkillID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.skills.Activate(id)
	if ok {
		metrics.Get().RecordSkillUnlocked()
	}
	return ok
}

// SkillView is one entry of the displayed skill tree.
type SkillView struct {
	ID          SkillID   `json:"id"`
	Tree        string    `json:"tree"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Requires    []SkillID `json:"requires"`
	Active      bool      `json:"active"`
}

// SkillCatalog returns the full skill tree for display.
func (s *Session) SkillCatalog() []SkillView {
	s.mu.Lock()
	defer s.mu.Unlock()
	catalog := s.skills.Catalog()
	views := make([]SkillView, len(catalog))
	for i, sk := range catalog {
		views[i] = SkillView{
			ID:          sk.ID,
			Tree:        sk.Tree,
			Title:       sk.Title,
			Description: sk.Description,
			Points:      sk.Points,
			Requires:    sk.Requires,
			Active:      s.skills.IsActive(sk.ID),
		}
	}
	return views
}

// Clock exposes the clock for tests and bootstrap wiring.
func (s *Session) Clock() *Clock {
	return s.clock
}
