package engine

import (
	"fmt"
	"math/rand"

	"github.com/KrokodileDandy/quarantine-server/internal/domain/stats"
	"github.com/KrokodileDandy/quarantine-server/internal/events"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/logger"
	"github.com/KrokodileDandy/quarantine-server/internal/platform/metrics"
)

// Rarity tiers the random event scheduler, from most to least frequent.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityVeryRare
	RarityEpic
	RarityLegendary
	rarityCount
)

// String returns the display name of the tier. An unknown tier indicates a
// programming error and aborts.
func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "COMMON"
	case RarityRare:
		return "RARE"
	case RarityVeryRare:
		return "VERY_RARE"
	case RarityEpic:
		return "EPIC"
	case RarityLegendary:
		return "LEGENDARY"
	default:
		panic(fmt.Sprintf("unknown rarity tier %d", int(r)))
	}
}

// countdownRange returns the inclusive re-seed bounds for a tier. An unknown
// tier indicates a programming error and aborts.
func countdownRange(r Rarity) (min, max int) {
	switch r {
	case RarityCommon:
		return 3, 7
	case RarityRare:
		return 8, 13
	case RarityVeryRare:
		return 14, 20
	case RarityEpic:
		return 21, 30
	case RarityLegendary:
		return 31, 40
	default:
		panic(fmt.Sprintf("unknown rarity tier %d", int(r)))
	}
}

// EventDefinition is one entry of a tier's catalog. The effect callback runs
// before the event is presented to the player.
type EventDefinition struct {
	Title       string
	Description string
	Image       string
	Effect      func()
}

// EventSystem schedules rarity-tiered random events. Each tier owns an
// independent countdown; every daily notification decrements all of them,
// fires at most one event (the rarest tier that reached zero) and re-seeds
// every zeroed counter, fired or not.
type EventSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	rng      *rand.Rand

	countdowns [rarityCount]int
	catalog    [rarityCount][]EventDefinition
}

// NewEventSystem creates the scheduler with freshly seeded countdowns.
func NewEventSystem(st *stats.Stats, pop *PopulationManager, skills *SkillSystem, eventLog *events.EventLog, log *logger.Logger, rng *rand.Rand) *EventSystem {
	es := &EventSystem{
		eventLog: eventLog,
		logger:   log,
		rng:      rng,
		catalog:  buildEventCatalog(st, pop, skills),
	}
	for r := Rarity(0); r < rarityCount; r++ {
		es.reseed(r)
	}
	return es
}

func (es *EventSystem) reseed(r Rarity) {
	lo, hi := countdownRange(r)
	es.countdowns[r] = lo + es.rng.Intn(hi-lo+1)
}

// OnDayEnd advances every countdown and fires at most one event.
func (es *EventSystem) OnDayEnd(day int) {
	for r := Rarity(0); r < rarityCount; r++ {
		es.countdowns[r]--
	}

	fired := false
	for r := RarityLegendary; r >= RarityCommon; r-- {
		if es.countdowns[r] > 0 {
			continue
		}
		if !fired {
			es.fire(r, day)
			fired = true
		}
		es.reseed(r)
	}
}

// fire picks a uniform-random event from the tier's catalog, runs its effect
// and appends it to the event log for presentation.
func (es *EventSystem) fire(r Rarity, day int) {
	defs := es.catalog[r]
	if len(defs) == 0 {
		return
	}
	def := defs[es.rng.Intn(len(defs))]
	def.Effect()

	es.logger.Event("RANDOM_EVENT", "SYSTEM_EVENTS", r.String()+": "+def.Title)
	metrics.Get().RecordRandomEvent()
	es.eventLog.Append(events.GameEvent{
		Type:    events.EventTypeRandomEvent,
		Actor:   "SYSTEM_EVENTS",
		GameDay: day,
		Payload: map[string]any{
			"rarity":      r.String(),
			"title":       def.Title,
			"description": def.Description,
			"image":       def.Image,
		},
	})
}

// buildEventCatalog wires the narrative events to their numeric effects.
func buildEventCatalog(st *stats.Stats, pop *PopulationManager, skills *SkillSystem) [rarityCount][]EventDefinition {
	var c [rarityCount][]EventDefinition

	c[RarityCommon] = []EventDefinition{
		{
			Title:       "Local Charity Drive",
			Description: "Volunteers collect donations for hospital staff.",
			Image:       "event_charity",
			Effect:      func() { st.Budget += 5_000_000 },
		},
		{
			Title:       "Panic Buying",
			Description: "Supermarket shelves are empty again.",
			Image:       "event_panic_buying",
			Effect:      func() { st.Happiness = max(0, st.Happiness-2) },
		},
		{
			Title:       "Sunny Weekend",
			Description: "Parks are crowded despite all appeals.",
			Image:       "event_sunny",
			Effect:      func() { st.Happiness = min(100, st.Happiness+2) },
		},
	}

	c[RarityRare] = []EventDefinition{
		{
			Title:       "Fake News Wave",
			Description: "A conspiracy theory about the outbreak goes viral.",
			Image:       "event_fake_news",
			Effect:      func() { st.HappinessRate -= 0.1 },
		},
		{
			Title:       "Corporate Donation",
			Description: "A tech giant funds the crisis response.",
			Image:       "event_donation",
			Effect:      func() { st.Budget += 50_000_000 },
		},
		{
			Title:       "Celebrity Infected",
			Description: "A beloved actor announces a positive test.",
			Image:       "event_celebrity",
			Effect:      func() { st.Happiness = max(0, st.Happiness-4) },
		},
	}

	c[RarityVeryRare] = []EventDefinition{
		{
			Title:       "Research Grant",
			Description: "An international fund backs the national labs.",
			Image:       "event_grant",
			Effect:      st.IncreaseResearchLevel,
		},
		{
			Title:       "Superspreader Wedding",
			Description: "One banquet, three hundred guests, no distance.",
			Image:       "event_wedding",
			Effect:      func() { pop.ScaleInfectionProbability(1.05) },
		},
	}

	c[RarityEpic] = []EventDefinition{
		{
			Title:       "International Aid Package",
			Description: "Allied nations wire emergency funds.",
			Image:       "event_aid",
			Effect:      func() { st.Budget += 200_000_000 },
		},
		{
			Title:       "Mutation Scare",
			Description: "A more contagious variant is sequenced abroad.",
			Image:       "event_mutation",
			Effect:      func() { pop.ScaleInfectionProbability(1.1) },
		},
	}

	c[RarityLegendary] = []EventDefinition{
		{
			Title:       "Breakthrough Leak",
			Description: "A leaked paper halves vaccine production costs.",
			Image:       "event_breakthrough",
			Effect:      func() { st.CurrentPriceVaccination = st.CurrentPriceVaccination / 2 },
		},
		{
			Title:       "National Unity Address",
			Description: "A historic speech rallies the whole country.",
			Image:       "event_address",
			Effect: func() {
				st.Happiness = min(100, st.Happiness+10)
				skills.GrantPoints(1)
			},
		},
	}

	return c
}
