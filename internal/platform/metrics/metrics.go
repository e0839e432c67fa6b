// Package metrics provides observability for the simulation server.
// The collector is cheap enough to leave on in production; its snapshot is
// served as JSON for dashboards and load-test analysis.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance and gameplay counters.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Simulation metrics
	DaysSimulated     int64
	RandomEventsFired int64
	PurchasesAccepted int64
	PurchasesRejected int64
	SkillsUnlocked    int64

	// Journal metrics
	JournalWrites      int64
	JournalWriteLatSum int64
	JournalWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordDayClosed records a completed daily close.
func (c *Collector) RecordDayClosed() {
	atomic.AddInt64(&c.DaysSimulated, 1)
}

// RecordRandomEvent records a fired random event.
func (c *Collector) RecordRandomEvent() {
	atomic.AddInt64(&c.RandomEventsFired, 1)
}

// RecordPurchase records the outcome of a purchase or skill operation.
func (c *Collector) RecordPurchase(accepted bool) {
	if accepted {
		atomic.AddInt64(&c.PurchasesAccepted, 1)
	} else {
		atomic.AddInt64(&c.PurchasesRejected, 1)
	}
}

// RecordSkillUnlocked records a successful skill activation.
func (c *Collector) RecordSkillUnlocked() {
	atomic.AddInt64(&c.SkillsUnlocked, 1)
}

// RecordJournalWrite records an event write to the journal.
func (c *Collector) RecordJournalWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.JournalWrites, 1)
	atomic.AddInt64(&c.JournalWriteLatSum, int64(latency))
	if err != nil {
		atomic.AddInt64(&c.JournalWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records an outbound WebSocket message.
func (c *Collector) RecordWSMessage() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	lastTick := c.LastTickTime
	c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	journalWrites := atomic.LoadInt64(&c.JournalWrites)

	var tickAvg, journalAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if journalWrites > 0 {
		journalAvg = float64(atomic.LoadInt64(&c.JournalWriteLatSum)) / float64(journalWrites) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds":        time.Since(c.StartTime).Seconds(),
		"tick_count":            tickCount,
		"tick_latency_avg_ms":   tickAvg,
		"tick_latency_max_ms":   float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
		"last_tick":             lastTick,
		"days_simulated":        atomic.LoadInt64(&c.DaysSimulated),
		"random_events_fired":   atomic.LoadInt64(&c.RandomEventsFired),
		"purchases_accepted":    atomic.LoadInt64(&c.PurchasesAccepted),
		"purchases_rejected":    atomic.LoadInt64(&c.PurchasesRejected),
		"skills_unlocked":       atomic.LoadInt64(&c.SkillsUnlocked),
		"journal_writes":        journalWrites,
		"journal_write_avg_ms":  journalAvg,
		"journal_write_errors":  atomic.LoadInt64(&c.JournalWriteErrors),
		"ws_connections_active": atomic.LoadInt64(&c.WSConnectionsActive),
		"ws_messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
		"ws_errors":             atomic.LoadInt64(&c.WSErrors),
	}
}

// Handler serves the metrics snapshot as JSON.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(c.Snapshot())
	}
}
