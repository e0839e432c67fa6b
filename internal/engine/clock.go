// Package engine contains the simulation loop and the policy, skill and
// event systems that react to it.
//
// ARCHITECTURAL RULE: systems never reach for hidden globals. Everything a
// system touches is handed to it at construction by the Session.
package engine

// subTicsPerHour is the sub-tic scaling of the host render loop: ten Tick()
// calls advance one in-game hour.
const subTicsPerHour = 10

// DefaultTicsPerDay is the number of in-game hours per day.
const DefaultTicsPerDay = 24

// DayListener is notified synchronously after each completed in-game day.
type DayListener interface {
	OnDayEnd(day int)
}

// Clock advances simulated time and fans out daily notifications.
// It does NOT know about agents or budgets - only time progression.
type Clock struct {
	ticsPerDay int // in-game hours per day
	tics       int // sub-tic accumulator, resets on day boundary
	hours      int // hoursSinceGameStart
	gameSpeed  int
	listeners  []DayListener
}

// NewClock creates a clock with the given hours-per-day setting.
// Zero or negative falls back to DefaultTicsPerDay.
func NewClock(ticsPerDay int) *Clock {
	if ticsPerDay <= 0 {
		ticsPerDay = DefaultTicsPerDay
	}
	return &Clock{ticsPerDay: ticsPerDay, gameSpeed: 1}
}

// Subscribe registers a listener for day-boundary notifications and returns
// the clock to allow chaining. Subscribing the same listener twice is a
// wiring mistake; it is de-duplicated by identity so a daily effect can
// never double-apply.
func (c *Clock) Subscribe(l DayListener) *Clock {
	for _, existing := range c.listeners {
		if existing == l {
			return c
		}
	}
	c.listeners = append(c.listeners, l)
	return c
}

// Tick advances one sub-tic. Every ten sub-tics advance one in-game hour;
// when a full day of sub-tics has accumulated, the accumulator resets and
// every listener is notified in subscription order. Listeners complete
// synchronously before Tick returns.
func (c *Clock) Tick() {
	c.tics++
	if c.tics%subTicsPerHour == 0 {
		c.hours++
	}
	if c.tics >= c.ticsPerDay*subTicsPerHour {
		c.tics = 0
		day := c.Days()
		for _, l := range c.listeners {
			l.OnDayEnd(day)
		}
	}
}

// Hours returns the elapsed in-game hours since game start.
func (c *Clock) Hours() int {
	return c.hours
}

// Days returns the elapsed full in-game days since game start.
func (c *Clock) Days() int {
	return c.hours / 24
}

// Weeks returns the elapsed full in-game weeks since game start.
func (c *Clock) Weeks() int {
	return c.Days() / 7
}

// GameSpeed returns the current speed multiplier.
func (c *Clock) GameSpeed() int {
	return c.gameSpeed
}

// SetGameSpeed sets how many sub-tics the run loop advances per host frame.
// Values below one pause the simulation.
func (c *Clock) SetGameSpeed(speed int) {
	if speed < 0 {
		speed = 0
	}
	c.gameSpeed = speed
}
