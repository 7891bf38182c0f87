/*
Package clock converts wall-clock time into game months.

PURPOSE:
  The TimeClock owns elapsed game time. A background ticker samples the
  wall clock every TickInterval, converts the elapsed wall time into a
  fractional number of game months and fires the month callback once for
  every whole month boundary crossed.

KEY CONCEPTS:
  - elapsed:  Fractional game months since the start (persisted)
  - crossed:  floor(new) - floor(old); the fractional remainder carries
              into the next tick
  - guard:    sync.Locker held around every scheduled tick. WithGuard
              supplies the orchestrator's state lock; without it the clock
              uses a private mutex
  - paused:   Scheduled ticks only move lastTick forward

EXAMPLE (MonthDuration 2.5s):
  elapsed 0.9, tick after 5.5s -> delta 2.2, elapsed 3.1, crossed 3
  elapsed 3.1, tick after 1s   -> delta 0.4, elapsed 3.5, crossed 0

LIFECYCLE:
  Start and Stop are idempotent. Start cancels any previous ticker. A burst
  checks the stop generation before every callback, and a ticker that wakes
  after Stop sees the closed channel under the guard and exits without
  ticking. With WithGuard, Stop does not wait, so it may be called while
  holding the guard (including from inside a month callback). With the
  private mutex, Stop waits for an in-flight tick to finish and must not be
  called from a month callback.

SEE ALSO:
  - fake.go: Manual clock for tests
  - game/game.go: Supplies the guard and the month callback
*/
package clock

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/warp/march-of-mind/generic"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

// Now returns the current time using the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// =============================================================================
// CONFIG
// =============================================================================

type Config struct {
	TickInterval  time.Duration `yaml:"tick_interval"`
	MonthDuration time.Duration `yaml:"month_duration"`
	StartYear     int           `yaml:"start_year"`
	EndYear       int           `yaml:"end_year"`
}

func DefaultConfig() Config {
	return Config{
		TickInterval:  time.Second,
		MonthDuration: 2500 * time.Millisecond,
		StartYear:     1950,
		EndYear:       2035,
	}
}

// Save is the persisted clock state.
type Save struct {
	ElapsedMonths float64 `json:"elapsedMonths"`
}

// Option configures a TimeClock.
type Option func(*TimeClock)

// WithGuard runs every scheduled tick while holding l.
func WithGuard(l sync.Locker) Option {
	return func(c *TimeClock) {
		c.guard = l
		c.ownGuard = false
	}
}

// WithLogger sets the logger; the clock logs under the "clock" prefix.
func WithLogger(l *log.Logger) Option {
	return func(c *TimeClock) { c.logger = l.WithPrefix("clock") }
}

// =============================================================================
// TIME CLOCK
// =============================================================================

type TimeClock struct {
	cfg      Config
	src      Clock
	calendar generic.Calendar
	guard    sync.Locker
	ownGuard bool
	private  sync.Mutex
	logger   *log.Logger

	// Guarded by guard while a ticker runs.
	elapsed  float64
	lastTick time.Time
	paused   bool
	gen      uint64 // bumped by Stop; ends an in-flight burst

	// mu guards the ticker lifecycle only.
	mu   sync.Mutex
	stop chan struct{}
}

// New creates a stopped clock at elapsed zero.
func New(cfg Config, src Clock, opts ...Option) *TimeClock {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.MonthDuration <= 0 {
		cfg.MonthDuration = def.MonthDuration
	}
	if src == nil {
		src = RealClock{}
	}
	c := &TimeClock{
		cfg:      cfg,
		src:      src,
		calendar: generic.Calendar{StartYear: cfg.StartYear},
		ownGuard: true,
		logger:   log.Default().WithPrefix("clock"),
	}
	c.guard = &c.private
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins scheduled ticking. A running ticker is cancelled first.
func (c *TimeClock) Start(onMonthElapsed func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.lastTick = c.src.Now()

	stop := make(chan struct{})
	c.stop = stop
	ticker := time.NewTicker(c.cfg.TickInterval)
	go c.run(ticker, stop, onMonthElapsed)

	c.logger.Debug("started", "tick", c.cfg.TickInterval, "month", c.cfg.MonthDuration)
}

// Stop cancels scheduled ticking. Safe to call when not running. No
// callback starts after Stop returns.
func (c *TimeClock) Stop() {
	c.mu.Lock()
	stopped := c.stopLocked()
	c.mu.Unlock()
	if stopped {
		c.logger.Debug("stopped")
	}
	if c.ownGuard {
		// Wait out a tick that took the guard before the channel closed.
		c.guard.Lock()
		c.guard.Unlock()
	}
}

func (c *TimeClock) stopLocked() bool {
	c.gen++
	if c.stop == nil {
		return false
	}
	close(c.stop)
	c.stop = nil
	return true
}

// Running reports whether a ticker is scheduled.
func (c *TimeClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

func (c *TimeClock) run(ticker *time.Ticker, stop <-chan struct{}, onMonthElapsed func()) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.guard.Lock()
			select {
			case <-stop:
				c.guard.Unlock()
				return
			default:
			}
			c.Tick(onMonthElapsed)
			c.guard.Unlock()
		}
	}
}

// Tick samples the wall clock and fires onMonthElapsed once per whole month
// crossed since the previous tick. Returns the number of months crossed.
func (c *TimeClock) Tick(onMonthElapsed func()) int {
	now := c.src.Now()
	if c.lastTick.IsZero() || c.paused {
		c.lastTick = now
		return 0
	}
	elapsedWall := now.Sub(c.lastTick)
	c.lastTick = now
	if elapsedWall <= 0 {
		return 0
	}

	before := math.Floor(c.elapsed)
	target := c.elapsed + float64(elapsedWall)/float64(c.cfg.MonthDuration)
	crossed := int(math.Floor(target) - before)

	return c.fire(before, target, crossed, onMonthElapsed)
}

// Advance adds whole months directly, firing the callback after each one so
// every callback sees elapsed at the boundary it crossed. Ignores pause.
func (c *TimeClock) Advance(months int, onMonthElapsed func()) int {
	gen := c.generation()
	fired := 0
	for fired < months && c.generation() == gen {
		c.elapsed++
		if onMonthElapsed != nil {
			onMonthElapsed()
		}
		fired++
	}
	return fired
}

// fire runs one callback per crossed boundary with elapsed set to that
// boundary, then leaves elapsed at target.
func (c *TimeClock) fire(before, target float64, crossed int, onMonthElapsed func()) int {
	if crossed > 1 {
		c.logger.Debug("burst", "months", crossed)
	}
	gen := c.generation()
	fired := 0
	for fired < crossed && c.generation() == gen {
		c.elapsed = before + float64(fired+1)
		if onMonthElapsed != nil {
			onMonthElapsed()
		}
		fired++
	}
	c.elapsed = target
	return fired
}

func (c *TimeClock) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Pause stops converting wall time into game time.
func (c *TimeClock) Pause() { c.paused = true }

// Resume converts wall time again. Time spent paused is discarded.
func (c *TimeClock) Resume() {
	if c.paused {
		c.paused = false
		c.lastTick = c.src.Now()
	}
}

func (c *TimeClock) Paused() bool { return c.paused }

// Reset stops the ticker and rewinds to the start date.
func (c *TimeClock) Reset() {
	c.Stop()
	c.elapsed = 0
	c.lastTick = time.Time{}
	c.paused = false
}

// =============================================================================
// QUERIES
// =============================================================================

func (c *TimeClock) ElapsedMonths() float64 { return c.elapsed }
func (c *TimeClock) Date() generic.GameDate { return c.calendar.DateAt(c.elapsed) }
func (c *TimeClock) CurrentYear() int       { return c.calendar.YearAt(c.elapsed) }
func (c *TimeClock) CurrentMonthIndex() int { return c.calendar.MonthIndexAt(c.elapsed) }
func (c *TimeClock) DisplayDate() string    { return c.Date().String() }

// MonthNumber is the 1-based count of the month in progress.
func (c *TimeClock) MonthNumber() int { return generic.WholeMonths(c.elapsed) + 1 }

// Finished reports whether the calendar has passed EndYear.
func (c *TimeClock) Finished() bool {
	return c.cfg.EndYear > 0 && c.CurrentYear() > c.cfg.EndYear
}

func (c *TimeClock) Config() Config { return c.cfg }

// =============================================================================
// PERSISTENCE
// =============================================================================

func (c *TimeClock) Save() Save {
	return Save{ElapsedMonths: c.elapsed}
}

// Load restores elapsed time. Negative or NaN values become zero.
func (c *TimeClock) Load(s Save) {
	e := s.ElapsedMonths
	if e < 0 || math.IsNaN(e) || math.IsInf(e, 0) {
		e = 0
	}
	c.elapsed = e
}
