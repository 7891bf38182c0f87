package clock_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/march-of-mind/clock"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// newManualClock returns a clock whose baseline tick has already been taken.
func newManualClock(t *testing.T) (*clock.TimeClock, *clock.FakeClock) {
	t.Helper()
	src := clock.NewFakeClock(epoch)
	c := clock.New(clock.DefaultConfig(), src)
	c.Tick(nil)
	return c, src
}

func counter() (func(), func() int) {
	n := 0
	return func() { n++ }, func() int { return n }
}

// =============================================================================
// WHOLE-MONTH CROSSING
// =============================================================================

func TestTick_BurstCrossesWholeMonthsAndCarriesRemainder(t *testing.T) {
	// GIVEN: elapsed 0.9 months
	// WHEN: 5.5s of wall time pass (2.2 months at 2.5s/month)
	// THEN: elapsed 3.1 and the callback fires exactly 3 times

	c, src := newManualClock(t)
	c.Load(clock.Save{ElapsedMonths: 0.9})
	inc, count := counter()

	src.Advance(5500 * time.Millisecond)
	crossed := c.Tick(inc)

	assert.Equal(t, 3, crossed)
	assert.Equal(t, 3, count())
	assert.InDelta(t, 3.1, c.ElapsedMonths(), 1e-9)
}

func TestTick_SubMonthAccumulates(t *testing.T) {
	c, src := newManualClock(t)
	inc, count := counter()

	for i := 0; i < 2; i++ {
		src.Advance(time.Second)
		c.Tick(inc)
	}
	assert.Equal(t, 0, count(), "0.8 months elapsed")

	src.Advance(time.Second)
	c.Tick(inc)
	assert.Equal(t, 1, count(), "1.2 months elapsed")
	assert.InDelta(t, 1.2, c.ElapsedMonths(), 1e-9)
}

func TestTick_NonPositiveDeltaCrossesNothing(t *testing.T) {
	c, src := newManualClock(t)
	inc, count := counter()

	assert.Equal(t, 0, c.Tick(inc), "zero delta")
	src.Advance(-time.Minute)
	assert.Equal(t, 0, c.Tick(inc), "clock went backwards")
	assert.Equal(t, 0, count())
	assert.Zero(t, c.ElapsedMonths())
}

func TestTick_PausedDiscardsWallTime(t *testing.T) {
	// GIVEN: A paused clock
	// WHEN: 10s pass, then the clock resumes and 2.5s pass
	// THEN: Only the 2.5s after resume count

	c, src := newManualClock(t)
	inc, count := counter()

	c.Pause()
	src.Advance(10 * time.Second)
	assert.Equal(t, 0, c.Tick(inc))

	c.Resume()
	src.Advance(2500 * time.Millisecond)
	c.Tick(inc)

	assert.Equal(t, 1, count())
	assert.InDelta(t, 1.0, c.ElapsedMonths(), 1e-9)
}

func TestTick_StopDuringBurstEndsBurst(t *testing.T) {
	c, src := newManualClock(t)
	n := 0
	src.Advance(10 * 2500 * time.Millisecond)

	fired := c.Tick(func() {
		n++
		if n == 2 {
			c.Stop()
		}
	})

	assert.Equal(t, 2, fired)
	assert.Equal(t, 2, n)
}

// =============================================================================
// CALENDAR QUERIES
// =============================================================================

func TestQueries_DerivedFromElapsed(t *testing.T) {
	c := clock.New(clock.DefaultConfig(), clock.NewFakeClock(epoch))
	c.Load(clock.Save{ElapsedMonths: 13.7})

	assert.Equal(t, 1951, c.CurrentYear())
	assert.Equal(t, 1, c.CurrentMonthIndex())
	assert.Equal(t, "February 1951", c.DisplayDate())
	assert.Equal(t, 14, c.MonthNumber())
	assert.False(t, c.Finished())

	c.Load(clock.Save{ElapsedMonths: float64((2036 - 1950) * 12)})
	assert.True(t, c.Finished())
}

func TestLoad_RejectsInvalidElapsed(t *testing.T) {
	c := clock.New(clock.DefaultConfig(), nil)
	c.Load(clock.Save{ElapsedMonths: -4})
	assert.Zero(t, c.ElapsedMonths())

	c.Load(clock.Save{ElapsedMonths: 7.25})
	assert.Equal(t, clock.Save{ElapsedMonths: 7.25}, c.Save())
}

func TestAdvance_FiresPerMonth(t *testing.T) {
	c := clock.New(clock.DefaultConfig(), clock.NewFakeClock(epoch))
	inc, count := counter()

	assert.Equal(t, 24, c.Advance(24, inc))
	assert.Equal(t, 24, count())
	assert.Equal(t, 1952, c.CurrentYear())
}

func TestReset_RewindsAndStops(t *testing.T) {
	c, src := newManualClock(t)
	src.Advance(time.Minute)
	c.Tick(nil)
	c.Pause()

	c.Reset()

	assert.Zero(t, c.ElapsedMonths())
	assert.False(t, c.Paused())
	assert.False(t, c.Running())
}

// =============================================================================
// SCHEDULED TICKER
// =============================================================================

func TestStart_ScheduledTicksFireCallback(t *testing.T) {
	cfg := clock.Config{TickInterval: 5 * time.Millisecond, MonthDuration: 10 * time.Millisecond, StartYear: 1950}
	var mu sync.Mutex
	c := clock.New(cfg, nil, clock.WithGuard(&mu))
	var months atomic.Int32

	mu.Lock()
	c.Start(func() { months.Add(1) })
	mu.Unlock()
	t.Cleanup(c.Stop)

	assert.True(t, c.Running())
	assert.Eventually(t, func() bool { return months.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestStop_NoCallbackAfterReturn(t *testing.T) {
	cfg := clock.Config{TickInterval: 2 * time.Millisecond, MonthDuration: time.Millisecond, StartYear: 1950}
	var mu sync.Mutex
	c := clock.New(cfg, nil, clock.WithGuard(&mu))
	var months atomic.Int32

	mu.Lock()
	c.Start(func() { months.Add(1) })
	mu.Unlock()
	require.Eventually(t, func() bool { return months.Load() > 0 }, 2*time.Second, time.Millisecond)

	mu.Lock()
	c.Stop()
	c.Stop()
	mu.Unlock()
	after := months.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, months.Load())
	assert.False(t, c.Running())
}

func TestStart_RestartCancelsPreviousTicker(t *testing.T) {
	cfg := clock.Config{TickInterval: 2 * time.Millisecond, MonthDuration: time.Millisecond, StartYear: 1950}
	var mu sync.Mutex
	c := clock.New(cfg, nil, clock.WithGuard(&mu))
	var first, second atomic.Int32

	mu.Lock()
	c.Start(func() { first.Add(1) })
	c.Start(func() { second.Add(1) })
	mu.Unlock()
	t.Cleanup(c.Stop)

	require.Eventually(t, func() bool { return second.Load() > 0 }, 2*time.Second, time.Millisecond)
	assert.Zero(t, first.Load(), "first ticker was cancelled before it ran")
}

func TestStop_UnguardedNoCallbackAfterReturn(t *testing.T) {
	// GIVEN: A clock without a guard, bursting many months per tick
	// WHEN: Stop returns
	// THEN: No callback starts afterwards, on any of many runs

	cfg := clock.Config{TickInterval: time.Millisecond, MonthDuration: time.Nanosecond, StartYear: 1950}
	for run := 0; run < 100; run++ {
		c := clock.New(cfg, nil)
		var stopped atomic.Bool
		var fired, late atomic.Int32

		c.Start(func() {
			fired.Add(1)
			if stopped.Load() {
				late.Add(1)
			}
		})
		require.Eventually(t, func() bool { return fired.Load() > 0 }, 2*time.Second, 100*time.Microsecond)

		c.Stop()
		stopped.Store(true)
		time.Sleep(3 * time.Millisecond)

		require.Zero(t, late.Load(), "run %d: callback started after Stop returned", run)
		assert.False(t, c.Running())
	}
}

func TestAdvance_StopInCallbackEndsAdvance(t *testing.T) {
	c, _ := newManualClock(t)
	calls := 0
	fired := c.Advance(5, func() {
		calls++
		c.Stop()
	})
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, c.ElapsedMonths())
}
