package generic

import (
	"fmt"
	"math"
	"time"
)

// MonthsPerYear is the length of a game year.
const MonthsPerYear = 12

// =============================================================================
// GAME DATE - Calendar position derived from elapsed months
// =============================================================================

type GameDate struct {
	Year  int
	Month time.Month
}

// String renders the date the way the UI shows it, e.g. "January 1950".
func (d GameDate) String() string {
	return fmt.Sprintf("%s %d", d.Month, d.Year)
}

// MonthIndex returns the zero-based month (January = 0).
func (d GameDate) MonthIndex() int { return int(d.Month) - 1 }

// =============================================================================
// CALENDAR - Maps fractional elapsed months onto dates
// =============================================================================

// Calendar converts elapsed game months into dates starting at StartYear.
type Calendar struct {
	StartYear int
}

// DateAt returns the date for a number of elapsed months.
// Negative values are treated as zero.
func (c Calendar) DateAt(elapsed float64) GameDate {
	whole := WholeMonths(elapsed)
	return GameDate{
		Year:  c.StartYear + whole/MonthsPerYear,
		Month: time.Month(whole%MonthsPerYear + 1),
	}
}

// YearAt returns StartYear + floor(elapsed/12).
func (c Calendar) YearAt(elapsed float64) int { return c.DateAt(elapsed).Year }

// MonthIndexAt returns floor(elapsed) mod 12.
func (c Calendar) MonthIndexAt(elapsed float64) int { return c.DateAt(elapsed).MonthIndex() }

// WholeMonths returns floor(elapsed), never below zero.
func WholeMonths(elapsed float64) int {
	if elapsed <= 0 || math.IsNaN(elapsed) {
		return 0
	}
	return int(math.Floor(elapsed))
}
