// Package dates computes reporting day boundaries in the fixed UTC+3 civil
// calendar used by the iiko servers, regardless of the host time zone.
package dates

import "time"

// Layout is the iiko date format.
const Layout = "2006-01-02"

// Location is UTC+3 without DST rules.
var Location = time.FixedZone("UTC+3", 3*3600)

// Range is an inclusive span of reporting days in Layout.
type Range struct {
	// From is the first day
	From string
	// To is the last day
	To string
}

// Today returns the current reporting day.
func Today(now time.Time) string {
	return now.In(Location).Format(Layout)
}

// DayOfMonth is the ordinal day of the current reporting day.
func DayOfMonth(now time.Time) int {
	return now.In(Location).Day()
}

// DaysBack returns the reporting day days before today.
func DaysBack(now time.Time, days int) string {
	return now.In(Location).AddDate(0, 0, -days).Format(Layout)
}

// Week covers the last 7 reporting days including today.
func Week(now time.Time) Range {
	return Custom(now, 6)
}

// ThisMonth runs from the 1st of the current month to today.
func ThisMonth(now time.Time) Range {
	return Custom(now, DayOfMonth(now)-1)
}

// Custom covers daysBack days before today through today.
//
// Parameters:
//   - now: current instant
//   - daysBack: days before today; negative values count as zero
//
// Returns:
//   - Range: span ending today
func Custom(now time.Time, daysBack int) Range {
	if daysBack < 0 {
		daysBack = 0
	}
	return Range{From: DaysBack(now, daysBack), To: Today(now)}
}
