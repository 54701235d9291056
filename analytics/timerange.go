package analytics

import "time"

// Named time ranges accepted by the analytics endpoints.
const (
	RangeLast7Days    = "last_7_days"
	RangeMonthToDate  = "month_to_date"
	RangeLast4Weeks   = "last_4_weeks"
	RangeLast3Months  = "last_3_months"
	RangeLast6Months  = "last_6_months"
	RangeLast12Months = "last_12_months"
)

// ResolveTimeRange maps a named range onto a concrete [start, end] window
// ending at now. Unknown or empty names fall back to last_7_days.
func ResolveTimeRange(name string, now time.Time) (time.Time, time.Time) {
	switch name {
	case RangeMonthToDate:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, now
	case RangeLast4Weeks:
		return now.AddDate(0, 0, -28), now
	case RangeLast3Months:
		return now.AddDate(0, -3, 0), now
	case RangeLast6Months:
		return now.AddDate(0, -6, 0), now
	case RangeLast12Months:
		return now.AddDate(0, -12, 0), now
	default:
		return now.AddDate(0, 0, -7), now
	}
}
