package utils

import "time"

func NowUnixSeconds() int64 { return time.Now().Unix() }

// CalendarMonthWindow returns [first of month, first of next month) for the
// month containing t, in UTC unix seconds.
func CalendarMonthWindow(t time.Time) (int64, int64) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start.Unix(), end.Unix()
}

// UsageWindowFor picks the usage-accounting window. The subscription's own
// billing period wins when it is sane (starts before it ends, has not ended
// yet); otherwise the calendar month containing now. Free-plan records with
// their long synthetic period also land on the calendar month so free usage
// still rolls over monthly.
func UsageWindowFor(periodStart, periodEnd int64, syntheticFree bool, now time.Time) (int64, int64) {
	if !syntheticFree && periodStart > 0 && periodEnd > periodStart && periodEnd > now.Unix() {
		return periodStart, periodEnd
	}
	return CalendarMonthWindow(now)
}
