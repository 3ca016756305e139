package forecast

import (
	"time"

	mstats "github.com/montanaflynn/stats"
)

const day = 24 * time.Hour

// futureTimestamps continues the cadence of the observed timestamps. Gaps of 28 to 31
// days step by calendar month, anything else by the median positive gap, and a series
// without a positive gap steps by one day.
func futureTimestamps(observed []time.Time, horizon int) []time.Time {
	out := make([]time.Time, 0, horizon)
	if horizon <= 0 {
		return out
	}
	var last time.Time
	if len(observed) > 0 {
		last = observed[len(observed)-1]
	}

	var gaps []float64
	monthly := true
	for i := 1; i < len(observed); i++ {
		gap := observed[i].Sub(observed[i-1])
		if gap <= 0 {
			continue
		}
		gaps = append(gaps, float64(gap))
		if gap < 28*day || gap > 31*day {
			monthly = false
		}
	}

	if len(gaps) > 0 && monthly {
		for k := 1; k <= horizon; k++ {
			out = append(out, addMonths(last, k))
		}
		return out
	}

	step := day
	if len(gaps) > 0 {
		median, err := mstats.Median(gaps)
		if err == nil && median > 0 {
			step = time.Duration(median)
		}
	}
	for k := 1; k <= horizon; k++ {
		out = append(out, last.Add(time.Duration(k)*step))
	}
	return out
}

// addMonths steps whole months, pinning the day to the end of shorter months
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return first.AddDate(0, 0, d-1)
}
