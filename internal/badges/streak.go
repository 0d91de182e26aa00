package badges

import (
	"sort"
	"time"
)

// yearMonth is a calendar month label; months are numbered continuously so
// December and the following January are one apart.
type yearMonth int

func monthOf(t time.Time) yearMonth {
	t = t.UTC()
	return yearMonth(t.Year()*12 + int(t.Month()) - 1)
}

// hasConsecutiveMonths reports whether the timestamps cover at least n
// adjacent calendar months. Any gap resets the run.
func hasConsecutiveMonths(timestamps []time.Time, n int) bool {
	if n <= 0 {
		return true
	}
	seen := make(map[yearMonth]struct{}, len(timestamps))
	months := make([]yearMonth, 0, len(timestamps))
	for _, ts := range timestamps {
		m := monthOf(ts)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })

	run := 0
	for i, m := range months {
		if i > 0 && m == months[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
