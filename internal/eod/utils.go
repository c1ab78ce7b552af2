package eod

import (
	"path/filepath"
	"time"
)

const dayLayout = "2006-01-02"

func csvPath(dir string, day time.Time) string {
	return filepath.Join(dir, "eod", day.UTC().Format(dayLayout)+".csv")
}

// cutoffFor is the UTC instant on day's date after which the summary is due.
func cutoffFor(day time.Time, at time.Duration) time.Time {
	d := day.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Add(at)
}
