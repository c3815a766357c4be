// Package calendar derives visual severity buckets from journal entries.
package calendar

import (
	"math"
	"time"

	"github.com/echohealth/echohealth/internal/model"
)

// MaxIntensity is the highest bucket a day can reach.
const MaxIntensity = 5

// Intensity maps one day's entries to a bucket 0-5. A day without entries
// is 0 (no marker). Otherwise the average severity weight is stretched by
// 1.7 and capped, so a single Mild day lands at 2 and a single Severe day
// at 5.
func Intensity(entries []model.SymptomEntry) int {
	if len(entries) == 0 {
		return 0
	}
	score := 0
	for _, e := range entries {
		score += e.Severity.Weight()
	}
	avg := float64(score) / float64(len(entries))
	bucket := int(math.Ceil(avg * 1.7))
	if bucket > MaxIntensity {
		return MaxIntensity
	}
	return bucket
}

// MonthBuckets groups entries by day of the given month and derives each
// day's bucket. The result maps day-of-month (1-based) to intensity; days
// without entries are omitted.
func MonthBuckets(entries []model.SymptomEntry, year int, month time.Month) map[int]int {
	byDay := make(map[int][]model.SymptomEntry)
	for _, e := range entries {
		d, err := time.Parse(model.DateLayout, e.Date)
		if err != nil {
			continue
		}
		if d.Year() != year || d.Month() != month {
			continue
		}
		byDay[d.Day()] = append(byDay[d.Day()], e)
	}
	buckets := make(map[int]int, len(byDay))
	for day, es := range byDay {
		buckets[day] = Intensity(es)
	}
	return buckets
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
