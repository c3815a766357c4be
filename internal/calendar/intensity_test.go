package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/echohealth/echohealth/internal/model"
)

func entry(date string, sev model.Severity) model.SymptomEntry {
	return model.SymptomEntry{Date: date, Symptom: "Headache", Severity: sev}
}

func TestIntensityBuckets(t *testing.T) {
	cases := []struct {
		name    string
		entries []model.SymptomEntry
		want    int
	}{
		{"no entries", nil, 0},
		{"one mild", []model.SymptomEntry{entry("2026-09-01", model.SeverityMild)}, 2},
		{"one moderate", []model.SymptomEntry{entry("2026-09-01", model.SeverityModerate)}, 4},
		{"one severe", []model.SymptomEntry{entry("2026-09-01", model.SeveritySevere)}, 5},
		{"three mild", []model.SymptomEntry{
			entry("2026-09-01", model.SeverityMild),
			entry("2026-09-01", model.SeverityMild),
			entry("2026-09-01", model.SeverityMild),
		}, 2},
		{"mild plus severe", []model.SymptomEntry{
			entry("2026-09-01", model.SeverityMild),
			entry("2026-09-01", model.SeveritySevere),
		}, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Intensity(c.entries))
		})
	}
}

func TestIntensityIsCapped(t *testing.T) {
	var entries []model.SymptomEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, entry("2026-09-01", model.SeveritySevere))
	}
	assert.Equal(t, MaxIntensity, Intensity(entries))
}

func TestMonthBuckets(t *testing.T) {
	entries := []model.SymptomEntry{
		entry("2026-09-03", model.SeverityMild),
		entry("2026-09-03", model.SeveritySevere),
		entry("2026-09-17", model.SeveritySevere),
		entry("2026-08-31", model.SeveritySevere), // other month
		entry("not-a-date", model.SeverityMild),   // skipped
	}
	buckets := MonthBuckets(entries, 2026, time.September)
	assert.Equal(t, map[int]int{3: 4, 17: 5}, buckets)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 30, DaysIn(2026, time.September))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2026, time.February))
}
