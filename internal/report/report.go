package report

import (
	"encoding/json"
	"fmt"
	"time"

	"health-bot/internal/record"
)

// DailySummary aggregates activity across all patient records for one day.
type DailySummary struct {
	Date            string `json:"date"`
	ActiveUsers     int    `json:"active_users"`
	Messages        int    `json:"messages"`
	MetricSamples   int    `json:"metric_samples"`
	CalorieEntries  int    `json:"calorie_entries"`
	CalorieTotal    int    `json:"calorie_total"`
	UnparsedEntries int    `json:"unparsed_entries"`
}

// Build computes the summary for the day containing targetDate.
func Build(records map[string]record.Record, targetDate time.Time) DailySummary {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	inDay := func(ts time.Time) bool {
		return !ts.Before(startOfDay) && ts.Before(endOfDay)
	}

	s := DailySummary{Date: startOfDay.Format("2006-01-02")}
	for _, rec := range records {
		active := false
		for _, e := range rec.History {
			if inDay(e.Timestamp) && e.Role == "user" {
				s.Messages++
				active = true
			}
		}
		for _, series := range [][]record.Sample{rec.Weight, rec.Fat, rec.Exercise} {
			for _, sm := range series {
				if inDay(sm.Timestamp) {
					s.MetricSamples++
					active = true
				}
			}
		}
		for _, c := range rec.Calories {
			if !inDay(c.Timestamp) {
				continue
			}
			s.CalorieEntries++
			s.CalorieTotal += c.Value
			if !c.Estimated {
				s.UnparsedEntries++
			}
			active = true
		}
		if active {
			s.ActiveUsers++
		}
	}
	return s
}

// Format renders the summary for the log.
func Format(s DailySummary) string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("daily summary %s (marshal failed: %v)", s.Date, err)
	}
	return string(b)
}
