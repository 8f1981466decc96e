package report

import (
	"testing"
	"time"

	"health-bot/internal/record"
)

func TestBuildDailySummary(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	records := map[string]record.Record{
		"U1": {
			History: []record.Entry{
				{Timestamp: now, Role: "user", Text: "hi"},
				{Timestamp: now, Role: "assistant", Text: "hello"},
				{Timestamp: yesterday, Role: "user", Text: "old"},
			},
			Weight: []record.Sample{{Timestamp: now, Value: 72.5}},
			Calories: []record.CalorieEntry{
				{Timestamp: now, Value: 650, Estimated: true},
				{Timestamp: now, Value: 0, Estimated: false},
			},
		},
		"U2": {
			History: []record.Entry{{Timestamp: yesterday, Role: "user", Text: "old"}},
		},
	}

	s := Build(records, now)
	if s.Date != "2026-08-31" {
		t.Fatalf("wrong date: %s", s.Date)
	}
	if s.ActiveUsers != 1 {
		t.Fatalf("expected 1 active user, got %d", s.ActiveUsers)
	}
	if s.Messages != 1 {
		t.Fatalf("assistant turns or stale turns counted: %d", s.Messages)
	}
	if s.MetricSamples != 1 {
		t.Fatalf("expected 1 metric sample, got %d", s.MetricSamples)
	}
	if s.CalorieEntries != 2 || s.CalorieTotal != 650 || s.UnparsedEntries != 1 {
		t.Fatalf("calorie aggregates wrong: %+v", s)
	}
}

func TestFormatIsLoggable(t *testing.T) {
	out := Format(DailySummary{Date: "2026-08-31", ActiveUsers: 3})
	if out == "" {
		t.Fatalf("empty summary line")
	}
}
