package record

import (
	"errors"
	"time"
)

// ErrStorage wraps I/O failures from a Store implementation so callers can
// distinguish them from programming errors.
var ErrStorage = errors.New("record storage error")

// Entry is one conversation turn persisted in a patient's history.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
}

// Sample is one numeric measurement with its logging time.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// CalorieEntry is one calorie estimate. Estimated is false when the value
// came from a failed parse (the documented zero default), so a real zero
// stays distinguishable from "could not parse".
type CalorieEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
	Estimated bool      `json:"estimated"`
}

// Record is the durable per-user accumulation of conversation and
// health-metric history. All sequences are append-only and chronological.
type Record struct {
	History  []Entry        `json:"history"`
	Weight   []Sample       `json:"weight"`
	Fat      []Sample       `json:"fat"`
	Exercise []Sample       `json:"exercise"`
	Calories []CalorieEntry `json:"calories"`
}

// AppendHistory appends one conversation turn.
func (r *Record) AppendHistory(role, text string) {
	r.History = append(r.History, Entry{Timestamp: time.Now().UTC(), Role: role, Text: text})
}

// AppendMetric appends a sample to the named metric series. Unknown names
// are ignored; callers validate the metric name first.
func (r *Record) AppendMetric(name string, value float64) {
	s := Sample{Timestamp: time.Now().UTC(), Value: value}
	switch name {
	case "weight":
		r.Weight = append(r.Weight, s)
	case "fat":
		r.Fat = append(r.Fat, s)
	case "exercise":
		r.Exercise = append(r.Exercise, s)
	}
}

// Metric returns the named series values in chronological order.
func (r *Record) Metric(name string) []float64 {
	var samples []Sample
	switch name {
	case "weight":
		samples = r.Weight
	case "fat":
		samples = r.Fat
	case "exercise":
		samples = r.Exercise
	default:
		return nil
	}
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.Value)
	}
	return out
}

// AppendCalories appends one calorie estimate.
func (r *Record) AppendCalories(value int, estimated bool) {
	r.Calories = append(r.Calories, CalorieEntry{Timestamp: time.Now().UTC(), Value: value, Estimated: estimated})
}

// Store abstracts patient record persistence. Load never fails on absence:
// a never-seen user yields the zero-value record. Save overwrites the whole
// record. Implementations must serialize concurrent writes per user.
type Store interface {
	Load(userID string) (Record, error)
	Save(userID string, rec Record) error
}
