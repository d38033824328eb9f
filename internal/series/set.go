package series

import (
	"time"

	"energy_tracker/internal/model"
)

// Set accumulates one metric's observations for a single run. The collector
// creates a fresh Set per metric and discards it after flattening, so no
// state can leak from one metric into the next.
type Set struct {
	metric  model.Metric
	records []model.LongRecord
}

func NewSet(m model.Metric) *Set {
	return &Set{metric: m}
}

// Add appends one observation. The timestamp is upstream epoch milliseconds;
// value stays nil when the source has not published a number for the slot.
func (s *Set) Add(timestampMS int64, value *float64) {
	s.records = append(s.records, model.LongRecord{
		Timestamp: time.UnixMilli(timestampMS).UTC(),
		Metric:    s.metric.Name,
		Value:     value,
	})
}

func (s *Set) Len() int {
	return len(s.records)
}

// TimeRange returns the span covered by the accumulated observations.
func (s *Set) TimeRange() (model.TimeRange, bool) {
	if len(s.records) == 0 {
		return model.TimeRange{}, false
	}

	tr := model.TimeRange{Start: s.records[0].Timestamp, End: s.records[0].Timestamp}
	for _, r := range s.records[1:] {
		if r.Timestamp.Before(tr.Start) {
			tr.Start = r.Timestamp
		}
		if r.Timestamp.After(tr.End) {
			tr.End = r.Timestamp
		}
	}
	return tr, true
}

// Records returns the accumulated long records. No ordering is guaranteed;
// the reconciler sorts.
func (s *Set) Records() []model.LongRecord {
	return s.records
}
