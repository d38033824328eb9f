package reconcile

import (
	"time"

	"energy_tracker/internal/model"
)

// Derived column names, in output order after the metric columns.
const (
	ColTimestamp        = "timestamp"
	ColTotalRenewable   = "total_renewable_mw"
	ColTotalFossil      = "total_fossil_mw"
	ColRenewablePercent = "renewable_percent"
	ColFossilPercent    = "fossil_percent"
)

// WideRow is one reconciled timestamp: one nullable column per metric plus
// the derived aggregates. A metric with no observation at this timestamp is
// nil in Values, never a missing row.
type WideRow struct {
	Timestamp time.Time
	Values    map[string]*float64

	TotalRenewable   float64
	TotalFossil      float64
	RenewablePercent float64
	FossilPercent    float64
}

// Table is the reconciler's output: rows sorted ascending by timestamp with
// a fixed column order. An empty table is the defined "nothing to process"
// terminal state.
type Table struct {
	Metrics []model.Metric
	Rows    []WideRow
}

func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Header returns the column names in their stable output order.
func (t *Table) Header() []string {
	header := make([]string, 0, len(t.Metrics)+5)
	header = append(header, ColTimestamp)
	for _, m := range t.Metrics {
		header = append(header, m.Name)
	}
	return append(header, ColTotalRenewable, ColTotalFossil, ColRenewablePercent, ColFossilPercent)
}

// TimeRange returns the span covered by the table's rows.
func (t *Table) TimeRange() (model.TimeRange, bool) {
	if t.Empty() {
		return model.TimeRange{}, false
	}
	return model.TimeRange{
		Start: t.Rows[0].Timestamp,
		End:   t.Rows[len(t.Rows)-1].Timestamp,
	}, true
}
