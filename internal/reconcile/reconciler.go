package reconcile

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"energy_tracker/internal/config"
	"energy_tracker/internal/model"
)

// Reconciler turns the collector's long records into the final wide table:
// pivot by timestamp, sort, deduplicate, derive aggregates.
type Reconciler struct {
	// Metrics fixes the column set and order.
	Metrics []model.Metric
	// Renewable and Fossil partition the generation columns for the
	// derived sums; LoadMetric is the percent denominator.
	Renewable  []string
	Fossil     []string
	LoadMetric string
}

func New(cfg *config.Config) *Reconciler {
	return &Reconciler{
		Metrics:    cfg.Metrics,
		Renewable:  cfg.Renewable,
		Fossil:     cfg.Fossil,
		LoadMetric: cfg.LoadMetric,
	}
}

// Build reconciles long records into a Table. Empty input yields an empty
// table, not an error.
//
// Duplicate records from overlapping blocks collapse to one row. When the
// source publishes conflicting values for the same timestamp and metric, one
// row per conflicting value survives; conflicts are upstream inconsistencies
// and are never silently merged.
func (r *Reconciler) Build(records []model.LongRecord) *Table {
	table := &Table{Metrics: r.Metrics}
	if len(records) == 0 {
		return table
	}

	rows := r.pivot(records)

	// Deterministic order: timestamp ascending, conflicting same-timestamp
	// rows by their canonical value key. Repeated runs over the same input
	// produce byte-identical ordering.
	type keyed struct {
		row WideRow
		key string
	}
	ks := make([]keyed, len(rows))
	for i := range rows {
		ks[i] = keyed{row: rows[i], key: r.rowKey(&rows[i])}
	}
	sort.Slice(ks, func(i, j int) bool {
		if !ks[i].row.Timestamp.Equal(ks[j].row.Timestamp) {
			return ks[i].row.Timestamp.Before(ks[j].row.Timestamp)
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		rows[i] = ks[i].row
	}

	rows = r.dedupe(rows)

	for i := range rows {
		r.derive(&rows[i])
	}

	table.Rows = rows
	return table
}

// pivot groups records by timestamp. Within a group each metric keeps its
// distinct values in first-seen order; exact duplicates collapse here. A
// group with a conflicting metric expands into one row per conflict layer,
// with single-valued metrics repeated across layers.
func (r *Reconciler) pivot(records []model.LongRecord) []WideRow {
	type group struct {
		ts     time.Time
		values map[string][]*float64
	}

	groups := make(map[int64]*group)
	var order []int64

	for _, rec := range records {
		key := rec.Timestamp.UnixMilli()
		g, ok := groups[key]
		if !ok {
			g = &group{ts: rec.Timestamp, values: make(map[string][]*float64)}
			groups[key] = g
			order = append(order, key)
		}
		if !containsValue(g.values[rec.Metric], rec.Value) {
			g.values[rec.Metric] = append(g.values[rec.Metric], rec.Value)
		}
	}

	var rows []WideRow
	for _, key := range order {
		g := groups[key]

		depth := 1
		for _, vals := range g.values {
			if len(vals) > depth {
				depth = len(vals)
			}
		}

		for layer := 0; layer < depth; layer++ {
			values := make(map[string]*float64, len(g.values))
			for metric, vals := range g.values {
				i := layer
				if i >= len(vals) {
					i = len(vals) - 1
				}
				values[metric] = vals[i]
			}
			rows = append(rows, WideRow{Timestamp: g.ts, Values: values})
		}
	}
	return rows
}

func containsValue(vals []*float64, v *float64) bool {
	for _, existing := range vals {
		if existing == nil && v == nil {
			return true
		}
		if existing != nil && v != nil && *existing == *v {
			return true
		}
	}
	return false
}

// dedupe removes rows that are equal across every column. Rows must already
// be sorted; order of the survivors is preserved.
func (r *Reconciler) dedupe(rows []WideRow) []WideRow {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for i := range rows {
		key := r.rowKey(&rows[i])
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rows[i])
	}
	return out
}

// rowKey is a canonical encoding of the timestamp and every metric column,
// used for full-row equality and tie-break ordering.
func (r *Reconciler) rowKey(row *WideRow) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(row.Timestamp.UnixMilli(), 10))
	for _, m := range r.Metrics {
		b.WriteByte('|')
		if v := row.Values[m.Name]; v != nil {
			b.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
		}
	}
	return b.String()
}

// derive fills the aggregate columns. Nil metric values count as 0 in the
// sums but stay nil in their own column. A nil or zero load denominator
// pins both percent columns to 0, never NaN or infinity.
func (r *Reconciler) derive(row *WideRow) {
	row.TotalRenewable = round2(r.sum(row, r.Renewable))
	row.TotalFossil = round2(r.sum(row, r.Fossil))

	load := row.Values[r.LoadMetric]
	if load == nil || *load == 0 {
		row.RenewablePercent = 0
		row.FossilPercent = 0
		return
	}
	row.RenewablePercent = round2(100 * row.TotalRenewable / *load)
	row.FossilPercent = round2(100 * row.TotalFossil / *load)
}

func (r *Reconciler) sum(row *WideRow, metrics []string) float64 {
	var total float64
	for _, name := range metrics {
		if v := row.Values[name]; v != nil {
			total += *v
		}
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Melt reshapes a wide table back into long records for spreadsheet
// consumption: one (timestamp, metric, value) row per non-nil metric column,
// plus the derived columns.
func Melt(t *Table) []model.LongRecord {
	var records []model.LongRecord
	for i := range t.Rows {
		row := &t.Rows[i]
		for _, m := range t.Metrics {
			if v := row.Values[m.Name]; v != nil {
				records = append(records, model.LongRecord{
					Timestamp: row.Timestamp,
					Metric:    m.Name,
					Value:     v,
				})
			}
		}
		for _, d := range []struct {
			name  string
			value float64
		}{
			{ColTotalRenewable, row.TotalRenewable},
			{ColTotalFossil, row.TotalFossil},
			{ColRenewablePercent, row.RenewablePercent},
			{ColFossilPercent, row.FossilPercent},
		} {
			v := d.value
			records = append(records, model.LongRecord{
				Timestamp: row.Timestamp,
				Metric:    d.name,
				Value:     &v,
			})
		}
	}
	return records
}
