package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_tracker/internal/model"
	"energy_tracker/internal/reconcile"
)

func f(v float64) *float64 {
	return &v
}

func testTable(rows ...reconcile.WideRow) *reconcile.Table {
	return &reconcile.Table{
		Metrics: []model.Metric{
			{Name: "load", Code: 410, Unit: "MW"},
			{Name: "wind", Code: 4067, Unit: "MW"},
		},
		Rows: rows,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "electricity.csv")
	table := testTable(reconcile.WideRow{
		Timestamp:        time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		Values:           map[string]*float64{"load": f(100), "wind": f(20)},
		TotalRenewable:   20,
		RenewablePercent: 20,
	})

	require.NoError(t, NewCSVSink(path).Write(table))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t,
		[]string{"timestamp", "load", "wind",
			"total_renewable_mw", "total_fossil_mw", "renewable_percent", "fossil_percent"},
		rows[0])
	assert.Equal(t,
		[]string{"2025-08-01T12:00:00Z", "100", "20", "20.00", "0.00", "20.00", "0.00"},
		rows[1])
}

func TestCSVSink_NilColumnIsEmptyCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "electricity.csv")
	table := testTable(reconcile.WideRow{
		Timestamp: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		Values:    map[string]*float64{"load": f(100)},
	})

	require.NoError(t, NewCSVSink(path).Write(table))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[1][2])
}

func TestCSVSink_ReplacesPriorContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "electricity.csv")
	ts := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	big := testTable(
		reconcile.WideRow{Timestamp: ts, Values: map[string]*float64{"load": f(1)}},
		reconcile.WideRow{Timestamp: ts.Add(time.Hour), Values: map[string]*float64{"load": f(2)}},
		reconcile.WideRow{Timestamp: ts.Add(2 * time.Hour), Values: map[string]*float64{"load": f(3)}},
	)
	small := testTable(
		reconcile.WideRow{Timestamp: ts, Values: map[string]*float64{"load": f(9)}},
	)

	sink := NewCSVSink(path)
	require.NoError(t, sink.Write(big))
	require.NoError(t, sink.Write(small))

	// Truncate-then-write: nothing from the first, larger write survives.
	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "9", rows[1][1])
}
