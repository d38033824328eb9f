package collect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_tracker/internal/config"
	"energy_tracker/internal/model"
	"energy_tracker/internal/smard"
)

var (
	metricLoad = model.Metric{Name: "load", Code: 410, Unit: "MW"}
	metricWind = model.Metric{Name: "wind", Code: 4067, Unit: "MW"}
)

// fakeSource serves canned blocks keyed by metric name.
type fakeSource struct {
	blocks map[string][]int64
	data   map[string]map[int64][]smard.Point
}

func (f *fakeSource) ListBlocks(m model.Metric) []int64 {
	return f.blocks[m.Name]
}

func (f *fakeSource) FetchBlock(m model.Metric, block int64) []smard.Point {
	return f.data[m.Name][block]
}

func pt(ts int64, v float64) smard.Point {
	return smard.Point{TimestampMS: ts, Value: &v}
}

func newCollector(source BlockSource, metrics []model.Metric, blocksPerMetric int) *Collector {
	return New(source, &config.Config{
		Metrics:         metrics,
		BlocksPerMetric: blocksPerMetric,
	})
}

func TestRun_FlattensAndTags(t *testing.T) {
	source := &fakeSource{
		blocks: map[string][]int64{"load": {1000}},
		data: map[string]map[int64][]smard.Point{
			"load": {1000: {pt(1000, 100), pt(2000, 110)}},
		},
	}

	records := newCollector(source, []model.Metric{metricLoad}, 2).Run()
	require.Len(t, records, 2)

	assert.Equal(t, "load", records[0].Metric)
	assert.Equal(t, time.UnixMilli(1000).UTC(), records[0].Timestamp)
	require.NotNil(t, records[0].Value)
	assert.InDelta(t, 100, *records[0].Value, 0.001)
	assert.InDelta(t, 110, *records[1].Value, 0.001)
}

func TestRun_TakesMostRecentBlocks(t *testing.T) {
	// Index order is scrambled: the collector must still pick the two
	// newest blocks.
	source := &fakeSource{
		blocks: map[string][]int64{"load": {2000, 4000, 3000}},
		data: map[string]map[int64][]smard.Point{
			"load": {
				2000: {pt(2000, 1)},
				3000: {pt(3000, 2)},
				4000: {pt(4000, 3)},
			},
		},
	}

	records := newCollector(source, []model.Metric{metricLoad}, 2).Run()
	require.Len(t, records, 2)
	assert.InDelta(t, 3, *records[0].Value, 0.001) // block 4000 first
	assert.InDelta(t, 2, *records[1].Value, 0.001) // then block 3000
}

func TestRun_MetricIsolation(t *testing.T) {
	// load has no blocks at all; wind must come through untouched and no
	// wind value may surface under the load name.
	source := &fakeSource{
		blocks: map[string][]int64{"wind": {1000}},
		data: map[string]map[int64][]smard.Point{
			"wind": {1000: {pt(1000, 20), pt(2000, 25)}},
		},
	}

	records := newCollector(source, []model.Metric{metricLoad, metricWind}, 2).Run()
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "wind", r.Metric)
	}
}

func TestRun_EmptyBlocksContributeNothing(t *testing.T) {
	source := &fakeSource{
		blocks: map[string][]int64{"load": {1000}},
		data:   map[string]map[int64][]smard.Point{"load": {1000: nil}},
	}

	records := newCollector(source, []model.Metric{metricLoad}, 2).Run()
	assert.Empty(t, records)
}

func TestRun_NilValuesPassThrough(t *testing.T) {
	source := &fakeSource{
		blocks: map[string][]int64{"load": {1000}},
		data: map[string]map[int64][]smard.Point{
			"load": {1000: {{TimestampMS: 1000, Value: nil}, pt(2000, 100)}},
		},
	}

	records := newCollector(source, []model.Metric{metricLoad}, 2).Run()
	require.Len(t, records, 2)
	assert.Nil(t, records[0].Value)
	require.NotNil(t, records[1].Value)
}
