package collect

import (
	"log"
	"sort"
	"time"

	"energy_tracker/internal/config"
	"energy_tracker/internal/model"
	"energy_tracker/internal/series"
	"energy_tracker/internal/smard"
)

// BlockSource is what the collector needs from the upstream client: block
// discovery and block download, both degrading to empty on failure.
type BlockSource interface {
	ListBlocks(m model.Metric) []int64
	FetchBlock(m model.Metric, block int64) []smard.Point
}

// Collector walks the configured metrics strictly one after another, pulls
// the most recent blocks for each, and flattens everything into long records.
type Collector struct {
	source          BlockSource
	metrics         []model.Metric
	blocksPerMetric int
	requestDelay    time.Duration
}

func New(source BlockSource, cfg *config.Config) *Collector {
	return &Collector{
		source:          source,
		metrics:         cfg.Metrics,
		blocksPerMetric: cfg.BlocksPerMetric,
		requestDelay:    cfg.API.RequestDelay,
	}
}

// Run fetches all metrics and returns the concatenated long records. A metric
// with no blocks or no observations contributes nothing; Run only returns an
// empty slice when every metric came back empty.
func (c *Collector) Run() []model.LongRecord {
	var all []model.LongRecord

	for _, m := range c.metrics {
		set := series.NewSet(m)

		blocks := c.source.ListBlocks(m)
		sort.Slice(blocks, func(i, j int) bool { return blocks[i] > blocks[j] })
		if len(blocks) > c.blocksPerMetric {
			blocks = blocks[:c.blocksPerMetric]
		}
		if len(blocks) == 0 {
			log.Printf("  %s: no blocks available", m.Name)
			continue
		}

		for i, block := range blocks {
			if i > 0 && c.requestDelay > 0 {
				time.Sleep(c.requestDelay)
			}
			for _, p := range c.source.FetchBlock(m, block) {
				set.Add(p.TimestampMS, p.Value)
			}
		}

		if set.Len() == 0 {
			log.Printf("  %s: %d blocks, no observations", m.Name, len(blocks))
			continue
		}

		tr, _ := set.TimeRange()
		log.Printf("  %s: %d observations from %d blocks (%s to %s)",
			m.Name, set.Len(), len(blocks),
			tr.Start.Format("2006-01-02 15:04"), tr.End.Format("2006-01-02 15:04"))

		all = append(all, set.Records()...)
	}

	return all
}
