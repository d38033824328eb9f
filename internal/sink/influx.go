package sink

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"energy_tracker/internal/config"
	"energy_tracker/internal/reconcile"
)

// InfluxSink writes one point per reconciled row into an InfluxDB bucket.
// Points are keyed by timestamp within the measurement, so re-running over
// overlapping blocks overwrites rather than duplicates.
type InfluxSink struct {
	ctx      context.Context
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	region   string
	url      string
}

func NewInfluxSink(ctx context.Context, cfg config.SinkConfig, region string) (*InfluxSink, error) {
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)

	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb: connecting to %s: %w", cfg.InfluxURL, err)
	}

	return &InfluxSink{
		ctx:      ctx,
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		region:   region,
		url:      cfg.InfluxURL,
	}, nil
}

func (s *InfluxSink) Name() string {
	return "influxdb:" + s.url
}

func (s *InfluxSink) Write(table *reconcile.Table) error {
	for i := range table.Rows {
		row := &table.Rows[i]

		fields := make(map[string]interface{}, len(table.Metrics)+4)
		for _, m := range table.Metrics {
			if v := row.Values[m.Name]; v != nil {
				fields[m.Name] = *v
			}
		}
		fields[reconcile.ColTotalRenewable] = row.TotalRenewable
		fields[reconcile.ColTotalFossil] = row.TotalFossil
		fields[reconcile.ColRenewablePercent] = row.RenewablePercent
		fields[reconcile.ColFossilPercent] = row.FossilPercent

		point := write.NewPoint(
			"electricity",
			map[string]string{"region": s.region},
			fields,
			row.Timestamp,
		)

		if err := s.writeAPI.WritePoint(s.ctx, point); err != nil {
			return fmt.Errorf("influxdb: writing point: %w", err)
		}
	}
	return nil
}

func (s *InfluxSink) Close() {
	s.client.Close()
}
