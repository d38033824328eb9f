// tracker pulls recent German electricity-market series (grid load,
// generation by source, day-ahead price) from the SMARD chart_data API,
// reconciles them into one wide table per timestamp with renewable/fossil
// aggregates, and replaces the contents of the configured sinks with the
// result. The CSV file is always written; Google Sheets and InfluxDB are
// optional targets.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"energy_tracker/internal/collect"
	"energy_tracker/internal/config"
	"energy_tracker/internal/reconcile"
	"energy_tracker/internal/sink"
	"energy_tracker/internal/smard"
)

func main() {
	region := flag.String("region", "", "market region code (overrides SMARD_REGION)")
	blocks := flag.Int("blocks", 0, "most recent blocks to fetch per metric (overrides SMARD_BLOCKS_PER_METRIC)")
	output := flag.String("output", "", "output CSV path (overrides TRACKER_OUTPUT)")
	sheetID := flag.String("sheet-id", "", "Google Sheets spreadsheet ID (overrides SHEETS_SPREADSHEET_ID)")
	flag.Parse()

	loadDotEnv(".env")

	cfg := config.Load()
	if *region != "" {
		cfg.API.Region = *region
	}
	if *blocks > 0 {
		cfg.BlocksPerMetric = *blocks
	}
	if *output != "" {
		cfg.Sinks.CSVPath = *output
	}
	if *sheetID != "" {
		cfg.Sinks.SheetID = *sheetID
	}

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	started := time.Now()
	log.Printf("fetching %d metrics for %s (%s resolution, %d blocks each)",
		len(cfg.Metrics), cfg.API.Region, cfg.API.Resolution, cfg.BlocksPerMetric)

	client := smard.NewClient(cfg.API)
	records := collect.New(client, cfg).Run()
	if len(records) == 0 {
		log.Printf("nothing to process: no metric returned data")
		return 0
	}
	log.Printf("collected %d records", len(records))

	table := reconcile.New(cfg).Build(records)
	tr, _ := table.TimeRange()
	log.Printf("reconciled %d rows, %d columns (%s to %s)",
		len(table.Rows), len(table.Header()),
		tr.Start.Format("2006-01-02 15:04"), tr.End.Format("2006-01-02 15:04"))

	sinks := buildSinks(cfg)
	written := 0
	for _, s := range sinks {
		if err := s.Write(table); err != nil {
			log.Printf("%s: write failed: %v", s.Name(), err)
			continue
		}
		log.Printf("%s: wrote %d rows", s.Name(), len(table.Rows))
		written++
	}
	for _, s := range sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}

	log.Printf("done in %.2fs", time.Since(started).Seconds())
	if written == 0 {
		return 1
	}
	return 0
}

// buildSinks assembles the configured sinks, CSV first so the computed table
// is on disk before any remote target can fail.
func buildSinks(cfg *config.Config) []sink.Sink {
	sinks := []sink.Sink{sink.NewCSVSink(cfg.Sinks.CSVPath)}
	ctx := context.Background()

	if cfg.Sinks.SheetID != "" {
		creds := []byte(os.Getenv("GOOGLE_CREDENTIALS_JSON"))
		s, err := sink.NewSheetsSink(ctx, cfg.Sinks.SheetID, cfg.Sinks.SheetName, creds)
		if err != nil {
			log.Printf("sheets sink unavailable: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	if cfg.Sinks.InfluxURL != "" {
		s, err := sink.NewInfluxSink(ctx, cfg.Sinks, cfg.API.Region)
		if err != nil {
			log.Printf("influxdb sink unavailable: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	return sinks
}

// loadDotEnv reads a .env file and sets variables not already in the environment.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return // silently skip if .env doesn't exist
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, val)
		}
	}
}
