package config

import (
	"os"
	"strconv"
	"time"

	"energy_tracker/internal/model"
)

// Config groups everything a run needs. It is built once at startup and
// passed down explicitly; nothing reads configuration as ambient state.
type Config struct {
	API     APIConfig
	Metrics []model.Metric
	// BlocksPerMetric is how many of the most recent upstream blocks are
	// fetched for each metric per run.
	BlocksPerMetric int

	// Derived-column partitions and the percent denominator.
	Renewable  []string
	Fossil     []string
	LoadMetric string

	Sinks SinkConfig
}

// APIConfig describes the upstream SMARD chart_data endpoint.
type APIConfig struct {
	BaseURL    string
	Region     string
	Resolution string
	// IndexTimeout bounds the small block-index lookups, DataTimeout the
	// larger per-block series downloads.
	IndexTimeout time.Duration
	DataTimeout  time.Duration
	Retries      int
	RetryBackoff time.Duration
	// RequestDelay is the pause between consecutive block downloads.
	RequestDelay time.Duration
}

// SinkConfig holds sink targets. Empty SheetID / InfluxURL disable the
// corresponding sink; the CSV sink is always on.
type SinkConfig struct {
	CSVPath      string
	SheetID      string
	SheetName    string
	InfluxURL    string
	InfluxOrg    string
	InfluxBucket string
	InfluxToken  string
}

// Load builds a Config from environment variables with sensible defaults.
// Command-line flags may override individual fields afterwards.
func Load() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      getEnv("SMARD_BASE_URL", "https://www.smard.de/app/chart_data"),
			Region:       getEnv("SMARD_REGION", "DE"),
			Resolution:   getEnv("SMARD_RESOLUTION", "hour"),
			IndexTimeout: getEnvDuration("SMARD_INDEX_TIMEOUT", 10*time.Second),
			DataTimeout:  getEnvDuration("SMARD_DATA_TIMEOUT", 30*time.Second),
			Retries:      getEnvInt("SMARD_RETRIES", 5),
			RetryBackoff: getEnvDuration("SMARD_RETRY_BACKOFF", 1*time.Second),
			RequestDelay: getEnvDuration("SMARD_REQUEST_DELAY", 500*time.Millisecond),
		},
		Metrics:         model.Metrics,
		BlocksPerMetric: getEnvInt("SMARD_BLOCKS_PER_METRIC", 2),
		Renewable:       model.RenewableMetrics,
		Fossil:          model.FossilMetrics,
		LoadMetric:      model.LoadMetricName,
		Sinks: SinkConfig{
			CSVPath:      getEnv("TRACKER_OUTPUT", "output/electricity.csv"),
			SheetID:      getEnv("SHEETS_SPREADSHEET_ID", ""),
			SheetName:    getEnv("SHEETS_SHEET_NAME", "electricity"),
			InfluxURL:    getEnv("INFLUXDB_URL", ""),
			InfluxOrg:    getEnv("INFLUXDB_ORG", "energy"),
			InfluxBucket: getEnv("INFLUXDB_BUCKET", "electricity"),
			InfluxToken:  getEnv("INFLUX_TOKEN", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
