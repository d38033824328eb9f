package model

import "time"

// Metric identifies one upstream SMARD time series. The symbolic name is the
// unique key used for output columns; the upstream code is the numeric filter
// id in chart_data URLs. Both travel together through every pipeline stage,
// so nothing downstream ever has to resolve a name from a code.
type Metric struct {
	Name string
	Code int
	Unit string
}

var (
	MetricLoad          = Metric{Name: "load", Code: 410, Unit: "MW"}
	MetricWindOffshore  = Metric{Name: "wind_offshore", Code: 1225, Unit: "MW"}
	MetricWindOnshore   = Metric{Name: "wind_onshore", Code: 4067, Unit: "MW"}
	MetricSolar         = Metric{Name: "solar", Code: 4068, Unit: "MW"}
	MetricBiomass       = Metric{Name: "biomass", Code: 4066, Unit: "MW"}
	MetricHydro         = Metric{Name: "hydro", Code: 1226, Unit: "MW"}
	MetricNuclear       = Metric{Name: "nuclear", Code: 1224, Unit: "MW"}
	MetricLignite       = Metric{Name: "lignite", Code: 1223, Unit: "MW"}
	MetricHardCoal      = Metric{Name: "hard_coal", Code: 4070, Unit: "MW"}
	MetricNaturalGas    = Metric{Name: "natural_gas", Code: 4069, Unit: "MW"}
	MetricDayAheadPrice = Metric{Name: "day_ahead_price", Code: 4169, Unit: "EUR/MWh"}
)

// Metrics lists every tracked metric in output column order. The order is
// fixed so downstream tooling can bind to column positions across runs.
var Metrics = []Metric{
	MetricLoad,
	MetricWindOffshore,
	MetricWindOnshore,
	MetricSolar,
	MetricBiomass,
	MetricHydro,
	MetricNuclear,
	MetricLignite,
	MetricHardCoal,
	MetricNaturalGas,
	MetricDayAheadPrice,
}

// RenewableMetrics and FossilMetrics partition the generation columns used
// for the derived aggregates. Nuclear and the price column belong to neither.
var (
	RenewableMetrics = []string{
		MetricWindOffshore.Name,
		MetricWindOnshore.Name,
		MetricSolar.Name,
		MetricBiomass.Name,
		MetricHydro.Name,
	}
	FossilMetrics = []string{
		MetricLignite.Name,
		MetricHardCoal.Name,
		MetricNaturalGas.Name,
	}
)

// LoadMetricName is the denominator column for the percent aggregates.
var LoadMetricName = MetricLoad.Name

// LongRecord is one flattened observation: the interchange shape between the
// collector and the reconciler. A nil Value means the upstream source has a
// slot for this timestamp but has not published a number yet.
type LongRecord struct {
	Timestamp time.Time
	Metric    string
	Value     *float64
}

type TimeRange struct {
	Start time.Time
	End   time.Time
}
