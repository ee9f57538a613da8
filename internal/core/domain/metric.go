package domain

// Metric selects which running total a leaderboard or rank query is computed
// over. It is a closed enumeration mapped to a typed column accessor in the
// store layer; a runtime field-name string never reaches SQL.
type Metric string

const (
	MetricGiven    Metric = "given"
	MetricReceived Metric = "received"
)

// Valid reports whether m is one of the known metrics.
func (m Metric) Valid() bool {
	return m == MetricGiven || m == MetricReceived
}

// ValueOf returns the stats field this metric ranks on.
func (m Metric) ValueOf(s UserStats) int64 {
	if m == MetricGiven {
		return s.TacosGiven
	}
	return s.TacosReceived
}
