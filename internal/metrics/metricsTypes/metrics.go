package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_ParticipantProcessed = "airdrop.participantProcessed"
	Metric_Incr_ParticipantFailed    = "airdrop.participantFailed"
	Metric_Incr_SignalDegraded       = "airdrop.signalDegraded"
	Metric_Incr_ProofRequest         = "airdrop.proofRequest"

	Metric_Gauge_CohortSize       = "airdrop.cohortSize"
	Metric_Gauge_SnapshotLeaves   = "airdrop.snapshotLeaves"
	Metric_Gauge_TotalTokensValue = "airdrop.totalTokens"

	Metric_Timing_BatchDuration    = "airdrop.batch.duration"
	Metric_Timing_CalcDuration     = "airdrop.calc.duration"
	Metric_Timing_SnapshotDuration = "airdrop.snapshot.duration"
	Metric_Timing_ProofDuration    = "airdrop.proof.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name:   Metric_Incr_ParticipantProcessed,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ParticipantFailed,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_SignalDegraded,
			Labels: []string{"dimension"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_ProofRequest,
			Labels: []string{},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_CohortSize,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Gauge_SnapshotLeaves,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Gauge_TotalTokensValue,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name:   Metric_Timing_BatchDuration,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_CalcDuration,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_SnapshotDuration,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_ProofDuration,
			Labels: []string{},
		},
	},
}
