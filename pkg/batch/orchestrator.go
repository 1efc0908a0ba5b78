package batch

import (
	"context"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics/metricsTypes"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/activity"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/clients/socialgraph"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/scoring"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// BulkProfileReader is the bulk slice of the social graph client.
type BulkProfileReader interface {
	GetUsersBulk(ctx context.Context, fids []uint64) (map[uint64]*socialgraph.UserProfile, error)
}

// BatchError records one participant's failure without stopping the run.
type BatchError struct {
	Fid     uint64 `json:"fid"`
	Message string `json:"message"`
}

// BatchResult is the full accounting of a cohort refresh.
type BatchResult struct {
	Processed  int          `json:"processed"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Errors     []BatchError `json:"errors"`
	Duration   time.Duration
}

type Orchestrator struct {
	calculator    *scoring.Calculator
	aggregator    *scoring.Aggregator
	activityStore activity.Store
	profiles      BulkProfileReader
	metricsSink   *metrics.MetricsSink
	logger        *zap.Logger
	globalConfig  *config.Config

	// OnBatchComplete, when set, is invoked after each batch with the number
	// of participants processed so far and the cohort size.
	OnBatchComplete func(processed int, total int)
}

func NewOrchestrator(
	calculator *scoring.Calculator,
	aggregator *scoring.Aggregator,
	activityStore activity.Store,
	profiles BulkProfileReader,
	ms *metrics.MetricsSink,
	l *zap.Logger,
	cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		calculator:    calculator,
		aggregator:    aggregator,
		activityStore: activityStore,
		profiles:      profiles,
		metricsSink:   ms,
		logger:        l,
		globalConfig:  cfg,
	}
}

// Run refreshes the scores of the top cohortSize participants in batches of
// batchSize. Vote aggregates are prefetched once for the whole cohort and
// profiles once per batch, so no participant costs more than its share of the
// bulk calls. Individual failures are recorded and the run continues.
func (o *Orchestrator) Run(ctx context.Context, cohortSize int, batchSize int) (*BatchResult, error) {
	start := time.Now()

	cohort, err := o.activityStore.ListTopParticipants(ctx, cohortSize, o.globalConfig.AirdropConfig.ExcludedFids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cohort")
	}

	fids := utils.Map(cohort, func(p *activity.Participant, i uint64) uint64 {
		return p.Fid
	})

	voteAggregates, err := o.activityStore.BulkVoteAggregates(ctx, fids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prefetch vote aggregates")
	}

	o.logger.Sugar().Infow("Starting batch calculation",
		zap.Int("cohortSize", len(cohort)),
		zap.Int("batchSize", batchSize),
	)
	o.gauge(metricsTypes.Metric_Gauge_CohortSize, float64(len(cohort)))

	result := &BatchResult{
		Errors: make([]BatchError, 0),
	}

	batches := utils.Chunk(cohort, batchSize)
	for i, participants := range batches {
		o.processBatch(ctx, participants, voteAggregates, result)

		if o.OnBatchComplete != nil {
			o.OnBatchComplete(result.Processed, len(cohort))
		}

		// Fixed cooldown between batches keeps us under upstream rate limits.
		if i < len(batches)-1 && o.globalConfig.AirdropConfig.BatchCooldown > 0 {
			time.Sleep(o.globalConfig.AirdropConfig.BatchCooldown)
		}
	}

	result.Duration = time.Since(start)
	o.timing(metricsTypes.Metric_Timing_BatchDuration, result.Duration)

	o.logger.Sugar().Infow("Batch calculation complete",
		zap.Int("processed", result.Processed),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (o *Orchestrator) processBatch(
	ctx context.Context,
	participants []*activity.Participant,
	voteAggregates map[uint64]*activity.VoteAggregates,
	result *BatchResult,
) {
	fids := utils.Map(participants, func(p *activity.Participant, i uint64) uint64 {
		return p.Fid
	})

	// One bulk call covers every profile in the batch. If it fails each
	// calculation falls back to its own fetch (and degrades from there).
	profiles, err := o.profiles.GetUsersBulk(ctx, fids)
	if err != nil {
		o.logger.Sugar().Warnw("Bulk profile fetch failed, falling back to per-participant fetches",
			zap.Error(err),
		)
		profiles = map[uint64]*socialgraph.UserProfile{}
	}

	var mu sync.Mutex
	pool := pond.NewPool(len(participants))
	group := pool.NewGroupContext(ctx)

	for _, participant := range participants {
		p := participant
		group.Submit(func() {
			calcStart := time.Now()

			input := &scoring.CalculationInput{
				BasePoints:     &p.BasePoints,
				Profile:        profiles[p.Fid],
				VoteAggregates: voteAggregates[p.Fid],
			}

			calc, err := o.calculator.Calculate(ctx, p.Fid, input)
			if err == nil {
				_, err = o.aggregator.SaveCalculation(ctx, calc)
			}

			mu.Lock()
			defer mu.Unlock()
			result.Processed++
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BatchError{
					Fid:     p.Fid,
					Message: err.Error(),
				})
				o.incr(metricsTypes.Metric_Incr_ParticipantFailed)
				o.logger.Sugar().Errorw("Failed to process participant",
					zap.Uint64("fid", p.Fid),
					zap.Error(err),
				)
				return
			}
			result.Successful++
			o.incr(metricsTypes.Metric_Incr_ParticipantProcessed)
			o.timing(metricsTypes.Metric_Timing_CalcDuration, time.Since(calcStart))
			for _, challenge := range calc.Challenges {
				if challenge.Degraded {
					o.incrWithLabels(metricsTypes.Metric_Incr_SignalDegraded, []metricsTypes.MetricsLabel{
						{Name: "dimension", Value: challenge.Name},
					})
				}
			}
		})
	}

	// Group tasks never return errors; failures land in the result.
	_ = group.Wait()
	pool.StopAndWait()
}

func (o *Orchestrator) incr(name string) {
	o.incrWithLabels(name, nil)
}

func (o *Orchestrator) incrWithLabels(name string, labels []metricsTypes.MetricsLabel) {
	if o.metricsSink == nil {
		return
	}
	_ = o.metricsSink.Incr(name, labels, 1)
}

func (o *Orchestrator) gauge(name string, value float64) {
	if o.metricsSink == nil {
		return
	}
	_ = o.metricsSink.Gauge(name, value, nil)
}

func (o *Orchestrator) timing(name string, value time.Duration) {
	if o.metricsSink == nil {
		return
	}
	_ = o.metricsSink.Timing(name, value, nil)
}
