package distribution

import (
	"context"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics/metricsTypes"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrSnapshotFrozen is returned when allocations are requested while a frozen
// snapshot exists. The committed leaves are the source of truth at that point
// and score rows must not drift away from them.
var ErrSnapshotFrozen = errors.New("a frozen snapshot exists, allocations are locked")

// Result summarizes one allocation pass over the score table.
type Result struct {
	Participants    int   `json:"participants"`
	EligibleCount   int   `json:"eligibleCount"`
	TotalPoints     int64 `json:"totalPoints"`
	TokensAllocated int64 `json:"tokensAllocated"`
}

// Engine divides the configured token pool across score rows proportionally to
// final score. Running it twice over the same scores writes the same
// allocations, so it is safe to re-run after every batch calculation.
type Engine struct {
	store        storage.AirdropStore
	metricsSink  *metrics.MetricsSink
	logger       *zap.Logger
	globalConfig *config.Config
}

func NewEngine(store storage.AirdropStore, ms *metrics.MetricsSink, l *zap.Logger, cfg *config.Config) *Engine {
	return &Engine{
		store:        store,
		metricsSink:  ms,
		logger:       l,
		globalConfig: cfg,
	}
}

// Distribute recomputes token_allocation and percentage for every score row
// and commits them in one transaction. Rows with a non-positive final score
// are explicitly zeroed rather than skipped, so a participant who drops out of
// eligibility loses any stale allocation.
func (e *Engine) Distribute(ctx context.Context) (*Result, error) {
	active, err := e.store.GetActiveSnapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check for an active snapshot")
	}
	if active != nil && active.IsFrozen {
		return nil, ErrSnapshotFrozen
	}

	scores, err := e.store.ListScores(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list scores")
	}

	result := &Result{
		Participants: len(scores),
	}
	for _, score := range scores {
		if score.FinalScore > 0 {
			result.EligibleCount++
			result.TotalPoints += score.FinalScore
		}
	}

	totalPool := decimal.NewFromInt(e.globalConfig.AirdropConfig.TotalPool)
	totalPoints := decimal.NewFromInt(result.TotalPoints)
	hundred := decimal.NewFromInt(100)

	for _, score := range scores {
		if score.FinalScore <= 0 || result.TotalPoints == 0 {
			score.TokenAllocation = 0
			score.Percentage = 0
			continue
		}
		share := decimal.NewFromInt(score.FinalScore).Div(totalPoints)
		// Floor keeps the sum of allocations within the pool; the remainder
		// from rounding stays unallocated.
		score.TokenAllocation = totalPool.Mul(share).Floor().IntPart()
		score.Percentage = share.Mul(hundred).InexactFloat64()
		result.TokensAllocated += score.TokenAllocation
	}

	if err := e.store.UpdateAllocations(ctx, scores); err != nil {
		return nil, errors.Wrap(err, "failed to update allocations")
	}

	if e.metricsSink != nil {
		_ = e.metricsSink.Gauge(metricsTypes.Metric_Gauge_TotalTokensValue, float64(result.TokensAllocated), nil)
	}
	e.logger.Sugar().Infow("Distributed token pool",
		zap.Int("participants", result.Participants),
		zap.Int("eligible", result.EligibleCount),
		zap.Int64("totalPoints", result.TotalPoints),
		zap.Int64("tokensAllocated", result.TokensAllocated),
	)
	return result, nil
}
