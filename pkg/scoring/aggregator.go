package scoring

import (
	"context"

	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Aggregator persists calculations as AirdropScore rows.
type Aggregator struct {
	store  storage.AirdropStore
	logger *zap.Logger
}

func NewAggregator(store storage.AirdropStore, l *zap.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: l,
	}
}

// SaveCalculation upserts the score row for a calculation. Allocation fields
// written by the distribution engine are carried over from the existing row:
// once a snapshot has committed them, a per-user recompute must not move them.
func (a *Aggregator) SaveCalculation(ctx context.Context, calc *AirdropCalculation) (*storage.AirdropScore, error) {
	existing, err := a.store.GetScore(ctx, calc.Fid)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load existing score")
	}

	score := &storage.AirdropScore{
		Fid:        calc.Fid,
		BasePoints: calc.BasePoints,

		FollowerMultiplier:     calc.Multipliers.Follower,
		ChannelMultiplier:      calc.Multipliers.Channel,
		HoldingsMultiplier:     calc.Multipliers.Holdings,
		CollectibleMultiplier:  calc.Multipliers.Collectible,
		VoteBreadthMultiplier:  calc.Multipliers.VoteBreadth,
		ShareMultiplier:        calc.Multipliers.Share,
		ReputationMultiplier:   calc.Multipliers.Reputation,
		SubscriptionMultiplier: calc.Multipliers.Subscription,

		TotalMultiplier: calc.TotalMultiplier,
		FinalScore:      calc.FinalScore,
	}

	if existing != nil {
		score.TokenAllocation = existing.TokenAllocation
		score.Percentage = existing.Percentage
		score.CreatedAt = existing.CreatedAt
	}

	if err := a.store.SaveScore(ctx, score); err != nil {
		return nil, errors.Wrap(err, "failed to save score")
	}

	a.logger.Sugar().Debugw("Saved airdrop score",
		zap.Uint64("fid", calc.Fid),
		zap.Int64("finalScore", calc.FinalScore),
		zap.Float64("totalMultiplier", calc.TotalMultiplier),
	)
	return score, nil
}
