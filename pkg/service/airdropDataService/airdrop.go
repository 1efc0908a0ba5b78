package airdropDataService

import (
	"context"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/batch"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/distribution"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/leaderboard"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/proofs"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/scoring"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/snapshot"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	"go.uber.org/zap"
)

// AirdropDataService is the single entry point the API surface and CLI use to
// drive the airdrop subsystem.
type AirdropDataService struct {
	calculator   *scoring.Calculator
	aggregator   *scoring.Aggregator
	orchestrator *batch.Orchestrator
	engine       *distribution.Engine
	builder      *snapshot.Builder
	proofService *proofs.ProofService
	leaderboard  *leaderboard.Service
	logger       *zap.Logger
	globalConfig *config.Config
}

func NewAirdropDataService(
	calculator *scoring.Calculator,
	aggregator *scoring.Aggregator,
	orchestrator *batch.Orchestrator,
	engine *distribution.Engine,
	builder *snapshot.Builder,
	proofService *proofs.ProofService,
	lb *leaderboard.Service,
	l *zap.Logger,
	cfg *config.Config,
) *AirdropDataService {
	return &AirdropDataService{
		calculator:   calculator,
		aggregator:   aggregator,
		orchestrator: orchestrator,
		engine:       engine,
		builder:      builder,
		proofService: proofService,
		leaderboard:  lb,
		logger:       l,
		globalConfig: cfg,
	}
}

// ComputeEligibility recalculates and persists one participant's score,
// returning the full multiplier breakdown.
func (ads *AirdropDataService) ComputeEligibility(ctx context.Context, fid uint64) (*scoring.AirdropCalculation, error) {
	calc, err := ads.calculator.Calculate(ctx, fid, nil)
	if err != nil {
		return nil, err
	}
	if _, err := ads.aggregator.SaveCalculation(ctx, calc); err != nil {
		return nil, err
	}
	ads.leaderboard.Invalidate()
	return calc, nil
}

// RunBatchCalculation refreshes the configured cohort and then re-divides the
// token pool over the fresh scores. A frozen snapshot skips the distribution
// step since allocations are locked at that point.
func (ads *AirdropDataService) RunBatchCalculation(ctx context.Context) (*batch.BatchResult, error) {
	cfg := ads.globalConfig.AirdropConfig
	result, err := ads.orchestrator.Run(ctx, cfg.CohortSize, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	if _, err := ads.engine.Distribute(ctx); err != nil {
		if err == distribution.ErrSnapshotFrozen {
			ads.logger.Sugar().Infow("Skipping distribution, snapshot is frozen")
		} else {
			return nil, err
		}
	}
	ads.leaderboard.Invalidate()
	return result, nil
}

// DistributeTokens re-divides the token pool across current scores.
func (ads *AirdropDataService) DistributeTokens(ctx context.Context) (*distribution.Result, error) {
	result, err := ads.engine.Distribute(ctx)
	if err != nil {
		return nil, err
	}
	ads.leaderboard.Invalidate()
	return result, nil
}

// GenerateSnapshot freezes the current allocations into a Merkle-committed
// snapshot.
func (ads *AirdropDataService) GenerateSnapshot(ctx context.Context) (*storage.AirdropSnapshot, error) {
	return ads.builder.GenerateSnapshot(ctx)
}

// GenerateProof returns the claim proof for a fid against the frozen snapshot.
// A non-zero snapshotId targets that snapshot instead of the active one.
func (ads *AirdropDataService) GenerateProof(ctx context.Context, fid uint64, snapshotId uint64) (*proofs.ClaimProof, error) {
	if snapshotId != 0 {
		return ads.proofService.GenerateProofForSnapshot(ctx, snapshotId, fid)
	}
	return ads.proofService.GenerateProof(ctx, fid)
}

// GetLeaderboard returns the cached leaderboard.
func (ads *AirdropDataService) GetLeaderboard(ctx context.Context, limit int) ([]*leaderboard.Entry, error) {
	return ads.leaderboard.GetLeaderboard(ctx, limit)
}
