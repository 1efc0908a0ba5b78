package scoring

import (
	"context"
	"math"
	"math/big"

	"github.com/alitto/pond/v2"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/activity"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/clients/socialgraph"
	"go.uber.org/zap"
)

// SocialGraphReader is the slice of the social graph client the calculator
// consumes.
type SocialGraphReader interface {
	GetUser(ctx context.Context, fid uint64) (*socialgraph.UserProfile, error)
	GetChannelEngagement(ctx context.Context, fid uint64) (*socialgraph.ChannelEngagement, error)
}

// LedgerReader reads on-chain balances for a participant's addresses.
type LedgerReader interface {
	TotalHoldings(ctx context.Context, addresses []string) (*big.Int, error)
	CollectibleCount(ctx context.Context, addresses []string) (int64, error)
}

// CalculationInput carries signals prefetched by the batch orchestrator so a
// bulk run never repeats per-participant lookups the cohort already paid for.
// Any nil field is fetched on demand.
type CalculationInput struct {
	BasePoints     *int64
	Profile        *socialgraph.UserProfile
	VoteAggregates *activity.VoteAggregates
}

type Calculator struct {
	activityStore activity.Store
	socialGraph   SocialGraphReader
	ledger        LedgerReader
	logger        *zap.Logger
	globalConfig  *config.Config
}

func NewCalculator(
	activityStore activity.Store,
	socialGraph SocialGraphReader,
	ledger LedgerReader,
	l *zap.Logger,
	cfg *config.Config,
) *Calculator {
	return &Calculator{
		activityStore: activityStore,
		socialGraph:   socialGraph,
		ledger:        ledger,
		logger:        l,
		globalConfig:  cfg,
	}
}

type dimensionResult struct {
	value      float64
	multiplier float64
	degraded   bool
}

// Calculate computes the full multiplier breakdown and final score for one
// participant. Individual signal failures degrade that dimension to the
// neutral multiplier; only a missing base-points read fails the calculation.
func (c *Calculator) Calculate(ctx context.Context, fid uint64, input *CalculationInput) (*AirdropCalculation, error) {
	if input == nil {
		input = &CalculationInput{}
	}

	var basePoints int64
	if input.BasePoints != nil {
		basePoints = *input.BasePoints
	} else {
		points, err := c.activityStore.GetBasePoints(ctx, fid)
		if err != nil {
			return nil, err
		}
		basePoints = points
	}

	// The profile backs four dimensions; fetch it once up front. A failure
	// here degrades those dimensions rather than aborting.
	profile := input.Profile
	if profile == nil {
		fetched, err := c.socialGraph.GetUser(ctx, fid)
		if err != nil {
			c.logger.Sugar().Warnw("Degrading profile-backed dimensions, profile fetch failed",
				zap.Uint64("fid", fid),
				zap.Error(err),
			)
		} else {
			profile = fetched
		}
	}

	// One slot per dimension, in AllTiers order.
	results := make([]dimensionResult, len(AllTiers))

	pool := pond.NewPool(len(AllTiers))
	group := pool.NewGroupContext(ctx)

	group.Submit(func() {
		results[0] = c.followerDimension(profile)
	})
	group.Submit(func() {
		results[1] = c.channelDimension(ctx, fid)
	})
	group.Submit(func() {
		results[2] = c.holdingsDimension(ctx, fid, profile)
	})
	group.Submit(func() {
		results[3] = c.collectibleDimension(ctx, fid, profile)
	})
	group.Submit(func() {
		results[4] = c.voteBreadthDimension(ctx, fid, input.VoteAggregates)
	})
	group.Submit(func() {
		results[5] = c.shareDimension(ctx, fid, input.VoteAggregates)
	})
	group.Submit(func() {
		results[6] = c.reputationDimension(profile)
	})
	group.Submit(func() {
		results[7] = c.subscriptionDimension(profile)
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	pool.StopAndWait()

	multipliers := Multipliers{
		Follower:     results[0].multiplier,
		Channel:      results[1].multiplier,
		Holdings:     results[2].multiplier,
		Collectible:  results[3].multiplier,
		VoteBreadth:  results[4].multiplier,
		Share:        results[5].multiplier,
		Reputation:   results[6].multiplier,
		Subscription: results[7].multiplier,
	}

	totalMultiplier := multipliers.Product()
	finalScore := int64(math.Round(float64(basePoints) * totalMultiplier))

	challenges := make([]Challenge, len(AllTiers))
	for i, table := range AllTiers {
		challenges[i] = buildChallenge(table, results[i])
	}

	return &AirdropCalculation{
		Fid:             fid,
		BasePoints:      basePoints,
		Multipliers:     multipliers,
		TotalMultiplier: totalMultiplier,
		FinalScore:      finalScore,
		Challenges:      challenges,
	}, nil
}

func buildChallenge(table TierTable, result dimensionResult) Challenge {
	challenge := Challenge{
		Name:         table.Name,
		CurrentValue: result.value,
		Multiplier:   result.multiplier,
		Completed:    table.Completed(result.value),
		Degraded:     result.degraded,
	}
	if next, ok := table.NextThreshold(result.value); ok {
		challenge.NextThreshold = &next
	}
	return challenge
}

func (c *Calculator) degraded(fid uint64, dimension string, err error) dimensionResult {
	c.logger.Sugar().Warnw("Degrading dimension to neutral multiplier",
		zap.Uint64("fid", fid),
		zap.String("dimension", dimension),
		zap.Error(err),
	)
	return dimensionResult{value: 0, multiplier: NeutralMultiplier, degraded: true}
}

func evaluated(table TierTable, value float64) dimensionResult {
	return dimensionResult{value: value, multiplier: table.Evaluate(value)}
}

func (c *Calculator) followerDimension(profile *socialgraph.UserProfile) dimensionResult {
	if profile == nil {
		return dimensionResult{multiplier: NeutralMultiplier, degraded: true}
	}
	return evaluated(FollowerTiers, float64(profile.FollowerCount))
}

func (c *Calculator) channelDimension(ctx context.Context, fid uint64) dimensionResult {
	engagement, err := c.socialGraph.GetChannelEngagement(ctx, fid)
	if err != nil {
		return c.degraded(fid, ChannelTiers.Name, err)
	}
	level := ChannelEngagementNone
	if engagement.Following {
		level = ChannelEngagementFollowing
		if engagement.CastCount > 0 {
			level = ChannelEngagementCasting
		}
	}
	return evaluated(ChannelTiers, float64(level))
}

func (c *Calculator) holdingsDimension(ctx context.Context, fid uint64, profile *socialgraph.UserProfile) dimensionResult {
	if profile == nil {
		return dimensionResult{multiplier: NeutralMultiplier, degraded: true}
	}
	holdings, err := c.ledger.TotalHoldings(ctx, profile.VerifiedAddresses)
	if err != nil {
		return c.degraded(fid, HoldingsTiers.Name, err)
	}
	value, _ := new(big.Float).SetInt(holdings).Float64()
	return evaluated(HoldingsTiers, value)
}

func (c *Calculator) collectibleDimension(ctx context.Context, fid uint64, profile *socialgraph.UserProfile) dimensionResult {
	if profile == nil {
		return dimensionResult{multiplier: NeutralMultiplier, degraded: true}
	}
	count, err := c.ledger.CollectibleCount(ctx, profile.VerifiedAddresses)
	if err != nil {
		return c.degraded(fid, CollectibleTiers.Name, err)
	}
	return evaluated(CollectibleTiers, float64(count))
}

func (c *Calculator) voteBreadthDimension(ctx context.Context, fid uint64, prefetched *activity.VoteAggregates) dimensionResult {
	if prefetched != nil {
		return evaluated(VoteBreadthTiers, float64(prefetched.DistinctBrands))
	}
	count, err := c.activityStore.GetDistinctVoteTargets(ctx, fid)
	if err != nil {
		return c.degraded(fid, VoteBreadthTiers.Name, err)
	}
	return evaluated(VoteBreadthTiers, float64(count))
}

func (c *Calculator) shareDimension(ctx context.Context, fid uint64, prefetched *activity.VoteAggregates) dimensionResult {
	if prefetched != nil {
		return evaluated(ShareTiers, float64(prefetched.ShareCount))
	}
	count, err := c.activityStore.GetShareCount(ctx, fid)
	if err != nil {
		return c.degraded(fid, ShareTiers.Name, err)
	}
	return evaluated(ShareTiers, float64(count))
}

func (c *Calculator) reputationDimension(profile *socialgraph.UserProfile) dimensionResult {
	if profile == nil {
		return dimensionResult{multiplier: NeutralMultiplier, degraded: true}
	}
	return evaluated(ReputationTiers, profile.Score)
}

func (c *Calculator) subscriptionDimension(profile *socialgraph.UserProfile) dimensionResult {
	if profile == nil {
		return dimensionResult{multiplier: NeutralMultiplier, degraded: true}
	}
	value := 0.0
	if profile.ProSubscriber {
		value = 1.0
	}
	return evaluated(SubscriptionTiers, value)
}
