package scoring

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/activity"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/clients/socialgraph"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeActivityStore struct {
	basePoints  map[uint64]int64
	voteTargets map[uint64]int
	shareCounts map[uint64]int
	failReads   bool
}

func (f *fakeActivityStore) GetBasePoints(ctx context.Context, fid uint64) (int64, error) {
	if f.failReads {
		return 0, errors.New("activity store unavailable")
	}
	return f.basePoints[fid], nil
}

func (f *fakeActivityStore) GetDistinctVoteTargets(ctx context.Context, fid uint64) (int, error) {
	if f.failReads {
		return 0, errors.New("activity store unavailable")
	}
	return f.voteTargets[fid], nil
}

func (f *fakeActivityStore) GetShareCount(ctx context.Context, fid uint64) (int, error) {
	if f.failReads {
		return 0, errors.New("activity store unavailable")
	}
	return f.shareCounts[fid], nil
}

func (f *fakeActivityStore) BulkVoteAggregates(ctx context.Context, fids []uint64) (map[uint64]*activity.VoteAggregates, error) {
	aggregates := make(map[uint64]*activity.VoteAggregates, len(fids))
	for _, fid := range fids {
		aggregates[fid] = &activity.VoteAggregates{
			DistinctBrands: f.voteTargets[fid],
			ShareCount:     f.shareCounts[fid],
		}
	}
	return aggregates, nil
}

func (f *fakeActivityStore) ListTopParticipants(ctx context.Context, limit int, excludedFids []uint64) ([]*activity.Participant, error) {
	return nil, nil
}

type fakeSocialGraph struct {
	profiles    map[uint64]*socialgraph.UserProfile
	engagements map[uint64]*socialgraph.ChannelEngagement
	fail        bool
}

func (f *fakeSocialGraph) GetUser(ctx context.Context, fid uint64) (*socialgraph.UserProfile, error) {
	if f.fail {
		return nil, errors.New("social graph unavailable")
	}
	profile, ok := f.profiles[fid]
	if !ok {
		return nil, errors.Errorf("user %d not found", fid)
	}
	return profile, nil
}

func (f *fakeSocialGraph) GetChannelEngagement(ctx context.Context, fid uint64) (*socialgraph.ChannelEngagement, error) {
	if f.fail {
		return nil, errors.New("social graph unavailable")
	}
	engagement, ok := f.engagements[fid]
	if !ok {
		return &socialgraph.ChannelEngagement{}, nil
	}
	return engagement, nil
}

type fakeLedger struct {
	holdings     *big.Int
	collectibles int64
	fail         bool
}

func (f *fakeLedger) TotalHoldings(ctx context.Context, addresses []string) (*big.Int, error) {
	if f.fail {
		return nil, errors.New("rpc unavailable")
	}
	return f.holdings, nil
}

func (f *fakeLedger) CollectibleCount(ctx context.Context, addresses []string) (int64, error) {
	if f.fail {
		return 0, errors.New("rpc unavailable")
	}
	return f.collectibles, nil
}

func newTestCalculator(store *fakeActivityStore, sg *fakeSocialGraph, ledger *fakeLedger) *Calculator {
	l := zap.NewNop()
	cfg := &config.Config{}
	return NewCalculator(store, sg, ledger, l, cfg)
}

func Test_Calculate(t *testing.T) {
	fid := uint64(42)

	store := &fakeActivityStore{
		basePoints:  map[uint64]int64{fid: 1000},
		voteTargets: map[uint64]int{fid: 20},
		shareCounts: map[uint64]int{fid: 12},
	}
	sg := &fakeSocialGraph{
		profiles: map[uint64]*socialgraph.UserProfile{
			fid: {
				Fid:               fid,
				FollowerCount:     12_000,
				VerifiedAddresses: []string{"0x1111111111111111111111111111111111111111"},
				Score:             0.9,
				ProSubscriber:     true,
			},
		},
		engagements: map[uint64]*socialgraph.ChannelEngagement{
			fid: {Following: true, CastCount: 3},
		},
	}
	ledger := &fakeLedger{
		holdings:     big.NewInt(250_000_000),
		collectibles: 4,
	}

	calculator := newTestCalculator(store, sg, ledger)

	calc, err := calculator.Calculate(context.Background(), fid, nil)
	assert.Nil(t, err)

	assert.Equal(t, fid, calc.Fid)
	assert.Equal(t, int64(1000), calc.BasePoints)

	assert.Equal(t, 1.6, calc.Multipliers.Follower)
	assert.Equal(t, 1.4, calc.Multipliers.Channel)
	assert.Equal(t, 1.4, calc.Multipliers.Holdings)
	assert.Equal(t, 1.4, calc.Multipliers.Collectible)
	assert.Equal(t, 1.4, calc.Multipliers.VoteBreadth)
	assert.Equal(t, 1.4, calc.Multipliers.Share)
	assert.Equal(t, 1.6, calc.Multipliers.Reputation)
	assert.Equal(t, 1.5, calc.Multipliers.Subscription)

	expectedTotal := calc.Multipliers.Product()
	assert.Equal(t, expectedTotal, calc.TotalMultiplier)
	assert.Equal(t, int64(math.Round(1000*expectedTotal)), calc.FinalScore)

	assert.Equal(t, len(AllTiers), len(calc.Challenges))
	for i, table := range AllTiers {
		assert.Equal(t, table.Name, calc.Challenges[i].Name)
		assert.False(t, calc.Challenges[i].Degraded)
	}
}

func Test_CalculateDegradesUnavailableSignals(t *testing.T) {
	fid := uint64(7)

	store := &fakeActivityStore{
		basePoints: map[uint64]int64{fid: 1000},
	}
	sg := &fakeSocialGraph{fail: true}
	ledger := &fakeLedger{fail: true}

	calculator := newTestCalculator(store, sg, ledger)

	basePoints := int64(1000)
	input := &CalculationInput{
		BasePoints: &basePoints,
		VoteAggregates: &activity.VoteAggregates{
			DistinctBrands: 20,
			ShareCount:     12,
		},
	}

	calc, err := calculator.Calculate(context.Background(), fid, input)
	assert.Nil(t, err)

	// Every profile- and chain-backed dimension falls to neutral.
	assert.Equal(t, NeutralMultiplier, calc.Multipliers.Follower)
	assert.Equal(t, NeutralMultiplier, calc.Multipliers.Channel)
	assert.Equal(t, NeutralMultiplier, calc.Multipliers.Holdings)
	assert.Equal(t, NeutralMultiplier, calc.Multipliers.Collectible)
	assert.Equal(t, NeutralMultiplier, calc.Multipliers.Reputation)
	assert.Equal(t, NeutralMultiplier, calc.Multipliers.Subscription)

	// The prefetched vote aggregates still score.
	assert.Equal(t, 1.4, calc.Multipliers.VoteBreadth)
	assert.Equal(t, 1.4, calc.Multipliers.Share)

	assert.InDelta(t, 1.96, calc.TotalMultiplier, 0.0001)
	assert.Equal(t, int64(1960), calc.FinalScore)

	degradedByName := make(map[string]bool)
	for _, challenge := range calc.Challenges {
		degradedByName[challenge.Name] = challenge.Degraded
	}
	assert.True(t, degradedByName[FollowerTiers.Name])
	assert.True(t, degradedByName[ChannelTiers.Name])
	assert.True(t, degradedByName[HoldingsTiers.Name])
	assert.True(t, degradedByName[CollectibleTiers.Name])
	assert.True(t, degradedByName[ReputationTiers.Name])
	assert.True(t, degradedByName[SubscriptionTiers.Name])
	assert.False(t, degradedByName[VoteBreadthTiers.Name])
	assert.False(t, degradedByName[ShareTiers.Name])
}

func Test_CalculateFailsWhenBasePointsUnavailable(t *testing.T) {
	store := &fakeActivityStore{failReads: true}
	calculator := newTestCalculator(store, &fakeSocialGraph{fail: true}, &fakeLedger{fail: true})

	_, err := calculator.Calculate(context.Background(), 1, nil)
	assert.NotNil(t, err)
}

func Test_CalculateZeroBasePoints(t *testing.T) {
	fid := uint64(9)
	store := &fakeActivityStore{
		basePoints: map[uint64]int64{},
	}
	sg := &fakeSocialGraph{
		profiles: map[uint64]*socialgraph.UserProfile{
			fid: {Fid: fid, FollowerCount: 200, Score: 0.99, ProSubscriber: true},
		},
		engagements: map[uint64]*socialgraph.ChannelEngagement{},
	}
	calculator := newTestCalculator(store, sg, &fakeLedger{holdings: big.NewInt(0)})

	calc, err := calculator.Calculate(context.Background(), fid, nil)
	assert.Nil(t, err)

	// Multipliers never manufacture points out of nothing.
	assert.Equal(t, int64(0), calc.FinalScore)
	assert.Greater(t, calc.TotalMultiplier, 1.0)
}
