package scoring

import (
	"context"
	"testing"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/tests"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage"
	pgStorage "github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage/postgres"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupAggregator(t *testing.T) (*Aggregator, *pgStorage.PostgresAirdropStore) {
	db, err := tests.GetInMemorySqliteDatabaseConnection()
	if err != nil {
		t.Fatal(err)
	}
	store := pgStorage.NewPostgresAirdropStore(db, zap.NewNop())
	if err := store.AutoMigrate(); err != nil {
		t.Fatal(err)
	}
	return NewAggregator(store, zap.NewNop()), store
}

func Test_SaveCalculation(t *testing.T) {
	aggregator, store := setupAggregator(t)
	ctx := context.Background()

	calc := &AirdropCalculation{
		Fid:        42,
		BasePoints: 1000,
		Multipliers: Multipliers{
			Follower: 1.4, Channel: 1.2, Holdings: 1, Collectible: 1,
			VoteBreadth: 1.2, Share: 1, Reputation: 1.4, Subscription: 1,
		},
		TotalMultiplier: 2.82,
		FinalScore:      2822,
	}

	saved, err := aggregator.SaveCalculation(ctx, calc)
	assert.Nil(t, err)
	assert.Equal(t, int64(2822), saved.FinalScore)

	loaded, err := store.GetScore(ctx, 42)
	assert.Nil(t, err)
	assert.Equal(t, 1.4, loaded.FollowerMultiplier)
	assert.Equal(t, 1.2, loaded.ChannelMultiplier)
	assert.Equal(t, int64(2822), loaded.FinalScore)
}

func Test_SaveCalculationPreservesAllocations(t *testing.T) {
	aggregator, store := setupAggregator(t)
	ctx := context.Background()

	assert.Nil(t, store.SaveScore(ctx, &storage.AirdropScore{
		Fid:             42,
		BasePoints:      1000,
		FinalScore:      2000,
		TokenAllocation: 750,
		Percentage:      7.5,
	}))

	calc := &AirdropCalculation{
		Fid:             42,
		BasePoints:      1100,
		TotalMultiplier: 1.5,
		FinalScore:      1650,
	}

	_, err := aggregator.SaveCalculation(ctx, calc)
	assert.Nil(t, err)

	loaded, err := store.GetScore(ctx, 42)
	assert.Nil(t, err)
	// A recompute refreshes the score but never moves committed allocations.
	assert.Equal(t, int64(1650), loaded.FinalScore)
	assert.Equal(t, int64(750), loaded.TokenAllocation)
	assert.Equal(t, 7.5, loaded.Percentage)
}
