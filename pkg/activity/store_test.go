package activity

import (
	"context"
	"testing"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/tests"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupActivityStore(t *testing.T) (*GormActivityStore, *gorm.DB) {
	db, err := tests.GetInMemorySqliteDatabaseConnection()
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&User{}, &Vote{}, &VoteShare{}); err != nil {
		t.Fatal(err)
	}
	return NewGormActivityStore(db, zap.NewNop()), db
}

func seedActivity(t *testing.T, db *gorm.DB) {
	users := []*User{
		{Fid: 1, Username: "alice", Points: 500},
		{Fid: 2, Username: "bob", Points: 900},
		{Fid: 3, Username: "carol", Points: 900},
		{Fid: 4, Username: "dave", Points: 100},
	}
	assert.Nil(t, db.Create(&users).Error)

	votes := []*Vote{
		{Fid: 1, BrandId: 10},
		{Fid: 1, BrandId: 10},
		{Fid: 1, BrandId: 20},
		{Fid: 2, BrandId: 10},
	}
	assert.Nil(t, db.Create(&votes).Error)

	shares := []*VoteShare{
		{Fid: 1, VoteId: 1},
		{Fid: 2, VoteId: 4},
		{Fid: 2, VoteId: 4},
		{Fid: 2, VoteId: 4},
	}
	assert.Nil(t, db.Create(&shares).Error)
}

func Test_GetBasePoints(t *testing.T) {
	store, db := setupActivityStore(t)
	seedActivity(t, db)
	ctx := context.Background()

	points, err := store.GetBasePoints(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, int64(500), points)

	t.Run("Should return zero for an unknown fid", func(t *testing.T) {
		points, err := store.GetBasePoints(ctx, 999)
		assert.Nil(t, err)
		assert.Equal(t, int64(0), points)
	})
}

func Test_GetDistinctVoteTargets(t *testing.T) {
	store, db := setupActivityStore(t)
	seedActivity(t, db)
	ctx := context.Background()

	// Fid 1 voted three times but only for two distinct brands.
	count, err := store.GetDistinctVoteTargets(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, 2, count)

	count, err = store.GetDistinctVoteTargets(ctx, 3)
	assert.Nil(t, err)
	assert.Equal(t, 0, count)
}

func Test_GetShareCount(t *testing.T) {
	store, db := setupActivityStore(t)
	seedActivity(t, db)
	ctx := context.Background()

	count, err := store.GetShareCount(ctx, 2)
	assert.Nil(t, err)
	assert.Equal(t, 3, count)
}

func Test_BulkVoteAggregates(t *testing.T) {
	store, db := setupActivityStore(t)
	seedActivity(t, db)
	ctx := context.Background()

	aggregates, err := store.BulkVoteAggregates(ctx, []uint64{1, 2, 3})
	assert.Nil(t, err)
	assert.Equal(t, 3, len(aggregates))

	assert.Equal(t, 2, aggregates[1].DistinctBrands)
	assert.Equal(t, 1, aggregates[1].ShareCount)
	assert.Equal(t, 1, aggregates[2].DistinctBrands)
	assert.Equal(t, 3, aggregates[2].ShareCount)

	// Fids with no activity are present with zero values.
	assert.Equal(t, 0, aggregates[3].DistinctBrands)
	assert.Equal(t, 0, aggregates[3].ShareCount)

	t.Run("Should handle an empty fid set", func(t *testing.T) {
		aggregates, err := store.BulkVoteAggregates(ctx, []uint64{})
		assert.Nil(t, err)
		assert.Equal(t, 0, len(aggregates))
	})
}

func Test_ListTopParticipants(t *testing.T) {
	store, db := setupActivityStore(t)
	seedActivity(t, db)
	ctx := context.Background()

	participants, err := store.ListTopParticipants(ctx, 3, nil)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(participants))

	// Points descending, fid breaks the 900 tie.
	assert.Equal(t, uint64(2), participants[0].Fid)
	assert.Equal(t, uint64(3), participants[1].Fid)
	assert.Equal(t, uint64(1), participants[2].Fid)
	assert.Equal(t, int64(900), participants[0].BasePoints)

	t.Run("Should skip excluded fids", func(t *testing.T) {
		participants, err := store.ListTopParticipants(ctx, 10, []uint64{2, 3})
		assert.Nil(t, err)
		assert.Equal(t, 2, len(participants))
		assert.Equal(t, uint64(1), participants[0].Fid)
		assert.Equal(t, uint64(4), participants[1].Fid)
	})
}
