package storage

import "time"

// AirdropScore is the per-participant scoring row. It is recomputed freely
// until a snapshot freezes the cohort; after that the snapshot's leaves, not
// this row, are the source of truth for claims.
type AirdropScore struct {
	Fid        uint64 `gorm:"column:fid;primaryKey;autoIncrement:false"`
	BasePoints int64  `gorm:"column:base_points;not null;default:0"`

	FollowerMultiplier     float64 `gorm:"column:follower_multiplier;not null;default:1"`
	ChannelMultiplier      float64 `gorm:"column:channel_multiplier;not null;default:1"`
	HoldingsMultiplier     float64 `gorm:"column:holdings_multiplier;not null;default:1"`
	CollectibleMultiplier  float64 `gorm:"column:collectible_multiplier;not null;default:1"`
	VoteBreadthMultiplier  float64 `gorm:"column:vote_breadth_multiplier;not null;default:1"`
	ShareMultiplier        float64 `gorm:"column:share_multiplier;not null;default:1"`
	ReputationMultiplier   float64 `gorm:"column:reputation_multiplier;not null;default:1"`
	SubscriptionMultiplier float64 `gorm:"column:subscription_multiplier;not null;default:1"`

	TotalMultiplier float64 `gorm:"column:total_multiplier;not null;default:1"`
	FinalScore      int64   `gorm:"column:final_score;not null;default:0"`

	TokenAllocation int64   `gorm:"column:token_allocation;not null;default:0"`
	Percentage      float64 `gorm:"column:percentage;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AirdropScore) TableName() string {
	return "airdrop_scores"
}

// AirdropSnapshot commits a scored cohort to a Merkle root. At most one row
// exists at any time; regenerating deletes the previous snapshot and its
// leaves in the same transaction.
type AirdropSnapshot struct {
	Id                uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	MerkleRoot        string    `gorm:"column:merkle_root;size:66"`
	TotalParticipants int       `gorm:"column:total_participants;not null;default:0"`
	TotalTokens       int64     `gorm:"column:total_tokens;not null;default:0"`
	IsFrozen          bool      `gorm:"column:is_frozen;not null;default:false"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AirdropSnapshot) TableName() string {
	return "airdrop_snapshots"
}

// AirdropLeaf is one participant's committed (fid, amount) pair.
// leaf_hash = keccak256(abi.encode(uint256 fid, uint256 base_amount)).
type AirdropLeaf struct {
	Id         uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	SnapshotId uint64  `gorm:"column:snapshot_id;not null;index:idx_airdrop_leaves_snapshot;uniqueIndex:idx_airdrop_leaves_snapshot_fid,priority:1"`
	Fid        uint64  `gorm:"column:fid;not null;uniqueIndex:idx_airdrop_leaves_snapshot_fid,priority:2"`
	BaseAmount int64   `gorm:"column:base_amount;not null;default:0"`
	LeafHash   string  `gorm:"column:leaf_hash;size:66;not null"`
	Rank       int     `gorm:"column:rank;not null;default:0"`
	Percentage float64 `gorm:"column:percentage;not null;default:0"`
	FinalScore int64   `gorm:"column:final_score;not null;default:0"`
}

func (AirdropLeaf) TableName() string {
	return "airdrop_leaves"
}
