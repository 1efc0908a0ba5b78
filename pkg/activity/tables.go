package activity

import "time"

// These tables are owned by the voting CRUD surface; the airdrop engine only
// reads aggregates from them.

type User struct {
	Fid       uint64    `gorm:"column:fid;primaryKey;autoIncrement:false"`
	Username  string    `gorm:"column:username;size:255"`
	Points    int64     `gorm:"column:points;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

type Vote struct {
	Id        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Fid       uint64    `gorm:"column:fid;not null;index"`
	BrandId   uint64    `gorm:"column:brand_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Vote) TableName() string {
	return "votes"
}

type VoteShare struct {
	Id        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Fid       uint64    `gorm:"column:fid;not null;index"`
	VoteId    uint64    `gorm:"column:vote_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (VoteShare) TableName() string {
	return "vote_shares"
}
