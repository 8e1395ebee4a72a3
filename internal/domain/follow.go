package domain

import "time"

// FollowEdge directed follow relation (dl_follow table)
type FollowEdge struct {
	CreatedAt  time.Time `gorm:"column:fl_created_at" json:"created_at"`
	FollowerID string    `gorm:"column:fl_follower_id;index:idx_follow_pair,unique" json:"follower_id"`
	FolloweeID string    `gorm:"column:fl_followee_id;index:idx_follow_pair,unique" json:"followee_id"`
	ID         int       `gorm:"column:fl_id;primaryKey;autoIncrement" json:"id"`
}

func (FollowEdge) TableName() string {
	return "dl_follow"
}
