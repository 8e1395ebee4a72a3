package service

import (
	"context"
	"fmt"
	"time"

	"github.com/devlink/devlink-backend/internal/common"
	"github.com/devlink/devlink-backend/pkg/retry"
	"github.com/redis/go-redis/v9"
)

const (
	trendingKey = "trending:posts"
	trendingTTL = 48 * time.Hour
)

// TrendingItem one entry of the trending feed
type TrendingItem struct {
	PostID string  `json:"post_id"`
	Score  float64 `json:"score"`
}

// FeedService aggregates engagement signals into a trending ranking kept in
// a Redis sorted set. The read path is the only caller of the retry helper;
// everything else in the system fails fast.
type FeedService interface {
	RecordEngagement(ctx context.Context, postID string, weight float64) error
	Trending(ctx context.Context, limit int) ([]TrendingItem, error)
}

type feedService struct {
	redisClient *redis.Client
}

// NewFeedService creates a new FeedService
func NewFeedService(redisClient *redis.Client) FeedService {
	return &feedService{redisClient: redisClient}
}

// RecordEngagement bumps a post's trending score. Best effort; a lost
// increment only costs a little ranking accuracy.
func (s *feedService) RecordEngagement(ctx context.Context, postID string, weight float64) error {
	if s.redisClient == nil {
		return nil
	}
	if postID == "" || weight <= 0 {
		return common.ErrInvalidInput
	}
	pipe := s.redisClient.Pipeline()
	pipe.ZIncrBy(ctx, trendingKey, weight, postID)
	pipe.Expire(ctx, trendingKey, trendingTTL)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return nil
}

// Trending returns the highest-scored posts, retried on transient
// unavailability
func (s *feedService) Trending(ctx context.Context, limit int) ([]TrendingItem, error) {
	if s.redisClient == nil {
		return nil, common.ErrUnavailable
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var entries []redis.Z
	err := retry.Do(ctx, func() error {
		var zerr error
		entries, zerr = s.redisClient.ZRevRangeWithScores(ctx, trendingKey, 0, int64(limit-1)).Result()
		if zerr != nil {
			return fmt.Errorf("%w: %v", common.ErrUnavailable, zerr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]TrendingItem, 0, len(entries))
	for _, e := range entries {
		id, ok := e.Member.(string)
		if !ok {
			continue
		}
		items = append(items, TrendingItem{PostID: id, Score: e.Score})
	}
	return items, nil
}
