package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	leaderboardKey = "leaderboard:wins"
	playerStatsKey = "player:stats:"

	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// PlayerStats 玩家统计数据（按名字聚合）
type PlayerStats struct {
	PlayerName   string `json:"player_name" redis:"-"`
	TotalGames   int    `json:"total_games" redis:"total_games"`
	Wins         int    `json:"wins" redis:"wins"`
	Losses       int    `json:"losses" redis:"losses"`
	LastPlayedAt int64  `json:"last_played_at" redis:"last_played_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int
	PlayerName string
	Wins       int
}

// Leaderboard 排行榜管理器
type Leaderboard struct {
	redis *redis.Client
}

// NewLeaderboard 创建排行榜管理器
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client}
}

// RecordResult 记录一局结果
func (lb *Leaderboard) RecordResult(ctx context.Context, winner, loser string) error {
	now := time.Now().Unix()

	pipe := lb.redis.TxPipeline()
	if winner != "" {
		pipe.ZIncrBy(ctx, leaderboardKey, 1, winner)
		pipe.HIncrBy(ctx, playerStatsKey+winner, "wins", 1)
		pipe.HIncrBy(ctx, playerStatsKey+winner, "total_games", 1)
		pipe.HSet(ctx, playerStatsKey+winner, "last_played_at", now)
	}
	if loser != "" {
		// 输家也进入榜单，胜场为 0
		pipe.ZAddNX(ctx, leaderboardKey, redis.Z{Score: 0, Member: loser})
		pipe.HIncrBy(ctx, playerStatsKey+loser, "losses", 1)
		pipe.HIncrBy(ctx, playerStatsKey+loser, "total_games", 1)
		pipe.HSet(ctx, playerStatsKey+loser, "last_played_at", now)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Top 获取前 limit 名
func (lb *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	limit = min(limit, maxLeaderboardLimit)

	results, err := lb.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, z := range results {
		name, _ := z.Member.(string)
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: name,
			Wins:       int(z.Score),
		})
	}
	return entries, nil
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lb *Leaderboard) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	var stats PlayerStats
	res := lb.redis.HGetAll(ctx, playerStatsKey+name)
	if err := res.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(res.Val()) == 0 {
		return nil, nil
	}
	if err := res.Scan(&stats); err != nil {
		return nil, err
	}
	stats.PlayerName = name
	return &stats, nil
}
