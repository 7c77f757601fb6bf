package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"

	// 默认房间快照过期时间
	defaultRoomExpiration = 2 * time.Hour
)

// RoomData 房间快照（仅用于 Redis 镜像，进程重启后不恢复）
type RoomData struct {
	Key                string          `json:"key"`
	Status             string          `json:"status"`
	Turn               int             `json:"turn"`
	Board              json.RawMessage `json:"board,omitempty"`
	LastMove           *MoveData       `json:"last_move,omitempty"`
	ScoreWhite         int             `json:"score_white"`
	ScoreBlack         int             `json:"score_black"`
	TotalGamesPlayed   int             `json:"total_games_played"`
	Players            []PlayerData    `json:"players"`
	TurnTimeLeft       int             `json:"turn_time_left"`
	DisconnectTimeLeft int             `json:"disconnect_time_left"`
	UpdatedAt          int64           `json:"updated_at"`
}

// MoveData 最近一步
type MoveData struct {
	R1 int `json:"r1"`
	C1 int `json:"c1"`
	R2 int `json:"r2"`
	C2 int `json:"c2"`
}

// PlayerData 玩家数据
type PlayerData struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client     *redis.Client
	expiration time.Duration
}

// NewRedisStore 创建 Redis 存储，expiration <= 0 时使用默认过期时间
func NewRedisStore(client *redis.Client, expiration time.Duration) *RedisStore {
	if expiration <= 0 {
		expiration = defaultRoomExpiration
	}
	return &RedisStore{client: client, expiration: expiration}
}

// --- 房间存储 ---

// SaveRoom 保存房间快照到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, key string, data *RoomData) error {
	if data == nil {
		return nil
	}

	encoded, err := EncodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+key, encoded, rs.expiration).Err()
}

// DeleteRoom 从 Redis 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, key string) error {
	return rs.client.Del(ctx, roomKeyPrefix+key).Err()
}

// PurgeRooms 删除所有房间快照，返回删除数量
func (rs *RedisStore) PurgeRooms(ctx context.Context) (int, error) {
	keys, err := rs.roomKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := rs.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// roomKeys 扫描所有房间快照的 Redis key
func (rs *RedisStore) roomKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
