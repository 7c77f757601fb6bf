//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/checkers-duel/internal/server/storage"
)

// MockSnapshotStore 房间快照存储 mock
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) SaveRoom(ctx context.Context, key string, data *storage.RoomData) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *MockSnapshotStore) DeleteRoom(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordResult(ctx context.Context, winner, loser string) error {
	args := m.Called(ctx, winner, loser)
	return args.Error(0)
}

func (m *MockLeaderboard) Top(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PlayerStats), args.Error(1)
}
