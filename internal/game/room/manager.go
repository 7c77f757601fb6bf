package room

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/game/registry"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
	"github.com/palemoky/checkers-duel/internal/server/storage"
	"github.com/palemoky/checkers-duel/internal/types"
)

const (
	defaultTurnTimeout       = 120 * time.Second
	defaultDisconnectTimeout = 180 * time.Second

	// 异步写 Redis 的超时
	persistTimeout = 2 * time.Second
)

// SnapshotStore 房间快照镜像
type SnapshotStore interface {
	SaveRoom(ctx context.Context, key string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, key string) error
}

// ResultRecorder 对局结果记录（排行榜）
type ResultRecorder interface {
	RecordResult(ctx context.Context, winner, loser string) error
}

// RoomManagerDeps 房间管理器依赖，Store 与 Results 可为 nil
type RoomManagerDeps struct {
	Lobby             types.LobbyBroadcaster
	Registry          *registry.Registry
	Store             SnapshotStore
	Results           ResultRecorder
	TurnTimeout       time.Duration
	DisconnectTimeout time.Duration
}

// RoomManager 房间管理器（进程级房间表）
type RoomManager struct {
	lobby             types.LobbyBroadcaster
	registry          *registry.Registry
	store             SnapshotStore
	results           ResultRecorder
	turnTimeout       int // 秒
	disconnectTimeout int // 秒

	rooms  map[string]*Room
	mu     sync.RWMutex
	writes *writeQueue // Store 与 Results 都为 nil 时为 nil
}

// NewRoomManager 创建房间管理器
func NewRoomManager(deps RoomManagerDeps) *RoomManager {
	if deps.TurnTimeout <= 0 {
		deps.TurnTimeout = defaultTurnTimeout
	}
	if deps.DisconnectTimeout <= 0 {
		deps.DisconnectTimeout = defaultDisconnectTimeout
	}
	if deps.Registry == nil {
		deps.Registry = registry.New()
	}

	rm := &RoomManager{
		lobby:             deps.Lobby,
		registry:          deps.Registry,
		store:             deps.Store,
		results:           deps.Results,
		turnTimeout:       max(1, int(deps.TurnTimeout/time.Second)),
		disconnectTimeout: max(1, int(deps.DisconnectTimeout/time.Second)),
		rooms:             make(map[string]*Room),
	}
	if rm.store != nil || rm.results != nil {
		rm.writes = newWriteQueue()
	}
	return rm
}

// Registry 返回连接注册表
func (rm *RoomManager) Registry() *registry.Registry {
	return rm.registry
}

// lockRoom 取出并锁住房间，已移除的房间视为不存在
func (rm *RoomManager) lockRoom(key string) *Room {
	rm.mu.RLock()
	room, ok := rm.rooms[key]
	rm.mu.RUnlock()
	if !ok {
		return nil
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil
	}
	return room
}

// removeLocked 移除房间，调用方需持有 rm.mu 写锁和 room.mu
func (rm *RoomManager) removeLocked(room *Room) {
	room.closed = true
	delete(rm.rooms, room.Key)
	rm.deleteSnapshot(room.Key)
	logger.L().Info("🏠 房间已解散", zap.String("room", room.Key), zap.Stringer("status", room.Status))
}

// RoomView 房间只读视图
type RoomView struct {
	Key              string
	Status           RoomStatus
	Turn             Seat
	Score            Score
	TotalGamesPlayed int
	Timers           Timers
	Players          [2]*PlayerView
	HasBoard         bool
	LastMove         *protocol.LastMove
}

// PlayerView 玩家只读视图
type PlayerView struct {
	Name         string
	Connected    bool
	ConnectionID string
}

// GetRoom 获取房间快照
func (rm *RoomManager) GetRoom(key string) (RoomView, bool) {
	room := rm.lockRoom(key)
	if room == nil {
		return RoomView{}, false
	}
	defer room.mu.Unlock()
	return room.view(), true
}

func (r *Room) view() RoomView {
	v := RoomView{
		Key:              r.Key,
		Status:           r.Status,
		Turn:             r.Turn,
		Score:            r.Score,
		TotalGamesPlayed: r.TotalGamesPlayed,
		Timers:           r.Timers,
		HasBoard:         len(r.Board) > 0,
	}
	if r.LastMove != nil {
		lm := *r.LastMove
		v.LastMove = &lm
	}
	for i, p := range r.Players {
		if p != nil {
			v.Players[i] = &PlayerView{Name: p.Name, Connected: p.Connected, ConnectionID: p.ConnectionID}
		}
	}
	return v
}

// RoomList 可加入的房间列表（等待中），按房间号排序
func (rm *RoomManager) RoomList() []protocol.LobbyRoom {
	rm.mu.RLock()
	snapshot := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		snapshot = append(snapshot, room)
	}
	rm.mu.RUnlock()

	rooms := make([]protocol.LobbyRoom, 0)
	for _, room := range snapshot {
		room.mu.Lock()
		if !room.closed && room.Status == StatusWaiting {
			if seat, host := room.Host(); host != nil {
				rooms = append(rooms, protocol.LobbyRoom{
					ID:        room.Key,
					HostName:  host.Name,
					HostColor: seat.ColorName(),
				})
			}
		}
		room.mu.Unlock()
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// LobbyMessage 构造大厅推送消息
func (rm *RoomManager) LobbyMessage() *protocol.Message {
	return codec.MustNewMessage(protocol.MsgLobbyUpdate, rm.RoomList())
}

// publishLobby 推送大厅列表，调用方不得持有任何房间锁
func (rm *RoomManager) publishLobby() {
	if rm.lobby == nil {
		return
	}
	rm.lobby.BroadcastToLobby(rm.LobbyMessage())
}

// StatusCounts 各状态房间数量
func (rm *RoomManager) StatusCounts() map[RoomStatus]int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	counts := make(map[RoomStatus]int, 3)
	for _, room := range rm.rooms {
		room.mu.Lock()
		counts[room.Status]++
		room.mu.Unlock()
	}
	return counts
}

// GetActiveGamesCount 获取进行中的对局数量
func (rm *RoomManager) GetActiveGamesCount() int {
	return rm.StatusCounts()[StatusPlaying]
}

// Count 房间总数
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// Teardown 丢弃所有房间，关闭写队列并等待排空。
// 调用前应先停止计时循环；之后的入队会被忽略。
func (rm *RoomManager) Teardown() {
	rm.mu.Lock()
	for key, room := range rm.rooms {
		room.mu.Lock()
		room.closed = true
		room.mu.Unlock()
		delete(rm.rooms, key)
		rm.registry.ForgetRoom(key)
	}
	rm.mu.Unlock()

	if rm.writes != nil {
		rm.writes.close()
	}
	logger.L().Info("🧹 房间表已清空")
}

// --- 异步持久化 ---

// persistLocked 在房间锁内拷贝快照并入队
func (rm *RoomManager) persistLocked(room *Room) {
	if rm.store == nil {
		return
	}
	data := room.ToRoomData()
	rm.async(func(ctx context.Context) {
		if err := rm.store.SaveRoom(ctx, data.Key, data); err != nil {
			logger.L().Warn("⚠️ 保存房间快照失败", zap.String("room", data.Key), zap.Error(err))
		}
	})
}

func (rm *RoomManager) deleteSnapshot(key string) {
	if rm.store == nil {
		return
	}
	rm.async(func(ctx context.Context) {
		if err := rm.store.DeleteRoom(ctx, key); err != nil {
			logger.L().Warn("⚠️ 删除房间快照失败", zap.String("room", key), zap.Error(err))
		}
	})
}

func (rm *RoomManager) recordResult(winner, loser string) {
	if rm.results == nil || winner == "" {
		return
	}
	rm.async(func(ctx context.Context) {
		if err := rm.results.RecordResult(ctx, winner, loser); err != nil {
			logger.L().Warn("⚠️ 记录对局结果失败", zap.String("winner", winner), zap.Error(err))
		}
	})
}

func (rm *RoomManager) async(fn func(ctx context.Context)) {
	if rm.writes != nil {
		rm.writes.enqueue(fn)
	}
}

// WaitPending 等待已入队的写入完成
func (rm *RoomManager) WaitPending() {
	if rm.writes != nil {
		rm.writes.flush()
	}
}
