package room

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/apperrors"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

// Join 加入房间：新建、重连或入座对手位
//
// 校验失败返回 KindValidation 错误，调用方负责回复 joinError。
func (rm *RoomManager) Join(cmd JoinCommand) error {
	if strings.TrimSpace(cmd.RoomKey) == "" || strings.TrimSpace(cmd.PlayerName) == "" || !cmd.Seat.Valid() || cmd.Client == nil {
		return apperrors.ErrInvalidJoin
	}

	// 换房间前先按断线处理旧座位
	if binding, ok := rm.registry.Lookup(cmd.Client.GetID()); ok && binding.RoomKey != cmd.RoomKey {
		rm.Disconnect(DisconnectCommand{ConnID: cmd.Client.GetID()})
	}

	rm.mu.Lock()
	room, exists := rm.rooms[cmd.RoomKey]
	if !exists {
		room = rm.createLocked(cmd)
		rm.mu.Unlock()

		rm.publishLobby()
		return nil
	}

	room.mu.Lock()
	rm.mu.Unlock()

	publish, err := rm.joinLocked(room, cmd)
	room.mu.Unlock()
	if err != nil {
		return err
	}

	if publish {
		rm.publishLobby()
	}
	return nil
}

// createLocked 新建房间并让请求方坐下，调用方持有 rm.mu 写锁
func (rm *RoomManager) createLocked(cmd JoinCommand) *Room {
	room := &Room{
		Key:       cmd.RoomKey,
		Status:    StatusWaiting,
		Turn:      SeatWhite,
		CreatedAt: time.Now(),
	}
	room.resetTimers(rm.turnTimeout, rm.disconnectTimeout)
	room.setPlayer(cmd.Seat, rm.seatPlayer(cmd))
	rm.rooms[room.Key] = room

	room.mu.Lock()
	defer room.mu.Unlock()

	cmd.Client.SendMessage(codec.MustNewMessage(protocol.MsgInitGame, protocol.InitGamePayload{
		Status: StatusWaiting.String(),
		Color:  int(cmd.Seat),
	}))
	rm.persistLocked(room)

	logger.L().Info("🏠 房间已创建",
		zap.String("room", room.Key),
		zap.String("player", cmd.PlayerName),
		zap.String("color", cmd.Seat.ColorName()))
	return room
}

func (rm *RoomManager) seatPlayer(cmd JoinCommand) *Player {
	connID := cmd.Client.GetID()
	rm.registry.Bind(connID, cmd.RoomKey, int(cmd.Seat))
	return &Player{
		Name:         cmd.PlayerName,
		Connected:    true,
		ConnectionID: connID,
		Client:       cmd.Client,
	}
}

// joinLocked 处理已存在房间的入座，返回是否需要刷新大厅
func (rm *RoomManager) joinLocked(room *Room, cmd JoinCommand) (bool, error) {
	if existing := room.Player(cmd.Seat); existing != nil {
		if existing.Name != cmd.PlayerName {
			return false, apperrors.ErrSeatTaken
		}
		rm.reconnectLocked(room, existing, cmd)
		return false, nil
	}

	if room.Status != StatusWaiting {
		return false, apperrors.ErrRoomUnavailable
	}

	if opponent := room.Player(cmd.Seat.Opponent()); opponent != nil && opponent.Name == cmd.PlayerName {
		return false, apperrors.ErrNameCollision
	}

	room.setPlayer(cmd.Seat, rm.seatPlayer(cmd))
	room.Status = StatusPlaying
	room.Turn = SeatWhite
	room.resetTimers(rm.turnTimeout, rm.disconnectTimeout)

	cmd.Client.SendMessage(codec.MustNewMessage(protocol.MsgInitGame, protocol.InitGamePayload{
		Status:   StatusPlaying.String(),
		Color:    int(cmd.Seat),
		LastMove: room.LastMove,
	}))
	room.broadcast(codec.MustNewMessage(protocol.MsgStartGame, protocol.StartGamePayload{Turn: int(SeatWhite)}))
	rm.persistLocked(room)

	logger.L().Info("🎮 对局开始",
		zap.String("room", room.Key),
		zap.String("player", cmd.PlayerName),
		zap.String("color", cmd.Seat.ColorName()))
	return true, nil
}

// reconnectLocked 同名玩家重连，原连接即使仍在也会被替换
func (rm *RoomManager) reconnectLocked(room *Room, p *Player, cmd JoinCommand) {
	if p.ConnectionID != "" && p.ConnectionID != cmd.Client.GetID() {
		rm.registry.Forget(p.ConnectionID)
	}
	rm.registry.Bind(cmd.Client.GetID(), room.Key, int(cmd.Seat))

	p.Connected = true
	p.ConnectionID = cmd.Client.GetID()
	p.Client = cmd.Client
	room.Timers.DisconnectTimeLeft = rm.disconnectTimeout

	payload := protocol.InitGamePayload{
		Status:   room.Status.String(),
		Color:    int(cmd.Seat),
		Turn:     int(room.Turn),
		LastMove: room.LastMove,
	}
	if len(room.Board) > 0 {
		payload.Board = room.Board
	}
	cmd.Client.SendMessage(codec.MustNewMessage(protocol.MsgInitGame, payload))

	if room.Status == StatusPlaying {
		room.broadcast(codec.MustNewMessage(protocol.MsgSystemMessage, protocol.SystemMessagePayload{
			Text: fmt.Sprintf("%s reconnected.", p.Name),
		}))
	}
	rm.persistLocked(room)

	logger.L().Info("📶 玩家重连",
		zap.String("room", room.Key),
		zap.String("player", p.Name),
		zap.Stringer("status", room.Status))
}

// Disconnect 处理连接断开
//
// 座位已被新连接接管时（重连后旧连接才断开）忽略。
func (rm *RoomManager) Disconnect(cmd DisconnectCommand) {
	binding, ok := rm.registry.Lookup(cmd.ConnID)
	if !ok {
		return
	}

	rm.mu.Lock()
	room, exists := rm.rooms[binding.RoomKey]
	if !exists {
		rm.mu.Unlock()
		rm.registry.Forget(cmd.ConnID)
		return
	}

	room.mu.Lock()
	publish := rm.disconnectLocked(room, Seat(binding.Seat), cmd.ConnID)
	room.mu.Unlock()
	rm.mu.Unlock()

	rm.registry.Forget(cmd.ConnID)

	if publish {
		rm.publishLobby()
	}
}

// disconnectLocked 调用方持有 rm.mu 写锁和 room.mu，返回是否需要刷新大厅
func (rm *RoomManager) disconnectLocked(room *Room, seat Seat, connID string) bool {
	p := room.Player(seat)
	if p == nil || p.ConnectionID != connID {
		return false
	}

	p.Connected = false
	p.Client = nil

	logger.L().Info("📴 玩家掉线",
		zap.String("room", room.Key),
		zap.String("player", p.Name),
		zap.Stringer("status", room.Status))

	switch room.Status {
	case StatusWaiting:
		rm.removeLocked(room)
		return true
	case StatusPlaying:
		room.broadcast(codec.MustNewMessage(protocol.MsgSystemMessage, protocol.SystemMessagePayload{
			Text: disconnectNotice(rm.disconnectTimeout),
		}))
		rm.persistLocked(room)
	case StatusEnded:
		if room.bothDisconnected() {
			rm.removeLocked(room)
			return true
		}
		rm.persistLocked(room)
	}
	return false
}

// disconnectNotice 掉线提示，按整分钟展示等待时长
func disconnectNotice(seconds int) string {
	if seconds%60 == 0 {
		minutes := seconds / 60
		if minutes == 1 {
			return "Opponent disconnected. Waiting 1 minute..."
		}
		return fmt.Sprintf("Opponent disconnected. Waiting %d minutes...", minutes)
	}
	return fmt.Sprintf("Opponent disconnected. Waiting %d seconds...", seconds)
}
