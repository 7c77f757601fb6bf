package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

// RunTimerLoop 全局计时循环，ctx 取消后退出
func (rm *RoomManager) RunTimerLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.L().Info("⏱️ 计时循环已启动", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.L().Info("⏱️ 计时循环已停止")
			return
		case <-ticker.C:
			rm.Tick()
		}
	}
}

// Tick 推进一秒：每个进行中的房间单独加锁处理
func (rm *RoomManager) Tick() {
	rm.mu.RLock()
	snapshot := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		snapshot = append(snapshot, room)
	}
	rm.mu.RUnlock()

	var collect []*Room
	for _, room := range snapshot {
		if rm.tickRoom(room) {
			collect = append(collect, room)
		}
	}

	removed := false
	for _, room := range collect {
		if rm.collect(room) {
			removed = true
		}
	}
	if removed {
		rm.publishLobby()
	}
}

// tickRoom 返回房间是否因双方都已离开需要回收
func (rm *RoomManager) tickRoom(room *Room) bool {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return false
	}

	switch room.ActiveTimer() {
	case TimerNone:
		return false
	case TimerDisconnect:
		room.Timers.DisconnectTimeLeft--
		if room.Timers.DisconnectTimeLeft <= 0 {
			// 双方都掉线时白方获胜
			winner := SeatWhite
			if !room.connected(SeatWhite) && room.connected(SeatBlack) {
				winner = SeatBlack
			}
			rm.finishLocked(room, winner, ReasonAbandoned)
		}
	case TimerTurn:
		room.Timers.TurnTimeLeft--
		if room.Timers.TurnTimeLeft <= 0 {
			rm.finishLocked(room, room.Turn.Opponent(), ReasonTimeOut)
		}
	}

	room.broadcast(codec.MustNewMessage(protocol.MsgTimerTick, protocol.TimerTickPayload{
		TurnTimeLeft:       max(0, room.Timers.TurnTimeLeft),
		DisconnectTimeLeft: max(0, room.Timers.DisconnectTimeLeft),
	}))

	return room.Status == StatusEnded && room.bothDisconnected()
}

// collect 回收已结束且无人在线的房间，返回是否真的移除
func (rm *RoomManager) collect(room *Room) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || room.Status != StatusEnded || !room.bothDisconnected() {
		return false
	}
	rm.removeLocked(room)
	rm.registry.ForgetRoom(room.Key)
	return true
}
