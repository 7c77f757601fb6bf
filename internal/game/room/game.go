package room

import (
	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/apperrors"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

// seatOf 校验连接坐在该房间，返回座位
func (rm *RoomManager) seatOf(room *Room, connID string) (Seat, error) {
	binding, ok := rm.registry.Lookup(connID)
	if !ok || binding.RoomKey != room.Key {
		return SeatNone, apperrors.ErrNotInRoom
	}
	seat := Seat(binding.Seat)
	if p := room.Player(seat); p == nil || p.ConnectionID != connID {
		return SeatNone, apperrors.ErrNotInRoom
	}
	return seat, nil
}

// ApplyMove 走子并广播，走法合法性由客户端保证
func (rm *RoomManager) ApplyMove(cmd MoveCommand) error {
	room := rm.lockRoom(cmd.RoomKey)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}
	defer room.mu.Unlock()

	seat, err := rm.seatOf(room, cmd.ConnID)
	if err != nil {
		return err
	}
	if room.Status != StatusPlaying {
		return apperrors.ErrGameNotPlaying
	}
	next := Seat(cmd.Move.NextTurn)
	if !next.Valid() {
		return apperrors.ErrInvalidMove
	}

	room.Turn = next
	room.Board = cmd.NewBoard
	room.LastMove = &protocol.LastMove{R1: cmd.Move.R1, C1: cmd.Move.C1, R2: cmd.Move.R2, C2: cmd.Move.C2}

	// 连跳时轮次不变，计时继续
	if next != seat {
		room.Timers.TurnTimeLeft = rm.turnTimeout
	}

	room.broadcast(codec.MustNewMessage(protocol.MsgSyncMove, protocol.SyncMovePayload{
		MoveData: cmd.RawMove,
		NextTurn: int(next),
		NewBoard: cmd.NewBoard,
		LastMove: room.LastMove,
	}))
	rm.persistLocked(room)
	return nil
}

// SyncBoard 缓存初始棋盘，不广播
func (rm *RoomManager) SyncBoard(cmd BoardSyncCommand) error {
	room := rm.lockRoom(cmd.RoomKey)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}
	defer room.mu.Unlock()

	if _, err := rm.seatOf(room, cmd.ConnID); err != nil {
		return err
	}

	room.Board = cmd.Board
	rm.persistLocked(room)
	return nil
}

// EndGame 结束对局并广播比分
func (rm *RoomManager) EndGame(cmd EndCommand) error {
	room := rm.lockRoom(cmd.RoomKey)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}
	defer room.mu.Unlock()

	if cmd.OnlyWhilePlaying && room.Status != StatusPlaying {
		return apperrors.ErrGameNotPlaying
	}
	// 结束对局必须有胜者，否则计局数却不计分
	if !cmd.Winner.Valid() {
		return apperrors.ErrNoWinner
	}

	rm.finishLocked(room, cmd.Winner, cmd.Reason)
	return nil
}

// finishLocked 结算一局，调用方持有房间锁
func (rm *RoomManager) finishLocked(room *Room, winner Seat, reason string) {
	room.Status = StatusEnded
	room.TotalGamesPlayed++

	switch winner {
	case SeatWhite:
		room.Score.White++
	case SeatBlack:
		room.Score.Black++
	}

	room.broadcast(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		Winner: int(winner),
		Reason: reason,
		Score: protocol.Score{
			White: room.Score.White,
			Black: room.Score.Black,
		},
		TotalGamesPlayed: room.TotalGamesPlayed,
	}))

	var winnerName, loserName string
	if p := room.Player(winner); p != nil {
		winnerName = p.Name
	}
	if p := room.Player(winner.Opponent()); p != nil {
		loserName = p.Name
	}
	rm.recordResult(winnerName, loserName)
	rm.persistLocked(room)

	logger.L().Info("🏁 对局结束",
		zap.String("room", room.Key),
		zap.String("winner", winner.ColorName()),
		zap.String("reason", reason),
		zap.Int("white", room.Score.White),
		zap.Int("black", room.Score.Black))
}

// PlayAgain 结束后重开一局
func (rm *RoomManager) PlayAgain(cmd PlayAgainCommand) error {
	room := rm.lockRoom(cmd.RoomKey)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}
	defer room.mu.Unlock()

	if room.Status != StatusEnded {
		return apperrors.ErrGameNotEnded
	}

	room.Status = StatusPlaying
	room.Turn = SeatWhite
	room.LastMove = nil
	room.resetTimers(rm.turnTimeout, rm.disconnectTimeout)

	room.broadcast(codec.MustNewMessage(protocol.MsgResetBoard, protocol.ResetBoardPayload{}))
	rm.persistLocked(room)

	logger.L().Info("🔄 再来一局", zap.String("room", room.Key), zap.Int("games", room.TotalGamesPlayed))
	return nil
}
