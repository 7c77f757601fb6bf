package room

import (
	"time"

	"github.com/palemoky/checkers-duel/internal/server/storage"
)

// ToRoomData 将 Room 转换为可序列化的 RoomData，调用方需持有房间锁
func (r *Room) ToRoomData() *storage.RoomData {
	data := &storage.RoomData{
		Key:                r.Key,
		Status:             r.Status.String(),
		Turn:               int(r.Turn),
		ScoreWhite:         r.Score.White,
		ScoreBlack:         r.Score.Black,
		TotalGamesPlayed:   r.TotalGamesPlayed,
		Players:            make([]storage.PlayerData, 0, 2),
		TurnTimeLeft:       r.Timers.TurnTimeLeft,
		DisconnectTimeLeft: r.Timers.DisconnectTimeLeft,
		UpdatedAt:          time.Now().Unix(),
	}

	if len(r.Board) > 0 {
		data.Board = append(data.Board, r.Board...)
	}
	if r.LastMove != nil {
		data.LastMove = &storage.MoveData{R1: r.LastMove.R1, C1: r.LastMove.C1, R2: r.LastMove.R2, C2: r.LastMove.C2}
	}

	for _, seat := range []Seat{SeatWhite, SeatBlack} {
		if p := r.Player(seat); p != nil {
			data.Players = append(data.Players, storage.PlayerData{
				Seat:      int(seat),
				Name:      p.Name,
				Connected: p.Connected,
			})
		}
	}

	return data
}
