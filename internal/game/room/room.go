package room

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/types"
)

// Player 房间中的玩家，名字即重连凭证
type Player struct {
	Name         string
	Connected    bool
	ConnectionID string
	Client       types.ClientInterface
}

// Timers 秒级倒计时
type Timers struct {
	TurnTimeLeft       int
	DisconnectTimeLeft int
}

// Score 比分
type Score struct {
	White int
	Black int
}

// Room 对局房间
type Room struct {
	Key              string
	Status           RoomStatus
	Turn             Seat
	Board            json.RawMessage // 客户端给出的棋盘，服务端不解析
	LastMove         *protocol.LastMove
	Score            Score
	TotalGamesPlayed int
	Players          [2]*Player // 下标 0 为白方，1 为黑方
	Timers           Timers
	CreatedAt        time.Time

	closed bool // 已从管理器移除，持有旧指针的调用方不得再修改
	mu     sync.Mutex
}

// Player 返回座位上的玩家，空座位返回 nil
func (r *Room) Player(seat Seat) *Player {
	if !seat.Valid() {
		return nil
	}
	return r.Players[seat-1]
}

func (r *Room) setPlayer(seat Seat, p *Player) {
	r.Players[seat-1] = p
}

// Host 等待中的房主座位
func (r *Room) Host() (Seat, *Player) {
	for _, seat := range []Seat{SeatWhite, SeatBlack} {
		if p := r.Player(seat); p != nil {
			return seat, p
		}
	}
	return SeatNone, nil
}

// ActiveTimer 当前应走动的计时器
func (r *Room) ActiveTimer() ActiveTimer {
	if r.Status != StatusPlaying {
		return TimerNone
	}
	if !r.connected(SeatWhite) || !r.connected(SeatBlack) {
		return TimerDisconnect
	}
	return TimerTurn
}

func (r *Room) connected(seat Seat) bool {
	p := r.Player(seat)
	return p != nil && p.Connected
}

func (r *Room) bothDisconnected() bool {
	return !r.connected(SeatWhite) && !r.connected(SeatBlack)
}

// broadcast 发送给房间内所有在线玩家
func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.Players {
		if p != nil && p.Connected && p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

func (r *Room) resetTimers(turnTimeout, disconnectTimeout int) {
	r.Timers.TurnTimeLeft = turnTimeout
	r.Timers.DisconnectTimeLeft = disconnectTimeout
}
