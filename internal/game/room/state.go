package room

// RoomStatus 房间状态
type RoomStatus int

const (
	StatusWaiting RoomStatus = iota
	StatusPlaying
	StatusEnded
)

func (s RoomStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Seat 座位号，同时也是棋子颜色
type Seat int

const (
	SeatNone  Seat = 0
	SeatWhite Seat = 1
	SeatBlack Seat = 2
)

// Valid 是否为合法座位
func (s Seat) Valid() bool {
	return s == SeatWhite || s == SeatBlack
}

// Opponent 对手座位
func (s Seat) Opponent() Seat {
	switch s {
	case SeatWhite:
		return SeatBlack
	case SeatBlack:
		return SeatWhite
	default:
		return SeatNone
	}
}

// ColorName 大厅展示用的颜色名
func (s Seat) ColorName() string {
	switch s {
	case SeatWhite:
		return "White"
	case SeatBlack:
		return "Black"
	default:
		return ""
	}
}

// ActiveTimer 当前走动的计时器，同一时刻至多一个
type ActiveTimer int

const (
	TimerNone ActiveTimer = iota
	TimerTurn
	TimerDisconnect
)

func (t ActiveTimer) String() string {
	switch t {
	case TimerTurn:
		return "turn"
	case TimerDisconnect:
		return "disconnect"
	default:
		return "none"
	}
}

// 对局结束原因
const (
	ReasonAbandoned   = "Opponent Abandoned"
	ReasonTimeOut     = "Time Out"
	ReasonSurrendered = "Opponent Surrendered"
	ReasonNoMoves     = "No valid moves left"
)
