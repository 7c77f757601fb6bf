package room

import (
	"encoding/json"
	"fmt"

	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/types"
)

// Command 房间命令，每条命令在房间锁内原子执行
type Command interface {
	command()
}

// JoinCommand 加入、创建或重连
type JoinCommand struct {
	Client     types.ClientInterface
	RoomKey    string
	PlayerName string
	Seat       Seat
}

// MoveCommand 走子，RawMove 与 NewBoard 原样转发
type MoveCommand struct {
	ConnID   string
	RoomKey  string
	Move     protocol.MoveData
	RawMove  json.RawMessage
	NewBoard json.RawMessage
}

// BoardSyncCommand 缓存客户端上报的棋盘
type BoardSyncCommand struct {
	ConnID  string
	RoomKey string
	Board   json.RawMessage
}

// EndCommand 结束对局
//
// OnlyWhilePlaying 为 true 时仅在对局进行中生效（认输、无子可走）。
type EndCommand struct {
	RoomKey          string
	Winner           Seat
	Reason           string
	OnlyWhilePlaying bool
}

// PlayAgainCommand 结束后再来一局
type PlayAgainCommand struct {
	RoomKey string
}

// DisconnectCommand 连接断开
type DisconnectCommand struct {
	ConnID string
}

func (JoinCommand) command()       {}
func (MoveCommand) command()       {}
func (BoardSyncCommand) command()  {}
func (EndCommand) command()        {}
func (PlayAgainCommand) command()  {}
func (DisconnectCommand) command() {}

// Dispatch 执行房间命令
func (rm *RoomManager) Dispatch(cmd Command) error {
	switch c := cmd.(type) {
	case JoinCommand:
		return rm.Join(c)
	case MoveCommand:
		return rm.ApplyMove(c)
	case BoardSyncCommand:
		return rm.SyncBoard(c)
	case EndCommand:
		return rm.EndGame(c)
	case PlayAgainCommand:
		return rm.PlayAgain(c)
	case DisconnectCommand:
		rm.Disconnect(c)
		return nil
	default:
		return fmt.Errorf("unknown room command %T", cmd)
	}
}
