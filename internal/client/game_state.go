package client

import (
	"encoding/json"
	"fmt"

	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

// 保留的系统提示条数
const maxNotices = 5

// GameState 客户端视角的房间与大厅状态
type GameState struct {
	// 入座信息
	RoomID     string
	PlayerName string
	Color      int

	// 对局进度
	Status   string
	Turn     int
	Board    json.RawMessage
	LastMove *protocol.LastMove

	// 计时
	TurnTimeLeft       int
	DisconnectTimeLeft int

	// 结果
	Winner           int
	Reason           string
	Score            protocol.Score
	TotalGamesPlayed int

	// 大厅与排行榜
	Lobby       []protocol.LobbyRoom
	Leaderboard []protocol.LeaderboardEntry
	Stats       *protocol.PlayerStatsPayload

	Notices   []string
	LastError string
}

// NewGameState creates a new game state
func NewGameState() *GameState {
	return &GameState{}
}

// Seated 是否已入座
func (gs *GameState) Seated() bool {
	return gs.Color != 0 && gs.Status != ""
}

// MyTurn 是否轮到自己
func (gs *GameState) MyTurn() bool {
	return gs.Status == "playing" && gs.Turn == gs.Color
}

// SetSeat 记录本地发起的入座请求
func (gs *GameState) SetSeat(roomID, playerName string) {
	gs.RoomID = roomID
	gs.PlayerName = playerName
}

// Apply 按服务端消息更新状态
func (gs *GameState) Apply(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.MsgInitGame:
		p, err := codec.ParsePayload[protocol.InitGamePayload](msg)
		if err != nil {
			return err
		}
		gs.Status = p.Status
		gs.Color = p.Color
		gs.Board = p.Board
		gs.Turn = p.Turn
		gs.LastMove = p.LastMove
		gs.Winner = 0
		gs.Reason = ""
		gs.LastError = ""

	case protocol.MsgJoinError:
		p, err := codec.ParsePayload[protocol.JoinErrorPayload](msg)
		if err != nil {
			return err
		}
		gs.RoomID = ""
		gs.LastError = p.Message

	case protocol.MsgStartGame:
		p, err := codec.ParsePayload[protocol.StartGamePayload](msg)
		if err != nil {
			return err
		}
		gs.Status = "playing"
		gs.Turn = p.Turn

	case protocol.MsgSyncMove:
		p, err := codec.ParsePayload[protocol.SyncMovePayload](msg)
		if err != nil {
			return err
		}
		gs.Turn = p.NextTurn
		gs.Board = p.NewBoard
		gs.LastMove = p.LastMove

	case protocol.MsgTimerTick:
		p, err := codec.ParsePayload[protocol.TimerTickPayload](msg)
		if err != nil {
			return err
		}
		gs.TurnTimeLeft = p.TurnTimeLeft
		gs.DisconnectTimeLeft = p.DisconnectTimeLeft

	case protocol.MsgSystemMessage:
		p, err := codec.ParsePayload[protocol.SystemMessagePayload](msg)
		if err != nil {
			return err
		}
		gs.addNotice(p.Text)

	case protocol.MsgGameOver:
		p, err := codec.ParsePayload[protocol.GameOverPayload](msg)
		if err != nil {
			return err
		}
		gs.Status = "ended"
		gs.Winner = p.Winner
		gs.Reason = p.Reason
		gs.Score = p.Score
		gs.TotalGamesPlayed = p.TotalGamesPlayed

	case protocol.MsgResetBoard:
		gs.Status = "playing"
		gs.Turn = 1
		gs.Board = nil
		gs.LastMove = nil
		gs.Winner = 0
		gs.Reason = ""

	case protocol.MsgLobbyUpdate:
		p, err := codec.ParsePayload[[]protocol.LobbyRoom](msg)
		if err != nil {
			return err
		}
		gs.Lobby = *p

	case protocol.MsgLeaderboard:
		p, err := codec.ParsePayload[protocol.LeaderboardPayload](msg)
		if err != nil {
			return err
		}
		gs.Leaderboard = p.Entries

	case protocol.MsgPlayerStats:
		p, err := codec.ParsePayload[protocol.PlayerStatsPayload](msg)
		if err != nil {
			return err
		}
		gs.Stats = p

	case protocol.MsgError:
		p, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return err
		}
		gs.LastError = fmt.Sprintf("[%d] %s", p.Code, p.Message)
	}
	return nil
}

func (gs *GameState) addNotice(text string) {
	gs.Notices = append(gs.Notices, text)
	if len(gs.Notices) > maxNotices {
		gs.Notices = gs.Notices[len(gs.Notices)-maxNotices:]
	}
}

// Leave 清空入座信息，回到大厅
func (gs *GameState) Leave() {
	lobby, board, stats := gs.Lobby, gs.Leaderboard, gs.Stats
	*gs = GameState{Lobby: lobby, Leaderboard: board, Stats: stats}
}

// ColorName 颜色名称
func ColorName(color int) string {
	switch color {
	case 1:
		return "White"
	case 2:
		return "Black"
	default:
		return "-"
	}
}
