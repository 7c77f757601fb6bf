package client

import (
	"encoding/json"
	"time"

	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

// JoinGame 创建、加入或重连房间，成功发送后记录用于断线重连
func (c *Client) JoinGame(roomID, playerName string, color int) error {
	payload := protocol.JoinGamePayload{
		RoomID:     roomID,
		PlayerName: playerName,
		Color:      color,
	}
	if err := c.SendMessage(codec.MustNewMessage(protocol.MsgJoinGame, payload)); err != nil {
		return err
	}
	c.setLastJoin(&payload)
	return nil
}

// MakeMove 走子，棋盘由客户端计算后整体上报
func (c *Client) MakeMove(roomID string, move protocol.MoveData, newBoard json.RawMessage) error {
	moveData, err := json.Marshal(move)
	if err != nil {
		return err
	}
	return c.SendMessage(codec.MustNewMessage(protocol.MsgMakeMove, protocol.MakeMovePayload{
		RoomID:   roomID,
		MoveData: moveData,
		NewBoard: newBoard,
	}))
}

// SyncBoard 上报初始棋盘
func (c *Client) SyncBoard(roomID string, board json.RawMessage) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgInitialBoardSync, protocol.InitialBoardSyncPayload{
		RoomID: roomID,
		Board:  board,
	}))
}

// Surrender 认输
func (c *Client) Surrender() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgManualEndGame, nil))
}

// DeclareNoMoves 无子可走，判负
func (c *Client) DeclareNoMoves() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGameLost, nil))
}

// PlayAgain 再来一局
func (c *Client) PlayAgain() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPlayAgain, nil))
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Limit: limit,
	}))
}

// GetPlayerStats 按名字查询战绩
func (c *Client) GetPlayerStats(name string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetPlayerStats, protocol.GetPlayerStatsPayload{
		Name: name,
	}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
