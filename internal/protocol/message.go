package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgJoinGame MessageType = "joinGame" // 加入/创建/重连房间

	// 对局操作
	MsgMakeMove         MessageType = "makeMove"         // 走子
	MsgInitialBoardSync MessageType = "initialBoardSync" // 上报初始棋盘
	MsgManualEndGame    MessageType = "manualEndGame"    // 认输
	MsgGameLost         MessageType = "gameLost"         // 无子可走，判负
	MsgPlayAgain        MessageType = "playAgain"        // 再来一局

	// 排行榜
	MsgGetLeaderboard MessageType = "getLeaderboard" // 获取排行榜
	MsgGetPlayerStats MessageType = "getPlayerStats" // 按名字查询战绩
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgPong MessageType = "pong" // 心跳 pong

	// 单播
	MsgInitGame    MessageType = "initGame"    // 入座成功，携带房间状态
	MsgJoinError   MessageType = "joinError"   // 入座失败
	MsgLeaderboard MessageType = "leaderboard" // 排行榜结果
	MsgPlayerStats MessageType = "playerStats" // 玩家战绩

	// 房间广播
	MsgStartGame     MessageType = "startGame"     // 双方到齐，开局
	MsgSyncMove      MessageType = "syncMove"      // 同步走子
	MsgSystemMessage MessageType = "systemMessage" // 系统提示
	MsgTimerTick     MessageType = "timerTick"     // 每秒计时
	MsgGameOver      MessageType = "gameOver"      // 对局结束
	MsgResetBoard    MessageType = "resetBoard"    // 重开棋盘

	// 大厅广播
	MsgLobbyUpdate MessageType = "lobbyUpdate" // 可加入房间列表

	// 错误
	MsgError MessageType = "error" // 错误消息
)
