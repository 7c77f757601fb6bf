package protocol

import "encoding/json"

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinGamePayload 加入房间请求，Color 即座位号（1=白，2=黑）
type JoinGamePayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Color      int    `json:"color"`
}

// MoveData 走子数据，合法性由客户端保证
type MoveData struct {
	R1       int `json:"r1"`
	C1       int `json:"c1"`
	R2       int `json:"r2"`
	C2       int `json:"c2"`
	NextTurn int `json:"nextTurn"`
}

// MakeMovePayload 走子请求
//
// MoveData 与 NewBoard 保留原始 JSON，服务端原样转发。
type MakeMovePayload struct {
	RoomID   string          `json:"roomId"`
	MoveData json.RawMessage `json:"moveData"`
	NewBoard json.RawMessage `json:"newBoard"`
}

// InitialBoardSyncPayload 初始棋盘同步
type InitialBoardSyncPayload struct {
	RoomID string          `json:"roomId"`
	Board  json.RawMessage `json:"board"`
}

// GetLeaderboardPayload 排行榜请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit"`
}

// GetPlayerStatsPayload 战绩查询
type GetPlayerStatsPayload struct {
	Name string `json:"name"`
}

// --- 服务端响应 Payloads ---

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// LastMove 最近一步的起止坐标
type LastMove struct {
	R1 int `json:"r1"`
	C1 int `json:"c1"`
	R2 int `json:"r2"`
	C2 int `json:"c2"`
}

// InitGamePayload 入座成功响应
type InitGamePayload struct {
	Status   string          `json:"status"`
	Color    int             `json:"color"`
	Board    json.RawMessage `json:"board,omitempty"`
	Turn     int             `json:"turn,omitempty"`
	LastMove *LastMove       `json:"lastMove,omitempty"`
}

// JoinErrorPayload 入座失败
type JoinErrorPayload struct {
	Message string `json:"message"`
}

// StartGamePayload 开局通知
type StartGamePayload struct {
	Turn int `json:"turn"`
}

// SyncMovePayload 走子广播
type SyncMovePayload struct {
	MoveData json.RawMessage `json:"moveData"`
	NextTurn int             `json:"nextTurn"`
	NewBoard json.RawMessage `json:"newBoard"`
	LastMove *LastMove       `json:"lastMove"`
}

// SystemMessagePayload 系统提示
type SystemMessagePayload struct {
	Text string `json:"text"`
}

// TimerTickPayload 计时广播
type TimerTickPayload struct {
	TurnTimeLeft       int `json:"turnTimeLeft"`
	DisconnectTimeLeft int `json:"disconnectTimeLeft"`
}

// Score 比分
type Score struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// GameOverPayload 对局结束
type GameOverPayload struct {
	Winner           int    `json:"winner"`
	Reason           string `json:"reason"`
	Score            Score  `json:"score"`
	TotalGamesPlayed int    `json:"totalGamesPlayed"`
}

// ResetBoardPayload 重开棋盘（无字段）
type ResetBoardPayload struct{}

// LobbyRoom 大厅中可加入的房间
type LobbyRoom struct {
	ID        string `json:"id"`
	HostName  string `json:"hostName"`
	HostColor string `json:"hostColor"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerName string `json:"playerName"`
	Wins       int    `json:"wins"`
}

// LeaderboardPayload 排行榜结果
type LeaderboardPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// PlayerStatsPayload 玩家战绩，没有记录时 Found 为 false
type PlayerStatsPayload struct {
	PlayerName   string `json:"playerName"`
	Found        bool   `json:"found"`
	TotalGames   int    `json:"totalGames"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	LastPlayedAt int64  `json:"lastPlayedAt"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
