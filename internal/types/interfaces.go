package types

import (
	"github.com/palemoky/checkers-duel/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	BroadcastToLobby(msg *protocol.Message)
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	SendMessage(msg *protocol.Message)
	Close()
}

// LobbyBroadcaster 向未入座的连接推送消息
type LobbyBroadcaster interface {
	BroadcastToLobby(msg *protocol.Message)
}

// SeatLookup 查询连接是否已入座，大厅广播据此筛选
type SeatLookup interface {
	IsSeated(connID string) bool
}
