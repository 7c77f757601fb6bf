package handler

import (
	"context"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/game/registry"
	"github.com/palemoky/checkers-duel/internal/game/room"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
	"github.com/palemoky/checkers-duel/internal/server/storage"
	"github.com/palemoky/checkers-duel/internal/types"
)

// LeaderboardReader 排行榜与战绩查询
type LeaderboardReader interface {
	Top(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error)
	GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error)
}

// HandlerDeps 处理器依赖，Leaderboard 可为 nil
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
	Leaderboard LeaderboardReader
}

// Handler 消息处理器：把协议消息翻译成房间命令
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	registry    *registry.Registry
	leaderboard LeaderboardReader
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		registry:    deps.RoomManager.Registry(),
		leaderboard: deps.Leaderboard,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgJoinGame:  h.handleJoinGame,
		protocol.MsgPlayAgain: func(c types.ClientInterface, _ *protocol.Message) { h.handlePlayAgain(c) },

		// 对局操作
		protocol.MsgMakeMove:         h.handleMakeMove,
		protocol.MsgInitialBoardSync: h.handleInitialBoardSync,
		protocol.MsgManualEndGame:    func(c types.ClientInterface, _ *protocol.Message) { h.handleForfeit(c, room.ReasonSurrendered) },
		protocol.MsgGameLost:         func(c types.ClientInterface, _ *protocol.Message) { h.handleForfeit(c, room.ReasonNoMoves) },

		// 信息查询
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
		protocol.MsgGetPlayerStats: h.handleGetPlayerStats,
	}
}

// Handle 处理消息，单条消息的 panic 不影响连接
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("💥 处理消息时 panic",
				zap.String("type", string(msg.Type)),
				zap.String("client", client.GetID()),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	logger.L().Warn("⚠️ 未知消息类型",
		zap.String("type", string(msg.Type)),
		zap.String("client", client.GetID()),
		zap.Int("payload_bytes", len(msg.Payload)))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}
