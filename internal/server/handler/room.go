package handler

import (
	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/apperrors"
	"github.com/palemoky/checkers-duel/internal/game/room"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
	"github.com/palemoky/checkers-duel/internal/types"
)

// handleJoinGame 处理加入房间（创建、入座、重连）
func (h *Handler) handleJoinGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 维护模式下不再创建新房间，已有房间仍可入座和重连
	if h.server != nil && h.server.IsMaintenanceMode() {
		if _, exists := h.roomManager.GetRoom(payload.RoomID); !exists {
			client.SendMessage(codec.NewJoinError(apperrors.ErrMaintenance.Message))
			return
		}
	}

	err = h.roomManager.Dispatch(room.JoinCommand{
		Client:     client,
		RoomKey:    payload.RoomID,
		PlayerName: payload.PlayerName,
		Seat:       room.Seat(payload.Color),
	})
	if err == nil {
		return
	}

	if apperrors.IsValidation(err) {
		client.SendMessage(codec.NewJoinError(err.Error()))
		return
	}
	logger.L().Warn("⚠️ 加入房间失败", zap.String("client", client.GetID()), zap.Error(err))
}

// handlePlayAgain 处理再来一局
func (h *Handler) handlePlayAgain(client types.ClientInterface) {
	binding, ok := h.registry.Lookup(client.GetID())
	if !ok {
		return
	}
	h.ignoreQuietly(client, h.roomManager.Dispatch(room.PlayAgainCommand{RoomKey: binding.RoomKey}))
}

// ignoreQuietly 房间不存在、未入座、状态不符时静默忽略
func (h *Handler) ignoreQuietly(client types.ClientInterface, err error) {
	if err == nil {
		return
	}
	if _, ok := apperrors.As(err); ok {
		logger.L().Debug("忽略请求", zap.String("client", client.GetID()), zap.Error(err))
		return
	}
	logger.L().Warn("⚠️ 房间命令失败", zap.String("client", client.GetID()), zap.Error(err))
}
