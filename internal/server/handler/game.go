package handler

import (
	"github.com/palemoky/checkers-duel/internal/game/room"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
	"github.com/palemoky/checkers-duel/internal/types"
)

// handleMakeMove 处理走子
func (h *Handler) handleMakeMove(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.MakeMovePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	move, err := codec.ParsePayload[protocol.MoveData](&protocol.Message{Payload: payload.MoveData})
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.ignoreQuietly(client, h.roomManager.Dispatch(room.MoveCommand{
		ConnID:   client.GetID(),
		RoomKey:  payload.RoomID,
		Move:     *move,
		RawMove:  payload.MoveData,
		NewBoard: payload.NewBoard,
	}))
}

// handleInitialBoardSync 缓存客户端上报的初始棋盘
func (h *Handler) handleInitialBoardSync(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.InitialBoardSyncPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.ignoreQuietly(client, h.roomManager.Dispatch(room.BoardSyncCommand{
		ConnID:  client.GetID(),
		RoomKey: payload.RoomID,
		Board:   payload.Board,
	}))
}

// handleForfeit 认输或无子可走：对手获胜，仅在对局进行中生效
func (h *Handler) handleForfeit(client types.ClientInterface, reason string) {
	binding, ok := h.registry.Lookup(client.GetID())
	if !ok {
		return
	}

	h.ignoreQuietly(client, h.roomManager.Dispatch(room.EndCommand{
		RoomKey:          binding.RoomKey,
		Winner:           room.Seat(binding.Seat).Opponent(),
		Reason:           reason,
		OnlyWhilePlaying: true,
	}))
}
