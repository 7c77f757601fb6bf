package handler

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
	"github.com/palemoky/checkers-duel/internal/types"
)

const leaderboardTimeout = 3 * time.Second

// handleGetLeaderboard 获取排行榜，未启用 Redis 时返回空榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	entries := make([]protocol.LeaderboardEntry, 0)
	if h.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), leaderboardTimeout)
		defer cancel()

		top, err := h.leaderboard.Top(ctx, payload.Limit)
		if err != nil {
			logger.L().Warn("⚠️ 获取排行榜失败", zap.Error(err))
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "Leaderboard is unavailable."))
			return
		}
		for _, e := range top {
			entries = append(entries, protocol.LeaderboardEntry{
				Rank:       e.Rank,
				PlayerName: e.PlayerName,
				Wins:       e.Wins,
			})
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboard, protocol.LeaderboardPayload{Entries: entries}))
}

// handleGetPlayerStats 按名字查询战绩，未启用 Redis 或没有记录时 Found=false
func (h *Handler) handleGetPlayerStats(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetPlayerStatsPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeInvalidRequest, "Player name is required."))
		return
	}

	result := protocol.PlayerStatsPayload{PlayerName: name}
	if h.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), leaderboardTimeout)
		defer cancel()

		stats, err := h.leaderboard.GetPlayerStats(ctx, name)
		if err != nil {
			logger.L().Warn("⚠️ 获取玩家战绩失败", zap.String("player", name), zap.Error(err))
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "Player stats are unavailable."))
			return
		}
		if stats != nil {
			result.Found = true
			result.TotalGames = stats.TotalGames
			result.Wins = stats.Wins
			result.Losses = stats.Losses
			result.LastPlayedAt = stats.LastPlayedAt
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPlayerStats, result))
}
