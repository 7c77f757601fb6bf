package server

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/game/room"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

const (
	statsInterval         = 30 * time.Second
	shutdownCheckInterval = time.Second

	maintenanceNotice = "Server is entering maintenance. Running games may finish; new rooms are closed."
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		counts := s.roomManager.StatusCounts()

		logger.L().Info("📊 [监控]",
			zap.Int("online", s.GetOnlineCount()),
			zap.Int("seated", s.registry.Len()),
			zap.Int("waiting", counts[room.StatusWaiting]),
			zap.Int("playing", counts[room.StatusPlaying]),
			zap.Int("ended", counts[room.StatusEnded]),
			zap.Int("goroutines", runtime.NumGoroutine()),
			zap.Int("active_conns", len(s.semaphore)),
			zap.Float64("mem_mb", float64(m.Alloc)/1024/1024))
	}
}

// EnterMaintenanceMode 进入维护模式：停止创建新房间
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToLobby(codec.NewErrorMessage(protocol.ErrCodeServerMaintenance))
	s.Broadcast(codec.MustNewMessage(protocol.MsgSystemMessage, protocol.SystemMessagePayload{Text: maintenanceNotice}))

	logger.L().Info("🔧 进入维护模式：停止新房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 等待进行中的对局结束后关闭服务器
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(shutdownCheckInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		activeGames := s.roomManager.GetActiveGamesCount()
		if activeGames == 0 {
			logger.L().Info("✅ 所有对局已结束")
			break
		}
		logger.L().Info("⏳ 等待对局结束", zap.Int("active", activeGames))
		<-ticker.C
	}

	if activeGames := s.roomManager.GetActiveGamesCount(); activeGames > 0 {
		logger.L().Warn("⚠️ 超时，仍有对局进行中，强制关闭", zap.Int("active", activeGames))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Shutdown(ctx)
}

// Shutdown 关闭服务器：停止计时循环、HTTP 服务、所有连接和 Redis
func (s *Server) Shutdown(ctx context.Context) {
	s.cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.L().Warn("HTTP 服务关闭失败", zap.Error(err))
	}

	// 关闭所有客户端连接
	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.RUnlock()

	// 先停计时循环，再丢弃房间并排空写队列
	s.background.Wait()
	s.roomManager.Teardown()

	if s.redis != nil {
		_ = s.redis.Close()
	}

	logger.L().Info("服务器已关闭")
}
