package client

import (
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
)

// StartHeartbeat 启动心跳检测，客户端关闭后退出
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() {
					_ = c.Ping()
				}
			case <-c.stopped:
				return
			}
		}
	}()
}

// tryReconnect 重新建立连接并以同名同色重新入座
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			c.reconnecting.Store(false)
		}
	}()

	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	defer c.reconnecting.Store(false)

	// 指数退避重连策略
	backoff := c.ReconnectInterval
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, maxReconnectAttempts)
		}

		time.Sleep(backoff)
		backoff = min(backoff*2, maxReconnectBackoff)

		if c.isShutdown() {
			return
		}

		conn, err := c.dial()
		if err != nil {
			logger.L().Debug("重连失败", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		done := c.attach(conn)

		join, ok := c.LastJoin()
		if ok {
			if err := c.rejoinSeat(join); err != nil {
				logger.L().Debug("重新入座失败", zap.Int("attempt", attempt), zap.Error(err))
				c.detach(done)
				continue
			}
			logger.L().Info("✅ 重连成功", zap.String("room", join.RoomID))
		} else {
			// 重连期间入座被拒，回到大厅
			logger.L().Info("✅ 重连成功，未入座")
		}

		if c.OnReconnect != nil {
			c.OnReconnect()
		}
		return
	}

	logger.L().Warn("❌ 重连失败，已达最大尝试次数")
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
	c.stop()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) rejoinSeat(join protocol.JoinGamePayload) error {
	if c.rejoin != nil {
		return c.rejoin(join)
	}
	return c.JoinGame(join.RoomID, join.PlayerName, join.Color)
}

func (c *Client) isShutdown() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.shutdown
}
