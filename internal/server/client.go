package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/game/room"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小（棋盘快照随消息上传）
	maxMessageSize = 16 * 1024

	// 发送缓冲
	sendBufferSize = 256
)

// Client 代表一条 WebSocket 连接
type Client struct {
	ID string // 连接唯一 ID
	IP string // 客户端 IP 地址

	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.L().Debug("读取错误", zap.String("client", c.ID), zap.Error(err))
			}
			return
		}

		msg, decodeErr := codec.Decode(data)
		var msgType protocol.MessageType
		if decodeErr == nil {
			msgType = msg.Type
		}

		switch c.server.budget.Charge(c.ID, msgType) {
		case RateDisconnect:
			logger.L().Warn("🚫 客户端持续超额，断开连接", zap.String("client", c.ID), zap.String("ip", c.IP))
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			return
		case RateReject:
			logger.L().Warn("⚠️ 客户端消息过于频繁", zap.String("client", c.ID), zap.String("type", string(msgType)))
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			continue
		case RateNearLimit:
			logger.L().Debug("客户端接近消息额度", zap.String("client", c.ID))
		}

		if decodeErr != nil {
			logger.L().Debug("消息解析失败", zap.String("client", c.ID), zap.Error(decodeErr))
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleDisconnect 处理断开连接
func (c *Client) handleDisconnect() {
	// 先注销，避免大厅广播再写入这条连接
	c.server.unregisterClient(c)

	if err := c.server.roomManager.Dispatch(room.DisconnectCommand{ConnID: c.ID}); err != nil {
		logger.L().Warn("处理断线失败", zap.String("client", c.ID), zap.Error(err))
	}

	c.server.budget.Forget(c.ID)
	c.Close()
}

// SendMessage 发送消息，缓冲区满时断开慢连接
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		logger.L().Error("消息编码失败", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	select {
	case c.send <- data:
		c.mu.RUnlock()
	default:
		c.mu.RUnlock()
		logger.L().Warn("⚠️ 客户端发送缓冲区已满，断开连接", zap.String("client", c.ID))
		c.Close()
	}
}

// Close 关闭客户端
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetID 获取连接 ID
func (c *Client) GetID() string {
	return c.ID
}

// IsClosed 是否已关闭
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
