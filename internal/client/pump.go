package client

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

// readPump 从服务器读取消息
func (c *Client) readPump(conn *websocket.Conn, done chan struct{}) {
	defer c.handleReadExit(conn, done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				if c.OnError != nil {
					c.OnError(err)
				}
			}
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			logger.L().Debug("消息解析错误", zap.Error(err))
			continue
		}

		c.processMessage(msg)
	}
}

// handleReadExit 连接断开：用户主动关闭直接退出，已入座则尝试重连
func (c *Client) handleReadExit(conn *websocket.Conn, done chan struct{}) {
	if r := recover(); r != nil {
		logger.LogPanic(r)
	}

	c.mu.Lock()
	if c.shutdown || c.closed || c.done != done {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(done)
	_ = conn.Close()
	seated := c.lastJoin != nil
	c.mu.Unlock()

	if seated {
		go c.tryReconnect()
		return
	}

	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
	c.stop()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) processMessage(msg *protocol.Message) {
	c.handleInternalMessage(msg)

	if c.OnMessage != nil {
		c.OnMessage(msg)
	}

	// 同时发送到 channel
	select {
	case c.receive <- msg:
	default:
		logger.L().Warn("⚠️ 接收缓冲区已满，丢弃消息", zap.String("type", string(msg.Type)))
	}
}

// handleInternalMessage 处理客户端自身关心的消息
func (c *Client) handleInternalMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgPong:
		if payload, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			c.latency.Store(time.Now().UnixMilli() - payload.ClientTimestamp)
		}
	case protocol.MsgJoinError:
		// 入座失败，断线后无需重新入座
		c.setLastJoin(nil)
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump(conn *websocket.Conn, send chan []byte, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
