package client

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	handshakeTimeout = 10 * time.Second
	bufferSize       = 256

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 首次重连间隔，之后指数退避
	defaultReconnectInterval = 2 * time.Second
	maxReconnectBackoff      = 30 * time.Second
)

var (
	ErrClosed         = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
	ErrReceiveTimeout = errors.New("receive timeout")
)

// Client WebSocket 客户端
type Client struct {
	ServerURL string

	// ReconnectInterval 首次重连等待时间
	ReconnectInterval time.Duration

	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{} // 当前连接的生命周期
	receive chan *protocol.Message
	stopped chan struct{} // 客户端彻底关闭

	// 回调
	OnMessage      func(*protocol.Message) // 消息回调
	OnError        func(error)             // 错误回调
	OnClose        func()                  // 关闭回调
	OnReconnecting func(attempt, maxTries int)
	OnReconnect    func() // 重连成功回调

	latency      atomic.Int64 // 网络延迟（毫秒）
	reconnecting atomic.Bool

	mu       sync.RWMutex
	closed   bool                      // 当前连接已断开
	shutdown bool                      // 不再重连
	lastJoin *protocol.JoinGamePayload // 断线重连时重新入座
	stopOnce sync.Once

	// rejoin 重连后重新入座，测试可替换
	rejoin func(join protocol.JoinGamePayload) error
}

// NewClient 创建客户端
func NewClient(serverURL string) *Client {
	return &Client{
		ServerURL:         serverURL,
		ReconnectInterval: defaultReconnectInterval,
		receive:           make(chan *protocol.Message, bufferSize),
		stopped:           make(chan struct{}),
		closed:            true,
	}
}

// Connect 连接服务器
func (c *Client) Connect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	c.attach(conn)
	return nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.Dial(c.ServerURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// attach 绑定新连接并启动读写协程，返回该连接的 done
func (c *Client) attach(conn *websocket.Conn) chan struct{} {
	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.send = make(chan []byte, bufferSize)
	c.done = make(chan struct{})
	send, done := c.send, c.done
	c.mu.Unlock()

	go c.readPump(conn, done)
	go c.writePump(conn, send, done)
	return done
}

// detach 停止 attach 启动的读写协程；连接已断开或已被替换时不做处理
func (c *Client) detach(done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.done != done {
		return
	}
	c.closed = true
	close(done)
	_ = c.conn.Close()
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Receive 接收消息 (阻塞)
func (c *Client) Receive() (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.stopped:
		return nil, ErrClosed
	}
}

// ReceiveWithTimeout 带超时接收消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-time.After(timeout):
		return nil, ErrReceiveTimeout
	case <-c.stopped:
		return nil, ErrClosed
	}
}

// Close 关闭连接，不再重连
func (c *Client) Close() {
	c.mu.Lock()
	c.shutdown = true
	if !c.closed {
		c.closed = true
		close(c.done)
		_ = c.conn.Close()
	}
	c.mu.Unlock()

	c.stop()
}

// stop 标记客户端彻底关闭
func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}

// GetLatency 获取当前延迟（毫秒）
func (c *Client) GetLatency() int64 {
	return c.latency.Load()
}

// LastJoin 最近一次入座请求
func (c *Client) LastJoin() (protocol.JoinGamePayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastJoin == nil {
		return protocol.JoinGamePayload{}, false
	}
	return *c.lastJoin, true
}

func (c *Client) setLastJoin(join *protocol.JoinGamePayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastJoin = join
}
