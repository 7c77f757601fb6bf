package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/checkers-duel/internal/config"
	"github.com/palemoky/checkers-duel/internal/protocol"
)

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expectedIP string
	}{
		{
			name:       "direct connection",
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "garbage",
			expectedIP: "garbage",
		},
		{
			name:       "first forwarded hop wins",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2"},
			expectedIP: "203.0.113.1",
		},
		{
			name:       "forwarded beats real ip",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.3",
				"X-Real-IP":       "203.0.113.4",
			},
			expectedIP: "203.0.113.3",
		},
		{
			name:       "junk forwarded value falls through to real ip",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "unknown",
				"X-Real-IP":       "2001:db8::1",
			},
			expectedIP: "2001:db8::1",
		},
		{
			name:       "junk headers fall back to remote addr",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "<script>",
				"X-Real-IP":       "nope",
			},
			expectedIP: "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, _ := http.NewRequest(http.MethodGet, "/ws", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.expectedIP, GetClientIP(req))
		})
	}
}

// newTestBudget 返回预算和可手动推进的时钟
func newTestBudget(perSecond, boardCost, maxStrikes int) (*MessageBudget, func(time.Duration)) {
	b := NewMessageBudget(config.MessageLimitConfig{
		MaxPerSecond: perSecond,
		BoardCost:    boardCost,
		MaxStrikes:   maxStrikes,
	})
	now := time.Unix(1_700_000_000, 0)
	b.now = func() time.Time { return now }
	return b, func(d time.Duration) { now = now.Add(d) }
}

func TestMessageBudget_Cost(t *testing.T) {
	t.Parallel()

	b, _ := newTestBudget(10, 4, 5)
	assert.Equal(t, 0, b.Cost(protocol.MsgPing))
	assert.Equal(t, 4, b.Cost(protocol.MsgMakeMove))
	assert.Equal(t, 4, b.Cost(protocol.MsgInitialBoardSync))
	assert.Equal(t, 1, b.Cost(protocol.MsgJoinGame))
	assert.Equal(t, 1, b.Cost(protocol.MsgGetLeaderboard))
	assert.Equal(t, 1, b.Cost(""), "undecodable frames still cost")
}

func TestMessageBudget_PingIsFree(t *testing.T) {
	t.Parallel()

	b, _ := newTestBudget(1, 4, 0)
	for range 100 {
		assert.Equal(t, RateAllow, b.Charge("c1", protocol.MsgPing))
	}
	assert.Equal(t, 0, b.Strikes("c1"))
	assert.NotEqual(t, RateReject, b.Charge("c1", protocol.MsgPlayAgain))
}

func TestMessageBudget_BoardMessagesCostMore(t *testing.T) {
	t.Parallel()

	b, _ := newTestBudget(10, 4, 5)

	assert.Equal(t, RateAllow, b.Charge("c1", protocol.MsgInitialBoardSync))   // 4
	assert.Equal(t, RateNearLimit, b.Charge("c1", protocol.MsgMakeMove))       // 8
	assert.Equal(t, RateReject, b.Charge("c1", protocol.MsgMakeMove))          // 12 > 10
	assert.Equal(t, RateNearLimit, b.Charge("c1", protocol.MsgGetLeaderboard)) // 9
	assert.Equal(t, RateNearLimit, b.Charge("c1", protocol.MsgPlayAgain))      // 10
	assert.Equal(t, RateReject, b.Charge("c1", protocol.MsgPlayAgain))         // 11 > 10
	assert.Equal(t, 2, b.Strikes("c1"))
}

func TestMessageBudget_CleanWindowClearsStrikes(t *testing.T) {
	t.Parallel()

	b, advance := newTestBudget(2, 4, 5)

	b.Charge("c1", protocol.MsgJoinGame)
	b.Charge("c1", protocol.MsgJoinGame)
	assert.Equal(t, RateReject, b.Charge("c1", protocol.MsgJoinGame))
	assert.Equal(t, 1, b.Strikes("c1"))

	// 下一秒额度恢复，但上一窗口有拒绝，次数保留
	advance(time.Second)
	assert.Equal(t, RateAllow, b.Charge("c1", protocol.MsgJoinGame))
	assert.Equal(t, 1, b.Strikes("c1"))

	// 一整个窗口没有被拒绝
	advance(time.Second)
	assert.Equal(t, RateAllow, b.Charge("c1", protocol.MsgJoinGame))
	assert.Equal(t, 0, b.Strikes("c1"))
}

func TestMessageBudget_DisconnectAfterSustainedAbuse(t *testing.T) {
	t.Parallel()

	b, advance := newTestBudget(1, 4, 2)

	// 每秒都超额一次，跨窗口累计
	for i := range 2 {
		assert.NotEqual(t, RateReject, b.Charge("c1", protocol.MsgPlayAgain), "window %d", i)
		assert.Equal(t, RateReject, b.Charge("c1", protocol.MsgPlayAgain), "window %d", i)
		advance(time.Second)
	}

	b.Charge("c1", protocol.MsgPlayAgain)
	assert.Equal(t, RateDisconnect, b.Charge("c1", protocol.MsgPlayAgain))

	// 其他连接不受影响
	assert.NotEqual(t, RateReject, b.Charge("c2", protocol.MsgPlayAgain))
}

func TestMessageBudget_BoardMessageOverWholeBudget(t *testing.T) {
	t.Parallel()

	// 单条棋盘消息就超出额度
	b, _ := newTestBudget(3, 4, 5)
	assert.Equal(t, RateReject, b.Charge("c1", protocol.MsgMakeMove))
	assert.Equal(t, RateAllow, b.Charge("c1", protocol.MsgPlayAgain))
}

func TestMessageBudget_Forget(t *testing.T) {
	t.Parallel()

	b, _ := newTestBudget(1, 4, 5)
	b.Charge("c1", protocol.MsgPlayAgain)
	b.Charge("c1", protocol.MsgPlayAgain)
	assert.Equal(t, 1, b.Strikes("c1"))

	b.Forget("c1")
	assert.Equal(t, 0, b.Strikes("c1"))
	assert.NotEqual(t, RateReject, b.Charge("c1", protocol.MsgPlayAgain))
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"https://checkers.example.com/", "https://App.Example.com"})

	tests := []struct {
		name    string
		host    string
		origin  string
		allowed bool
	}{
		{"terminal client without origin", "game.local:3000", "", true},
		{"configured origin with trailing slash", "game.local:3000", "https://checkers.example.com", true},
		{"configured origin is case insensitive", "game.local:3000", "https://app.example.com", true},
		{"scheme must match", "game.local:3000", "http://checkers.example.com", false},
		{"page served by this server", "game.local:3000", "http://game.local:3000", true},
		{"same host name other port", "game.local:3000", "http://game.local:8080", false},
		{"unknown origin", "game.local:3000", "https://evil.com", false},
		{"unparsable origin", "game.local:3000", "::::", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, _ := http.NewRequest(http.MethodGet, "/ws", http.NoBody)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.allowed, oc.Check(req))
		})
	}
}

func TestOriginChecker_AllowAll(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"https://checkers.example.com", "*"})
	req, _ := http.NewRequest(http.MethodGet, "/ws", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")

	assert.True(t, oc.Check(req))
}
