package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/checkers-duel/internal/config"
	"github.com/palemoky/checkers-duel/internal/protocol"
)

// --- 来源验证 ---

// OriginChecker 校验浏览器 Origin。
// 终端客户端不带 Origin；与 /ws 同主机的页面（static_dir 提供）总是放行。
type OriginChecker struct {
	allowed  map[string]bool // scheme://host，小写
	allowAll bool
}

// NewOriginChecker 创建来源验证器，"*" 表示不限制
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			continue
		}
		oc.allowed[strings.ToLower(strings.TrimRight(origin, "/"))] = true
	}
	return oc
}

// Check 用作 websocket.Upgrader.CheckOrigin
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return oc.allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
}

// GetClientIP 取客户端 IP：代理头里的值必须是合法 IP，否则退回 RemoteAddr
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// --- 消息预算 ---

// RateVerdict 一条消息的计费结果
type RateVerdict int

const (
	RateAllow RateVerdict = iota
	// RateNearLimit 本秒额度已用过半
	RateNearLimit
	// RateReject 本秒额度不足，消息丢弃
	RateReject
	// RateDisconnect 连续超额过多，断开连接
	RateDisconnect
)

// MessageBudget 按连接、按消息类型计费的每秒额度。
// ping 免费；makeMove / initialBoardSync 携带整盘快照，按 boardCost 计费；其余消息（含无法解析的帧）计 1。
// 一个完整窗口内没有被拒绝过，超额次数清零。
type MessageBudget struct {
	mu      sync.Mutex
	windows map[string]*budgetWindow

	perSecond  int
	boardCost  int
	maxStrikes int

	now func() time.Time
}

type budgetWindow struct {
	start    time.Time
	spent    int
	rejected bool
	strikes  int
}

// NewMessageBudget 由配置创建消息预算
func NewMessageBudget(cfg config.MessageLimitConfig) *MessageBudget {
	return &MessageBudget{
		windows:    make(map[string]*budgetWindow),
		perSecond:  cfg.MaxPerSecond,
		boardCost:  cfg.BoardCost,
		maxStrikes: cfg.MaxStrikes,
		now:        time.Now,
	}
}

// Cost 消息类型的计费
func (b *MessageBudget) Cost(t protocol.MessageType) int {
	switch t {
	case protocol.MsgPing:
		return 0
	case protocol.MsgMakeMove, protocol.MsgInitialBoardSync:
		return b.boardCost
	default:
		return 1
	}
}

// Charge 为连接的一条消息计费
func (b *MessageBudget) Charge(connID string, t protocol.MessageType) RateVerdict {
	cost := b.Cost(t)
	if cost == 0 {
		return RateAllow
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	w, ok := b.windows[connID]
	if !ok {
		w = &budgetWindow{start: now}
		b.windows[connID] = w
	}
	if now.Sub(w.start) >= time.Second {
		if !w.rejected {
			w.strikes = 0
		}
		w.start = now
		w.spent = 0
		w.rejected = false
	}

	if w.spent+cost > b.perSecond {
		w.rejected = true
		w.strikes++
		if w.strikes > b.maxStrikes {
			return RateDisconnect
		}
		return RateReject
	}

	w.spent += cost
	if w.spent*2 > b.perSecond {
		return RateNearLimit
	}
	return RateAllow
}

// Strikes 当前连续超额次数
func (b *MessageBudget) Strikes(connID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[connID]; ok {
		return w.strikes
	}
	return 0
}

// Forget 连接断开后清理
func (b *MessageBudget) Forget(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, connID)
}
