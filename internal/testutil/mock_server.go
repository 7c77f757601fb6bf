//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/types"
)

var _ types.ServerInterface = (*MockServer)(nil)

// MockServer 实现 types.ServerInterface 的 mock
type MockServer struct {
	mock.Mock
}

func (m *MockServer) IsMaintenanceMode() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockServer) GetOnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockServer) BroadcastToLobby(msg *protocol.Message) {
	m.Called(msg)
}

// LobbyRecorder 记录大厅广播
type LobbyRecorder struct {
	mu       sync.Mutex
	messages []*protocol.Message
}

func (l *LobbyRecorder) BroadcastToLobby(msg *protocol.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Messages 返回记录的广播
func (l *LobbyRecorder) Messages() []*protocol.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*protocol.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Count 广播次数
func (l *LobbyRecorder) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
