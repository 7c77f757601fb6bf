package room

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/logger"
)

// 写队列容量，满了直接丢弃（快照有 TTL，下一次变更会覆盖）
const writeQueueSize = 1024

// writeQueue 单个 goroutine 按入队顺序执行 Redis 写入。
// 入队发生在房间锁内，所以同一房间的 Save/Delete 顺序与状态变更顺序一致。
type writeQueue struct {
	mu     sync.Mutex
	ops    chan func(ctx context.Context)
	closed bool
	done   chan struct{}
}

func newWriteQueue() *writeQueue {
	q := &writeQueue{
		ops:  make(chan func(ctx context.Context), writeQueueSize),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *writeQueue) run() {
	defer close(q.done)
	for op := range q.ops {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		op(ctx)
		cancel()
	}
}

// enqueue 非阻塞入队，队列已关闭或已满时返回 false
func (q *writeQueue) enqueue(op func(ctx context.Context)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	select {
	case q.ops <- op:
		return true
	default:
		logger.L().Warn("⚠️ Redis 写队列已满，丢弃写入", zap.Int("size", writeQueueSize))
		return false
	}
}

// flush 等待已入队的写入全部执行完
func (q *writeQueue) flush() {
	marker := make(chan struct{})
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.ops <- func(context.Context) { close(marker) }
	q.mu.Unlock()
	<-marker
}

// close 停止接收新写入，等待队列排空
func (q *writeQueue) close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ops)
	}
	q.mu.Unlock()
	<-q.done
}
