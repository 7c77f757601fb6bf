package registry

import "sync"

// Binding 连接入座信息
type Binding struct {
	RoomKey string
	Seat    int
}

// Registry 连接注册表：connectionId → (roomKey, seat)
type Registry struct {
	bindings map[string]Binding
	mu       sync.RWMutex
}

// New 创建连接注册表
func New() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

// Bind 入座或重连成功后绑定，覆盖旧绑定
func (r *Registry) Bind(connID, roomKey string, seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[connID] = Binding{RoomKey: roomKey, Seat: seat}
}

// Lookup 查询绑定
func (r *Registry) Lookup(connID string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[connID]
	return b, ok
}

// Forget 删除绑定
func (r *Registry) Forget(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, connID)
}

// ForgetRoom 删除某个房间的全部绑定，返回被删除的连接
func (r *Registry) ForgetRoom(roomKey string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, b := range r.bindings {
		if b.RoomKey == roomKey {
			delete(r.bindings, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// IsSeated 连接是否已入座
func (r *Registry) IsSeated(connID string) bool {
	_, ok := r.Lookup(connID)
	return ok
}

// Len 绑定数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
