package session

import (
	"sync"

	"zappy/internal/shared/transport/ws"
)

// Hub 记录在线的 ws 观察连接及其订阅的主题，连接关闭后自动注销。
type Hub struct {
	sync.RWMutex
	conns  map[int64]ws.WSConn
	topics map[string]map[int64]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[int64]ws.WSConn),
		topics: make(map[string]map[int64]struct{}),
	}
}

// Register 登记连接，并为每条连接启动一次 watcher。
func (h *Hub) Register(conn ws.WSConn) {
	if conn == nil {
		return
	}
	h.Lock()
	if _, ok := h.conns[conn.ID()]; ok {
		h.Unlock()
		return
	}
	h.conns[conn.ID()] = conn
	h.Unlock()

	go func() {
		<-conn.Done()
		h.Unregister(conn)
	}()
}

func (h *Hub) Unregister(conn ws.WSConn) {
	h.Lock()
	defer h.Unlock()
	id := conn.ID()
	delete(h.conns, id)
	for topic, subs := range h.topics {
		delete(subs, id)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Subscribe 只对已登记的连接生效。
func (h *Hub) Subscribe(conn ws.WSConn, topic string) bool {
	h.Lock()
	defer h.Unlock()
	if _, ok := h.conns[conn.ID()]; !ok {
		return false
	}
	subs := h.topics[topic]
	if subs == nil {
		subs = make(map[int64]struct{})
		h.topics[topic] = subs
	}
	subs[conn.ID()] = struct{}{}
	return true
}

func (h *Hub) Unsubscribe(conn ws.WSConn, topic string) {
	h.Lock()
	defer h.Unlock()
	if subs := h.topics[topic]; subs != nil {
		delete(subs, conn.ID())
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Subscribers 返回订阅了 topic 的连接数。
func (h *Hub) Subscribers(topic string) int {
	h.RLock()
	defer h.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) Count() int {
	h.RLock()
	defer h.RUnlock()
	return len(h.conns)
}

// Broadcast 向 topic 的全部订阅者推送 name/data，返回成功入队的连接数。
func (h *Hub) Broadcast(topic, name string, data any) int {
	h.RLock()
	targets := make([]ws.WSConn, 0, len(h.topics[topic]))
	for id := range h.topics[topic] {
		if conn := h.conns[id]; conn != nil {
			targets = append(targets, conn)
		}
	}
	h.RUnlock()

	sent := 0
	for _, conn := range targets {
		if conn.Push(name, data) {
			sent++
		}
	}
	return sent
}
