package server

import (
	"encoding/json"
	"sync"
)

// Hub 管理当前打开的控制页连接，用于广播移动结果
type Hub struct {
	mu      sync.RWMutex
	conns   map[*ClientConn]struct{}
	metrics *ControlMetrics
}

func NewHub(metrics *ControlMetrics) *Hub {
	if metrics == nil {
		metrics = &ControlMetrics{}
	}
	return &Hub{conns: make(map[*ClientConn]struct{}), metrics: metrics}
}

// Join 登记连接
func (h *Hub) Join(c *ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		return
	}
	h.conns[c] = struct{}{}
	h.metrics.AddPages(1)
}

// Leave 移除连接并关闭发送队列。与 Broadcast 互斥，避免向已关闭的通道写入
func (h *Hub) Leave(c *ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	h.metrics.AddPages(-1)
	c.Close()
}

// CloseAll 关闭并移除全部连接
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		delete(h.conns, c)
		h.metrics.AddPages(-1)
		c.Close()
	}
}

// Len 当前连接数
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast 将事件编码后压入每个连接的发送队列（非阻塞）
func (h *Hub) Broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		Log.Errorf("broadcast encode: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.Enqueue(b)
	}
}
