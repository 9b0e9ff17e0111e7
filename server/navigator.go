package server

import (
	"context"
	"sync"

	"arenamover/arena"
)

// ArenaClient 控制面用到的竞技场操作，*arena.Client 实现了它
type ArenaClient interface {
	Register(ctx context.Context, role string) (arena.Document, error)
	State(ctx context.Context) (arena.Document, error)
	Move(ctx context.Context, dir arena.Direction) (arena.Document, error)
	ToggleBlock(ctx context.Context, x, y int) (arena.Document, error)
}

// MoveEvent 一次移动的结果，广播给所有打开的控制页
type MoveEvent struct {
	Type      string          `json:"type"` // "move" 或 "error"
	Direction arena.Direction `json:"direction,omitempty"`
	Result    *arena.Document `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func newMoveEvent(dir arena.Direction, doc arena.Document, err error) MoveEvent {
	if err != nil {
		return MoveEvent{Type: "error", Direction: dir, Error: err.Error()}
	}
	return MoveEvent{Type: "move", Direction: dir, Result: &doc}
}

// Navigator 把按钮/按键翻译为竞技场请求。
// 所有失败只记录日志并返回给调用方，不会中断服务；并发调用互不等待
type Navigator struct {
	client  ArenaClient
	metrics *ControlMetrics

	registerOnce sync.Once
	registerDoc  arena.Document
	registerErr  error
}

func NewNavigator(client ArenaClient, metrics *ControlMetrics) *Navigator {
	if metrics == nil {
		metrics = &ControlMetrics{}
	}
	return &Navigator{client: client, metrics: metrics}
}

// RegisterOnce 仅第一次调用真正发出注册请求，之后返回首次结果
func (n *Navigator) RegisterOnce(ctx context.Context, role string) (arena.Document, error) {
	n.registerOnce.Do(func() {
		n.registerDoc, n.registerErr = n.client.Register(ctx, role)
		if n.registerErr != nil {
			n.metrics.IncRegisterFailed()
			Log.Errorf("Register failed role=%s: %v", role, n.registerErr)
			return
		}
		Log.Infof("Registered role=%s %s", role, n.registerDoc)
	})
	return n.registerDoc, n.registerErr
}

// SendMove 发送一次移动
func (n *Navigator) SendMove(ctx context.Context, dir arena.Direction) (arena.Document, error) {
	doc, err := n.client.Move(ctx, dir)
	if err != nil {
		n.metrics.IncMovesFailed()
		Log.Errorf("Move failed %s: %v", dir, err)
		return doc, err
	}
	n.metrics.IncMovesSent()
	Log.Infof("Move %s %s", dir, doc)
	return doc, nil
}

// HandleKey 按键映射为方向后移动；未映射的按键不发请求，返回 false
func (n *Navigator) HandleKey(ctx context.Context, key string) (MoveEvent, bool) {
	dir, ok := DirectionForKey(key)
	if !ok {
		Log.Debugf("key ignored: %q", key)
		n.metrics.IncKeysIgnored()
		return MoveEvent{}, false
	}
	doc, err := n.SendMove(ctx, dir)
	return newMoveEvent(dir, doc, err), true
}

// State 查询本队状态
func (n *Navigator) State(ctx context.Context) (arena.Document, error) {
	doc, err := n.client.State(ctx)
	if err != nil {
		Log.Errorf("State failed: %v", err)
	}
	return doc, err
}

// Toggle 切换 (x, y) 处的方块
func (n *Navigator) Toggle(ctx context.Context, x, y int) (arena.Document, error) {
	n.metrics.IncTogglesSent()
	doc, err := n.client.ToggleBlock(ctx, x, y)
	if err != nil {
		Log.Errorf("Toggle failed (%d,%d): %v", x, y, err)
		return doc, err
	}
	Log.Infof("Toggle (%d,%d) %s", x, y, doc)
	return doc, nil
}
