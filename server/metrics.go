package server

import (
	"sync/atomic"
)

// ControlMetrics 控制面运行指标（/metrics 输出）
type ControlMetrics struct {
	MovesSent      int64 // 成功往返的 move 请求
	MovesFailed    int64 // 传输或解码失败的 move 请求
	KeysIgnored    int64 // 未映射到方向的按键
	RegisterFailed int64 // 注册失败次数
	TogglesSent    int64 // toggle 请求（不论成败）
	LookupsHit     int64 // 邮编命中
	LookupsMissed  int64 // 邮编未命中
	PagesConnected int64 // 当前打开的控制页 WebSocket 连接数
}

func (m *ControlMetrics) IncMovesSent()      { atomic.AddInt64(&m.MovesSent, 1) }
func (m *ControlMetrics) IncMovesFailed()    { atomic.AddInt64(&m.MovesFailed, 1) }
func (m *ControlMetrics) IncKeysIgnored()    { atomic.AddInt64(&m.KeysIgnored, 1) }
func (m *ControlMetrics) IncRegisterFailed() { atomic.AddInt64(&m.RegisterFailed, 1) }
func (m *ControlMetrics) IncTogglesSent()    { atomic.AddInt64(&m.TogglesSent, 1) }
func (m *ControlMetrics) IncLookupsHit()     { atomic.AddInt64(&m.LookupsHit, 1) }
func (m *ControlMetrics) IncLookupsMissed()  { atomic.AddInt64(&m.LookupsMissed, 1) }
func (m *ControlMetrics) AddPages(delta int64) {
	atomic.AddInt64(&m.PagesConnected, delta)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *ControlMetrics) Snapshot() map[string]any {
	return map[string]any{
		"moves_sent":      atomic.LoadInt64(&m.MovesSent),
		"moves_failed":    atomic.LoadInt64(&m.MovesFailed),
		"keys_ignored":    atomic.LoadInt64(&m.KeysIgnored),
		"register_failed": atomic.LoadInt64(&m.RegisterFailed),
		"toggles_sent":    atomic.LoadInt64(&m.TogglesSent),
		"lookups_hit":     atomic.LoadInt64(&m.LookupsHit),
		"lookups_missed":  atomic.LoadInt64(&m.LookupsMissed),
		"pages_connected": atomic.LoadInt64(&m.PagesConnected),
	}
}
