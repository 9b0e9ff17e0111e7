package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"arenamover/arena"
)

const (
	// 超过 pongWait 未收到任何帧则断开；pingPeriod 必须小于 pongWait
	defaultPongWait   = 60 * time.Second
	defaultPingPeriod = defaultPongWait * 9 / 10
)

// ClientConn 一个控制页的 WebSocket 连接，写操作由独立协程完成
type ClientConn struct {
	ws         *websocket.Conn
	send       chan []byte
	closeOnce  sync.Once
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:         ws,
		send:       make(chan []byte, 64),
		pongWait:   defaultPongWait,
		pingPeriod: defaultPingPeriod,
	}
}

// Enqueue 压入发送队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
	}
}

// Close 关闭发送队列，写协程随之退出并关闭底层连接。可重复调用
func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// writePump 从 send 队列写出到 WS，并定时发送 ping 让空闲页面保持连接
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// InputMessage 控制页发来的文本消息
// 示例：{"type":"key","key":"ArrowUp"} 或 {"type":"move","command":"up"}
type InputMessage struct {
	Type    string `json:"type"`
	Key     string `json:"key,omitempty"`
	Command string `json:"command,omitempty"`
}

// readPump 读取控制页输入。每条消息在独立协程中处理，移动请求之间不互相等待；
// 这些协程登记在 a.inflight 中，Shutdown 会等待它们结束
func (c *ClientConn) readPump(a *App) {
	defer a.inflight.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer a.hub.Leave(c)

	c.ws.SetReadLimit(1 << 16)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(c.pongWait))

		var im InputMessage
		if err := json.Unmarshal(payload, &im); err != nil {
			continue
		}
		switch strings.ToLower(im.Type) {
		case "key":
			a.inflight.Add(1)
			go func(key string) {
				defer a.inflight.Done()
				a.pressKey(ctx, key)
			}(im.Key)
		case "move":
			dir, err := arena.ParseDirection(im.Command)
			if err != nil {
				Log.Debugf("ws move ignored: %v", err)
				continue
			}
			a.inflight.Add(1)
			go func() {
				defer a.inflight.Done()
				a.move(ctx, dir)
			}()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 控制页与服务同源部署；允许本地调试页面
		return true
	},
}

// HandleWS 控制页键盘通道
func (a *App) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws)
	if a.pongWait > 0 {
		client.pongWait = a.pongWait
		client.pingPeriod = a.pongWait * 9 / 10
	}
	a.hub.Join(client)

	a.inflight.Add(1)
	go client.writePump()
	go client.readPump(a)
}
