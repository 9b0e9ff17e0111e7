package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"arenamover/arena"
	"arenamover/zipcode"
)

// App 控制面：按钮、键盘通道、邮编查询与监控接口
type App struct {
	nav     *Navigator
	places  *zipcode.Directory
	metrics *ControlMetrics
	hub     *Hub

	// pongWait 为 0 时使用默认的 60s 空闲上限
	pongWait time.Duration
	inflight sync.WaitGroup
}

func NewApp(nav *Navigator, places *zipcode.Directory, metrics *ControlMetrics) *App {
	if metrics == nil {
		metrics = &ControlMetrics{}
	}
	return &App{
		nav:     nav,
		places:  places,
		metrics: metrics,
		hub:     NewHub(metrics),
	}
}

// Routes 注册全部路由；webDir 为控制页静态资源目录
func (a *App) Routes(webDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", a.HandleWS)
	mux.HandleFunc("/move", a.HandleMove)
	mux.HandleFunc("/state", a.HandleState)
	mux.HandleFunc("/toggle", a.HandleToggle)
	mux.HandleFunc("/lookup", a.HandleLookup)
	mux.HandleFunc("/metrics", a.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if webDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(webDir)))
	}
	return mux
}

// move 发送移动并把结果广播给所有控制页
func (a *App) move(ctx context.Context, dir arena.Direction) MoveEvent {
	doc, err := a.nav.SendMove(ctx, dir)
	ev := newMoveEvent(dir, doc, err)
	a.hub.Broadcast(ev)
	return ev
}

func (a *App) pressKey(ctx context.Context, key string) {
	if ev, ok := a.nav.HandleKey(ctx, key); ok {
		a.hub.Broadcast(ev)
	}
}

// HandleMove 按钮：POST /move?dir=up
func (a *App) HandleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	dir, err := arena.ParseDirection(r.URL.Query().Get("dir"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "allowed": arena.Directions})
		return
	}
	ev := a.move(r.Context(), dir)
	if ev.Type == "error" {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": ev.Error})
		return
	}
	writeJSON(w, http.StatusOK, ev.Result)
}

// Shutdown 关闭所有控制页连接，并等待读协程与在途请求结束或 ctx 到期
func (a *App) Shutdown(ctx context.Context) error {
	a.hub.CloseAll()
	done := make(chan struct{})
	go func() {
		a.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleState GET /state，原样转发竞技场返回的文档
func (a *App) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	doc, err := a.nav.State(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleToggle POST /toggle，载荷 {"x":3,"y":5}，两个坐标都必须给出
func (a *App) HandleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.X == nil || body.Y == nil {
		http.Error(w, "x and y are required", http.StatusBadRequest)
		return
	}
	doc, err := a.nav.Toggle(r.Context(), *body.X, *body.Y)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleLookup 邮编输入框失焦：GET /lookup?plz=10115&city=当前城市
// 未命中时原样返回 city
func (a *App) HandleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.places == nil || !a.places.Loaded() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "places not loaded"})
		return
	}
	q := r.URL.Query()
	form := zipcode.Form{Zip: q.Get("plz"), City: q.Get("city")}
	found := a.places.PopulateCity(&form)
	if found {
		a.metrics.IncLookupsHit()
	} else {
		a.metrics.IncLookupsMissed()
	}
	writeJSON(w, http.StatusOK, map[string]any{"city": form.City, "found": found})
}

// HandleMetrics GET /metrics
func (a *App) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": a.metrics.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
