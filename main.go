package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arenamover/arena"
	"arenamover/config"
	"arenamover/server"
	"arenamover/zipcode"
)

// arenamover 入口：加载配置，注册一次导航员角色，启动控制页服务
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "control page listen address, e.g. :8080")
	flag.Parse()

	if err := server.InitLogger(cfg.LogFile); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	client := arena.New(cfg.TeamName, cfg.Secret, arena.WithBaseURL(cfg.BaseURL))
	metrics := &server.ControlMetrics{}
	nav := server.NewNavigator(client, metrics)

	// 邮编目录加载完成后才开始服务，避免查询到空列表
	places := zipcode.NewDirectory(server.Log.Named("zipcode"))
	if err := places.LoadFile(cfg.PlacesFile); err != nil {
		server.Log.Warnf("postal-code lookup disabled: %v", err)
	}

	app := server.NewApp(nav, places, metrics)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: app.Routes(cfg.WebDir)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		server.Log.Infof("arenamover team=%s arena=%s listening on %s", client.TeamName(), client.BaseURL(), cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 注册失败只记录日志，控制页照常可用
	_, _ = nav.RegisterOnce(ctx, cfg.Role)

	<-ctx.Done()
	server.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if err := app.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnf("control pages did not close in time: %v", err)
	}
}
