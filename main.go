package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	clientDir := flag.String("client", "", "Path to static client directory (optional)")
	dbPath := flag.String("db", "coinrush.db", "Path to SQLite database")
	logPath := flag.String("log", "coinrush.log", "Path to log file")
	delayMs := flag.Int("broadcast-delay", 0, "Artificial snapshot delay in ms (latency testing)")
	flag.Parse()

	InitLogger(*logPath)
	defer SyncLogger()

	cfg := DefaultConfig()
	cfg.BroadcastDelay = time.Duration(*delayMs) * time.Millisecond

	// The store is best-effort telemetry; the game runs fine without it.
	var mirror *Mirror
	db, err := OpenDB(*dbPath)
	if err != nil {
		Log.Warnf("db unavailable, running without persistence: %v", err)
		db = nil
	} else {
		defer db.Close()
		mirror = NewMirror(db)
		defer mirror.Stop()
	}

	hub := NewHub(cfg, db, mirror)
	go hub.Run()

	mux := SetupRoutes(hub, *clientDir)
	server := &http.Server{Addr: *addr, Handler: mux}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		Log.Infof("server starting on %s", *addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			Log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	Log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		Log.Warnf("shutdown: %v", err)
	}
}
