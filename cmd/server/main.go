package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oneilla11/Rainbow-Roulette/internal/config"
	"github.com/oneilla11/Rainbow-Roulette/internal/httpapi"
	"github.com/oneilla11/Rainbow-Roulette/internal/hub"
	"github.com/oneilla11/Rainbow-Roulette/internal/lobby"
	"github.com/oneilla11/Rainbow-Roulette/internal/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogFile)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	h := hub.NewHub(ctx, log)

	// Pre-create the default arena so the first connection joins a match
	// that already exists.
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.EnsureArena{Code: cfg.DefaultArena, Reply: reply}
	<-reply

	handler := httpapi.SetupRoutes(h, cfg.DefaultArena, log)
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	go func() {
		log.Infof("rainbow roulette listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	h.Inbox() <- hub.ShutdownHub{}
	_ = srv.Shutdown(ctx)
}
