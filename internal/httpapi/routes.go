package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/oneilla11/Rainbow-Roulette/internal/hub"
	"github.com/oneilla11/Rainbow-Roulette/internal/ws"
)

func SetupRoutes(h *hub.Hub, defaultArena string, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Post("/arenas", CreateArena(h))
	r.Get("/arenas/{code}", ArenaState(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, defaultArena, log))
	return r
}
