package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oneilla11/Rainbow-Roulette/internal/hub"
	"github.com/oneilla11/Rainbow-Roulette/internal/lobby"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateCode() (string, error) {
	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

// CreateArena allocates a fresh arena under a generated code.
func CreateArena(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *lobby.Lobby, 1)
			h.Inbox() <- hub.GetArena{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.CreateArena{Code: code, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create arena", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

// ArenaState reports an arena's current view for dashboards and debugging.
func ArenaState(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetArena{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "arena not found", http.StatusNotFound)
			return
		}

		view := make(chan lobby.View, 1)
		lb.Inbox() <- lobby.GetState{Reply: view}
		select {
		case v := <-view:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(v)
		case <-time.After(2 * time.Second):
			http.Error(w, "arena busy", http.StatusServiceUnavailable)
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
