package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneilla11/Rainbow-Roulette/internal/engine"
	"github.com/oneilla11/Rainbow-Roulette/internal/hub"
	"github.com/oneilla11/Rainbow-Roulette/internal/lobby"
	"github.com/oneilla11/Rainbow-Roulette/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	// Clients heartbeat well under this; a silent connection is dead.
	readTimeout = 60 * time.Second
)

// Handler upgrades to websocket and bridges the connection to its arena's
// serialized loop. The connection id is minted here and is the participant's
// identity for the connection lifetime.
func Handler(h *hub.Hub, defaultArena string, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			code = defaultArena
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.EnsureArena{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "arena not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		out := make(chan types.ServerMessage, 32)

		lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}
		defer func() { lb.Inbox() <- lobby.Leave{ClientID: clientID} }()

		log.Debugw("connection opened", "arena", code, "id", clientID)

		// Writer goroutine: drains the outbox until the lobby closes it.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for m := range out {
				payload, err := json.Marshal(m)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop.
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				log.Debugw("connection closed", "arena", code, "id", clientID,
					"status", websocket.CloseStatus(err))
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				// Malformed input: dropped with no state change.
				continue
			}
			cmd, ok := toCommand(cm)
			if !ok {
				continue
			}
			lb.Inbox() <- lobby.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

// toCommand validates an inbound frame into a tagged command. Anything
// unrecognized maps to a dropped outcome rather than an error back to the
// sender.
func toCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case types.MsgJoin:
		return engine.Command{Type: engine.CmdJoin, Name: m.Name}, true
	case types.MsgUpdate:
		return engine.Command{
			Type:      engine.CmdUpdate,
			X:         m.X,
			Y:         m.Y,
			Immunity:  m.Immunity,
			Spectator: m.Spectator,
		}, true
	case types.MsgRequestDelete:
		return engine.Command{Type: engine.CmdRequestDelete, Target: m.ID}, true
	case types.MsgRequestRoundStart:
		return engine.Command{Type: engine.CmdRequestRoundStart}, true
	default:
		return engine.Command{}, false
	}
}
