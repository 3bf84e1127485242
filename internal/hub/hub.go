package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/oneilla11/Rainbow-Roulette/internal/engine"
	"github.com/oneilla11/Rainbow-Roulette/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

type CreateArena struct {
	Code  string
	Reply chan *lobby.Lobby
}

type GetArena struct {
	Code  string
	Reply chan *lobby.Lobby
}

type EnsureArena struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveArena struct {
	Code string
}

type ShutdownHub struct{}

func (CreateArena) isHubMsg() {}
func (GetArena) isHubMsg()    {}
func (EnsureArena) isHubMsg() {}
func (RemoveArena) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// Hub owns the arena registry. Like the arenas themselves it is a serialized
// loop; all access goes through the inbox.
type Hub struct {
	inbox  chan HubMsg
	arenas map[string]*lobby.Lobby
	log    *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.SugaredLogger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		arenas: make(map[string]*lobby.Lobby),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateArena:
				msg.Reply <- h.ensure(msg.Code)

			case GetArena:
				msg.Reply <- h.arenas[msg.Code] // may be nil

			case EnsureArena:
				msg.Reply <- h.ensure(msg.Code)

			case RemoveArena:
				if lb, ok := h.arenas[msg.Code]; ok {
					lb.Inbox() <- lobby.Shutdown{}
					delete(h.arenas, msg.Code)
				}

			case ShutdownHub:
				for _, lb := range h.arenas {
					lb.Inbox() <- lobby.Shutdown{}
				}
				clear(h.arenas)
				h.cancel()
			}
		}
	}
}

func (h *Hub) ensure(code string) *lobby.Lobby {
	if lb := h.arenas[code]; lb != nil {
		return lb
	}
	h.log.Infow("arena created", "code", code)
	lb := lobby.NewLobby(h.ctx, engine.NewState(nil), h.log)
	h.arenas[code] = lb
	return lb
}
