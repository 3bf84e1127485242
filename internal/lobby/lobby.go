package lobby

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oneilla11/Rainbow-Roulette/internal/engine"
	"github.com/oneilla11/Rainbow-Roulette/internal/types"
)

type Msg interface{ isLobbyMsg() }

// Join registers a connection and its outbox for server messages.
type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

// FromClient carries a validated command; the loop stamps From and At itself
// so a client can never impersonate another connection or backdate an intent.
type FromClient struct {
	ClientID string
	Cmd      engine.Command
}

func (FromClient) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

// View reflects internal state without data races (tests, HTTP stats).
type View struct {
	Version    int
	NumClients int
	Phase      engine.Phase
	Snapshot   engine.LobbyState
	Stats      engine.Stats
}

// tickInterval drives round expiry and the heartbeat resend. No client
// message is guaranteed to arrive at round expiry, so the loop checks itself.
const tickInterval = 100 * time.Millisecond

// Lobby owns one match State. Every mutation happens on the loop goroutine;
// network readers and writers only ever touch the inbox and outboxes.
type Lobby struct {
	inbox   chan Msg
	state   *engine.State
	version int
	clients map[string]chan types.ServerMessage
	log     *zap.SugaredLogger
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewLobby(parent context.Context, st *engine.State, log *zap.SugaredLogger) *Lobby {
	return newLobby(parent, st, log, time.Now)
}

func newLobby(parent context.Context, st *engine.State, log *zap.SugaredLogger, now func() time.Time) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	l := &Lobby{
		inbox:   make(chan Msg, 64),
		state:   st,
		clients: make(map[string]chan types.ServerMessage),
		log:     log,
		now:     now,
		ctx:     ctx,
		cancel:  cancel,
	}
	go l.loop()
	return l
}

func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) loop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-ticker.C:
			l.apply(engine.Command{Type: engine.CmdTick, At: l.now()})

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.clients[msg.ClientID] = msg.Outbox
				l.apply(engine.Command{Type: engine.CmdConnect, From: msg.ClientID, At: l.now()})
				// New connections start from a full snapshot.
				snap := l.state.Snapshot()
				l.send(msg.ClientID, types.ServerMessage{Type: types.MsgLobbyState, LobbyState: &snap})

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}
				l.apply(engine.Command{Type: engine.CmdDisconnect, From: msg.ClientID, At: l.now()})

			case FromClient:
				cmd := msg.Cmd
				cmd.From = msg.ClientID
				cmd.At = l.now()
				l.apply(cmd)

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Phase:      l.state.Phase,
					Snapshot:   l.state.Snapshot(),
					Stats:      l.state.StatsSnapshot(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// apply runs one serialized turn. A panic is confined to this turn so one bad
// message cannot take the match down with it.
func (l *Lobby) apply(cmd engine.Command) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Errorw("command panicked", "cmd", cmd.Type, "from", cmd.From, "panic", r)
		}
	}()

	fx, err := engine.Apply(l.state, cmd)
	if err != nil {
		l.log.Debugw("command dropped", "cmd", cmd.Type, "from", cmd.From, "err", err)
	}
	if len(fx) == 0 {
		return
	}
	l.version++
	for _, e := range fx {
		if e.RoundStart != nil {
			l.log.Infow("round started",
				"round", e.RoundStart.RoundNumber,
				"suddenDeath", e.RoundStart.SuddenDeath,
				"totalTime", e.RoundStart.TotalTime)
		}
		if e.Delete != nil {
			l.log.Infow("participant eliminated", "id", e.Delete.ID)
		}
	}
	l.dispatch(fx)
}

func (l *Lobby) dispatch(fx []engine.Effect) {
	var dropped []string
	for _, e := range fx {
		out, ok := types.Outbound(e)
		if !ok {
			continue
		}
		if e.To != "" {
			if !l.send(e.To, out) {
				dropped = append(dropped, e.To)
			}
			continue
		}
		for id := range l.clients {
			if !l.send(id, out) {
				dropped = append(dropped, id)
			}
		}
	}
	for _, id := range dropped {
		l.drop(id)
	}
}

func (l *Lobby) send(id string, m types.ServerMessage) bool {
	ch, ok := l.clients[id]
	if !ok {
		return true
	}
	select {
	case ch <- m:
		return true
	default:
		// Slow/full client; the caller drops them.
		return false
	}
}

func (l *Lobby) drop(id string) {
	ch, ok := l.clients[id]
	if !ok {
		return
	}
	l.log.Warnw("dropping slow client", "id", id)
	close(ch)
	delete(l.clients, id)
	l.apply(engine.Command{Type: engine.CmdDisconnect, From: id, At: l.now()})
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch)
		delete(l.clients, id)
	}
	l.cancel()
}
