package types

import "github.com/oneilla11/Rainbow-Roulette/internal/engine"

// Inbound message type tags.
const (
	MsgJoin              = "join"
	MsgUpdate            = "update"
	MsgRequestDelete     = "requestDelete"
	MsgRequestRoundStart = "requestRoundStart"
)

// Outbound message type tags.
const (
	MsgWelcome    = "welcome"
	MsgLobbyState = "lobbyState"
	MsgDelete     = "delete"
	MsgRoundStart = "roundStart"
	MsgRoundRoles = "roundRoles"
	MsgStats      = "stats"
	MsgSystemMsg  = "systemMsg"
)

// ClientMessage is the flat inbound frame. Unknown or missing fields are the
// zero value; validation happens at the ws boundary before a Command is built.
type ClientMessage struct {
	Type      string  `json:"type"`
	Name      string  `json:"name,omitempty"`
	ID        string  `json:"id,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Immunity  int     `json:"immunity,omitempty"`
	Spectator bool    `json:"spectator,omitempty"`
}

// ServerMessage is the outbound frame: a type tag plus exactly one payload.
type ServerMessage struct {
	Type       string                 `json:"type"`
	Welcome    *engine.Welcome        `json:"welcome,omitempty"`
	LobbyState *engine.LobbyState     `json:"lobbyState,omitempty"`
	Update     *engine.UpdateInfo     `json:"update,omitempty"`
	Delete     *engine.DeleteInfo     `json:"delete,omitempty"`
	RoundStart *engine.RoundStartInfo `json:"roundStart,omitempty"`
	RoundRoles *engine.RoundRolesInfo `json:"roundRoles,omitempty"`
	Stats      *engine.Stats          `json:"stats,omitempty"`
	System     *engine.SystemMsg      `json:"systemMsg,omitempty"`
}

// Outbound wraps an engine effect's payload into a typed wire frame.
func Outbound(e engine.Effect) (ServerMessage, bool) {
	switch {
	case e.Welcome != nil:
		return ServerMessage{Type: MsgWelcome, Welcome: e.Welcome}, true
	case e.LobbyState != nil:
		return ServerMessage{Type: MsgLobbyState, LobbyState: e.LobbyState}, true
	case e.Update != nil:
		return ServerMessage{Type: MsgUpdate, Update: e.Update}, true
	case e.Delete != nil:
		return ServerMessage{Type: MsgDelete, Delete: e.Delete}, true
	case e.RoundStart != nil:
		return ServerMessage{Type: MsgRoundStart, RoundStart: e.RoundStart}, true
	case e.RoundRoles != nil:
		return ServerMessage{Type: MsgRoundRoles, RoundRoles: e.RoundRoles}, true
	case e.Stats != nil:
		return ServerMessage{Type: MsgStats, Stats: e.Stats}, true
	case e.System != nil:
		return ServerMessage{Type: MsgSystemMsg, System: e.System}, true
	default:
		return ServerMessage{}, false
	}
}
