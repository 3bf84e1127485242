package engine

import "time"

type CommandType string

const (
	CmdConnect           CommandType = "connect"
	CmdJoin              CommandType = "join"
	CmdUpdate            CommandType = "update"
	CmdRequestDelete     CommandType = "requestDelete"
	CmdRequestRoundStart CommandType = "requestRoundStart"
	CmdDisconnect        CommandType = "disconnect"
	CmdTick              CommandType = "tick"
)

// Command is one inbound intent, already validated at the boundary. From is
// the connection id the transport assigned to the sender; payload ids are
// never trusted for identity. At is when the serialized loop dequeued it, so
// Apply itself never reads the clock.
type Command struct {
	Type CommandType
	From string
	At   time.Time

	Name      string  // join
	Target    string  // requestDelete; empty means self
	X, Y      float64 // update
	Immunity  int     // update (relayed only, never authoritative)
	Spectator bool    // update (relayed only)
}

// Effect is one outbound message produced by Apply. To is the connection id
// for a private message; empty means broadcast to every connection. Exactly
// one payload field is set.
type Effect struct {
	To string

	Welcome    *Welcome
	LobbyState *LobbyState
	Update     *UpdateInfo
	Delete     *DeleteInfo
	RoundStart *RoundStartInfo
	RoundRoles *RoundRolesInfo
	Stats      *Stats
	System     *SystemMsg
}

// Welcome is sent once per connection so clients can build the arena without
// hardcoding geometry.
type Welcome struct {
	ID          string  `json:"id"`
	WorldSize   float64 `json:"worldSize"`
	BannerH     float64 `json:"bannerH"`
	Spawn       Rect    `json:"spawn"`
	Zones       []Zone  `json:"zones"`
	MaxImmunity int     `json:"maxImmunity"`
}

// PlayerInfo is one participant entry inside a LobbyState snapshot.
type PlayerInfo struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	JoinTime int64   `json:"joinTime"`
	Slot     Slot    `json:"slot"`
	Alive    bool    `json:"alive"`
	Immunity int     `json:"immunity"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// LobbyState is the full reconciliation snapshot; applying it twice is safe.
type LobbyState struct {
	HostID        string          `json:"hostId"`
	MatchHasBegun bool            `json:"matchHasBegun"`
	RoundNumber   int             `json:"roundNumber"`
	Players       []PlayerInfo    `json:"players"`
	PlayerSlots   map[string]Slot `json:"playerSlots"`
}

type UpdateInfo struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Immunity  int     `json:"immunity"`
	Spectator bool    `json:"spectator"`
	Role      Slot    `json:"role"`
}

type DeleteInfo struct {
	ID string `json:"id"`
}

type RoundStartInfo struct {
	HostID        string `json:"hostId"`
	StartTime     int64  `json:"startTime"`
	TotalTime     int64  `json:"totalTime"`
	RoundNumber   int    `json:"roundNumber"`
	MatchHasBegun bool   `json:"matchHasBegun"`
	SuddenDeath   bool   `json:"suddenDeath"`
}

type RoundRolesInfo struct {
	HostID         string          `json:"hostId"`
	ZoneRoles      map[string]Role `json:"zoneRoles"`
	HighlightStart int64           `json:"highlightStart"`
	SuddenDeath    bool            `json:"suddenDeath"`
	RoundNumber    int             `json:"roundNumber"`
}

type Stats struct {
	LobbyCount        int `json:"lobbyCount"`
	ActivePlayers     int `json:"activePlayers"`
	EliminatedPlayers int `json:"eliminatedPlayers"`
	PassiveSpectators int `json:"passiveSpectators"`
}

// SystemMsg carries a user-facing notice; receivers display the newest stamp.
type SystemMsg struct {
	Msg   string `json:"msg"`
	Stamp int64  `json:"stamp"`
}
