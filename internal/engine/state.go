package engine

import (
	"math/rand"
	"time"
)

type Slot string

const (
	// SlotActive occupies a gameplay slot and can be eliminated.
	SlotActive Slot = "player"
	// SlotObserver is present but never competes.
	SlotObserver Slot = "passive"
)

type Role string

const (
	RoleElimination Role = "elimination"
	RoleSurvival    Role = "survival"
	RoleImmunity    Role = "immunity"
)

type Phase string

const (
	PhaseLobby        Phase = "lobby"
	PhaseRoundActive  Phase = "round"
	PhaseIntermission Phase = "intermission"
)

const (
	MaxImmunity       = 2
	LobbyStartPlayers = 6
	MaxActive         = 10

	RoundDuration     = 20 * time.Second
	FastRoundDuration = 10 * time.Second
	// Rounds from this number on use the fast duration.
	FastRoundFrom = 6

	HighlightDuration  = 2500 * time.Millisecond
	IntermissionDelay  = 4 * time.Second
	GameOverResetDelay = 5 * time.Second
	HeartbeatInterval  = 2 * time.Second

	MaxNameLen = 20

	// OffBoard is the sentinel coordinate reported for observers.
	OffBoard = -9999.0

	spawnScatter = 40.0
)

// Participant is one connected session's record.
type Participant struct {
	ID       string
	Name     string
	JoinTime time.Time
	// order is the registry insertion sequence, the tie-break when two
	// participants share a JoinTime.
	order    int
	Joined   bool
	Slot     Slot
	Alive    bool
	Immunity int
	X, Y     float64
	LastSeen time.Time
}

// State is the complete authoritative state of one match. It is owned and
// mutated exclusively by the serialized loop that calls Apply; nothing here
// is safe for concurrent use.
type State struct {
	Participants map[string]*Participant

	HostID        string
	Phase         Phase
	MatchHasBegun bool
	RoundNumber   int
	RoundStart    time.Time
	RoundLength   time.Duration
	SuddenDeath   bool
	ZoneRoles     map[string]Role

	// IntermissionUntil gates the host's next round-start request.
	IntermissionUntil time.Time
	// ResetAt, when set, is the deadline for the game-over return to lobby.
	ResetAt time.Time

	lastHeartbeat time.Time
	nextOrder     int
	nextGuest     int
	rng           *rand.Rand
}

// NewState builds an empty lobby-phase match. rng drives zone-role assignment
// and spawn scatter; pass a seeded source in tests for determinism.
func NewState(rng *rand.Rand) *State {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &State{
		Participants: make(map[string]*Participant),
		Phase:        PhaseLobby,
		RoundLength:  RoundDuration,
		nextGuest:    1,
		rng:          rng,
	}
}

// joinedByPriority returns the joined participants ordered by join time,
// registry insertion order breaking ties. This ordering decides both host
// election and slot allocation.
func (s *State) joinedByPriority() []*Participant {
	out := make([]*Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		if p.Joined {
			out = append(out, p)
		}
	}
	sortParticipants(out)
	return out
}

func sortParticipants(ps []*Participant) {
	// Insertion sort; rosters are small.
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && less(ps[j], ps[j-1]); j-- {
			ps[j], ps[j-1] = ps[j-1], ps[j]
		}
	}
}

func less(a, b *Participant) bool {
	if !a.JoinTime.Equal(b.JoinTime) {
		return a.JoinTime.Before(b.JoinTime)
	}
	return a.order < b.order
}

func (s *State) countAliveActive() int {
	n := 0
	for _, p := range s.Participants {
		if p.Joined && p.Slot == SlotActive && p.Alive {
			n++
		}
	}
	return n
}

func (s *State) countJoinedActive() int {
	n := 0
	for _, p := range s.Participants {
		if p.Joined && p.Slot == SlotActive {
			n++
		}
	}
	return n
}

// soleSurvivorName names the last alive competitor, "Unknown" when none.
func (s *State) soleSurvivorName() string {
	for _, p := range s.Participants {
		if p.Joined && p.Slot == SlotActive && p.Alive {
			return p.Name
		}
	}
	return "Unknown"
}

func (s *State) spawnScatterPos() (float64, float64) {
	x := SpawnRegion.CenterX() + (s.rng.Float64()*2-1)*spawnScatter
	y := SpawnRegion.CenterY() + (s.rng.Float64()*2-1)*spawnScatter
	return x, y
}
