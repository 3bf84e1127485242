package engine

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"
)

var ErrUnknownParticipant = errors.New("unknown participant")
var ErrNotHost = errors.New("requester is not the host")
var ErrLobbyNotReady = errors.New("not enough players to start")
var ErrRoundRunning = errors.New("round already running")
var ErrIntermission = errors.New("intermission still in progress")
var ErrMatchOver = errors.New("match is over")
var ErrUnsupportedCommand = errors.New("unsupported command")

// Apply is the single serialized entry point for every inbound intent and the
// periodic tick. It mutates s and returns the outbound effects to deliver.
// Errors are advisory (for logging); any user-facing rejection is already in
// the returned effects as a private system message.
func Apply(s *State, cmd Command) ([]Effect, error) {
	switch cmd.Type {
	case CmdConnect:
		return applyConnect(s, cmd)
	case CmdJoin:
		return applyJoin(s, cmd)
	case CmdUpdate:
		return applyUpdate(s, cmd)
	case CmdRequestDelete:
		return applyRequestDelete(s, cmd)
	case CmdRequestRoundStart:
		return applyRequestRoundStart(s, cmd)
	case CmdDisconnect:
		return applyDisconnect(s, cmd)
	case CmdTick:
		return applyTick(s, cmd.At), nil
	default:
		return nil, ErrUnsupportedCommand
	}
}

func applyConnect(s *State, cmd Command) ([]Effect, error) {
	if _, ok := s.Participants[cmd.From]; ok {
		return nil, nil
	}
	p := &Participant{
		ID:       cmd.From,
		order:    s.nextOrder,
		Slot:     SlotObserver,
		X:        OffBoard,
		Y:        OffBoard,
		LastSeen: cmd.At,
	}
	s.nextOrder++
	s.Participants[cmd.From] = p

	w := &Welcome{
		ID:          cmd.From,
		WorldSize:   WorldSize,
		BannerH:     BannerH,
		Spawn:       SpawnRegion,
		Zones:       Zones,
		MaxImmunity: MaxImmunity,
	}
	return []Effect{{To: cmd.From, Welcome: w}}, nil
}

func applyJoin(s *State, cmd Command) ([]Effect, error) {
	p, ok := s.Participants[cmd.From]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	p.LastSeen = cmd.At
	p.Name = s.sanitizeName(cmd.Name)

	var fx []Effect
	if !p.Joined {
		// First join fixes the priority timestamp; duplicates only
		// refresh the name.
		p.Joined = true
		p.JoinTime = cmd.At
		s.recomputeSlots()
		fx = append(fx, systemBroadcast(p.Name+" joined", cmd.At))
	}
	if s.electHostIfNeeded() {
		fx = append(fx, s.hostChangedEffect(cmd.At))
	}
	fx = append(fx, s.snapshotEffects()...)
	return fx, nil
}

func applyUpdate(s *State, cmd Command) ([]Effect, error) {
	p, ok := s.Participants[cmd.From]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	p.LastSeen = cmd.At
	if p.Joined && p.Slot == SlotActive && p.Alive {
		p.X, p.Y = ClampToWorld(cmd.X, cmd.Y)
	}
	if !p.Joined {
		return nil, nil
	}
	// Relay carries the server-side record, never the reported payload:
	// id, standing and position are all authoritative here.
	u := &UpdateInfo{
		ID:        p.ID,
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		Immunity:  p.Immunity,
		Spectator: !p.Alive,
		Role:      p.Slot,
	}
	return []Effect{{Update: u}}, nil
}

func applyRequestDelete(s *State, cmd Command) ([]Effect, error) {
	req, ok := s.Participants[cmd.From]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	req.LastSeen = cmd.At

	target := cmd.Target
	if target == "" {
		target = cmd.From
	}
	p, ok := s.Participants[target]
	if !ok || !p.Joined {
		return nil, ErrUnknownParticipant
	}
	if p.Slot != SlotActive || !p.Alive {
		// Already out, or never competing: idempotent no-op.
		return nil, nil
	}
	eliminate(p)
	fx := []Effect{{Delete: &DeleteInfo{ID: p.ID}}}
	fx = append(fx, s.snapshotEffects()...)
	return fx, nil
}

func applyRequestRoundStart(s *State, cmd Command) ([]Effect, error) {
	p, ok := s.Participants[cmd.From]
	if !ok {
		return nil, ErrUnknownParticipant
	}
	p.LastSeen = cmd.At

	reject := func(msg string, err error) ([]Effect, error) {
		return []Effect{systemUnicast(cmd.From, msg, cmd.At)}, err
	}

	if cmd.From != s.HostID {
		return reject("Only the host can start a round.", ErrNotHost)
	}
	switch s.Phase {
	case PhaseRoundActive:
		return reject("A round is already running.", ErrRoundRunning)
	case PhaseLobby:
		if n := s.countJoinedActive(); n < LobbyStartPlayers {
			return reject(fmt.Sprintf("Need %d players to start (%d ready).", LobbyStartPlayers, n), ErrLobbyNotReady)
		}
	case PhaseIntermission:
		if cmd.At.Before(s.IntermissionUntil) {
			return reject("Hold on, the next round opens shortly.", ErrIntermission)
		}
		if s.countAliveActive() <= 1 {
			return reject("The match is over.", ErrMatchOver)
		}
	}
	return s.startRound(cmd.At), nil
}

func applyDisconnect(s *State, cmd Command) ([]Effect, error) {
	p, ok := s.Participants[cmd.From]
	if !ok {
		return nil, nil
	}
	delete(s.Participants, cmd.From)

	var fx []Effect
	if p.Joined {
		fx = append(fx, systemBroadcast(p.Name+" left", cmd.At))
	}
	s.recomputeSlots()
	if s.electHostIfNeeded() {
		fx = append(fx, s.hostChangedEffect(cmd.At))
	}
	if p.Joined {
		fx = append(fx, s.snapshotEffects()...)
	}
	return fx, nil
}

func applyTick(s *State, at time.Time) []Effect {
	var fx []Effect
	if s.Phase == PhaseRoundActive && !at.Before(s.RoundStart.Add(s.RoundLength)) {
		fx = append(fx, s.endRound(at)...)
	}
	if s.Phase == PhaseIntermission && !s.ResetAt.IsZero() && !at.Before(s.ResetAt) {
		fx = append(fx, s.resetToLobby(at)...)
	}
	if at.Sub(s.lastHeartbeat) >= HeartbeatInterval {
		// Reconciliation resend for clients that missed an event.
		s.lastHeartbeat = at
		fx = append(fx, s.snapshotEffects()...)
	}
	return fx
}

// startRound performs the LOBBY/INTERMISSION -> ROUND_ACTIVE entry: roster
// freeze on the first round, sudden-death evaluation fixed for the whole
// round, duration selection, and the ahead-of-time role publication.
func (s *State) startRound(at time.Time) []Effect {
	if !s.MatchHasBegun {
		s.recomputeSlots()
		s.MatchHasBegun = true
		s.RoundNumber = 1
	} else {
		s.RoundNumber++
	}
	s.SuddenDeath = s.countAliveActive() == 2
	if s.RoundNumber >= FastRoundFrom {
		s.RoundLength = FastRoundDuration
	} else {
		s.RoundLength = RoundDuration
	}
	s.RoundStart = at
	s.Phase = PhaseRoundActive
	s.IntermissionUntil = time.Time{}
	s.ZoneRoles = s.AssignZoneRoles(s.SuddenDeath)

	roles := make(map[string]Role, len(s.ZoneRoles))
	maps.Copy(roles, s.ZoneRoles)
	start := &RoundStartInfo{
		HostID:        s.HostID,
		StartTime:     at.UnixMilli(),
		TotalTime:     s.RoundLength.Milliseconds(),
		RoundNumber:   s.RoundNumber,
		MatchHasBegun: true,
		SuddenDeath:   s.SuddenDeath,
	}
	highlight := &RoundRolesInfo{
		HostID:         s.HostID,
		ZoneRoles:      roles,
		HighlightStart: at.UnixMilli(),
		SuddenDeath:    s.SuddenDeath,
		RoundNumber:    s.RoundNumber,
	}
	fx := []Effect{{RoundStart: start}, {RoundRoles: highlight}}
	fx = append(fx, s.snapshotEffects()...)
	return fx
}

// endRound is the ROUND_ACTIVE -> INTERMISSION transition at expiry. The
// published roles are consumed exactly once, then cleared.
func (s *State) endRound(at time.Time) []Effect {
	eliminated := s.resolveRound()
	s.ZoneRoles = nil
	s.Phase = PhaseIntermission
	s.IntermissionUntil = at.Add(IntermissionDelay)

	var fx []Effect
	for _, id := range eliminated {
		fx = append(fx, Effect{Delete: &DeleteInfo{ID: id}})
	}
	if s.countAliveActive() <= 1 {
		s.ResetAt = at.Add(GameOverResetDelay)
		fx = append(fx, systemBroadcast("Game over! Winner: "+s.soleSurvivorName(), at))
	}
	fx = append(fx, s.snapshotEffects()...)
	return fx
}

// resetToLobby is the INTERMISSION -> LOBBY transition after game over. Slot
// allocation re-opens and every joined participant is respawned.
func (s *State) resetToLobby(at time.Time) []Effect {
	s.Phase = PhaseLobby
	s.MatchHasBegun = false
	s.RoundNumber = 0
	s.SuddenDeath = false
	s.ZoneRoles = nil
	s.RoundStart = time.Time{}
	s.RoundLength = RoundDuration
	s.IntermissionUntil = time.Time{}
	s.ResetAt = time.Time{}

	for _, p := range s.Participants {
		if !p.Joined {
			continue
		}
		p.Slot = SlotObserver
		p.Alive = false
		p.Immunity = 0
		p.X, p.Y = OffBoard, OffBoard
	}
	s.recomputeSlots()

	var fx []Effect
	if s.electHostIfNeeded() {
		fx = append(fx, s.hostChangedEffect(at))
	}
	fx = append(fx, s.snapshotEffects()...)
	return fx
}

// recomputeSlots packs the first MaxActive joined participants by join
// priority into gameplay slots. Once the match has begun the roster is frozen:
// late joiners stay observers and vacated slots are not backfilled.
func (s *State) recomputeSlots() {
	if s.MatchHasBegun {
		return
	}
	for i, p := range s.joinedByPriority() {
		if i < MaxActive {
			s.setSlot(p, SlotActive)
		} else {
			s.setSlot(p, SlotObserver)
		}
	}
}

func (s *State) setSlot(p *Participant, slot Slot) {
	if p.Slot == slot {
		return
	}
	p.Slot = slot
	p.Immunity = 0
	if slot == SlotActive {
		p.Alive = true
		p.X, p.Y = s.spawnScatterPos()
	} else {
		p.Alive = false
		p.X, p.Y = OffBoard, OffBoard
	}
}

// electHostIfNeeded re-evaluates the host only when the current one is gone
// or no longer holds a gameplay slot. The sitting host is never displaced by
// an earlier joiner reconnecting; stability under churn wins over strict
// minimality.
func (s *State) electHostIfNeeded() bool {
	if s.HostID != "" {
		if p, ok := s.Participants[s.HostID]; ok && p.Joined && p.Slot == SlotActive {
			return false
		}
	}
	prev := s.HostID
	s.HostID = ""
	for _, p := range s.joinedByPriority() {
		if p.Slot == SlotActive {
			s.HostID = p.ID
			break
		}
	}
	return s.HostID != prev
}

func (s *State) hostChangedEffect(at time.Time) Effect {
	if s.HostID == "" {
		return systemBroadcast("The match has no host.", at)
	}
	return systemBroadcast(s.Participants[s.HostID].Name+" is now the host", at)
}

func (s *State) sanitizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		name = fmt.Sprintf("Player%d", s.nextGuest)
		s.nextGuest++
	}
	if r := []rune(name); len(r) > MaxNameLen {
		name = string(r[:MaxNameLen])
	}
	return name
}
