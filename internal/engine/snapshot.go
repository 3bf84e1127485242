package engine

import "time"

// Snapshot builds the authoritative LobbyState payload. Players are ordered
// by join priority so repeated snapshots of the same state are identical.
func (s *State) Snapshot() LobbyState {
	joined := s.joinedByPriority()
	players := make([]PlayerInfo, 0, len(joined))
	slots := make(map[string]Slot, len(joined))
	for _, p := range joined {
		players = append(players, PlayerInfo{
			ID:       p.ID,
			Name:     p.Name,
			JoinTime: p.JoinTime.UnixMilli(),
			Slot:     p.Slot,
			Alive:    p.Alive,
			Immunity: p.Immunity,
			X:        p.X,
			Y:        p.Y,
		})
		slots[p.ID] = p.Slot
	}
	return LobbyState{
		HostID:        s.HostID,
		MatchHasBegun: s.MatchHasBegun,
		RoundNumber:   s.RoundNumber,
		Players:       players,
		PlayerSlots:   slots,
	}
}

// StatsSnapshot counts joined participants by their competitive standing.
func (s *State) StatsSnapshot() Stats {
	var st Stats
	for _, p := range s.Participants {
		if !p.Joined {
			continue
		}
		st.LobbyCount++
		switch {
		case p.Slot == SlotObserver:
			st.PassiveSpectators++
		case p.Alive:
			st.ActivePlayers++
		default:
			st.EliminatedPlayers++
		}
	}
	return st
}

// snapshotEffects is the broadcast pair appended after every state-changing
// transition: the full snapshot plus the derived stats.
func (s *State) snapshotEffects() []Effect {
	snap := s.Snapshot()
	stats := s.StatsSnapshot()
	return []Effect{
		{LobbyState: &snap},
		{Stats: &stats},
	}
}

func systemBroadcast(msg string, at time.Time) Effect {
	return Effect{System: &SystemMsg{Msg: msg, Stamp: at.UnixMilli()}}
}

func systemUnicast(to, msg string, at time.Time) Effect {
	return Effect{To: to, System: &SystemMsg{Msg: msg, Stamp: at.UnixMilli()}}
}
