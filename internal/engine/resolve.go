package engine

// Outcome reports what the resolver did to one participant.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeEliminated
	OutcomeImmunitySpent
	OutcomeImmunityGained
)

// eliminate is the one-way transition out of the match. Idempotent.
func eliminate(p *Participant) {
	p.Alive = false
	p.Immunity = 0
}

// resolveOne applies the round outcome to a single alive competitor. Rules in
// priority order: spawn region or no zone at all is an unconditional
// elimination; otherwise the occupied zone's role decides, with immunity
// spendable against elimination outside sudden death and stackable up to
// MaxImmunity.
func resolveOne(p *Participant, roles map[string]Role, suddenDeath bool) Outcome {
	if !p.Alive {
		return OutcomeNone
	}
	if suddenDeath {
		p.Immunity = 0
	}

	if SpawnRegion.Contains(p.X, p.Y) {
		eliminate(p)
		return OutcomeEliminated
	}
	key, ok := ZoneAt(p.X, p.Y, suddenDeath)
	if !ok {
		eliminate(p)
		return OutcomeEliminated
	}

	role, ok := roles[key]
	if !ok {
		// The mapping is total over the active set; a missing role is
		// treated as a no-op rather than a fault.
		return OutcomeNone
	}

	switch role {
	case RoleElimination:
		if !suddenDeath && p.Immunity > 0 {
			p.Immunity--
			return OutcomeImmunitySpent
		}
		eliminate(p)
		return OutcomeEliminated
	case RoleImmunity:
		if suddenDeath {
			return OutcomeNone
		}
		if p.Immunity < MaxImmunity {
			p.Immunity++
		}
		return OutcomeImmunityGained
	default:
		return OutcomeNone
	}
}

// resolveRound settles every alive competitor against the published zone
// roles over one consistent position snapshot. The sudden-death standoff rule
// runs first: any reduced-set zone holding more than one alive competitor
// eliminates all of its occupants regardless of the zone's role. Returns the
// ids eliminated this round, in join-priority order.
func (s *State) resolveRound() []string {
	var out []string

	competitors := make([]*Participant, 0, len(s.Participants))
	for _, p := range s.joinedByPriority() {
		if p.Slot == SlotActive && p.Alive {
			competitors = append(competitors, p)
		}
	}

	if s.SuddenDeath {
		occupants := make(map[string][]*Participant)
		for _, p := range competitors {
			if key, ok := ZoneAt(p.X, p.Y, true); ok {
				occupants[key] = append(occupants[key], p)
			}
		}
		for _, key := range SuddenDeathKeys {
			if len(occupants[key]) > 1 {
				for _, p := range occupants[key] {
					eliminate(p)
					out = append(out, p.ID)
				}
			}
		}
	}

	for _, p := range competitors {
		if resolveOne(p, s.ZoneRoles, s.SuddenDeath) == OutcomeEliminated {
			out = append(out, p.ID)
		}
	}
	return out
}
