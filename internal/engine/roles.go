package engine

// Normal-mode role split over the six zones.
const (
	immunityZones    = 1
	eliminationZones = 2
)

// AssignZoneRoles draws a fresh role mapping for one round: an unbiased
// shuffle of the active zone keys sliced into fixed-size groups. Normal mode
// over six zones yields 1 immunity, 2 elimination, 3 survival; sudden death
// over the reduced set yields 1 elimination, 2 survival and no immunity.
func (s *State) AssignZoneRoles(suddenDeath bool) map[string]Role {
	roles := make(map[string]Role)
	if suddenDeath {
		keys := s.shuffledKeys(SuddenDeathKeys)
		roles[keys[0]] = RoleElimination
		for _, k := range keys[1:] {
			roles[k] = RoleSurvival
		}
		return roles
	}

	all := make([]string, len(Zones))
	for i, z := range Zones {
		all[i] = z.Key
	}
	keys := s.shuffledKeys(all)
	for _, k := range keys[:immunityZones] {
		roles[k] = RoleImmunity
	}
	for _, k := range keys[immunityZones : immunityZones+eliminationZones] {
		roles[k] = RoleElimination
	}
	for _, k := range keys[immunityZones+eliminationZones:] {
		roles[k] = RoleSurvival
	}
	return roles
}

func (s *State) shuffledKeys(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
