package engine

// World geometry. Coordinates are world-space with the origin at the top-left;
// the banner strip at the top is not playable.
const (
	WorldSize = 1000.0
	BannerH   = 110.0
)

// Rect is an axis-aligned rectangle with inclusive bounds.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Zone is one named roulette region of the arena.
type Zone struct {
	Key string `json:"key"`
	Rect
}

// SpawnRegion is where competitors respawn. Standing in it at round expiry is
// an unconditional elimination.
var SpawnRegion = Rect{X: 350, Y: 180, W: 300, H: 300}

// Six roulette zones, two rows of three.
var Zones = []Zone{
	{Key: "red", Rect: Rect{X: 100, Y: 500, W: 220, H: 220}},
	{Key: "green", Rect: Rect{X: 390, Y: 500, W: 220, H: 220}},
	{Key: "blue", Rect: Rect{X: 680, Y: 500, W: 220, H: 220}},
	{Key: "orange", Rect: Rect{X: 100, Y: 745, W: 220, H: 220}},
	{Key: "yellow", Rect: Rect{X: 390, Y: 745, W: 220, H: 220}},
	{Key: "violet", Rect: Rect{X: 680, Y: 745, W: 220, H: 220}},
}

// SuddenDeathKeys is the reduced zone set used when two competitors remain.
var SuddenDeathKeys = []string{"red", "green", "blue"}

func isSuddenDeathKey(key string) bool {
	for _, k := range SuddenDeathKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ZoneAt returns the key of the active zone containing (x, y). In sudden death
// only the reduced set counts; the other three zones are out of play.
func ZoneAt(x, y float64, suddenDeath bool) (string, bool) {
	for _, z := range Zones {
		if suddenDeath && !isSuddenDeathKey(z.Key) {
			continue
		}
		if z.Contains(x, y) {
			return z.Key, true
		}
	}
	return "", false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampToWorld clips a reported position into the playable area. The banner
// strip is excluded vertically.
func ClampToWorld(x, y float64) (float64, float64) {
	return clamp(x, 0, WorldSize), clamp(y, BannerH, WorldSize)
}
