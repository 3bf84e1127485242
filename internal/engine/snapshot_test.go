package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshot_OrderedByJoinPriority(t *testing.T) {
	s := newTestState()
	connectAndJoin(t, s, "c", "Carol", t0.Add(3*time.Second))
	connectAndJoin(t, s, "a", "Alice", t0.Add(1*time.Second))
	connectAndJoin(t, s, "b", "Bob", t0.Add(2*time.Second))

	snap := s.Snapshot()
	require.Len(t, snap.Players, 3)
	require.Equal(t, "a", snap.Players[0].ID)
	require.Equal(t, "b", snap.Players[1].ID)
	require.Equal(t, "c", snap.Players[2].ID)
	require.Equal(t, "a", snap.HostID)

	for _, p := range snap.Players {
		require.Equal(t, p.Slot, snap.PlayerSlots[p.ID])
	}
}

func TestSnapshot_ExcludesUnjoinedConnections(t *testing.T) {
	s := newTestState()
	mustApply(t, s, Command{Type: CmdConnect, From: "watcher", At: t0})
	connectAndJoin(t, s, "a", "Alice", t0.Add(time.Second))

	snap := s.Snapshot()
	require.Len(t, snap.Players, 1)
	require.NotContains(t, snap.PlayerSlots, "watcher")
}

func TestSnapshot_JSONShape(t *testing.T) {
	s := newTestState()
	connectAndJoin(t, s, "a", "Alice", t0.Add(time.Second))

	raw, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, field := range []string{"hostId", "matchHasBegun", "roundNumber", "players", "playerSlots"} {
		require.Contains(t, decoded, field)
	}

	players := decoded["players"].([]any)
	require.Len(t, players, 1)
	first := players[0].(map[string]any)
	require.Equal(t, "Alice", first["name"])
	require.Equal(t, string(SlotActive), first["slot"])
	require.EqualValues(t, t0.Add(time.Second).UnixMilli(), first["joinTime"])
}

func TestStatsSnapshot_CountsByStanding(t *testing.T) {
	s := newTestState()
	ids := joinN(t, s, MaxActive+2)
	startMatch(t, s, t0.Add(time.Minute))

	// Knock one competitor out so all three buckets are populated.
	mustApply(t, s, Command{Type: CmdRequestDelete, From: ids[0], Target: ids[1], At: t0.Add(2 * time.Minute)})

	st := s.StatsSnapshot()
	require.Equal(t, MaxActive+2, st.LobbyCount)
	require.Equal(t, MaxActive-1, st.ActivePlayers)
	require.Equal(t, 1, st.EliminatedPlayers)
	require.Equal(t, 2, st.PassiveSpectators)
}

func TestStatsSnapshot_EmptyState(t *testing.T) {
	s := newTestState()
	require.Zero(t, s.StatsSnapshot())
}
