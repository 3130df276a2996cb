package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func answerOf(c *Chest) string {
	return puzzles[c.Tier][c.puzzle].Answer
}

func TestSpawnChest(t *testing.T) {
	w, _, m := newTestMatch(t)

	c, err := w.SpawnChest(m.ID)
	require.NoError(t, err)
	require.Equal(t, m.ID, c.MatchID)
	require.GreaterOrEqual(t, c.X, 0)
	require.Less(t, c.X, MapSize)
	require.GreaterOrEqual(t, c.Y, 0)
	require.Less(t, c.Y, MapSize)

	spec, ok := TierSpecFor(c.Tier)
	require.True(t, ok)
	require.Equal(t, spec.Reward, c.Reward)
	require.Same(t, c, w.ChestOf(m.ID))

	_, err = w.SpawnChest(m.ID + 1)
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSpawnChestSupersedesPrevious(t *testing.T) {
	w, _, m := newTestMatch(t)

	first, err := w.SpawnChest(m.ID)
	require.NoError(t, err)
	second, err := w.SpawnChest(m.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, _, err = w.ChestQuestion(m.ID, first.ID)
	require.ErrorIs(t, err, ErrChestNotFound)
	_, _, err = w.OpenChest("alice", m.ID, first.ID, answerOf(first))
	require.ErrorIs(t, err, ErrChestNotFound)
}

func TestOpenChestOnce(t *testing.T) {
	w, _, m := newTestMatch(t)
	c, err := w.SpawnChest(m.ID)
	require.NoError(t, err)

	_, question, err := w.ChestQuestion(m.ID, c.ID)
	require.NoError(t, err)
	require.NotEmpty(t, question)

	_, _, err = w.OpenChest("alice", m.ID, c.ID, "definitely wrong")
	require.ErrorIs(t, err, ErrWrongAnswer)

	opened, balance, err := w.OpenChest("bob", m.ID, c.ID, "  "+answerOf(c)+" ")
	require.NoError(t, err)
	require.True(t, opened.Collected)
	require.Equal(t, "bob", opened.CollectedBy)
	require.Equal(t, 5000+c.Reward, balance)

	_, _, err = w.OpenChest("alice", m.ID, c.ID, answerOf(c))
	require.ErrorIs(t, err, ErrChestOpened)
	_, _, err = w.ChestQuestion(m.ID, c.ID)
	require.ErrorIs(t, err, ErrChestOpened)
}

func TestOpenChestFromElsewhere(t *testing.T) {
	w, _, m := newTestMatch(t)
	c, err := w.SpawnChest(m.ID)
	require.NoError(t, err)

	_, _, err = w.OpenChest("alice", NoMatch, c.ID, answerOf(c))
	require.ErrorIs(t, err, ErrNotInMatch)
	_, _, err = w.OpenChest("alice", m.ID+1, c.ID, answerOf(c))
	require.ErrorIs(t, err, ErrChestOtherMatch)
	_, _, err = w.OpenChest("alice", m.ID, c.ID+10, answerOf(c))
	require.ErrorIs(t, err, ErrChestNotFound)
}

func TestDrawTierCoversEveryTier(t *testing.T) {
	w, _, _ := newTestWorld(t)

	seen := make(map[ChestTier]int)
	for i := 0; i < 2000; i++ {
		seen[w.drawTier()]++
	}
	require.Len(t, seen, 3)
	require.Greater(t, seen[Bronze], seen[Silver])
	require.Greater(t, seen[Silver], seen[Gold])
}
