package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ship-battle/internal/store"
)

var testEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestWorld(t *testing.T, users ...string) (*World, *store.MemoryStore, *testClock) {
	t.Helper()

	st := store.NewMemoryStore()
	clock := &testClock{now: testEpoch}
	w := NewWorld(st, Options{
		StartingCoin:   5000,
		MatchWinReward: 100,
		Rand:           rand.New(rand.NewSource(42)),
		Now:            clock.Now,
	})

	for _, name := range users {
		_, err := w.Register(name, "P@ssw0rd")
		require.NoError(t, err)
	}
	return w, st, clock
}

// newTestMatch builds two one-member teams (alice on "Red", bob on "Blue") and starts a match
func newTestMatch(t *testing.T) (*World, *store.MemoryStore, *Match) {
	t.Helper()

	w, st, _ := newTestWorld(t, "alice", "bob")
	red, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)
	blue, err := w.CreateTeam("bob", "Blue")
	require.NoError(t, err)

	m, err := w.CreateMatch(red.ID, blue.ID)
	require.NoError(t, err)
	return w, st, m
}

var errStoreDown = errors.New("store unavailable")

// flakyStore fails credits or writes on demand
type flakyStore struct {
	*store.MemoryStore
	failCredit  bool
	failPersist bool
}

func (f *flakyStore) AdjustCoin(username string, delta int64) (int64, error) {
	if f.failCredit && delta > 0 {
		return 0, errStoreDown
	}
	return f.MemoryStore.AdjustCoin(username, delta)
}

func (f *flakyStore) Persist() error {
	if f.failPersist {
		return errStoreDown
	}
	return f.MemoryStore.Persist()
}

func newFlakyWorld(t *testing.T, users ...string) (*World, *flakyStore, *testClock) {
	t.Helper()

	st := &flakyStore{MemoryStore: store.NewMemoryStore()}
	clock := &testClock{now: testEpoch}
	w := NewWorld(st, Options{
		StartingCoin:   5000,
		MatchWinReward: 100,
		Rand:           rand.New(rand.NewSource(42)),
		Now:            clock.Now,
	})

	for _, name := range users {
		_, err := w.Register(name, "P@ssw0rd")
		require.NoError(t, err)
	}
	return w, st, clock
}
