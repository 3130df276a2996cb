package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ship-battle/internal/game"
)

func TestSessionLifecycle(t *testing.T) {
	ss := NewSessions()
	c1, c2 := &fakeConn{id: 1}, &fakeConn{id: 2}

	s1 := ss.Create(c1)
	require.Same(t, s1, ss.Create(c1))
	ss.Create(c2)
	require.Equal(t, 2, ss.Count())
	require.Equal(t, game.NoTeam, s1.TeamID)
	require.Equal(t, game.NoMatch, s1.MatchID)

	_, err := ss.Login(1, "alice")
	require.NoError(t, err)
	require.Same(t, s1, ss.GetByUsername("alice"))

	_, err = ss.Login(1, "bob")
	require.ErrorIs(t, err, ErrConnLoggedIn)
	_, err = ss.Login(2, "alice")
	require.ErrorIs(t, err, ErrLoggedInElsewhere)
	_, err = ss.Login(9, "carol")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, ss.Logout(1))
	require.ErrorIs(t, ss.Logout(1), ErrNotLoggedIn)
	require.Nil(t, ss.GetByUsername("alice"))

	_, err = ss.Login(2, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, ss.LoggedInCount())
}

func TestSessionRemoveIsIdempotent(t *testing.T) {
	ss := NewSessions()
	ss.Create(&fakeConn{id: 1})
	_, err := ss.Login(1, "alice")
	require.NoError(t, err)

	require.NotNil(t, ss.Remove(1))
	require.Nil(t, ss.Remove(1))
	require.Nil(t, ss.Get(1))
	require.Nil(t, ss.GetByUsername("alice"))
	require.Zero(t, ss.Count())
}

func TestSessionsEachInConnectionOrder(t *testing.T) {
	ss := NewSessions()
	for _, id := range []uint64{5, 2, 9, 1} {
		ss.Create(&fakeConn{id: id})
	}

	var seen []uint64
	ss.Each(func(s *Session) { seen = append(seen, s.ConnID) })
	require.Equal(t, []uint64{1, 2, 5, 9}, seen)
}
