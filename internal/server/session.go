package server

import (
	"errors"
	"sort"
	"time"

	"ship-battle/internal/game"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrLoggedInElsewhere = errors.New("user already logged in elsewhere")
	ErrConnLoggedIn      = errors.New("connection already logged in")
	ErrNotLoggedIn       = errors.New("not logged in")
)

// conn is the slice of a reactor connection the server writes through
type conn interface {
	ID() uint64
	RemoteAddr() string
	Write(p []byte) error
	CloseAfterFlush()
}

// Session is the server-side state of one live connection
type Session struct {
	ConnID      uint64
	RemoteAddr  string
	LoggedIn    bool
	Username    string
	TeamID      int
	MatchID     int
	ConnectedAt time.Time
	LoginAt     time.Time

	conn conn
}

// Sessions indexes live sessions by connection id and by logged-in username.
// It has no locks; only the reactor goroutine touches it.
type Sessions struct {
	byConn map[uint64]*Session
	byUser map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{
		byConn: make(map[uint64]*Session),
		byUser: make(map[string]*Session),
	}
}

// Create registers an anonymous session for c. Creating twice for the same
// connection returns the existing session.
func (s *Sessions) Create(c conn) *Session {
	if sess, ok := s.byConn[c.ID()]; ok {
		return sess
	}
	sess := &Session{
		ConnID:      c.ID(),
		RemoteAddr:  c.RemoteAddr(),
		TeamID:      game.NoTeam,
		MatchID:     game.NoMatch,
		ConnectedAt: time.Now(),
		conn:        c,
	}
	s.byConn[c.ID()] = sess
	return sess
}

func (s *Sessions) Get(connID uint64) *Session {
	return s.byConn[connID]
}

// GetByUsername returns the logged-in session of username, or nil
func (s *Sessions) GetByUsername(username string) *Session {
	return s.byUser[username]
}

// Login binds username to the session. A username can be bound to one
// session at a time.
func (s *Sessions) Login(connID uint64, username string) (*Session, error) {
	sess, ok := s.byConn[connID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.LoggedIn {
		return nil, ErrConnLoggedIn
	}
	if _, taken := s.byUser[username]; taken {
		return nil, ErrLoggedInElsewhere
	}

	sess.LoggedIn = true
	sess.Username = username
	sess.LoginAt = time.Now()
	s.byUser[username] = sess
	return sess, nil
}

// Logout returns the session to the anonymous state
func (s *Sessions) Logout(connID uint64) error {
	sess, ok := s.byConn[connID]
	if !ok {
		return ErrSessionNotFound
	}
	if !sess.LoggedIn {
		return ErrNotLoggedIn
	}

	delete(s.byUser, sess.Username)
	sess.LoggedIn = false
	sess.Username = ""
	sess.TeamID = game.NoTeam
	sess.MatchID = game.NoMatch
	return nil
}

// Remove drops the session of a closed connection. Removing twice is a no-op
// and returns nil the second time.
func (s *Sessions) Remove(connID uint64) *Session {
	sess, ok := s.byConn[connID]
	if !ok {
		return nil
	}
	if sess.LoggedIn && s.byUser[sess.Username] == sess {
		delete(s.byUser, sess.Username)
	}
	delete(s.byConn, connID)
	return sess
}

// Each visits sessions in connection id order
func (s *Sessions) Each(fn func(*Session)) {
	ids := make([]uint64, 0, len(s.byConn))
	for id := range s.byConn {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		fn(s.byConn[id])
	}
}

// Count returns the number of live sessions
func (s *Sessions) Count() int {
	return len(s.byConn)
}

// LoggedInCount returns the number of authenticated sessions
func (s *Sessions) LoggedInCount() int {
	return len(s.byUser)
}
