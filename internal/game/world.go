// Package game implements the domain store and the team, challenge, match, combat and chest rules
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"ship-battle/internal/store"
)

// UserStore is the persistent account collaborator
type UserStore interface {
	Load() error
	Find(username string) (*store.User, error)
	Create(username, credential string, coin int64) (*store.User, error)
	AdjustCoin(username string, delta int64) (int64, error)
	SetStatus(username string, status store.Status) error
	Persist() error
}

// Options tunes a World
type Options struct {
	StartingCoin   int64
	MatchWinReward int64
	Rand           *rand.Rand
	Now            func() time.Time
}

// World owns every in-memory table of the game. It is not safe for concurrent
// use: all calls must come from the reactor goroutine.
type World struct {
	users UserStore
	opts  Options
	rand  *rand.Rand
	now   func() time.Time

	teams      []*Team // id = index + 1
	members    []*TeamMember
	requests   []*JoinRequest
	invites    []*TeamInvite
	challenges []*Challenge // id = index + 1
	matches    []*Match     // id = index + 1

	ships     map[int][]*Ship // by match id, in team order
	chests    map[int]*Chest  // one slot per match id
	chestByID map[int]*Chest
	nextChest int
}

// Stats is a point-in-time summary of the world
type Stats struct {
	ActiveTeams    int `json:"active_teams"`
	RunningMatches int `json:"running_matches"`
	OpenChests     int `json:"open_chests"`
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// NewWorld creates an empty world backed by the given user store
func NewWorld(users UserStore, opts Options) *World {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &World{
		users:     users,
		opts:      opts,
		rand:      opts.Rand,
		now:       opts.Now,
		ships:     make(map[int][]*Ship),
		chests:    make(map[int]*Chest),
		chestByID: make(map[int]*Chest),
	}
}

// Users returns the user store
func (w *World) Users() UserStore {
	return w.users
}

// Register validates and creates an account credited with the starting balance
func (w *World) Register(username, password string) (*store.User, error) {
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen || !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen || strings.ContainsAny(password, " \t") {
		return nil, ErrInvalidPassword
	}

	credential, err := store.HashCredential(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	user, err := w.users.Create(username, credential, w.opts.StartingCoin)
	if err != nil {
		return nil, err
	}

	// the account is live even when this write fails; the persist job retries it
	if err := w.users.Persist(); err != nil {
		return nil, fmt.Errorf("failed to persist new user: %w", err)
	}

	return user, nil
}

// Authenticate checks credentials and the account status
func (w *World) Authenticate(username, password string) (*store.User, error) {
	user, err := w.users.Find(username)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := store.VerifyCredential(user.Credential, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned() {
		return nil, ErrBanned
	}

	return user, nil
}

// Coin returns a user's balance
func (w *World) Coin(username string) (int64, error) {
	user, err := w.users.Find(username)
	if err != nil {
		return 0, err
	}
	return user.Coin, nil
}

// Ban marks an account banned; live sessions are the caller's concern
func (w *World) Ban(username string) error {
	return w.users.SetStatus(username, store.StatusBanned)
}

// Stats summarises the world
func (w *World) Stats() Stats {
	var st Stats
	for _, t := range w.teams {
		if t.IsActive() {
			st.ActiveTeams++
		}
	}
	for _, m := range w.matches {
		if m.Status == MatchRunning {
			st.RunningMatches++
		}
	}
	for _, c := range w.chests {
		if !c.Collected {
			st.OpenChests++
		}
	}
	return st
}
