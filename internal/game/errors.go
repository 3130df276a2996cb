package game

import "errors"

// Authentication
var (
	ErrInvalidUsername    = errors.New("username must be 3-20 letters, digits or underscores")
	ErrInvalidPassword    = errors.New("password must be 4-64 characters without spaces")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrBanned             = errors.New("account is banned")
)

// Teams, join requests and invites
var (
	ErrAlreadyInTeam    = errors.New("already in a team")
	ErrTeamNameExists   = errors.New("team name already exists")
	ErrInvalidTeamName  = errors.New("team name must start with a letter and be at most 32 characters")
	ErrTeamNotFound     = errors.New("team not found")
	ErrNotCreator       = errors.New("only the team creator can do that")
	ErrAlreadyPending   = errors.New("a pending request already exists")
	ErrRequestNotFound  = errors.New("no pending request found")
	ErrNotInTeam        = errors.New("not in a team")
	ErrTeamFull         = errors.New("team is full")
	ErrCannotTargetSelf = errors.New("cannot target yourself")
	ErrNotTeamMember    = errors.New("user is not a member of this team")
	ErrTargetInTeam     = errors.New("user is already in a team")
	ErrTeamBusy         = errors.New("team is in a running match")
)

// Challenges
var (
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrChallengeResponded = errors.New("challenge already responded")
	ErrChallengeOwnTeam   = errors.New("cannot challenge your own team")
	ErrChallengePending   = errors.New("a challenge between these teams is already pending")
)

// Matches and combat
var (
	ErrNotInMatch       = errors.New("not in a running match")
	ErrInvalidItem      = errors.New("invalid weapon or armor type")
	ErrTargetNotInMatch = errors.New("target is not in this match")
	ErrFriendlyFire     = errors.New("cannot fire at your own team")
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchNotOver     = errors.New("match cannot end yet")
	ErrNotParticipant   = errors.New("not a participant of this match")
	ErrOutOfAmmo        = errors.New("out of ammo")
	ErrArmorSlotsFull   = errors.New("armor slots are full")
	ErrTargetSunk       = errors.New("target ship already sunk")
	ErrShipSunk         = errors.New("your ship is sunk")
	ErrRewardFailed     = errors.New("match finished but the win reward was not credited")
)

// Treasure chests
var (
	ErrChestNotFound   = errors.New("chest not found")
	ErrChestOpened     = errors.New("chest already opened")
	ErrWrongAnswer     = errors.New("wrong answer")
	ErrChestOtherMatch = errors.New("chest belongs to another match")
)
