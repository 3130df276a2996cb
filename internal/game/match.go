package game

import (
	"errors"
	"fmt"
	"time"
)

// CreateMatch starts a running match between two teams and launches a ship for
// every member of both
func (w *World) CreateMatch(team1ID, team2ID int) (*Match, error) {
	if _, err := w.Team(team1ID); err != nil {
		return nil, err
	}
	if _, err := w.Team(team2ID); err != nil {
		return nil, err
	}
	if team1ID == team2ID {
		return nil, ErrChallengeOwnTeam
	}
	if w.RunningMatchOf(team1ID) != nil || w.RunningMatchOf(team2ID) != nil {
		return nil, ErrTeamBusy
	}

	match := &Match{
		ID:           len(w.matches) + 1,
		Team1ID:      team1ID,
		Team2ID:      team2ID,
		Status:       MatchPending,
		WinnerTeamID: Draw,
	}
	w.matches = append(w.matches, match)

	var ships []*Ship
	for _, teamID := range []int{team1ID, team2ID} {
		for _, name := range w.memberNames(teamID) {
			ships = append(ships, newShip(match.ID, teamID, name))
		}
	}
	w.ships[match.ID] = ships

	match.Status = MatchRunning
	match.StartTime = w.now()
	return match, nil
}

// StartMatch lets a team creator start a match directly against another team
func (w *World) StartMatch(username string, opponentTeamID int) (*Match, error) {
	team, err := w.creatorTeam(username)
	if err != nil {
		return nil, err
	}
	if _, err := w.Team(opponentTeamID); err != nil {
		return nil, err
	}
	return w.CreateMatch(team.ID, opponentTeamID)
}

// Match returns any match by id
func (w *World) Match(id int) (*Match, error) {
	if id < 1 || id > len(w.matches) {
		return nil, ErrMatchNotFound
	}
	return w.matches[id-1], nil
}

// MatchElapsed is the recorded duration of a finished match, or the time since
// a running match started on the world clock
func (w *World) MatchElapsed(match *Match) time.Duration {
	if match.Status == MatchRunning {
		return w.now().Sub(match.StartTime)
	}
	return match.Duration
}

// RunningMatchOf returns the running match a team is playing, or nil
func (w *World) RunningMatchOf(teamID int) *Match {
	for _, m := range w.matches {
		if m.Status == MatchRunning && m.HasTeam(teamID) {
			return m
		}
	}
	return nil
}

// RunningMatches returns every running match ordered by id
func (w *World) RunningMatches() []*Match {
	var out []*Match
	for _, m := range w.matches {
		if m.Status == MatchRunning {
			out = append(out, m)
		}
	}
	return out
}

// MatchIDOf returns the running match id of username's team, or NoMatch
func (w *World) MatchIDOf(username string) int {
	team := w.TeamOf(username)
	if team == nil {
		return NoMatch
	}
	if m := w.RunningMatchOf(team.ID); m != nil {
		return m.ID
	}
	return NoMatch
}

// Participants returns the usernames holding a ship in the match
func (w *World) Participants(matchID int) []string {
	var out []string
	for _, s := range w.ships[matchID] {
		out = append(out, s.Username)
	}
	return out
}

// Ship returns username's ship in the match, or nil
func (w *World) Ship(matchID int, username string) *Ship {
	for _, s := range w.ships[matchID] {
		if s.Username == username {
			return s
		}
	}
	return nil
}

// Ships returns the ships of a match in team order
func (w *World) Ships(matchID int) []*Ship {
	return w.ships[matchID]
}

// CanEndMatch reports whether a side has no ship afloat and who won.
// winner is Draw when both sides are sunk.
func (w *World) CanEndMatch(matchID int) (bool, int) {
	match, err := w.Match(matchID)
	if err != nil || match.Status != MatchRunning {
		return false, Draw
	}

	alive1, alive2 := 0, 0
	for _, s := range w.ships[matchID] {
		if s.IsSunk() {
			continue
		}
		if s.TeamID == match.Team1ID {
			alive1++
		} else {
			alive2++
		}
	}

	switch {
	case alive1 == 0 && alive2 == 0:
		return true, Draw
	case alive1 == 0:
		return true, match.Team2ID
	case alive2 == 0:
		return true, match.Team1ID
	default:
		return false, Draw
	}
}

// EndMatch finishes a match whose end condition holds. The winner's members
// are credited the win reward; ships and the match chest are released.
// When a credit fails the match is still finished: the match is returned
// together with an error wrapping ErrRewardFailed.
func (w *World) EndMatch(username string, matchID int) (*Match, error) {
	match, err := w.Match(matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasTeam(w.TeamIDOf(username)) {
		return nil, ErrNotParticipant
	}
	if match.Status != MatchRunning {
		return nil, ErrMatchNotOver
	}

	over, winner := w.CanEndMatch(matchID)
	if !over {
		return nil, ErrMatchNotOver
	}

	match.Status = MatchFinished
	match.WinnerTeamID = winner
	match.EndTime = w.now()
	match.Duration = match.EndTime.Sub(match.StartTime)

	var rewardErrs []error
	if winner != Draw && w.opts.MatchWinReward > 0 {
		for _, s := range w.ships[matchID] {
			if s.TeamID != winner {
				continue
			}
			if _, err := w.users.AdjustCoin(s.Username, w.opts.MatchWinReward); err != nil {
				rewardErrs = append(rewardErrs, fmt.Errorf("credit %s: %w", s.Username, err))
			}
		}
	}

	delete(w.ships, matchID)
	if chest, ok := w.chests[matchID]; ok {
		delete(w.chestByID, chest.ID)
		delete(w.chests, matchID)
	}

	if len(rewardErrs) > 0 {
		return match, fmt.Errorf("%w: match %d: %w", ErrRewardFailed, matchID, errors.Join(rewardErrs...))
	}
	return match, nil
}

func newShip(matchID, teamID int, username string) *Ship {
	ammo := make(map[Weapon]int, len(Weapons))
	for _, wpn := range Weapons {
		ammo[wpn] = 0
	}
	return &Ship{
		MatchID:  matchID,
		Username: username,
		TeamID:   teamID,
		HP:       ShipMaxHP,
		MaxHP:    ShipMaxHP,
		Ammo:     ammo,
	}
}
