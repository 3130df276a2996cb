package game

// SendChallenge lets a creator challenge another team
func (w *World) SendChallenge(username string, targetTeamID int) (*Challenge, error) {
	team, err := w.creatorTeam(username)
	if err != nil {
		return nil, err
	}
	target, err := w.Team(targetTeamID)
	if err != nil {
		return nil, err
	}
	if target.ID == team.ID {
		return nil, ErrChallengeOwnTeam
	}
	if w.RunningMatchOf(team.ID) != nil || w.RunningMatchOf(target.ID) != nil {
		return nil, ErrTeamBusy
	}
	for _, c := range w.challenges {
		if c.Status != ChallengePending {
			continue
		}
		if (c.SenderTeamID == team.ID && c.TargetTeamID == target.ID) ||
			(c.SenderTeamID == target.ID && c.TargetTeamID == team.ID) {
			return nil, ErrChallengePending
		}
	}

	challenge := &Challenge{
		ID:           len(w.challenges) + 1,
		SenderTeamID: team.ID,
		TargetTeamID: target.ID,
		Status:       ChallengePending,
		MatchID:      NoMatch,
		CreatedAt:    w.now(),
	}
	w.challenges = append(w.challenges, challenge)
	return challenge, nil
}

// Challenge returns a challenge by id
func (w *World) Challenge(id int) (*Challenge, error) {
	if id < 1 || id > len(w.challenges) {
		return nil, ErrChallengeNotFound
	}
	return w.challenges[id-1], nil
}

// PendingChallengesFor returns pending challenges targeting a team
func (w *World) PendingChallengesFor(teamID int) []Challenge {
	var out []Challenge
	for _, c := range w.challenges {
		if c.TargetTeamID == teamID && c.Status == ChallengePending {
			out = append(out, *c)
		}
	}
	return out
}

// AcceptChallenge lets the target creator accept; the match is built from the
// stored team ids. A failed match creation leaves the challenge pending.
func (w *World) AcceptChallenge(username string, id int) (*Challenge, *Match, error) {
	challenge, err := w.respondable(username, id, func(c *Challenge) int { return c.TargetTeamID })
	if err != nil {
		return nil, nil, err
	}

	match, err := w.CreateMatch(challenge.SenderTeamID, challenge.TargetTeamID)
	if err != nil {
		return nil, nil, err
	}

	challenge.Status = ChallengeAccepted
	challenge.MatchID = match.ID
	challenge.RespondedAt = w.now()
	return challenge, match, nil
}

// DeclineChallenge lets the target creator turn a challenge down
func (w *World) DeclineChallenge(username string, id int) (*Challenge, error) {
	challenge, err := w.respondable(username, id, func(c *Challenge) int { return c.TargetTeamID })
	if err != nil {
		return nil, err
	}
	challenge.Status = ChallengeDeclined
	challenge.RespondedAt = w.now()
	return challenge, nil
}

// CancelChallenge lets the sender creator withdraw a challenge
func (w *World) CancelChallenge(username string, id int) (*Challenge, error) {
	challenge, err := w.respondable(username, id, func(c *Challenge) int { return c.SenderTeamID })
	if err != nil {
		return nil, err
	}
	challenge.Status = ChallengeCanceled
	challenge.RespondedAt = w.now()
	return challenge, nil
}

// respondable checks that username creates the team selected by side and
// that the challenge is still pending
func (w *World) respondable(username string, id int, side func(*Challenge) int) (*Challenge, error) {
	challenge, err := w.Challenge(id)
	if err != nil {
		return nil, err
	}
	team, err := w.creatorTeam(username)
	if err != nil {
		return nil, err
	}
	if team.ID != side(challenge) {
		return nil, ErrNotCreator
	}
	if challenge.Status != ChallengePending {
		return nil, ErrChallengeResponded
	}
	return challenge, nil
}
