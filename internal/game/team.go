package game

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/slug"

	"ship-battle/internal/store"
)

// TeamChange describes a membership change so callers can refresh sessions
// and notify the people involved
type TeamChange struct {
	Team       *Team
	Affected   []string // users whose team changed
	Remaining  []string // users still in the team afterwards
	NewCreator string   // set when the creator role moved
	Deleted    bool

	// CanceledChallenges were pending against or from a deleted team
	CanceledChallenges []Challenge
}

// CreateTeam creates a team with username as creator and sole member
func (w *World) CreateTeam(username, name string) (*Team, error) {
	name = strings.TrimSpace(name)
	if !validTeamName(name) {
		return nil, ErrInvalidTeamName
	}
	if w.TeamOf(username) != nil {
		return nil, ErrAlreadyInTeam
	}

	key := slug.Make(name)
	for _, t := range w.teams {
		if t.IsActive() && t.slug == key {
			return nil, ErrTeamNameExists
		}
	}

	team := &Team{
		ID:        len(w.teams) + 1,
		Name:      name,
		Creator:   username,
		Status:    TeamActive,
		CreatedAt: w.now(),
		slug:      key,
	}
	w.teams = append(w.teams, team)
	w.addMember(team.ID, username, RoleCreator)

	return team, nil
}

// DeleteTeam soft-deletes the creator's team and releases every member
func (w *World) DeleteTeam(username string) (*TeamChange, error) {
	team, err := w.creatorTeam(username)
	if err != nil {
		return nil, err
	}
	if w.RunningMatchOf(team.ID) != nil {
		return nil, ErrTeamBusy
	}

	affected := w.memberNames(team.ID)
	canceled := w.dissolve(team)

	return &TeamChange{Team: team, Affected: affected, Deleted: true, CanceledChallenges: canceled}, nil
}

// ListTeams returns active teams ordered by id
func (w *World) ListTeams() []*Team {
	out := make([]*Team, 0, len(w.teams))
	for _, t := range w.teams {
		if t.IsActive() {
			out = append(out, t)
		}
	}
	return out
}

// Team returns an active team by id
func (w *World) Team(id int) (*Team, error) {
	if id < 1 || id > len(w.teams) {
		return nil, ErrTeamNotFound
	}
	team := w.teams[id-1]
	if !team.IsActive() {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

// FindTeam resolves a numeric id or a team name to an active team
func (w *World) FindTeam(ref string) (*Team, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil {
		return w.Team(id)
	}

	key := slug.Make(ref)
	for _, t := range w.teams {
		if t.IsActive() && t.slug == key {
			return t, nil
		}
	}
	return nil, ErrTeamNotFound
}

// TeamOf returns the active team username belongs to, or nil
func (w *World) TeamOf(username string) *Team {
	for _, m := range w.members {
		if m.Username == username {
			return w.teams[m.TeamID-1]
		}
	}
	return nil
}

// TeamIDOf returns the id of username's team or NoTeam
func (w *World) TeamIDOf(username string) int {
	if t := w.TeamOf(username); t != nil {
		return t.ID
	}
	return NoTeam
}

// Members returns the members of a team in join order
func (w *World) Members(teamID int) []TeamMember {
	var out []TeamMember
	for _, m := range w.members {
		if m.TeamID == teamID {
			out = append(out, *m)
		}
	}
	return out
}

// MemberCount returns how many users belong to the team
func (w *World) MemberCount(teamID int) int {
	n := 0
	for _, m := range w.members {
		if m.TeamID == teamID {
			n++
		}
	}
	return n
}

// RequestJoin files a pending join request from username to the team
func (w *World) RequestJoin(username, teamRef string) (*Team, error) {
	if w.TeamOf(username) != nil {
		return nil, ErrAlreadyInTeam
	}
	team, err := w.FindTeam(teamRef)
	if err != nil {
		return nil, err
	}
	if w.MemberCount(team.ID) >= MaxTeamMembers {
		return nil, ErrTeamFull
	}
	if w.pendingRequest(team.ID, username) != nil {
		return nil, ErrAlreadyPending
	}

	w.requests = append(w.requests, &JoinRequest{
		TeamID:    team.ID,
		Username:  username,
		Status:    RequestPending,
		CreatedAt: w.now(),
	})
	return team, nil
}

// ApproveJoin lets the creator accept a pending join request
func (w *World) ApproveJoin(creator, applicant string) (*TeamChange, error) {
	team, err := w.creatorTeam(creator)
	if err != nil {
		return nil, err
	}
	req := w.pendingRequest(team.ID, applicant)
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if w.TeamOf(applicant) != nil {
		req.Status = RequestCanceled
		return nil, ErrTargetInTeam
	}
	if err := w.checkCanAdd(team); err != nil {
		return nil, err
	}

	req.Status = RequestApproved
	w.addMember(team.ID, applicant, RoleMember)

	return &TeamChange{Team: team, Affected: []string{applicant}, Remaining: w.memberNames(team.ID)}, nil
}

// RejectJoin lets the creator turn down a pending join request
func (w *World) RejectJoin(creator, applicant string) (*Team, error) {
	team, err := w.creatorTeam(creator)
	if err != nil {
		return nil, err
	}
	req := w.pendingRequest(team.ID, applicant)
	if req == nil {
		return nil, ErrRequestNotFound
	}
	req.Status = RequestRejected
	return team, nil
}

// PendingRequests returns the pending join requests of a team
func (w *World) PendingRequests(teamID int) []JoinRequest {
	var out []JoinRequest
	for _, r := range w.requests {
		if r.TeamID == teamID && r.Status == RequestPending {
			out = append(out, *r)
		}
	}
	return out
}

// Invite lets the creator invite a user who is not in any team
func (w *World) Invite(creator, invitee string) (*Team, error) {
	team, err := w.creatorTeam(creator)
	if err != nil {
		return nil, err
	}
	if invitee == creator {
		return nil, ErrCannotTargetSelf
	}
	if _, err := w.users.Find(invitee); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	if w.TeamOf(invitee) != nil {
		return nil, ErrTargetInTeam
	}
	if w.MemberCount(team.ID) >= MaxTeamMembers {
		return nil, ErrTeamFull
	}
	if w.pendingInvite(team.ID, invitee) != nil {
		return nil, ErrAlreadyPending
	}

	w.invites = append(w.invites, &TeamInvite{
		TeamID:    team.ID,
		Username:  invitee,
		InvitedBy: creator,
		Status:    RequestPending,
		CreatedAt: w.now(),
	})
	return team, nil
}

// AcceptInvite joins the inviting team
func (w *World) AcceptInvite(invitee, teamRef string) (*TeamChange, error) {
	team, err := w.FindTeam(teamRef)
	if err != nil {
		return nil, err
	}
	inv := w.pendingInvite(team.ID, invitee)
	if inv == nil {
		return nil, ErrRequestNotFound
	}
	if w.TeamOf(invitee) != nil {
		return nil, ErrAlreadyInTeam
	}
	if err := w.checkCanAdd(team); err != nil {
		return nil, err
	}

	inv.Status = RequestAccepted
	w.addMember(team.ID, invitee, RoleMember)

	return &TeamChange{Team: team, Affected: []string{invitee}, Remaining: w.memberNames(team.ID)}, nil
}

// RejectInvite declines a pending invite
func (w *World) RejectInvite(invitee, teamRef string) (*Team, error) {
	team, err := w.FindTeam(teamRef)
	if err != nil {
		return nil, err
	}
	inv := w.pendingInvite(team.ID, invitee)
	if inv == nil {
		return nil, ErrRequestNotFound
	}
	inv.Status = RequestDeclined
	return team, nil
}

// PendingInvites returns the pending invites addressed to username
func (w *World) PendingInvites(username string) []TeamInvite {
	var out []TeamInvite
	for _, inv := range w.invites {
		if inv.Username == username && inv.Status == RequestPending {
			out = append(out, *inv)
		}
	}
	return out
}

// LeaveTeam removes username from their team. The last member leaving deletes
// the team; a leaving creator hands the role to the earliest remaining member.
func (w *World) LeaveTeam(username string) (*TeamChange, error) {
	team := w.TeamOf(username)
	if team == nil {
		return nil, ErrNotInTeam
	}
	if w.RunningMatchOf(team.ID) != nil {
		return nil, ErrTeamBusy
	}

	w.removeMember(team.ID, username)
	change := &TeamChange{Team: team, Affected: []string{username}}

	remaining := w.Members(team.ID)
	if len(remaining) == 0 {
		change.CanceledChallenges = w.dissolve(team)
		change.Deleted = true
		return change, nil
	}

	if team.Creator == username {
		w.promote(team, remaining[0].Username)
		change.NewCreator = team.Creator
	}
	change.Remaining = w.memberNames(team.ID)
	return change, nil
}

// KickMember lets the creator remove another member
func (w *World) KickMember(creator, target string) (*TeamChange, error) {
	team, err := w.creatorTeam(creator)
	if err != nil {
		return nil, err
	}
	if target == creator {
		return nil, ErrCannotTargetSelf
	}
	if w.member(team.ID, target) == nil {
		return nil, ErrNotTeamMember
	}
	if w.RunningMatchOf(team.ID) != nil {
		return nil, ErrTeamBusy
	}

	w.removeMember(team.ID, target)
	return &TeamChange{Team: team, Affected: []string{target}, Remaining: w.memberNames(team.ID)}, nil
}

// creatorTeam returns username's team, failing unless username created it
func (w *World) creatorTeam(username string) (*Team, error) {
	team := w.TeamOf(username)
	if team == nil {
		return nil, ErrNotInTeam
	}
	if team.Creator != username {
		return nil, ErrNotCreator
	}
	return team, nil
}

func (w *World) checkCanAdd(team *Team) error {
	if w.MemberCount(team.ID) >= MaxTeamMembers {
		return ErrTeamFull
	}
	if w.RunningMatchOf(team.ID) != nil {
		return ErrTeamBusy
	}
	return nil
}

func (w *World) addMember(teamID int, username string, role Role) {
	w.members = append(w.members, &TeamMember{
		TeamID:   teamID,
		Username: username,
		Role:     role,
		JoinedAt: w.now(),
	})
	w.cancelPendingFor(username)
}

func (w *World) removeMember(teamID int, username string) {
	kept := w.members[:0]
	for _, m := range w.members {
		if m.TeamID == teamID && m.Username == username {
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(w.members); i++ {
		w.members[i] = nil
	}
	w.members = kept
}

func (w *World) member(teamID int, username string) *TeamMember {
	for _, m := range w.members {
		if m.TeamID == teamID && m.Username == username {
			return m
		}
	}
	return nil
}

func (w *World) memberNames(teamID int) []string {
	var out []string
	for _, m := range w.members {
		if m.TeamID == teamID {
			out = append(out, m.Username)
		}
	}
	return out
}

func (w *World) promote(team *Team, username string) {
	for _, m := range w.members {
		if m.TeamID != team.ID {
			continue
		}
		if m.Username == username {
			m.Role = RoleCreator
		} else {
			m.Role = RoleMember
		}
	}
	team.Creator = username
}

// dissolve marks the team deleted and cancels everything still pointing at it.
// It returns the challenges it canceled.
func (w *World) dissolve(team *Team) []Challenge {
	for _, name := range w.memberNames(team.ID) {
		w.removeMember(team.ID, name)
	}
	team.Status = TeamDeleted

	for _, r := range w.requests {
		if r.TeamID == team.ID && r.Status == RequestPending {
			r.Status = RequestCanceled
		}
	}
	for _, inv := range w.invites {
		if inv.TeamID == team.ID && inv.Status == RequestPending {
			inv.Status = RequestCanceled
		}
	}
	var canceled []Challenge
	for _, c := range w.challenges {
		if c.Status == ChallengePending && (c.SenderTeamID == team.ID || c.TargetTeamID == team.ID) {
			c.Status = ChallengeCanceled
			c.RespondedAt = w.now()
			canceled = append(canceled, *c)
		}
	}
	return canceled
}

// cancelPendingFor drops a user's outstanding requests and invites once they join a team
func (w *World) cancelPendingFor(username string) {
	for _, r := range w.requests {
		if r.Username == username && r.Status == RequestPending {
			r.Status = RequestCanceled
		}
	}
	for _, inv := range w.invites {
		if inv.Username == username && inv.Status == RequestPending {
			inv.Status = RequestCanceled
		}
	}
}

func (w *World) pendingRequest(teamID int, username string) *JoinRequest {
	for _, r := range w.requests {
		if r.TeamID == teamID && r.Username == username && r.Status == RequestPending {
			return r
		}
	}
	return nil
}

func (w *World) pendingInvite(teamID int, username string) *TeamInvite {
	for _, inv := range w.invites {
		if inv.TeamID == teamID && inv.Username == username && inv.Status == RequestPending {
			return inv
		}
	}
	return nil
}

func validTeamName(name string) bool {
	if name == "" || len(name) > MaxTeamNameLen || strings.ContainsAny(name, " \t") {
		return false
	}
	if !unicode.IsLetter(rune(name[0])) {
		return false
	}
	return slug.Make(name) != ""
}
