package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"ship-battle/internal/store"
)

func TestCreateTeam(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob")

	team, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)
	require.Equal(t, 1, team.ID)
	require.Equal(t, "alice", team.Creator)

	members := w.Members(team.ID)
	require.Len(t, members, 1)
	require.Equal(t, RoleCreator, members[0].Role)

	_, err = w.CreateTeam("bob", "Red")
	require.ErrorIs(t, err, ErrTeamNameExists)

	_, err = w.CreateTeam("bob", "red")
	require.ErrorIs(t, err, ErrTeamNameExists)

	_, err = w.CreateTeam("alice", "Blue")
	require.ErrorIs(t, err, ErrAlreadyInTeam)
}

func TestCreateTeamInvalidNames(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice")

	for _, name := range []string{"", "1team", "two words", "-x", "abcdefghijklmnopqrstuvwxyzabcdefg"} {
		_, err := w.CreateTeam("alice", name)
		require.ErrorIs(t, err, ErrInvalidTeamName, "name %q", name)
	}
}

func TestFindTeamByIDOrName(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice")
	team, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)

	byID, err := w.FindTeam("1")
	require.NoError(t, err)
	require.Same(t, team, byID)

	byName, err := w.FindTeam("RED")
	require.NoError(t, err)
	require.Same(t, team, byName)

	_, err = w.FindTeam("Blue")
	require.ErrorIs(t, err, ErrTeamNotFound)
	_, err = w.FindTeam("99")
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestJoinRequestFlow(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob", "carol")
	team, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)

	_, err = w.RequestJoin("bob", "Red")
	require.NoError(t, err)
	_, err = w.RequestJoin("bob", "Red")
	require.ErrorIs(t, err, ErrAlreadyPending)
	_, err = w.RequestJoin("carol", "1")
	require.NoError(t, err)

	require.Len(t, w.PendingRequests(team.ID), 2)

	_, err = w.ApproveJoin("bob", "carol")
	require.ErrorIs(t, err, ErrNotInTeam)

	change, err := w.ApproveJoin("alice", "bob")
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, change.Affected)
	require.Equal(t, []string{"alice", "bob"}, change.Remaining)

	_, err = w.ApproveJoin("bob", "carol")
	require.ErrorIs(t, err, ErrNotCreator)

	_, err = w.RejectJoin("alice", "carol")
	require.NoError(t, err)
	_, err = w.ApproveJoin("alice", "carol")
	require.ErrorIs(t, err, ErrRequestNotFound)

	require.Empty(t, w.PendingRequests(team.ID))
	require.Equal(t, team.ID, w.TeamIDOf("bob"))
	require.Equal(t, NoTeam, w.TeamIDOf("carol"))
}

func TestJoiningCancelsOtherPending(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob", "carol")
	red, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)
	blue, err := w.CreateTeam("bob", "Blue")
	require.NoError(t, err)

	_, err = w.RequestJoin("carol", "Red")
	require.NoError(t, err)
	_, err = w.Invite("bob", "carol")
	require.NoError(t, err)

	_, err = w.AcceptInvite("carol", "Blue")
	require.NoError(t, err)

	require.Empty(t, w.PendingRequests(red.ID))
	require.Empty(t, w.PendingInvites("carol"))
	require.Equal(t, blue.ID, w.TeamIDOf("carol"))
}

func TestInviteFlow(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob", "carol")
	team, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)

	_, err = w.Invite("alice", "alice")
	require.ErrorIs(t, err, ErrCannotTargetSelf)
	_, err = w.Invite("alice", "nobody")
	require.ErrorIs(t, err, store.ErrUserNotFound)
	_, err = w.Invite("bob", "carol")
	require.ErrorIs(t, err, ErrNotInTeam)

	_, err = w.Invite("alice", "bob")
	require.NoError(t, err)
	_, err = w.Invite("alice", "bob")
	require.ErrorIs(t, err, ErrAlreadyPending)
	_, err = w.Invite("alice", "carol")
	require.NoError(t, err)

	require.Len(t, w.PendingInvites("bob"), 1)

	_, err = w.AcceptInvite("bob", "Red")
	require.NoError(t, err)
	_, err = w.RejectInvite("carol", "Red")
	require.NoError(t, err)
	_, err = w.AcceptInvite("carol", "Red")
	require.ErrorIs(t, err, ErrRequestNotFound)

	require.Equal(t, 2, w.MemberCount(team.ID))
}

func TestTeamCapNeverExceeded(t *testing.T) {
	names := []string{"sailor0", "sailor1", "sailor2", "sailor3", "sailor4", "sailor5", "sailor6", "sailor7"}
	w, _, _ := newTestWorld(t, append([]string{"alice"}, names...)...)
	team, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		name := names[rng.Intn(len(names))]
		switch rng.Intn(6) {
		case 0:
			_, _ = w.RequestJoin(name, "Red")
		case 1:
			_, _ = w.ApproveJoin("alice", name)
		case 2:
			_, _ = w.Invite("alice", name)
		case 3:
			_, _ = w.AcceptInvite(name, "Red")
		case 4:
			_, _ = w.LeaveTeam(name)
		case 5:
			_, _ = w.KickMember("alice", name)
		}
		require.LessOrEqual(t, w.MemberCount(team.ID), MaxTeamMembers)
	}
}

func TestApproveFullTeam(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob", "carol", "dave")
	_, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)

	for _, name := range []string{"bob", "carol", "dave"} {
		_, err := w.RequestJoin(name, "Red")
		require.NoError(t, err)
	}
	_, err = w.ApproveJoin("alice", "bob")
	require.NoError(t, err)
	_, err = w.ApproveJoin("alice", "carol")
	require.NoError(t, err)
	_, err = w.ApproveJoin("alice", "dave")
	require.ErrorIs(t, err, ErrTeamFull)

	_, err = w.RequestJoin("dave", "Red")
	require.ErrorIs(t, err, ErrTeamFull)
}

func TestLeaveTeamTransfersCreatorInJoinOrder(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob", "carol")
	team, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)
	for _, name := range []string{"carol", "bob"} {
		_, err := w.Invite("alice", name)
		require.NoError(t, err)
		_, err = w.AcceptInvite(name, "Red")
		require.NoError(t, err)
	}

	change, err := w.LeaveTeam("alice")
	require.NoError(t, err)
	require.False(t, change.Deleted)
	require.Equal(t, "carol", change.NewCreator)
	require.Equal(t, "carol", team.Creator)

	members := w.Members(team.ID)
	require.Equal(t, RoleCreator, members[0].Role)
	require.Equal(t, "carol", members[0].Username)
	require.Equal(t, RoleMember, members[1].Role)
}

func TestLastMemberLeavingDeletesTeam(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob")
	team, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)
	_, err = w.RequestJoin("bob", "Red")
	require.NoError(t, err)

	change, err := w.LeaveTeam("alice")
	require.NoError(t, err)
	require.True(t, change.Deleted)
	require.Equal(t, TeamDeleted, team.Status)
	require.Empty(t, w.PendingRequests(team.ID))

	_, err = w.Team(team.ID)
	require.ErrorIs(t, err, ErrTeamNotFound)

	// name is free again and ids are never reused
	again, err := w.CreateTeam("bob", "Red")
	require.NoError(t, err)
	require.Equal(t, 2, again.ID)

	_, err = w.LeaveTeam("alice")
	require.ErrorIs(t, err, ErrNotInTeam)
}

func TestKickMember(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob", "carol")
	team, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)
	_, err = w.Invite("alice", "bob")
	require.NoError(t, err)
	_, err = w.AcceptInvite("bob", "Red")
	require.NoError(t, err)

	_, err = w.KickMember("alice", "alice")
	require.ErrorIs(t, err, ErrCannotTargetSelf)
	_, err = w.KickMember("bob", "alice")
	require.ErrorIs(t, err, ErrNotCreator)
	_, err = w.KickMember("alice", "carol")
	require.ErrorIs(t, err, ErrNotTeamMember)

	change, err := w.KickMember("alice", "bob")
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, change.Affected)
	require.Equal(t, 1, w.MemberCount(team.ID))
}

func TestDeleteTeam(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob", "carol")
	red, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)
	blue, err := w.CreateTeam("carol", "Blue")
	require.NoError(t, err)
	_, err = w.Invite("alice", "bob")
	require.NoError(t, err)
	_, err = w.AcceptInvite("bob", "Red")
	require.NoError(t, err)
	ch, err := w.SendChallenge("carol", red.ID)
	require.NoError(t, err)

	_, err = w.DeleteTeam("bob")
	require.ErrorIs(t, err, ErrNotCreator)

	change, err := w.DeleteTeam("alice")
	require.NoError(t, err)
	require.True(t, change.Deleted)
	require.ElementsMatch(t, []string{"alice", "bob"}, change.Affected)
	require.Equal(t, NoTeam, w.TeamIDOf("bob"))
	require.Equal(t, ChallengeCanceled, ch.Status)
	require.Len(t, change.CanceledChallenges, 1)
	require.Equal(t, ch.ID, change.CanceledChallenges[0].ID)
	require.Equal(t, blue.ID, change.CanceledChallenges[0].SenderTeamID)
	require.Equal(t, []*Team{blue}, w.ListTeams())
}

func TestLastMemberLeavingReportsCanceledChallenges(t *testing.T) {
	w, _, _ := newTestWorld(t, "alice", "bob")
	red, err := w.CreateTeam("alice", "Red")
	require.NoError(t, err)
	blue, err := w.CreateTeam("bob", "Blue")
	require.NoError(t, err)
	ch, err := w.SendChallenge("alice", blue.ID)
	require.NoError(t, err)

	change, err := w.LeaveTeam("alice")
	require.NoError(t, err)
	require.True(t, change.Deleted)
	require.Equal(t, red.ID, change.Team.ID)
	require.Len(t, change.CanceledChallenges, 1)
	require.Equal(t, ch.ID, change.CanceledChallenges[0].ID)
	require.Empty(t, w.PendingChallengesFor(blue.ID))
}

func TestMembershipFrozenDuringMatch(t *testing.T) {
	w, _, m := newTestMatch(t)
	require.Equal(t, MatchRunning, m.Status)

	_, err := w.LeaveTeam("alice")
	require.ErrorIs(t, err, ErrTeamBusy)
	_, err = w.DeleteTeam("bob")
	require.ErrorIs(t, err, ErrTeamBusy)
}
