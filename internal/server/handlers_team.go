package server

import (
	"fmt"
	"strings"

	"ship-battle/internal/game"
	"ship-battle/internal/network"
)

// membership change events carried by 155 notifications
const (
	eventJoined   = "joined"
	eventLeft     = "left"
	eventKicked   = "kicked"
	eventDeleted  = "deleted"
	eventCreator  = "creator"
	eventRejected = "rejected"
	eventDeclined = "declined"
)

func membershipChanged(teamID int, event, username string) network.Reply {
	return network.NewReply(network.CodeMembershipChanged, teamID, event, username)
}

func handleCreateTeam(ctx *commandContext) network.Reply {
	team, err := ctx.s.world.CreateTeam(ctx.user(), ctx.args[0])
	if err != nil {
		return ctx.fail(err)
	}
	ctx.s.syncUsers(ctx.user())

	ctx.s.logger.Info("Player %s created team %d (%s)", ctx.user(), team.ID, team.Name)
	return network.NewReply(network.CodeTeamCreated, team.ID)
}

func handleDeleteTeam(ctx *commandContext) network.Reply {
	change, err := ctx.s.world.DeleteTeam(ctx.user())
	if err != nil {
		return ctx.fail(err)
	}
	ctx.s.syncUsers(change.Affected...)
	ctx.notifyAll(change.Affected, membershipChanged(change.Team.ID, eventDeleted, ctx.user()), ctx.user())
	ctx.s.challengesCanceled(ctx, change)

	ctx.s.logger.Info("Player %s deleted team %d", ctx.user(), change.Team.ID)
	return network.Reply{Code: network.CodeTeamDeleted}
}

// challengesCanceled tells the other side of every challenge a deleted team left behind
func (s *Server) challengesCanceled(ctx *commandContext, change *game.TeamChange) {
	for _, c := range change.CanceledChallenges {
		otherID := c.SenderTeamID
		if otherID == change.Team.ID {
			otherID = c.TargetTeamID
		}
		if other, err := s.world.Team(otherID); err == nil {
			ctx.notify(other.Creator, network.NewReply(network.CodeChallengeResolved, c.ID, string(c.Status)))
		}
	}
}

func handleListTeams(ctx *commandContext) network.Reply {
	teams := ctx.s.world.ListTeams()
	entries := make([]string, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, fmt.Sprintf("%d:%s:%s:%d", t.ID, t.Name, t.Creator, ctx.s.world.MemberCount(t.ID)))
	}
	return network.Reply{Code: network.CodeTeamList, Payload: strings.Join(entries, " ")}
}

func handleTeamMembers(ctx *commandContext) network.Reply {
	var team *game.Team
	if len(ctx.args) == 0 {
		team = ctx.s.world.TeamOf(ctx.user())
		if team == nil {
			return network.Reply{Code: network.CodeNotInTeam}
		}
	} else {
		t, err := ctx.s.world.FindTeam(ctx.args[0])
		if err != nil {
			return ctx.fail(err)
		}
		team = t
	}

	members := ctx.s.world.Members(team.ID)
	entries := make([]string, 0, len(members))
	for _, m := range members {
		entries = append(entries, m.Username+":"+string(m.Role))
	}
	return network.Reply{Code: network.CodeTeamMembers, Payload: strings.Join(entries, " ")}
}

func handleJoinRequest(ctx *commandContext) network.Reply {
	team, err := ctx.s.world.RequestJoin(ctx.user(), ctx.args[0])
	if err != nil {
		return ctx.fail(err)
	}
	ctx.notify(team.Creator, network.NewReply(network.CodeJoinReceived, team.ID, ctx.user()))
	return network.NewReply(network.CodeJoinRequested, team.ID)
}

func handleJoinApprove(ctx *commandContext) network.Reply {
	applicant := ctx.args[0]
	change, err := ctx.s.world.ApproveJoin(ctx.user(), applicant)
	if err != nil {
		return ctx.fail(err)
	}
	ctx.s.syncUsers(applicant)
	ctx.notifyAll(change.Remaining, membershipChanged(change.Team.ID, eventJoined, applicant), ctx.user())

	ctx.s.logger.Info("Player %s joined team %d", applicant, change.Team.ID)
	return network.Reply{Code: network.CodeJoinApproved}
}

func handleJoinReject(ctx *commandContext) network.Reply {
	applicant := ctx.args[0]
	team, err := ctx.s.world.RejectJoin(ctx.user(), applicant)
	if err != nil {
		return ctx.fail(err)
	}
	ctx.notify(applicant, membershipChanged(team.ID, eventRejected, applicant))
	return network.Reply{Code: network.CodeJoinRejected}
}

func handleListRequests(ctx *commandContext) network.Reply {
	team := ctx.s.world.TeamOf(ctx.user())
	if team == nil {
		return network.Reply{Code: network.CodeNotInTeam}
	}
	if team.Creator != ctx.user() {
		return network.Reply{Code: network.CodeNotCreator}
	}

	requests := ctx.s.world.PendingRequests(team.ID)
	names := make([]string, 0, len(requests))
	for _, r := range requests {
		names = append(names, r.Username)
	}
	return network.Reply{Code: network.CodePendingList, Payload: strings.Join(names, " ")}
}

func handleInvite(ctx *commandContext) network.Reply {
	invitee := ctx.args[0]
	team, err := ctx.s.world.Invite(ctx.user(), invitee)
	if err != nil {
		return ctx.fail(err)
	}
	ctx.notify(invitee, network.NewReply(network.CodeInviteReceived, team.ID, team.Name))
	return network.Reply{Code: network.CodeInviteSent}
}

func handleInviteAccept(ctx *commandContext) network.Reply {
	change, err := ctx.s.world.AcceptInvite(ctx.user(), ctx.args[0])
	if err != nil {
		return ctx.fail(err)
	}
	ctx.s.syncUsers(ctx.user())
	ctx.notifyAll(change.Remaining, membershipChanged(change.Team.ID, eventJoined, ctx.user()), ctx.user())

	ctx.s.logger.Info("Player %s joined team %d", ctx.user(), change.Team.ID)
	return network.NewReply(network.CodeInviteAccepted, change.Team.ID)
}

func handleInviteReject(ctx *commandContext) network.Reply {
	team, err := ctx.s.world.RejectInvite(ctx.user(), ctx.args[0])
	if err != nil {
		return ctx.fail(err)
	}
	ctx.notify(team.Creator, membershipChanged(team.ID, eventDeclined, ctx.user()))
	return network.Reply{Code: network.CodeInviteRejected}
}

func handleListInvites(ctx *commandContext) network.Reply {
	invites := ctx.s.world.PendingInvites(ctx.user())
	entries := make([]string, 0, len(invites))
	for _, inv := range invites {
		name := ""
		if t, err := ctx.s.world.Team(inv.TeamID); err == nil {
			name = t.Name
		}
		entries = append(entries, fmt.Sprintf("%d:%s", inv.TeamID, name))
	}
	return network.Reply{Code: network.CodePendingList, Payload: strings.Join(entries, " ")}
}

func handleLeaveTeam(ctx *commandContext) network.Reply {
	change, err := ctx.s.world.LeaveTeam(ctx.user())
	if err != nil {
		return ctx.fail(err)
	}
	ctx.s.syncUsers(ctx.user())
	ctx.s.challengesCanceled(ctx, change)
	ctx.notifyAll(change.Remaining, membershipChanged(change.Team.ID, eventLeft, ctx.user()), "")
	if change.NewCreator != "" {
		ctx.notifyAll(change.Remaining, membershipChanged(change.Team.ID, eventCreator, change.NewCreator), "")
	}

	ctx.s.logger.Info("Player %s left team %d", ctx.user(), change.Team.ID)
	return network.Reply{Code: network.CodeLeftTeam}
}

func handleKickMember(ctx *commandContext) network.Reply {
	target := ctx.args[0]
	change, err := ctx.s.world.KickMember(ctx.user(), target)
	if err != nil {
		return ctx.fail(err)
	}
	ctx.s.syncUsers(target)
	ctx.notify(target, membershipChanged(change.Team.ID, eventKicked, target))
	ctx.notifyAll(change.Remaining, membershipChanged(change.Team.ID, eventKicked, target), ctx.user())

	ctx.s.logger.Info("Player %s kicked %s from team %d", ctx.user(), target, change.Team.ID)
	return network.Reply{Code: network.CodeMemberKicked}
}
