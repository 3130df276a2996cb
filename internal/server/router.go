package server

import (
	"errors"
	"runtime/debug"
	"strings"

	"ship-battle/internal/network"
)

type handlerFunc func(ctx *commandContext) network.Reply

type commandSpec struct {
	handler       handlerFunc
	requiresLogin bool
	minArgs       int
	maxArgs       int // -1 lets the last argument swallow the rest of the line
}

// commandContext carries one request through its handler
type commandContext struct {
	s       *Server
	session *Session
	command string
	payload string
	args    []string

	notes      []notification
	closeAfter bool
}

type notification struct {
	username string
	reply    network.Reply
}

// notify queues an async line for username, sent after the caller's reply
func (ctx *commandContext) notify(username string, r network.Reply) {
	ctx.notes = append(ctx.notes, notification{username: username, reply: r})
}

// notifyAll queues r for every username except skip
func (ctx *commandContext) notifyAll(usernames []string, r network.Reply, skip string) {
	for _, name := range usernames {
		if name != skip {
			ctx.notify(name, r)
		}
	}
}

func (ctx *commandContext) user() string {
	return ctx.session.Username
}

// fail converts a domain error into its reply, logging anything unexpected
func (ctx *commandContext) fail(err error) network.Reply {
	code := codeFor(err)
	if code == network.CodeInternal {
		ctx.s.logger.Error("%s by %q failed: %v", ctx.command, ctx.user(), err)
	}
	return network.Reply{Code: code}
}

func codeFor(err error) network.Code {
	switch {
	case errors.Is(err, ErrLoggedInElsewhere):
		return network.CodeLoggedInElsewhere
	case errors.Is(err, ErrConnLoggedIn):
		return network.CodeAlreadyLoggedIn
	case errors.Is(err, ErrNotLoggedIn):
		return network.CodeNotLoggedIn
	default:
		return network.CodeFor(err)
	}
}

func (s *Server) routes() map[string]commandSpec {
	return map[string]commandSpec{
		"REGISTER": {handler: handleRegister, minArgs: 2, maxArgs: 2},
		"LOGIN":    {handler: handleLogin, minArgs: 2, maxArgs: 2},
		"LOGOUT":   {handler: handleLogout, requiresLogin: true},
		"BYE":      {handler: handleBye},
		"WHOAMI":   {handler: handleWhoAmI, requiresLogin: true},
		"GETCOIN":  {handler: handleGetCoin, requiresLogin: true},

		"GETARMOR":    {handler: handleGetArmor, requiresLogin: true},
		"SHIP_STATUS": {handler: handleShipStatus, requiresLogin: true},
		"BUYARMOR":    {handler: handleBuyArmor, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"BUY_WEAPON":  {handler: handleBuyWeapon, requiresLogin: true, minArgs: 1, maxArgs: 1},

		"CREATE_TEAM":   {handler: handleCreateTeam, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"DELETE_TEAM":   {handler: handleDeleteTeam, requiresLogin: true},
		"LIST_TEAMS":    {handler: handleListTeams, requiresLogin: true},
		"TEAM_MEMBERS":  {handler: handleTeamMembers, requiresLogin: true, maxArgs: 1},
		"JOIN_REQUEST":  {handler: handleJoinRequest, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"JOIN_APPROVE":  {handler: handleJoinApprove, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"JOIN_REJECT":   {handler: handleJoinReject, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"LIST_REQUESTS": {handler: handleListRequests, requiresLogin: true},
		"INVITE":        {handler: handleInvite, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"INVITE_ACCEPT": {handler: handleInviteAccept, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"INVITE_REJECT": {handler: handleInviteReject, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"LIST_INVITES":  {handler: handleListInvites, requiresLogin: true},
		"LEAVE_TEAM":    {handler: handleLeaveTeam, requiresLogin: true},
		"KICK_MEMBER":   {handler: handleKickMember, requiresLogin: true, minArgs: 1, maxArgs: 1},

		"SEND_CHALLENGE":    {handler: handleSendChallenge, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"ACCEPT_CHALLENGE":  {handler: handleAcceptChallenge, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"DECLINE_CHALLENGE": {handler: handleDeclineChallenge, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"CANCEL_CHALLENGE":  {handler: handleCancelChallenge, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"LIST_CHALLENGES":   {handler: handleListChallenges, requiresLogin: true},

		"START_MATCH":      {handler: handleStartMatch, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"END_MATCH":        {handler: handleEndMatch, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"GET_MATCH_RESULT": {handler: handleMatchResult, requiresLogin: true, minArgs: 1, maxArgs: 1},
		"FIRE":             {handler: handleFire, requiresLogin: true, minArgs: 2, maxArgs: 2},

		"CHEST_OPEN": {handler: handleChestOpen, requiresLogin: true, minArgs: 1, maxArgs: -1},
	}
}

// handleLine parses, dispatches and answers one request line. The caller's
// reply is always enqueued before any notification the command produced.
func (s *Server) handleLine(c conn, line string) {
	sess := s.sessions.Get(c.ID())
	if sess == nil {
		s.logger.Error("No session for live connection %d", c.ID())
		s.write(c, network.Reply{Code: network.CodeInternal})
		return
	}

	command, payload := network.ParseLine(line)
	ctx := &commandContext{
		s:       s,
		session: sess,
		command: command,
		payload: payload,
		args:    network.Fields(payload),
	}
	username := sess.Username

	reply := s.execute(ctx)
	s.write(c, reply)

	for _, n := range ctx.notes {
		s.deliver(n.username, n.reply)
	}
	if ctx.closeAfter {
		c.CloseAfterFlush()
	}

	if username == "" {
		username = sess.Username
	}
	s.audit.Record(command, username, redact(command, line), int(reply.Code))
	s.logger.Debug("Client %d: %s -> %d", c.ID(), command, reply.Code)
}

func (s *Server) execute(ctx *commandContext) (reply network.Reply) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Handler %s panicked: %v\n%s", ctx.command, r, debug.Stack())
			ctx.notes = nil
			ctx.closeAfter = false
			reply = network.Reply{Code: network.CodeInternal}
		}
	}()

	spec, ok := s.commands[ctx.command]
	if !ok {
		return network.Reply{Code: network.CodeSyntax}
	}
	if len(ctx.args) < spec.minArgs || (spec.maxArgs >= 0 && len(ctx.args) > spec.maxArgs) {
		return network.Reply{Code: network.CodeSyntax}
	}
	if spec.requiresLogin && !ctx.session.LoggedIn {
		return network.Reply{Code: network.CodeNotLoggedIn}
	}

	return spec.handler(ctx)
}

// redact keeps passwords out of the audit log
func redact(command, line string) string {
	switch command {
	case "LOGIN", "REGISTER":
		fields := strings.Fields(line)
		if len(fields) > 2 {
			return strings.Join(fields[:2], " ") + " ***"
		}
	}
	return strings.TrimSpace(line)
}
