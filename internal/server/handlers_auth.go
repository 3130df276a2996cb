package server

import (
	"ship-battle/internal/network"
)

func handleRegister(ctx *commandContext) network.Reply {
	username, password := ctx.args[0], ctx.args[1]

	if _, err := ctx.s.world.Register(username, password); err != nil {
		return ctx.fail(err)
	}
	ctx.s.logger.Info("Player %s registered successfully", username)
	return network.Reply{Code: network.CodeRegistered}
}

func handleLogin(ctx *commandContext) network.Reply {
	username, password := ctx.args[0], ctx.args[1]

	if ctx.session.LoggedIn {
		return network.Reply{Code: network.CodeAlreadyLoggedIn}
	}

	user, err := ctx.s.world.Authenticate(username, password)
	if err != nil {
		ctx.s.logger.Info("Login failed for %s: %v", username, err)
		return ctx.fail(err)
	}

	if _, err := ctx.s.sessions.Login(ctx.session.ConnID, user.Username); err != nil {
		return ctx.fail(err)
	}
	ctx.s.syncUsers(user.Username)

	ctx.s.logger.Info("Player %s logged in successfully", user.Username)
	return network.Reply{Code: network.CodeLoggedIn}
}

func handleLogout(ctx *commandContext) network.Reply {
	username := ctx.user()
	if err := ctx.s.sessions.Logout(ctx.session.ConnID); err != nil {
		return ctx.fail(err)
	}
	ctx.s.logger.Info("Player %s logged out", username)
	return network.Reply{Code: network.CodeLoggedOut}
}

func handleBye(ctx *commandContext) network.Reply {
	ctx.closeAfter = true
	return network.Reply{Code: network.CodeBye}
}

func handleWhoAmI(ctx *commandContext) network.Reply {
	coin, err := ctx.s.world.Coin(ctx.user())
	if err != nil {
		return ctx.fail(err)
	}
	return network.NewReply(network.CodeWhoAmI, ctx.user(), coin, ctx.session.TeamID, ctx.session.MatchID)
}

func handleGetCoin(ctx *commandContext) network.Reply {
	coin, err := ctx.s.world.Coin(ctx.user())
	if err != nil {
		return ctx.fail(err)
	}
	return network.NewReply(network.CodeCoin, coin)
}
