package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ship-battle/internal/game"
	"ship-battle/internal/network"
)

func handleStartMatch(ctx *commandContext) network.Reply {
	opponent, err := ctx.s.world.FindTeam(ctx.args[0])
	if err != nil {
		return ctx.fail(err)
	}
	match, err := ctx.s.world.StartMatch(ctx.user(), opponent.ID)
	if err != nil {
		return ctx.fail(err)
	}

	ctx.s.beginMatch(ctx, match)
	return network.NewReply(network.CodeMatchStarted, match.ID)
}

// beginMatch refreshes participant sessions and queues the match-started and
// first chest notifications
func (s *Server) beginMatch(ctx *commandContext, match *game.Match) {
	players := s.world.Participants(match.ID)
	s.syncUsers(players...)
	ctx.notifyAll(players, network.NewReply(network.CodeMatchBegan, match.ID, match.Team1ID, match.Team2ID), "")

	if chest, err := s.world.SpawnChest(match.ID); err != nil {
		s.logger.Error("Failed to spawn chest for match %d: %v", match.ID, err)
	} else {
		ctx.notifyAll(players, chestDropped(chest), "")
	}

	s.logger.Info("Match %d started: team %d vs team %d", match.ID, match.Team1ID, match.Team2ID)
}

func handleEndMatch(ctx *commandContext) network.Reply {
	matchID, err := strconv.Atoi(ctx.args[0])
	if err != nil {
		return network.Reply{Code: network.CodeSyntax}
	}

	players := ctx.s.world.Participants(matchID)
	match, err := ctx.s.world.EndMatch(ctx.user(), matchID)
	if match == nil {
		return ctx.fail(err)
	}

	var everyone []string
	for _, teamID := range []int{match.Team1ID, match.Team2ID} {
		for _, m := range ctx.s.world.Members(teamID) {
			everyone = append(everyone, m.Username)
		}
	}
	ctx.s.syncUsers(everyone...)
	ctx.notifyAll(players, network.NewReply(network.CodeMatchOver, match.ID, match.WinnerTeamID), ctx.user())

	ctx.s.logger.Info("Match %d ended, winner %d, duration %s", match.ID, match.WinnerTeamID, match.Duration)
	if err != nil {
		return ctx.fail(err)
	}
	return network.NewReply(network.CodeMatchEnded, match.ID, match.WinnerTeamID)
}

func handleMatchResult(ctx *commandContext) network.Reply {
	matchID, err := strconv.Atoi(ctx.args[0])
	if err != nil {
		return network.Reply{Code: network.CodeSyntax}
	}
	match, err := ctx.s.world.Match(matchID)
	if err != nil {
		return ctx.fail(err)
	}

	winner := match.WinnerTeamID
	if match.Status == game.MatchRunning {
		winner = game.Draw
	}
	duration := ctx.s.world.MatchElapsed(match)

	return network.NewReply(network.CodeMatchResult,
		match.ID, string(match.Status), match.Team1ID, match.Team2ID, winner, int64(duration/time.Second))
}

func handleFire(ctx *commandContext) network.Reply {
	if ctx.session.MatchID == game.NoMatch {
		return network.Reply{Code: network.CodeNotInMatch}
	}

	target := ctx.args[0]
	weapon := game.Weapon(strings.ToLower(ctx.args[1]))
	res, err := ctx.s.world.Fire(ctx.session.MatchID, ctx.user(), target, weapon)
	if err != nil {
		return ctx.fail(err)
	}

	code := network.CodeFireHit
	if res.Sunk {
		code = network.CodeFireSunk
	}
	fields := []interface{}{res.Attacker, res.Target, res.Damage, res.TargetHP, res.TargetArmor}

	ctx.notifyAll(ctx.s.world.Participants(ctx.session.MatchID), network.NewReply(network.CodeFiredAt, fields...), ctx.user())
	return network.NewReply(code, fields...)
}

func handleSendChallenge(ctx *commandContext) network.Reply {
	target, err := ctx.s.world.FindTeam(ctx.args[0])
	if err != nil {
		return ctx.fail(err)
	}
	challenge, err := ctx.s.world.SendChallenge(ctx.user(), target.ID)
	if err != nil {
		return ctx.fail(err)
	}

	ctx.notify(target.Creator, network.NewReply(network.CodeChallengeReceived, challenge.ID, challenge.SenderTeamID))
	ctx.s.logger.Info("Team %d challenged team %d (challenge %d)", challenge.SenderTeamID, target.ID, challenge.ID)
	return network.NewReply(network.CodeChallengeSent, challenge.ID)
}

func handleAcceptChallenge(ctx *commandContext) network.Reply {
	id, err := strconv.Atoi(ctx.args[0])
	if err != nil {
		return network.Reply{Code: network.CodeSyntax}
	}
	challenge, match, err := ctx.s.world.AcceptChallenge(ctx.user(), id)
	if err != nil {
		return ctx.fail(err)
	}

	if sender, err := ctx.s.world.Team(challenge.SenderTeamID); err == nil {
		ctx.notify(sender.Creator, network.NewReply(network.CodeChallengeResolved, challenge.ID, string(challenge.Status)))
	}
	ctx.s.beginMatch(ctx, match)
	return network.NewReply(network.CodeChallengeAccept, challenge.ID, match.ID)
}

func handleDeclineChallenge(ctx *commandContext) network.Reply {
	id, err := strconv.Atoi(ctx.args[0])
	if err != nil {
		return network.Reply{Code: network.CodeSyntax}
	}
	challenge, err := ctx.s.world.DeclineChallenge(ctx.user(), id)
	if err != nil {
		return ctx.fail(err)
	}

	if sender, err := ctx.s.world.Team(challenge.SenderTeamID); err == nil {
		ctx.notify(sender.Creator, network.NewReply(network.CodeChallengeResolved, challenge.ID, string(challenge.Status)))
	}
	return network.Reply{Code: network.CodeChallengeDecl}
}

func handleCancelChallenge(ctx *commandContext) network.Reply {
	id, err := strconv.Atoi(ctx.args[0])
	if err != nil {
		return network.Reply{Code: network.CodeSyntax}
	}
	challenge, err := ctx.s.world.CancelChallenge(ctx.user(), id)
	if err != nil {
		return ctx.fail(err)
	}

	if target, err := ctx.s.world.Team(challenge.TargetTeamID); err == nil {
		ctx.notify(target.Creator, network.NewReply(network.CodeChallengeResolved, challenge.ID, string(challenge.Status)))
	}
	return network.Reply{Code: network.CodeChallengeCancel}
}

// handleListChallenges lets a creator who missed the 150 push find challenge ids
func handleListChallenges(ctx *commandContext) network.Reply {
	team := ctx.s.world.TeamOf(ctx.user())
	if team == nil {
		return network.Reply{Code: network.CodeNotInTeam}
	}
	if team.Creator != ctx.user() {
		return network.Reply{Code: network.CodeNotCreator}
	}

	challenges := ctx.s.world.PendingChallengesFor(team.ID)
	entries := make([]string, 0, len(challenges))
	for _, c := range challenges {
		entries = append(entries, fmt.Sprintf("%d:%d", c.ID, c.SenderTeamID))
	}
	return network.Reply{Code: network.CodePendingList, Payload: strings.Join(entries, " ")}
}

func handleGetArmor(ctx *commandContext) network.Reply {
	ship := ctx.s.world.Ship(ctx.session.MatchID, ctx.user())
	if ship == nil {
		return network.Reply{Code: network.CodeNotInMatch}
	}
	a := ship.Armor
	return network.NewReply(network.CodeArmor, int(a[0].Type), a[0].Value, int(a[1].Type), a[1].Value)
}

func handleShipStatus(ctx *commandContext) network.Reply {
	ship := ctx.s.world.Ship(ctx.session.MatchID, ctx.user())
	if ship == nil {
		return network.Reply{Code: network.CodeNotInMatch}
	}
	return network.NewReply(network.CodeShipStatus,
		ship.HP, ship.TotalArmor(), ship.Ammo[game.Cannon], ship.Ammo[game.Laser], ship.Ammo[game.Missile])
}

func handleBuyArmor(ctx *commandContext) network.Reply {
	n, err := strconv.Atoi(ctx.args[0])
	if err != nil {
		return network.Reply{Code: network.CodeInvalidItem}
	}

	slot, ship, coin, err := ctx.s.world.BuyArmor(ctx.user(), ctx.session.MatchID, game.ArmorType(n))
	if err != nil {
		return ctx.fail(err)
	}
	bought := ship.Armor[slot-1]
	return network.NewReply(network.CodeArmorBought, slot, int(bought.Type), bought.Value, coin)
}

func handleBuyWeapon(ctx *commandContext) network.Reply {
	weapon := game.Weapon(strings.ToLower(ctx.args[0]))

	ammo, coin, err := ctx.s.world.BuyWeapon(ctx.user(), ctx.session.MatchID, weapon)
	if err != nil {
		return ctx.fail(err)
	}
	return network.NewReply(network.CodeWeaponBought, string(weapon), ammo, coin)
}
