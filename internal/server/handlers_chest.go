package server

import (
	"strconv"
	"strings"

	"ship-battle/internal/game"
	"ship-battle/internal/network"
)

func chestDropped(c *game.Chest) network.Reply {
	return network.NewReply(network.CodeChestDropped, c.ID, string(c.Tier), c.X, c.Y)
}

// handleChestOpen serves the puzzle when no answer is given and checks the
// answer otherwise
func handleChestOpen(ctx *commandContext) network.Reply {
	chestID, err := strconv.Atoi(ctx.args[0])
	if err != nil {
		return network.Reply{Code: network.CodeSyntax}
	}
	_, answer, _ := strings.Cut(ctx.payload, " ")
	answer = strings.TrimSpace(answer)

	if answer == "" {
		chest, question, err := ctx.s.world.ChestQuestion(ctx.session.MatchID, chestID)
		if err != nil {
			return ctx.fail(err)
		}
		return network.NewReply(network.CodeChestQuestion, chest.ID, question)
	}

	chest, coin, err := ctx.s.world.OpenChest(ctx.user(), ctx.session.MatchID, chestID, answer)
	if err != nil {
		return ctx.fail(err)
	}

	ctx.notifyAll(ctx.s.world.Participants(chest.MatchID),
		network.NewReply(network.CodeChestCollected, chest.ID, ctx.user(), chest.Reward), ctx.user())
	ctx.s.logger.Info("Player %s opened chest %d (%s) for %d coin", ctx.user(), chest.ID, chest.Tier, chest.Reward)
	return network.NewReply(network.CodeChestOpened, chest.ID, chest.Reward, coin)
}

// spawnChests drops a fresh chest into every running match. Loop goroutine only.
func (s *Server) spawnChests() {
	for _, m := range s.world.RunningMatches() {
		chest, err := s.world.SpawnChest(m.ID)
		if err != nil {
			s.logger.Error("Failed to spawn chest for match %d: %v", m.ID, err)
			continue
		}
		s.broadcastMatch(m.ID, chestDropped(chest))
		s.logger.Debug("Dropped %s chest %d into match %d", chest.Tier, chest.ID, m.ID)
	}
}
