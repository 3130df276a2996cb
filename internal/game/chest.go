package game

import "strings"

type puzzle struct {
	Question string
	Answer   string
}

var puzzles = map[ChestTier][]puzzle{
	Bronze: {
		{Question: "What is 7 + 5?", Answer: "12"},
		{Question: "How many days are in a week?", Answer: "7"},
		{Question: "What color do you get by mixing blue and yellow?", Answer: "green"},
	},
	Silver: {
		{Question: "What has keys but cannot open locks?", Answer: "piano"},
		{Question: "What is 12 * 12?", Answer: "144"},
		{Question: "What is the capital of France?", Answer: "paris"},
	},
	Gold: {
		{Question: "I speak without a mouth and hear without ears. What am I?", Answer: "echo"},
		{Question: "What travels around the world but stays in a corner?", Answer: "stamp"},
		{Question: "The more you take, the more you leave behind. What are they?", Answer: "footsteps"},
	},
}

// SpawnChest drops a new chest into the match's slot, replacing any chest
// still waiting there
func (w *World) SpawnChest(matchID int) (*Chest, error) {
	match, err := w.Match(matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != MatchRunning {
		return nil, ErrNotInMatch
	}

	tier := w.drawTier()
	spec := tierSpecs[tier]

	w.nextChest++
	chest := &Chest{
		ID:        w.nextChest,
		MatchID:   matchID,
		Tier:      tier,
		Reward:    spec.Reward,
		X:         w.rand.Intn(MapSize),
		Y:         w.rand.Intn(MapSize),
		SpawnedAt: w.now(),
		puzzle:    w.rand.Intn(len(puzzles[tier])),
	}

	if old, ok := w.chests[matchID]; ok {
		delete(w.chestByID, old.ID)
	}
	w.chests[matchID] = chest
	w.chestByID[chest.ID] = chest

	return chest, nil
}

// ChestOf returns the chest currently in a match's slot, or nil
func (w *World) ChestOf(matchID int) *Chest {
	return w.chests[matchID]
}

// ChestQuestion returns the puzzle guarding an unopened chest
func (w *World) ChestQuestion(matchID, chestID int) (*Chest, string, error) {
	chest, err := w.reachableChest(matchID, chestID)
	if err != nil {
		return nil, "", err
	}
	if chest.Collected {
		return nil, "", ErrChestOpened
	}
	return chest, puzzles[chest.Tier][chest.puzzle].Question, nil
}

// OpenChest checks an answer; the first correct one collects the chest and
// credits the reward. Returns the new balance.
func (w *World) OpenChest(username string, matchID, chestID int, answer string) (*Chest, int64, error) {
	chest, err := w.reachableChest(matchID, chestID)
	if err != nil {
		return nil, 0, err
	}
	if chest.Collected {
		return nil, 0, ErrChestOpened
	}

	want := puzzles[chest.Tier][chest.puzzle].Answer
	if !strings.EqualFold(strings.TrimSpace(answer), want) {
		return nil, 0, ErrWrongAnswer
	}

	balance, err := w.users.AdjustCoin(username, chest.Reward)
	if err != nil {
		return nil, 0, err
	}

	chest.Collected = true
	chest.CollectedBy = username
	return chest, balance, nil
}

func (w *World) reachableChest(matchID, chestID int) (*Chest, error) {
	chest, ok := w.chestByID[chestID]
	if !ok {
		return nil, ErrChestNotFound
	}
	if matchID == NoMatch {
		return nil, ErrNotInMatch
	}
	if chest.MatchID != matchID {
		return nil, ErrChestOtherMatch
	}
	return chest, nil
}

// drawTier picks a tier with probability proportional to its weight
func (w *World) drawTier() ChestTier {
	total := 0
	for _, t := range tierOrder {
		total += tierSpecs[t].Weight
	}

	n := w.rand.Intn(total)
	for _, t := range tierOrder {
		n -= tierSpecs[t].Weight
		if n < 0 {
			return t
		}
	}
	return Bronze
}
