package network

import (
	"errors"

	"ship-battle/internal/game"
	"ship-battle/internal/store"
)

var errorCodes = []struct {
	err  error
	code Code
}{
	// wraps store errors that must not leak their own code
	{game.ErrRewardFailed, CodeInternal},

	{store.ErrUserExists, CodeUserExists},
	{store.ErrUserNotFound, CodeUserNotFound},
	{store.ErrInsufficientCoin, CodeNotEnoughCoin},

	{game.ErrInvalidUsername, CodeInvalidFormat},
	{game.ErrInvalidPassword, CodeInvalidFormat},
	{game.ErrInvalidCredentials, CodeInvalidCreds},
	{game.ErrBanned, CodeBanned},

	{game.ErrAlreadyInTeam, CodeAlreadyInTeam},
	{game.ErrTeamNameExists, CodeTeamNameExists},
	{game.ErrInvalidTeamName, CodeInvalidTeamName},
	{game.ErrTeamNotFound, CodeTeamNotFound},
	{game.ErrNotCreator, CodeNotCreator},
	{game.ErrAlreadyPending, CodeAlreadyPending},
	{game.ErrRequestNotFound, CodeRequestNotFound},
	{game.ErrNotInTeam, CodeNotInTeam},
	{game.ErrTeamFull, CodeTeamFull},
	{game.ErrCannotTargetSelf, CodeCannotTargetSelf},
	{game.ErrNotTeamMember, CodeNotTeamMember},
	{game.ErrTargetInTeam, CodeTargetInTeam},
	{game.ErrTeamBusy, CodeTeamBusy},

	{game.ErrChallengeNotFound, CodeChallengeNotFound},
	{game.ErrChallengeResponded, CodeChallengeDone},
	{game.ErrChallengeOwnTeam, CodeChallengeOwnTeam},
	{game.ErrChallengePending, CodeChallengePending},

	{game.ErrNotInMatch, CodeNotInMatch},
	{game.ErrInvalidItem, CodeInvalidItem},
	{game.ErrTargetNotInMatch, CodeTargetNotInMatch},
	{game.ErrFriendlyFire, CodeFriendlyFire},
	{game.ErrMatchNotFound, CodeMatchNotFound},
	{game.ErrMatchNotOver, CodeMatchNotOver},
	{game.ErrNotParticipant, CodeNotParticipant},
	{game.ErrOutOfAmmo, CodeOutOfAmmo},
	{game.ErrArmorSlotsFull, CodeArmorSlotsFull},
	{game.ErrTargetSunk, CodeTargetSunk},
	{game.ErrShipSunk, CodeShipSunk},

	{game.ErrChestNotFound, CodeChestNotFound},
	{game.ErrChestOpened, CodeChestOpenedBefore},
	{game.ErrWrongAnswer, CodeWrongAnswer},
	{game.ErrChestOtherMatch, CodeChestOtherMatch},
}

// CodeFor maps a domain error to its response code. Errors outside the
// table are internal failures.
func CodeFor(err error) Code {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return CodeInternal
}
