package network

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"ship-battle/internal/game"
	"ship-battle/internal/store"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		cmd     string
		payload string
	}{
		{"LOGIN alice P@ssw0rd", "LOGIN", "alice P@ssw0rd"},
		{"login alice P@ssw0rd", "LOGIN", "alice P@ssw0rd"},
		{"  WHOAMI  ", "WHOAMI", ""},
		{"CHEST_OPEN 3   the answer  ", "CHEST_OPEN", "3   the answer"},
		{"", "", ""},
	}

	for _, tt := range tests {
		cmd, payload := ParseLine(tt.line)
		require.Equal(t, tt.cmd, cmd, tt.line)
		require.Equal(t, tt.payload, payload, tt.line)
	}
}

func TestReplyFormat(t *testing.T) {
	require.Equal(t, "110\r\n", string(Reply{Code: CodeLoggedIn}.Format()))
	require.Equal(t, "131 4 2\r\n", string(NewReply(CodeChallengeAccept, 4, 2).Format()))
	require.Equal(t, "107 missile 1 3000\r\n", string(NewReply(CodeWeaponBought, game.Missile, 1, int64(3000)).Format()))
	require.True(t, Reply{Code: CodeSyntax}.IsError())
	require.False(t, Reply{Code: CodeFiredAt}.IsError())
}

func TestParseResponse(t *testing.T) {
	code, payload, err := ParseResponse("141 7 gold 12 40\r\n")
	require.NoError(t, err)
	require.Equal(t, CodeChestDropped, code)
	require.Equal(t, "7 gold 12 40", payload)

	_, _, err = ParseResponse("hello")
	require.Error(t, err)
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{store.ErrUserExists, CodeUserExists},
		{store.ErrInsufficientCoin, CodeNotEnoughCoin},
		{game.ErrInvalidPassword, CodeInvalidFormat},
		{game.ErrTeamBusy, CodeTeamBusy},
		{game.ErrOutOfAmmo, CodeOutOfAmmo},
		{game.ErrChestOtherMatch, CodeChestOtherMatch},
		{fmt.Errorf("buy armor: %w", store.ErrInsufficientCoin), CodeNotEnoughCoin},
		{errors.New("disk on fire"), CodeInternal},
		// a failed win reward wraps a store error but is still an internal failure
		{fmt.Errorf("%w: %w", game.ErrRewardFailed, store.ErrUserNotFound), CodeInternal},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, CodeFor(tt.err), tt.err.Error())
	}
}
