// Package network defines the line protocol spoken between clients and the server
package network

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a numeric response code. The first digit gives the class:
// 1xx success, 2xx game events, 3xx/4xx client errors, 5xx server errors.
type Code int

const (
	// Account and session
	CodeRegistered   Code = 100
	CodeLoggedOut    Code = 101
	CodeBye          Code = 102
	CodeWhoAmI       Code = 103
	CodeCoin         Code = 104
	CodeArmor        Code = 105
	CodeArmorBought  Code = 106
	CodeWeaponBought Code = 107
	CodeShipStatus   Code = 108
	CodeLoggedIn     Code = 110

	// Teams
	CodeTeamCreated     Code = 120
	CodeTeamDeleted     Code = 121
	CodeTeamList        Code = 122
	CodeJoinRequested   Code = 123
	CodeJoinApproved    Code = 124
	CodeJoinRejected    Code = 125
	CodeMatchStarted    Code = 126
	CodeInviteSent      Code = 127
	CodeInviteAccepted  Code = 128
	CodeInviteRejected  Code = 129
	CodeChallengeSent   Code = 130
	CodeChallengeAccept Code = 131
	CodeChallengeDecl   Code = 132
	CodeChallengeCancel Code = 133
	CodeLeftTeam        Code = 134
	CodeMemberKicked    Code = 135
	CodeMatchEnded      Code = 136
	CodeMatchResult     Code = 137
	CodeTeamMembers     Code = 138
	CodePendingList     Code = 139
	CodeChestDropped    Code = 141
	CodeChestOpened     Code = 145

	// Asynchronous notifications
	CodeChallengeReceived Code = 150
	CodeMatchBegan        Code = 151
	CodeJoinReceived      Code = 152
	CodeInviteReceived    Code = 153
	CodeChallengeResolved Code = 154
	CodeMembershipChanged Code = 155
	CodeMatchOver         Code = 156

	// Combat and chests
	CodeFireHit        Code = 200
	CodeFireSunk       Code = 201
	CodeFiredAt        Code = 202
	CodeChestCollected Code = 210
	CodeChestQuestion  Code = 211

	// Client errors
	CodeSyntax            Code = 301
	CodeUserExists        Code = 310
	CodeInvalidCreds      Code = 311
	CodeBanned            Code = 312
	CodeLoggedInElsewhere Code = 313
	CodeAlreadyLoggedIn   Code = 314
	CodeNotLoggedIn       Code = 315
	CodeInvalidFormat     Code = 316
	CodeAlreadyInTeam     Code = 320
	CodeTeamNameExists    Code = 321
	CodeInvalidTeamName   Code = 322
	CodeTeamNotFound      Code = 323
	CodeNotCreator        Code = 324
	CodeAlreadyPending    Code = 325
	CodeRequestNotFound   Code = 326
	CodeNotInTeam         Code = 327
	CodeTeamFull          Code = 328
	CodeUserNotFound      Code = 329
	CodeCannotTargetSelf  Code = 330
	CodeNotTeamMember     Code = 331
	CodeTargetInTeam      Code = 332
	CodeTeamBusy          Code = 333
	CodeChallengeNotFound Code = 340
	CodeChallengeDone     Code = 341
	CodeChallengeOwnTeam  Code = 342
	CodeChallengePending  Code = 344
	CodeNotInMatch        Code = 410
	CodeInvalidItem       Code = 411
	CodeTargetNotInMatch  Code = 412
	CodeFriendlyFire      Code = 413
	CodeMatchNotFound     Code = 414
	CodeMatchNotOver      Code = 415
	CodeNotParticipant    Code = 416
	CodeOutOfAmmo         Code = 417
	CodeArmorSlotsFull    Code = 418
	CodeTargetSunk        Code = 419
	CodeShipSunk          Code = 420
	CodeNotEnoughCoin     Code = 430
	CodeChestNotFound     Code = 440
	CodeChestOpenedBefore Code = 441
	CodeWrongAnswer       Code = 442
	CodeChestOtherMatch   Code = 443

	// Server errors
	CodeInternal Code = 500
)

// Terminator ends every line written by the server
const Terminator = "\r\n"

// Reply is one response line: a code and an optional space separated payload
type Reply struct {
	Code    Code
	Payload string
}

// NewReply builds a reply whose payload is the fields joined by spaces
func NewReply(code Code, fields ...interface{}) Reply {
	if len(fields) == 0 {
		return Reply{Code: code}
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = toField(f)
	}
	return Reply{Code: code, Payload: strings.Join(parts, " ")}
}

// Format renders the reply as a terminated wire line
func (r Reply) Format() []byte {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(r.Code)))
	if r.Payload != "" {
		b.WriteByte(' ')
		b.WriteString(r.Payload)
	}
	b.WriteString(Terminator)
	return []byte(b.String())
}

// IsError reports whether the code is in an error class
func (r Reply) IsError() bool {
	return r.Code >= 300
}

// ParseLine splits a request line at the first space into an upper-cased
// command and a trimmed payload
func ParseLine(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, payload, _ := strings.Cut(line, " ")
	return strings.ToUpper(cmd), strings.TrimSpace(payload)
}

// ParseResponse splits a server line into its code and payload
func ParseResponse(line string) (Code, string, error) {
	line = strings.TrimRight(line, "\r\n")
	head, payload, _ := strings.Cut(line, " ")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", err
	}
	return Code(n), payload, nil
}

// Fields splits a payload into whitespace separated arguments
func Fields(payload string) []string {
	return strings.Fields(payload)
}

func toField(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
