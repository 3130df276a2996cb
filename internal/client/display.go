// Package client handles client-side display and user interface
package client

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"ship-battle/internal/network"
)

// Display renders server lines and local messages with colours by code class
type Display struct {
	mu  sync.Mutex
	out io.Writer

	serverColor  *color.Color
	successColor *color.Color
	pushColor    *color.Color
	combatColor  *color.Color
	chestColor   *color.Color
	warningColor *color.Color
	errorColor   *color.Color
	infoColor    *color.Color
	promptColor  *color.Color
}

// NewDisplay creates a display writing to out
func NewDisplay(out io.Writer) *Display {
	return &Display{
		out:          out,
		serverColor:  color.New(color.FgCyan, color.Bold),
		successColor: color.New(color.FgGreen),
		pushColor:    color.New(color.FgCyan),
		combatColor:  color.New(color.FgRed, color.Bold),
		chestColor:   color.New(color.FgYellow, color.Bold),
		warningColor: color.New(color.FgYellow),
		errorColor:   color.New(color.FgRed),
		infoColor:    color.New(color.FgWhite),
		promptColor:  color.New(color.FgBlue, color.Bold),
	}
}

// PrintBanner displays the game banner
func (d *Display) PrintBanner() {
	banner := `
╔═══════════════════════════════════════╗
║          SHIP BATTLE CLIENT           ║
║        type HELP for commands         ║
╚═══════════════════════════════════════╝
`
	d.print(d.chestColor, banner)
}

// PrintServerStatus displays connection status
func (d *Display) PrintServerStatus(message string) {
	d.print(d.serverColor, fmt.Sprintf("[%s] [SERVER] %s\n", timestamp(), message))
}

// PrintResponse renders one line received from the server
func (d *Display) PrintResponse(line string) {
	code, payload, err := network.ParseResponse(line)
	if err != nil {
		d.PrintWarning(fmt.Sprintf("unreadable server line %q", line))
		return
	}

	label := codeLabel(code)
	text := fmt.Sprintf("[%s] %d %s", timestamp(), code, label)
	if payload != "" {
		text += ": " + payload
	}
	d.print(d.colorFor(code), text+"\n")
}

// PrintHelp lists the commands the server understands
func (d *Display) PrintHelp() {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, u := range commandUsage {
		fmt.Fprintf(&b, "  %-40s %s\n", u.syntax, u.summary)
	}
	b.WriteString("  QUIT                                     leave the client\n")
	d.print(d.infoColor, b.String())
}

// PrintPrompt shows the input prompt without a newline
func (d *Display) PrintPrompt() {
	d.print(d.promptColor, "> ")
}

// PrintError displays a local error
func (d *Display) PrintError(message string) {
	d.print(d.errorColor, fmt.Sprintf("❌ %s\n", message))
}

// PrintWarning displays a local warning
func (d *Display) PrintWarning(message string) {
	d.print(d.warningColor, fmt.Sprintf("⚠️  %s\n", message))
}

// PrintInfo displays a local message
func (d *Display) PrintInfo(message string) {
	d.print(d.infoColor, message+"\n")
}

func (d *Display) print(c *color.Color, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c.Fprint(d.out, text)
}

// colorFor picks a colour by code class; pushed events stand out from replies
func (d *Display) colorFor(code network.Code) *color.Color {
	switch {
	case code >= 400:
		return d.errorColor
	case code >= 300:
		return d.warningColor
	case code == network.CodeChestCollected || code == network.CodeChestQuestion,
		code == network.CodeChestDropped || code == network.CodeChestOpened:
		return d.chestColor
	case code >= 200:
		return d.combatColor
	case code >= 150:
		return d.pushColor
	default:
		return d.successColor
	}
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

var codeLabels = map[network.Code]string{
	network.CodeRegistered:        "REGISTERED",
	network.CodeLoggedOut:         "LOGGED OUT",
	network.CodeBye:               "BYE",
	network.CodeWhoAmI:            "WHOAMI",
	network.CodeCoin:              "COIN",
	network.CodeArmor:             "ARMOR",
	network.CodeArmorBought:       "ARMOR BOUGHT",
	network.CodeWeaponBought:      "WEAPON BOUGHT",
	network.CodeShipStatus:        "SHIP",
	network.CodeLoggedIn:          "LOGGED IN",
	network.CodeTeamCreated:       "TEAM CREATED",
	network.CodeTeamDeleted:       "TEAM DELETED",
	network.CodeTeamList:          "TEAMS",
	network.CodeJoinRequested:     "JOIN REQUESTED",
	network.CodeJoinApproved:      "JOIN APPROVED",
	network.CodeJoinRejected:      "JOIN REJECTED",
	network.CodeMatchStarted:      "MATCH STARTED",
	network.CodeInviteSent:        "INVITE SENT",
	network.CodeInviteAccepted:    "INVITE ACCEPTED",
	network.CodeInviteRejected:    "INVITE REJECTED",
	network.CodeChallengeSent:     "CHALLENGE SENT",
	network.CodeChallengeAccept:   "CHALLENGE ACCEPTED",
	network.CodeChallengeDecl:     "CHALLENGE DECLINED",
	network.CodeChallengeCancel:   "CHALLENGE CANCELED",
	network.CodeLeftTeam:          "LEFT TEAM",
	network.CodeMemberKicked:      "MEMBER KICKED",
	network.CodeMatchEnded:        "MATCH ENDED",
	network.CodeMatchResult:       "MATCH RESULT",
	network.CodeTeamMembers:       "MEMBERS",
	network.CodePendingList:       "PENDING",
	network.CodeChestDropped:      "CHEST DROPPED",
	network.CodeChestOpened:       "CHEST OPENED",
	network.CodeChallengeReceived: "CHALLENGE RECEIVED",
	network.CodeMatchBegan:        "MATCH BEGAN",
	network.CodeJoinReceived:      "JOIN REQUEST",
	network.CodeInviteReceived:    "INVITE",
	network.CodeChallengeResolved: "CHALLENGE",
	network.CodeMembershipChanged: "TEAM",
	network.CodeMatchOver:         "MATCH OVER",
	network.CodeFireHit:           "HIT",
	network.CodeFireSunk:          "SUNK",
	network.CodeFiredAt:           "UNDER FIRE",
	network.CodeChestCollected:    "CHEST COLLECTED",
	network.CodeChestQuestion:     "CHEST QUESTION",
	network.CodeSyntax:            "syntax error",
	network.CodeUserExists:        "user already exists",
	network.CodeInvalidCreds:      "invalid credentials",
	network.CodeBanned:            "account banned",
	network.CodeLoggedInElsewhere: "logged in elsewhere",
	network.CodeAlreadyLoggedIn:   "already logged in",
	network.CodeNotLoggedIn:       "not logged in",
	network.CodeInvalidFormat:     "invalid username or password format",
	network.CodeAlreadyInTeam:     "already in a team",
	network.CodeTeamNameExists:    "team name exists",
	network.CodeInvalidTeamName:   "invalid team name",
	network.CodeTeamNotFound:      "team not found",
	network.CodeNotCreator:        "not team creator",
	network.CodeAlreadyPending:    "already pending",
	network.CodeRequestNotFound:   "request or invite not found",
	network.CodeNotInTeam:         "not in a team",
	network.CodeTeamFull:          "team full",
	network.CodeUserNotFound:      "user not found",
	network.CodeCannotTargetSelf:  "cannot target yourself",
	network.CodeNotTeamMember:     "user not in this team",
	network.CodeTargetInTeam:      "user already in a team",
	network.CodeTeamBusy:          "team busy",
	network.CodeChallengeNotFound: "challenge not found",
	network.CodeChallengeDone:     "challenge already responded",
	network.CodeChallengeOwnTeam:  "cannot challenge your own team",
	network.CodeChallengePending:  "challenge already pending",
	network.CodeNotInMatch:        "not in match",
	network.CodeInvalidItem:       "invalid weapon or armor",
	network.CodeTargetNotInMatch:  "target not in this match",
	network.CodeFriendlyFire:      "friendly fire",
	network.CodeMatchNotFound:     "match not found",
	network.CodeMatchNotOver:      "match cannot end yet",
	network.CodeNotParticipant:    "not a participant",
	network.CodeOutOfAmmo:         "out of ammo",
	network.CodeArmorSlotsFull:    "armor slots full",
	network.CodeTargetSunk:        "target already sunk",
	network.CodeShipSunk:          "your ship is sunk",
	network.CodeNotEnoughCoin:     "not enough coin",
	network.CodeChestNotFound:     "chest not found",
	network.CodeChestOpenedBefore: "chest already opened",
	network.CodeWrongAnswer:       "wrong answer",
	network.CodeChestOtherMatch:   "chest belongs to another match",
	network.CodeInternal:          "internal error",
}

func codeLabel(code network.Code) string {
	if label, ok := codeLabels[code]; ok {
		return label
	}
	return "UNKNOWN"
}
