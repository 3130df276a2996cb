package client

import (
	"bufio"
	"io"
	"strings"
)

type usage struct {
	syntax  string
	summary string
}

var commandUsage = []usage{
	{"REGISTER <user> <password>", "create an account"},
	{"LOGIN <user> <password>", "log in"},
	{"LOGOUT", "log out and stay connected"},
	{"WHOAMI | GETCOIN", "show account"},
	{"CREATE_TEAM <name>", "create a team you lead"},
	{"DELETE_TEAM", "disband your team"},
	{"LIST_TEAMS | TEAM_MEMBERS [team]", "browse teams"},
	{"JOIN_REQUEST <team>", "ask to join a team"},
	{"JOIN_APPROVE|JOIN_REJECT <user>", "answer a join request"},
	{"INVITE <user>", "invite a user to your team"},
	{"INVITE_ACCEPT|INVITE_REJECT <team>", "answer an invite"},
	{"LIST_REQUESTS | LIST_INVITES", "show pending entries"},
	{"LEAVE_TEAM | KICK_MEMBER <user>", "leave or remove a member"},
	{"SEND_CHALLENGE <team>", "challenge another team"},
	{"ACCEPT_CHALLENGE|DECLINE_CHALLENGE <id>", "answer a challenge"},
	{"CANCEL_CHALLENGE <id>", "withdraw a challenge"},
	{"LIST_CHALLENGES", "show challenges waiting for your team"},
	{"START_MATCH <team>", "start a match directly"},
	{"FIRE <target> <weapon>", "shoot at an enemy ship"},
	{"BUYARMOR <1|2>", "buy a basic (1) or heavy (2) armor plate"},
	{"BUY_WEAPON <cannon|laser|missile>", "buy an ammo pack"},
	{"GETARMOR | SHIP_STATUS", "show your ship"},
	{"CHEST_OPEN <id> [answer]", "read or answer a chest puzzle"},
	{"END_MATCH <id>", "end a decided match"},
	{"GET_MATCH_RESULT <id>", "show a match result"},
	{"BYE", "close the connection"},
}

// InputHandler reads command lines typed by the user
type InputHandler struct {
	scanner *bufio.Scanner
	display *Display
}

// NewInputHandler creates a new input handler reading from in
func NewInputHandler(in io.Reader, display *Display) *InputHandler {
	return &InputHandler{
		scanner: bufio.NewScanner(in),
		display: display,
	}
}

// ReadCommand prompts for the next non-empty line. It returns io.EOF once the
// input is exhausted.
func (ih *InputHandler) ReadCommand() (string, error) {
	for {
		ih.display.PrintPrompt()
		if !ih.scanner.Scan() {
			if err := ih.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		line := strings.TrimSpace(ih.scanner.Text())
		if line == "" {
			continue
		}
		return line, nil
	}
}

// isLocal reports whether a line is handled by the client itself
func isLocal(line string) (string, bool) {
	switch cmd := strings.ToUpper(strings.Fields(line)[0]); cmd {
	case "HELP", "QUIT", "EXIT":
		return cmd, true
	default:
		return "", false
	}
}
