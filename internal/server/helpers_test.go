package server

import (
	"bufio"
	"context"
	"math/rand"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ship-battle/internal/game"
	"ship-battle/internal/network"
	"ship-battle/internal/store"
	"ship-battle/pkg/logger"
)

type auditEntry struct {
	action   string
	username string
	raw      string
	code     int
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAudit) Record(action, username, rawInput string, code int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action, username, rawInput, code})
}

func (a *recordingAudit) all() []auditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]auditEntry(nil), a.entries...)
}

type testOptions struct {
	startingCoin int64
	readBuffer   int
}

func newTestWorld(startingCoin int64) *game.World {
	return game.NewWorld(store.NewMemoryStore(), game.Options{
		StartingCoin:   startingCoin,
		MatchWinReward: 100,
		Rand:           rand.New(rand.NewSource(1)),
	})
}

// newTestServer starts a server on a loopback port and stops it on cleanup
func newTestServer(t *testing.T, opts testOptions) (*Server, *recordingAudit) {
	t.Helper()

	if opts.startingCoin == 0 {
		opts.startingCoin = 5000
	}

	audit := &recordingAudit{}
	s := NewServer(Config{Address: "127.0.0.1:0", ReadBuffer: opts.readBuffer}, newTestWorld(opts.startingCoin))
	s.SetLogger(logger.NewNop("SERVER"), audit)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})
	return s, audit
}

type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, s *Server) *testClient {
	t.Helper()

	c, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	require.NoError(t, c.SetDeadline(time.Now().Add(10*time.Second)))
	t.Cleanup(func() { _ = c.Close() })
	return &testClient{t: t, conn: c, r: bufio.NewReader(c)}
}

func (c *testClient) send(line string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(line + "\r\n"))
	require.NoError(c.t, err)
}

// next reads one response line
func (c *testClient) next() (network.Code, string) {
	c.t.Helper()

	line, err := c.r.ReadString('\n')
	require.NoError(c.t, err)
	require.True(c.t, strings.HasSuffix(line, "\r\n"), "line %q is not CRLF terminated", line)

	code, payload, err := network.ParseResponse(line)
	require.NoError(c.t, err)
	return code, payload
}

// expect reads one line and checks its code
func (c *testClient) expect(want network.Code) string {
	c.t.Helper()

	code, payload := c.next()
	require.Equal(c.t, want, code, "payload %q", payload)
	return payload
}

// do sends a line and expects the reply code
func (c *testClient) do(line string, want network.Code) string {
	c.t.Helper()
	c.send(line)
	return c.expect(want)
}

func (c *testClient) expectEOF() {
	c.t.Helper()
	_, err := c.r.ReadString('\n')
	require.Error(c.t, err)
}

// loginAs registers and logs in a fresh connection
func loginAs(t *testing.T, s *Server, username string) *testClient {
	t.Helper()

	c := dial(t, s)
	c.do("REGISTER "+username+" P@ssw0rd", network.CodeRegistered)
	c.do("LOGIN "+username+" P@ssw0rd", network.CodeLoggedIn)
	return c
}

// startChallengeMatch puts alice on Red and bob on Blue and plays
// SEND_CHALLENGE / ACCEPT_CHALLENGE. It consumes every resulting line and
// returns the match and first chest ids.
func startChallengeMatch(t *testing.T, alice, bob *testClient) (matchID, chestID string) {
	t.Helper()

	require.Equal(t, "1", alice.do("CREATE_TEAM Red", network.CodeTeamCreated))
	require.Equal(t, "2", bob.do("CREATE_TEAM Blue", network.CodeTeamCreated))

	require.Equal(t, "1", alice.do("SEND_CHALLENGE 2", network.CodeChallengeSent))
	require.Equal(t, "1 1", bob.expect(network.CodeChallengeReceived))

	accepted := strings.Fields(bob.do("ACCEPT_CHALLENGE 1", network.CodeChallengeAccept))
	require.Equal(t, "1", accepted[0])
	matchID = accepted[1]

	require.Equal(t, matchID+" 1 2", bob.expect(network.CodeMatchBegan))
	bobChest := strings.Fields(bob.expect(network.CodeChestDropped))

	require.Equal(t, "1 accepted", alice.expect(network.CodeChallengeResolved))
	require.Equal(t, matchID+" 1 2", alice.expect(network.CodeMatchBegan))
	aliceChest := strings.Fields(alice.expect(network.CodeChestDropped))

	require.Equal(t, bobChest, aliceChest)
	return matchID, bobChest[0]
}

// fakeConn records writes for router tests that run without a loop
type fakeConn struct {
	id     uint64
	lines  []string
	closed bool
}

func (f *fakeConn) ID() uint64         { return f.id }
func (f *fakeConn) RemoteAddr() string { return "test" }
func (f *fakeConn) CloseAfterFlush()   { f.closed = true }

func (f *fakeConn) Write(p []byte) error {
	f.lines = append(f.lines, strings.TrimRight(string(p), "\r\n"))
	return nil
}

func (f *fakeConn) last() string {
	if len(f.lines) == 0 {
		return ""
	}
	return f.lines[len(f.lines)-1]
}

// newOfflineServer builds a server whose router is driven directly by the test
func newOfflineServer(t *testing.T) (*Server, *recordingAudit) {
	t.Helper()

	audit := &recordingAudit{}
	s := NewServer(Config{}, newTestWorld(5000))
	s.SetLogger(logger.NewNop("SERVER"), audit)
	return s, audit
}

func fakeLogin(t *testing.T, s *Server, id uint64, username string) *fakeConn {
	t.Helper()

	c := &fakeConn{id: id}
	s.sessions.Create(c)
	s.handleLine(c, "REGISTER "+username+" P@ssw0rd")
	s.handleLine(c, "LOGIN "+username+" P@ssw0rd")
	require.Equal(t, "110", c.last())
	return c
}
