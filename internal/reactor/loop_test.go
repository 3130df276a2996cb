//go:build linux

package reactor

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"ship-battle/pkg/logger"
)

// echoHandler answers every line with "ECHO <line>" and reports events on channels
type echoHandler struct {
	opened   chan uint64
	closed   chan uint64
	overflow chan uint64
	conns    map[uint64]*Conn
}

func newEchoHandler() *echoHandler {
	return &echoHandler{
		opened:   make(chan uint64, 16),
		closed:   make(chan uint64, 16),
		overflow: make(chan uint64, 16),
		conns:    make(map[uint64]*Conn),
	}
}

func (h *echoHandler) OnOpen(c *Conn) {
	h.conns[c.ID()] = c
	h.opened <- c.ID()
}

func (h *echoHandler) OnLine(c *Conn, line string) {
	switch line {
	case "QUIT":
		c.Close()
		c.Close()
	case "BYE":
		_ = c.Write([]byte("BYE\r\n"))
		c.CloseAfterFlush()
	default:
		_ = c.Write([]byte("ECHO " + line + "\r\n"))
	}
}

func (h *echoHandler) OnOverflow(c *Conn) {
	_ = c.Write([]byte("OVERFLOW\r\n"))
	h.overflow <- c.ID()
}

func (h *echoHandler) OnClose(c *Conn) {
	delete(h.conns, c.ID())
	h.closed <- c.ID()
}

func startLoop(t *testing.T, h Handler, opts Options) *Loop {
	t.Helper()

	l := newTestLoop(t, h, opts)
	runLoop(t, l)
	return l
}

func newTestLoop(t *testing.T, h Handler, opts Options) *Loop {
	t.Helper()

	opts.Logger = logger.NewNop("TEST")
	l, err := NewLoop("127.0.0.1:0", h, opts)
	require.NoError(t, err)
	return l
}

func runLoop(t *testing.T, l *Loop) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("loop did not stop")
		}
	})
}

func dial(t *testing.T, l *Loop) (net.Conn, *bufio.Reader) {
	t.Helper()

	c, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.SetDeadline(time.Now().Add(5*time.Second)))
	return c, bufio.NewReader(c)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\r\n")
}

func waitID(t *testing.T, ch chan uint64) uint64 {
	t.Helper()

	select {
	case id := <-ch:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return 0
	}
}

func TestPipelinedLines(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{})
	c, r := dial(t, l)

	_, err := c.Write([]byte("one\r\ntwo\nthree\r\n"))
	require.NoError(t, err)

	require.Equal(t, "ECHO one", readLine(t, r))
	require.Equal(t, "ECHO two", readLine(t, r))
	require.Equal(t, "ECHO three", readLine(t, r))
}

func TestPartialLineIsBuffered(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{})
	c, r := dial(t, l)

	_, err := c.Write([]byte("hel"))
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = c.Write([]byte("lo\n"))
	require.NoError(t, err)

	require.Equal(t, "ECHO hello", readLine(t, r))
}

func TestOverlongLine(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{ReadBuffer: 16})
	c, r := dial(t, l)

	_, err := c.Write([]byte(strings.Repeat("x", 40) + "\nPING\n"))
	require.NoError(t, err)

	require.Equal(t, "OVERFLOW", readLine(t, r))
	require.Equal(t, "ECHO PING", readLine(t, r))
	waitID(t, h.overflow)
}

func TestWriteBufferLimit(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{WriteBuffer: 8})
	dial(t, l)
	id := waitID(t, h.opened)

	result := make(chan error, 1)
	require.True(t, l.Post(func() {
		result <- h.conns[id].Write([]byte(strings.Repeat("y", 16)))
	}))

	select {
	case err := <-result:
		require.ErrorIs(t, err, ErrWriteBufferFull)
	case <-time.After(5 * time.Second):
		t.Fatal("posted task did not run")
	}
}

// writeState is a snapshot of a connection's output side taken on the loop goroutine
type writeState struct {
	err      error
	pending  int
	watchOut bool
}

func snapshot(t *testing.T, l *Loop, h *echoHandler, id uint64, write []byte) writeState {
	t.Helper()

	result := make(chan writeState, 1)
	require.True(t, l.Post(func() {
		conn := h.conns[id]
		var st writeState
		if write != nil {
			st.err = conn.Write(write)
		}
		st.pending = conn.Pending()
		st.watchOut = conn.watchOut
		result <- st
	}))

	select {
	case st := <-result:
		return st
	case <-time.After(5 * time.Second):
		t.Fatal("posted task did not run")
		return writeState{}
	}
}

func TestWriteBackpressure(t *testing.T) {
	const size = 16 << 20

	h := newEchoHandler()
	l := startLoop(t, h, Options{WriteBuffer: 64 << 20})
	c, _ := dial(t, l)
	id := waitID(t, h.opened)

	// the peer is not reading yet, so the kernel buffer fills and the rest is queued
	st := snapshot(t, l, h, id, bytes.Repeat([]byte("x"), size))
	require.NoError(t, st.err)
	require.Positive(t, st.pending)
	require.True(t, st.watchOut)

	require.NoError(t, c.SetDeadline(time.Now().Add(20*time.Second)))
	n, err := io.CopyN(io.Discard, c, size)
	require.NoError(t, err)
	require.EqualValues(t, size, n)

	deadline := time.Now().Add(5 * time.Second)
	for {
		st := snapshot(t, l, h, id, nil)
		if st.pending == 0 && !st.watchOut {
			break
		}
		require.True(t, time.Now().Before(deadline), "output never drained: %+v", st)
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAcceptRetriesAfterFailure(t *testing.T) {
	h := newEchoHandler()
	l := newTestLoop(t, h, Options{})
	l.acceptRetry = 10 * time.Millisecond

	failures := 1
	l.accept = func(fd int) (int, string, error) {
		if failures > 0 {
			failures--
			return -1, "", unix.EMFILE
		}
		return acceptConn(fd)
	}
	runLoop(t, l)

	// no second connection arrives to re-trigger the listener
	c, r := dial(t, l)
	waitID(t, h.opened)

	_, err := c.Write([]byte("ping\n"))
	require.NoError(t, err)
	require.Equal(t, "ECHO ping", readLine(t, r))
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{})
	c, r := dial(t, l)
	id := waitID(t, h.opened)

	_, err := c.Write([]byte("QUIT\n"))
	require.NoError(t, err)

	require.Equal(t, id, waitID(t, h.closed))
	_, err = r.ReadString('\n')
	require.Error(t, err)

	select {
	case extra := <-h.closed:
		t.Fatalf("connection %d closed twice", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseAfterFlush(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{})
	c, r := dial(t, l)

	_, err := c.Write([]byte("BYE\nignored\n"))
	require.NoError(t, err)

	require.Equal(t, "BYE", readLine(t, r))
	_, err = r.ReadString('\n')
	require.Error(t, err)
	waitID(t, h.closed)
}

func TestPeerDisconnect(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{})
	c, _ := dial(t, l)
	id := waitID(t, h.opened)

	require.NoError(t, c.Close())
	require.Equal(t, id, waitID(t, h.closed))
}

func TestPostBroadcast(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{})
	_, r1 := dial(t, l)
	_, r2 := dial(t, l)
	waitID(t, h.opened)
	waitID(t, h.opened)

	require.True(t, l.Post(func() {
		for _, c := range h.conns {
			_ = c.Write([]byte("HELLO\r\n"))
		}
	}))

	require.Equal(t, "HELLO", readLine(t, r1))
	require.Equal(t, "HELLO", readLine(t, r2))
}

func TestConnectionIDsIncrease(t *testing.T) {
	h := newEchoHandler()
	l := startLoop(t, h, Options{})
	dial(t, l)
	first := waitID(t, h.opened)
	dial(t, l)
	second := waitID(t, h.opened)

	require.Less(t, first, second)
}

func TestStopClosesConnections(t *testing.T) {
	h := newEchoHandler()
	l, err := NewLoop("127.0.0.1:0", h, Options{Logger: logger.NewNop("TEST")})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	_, r := dial(t, l)
	waitID(t, h.opened)

	l.Stop()
	require.NoError(t, <-done)
	waitID(t, h.closed)

	_, err = r.ReadString('\n')
	require.Error(t, err)
	require.False(t, l.Post(func() {}))
}
