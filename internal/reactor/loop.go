// Package reactor is a single-threaded, readiness driven TCP event loop.
// Every handler callback and every posted task runs on the goroutine that
// called Run, so state touched only from there needs no locking.
package reactor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"ship-battle/pkg/logger"
)

var (
	// ErrUnsupportedPlatform is returned by NewLoop where epoll is unavailable
	ErrUnsupportedPlatform = errors.New("reactor: platform not supported")
	// ErrWriteBufferFull means the peer is not draining its output
	ErrWriteBufferFull = errors.New("reactor: write buffer full")
	// ErrClosed is returned when writing to a closed connection
	ErrClosed = errors.New("reactor: connection closed")
)

const (
	DefaultReadBuffer  = 4 * 1024
	DefaultWriteBuffer = 64 * 1024

	maxEvents = 128

	defaultAcceptRetry = 100 * time.Millisecond
)

// Handler receives connection events. All methods run on the loop goroutine.
type Handler interface {
	OnOpen(c *Conn)
	OnLine(c *Conn, line string)
	// OnOverflow is called when a line does not fit in the read buffer
	OnOverflow(c *Conn)
	OnClose(c *Conn)
}

// Options configures buffer sizes and logging
type Options struct {
	ReadBuffer  int
	WriteBuffer int
	Logger      *logger.Logger
}

// Loop owns the listening socket, the poller and every connection
type Loop struct {
	handler Handler
	opts    Options
	log     *logger.Logger

	poller   poller
	listenFD int
	addr     net.Addr

	conns  map[int]*Conn
	nextID uint64

	accept         func(listenFD int) (int, string, error)
	acceptRetry    time.Duration
	acceptRetrying bool

	mu       sync.Mutex
	tasks    []func()
	stopping atomic.Bool
	running  atomic.Bool
}

// NewLoop binds addr and prepares a loop. Nothing is accepted until Run.
func NewLoop(addr string, h Handler, opts Options) (*Loop, error) {
	if opts.ReadBuffer <= 0 {
		opts.ReadBuffer = DefaultReadBuffer
	}
	if opts.WriteBuffer <= 0 {
		opts.WriteBuffer = DefaultWriteBuffer
	}
	if opts.Logger == nil {
		opts.Logger = logger.Server
	}

	p, err := newPoller()
	if err != nil {
		return nil, err
	}

	fd, bound, err := listenTCP(addr)
	if err != nil {
		_ = p.close()
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if err := p.add(fd); err != nil {
		_ = sysClose(fd)
		_ = p.close()
		return nil, fmt.Errorf("failed to register listener: %w", err)
	}

	return &Loop{
		handler:  h,
		opts:     opts,
		log:      opts.Logger,
		poller:   p,
		listenFD: fd,
		addr:     bound,
		conns:    make(map[int]*Conn),

		accept:      acceptConn,
		acceptRetry: defaultAcceptRetry,
	}, nil
}

// Addr returns the bound listening address
func (l *Loop) Addr() net.Addr {
	return l.addr
}

// Run processes events until ctx is done or Stop is called. On return every
// connection has been closed and the listener released.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("reactor: loop already running")
	}
	defer l.shutdown()

	stop := context.AfterFunc(ctx, l.Stop)
	defer stop()

	events := make([]event, maxEvents)
	for !l.stopping.Load() {
		n, err := l.poller.wait(events)
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}

		for _, ev := range events[:n] {
			switch {
			case ev.wakeup:
			case ev.fd == l.listenFD:
				l.acceptAll()
			default:
				c, ok := l.conns[ev.fd]
				if !ok {
					continue
				}
				if ev.writable {
					c.flush()
				}
				if ev.readable || ev.hangup {
					c.handleReadable()
				}
			}
		}

		l.runTasks()
	}
	return nil
}

// Post queues fn to run on the loop goroutine. It reports false once the loop
// is stopping.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopping.Load() {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	if err := l.poller.wake(); err != nil {
		l.log.Error("Failed to wake event loop: %v", err)
	}
	return true
}

// Stop asks the loop to exit after the current iteration. Safe from any goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	already := l.stopping.Swap(true)
	l.mu.Unlock()
	if already {
		return
	}
	if err := l.poller.wake(); err != nil {
		l.log.Error("Failed to wake event loop: %v", err)
	}
}

// ConnCount returns the number of open connections. Loop goroutine only.
func (l *Loop) ConnCount() int {
	return len(l.conns)
}

func (l *Loop) runTasks() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
}

func (l *Loop) acceptAll() {
	for {
		fd, remote, err := l.accept(l.listenFD)
		if err != nil {
			if isAgain(err) {
				return
			}
			if isInterrupted(err) {
				continue
			}
			l.log.Error("Accept failed, retrying in %s: %v", l.acceptRetry, err)
			l.retryAccept()
			return
		}

		if err := l.poller.add(fd); err != nil {
			l.log.Error("Failed to register connection from %s: %v", remote, err)
			_ = sysClose(fd)
			continue
		}

		l.nextID++
		c := &Conn{
			loop:   l,
			fd:     fd,
			id:     l.nextID,
			remote: remote,
			rbuf:   make([]byte, 0, l.opts.ReadBuffer),
		}
		l.conns[fd] = c
		l.log.Debug("Accepted connection %d from %s", c.id, remote)
		l.handler.OnOpen(c)
	}
}

// retryAccept schedules another acceptAll. The listener is edge-triggered, so
// connections left in the backlog are not reported again on their own.
func (l *Loop) retryAccept() {
	if l.acceptRetrying {
		return
	}
	l.acceptRetrying = true
	time.AfterFunc(l.acceptRetry, func() {
		l.Post(func() {
			l.acceptRetrying = false
			l.acceptAll()
		})
	})
}

// shutdown runs queued tasks one last time, then closes connections in id order
func (l *Loop) shutdown() {
	l.runTasks()

	open := make([]*Conn, 0, len(l.conns))
	for _, c := range l.conns {
		open = append(open, c)
	}
	sort.Slice(open, func(i, j int) bool { return open[i].id < open[j].id })
	for _, c := range open {
		c.Close()
	}

	_ = l.poller.remove(l.listenFD)
	_ = sysClose(l.listenFD)
	_ = l.poller.close()
}
