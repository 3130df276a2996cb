// Package server implements the ship battle TCP server on top of the reactor
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-co-op/gocron/v2"

	"ship-battle/internal/game"
	"ship-battle/internal/network"
	"ship-battle/internal/reactor"
	"ship-battle/pkg/logger"
)

// Config holds the server's runtime settings
type Config struct {
	Address         string
	AdminAddress    string
	ReadBuffer      int
	WriteBuffer     int
	ChestInterval   time.Duration
	PersistInterval time.Duration
}

// Recorder receives one entry per dispatched command
type Recorder interface {
	Record(action, username, rawInput string, code int)
}

// Server wires the reactor, the session store, the command router and the game world
type Server struct {
	cfg      Config
	world    *game.World
	sessions *Sessions
	commands map[string]commandSpec
	loop     *reactor.Loop

	scheduler gocron.Scheduler
	admin     *adminServer

	logger    *logger.Logger
	audit     Recorder
	startedAt time.Time
}

// NewServer creates a server for world. Nothing listens until Listen.
func NewServer(cfg Config, world *game.World) *Server {
	s := &Server{
		cfg:      cfg,
		world:    world,
		sessions: NewSessions(),
		logger:   logger.Server,
		audit:    logger.Audit,
	}
	s.commands = s.routes()
	return s
}

// SetLogger replaces the server and audit loggers
func (s *Server) SetLogger(l *logger.Logger, audit Recorder) {
	s.logger = l
	s.audit = audit
}

// Listen binds the game port
func (s *Server) Listen() error {
	loop, err := reactor.NewLoop(s.cfg.Address, s, reactor.Options{
		ReadBuffer:  s.cfg.ReadBuffer,
		WriteBuffer: s.cfg.WriteBuffer,
		Logger:      s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.loop = loop
	return nil
}

// Addr returns the bound game address; nil before Listen
func (s *Server) Addr() net.Addr {
	if s.loop == nil {
		return nil
	}
	return s.loop.Addr()
}

// Serve runs the event loop, the scheduler and the admin endpoint until ctx
// is done. User records are persisted on the way out.
func (s *Server) Serve(ctx context.Context) error {
	if s.loop == nil {
		return errors.New("server is not listening")
	}
	s.startedAt = time.Now()

	if err := s.startScheduler(); err != nil {
		return err
	}
	defer s.stopScheduler()

	if s.cfg.AdminAddress != "" {
		admin, err := s.startAdmin(s.cfg.AdminAddress)
		if err != nil {
			return err
		}
		s.admin = admin
		defer s.admin.shutdown()
	}

	s.logger.Info("Server started and listening on %s", s.loop.Addr())
	err := s.loop.Run(ctx)

	if perr := s.world.Users().Persist(); perr != nil {
		s.logger.Error("Failed to persist users on shutdown: %v", perr)
	}
	s.logger.Info("Server stopped")
	return err
}

// Start listens and serves until ctx is done
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Stop asks the event loop to exit
func (s *Server) Stop() {
	if s.loop != nil {
		s.loop.Stop()
	}
}

// Stats is what the admin endpoint reports
type Stats struct {
	Sessions int `json:"sessions"`
	LoggedIn int `json:"logged_in"`
	game.Stats
	Uptime string `json:"uptime"`
}

// stats must run on the loop goroutine
func (s *Server) stats() Stats {
	return Stats{
		Sessions: s.sessions.Count(),
		LoggedIn: s.sessions.LoggedInCount(),
		Stats:    s.world.Stats(),
		Uptime:   time.Since(s.startedAt).Round(time.Second).String(),
	}
}

// call runs fn on the loop goroutine and waits for it, or for ctx
func (s *Server) call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !s.loop.Post(func() {
		defer close(done)
		fn()
	}) {
		return errors.New("server is shutting down")
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnOpen creates the session of a new connection
func (s *Server) OnOpen(c *reactor.Conn) {
	s.sessions.Create(c)
	s.logger.Info("New client connected: %d from %s", c.ID(), c.RemoteAddr())
}

// OnLine routes one request line
func (s *Server) OnLine(c *reactor.Conn, line string) {
	s.handleLine(c, line)
}

// OnOverflow answers an over-long line with a syntax error
func (s *Server) OnOverflow(c *reactor.Conn) {
	s.logger.Warn("Client %d sent a line longer than the read buffer", c.ID())
	username := ""
	if sess := s.sessions.Get(c.ID()); sess != nil {
		username = sess.Username
	}
	s.write(c, network.Reply{Code: network.CodeSyntax})
	s.audit.Record("OVERFLOW", username, "", int(network.CodeSyntax))
}

// OnClose releases the session of a closed connection
func (s *Server) OnClose(c *reactor.Conn) {
	sess := s.sessions.Remove(c.ID())
	if sess == nil {
		return
	}
	if sess.LoggedIn {
		s.logger.Info("Client disconnected: %d (%s)", c.ID(), sess.Username)
		return
	}
	s.logger.Info("Client disconnected: %d", c.ID())
}

// write enqueues a reply; a full buffer drops it
func (s *Server) write(c conn, r network.Reply) {
	err := c.Write(r.Format())
	switch {
	case err == nil, errors.Is(err, reactor.ErrClosed):
	case errors.Is(err, reactor.ErrWriteBufferFull):
		s.logger.Error("Dropping %d reply to client %d: write buffer full", r.Code, c.ID())
	default:
		s.logger.Error("Failed to write to client %d: %v", c.ID(), err)
	}
}

// deliver sends an async notification to username if they are online
func (s *Server) deliver(username string, r network.Reply) {
	if sess := s.sessions.GetByUsername(username); sess != nil {
		s.write(sess.conn, r)
	}
}

// broadcastMatch writes r to every logged-in session currently in matchID
func (s *Server) broadcastMatch(matchID int, r network.Reply) {
	s.sessions.Each(func(sess *Session) {
		if sess.LoggedIn && sess.MatchID == matchID {
			s.write(sess.conn, r)
		}
	})
}

// syncUsers refreshes the team and match ids cached on online sessions
func (s *Server) syncUsers(usernames ...string) {
	for _, name := range usernames {
		sess := s.sessions.GetByUsername(name)
		if sess == nil {
			continue
		}
		sess.TeamID = s.world.TeamIDOf(name)
		sess.MatchID = s.world.MatchIDOf(name)
	}
}
