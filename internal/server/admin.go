package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"ship-battle/internal/network"
	"ship-battle/internal/store"
)

const adminTimeout = 2 * time.Second

// adminServer is the operator HTTP endpoint. Handlers never touch game state
// directly; they post closures into the event loop and wait.
type adminServer struct {
	http     *http.Server
	listener net.Listener
}

func (s *Server) adminRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(adminTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/stats", s.handleAdminStats)
	r.Post("/users/{username}/ban", s.handleAdminBan)
	return r
}

func (s *Server) startAdmin(addr string) (*adminServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	a := &adminServer{
		http:     &http.Server{Handler: s.adminRouter(), ReadHeaderTimeout: adminTimeout},
		listener: ln,
	}
	go func() {
		if err := a.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Admin endpoint stopped: %v", err)
		}
	}()

	s.logger.Info("Admin endpoint listening on %s", ln.Addr())
	return a, nil
}

func (a *adminServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	_ = a.http.Shutdown(ctx)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	var st Stats
	if err := s.call(r.Context(), func() { st = s.stats() }); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleAdminBan bans an account and closes its live session, if any
func (s *Server) handleAdminBan(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var banErr error
	err := s.call(r.Context(), func() {
		if banErr = s.world.Ban(username); banErr != nil {
			return
		}
		if sess := s.sessions.GetByUsername(username); sess != nil {
			s.write(sess.conn, network.Reply{Code: network.CodeBanned})
			sess.conn.CloseAfterFlush()
		}
		s.logger.Warn("Player %s banned by operator", username)
	})

	switch {
	case err != nil:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.Is(banErr, store.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": banErr.Error()})
	case banErr != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": banErr.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"username": username, "status": string(store.StatusBanned)})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
