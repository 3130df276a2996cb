package server

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
)

// startScheduler registers the periodic jobs. Jobs that touch the world post
// into the event loop; persisting goes straight to the store, which locks.
func (s *Server) startScheduler() error {
	if s.cfg.ChestInterval <= 0 && s.cfg.PersistInterval <= 0 {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if s.cfg.ChestInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(s.cfg.ChestInterval),
			gocron.NewTask(func() {
				s.loop.Post(s.spawnChests)
			}),
			gocron.WithName("chest-spawn"),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule chest spawns: %w", err)
		}
	}

	if s.cfg.PersistInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(s.cfg.PersistInterval),
			gocron.NewTask(func() {
				if err := s.world.Users().Persist(); err != nil {
					s.logger.Error("Failed to persist users: %v", err)
				}
			}),
			gocron.WithName("persist-users"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule user persistence: %w", err)
		}
	}

	sched.Start()
	s.scheduler = sched
	s.logger.Info("Scheduler started (chests every %s, persist every %s)", s.cfg.ChestInterval, s.cfg.PersistInterval)
	return nil
}

func (s *Server) stopScheduler() {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Warn("Scheduler shutdown: %v", err)
	}
	s.scheduler = nil
}
