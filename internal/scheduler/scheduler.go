// Package scheduler runs the daily background jobs: the overdue
// pending-movement sweep and the liquidity digest email.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/models"
	"github.com/ncasas/obra-service/internal/notify"
	"github.com/ncasas/obra-service/internal/service"
)

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	cron      *cron.Cron
	movements service.MovementStore
	catalogs  service.CatalogStore
	horizon   *service.HorizonService
	sender    *notify.Sender
	log       *logrus.Logger
}

// New wires the scheduler. Jobs run only after Start.
func New(movements service.MovementStore, catalogs service.CatalogStore, horizon *service.HorizonService, sender *notify.Sender, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		movements: movements,
		catalogs:  catalogs,
		horizon:   horizon,
		sender:    sender,
		log:       log,
	}
}

// Start registers the daily jobs and launches the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 7 * * *", s.sweepOverdue); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("30 7 * * *", s.sendDigests); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// sweepOverdue flags PENDING movements dated before today. The flag is
// informational: status stays PENDING until a user settles or cancels
// the movement.
func (s *Scheduler) sweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	projects, err := s.catalogs.ListProjects(ctx)
	if err != nil {
		s.log.Errorf("Overdue sweep: failed to list projects: %v", err)
		return
	}

	cutoff := overdueCutoff(time.Now())
	pending := models.StatusPending

	for _, p := range projects {
		overdue, err := s.movements.ListMovements(ctx, models.MovementFilter{
			ProjectID: &p.ID,
			Status:    &pending,
			DateTo:    &cutoff,
		})
		if err != nil {
			s.log.Errorf("Overdue sweep for project %s failed: %v", p.Name, err)
			continue
		}
		if len(overdue) == 0 {
			continue
		}
		s.log.Warnf("Project %s has %d overdue pending movements", p.Name, len(overdue))
	}
}

// overdueCutoff is the inclusive upper bound of the overdue window: the
// last instant before today's midnight, so any PENDING movement dated
// yesterday or earlier is overdue regardless of its time of day.
func overdueCutoff(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.Add(-time.Nanosecond)
}

// sendDigests emails the pending cash projection matrix per project.
func (s *Scheduler) sendDigests() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	projects, err := s.catalogs.ListProjects(ctx)
	if err != nil {
		s.log.Errorf("Liquidity digest: failed to list projects: %v", err)
		return
	}

	for _, p := range projects {
		matrix, err := s.horizon.PendingMatrix(ctx, p.ID)
		if err != nil {
			s.log.Errorf("Liquidity digest for project %s failed: %v", p.Name, err)
			continue
		}
		if err := s.sender.SendLiquidityDigest(p.Name, matrix); err != nil {
			s.log.Errorf("Liquidity digest email for project %s failed: %v", p.Name, err)
		}
	}
}
