package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rpmontada/equinos/internal/config"
	"github.com/rpmontada/equinos/internal/domain/models"
	"github.com/rpmontada/equinos/pkg/metrics"
)

const jobTimeout = 2 * time.Minute

// ReminderDigest renders the pending reminders.
type ReminderDigest interface {
	Digest(ctx context.Context) (string, bool, error)
}

// GroupNotifier posts a message to the unit's chat group.
type GroupNotifier interface {
	NotifyGroup(ctx context.Context, message string) error
}

// Snapshotter aggregates the month that just closed.
type Snapshotter interface {
	Snapshot(ctx context.Context) (models.WorkloadSnapshot, error)
}

// SnapshotStore archives aggregated months.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.WorkloadSnapshot) error
}

// Jobs are the collaborators of the scheduled tasks. A nil notifier skips
// the reminder job and a nil store skips the snapshot job.
type Jobs struct {
	Reminders ReminderDigest
	Notifier  GroupNotifier
	Workload  Snapshotter
	Store     SnapshotStore
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	jobs   Jobs
	cfg    config.ReportingConfig
	logger *zap.Logger
}

// NewScheduler creates a scheduler evaluating cron expressions in loc.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, jobs Jobs, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		jobs:   jobs,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("location", s.cron.Location().String()))

	if s.jobs.Notifier != nil && s.jobs.Reminders != nil {
		if _, err := s.cron.AddFunc(s.cfg.ReminderCron, s.sendReminderDigest); err != nil {
			return fmt.Errorf("schedule reminder digest %q: %w", s.cfg.ReminderCron, err)
		}
	} else {
		s.logger.Warn("reminder digest disabled, chat channel not configured")
	}

	if s.jobs.Store != nil && s.jobs.Workload != nil {
		if _, err := s.cron.AddFunc(s.cfg.SnapshotCron, s.archiveLastMonth); err != nil {
			return fmt.Errorf("schedule workload snapshot %q: %w", s.cfg.SnapshotCron, err)
		}
	} else {
		s.logger.Warn("workload snapshot disabled, archive not configured")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Entries reports the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) sendReminderDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.runReminderDigest(ctx); err != nil {
		s.logger.Error("failed to send reminder digest", zap.Error(err))
	}
}

func (s *Scheduler) runReminderDigest(ctx context.Context) error {
	message, ok, err := s.jobs.Reminders.Digest(ctx)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if !ok {
		s.logger.Info("no reminders due")
		return nil
	}

	if err := s.jobs.Notifier.NotifyGroup(ctx, message); err != nil {
		return fmt.Errorf("notify group: %w", err)
	}

	metrics.RemindersSent.Inc()
	s.logger.Info("reminder digest sent")
	return nil
}

func (s *Scheduler) archiveLastMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.runSnapshot(ctx); err != nil {
		s.logger.Error("failed to archive workload", zap.Error(err))
	}
}

func (s *Scheduler) runSnapshot(ctx context.Context) error {
	snapshot, err := s.jobs.Workload.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("aggregate last month: %w", err)
	}
	if err := s.jobs.Store.SaveSnapshot(ctx, snapshot); err != nil {
		return err
	}

	s.logger.Info("workload archived",
		zap.String("month", snapshot.Workload.Month),
		zap.Float64("total", snapshot.Workload.Total),
		zap.Int("records", snapshot.Records))
	return nil
}
