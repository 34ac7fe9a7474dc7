package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/notexe/rentdesk/internal/reminder"
	"github.com/notexe/rentdesk/internal/ui"
	"go.uber.org/zap"
)

// Scheduler periodically reloads the store and prints a digest of overdue
// and due-soon reminders. It only reads; the interactive shell stays the
// single writer.
type Scheduler struct {
	repo      reminder.Repository
	clock     reminder.Clock
	window    time.Duration
	interval  time.Duration
	out       io.Writer
	formatter *ui.Formatter
	logger    *zap.Logger
}

// Config holds the scheduler settings.
type Config struct {
	Interval time.Duration
	Window   time.Duration
	Clock    reminder.Clock
}

// New creates a new Scheduler reading from repo and writing digests to out.
func New(repo reminder.Repository, cfg Config, out io.Writer, formatter *ui.Formatter, logger *zap.Logger) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = reminder.SystemClock
	}
	if cfg.Window <= 0 {
		cfg.Window = reminder.DefaultDueSoonWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		repo:      repo,
		clock:     cfg.Clock,
		window:    cfg.Window,
		interval:  cfg.Interval,
		out:       out,
		formatter: formatter,
		logger:    logger,
	}
}

// Run blocks and runs tick() on interval + immediately on start.
// It exits when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	s.tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return nil
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	snap, err := reminder.LoadSnapshot(s.repo)
	if err != nil {
		s.logger.Error("reminder check failed", zap.Error(err))
		fmt.Fprintln(s.out, s.formatter.FormatError(err))
		return
	}

	now := s.clock.Now()
	overdue := snap.Overdue(now)
	soon := snap.DueSoon(now, s.window)

	if len(overdue) == 0 && len(soon) == 0 {
		s.logger.Debug("no reminders to report")
		return
	}

	s.logger.Info("reminder digest",
		zap.Int("overdue", len(overdue)),
		zap.Int("due_soon", len(soon)))

	fmt.Fprintln(s.out, s.Digest(snap, now))
}

// Digest renders the overdue and due-soon sections of snap at now.
func (s *Scheduler) Digest(snap reminder.Snapshot, now time.Time) string {
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n",
		s.formatter.FormatInfo("Reminder digest "+now.Format("2006-01-02 15:04")),
		s.formatter.FormatReminderList("Overdue", snap.Overdue(now), now, s.window),
		s.formatter.FormatReminderList("Due soon", snap.DueSoon(now, s.window), now, s.window),
		s.formatter.FormatSummary(snap.Summarize(now, s.window)),
	)
}
