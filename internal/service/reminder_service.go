package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

type reminderStore interface {
	ListOverdue(ctx context.Context, pickedUpBefore int64) ([]models.Deck, error)
	ListWithSheets(ctx context.Context) ([]models.Deck, error)
}

// ReminderService mails evaluators about decks they still hold and about
// newly assigned work.
type ReminderService struct {
	decks        reminderStore
	notifier     DeckNotifier
	overdueAfter time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewReminderService constructs the service. overdueAfter defaults to a week.
func NewReminderService(decks reminderStore, notifier DeckNotifier, overdueAfter time.Duration, logger *zap.Logger) *ReminderService {
	if overdueAfter <= 0 {
		overdueAfter = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{decks: decks, notifier: notifier, overdueAfter: overdueAfter, logger: logger, now: time.Now}
}

// SendOverdueReminders notifies the evaluator of every deck picked up more
// than overdueAfter ago and not yet dropped. It returns the number of mails
// scheduled.
func (s *ReminderService) SendOverdueReminders(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.overdueAfter).Unix()
	decks, err := s.decks.ListOverdue(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Dependency(err, "failed to load overdue decks")
	}
	for _, deck := range decks {
		s.notifier.Notify(ctx, models.EventReminder, deck)
	}
	s.logger.Info("overdue reminders scheduled", zap.Int("count", len(decks)))
	return len(decks), nil
}

// SendAssignmentMails notifies evaluators of every deck with sheets recorded.
func (s *ReminderService) SendAssignmentMails(ctx context.Context) (int, error) {
	decks, err := s.decks.ListWithSheets(ctx)
	if err != nil {
		return 0, appErrors.Dependency(err, "failed to load assigned decks")
	}
	for _, deck := range decks {
		s.notifier.Notify(ctx, models.EventAssigned, deck)
	}
	s.logger.Info("assignment mails scheduled", zap.Int("count", len(decks)))
	return len(decks), nil
}

// ReminderScheduler runs the overdue sweep on a cron schedule.
type ReminderScheduler struct {
	cron     *cron.Cron
	reminder *ReminderService
	logger   *zap.Logger
	timeout  time.Duration
}

// NewReminderScheduler parses spec (standard five-field cron) and registers
// the sweep.
func NewReminderScheduler(reminder *ReminderService, spec string, location *time.Location, logger *zap.Logger) (*ReminderScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	s := &ReminderScheduler{
		cron:     cron.New(cron.WithLocation(location)),
		reminder: reminder,
		logger:   logger,
		timeout:  5 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("parse reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *ReminderScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.reminder.SendOverdueReminders(ctx); err != nil {
		s.logger.Error("reminder sweep failed", zap.Error(err))
	}
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// a running sweep to finish.
func (s *ReminderScheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("reminder scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("reminder scheduler stopped")
	return nil
}
