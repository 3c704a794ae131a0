package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aymerick/raymond"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/pkg/jobs"
	"github.com/noah-isme/deck-tracker-api/pkg/mailer"
)

// JobTypeDeckMail is the queue job type for deck notification mails.
const JobTypeDeckMail = "deck.mail"

// ErrMailNotConfigured is returned by SMTPConfigProvider when no account is stored.
var ErrMailNotConfigured = errors.New("smtp configuration missing")

// SMTPConfigProvider supplies the mail account for each send.
type SMTPConfigProvider interface {
	MailSettings(ctx context.Context) (mailer.Settings, error)
}

type templateFinder interface {
	FindByCategory(ctx context.Context, event models.NotificationEvent) (*models.EmailTemplate, error)
}

type mailSender interface {
	Send(ctx context.Context, settings mailer.Settings, msg mailer.Message) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type deckMail struct {
	Event models.NotificationEvent
	Deck  models.Deck
	At    time.Time
}

// NotificationService renders deck mails from stored Handlebars templates and
// delivers them in the background. Delivery problems are logged, never
// returned to the code that triggered the mail.
type NotificationService struct {
	templates templateFinder
	smtp      SMTPConfigProvider
	sender    mailSender
	queue     jobEnqueuer
	metrics   *MetricsService
	logger    *zap.Logger
	location  *time.Location
	layout    string
	now       func() time.Time
}

// NotificationServiceOption configures the service.
type NotificationServiceOption func(*NotificationService)

// WithNotificationFormat sets the timezone and layout of rendered timestamps.
func WithNotificationFormat(timezone, layout string) NotificationServiceOption {
	return func(s *NotificationService) {
		if loc, err := time.LoadLocation(timezone); err == nil && timezone != "" {
			s.location = loc
		} else if timezone != "" {
			s.logger.Warn("unknown mail timezone, using UTC", zap.String("timezone", timezone))
		}
		if layout != "" {
			s.layout = layout
		}
	}
}

// WithNotificationMetrics records delivery outcomes.
func WithNotificationMetrics(m *MetricsService) NotificationServiceOption {
	return func(s *NotificationService) { s.metrics = m }
}

// WithNotificationClock overrides the time source.
func WithNotificationClock(now func() time.Time) NotificationServiceOption {
	return func(s *NotificationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewNotificationService constructs the dispatcher. Until AttachQueue is
// called, Notify delivers synchronously.
func NewNotificationService(templates templateFinder, smtp SMTPConfigProvider, sender mailSender, logger *zap.Logger, opts ...NotificationServiceOption) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{
		templates: templates,
		smtp:      smtp,
		sender:    sender,
		logger:    logger,
		location:  time.UTC,
		layout:    "02/01/2006, 15:04:05",
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// AttachQueue routes Notify through q. q must run HandleJob.
func (s *NotificationService) AttachQueue(q jobEnqueuer) {
	s.queue = q
}

// Notify schedules a mail for event about deck.
func (s *NotificationService) Notify(ctx context.Context, event models.NotificationEvent, deck models.Deck) {
	mail := deckMail{Event: event, Deck: deck, At: s.now()}
	if s.queue == nil {
		if err := s.deliver(ctx, mail); err != nil {
			s.logger.Error("deck mail failed", zap.String("event", string(event)), zap.String("deck_id", deck.ID), zap.Error(err))
		}
		return
	}
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: JobTypeDeckMail, Payload: mail})
	if err != nil {
		s.metrics.ObserveNotification(string(event), "dropped")
		s.logger.Warn("deck mail not queued", zap.String("event", string(event)), zap.String("deck_id", deck.ID), zap.Error(err))
	}
}

// HandleJob is the jobs.Handler for the mail queue. A returned error retries.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	mail, ok := job.Payload.(deckMail)
	if !ok {
		s.logger.Error("unexpected mail job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	return s.deliver(ctx, mail)
}

func (s *NotificationService) deliver(ctx context.Context, mail deckMail) error {
	event := string(mail.Event)
	logger := s.logger.With(zap.String("event", event), zap.String("deck_id", mail.Deck.ID))

	to := ""
	if mail.Deck.Evaluator != nil {
		to = strings.TrimSpace(mail.Deck.Evaluator.Email)
	}
	if to == "" {
		s.metrics.ObserveNotification(event, "skipped")
		logger.Warn("deck has no evaluator address, mail skipped")
		return nil
	}

	settings, err := s.smtp.MailSettings(ctx)
	if errors.Is(err, ErrMailNotConfigured) {
		s.metrics.ObserveNotification(event, "skipped")
		logger.Warn("smtp configuration missing, mail skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load smtp settings: %w", err)
	}

	tpl, err := s.templates.FindByCategory(ctx, mail.Event)
	if errors.Is(err, sql.ErrNoRows) {
		s.metrics.ObserveNotification(event, "skipped")
		logger.Warn("no email template for event, mail skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load email template: %w", err)
	}

	msg, err := s.Render(tpl, mail.Deck, mail.At)
	if err != nil {
		s.metrics.ObserveNotification(event, "failed")
		logger.Error("render email template", zap.Error(err))
		return nil
	}
	msg.To = to

	if err := s.sender.Send(ctx, settings, msg); err != nil {
		s.metrics.ObserveNotification(event, "failed")
		return err
	}
	s.metrics.ObserveNotification(event, "sent")
	logger.Info("deck mail sent", zap.String("to", to))
	return nil
}

// Render merges deck into tpl's subject and body.
func (s *NotificationService) Render(tpl *models.EmailTemplate, deck models.Deck, at time.Time) (mailer.Message, error) {
	fields := s.fields(deck, at)
	subject, err := raymond.Render(tpl.Subject, fields)
	if err != nil {
		return mailer.Message{}, fmt.Errorf("render subject: %w", err)
	}
	html, err := raymond.Render(tpl.HTML, fields)
	if err != nil {
		return mailer.Message{}, fmt.Errorf("render body: %w", err)
	}
	return mailer.Message{Subject: subject, HTML: html}, nil
}

func (s *NotificationService) fields(deck models.Deck, at time.Time) map[string]interface{} {
	stamp := at
	switch {
	case deck.StatusOfDeck == models.DeckStatusDropped && deck.DropTimestamp != nil:
		stamp = time.Unix(*deck.DropTimestamp, 0)
	case deck.StatusOfDeck == models.DeckStatusPickedUp && deck.PickUpTimestamp != nil:
		stamp = time.Unix(*deck.PickUpTimestamp, 0)
	}
	return map[string]interface{}{
		"evaluatorName":          deck.Evaluator.Name(),
		"examDate":               time.Unix(deck.ExamDate, 0).In(s.location).Format("02/01/2006"),
		"programName":            deck.ProgramName,
		"courseCode":             deck.CourseCode,
		"courseName":             deck.CourseName,
		"totalStudent":           deck.StudentCount,
		"numberOfPresentStudent": deck.NumberOfAnswerSheets,
		"numberOfAnswerSheets":   deck.NumberOfAnswerSheets,
		"examShift":              string(deck.ShiftOfExam),
		"qrCodeString":           deck.QRCodeString,
		"timestamp":              stamp.In(s.location).Format(s.layout),
	}
}
