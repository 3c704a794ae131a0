package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/internal/repository"
	appErrors "github.com/noah-isme/deck-tracker-api/pkg/errors"
)

const analyticsCachePattern = "analytics:*"

type lifecycleStore interface {
	FindByQRCode(ctx context.Context, qr string) (*models.Deck, error)
	FindByID(ctx context.Context, id string) (*models.Deck, error)
	Transition(ctx context.Context, params repository.TransitionParams) error
	SetAnswerSheetCount(ctx context.Context, qr string, count int) error
}

// DeckNotifier is told about completed transitions. Implementations must not
// block the caller.
type DeckNotifier interface {
	Notify(ctx context.Context, event models.NotificationEvent, deck models.Deck)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string)
}

// TransitionError is a rejected transition tagged with the reason code
// reported by bulk operations.
type TransitionError struct {
	Reason string
	Err    *appErrors.Error
}

func (e *TransitionError) Error() string { return e.Err.Error() }

func (e *TransitionError) Unwrap() error { return e.Err }

func invalidTransition(reason, message string) *TransitionError {
	return &TransitionError{Reason: reason, Err: appErrors.Clone(appErrors.ErrInvalidTransition, message)}
}

var (
	errDeckNotFound = &TransitionError{Reason: models.ReasonNotFound, Err: appErrors.Clone(appErrors.ErrNotFound, "deck not found")}
	errNotPickedUp  = invalidTransition(models.ReasonNotPickedUp, "deck has not been picked up yet")
	errZeroSheets   = invalidTransition(models.ReasonZeroSheets, "number of answer sheets must be greater than zero")
	errDeckDropped  = invalidTransition(models.ReasonDropped, "deck has already been dropped")
	errStateChanged = &TransitionError{
		Reason: models.ReasonStateChanged,
		Err:    appErrors.Clone(appErrors.ErrConflict, "deck changed concurrently, please retry"),
	}
)

// LifecycleService drives decks through PENDING -> PICKED_UP -> DROPPED.
type LifecycleService struct {
	decks    lifecycleStore
	notifier DeckNotifier
	cache    cacheInvalidator
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// LifecycleServiceOption configures the service.
type LifecycleServiceOption func(*LifecycleService)

// WithLifecycleNotifier sets the notification sink.
func WithLifecycleNotifier(n DeckNotifier) LifecycleServiceOption {
	return func(s *LifecycleService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLifecycleCache sets the analytics cache invalidated after transitions.
func WithLifecycleCache(c cacheInvalidator) LifecycleServiceOption {
	return func(s *LifecycleService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLifecycleMetrics records transition outcomes.
func WithLifecycleMetrics(m *MetricsService) LifecycleServiceOption {
	return func(s *LifecycleService) { s.metrics = m }
}

// WithLifecycleClock overrides the time source.
func WithLifecycleClock(now func() time.Time) LifecycleServiceOption {
	return func(s *LifecycleService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewLifecycleService constructs the lifecycle engine.
func NewLifecycleService(decks lifecycleStore, logger *zap.Logger, opts ...LifecycleServiceOption) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LifecycleService{decks: decks, logger: logger, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// ParseAction normalises a requested action.
func ParseAction(raw string) (models.DeckAction, error) {
	action := models.DeckAction(strings.ToLower(strings.TrimSpace(raw)))
	switch action {
	case models.DeckActionPickup, models.DeckActionDrop:
		return action, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "action must be one of pickup, drop")
}

// Transition applies action to the deck identified by its QR string and
// returns the updated deck.
func (s *LifecycleService) Transition(ctx context.Context, qr string, action models.DeckAction) (*models.Deck, error) {
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}
	qr = strings.TrimSpace(qr)
	if qr == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "qrCodeString is required")
	}
	deck, err := s.decks.FindByQRCode(ctx, qr)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return s.apply(ctx, deck, action)
}

// TransitionBulk applies action to each deck id independently. A failure on
// one deck never rolls back another.
func (s *LifecycleService) TransitionBulk(ctx context.Context, ids []string, action models.DeckAction) (*models.BulkTransitionResult, error) {
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ids must not be empty")
	}

	result := &models.BulkTransitionResult{Errors: []models.BulkTransitionError{}}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			result.Failed++
			result.Errors = append(result.Errors, models.BulkTransitionError{
				ID: id, Reason: models.ReasonValidation, Message: "id is required",
			})
			continue
		}
		deck, err := s.decks.FindByID(ctx, id)
		if err == nil {
			_, err = s.apply(ctx, deck, action)
		} else {
			err = s.lookupError(err)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, models.BulkTransitionError{
				ID: id, Reason: reasonOf(err), Message: appErrors.FromError(err).Message,
			})
			continue
		}
		result.Updated++
	}

	s.logger.Info("bulk deck transition",
		zap.String("action", string(action)), zap.Int("updated", result.Updated), zap.Int("failed", result.Failed))
	return result, nil
}

// SetAnswerSheetCount overwrites the sheet count of a deck in any status.
func (s *LifecycleService) SetAnswerSheetCount(ctx context.Context, qr string, count int) (*models.Deck, error) {
	qr = strings.TrimSpace(qr)
	if qr == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "qrCodeString is required")
	}
	if count < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "numberOfAnswerSheets must not be negative")
	}
	if err := s.decks.SetAnswerSheetCount(ctx, qr, count); err != nil {
		return nil, s.lookupError(err)
	}
	deck, err := s.decks.FindByQRCode(ctx, qr)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return deck, nil
}

// check reports why action cannot apply to deck, or the target status and
// whether the deck is already there.
func check(deck *models.Deck, action models.DeckAction) (models.DeckStatus, bool, error) {
	switch action {
	case models.DeckActionPickup:
		switch deck.StatusOfDeck {
		case models.DeckStatusPickedUp:
			return models.DeckStatusPickedUp, true, nil
		case models.DeckStatusDropped:
			return "", false, errDeckDropped
		}
		return models.DeckStatusPickedUp, false, nil
	default:
		switch deck.StatusOfDeck {
		case models.DeckStatusDropped:
			return "", false, errDeckDropped
		case models.DeckStatusPickedUp:
		default:
			return "", false, errNotPickedUp
		}
		if deck.NumberOfAnswerSheets <= 0 {
			return "", false, errZeroSheets
		}
		return models.DeckStatusDropped, false, nil
	}
}

func (s *LifecycleService) apply(ctx context.Context, deck *models.Deck, action models.DeckAction) (*models.Deck, error) {
	target, done, err := check(deck, action)
	if err != nil {
		s.metrics.ObserveTransition(string(action), reasonOf(err))
		return nil, err
	}
	if done {
		s.metrics.ObserveTransition(string(action), "noop")
		return deck, nil
	}

	at := s.now().Unix()
	err = s.decks.Transition(ctx, repository.TransitionParams{ID: deck.ID, From: deck.StatusOfDeck, To: target, At: at})
	if errors.Is(err, sql.ErrNoRows) {
		err = s.explainLostUpdate(ctx, deck.ID, action)
	}
	if err != nil {
		var appErr *appErrors.Error
		if !errors.As(err, &appErr) {
			s.logger.Error("deck transition failed", zap.String("deck_id", deck.ID), zap.Error(err))
			err = appErrors.Dependency(err, "failed to update deck")
		}
		s.metrics.ObserveTransition(string(action), reasonOf(err))
		return nil, err
	}

	updated := *deck
	updated.StatusOfDeck = target
	updated.UpdatedAt = s.now().UTC()
	event := models.EventPickedUp
	if target == models.DeckStatusPickedUp {
		updated.PickUpTimestamp = &at
	} else {
		updated.DropTimestamp = &at
		event = models.EventDropped
	}

	s.metrics.ObserveTransition(string(action), "success")
	if s.cache != nil {
		s.cache.Invalidate(ctx, analyticsCachePattern)
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, event, updated)
	}
	s.logger.Info("deck transitioned",
		zap.String("deck_id", updated.ID), zap.String("qr", updated.QRCodeString), zap.String("status", string(target)))
	return &updated, nil
}

// explainLostUpdate re-reads a deck whose guarded update matched no row and
// reports the precondition that now fails.
func (s *LifecycleService) explainLostUpdate(ctx context.Context, id string, action models.DeckAction) error {
	current, err := s.decks.FindByID(ctx, id)
	if err != nil {
		return s.lookupError(err)
	}
	if _, _, err := check(current, action); err != nil {
		return err
	}
	return errStateChanged
}

func (s *LifecycleService) lookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errDeckNotFound
	}
	s.logger.Error("deck lookup failed", zap.Error(err))
	return appErrors.Dependency(err, "failed to load deck")
}

func reasonOf(err error) string {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Reason
	}
	appErr := appErrors.FromError(err)
	if appErr.Code == appErrors.ErrValidation.Code {
		return models.ReasonValidation
	}
	return models.ReasonDependency
}
