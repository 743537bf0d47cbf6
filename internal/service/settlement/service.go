package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alsania-dev/gridplay-sub001/internal/clock"
	"github.com/alsania-dev/gridplay-sub001/internal/domain"
	"github.com/alsania-dev/gridplay-sub001/internal/repository"
)

// Store is the transactional settlement surface. Each mutating call applies
// the intent transition and the matching square transitions as one atomic
// unit, guarded by a compare-and-swap on the intent's current status.
type Store interface {
	GetIntent(ctx context.Context, provider domain.PaymentProvider, externalID string) (*domain.PaymentIntent, error)
	InsertIntent(ctx context.Context, in *domain.PaymentIntent) error
	CompleteIntent(ctx context.Context, provider domain.PaymentProvider, externalID string, at time.Time) (*domain.PaymentIntent, error)
	RefundIntent(ctx context.Context, provider domain.PaymentProvider, externalID string, at time.Time) (*domain.PaymentIntent, error)
	VoidIntent(ctx context.Context, provider domain.PaymentProvider, externalID string, at time.Time) (*domain.PaymentIntent, error)
}

// Assigner triggers digit assignment once a completed payment fills the board.
type Assigner interface {
	AssignNumbersIfNeeded(ctx context.Context, boardID uuid.UUID) (*domain.Board, error)
}

// Counter reads live availability straight from the store. The fill check
// must see the squares confirmed a moment ago, not a cached snapshot.
type Counter interface {
	CountsByStatus(ctx context.Context, boardID uuid.UUID) (*domain.SquareCounts, error)
}

// Invalidator drops cached board state after a webhook moves squares.
type Invalidator interface {
	InvalidateBoard(ctx context.Context, boardID uuid.UUID) error
}

// Publisher announces board changes to subscribed listeners.
type Publisher interface {
	PublishBoardChanged(ctx context.Context, boardID uuid.UUID) error
}

type Service struct {
	store    Store
	assigner Assigner
	counter  Counter
	cache    Invalidator
	pubsub   Publisher
	clk      clock.Clock
	logger   *slog.Logger
}

func New(
	store Store,
	assigner Assigner,
	counter Counter,
	cache Invalidator,
	pubsub Publisher,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	if clk == nil {
		clk = clock.Real{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:    store,
		assigner: assigner,
		counter:  counter,
		cache:    cache,
		pubsub:   pubsub,
		clk:      clk,
		logger:   logger,
	}
}

// ProcessEvent applies one provider-neutral webhook event to the settlement
// state machine. Safe to call any number of times with the same event, in
// any order relative to other events for the transaction: the intent
// record's status decides whether anything happens.
//
// Precedence rule for reversals is fixed here once: Refunded and Denied roll
// back even a completed sale; Voided and Expired only cancel a pending one,
// and arriving after completion they are logged as anomalies and ignored.
//
// Returns:
//   - *domain.PaymentIntent: the post-event record (unchanged on a no-op).
//   - error: settlement.ErrLedgerDesync when squares do not match the record.
func (s *Service) ProcessEvent(ctx context.Context, ev domain.PaymentEvent) (*domain.PaymentIntent, error) {
	const op = "service.settlement.ProcessEvent"

	in, err := s.loadOrCreateIntent(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	switch ev.Type {
	case domain.EventCompleted:
		return s.applyCompleted(ctx, ev, in)
	case domain.EventExpired, domain.EventVoided:
		return s.applyVoided(ctx, ev, in)
	case domain.EventDenied, domain.EventRefunded:
		return s.applyRefunded(ctx, ev, in)
	default:
		return nil, fmt.Errorf("%s:%w: %q", op, ErrUnknownEvent, ev.Type)
	}
}

// loadOrCreateIntent fetches the transaction record, creating a pending one
// from the event itself when the webhook outruns checkout bookkeeping. A
// concurrent insert losing the unique-key race falls back to the winner's
// record.
func (s *Service) loadOrCreateIntent(
	ctx context.Context,
	ev domain.PaymentEvent,
) (*domain.PaymentIntent, error) {
	in, err := s.store.GetIntent(ctx, ev.Provider, ev.ExternalID)
	if err == nil {
		return in, nil
	}

	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.clk.Now()
	in = &domain.PaymentIntent{
		Provider:    ev.Provider,
		ExternalID:  ev.ExternalID,
		BoardID:     ev.BoardID,
		SquareIDs:   ev.SquareIDs,
		UserID:      ev.UserID,
		AmountCents: ev.AmountCents,
		Status:      domain.IntentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.logger.Info("webhook arrived before intent record, creating",
		"provider", ev.Provider, "external_id", ev.ExternalID)

	if err := s.store.InsertIntent(ctx, in); err != nil {
		if errors.Is(err, repository.ErrIntentExists) {
			return s.store.GetIntent(ctx, ev.Provider, ev.ExternalID)
		}
		return nil, err
	}

	return in, nil
}

func (s *Service) applyCompleted(
	ctx context.Context,
	ev domain.PaymentEvent,
	in *domain.PaymentIntent,
) (*domain.PaymentIntent, error) {
	const op = "service.settlement.applyCompleted"

	if in.Status != domain.IntentPending {
		// Already completed, or a reversal won first. Either way the late
		// Completed must not re-apply.
		s.logDuplicate(ev, in)
		return in, nil
	}

	out, err := s.store.CompleteIntent(ctx, ev.Provider, ev.ExternalID, s.clk.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			// Raced with another delivery of the same event.
			s.logDuplicate(ev, in)
			return s.store.GetIntent(ctx, ev.Provider, ev.ExternalID)
		case errors.Is(err, repository.ErrOwnerMismatch),
			errors.Is(err, repository.ErrNotReserved):
			s.logger.Error("settlement desync on completed event",
				"provider", ev.Provider,
				"external_id", ev.ExternalID,
				"board_id", ev.BoardID,
				"error", err,
			)
			return nil, fmt.Errorf("%s:%w: %v", op, ErrLedgerDesync, err)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.notifyChanged(ctx, out.BoardID)
	s.maybeAssignNumbers(ctx, out.BoardID)

	return out, nil
}

func (s *Service) applyVoided(
	ctx context.Context,
	ev domain.PaymentEvent,
	in *domain.PaymentIntent,
) (*domain.PaymentIntent, error) {
	const op = "service.settlement.applyVoided"

	switch in.Status {
	case domain.IntentVoided, domain.IntentRefunded:
		s.logDuplicate(ev, in)
		return in, nil
	case domain.IntentCompleted:
		// A void must not silently undo a confirmed sale; flag it for
		// operator review and leave the squares purchased.
		s.logger.Warn("void event for completed intent, ignoring",
			"provider", ev.Provider,
			"external_id", ev.ExternalID,
			"board_id", in.BoardID,
		)
		return in, nil
	}

	out, err := s.store.VoidIntent(ctx, ev.Provider, ev.ExternalID, s.clk.Now())
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.logDuplicate(ev, in)
			return s.store.GetIntent(ctx, ev.Provider, ev.ExternalID)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.notifyChanged(ctx, out.BoardID)

	return out, nil
}

func (s *Service) applyRefunded(
	ctx context.Context,
	ev domain.PaymentEvent,
	in *domain.PaymentIntent,
) (*domain.PaymentIntent, error) {
	const op = "service.settlement.applyRefunded"

	if in.Status.Terminal() {
		s.logDuplicate(ev, in)
		return in, nil
	}

	// Refunds and denials always win, including over a completed sale.
	out, err := s.store.RefundIntent(ctx, ev.Provider, ev.ExternalID, s.clk.Now())
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.logDuplicate(ev, in)
			return s.store.GetIntent(ctx, ev.Provider, ev.ExternalID)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if in.Status == domain.IntentCompleted {
		s.logger.Warn("refund rolled back a completed sale",
			"provider", ev.Provider,
			"external_id", ev.ExternalID,
			"board_id", out.BoardID,
			"squares", len(out.SquareIDs),
		)
	}

	s.notifyChanged(ctx, out.BoardID)

	return out, nil
}

// GetIntent exposes the settlement record for operator review.
//
// Returns:
//   - *domain.PaymentIntent: the record.
//   - error: settlement.ErrIntentNotFound if it does not exist.
func (s *Service) GetIntent(
	ctx context.Context,
	provider domain.PaymentProvider,
	externalID string,
) (*domain.PaymentIntent, error) {
	const op = "service.settlement.GetIntent"

	in, err := s.store.GetIntent(ctx, provider, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrIntentNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return in, nil
}

// maybeAssignNumbers checks whether the completed payment filled the board
// and triggers the one-time digit shuffle if so. Best effort: assignment
// failures are logged, never bubbled into webhook handling, since the next
// trigger (or an explicit call) retries it.
func (s *Service) maybeAssignNumbers(ctx context.Context, boardID uuid.UUID) {
	if s.assigner == nil || s.counter == nil {
		return
	}

	counts, err := s.counter.CountsByStatus(ctx, boardID)
	if err != nil || !counts.Full() {
		return
	}

	if _, err := s.assigner.AssignNumbersIfNeeded(ctx, boardID); err != nil {
		s.logger.Error("number assignment after board fill failed",
			"board_id", boardID, "error", err)
	}
}

func (s *Service) notifyChanged(ctx context.Context, boardID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.InvalidateBoard(ctx, boardID)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishBoardChanged(ctx, boardID)
	}
}

func (s *Service) logDuplicate(ev domain.PaymentEvent, in *domain.PaymentIntent) {
	s.logger.Debug("duplicate or late payment event, no-op",
		"provider", ev.Provider,
		"external_id", ev.ExternalID,
		"event_type", ev.Type,
		"intent_status", in.Status,
	)
}
