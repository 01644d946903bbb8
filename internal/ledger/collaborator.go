// Package ledger implements the token-balance collaborator the betting
// engine calls into after every bet placement and every room tabulation. Per
// the engine's contract, handling is synchronous and infallible from the
// engine's point of view — failures here are logged (a failure to apply an
// entry is also published to a dead-letter topic), never returned to the
// caller.
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/infra"
	"github.com/evetabi/hotornot/internal/repository"
)

const (
	topicEvents     = "hotornot.token_events"
	topicDeadLetter = "hotornot.token_events.failed"
)

// Collaborator is the production implementation of domain.TokenBalanceCollaborator.
type Collaborator struct {
	repo     *repository.LedgerRepository
	producer *infra.KafkaProducer
	logger   *slog.Logger
}

// New builds a Collaborator. producer may be the disabled no-op producer
// infra.NewKafkaProducer returns when Kafka isn't configured for the
// current environment.
func New(repo *repository.LedgerRepository, producer *infra.KafkaProducer, logger *slog.Logger) *Collaborator {
	return &Collaborator{repo: repo, producer: producer, logger: logger}
}

var _ domain.TokenBalanceCollaborator = (*Collaborator)(nil)

// HandleTokenEvent applies the balance change implied by event and publishes
// it downstream. It never returns an error: any failure is logged and, where
// possible, mirrored onto a dead-letter topic for later reconciliation.
func (c *Collaborator) HandleTokenEvent(event domain.TokenEvent) {
	ctx := context.Background()

	entry := entryFor(event)
	if entry != nil {
		if err := c.apply(ctx, entry); err != nil {
			c.logger.Error("ledger: failed to apply token event",
				"kind", event.Kind, "principal", event.Principal.String(),
				"post_id", event.PostID, "error", err)
			c.publish(ctx, topicDeadLetter, event)
			return
		}
	}

	c.publish(ctx, topicEvents, event)
}

// entryFor translates an engine TokenEvent into a ledger mutation. Every
// event kind the engine emits carries the principal whose balance moves:
// the bettor for a stake deduction or a payout, the post's owner for a
// commission credit.
func entryFor(event domain.TokenEvent) *domain.LedgerEntry {
	switch event.Kind {
	case domain.TokenEventBetPlaced:
		return &domain.LedgerEntry{
			Principal: event.Principal.String(),
			Type:      domain.LedgerEntryBetPlaced,
			Amount:    decimal.NewFromInt(-int64(event.Amount)),
			PostID:    event.PostID,
			SlotID:    event.SlotID,
			RoomID:    event.RoomID,
		}
	case domain.TokenEventPayoutEarned:
		return &domain.LedgerEntry{
			Principal: event.Principal.String(),
			Type:      domain.LedgerEntryPayoutEarned,
			Amount:    decimal.NewFromInt(int64(event.Amount)),
			PostID:    event.PostID,
			SlotID:    event.SlotID,
			RoomID:    event.RoomID,
		}
	case domain.TokenEventCommissionPaid:
		return &domain.LedgerEntry{
			Principal: event.Principal.String(),
			Type:      domain.LedgerEntryCommissionPaid,
			Amount:    decimal.NewFromInt(int64(event.Amount)),
			PostID:    event.PostID,
			SlotID:    event.SlotID,
			RoomID:    event.RoomID,
		}
	default:
		return nil
	}
}

func (c *Collaborator) apply(ctx context.Context, entry *domain.LedgerEntry) error {
	tx, err := c.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	var txErr error
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = c.repo.ApplyEntry(ctx, tx, entry); txErr != nil {
		return txErr
	}
	return tx.Commit()
}

func (c *Collaborator) publish(ctx context.Context, topic string, event domain.TokenEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("ledger: failed to marshal token event", "error", err)
		return
	}
	if err := c.producer.Publish(ctx, topic, []byte(event.Principal.Key()), payload); err != nil {
		c.logger.Error("ledger: failed to publish token event", "topic", topic, "error", err)
	}
}
