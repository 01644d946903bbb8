package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/evetabi/hotornot/internal/cache"
	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/repository"
)

// TabulationBroadcaster is the minimal interface TabulationService needs
// from the WS hub.
type TabulationBroadcaster interface {
	BroadcastSlotTabulated(postID uint64, slotID uint8, payouts []domain.RoomPayout)
}

// TabulationService settles a post's slot: loads the post under a row
// lock, runs the pure tabulation engine in internal/domain, persists the
// result, and fans every resulting TokenEvent out to the ledger
// collaborator — the same lock-mutate-persist-commit shape
// resolution_service.go uses for market settlement, adapted from one
// long-lived market row to one post row per call.
type TabulationService struct {
	postRepo     *repository.PostRepository
	collaborator domain.TokenBalanceCollaborator
	statusCache  *cache.StatusCache
	broadcaster  TabulationBroadcaster
	logger       *slog.Logger
}

// NewTabulationService builds a TabulationService.
func NewTabulationService(
	postRepo *repository.PostRepository,
	collaborator domain.TokenBalanceCollaborator,
	statusCache *cache.StatusCache,
	logger *slog.Logger,
) *TabulationService {
	return &TabulationService{
		postRepo:     postRepo,
		collaborator: collaborator,
		statusCache:  statusCache,
		logger:       logger,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *TabulationService) SetBroadcaster(b TabulationBroadcaster) { s.broadcaster = b }

// TabulateSlot settles slotID of postID. A slot that has already been
// fully tabulated produces zero payouts and is not an error — the caller
// (typically the scheduler, possibly racing another tick or a manual
// back-office trigger) doesn't need to know whether it was first.
func (s *TabulationService) TabulateSlot(ctx context.Context, postID uint64, slotID uint8) ([]domain.RoomPayout, error) {
	tx, err := s.postRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("tabulation_service.TabulateSlot: begin tx: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	post, txErr := s.postRepo.GetByIDForUpdate(ctx, tx, postID)
	if txErr != nil {
		return nil, fmt.Errorf("tabulation_service.TabulateSlot: load post: %w", txErr)
	}

	payouts, events, tabErr := post.TabulateSlot(slotID)
	if tabErr != nil {
		txErr = tabErr
		return nil, tabErr
	}
	if len(payouts) == 0 {
		return nil, tx.Commit()
	}

	if txErr = s.postRepo.Save(ctx, tx, post); txErr != nil {
		return nil, fmt.Errorf("tabulation_service.TabulateSlot: save post: %w", txErr)
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("tabulation_service.TabulateSlot: commit: %w", txErr)
	}

	for _, event := range events {
		s.collaborator.HandleTokenEvent(event)
	}
	s.statusCache.InvalidatePost(ctx, postID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSlotTabulated(postID, slotID, payouts)
	}

	s.logger.Info("slot tabulated", "post_id", postID, "slot_id", slotID, "rooms", len(payouts))
	return payouts, nil
}

// TabulateDueSlots scans posts whose contest window includes at least one
// slot that has closed but may not yet be tabulated, and tabulates every
// closed slot for each. Called by the scheduler every tick; a single
// failing post does not abort the rest, matching
// ResolveExpiredMarkets' per-item error isolation.
func (s *TabulationService) TabulateDueSlots(ctx context.Context, now time.Time, batchSize int) (int, error) {
	ids, err := s.postRepo.ListOpenWithUntabulatedSlots(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("tabulation_service.TabulateDueSlots: list: %w", err)
	}

	settled := 0
	for _, postID := range ids {
		post, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			s.logger.Error("tabulation: failed to load post", "post_id", postID, "error", err)
			continue
		}
		currentSlot, withinWindow := post.CurrentSlotID(now)
		lastClosedSlot := currentSlot
		if withinWindow && currentSlot > 1 {
			lastClosedSlot = currentSlot - 1
		}
		if !withinWindow {
			lastClosedSlot = domain.MaxSlots
		} else if currentSlot <= 1 {
			continue // still inside slot 1; nothing has closed yet
		}

		for slotID := uint8(1); slotID <= lastClosedSlot; slotID++ {
			payouts, err := s.TabulateSlot(ctx, postID, slotID)
			if err != nil && !domain.IsNotFound(err) {
				s.logger.Error("tabulation: failed to settle slot", "post_id", postID, "slot_id", slotID, "error", err)
				continue
			}
			if len(payouts) > 0 {
				settled++
			}
		}
	}
	return settled, nil
}
