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

// ──────────────────────────────────────────────────────────────────────────────
// Interfaces injected into BetService to avoid import cycles
// ──────────────────────────────────────────────────────────────────────────────

// Broadcaster is the minimal interface BetService needs from the WS hub.
// Implemented by ws.Hub.
type Broadcaster interface {
	BroadcastBetPlaced(postID uint64, mirror domain.PlacedBetDetail)
}

// ──────────────────────────────────────────────────────────────────────────────
// BetService
// ──────────────────────────────────────────────────────────────────────────────

// BetService orchestrates bet placement: loads a post under a row lock,
// runs the pure placement protocol in internal/domain, and persists the
// result inside a single PostgreSQL transaction; only after commit is the
// resulting TokenEvent handed to the ledger collaborator, mirroring the teacher's
// BetService.PlaceBet shape (lock → mutate → persist → commit → async
// side effects).
type BetService struct {
	postRepo      *repository.PostRepository
	collaborator  domain.TokenBalanceCollaborator
	statusCache   *cache.StatusCache
	broadcaster   Broadcaster // injected after ws.Hub is built
	logger        *slog.Logger
}

// NewBetService creates a BetService.
func NewBetService(
	postRepo *repository.PostRepository,
	collaborator domain.TokenBalanceCollaborator,
	statusCache *cache.StatusCache,
	logger *slog.Logger,
) *BetService {
	return &BetService{
		postRepo:     postRepo,
		collaborator: collaborator,
		statusCache:  statusCache,
		logger:       logger,
	}
}

// SetBroadcaster injects the WS Hub dependency post-construction.
func (s *BetService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// PlaceBet validates and applies a bet against postID on behalf of caller.
// The row lock held across the read-mutate-write cycle makes concurrent
// bets on the same post serialize at the database, the same guarantee the
// teacher's FOR UPDATE wallet lock gives concurrent bets on one user.
func (s *BetService) PlaceBet(ctx context.Context, postID uint64, caller domain.Principal, direction domain.BetDirection, amount uint64, now time.Time) (*domain.PlaceBetResult, error) {
	if amount == 0 {
		return nil, domain.ErrBetTooSmall
	}

	tx, err := s.postRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: begin tx: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	post, txErr := s.postRepo.GetByIDForUpdate(ctx, tx, postID)
	if txErr != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: load post: %w", txErr)
	}

	result, event, placeErr := post.PlaceBet(caller, direction, amount, now)
	if placeErr != nil {
		txErr = placeErr // triggers rollback via defer
		return nil, placeErr
	}

	if txErr = s.postRepo.Save(ctx, tx, post); txErr != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: save post: %w", txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("bet_service.PlaceBet: commit: %w", txErr)
	}

	// The ledger call happens after commit, matching the engine's contract
	// that the collaborator is told about a bet only once it has actually
	// been recorded — a collaborator failure here must never unwind a
	// committed bet.
	s.collaborator.HandleTokenEvent(event)
	s.statusCache.InvalidatePost(ctx, postID)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBetPlaced(postID, result.Mirror)
	}

	return result, nil
}

// GetStatus returns the betting status a caller should see for a post,
// checked against the cache first.
func (s *BetService) GetStatus(ctx context.Context, postID uint64, caller domain.Principal, now time.Time) (domain.BettingStatusDetail, error) {
	if status, ok := s.statusCache.Get(ctx, postID, caller.Key()); ok {
		return status, nil
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return domain.BettingStatusDetail{}, fmt.Errorf("bet_service.GetStatus: %w", err)
	}
	status := post.BettingStatusFor(caller, now)
	s.statusCache.Set(ctx, postID, caller.Key(), status)
	return status, nil
}
