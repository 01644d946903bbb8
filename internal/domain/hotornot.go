package domain

import (
	"time"

	"github.com/evetabi/hotornot/internal/orderedmap"
)

// ──────────────────────────────────────────────────────────────────────────────
// Constants — fixed by the contest rules, never to be tuned per-post.
// ──────────────────────────────────────────────────────────────────────────────

const (
	// BetCreatorCommissionPercentage is the share of a room's total pot the
	// post's author receives at tabulation; the same percentage is deducted
	// from every winning or draw payout.
	BetCreatorCommissionPercentage uint8 = 10

	// WinningsMultiplier is applied to a winning stake before commission is
	// deducted: a winner's gross payout is stake × WinningsMultiplier.
	WinningsMultiplier uint8 = 2

	// MaxSlots is the number of one-hour slots a post accepts bets for.
	MaxSlots uint8 = 48

	// SlotDurationSeconds is the width of one slot.
	SlotDurationSeconds uint64 = 3600

	// RoomCapacity is the number of distinct bettors a single room can hold
	// before a bet spills into the next room.
	RoomCapacity uint64 = 100

	// TotalContestSeconds is the full betting window: MaxSlots × SlotDurationSeconds.
	TotalContestSeconds uint64 = uint64(MaxSlots) * SlotDurationSeconds
)

// BetDirection is the side a bettor is taking.
type BetDirection string

const (
	Hot BetDirection = "hot"
	Not BetDirection = "not"
)

// IsValid reports whether d is one of the two recognised directions.
func (d BetDirection) IsValid() bool {
	return d == Hot || d == Not
}

// RoomOutcome is the result of tabulating a single room.
type RoomOutcome string

const (
	RoomOutcomeHotWon RoomOutcome = "hot_won"
	RoomOutcomeNotWon RoomOutcome = "not_won"
	RoomOutcomeDraw   RoomOutcome = "draw" // both pools equal and non-zero, or both zero
)

// BettingStatus is the point-in-time status returned to a caller asking
// whether (and how) they may still bet on a post.
type BettingStatus string

const (
	BettingOpen                     BettingStatus = "betting_open"
	BettingOpenButAlreadyParticipated BettingStatus = "betting_open_but_already_participated"
	BettingClosed                   BettingStatus = "betting_closed"
)

// BettingStatusDetail is the full status payload returned to a caller asking
// whether (and how) they may still bet on a post: the bare status plus the
// data needed to render a live contest — when it started, how many people
// have bet so far, which slot/room is currently accepting bets, and whether
// this particular caller has already taken part.
type BettingStatusDetail struct {
	Status               BettingStatus `json:"status"`
	StartedAt            time.Time     `json:"started_at"`
	NumberOfParticipants uint64        `json:"number_of_participants"`
	OngoingSlot          uint8         `json:"ongoing_slot"`
	OngoingRoom          uint64        `json:"ongoing_room"`

	// HasThisUserParticipatedInThisPost is nil for the anonymous caller —
	// there is no principal to check participation for — and otherwise
	// reports whether that principal has a bet anywhere in the post.
	HasThisUserParticipatedInThisPost *bool `json:"has_this_user_participated_in_this_post,omitempty"`
}

// SlotDetails aggregates every room that exists within one one-hour slot.
// Rooms is keyed by room_id and iterated in ascending order during
// tabulation, and by "last" order when looking up the room currently
// accepting bets.
type SlotDetails struct {
	SlotID uint8                              `json:"slot_id"`
	Rooms  *orderedmap.Map[uint64, *RoomDetails] `json:"rooms"`
}

// RoomDetails tracks the pools and bettor count for a single room. Bets is
// keyed by Principal.Key() and iterated in insertion order, matching the
// nested-ordered-map ledger the engine exposes at its interface boundary.
type RoomDetails struct {
	RoomID        uint64                            `json:"room_id"`
	BetsHot       uint64                            `json:"total_hot_bets"`
	BetsNot       uint64                            `json:"total_not_bets"`
	ParticipantCt uint64                            `json:"participant_count"`
	Outcome       *RoomOutcome                      `json:"outcome,omitempty"`
	Bets          *orderedmap.Map[string, *BetDetails] `json:"bets"`
}

// TotalPot returns the room's combined pool across both directions — the
// figure commission is calculated from, independent of how any individual
// bet's payout happens to round.
func (r *RoomDetails) TotalPot() uint64 {
	return r.BetsHot + r.BetsNot
}

// BetDetails is a single wager placed into a room.
type BetDetails struct {
	Principal   Principal    `json:"principal"`
	Amount      uint64       `json:"amount"`
	Direction   BetDirection `json:"direction"`
	SlotID      uint8        `json:"slot_id"`
	RoomID      uint64       `json:"room_id"`
	PlacedAt    time.Time    `json:"placed_at"`
	Outcome     *RoomOutcome `json:"outcome,omitempty"` // filled in once the room is tabulated
	WinningsOrLoss *int64    `json:"winnings_or_loss,omitempty"`
}

// PlacedBetDetail is the bettor-facing mirror of a bet, handed back to the
// caller so a companion profile/feed service can keep its own copy without
// reaching back into the post's ledger.
type PlacedBetDetail struct {
	PostID    uint64       `json:"post_id"`
	PostOwner Principal    `json:"post_owner"`
	SlotID    uint8        `json:"slot_id"`
	RoomID    uint64       `json:"room_id"`
	Amount    uint64       `json:"amount"`
	Direction BetDirection `json:"direction"`
	PlacedAt  time.Time    `json:"placed_at"`
}

// TokenEventKind distinguishes the two events the ledger collaborator can
// receive from the engine.
type TokenEventKind string

const (
	TokenEventBetPlaced      TokenEventKind = "bet_placed"
	TokenEventCommissionPaid TokenEventKind = "commission_paid"
	TokenEventPayoutEarned   TokenEventKind = "payout_earned"
)

// TokenEvent is handed synchronously to the token-balance collaborator every
// time a bet is placed or a room is tabulated. The collaborator's handling
// must be infallible from the engine's point of view: it may log or retry
// internally, but it never returns an error the engine has to propagate.
type TokenEvent struct {
	Kind      TokenEventKind
	Principal Principal
	PostID    uint64
	SlotID    uint8
	RoomID    uint64
	Amount    uint64
}

// TokenBalanceCollaborator is the narrow interface the engine calls into
// after every bet placement and every room tabulation. Implementations must
// not return an error to the caller — failures are the collaborator's own
// concern (logging, retry queues, dead-letter topics).
type TokenBalanceCollaborator interface {
	HandleTokenEvent(event TokenEvent)
}
