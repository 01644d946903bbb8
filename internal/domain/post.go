package domain

import (
	"time"

	"github.com/evetabi/hotornot/internal/orderedmap"
)

// ──────────────────────────────────────────────────────────────────────────────
// Post / HotOrNotDetails
// ──────────────────────────────────────────────────────────────────────────────

// Post is the content item a Hot-or-Not contest is attached to. Only the
// fields the betting engine touches are modelled here; everything else about
// a post (media, captions, feed ranking) is out of scope.
type Post struct {
	ID             uint64            `json:"id"`
	Owner          Principal         `json:"owner"`
	CreatedAt      time.Time         `json:"created_at"`
	HotOrNot       *HotOrNotDetails  `json:"hot_or_not_details,omitempty"`
}

// HotOrNotDetails holds everything the betting engine needs: the slot
// ledger, keyed by slot_id. There is no separate per-principal index; the
// already-participated check scans the ledger (see HasPrincipalAlreadyBet).
type HotOrNotDetails struct {
	Slots *orderedmap.Map[uint8, *SlotDetails] `json:"slots"`
}

// NewHotOrNotDetails returns an empty ledger ready to accept its first bet.
func NewHotOrNotDetails() *HotOrNotDetails {
	return &HotOrNotDetails{Slots: orderedmap.New[uint8, *SlotDetails]()}
}

// ──────────────────────────────────────────────────────────────────────────────
// Time grid
// ──────────────────────────────────────────────────────────────────────────────

// SlotIDForElapsed returns the slot a bet made `elapsedSeconds` after the
// post's creation falls into, and whether the contest is still within its
// total window. The final second of the window (elapsedSeconds ==
// TotalContestSeconds) still belongs to the last slot: the upper boundary is
// inclusive.
func SlotIDForElapsed(elapsedSeconds uint64) (slotID uint8, withinWindow bool) {
	if elapsedSeconds > TotalContestSeconds {
		return 0, false
	}
	if elapsedSeconds == TotalContestSeconds {
		return MaxSlots, true
	}
	return uint8(elapsedSeconds/SlotDurationSeconds) + 1, true
}

// CurrentSlotID computes the slot for "now" relative to the post's creation
// time.
func (p *Post) CurrentSlotID(now time.Time) (slotID uint8, withinWindow bool) {
	elapsed := now.Sub(p.CreatedAt)
	if elapsed < 0 {
		return 1, true
	}
	return SlotIDForElapsed(uint64(elapsed.Seconds()))
}

// ──────────────────────────────────────────────────────────────────────────────
// Room allocator
// ──────────────────────────────────────────────────────────────────────────────

// currentRoomID returns the room a new bettor should land in for the given
// slot: the highest room_id that exists, or room 1 if the slot has no rooms
// yet. Spill to room_id+1 happens only once that room is at capacity — see
// PlaceBet.
func currentRoomID(slot *SlotDetails) uint64 {
	roomID, _, ok := slot.Rooms.Last()
	if !ok {
		return 1
	}
	return roomID
}

// ──────────────────────────────────────────────────────────────────────────────
// Status query
// ──────────────────────────────────────────────────────────────────────────────

// BettingStatusFor derives the full status a caller should see for this post
// at `now`: closed once the contest window has elapsed, otherwise open with
// the ongoing slot/room and that room's participant count, plus a note if
// the caller has already bet somewhere in the post. The participation flag
// is left nil for the anonymous caller — there is no principal to check.
func (p *Post) BettingStatusFor(caller Principal, now time.Time) BettingStatusDetail {
	slotID, withinWindow := p.CurrentSlotID(now)
	if !withinWindow {
		return BettingStatusDetail{Status: BettingClosed}
	}

	roomID := p.ongoingRoomID(slotID)
	detail := BettingStatusDetail{
		Status:               BettingOpen,
		StartedAt:            p.CreatedAt,
		NumberOfParticipants: p.roomParticipantCount(slotID, roomID),
		OngoingSlot:          slotID,
		OngoingRoom:          roomID,
	}

	if !caller.IsAnonymous() {
		participated := p.HasPrincipalAlreadyBet(caller)
		detail.HasThisUserParticipatedInThisPost = &participated
		if participated {
			detail.Status = BettingOpenButAlreadyParticipated
		}
	}
	return detail
}

// ongoingRoomID returns the room currently accepting bets within slotID, or
// room 1 if that slot has not opened its first room yet.
func (p *Post) ongoingRoomID(slotID uint8) uint64 {
	if p.HotOrNot == nil {
		return 1
	}
	slot, ok := p.HotOrNot.Slots.Get(slotID)
	if !ok {
		return 1
	}
	return currentRoomID(slot)
}

// roomParticipantCount returns the number of bettors recorded in the given
// slot/room, or 0 if that slot or room doesn't exist yet.
func (p *Post) roomParticipantCount(slotID uint8, roomID uint64) uint64 {
	if p.HotOrNot == nil {
		return 0
	}
	slot, ok := p.HotOrNot.Slots.Get(slotID)
	if !ok {
		return 0
	}
	room, ok := slot.Rooms.Get(roomID)
	if !ok {
		return 0
	}
	return room.ParticipantCt
}

// HasPrincipalAlreadyBet scans every slot and every room in the post's
// ledger looking for a bet from caller. A bettor may only ever place one bet
// per post regardless of which slot or room they land in, so the check
// cannot be narrowed to "the current slot" — it has to cover the whole post.
// A post with no HotOrNotDetails yet (nobody has bet on it) trivially
// returns false.
func (p *Post) HasPrincipalAlreadyBet(caller Principal) bool {
	if p.HotOrNot == nil {
		return false
	}
	found := false
	p.HotOrNot.Slots.Range(func(_ uint8, slot *SlotDetails) bool {
		slot.Rooms.Range(func(_ uint64, room *RoomDetails) bool {
			if room.Bets.Has(caller.Key()) {
				found = true
				return false
			}
			return true
		})
		return !found
	})
	return found
}

// ──────────────────────────────────────────────────────────────────────────────
// Bet placement protocol
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBetResult is everything PlaceBet hands back to its caller: the
// placed bet's own record, the bettor-facing mirror handed to the companion
// profile service, and the post's betting status reflecting the state the
// bet itself just created.
type PlaceBetResult struct {
	Bet    *BetDetails
	Mirror PlacedBetDetail
	Status BettingStatusDetail
}

// PlaceBet runs the full placement protocol: reject the anonymous
// principal, reject bets once the window has closed, reject a second bet
// from the same principal anywhere in the post, then insert into the
// current room (spilling to room_id+1 once that room is full) and update
// the room's pool totals. On success it also returns the TokenEvent the
// caller must hand to the token-balance collaborator.
func (p *Post) PlaceBet(caller Principal, direction BetDirection, amount uint64, now time.Time) (*PlaceBetResult, TokenEvent, error) {
	if caller.IsAnonymous() {
		return nil, TokenEvent{}, ErrUserNotLoggedIn
	}
	if !direction.IsValid() {
		return nil, TokenEvent{}, ErrInvalidBetDirection
	}

	slotID, withinWindow := p.CurrentSlotID(now)
	if !withinWindow {
		return nil, TokenEvent{}, ErrBettingClosed
	}

	if p.HasPrincipalAlreadyBet(caller) {
		return nil, TokenEvent{}, ErrUserAlreadyParticipated
	}

	if p.HotOrNot == nil {
		p.HotOrNot = NewHotOrNotDetails()
	}

	slot, ok := p.HotOrNot.Slots.Get(slotID)
	if !ok {
		slot = &SlotDetails{SlotID: slotID, Rooms: orderedmap.New[uint64, *RoomDetails]()}
		p.HotOrNot.Slots.Set(slotID, slot)
	}

	roomID := currentRoomID(slot)
	room, ok := slot.Rooms.Get(roomID)
	if !ok {
		room = &RoomDetails{RoomID: roomID, Bets: orderedmap.New[string, *BetDetails]()}
		slot.Rooms.Set(roomID, room)
	}
	if room.ParticipantCt >= RoomCapacity {
		roomID++
		room = &RoomDetails{RoomID: roomID, Bets: orderedmap.New[string, *BetDetails]()}
		slot.Rooms.Set(roomID, room)
	}

	bet := &BetDetails{
		Principal: caller,
		Amount:    amount,
		Direction: direction,
		SlotID:    slotID,
		RoomID:    roomID,
		PlacedAt:  now,
	}
	room.Bets.Set(caller.Key(), bet)
	room.ParticipantCt++
	switch direction {
	case Hot:
		room.BetsHot += amount
	case Not:
		room.BetsNot += amount
	}

	mirror := PlacedBetDetail{
		PostID:    p.ID,
		PostOwner: p.Owner,
		SlotID:    slotID,
		RoomID:    roomID,
		Amount:    amount,
		Direction: direction,
		PlacedAt:  now,
	}

	event := TokenEvent{
		Kind:      TokenEventBetPlaced,
		Principal: caller,
		PostID:    p.ID,
		SlotID:    slotID,
		RoomID:    roomID,
		Amount:    amount,
	}

	status := p.BettingStatusFor(caller, now)

	return &PlaceBetResult{Bet: bet, Mirror: mirror, Status: status}, event, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Tabulation engine
// ──────────────────────────────────────────────────────────────────────────────

// RoomPayout is one room's tabulation result: the winning direction (if
// any), the commission the post owner earned, and the per-bettor
// settlements the ledger collaborator must apply.
type RoomPayout struct {
	SlotID     uint8
	RoomID     uint64
	Outcome    RoomOutcome
	Commission uint64
	Bets       []BetSettlement
}

// BetSettlement is one bettor's result within a tabulated room. WinningsOrLoss
// is positive for a payout — including a draw, which returns the stake minus
// commission — and negative for a stake that was lost outright.
type BetSettlement struct {
	Principal      Principal
	Direction      BetDirection
	Amount         uint64
	WinningsOrLoss int64
}

// TabulateSlot settles every room in slotID that has not yet been
// tabulated, in ascending room_id order, and returns one RoomPayout per
// room plus the TokenEvents the caller must hand to the token-balance
// collaborator (one commission event per room, plus one payout event per
// winning bettor, or per bettor in a drawn room). Rooms that have already been tabulated are skipped, matching the
// idempotency of the original: calling this twice for the same slot does
// nothing the second time.
func (p *Post) TabulateSlot(slotID uint8) ([]RoomPayout, []TokenEvent, error) {
	if p.HotOrNot == nil {
		return nil, nil, ErrSlotNotFound
	}
	slot, ok := p.HotOrNot.Slots.Get(slotID)
	if !ok {
		return nil, nil, ErrSlotNotFound
	}

	var payouts []RoomPayout
	var events []TokenEvent

	for _, roomID := range orderedmap.SortedKeysUint64(slot.Rooms) {
		room, _ := slot.Rooms.Get(roomID)
		if room.Outcome != nil {
			continue // already tabulated; no-op
		}

		payout, roomEvents := tabulateRoom(p.ID, p.Owner, slotID, room)
		payouts = append(payouts, payout)
		events = append(events, roomEvents...)
	}

	if len(payouts) == 0 {
		return nil, nil, nil
	}
	return payouts, events, nil
}

// tabulateRoom decides the winner of a single room, computes the truncating
// integer payout for every bet, and marks the room (and each bet) with the
// resulting outcome so a second tabulation call is a no-op. owner receives
// the room's commission, if any.
func tabulateRoom(postID uint64, owner Principal, slotID uint8, room *RoomDetails) (RoomPayout, []TokenEvent) {
	var outcome RoomOutcome
	switch {
	case room.BetsHot > room.BetsNot:
		outcome = RoomOutcomeHotWon
	case room.BetsNot > room.BetsHot:
		outcome = RoomOutcomeNotWon
	default:
		outcome = RoomOutcomeDraw
	}
	room.Outcome = &outcome

	// Commission is a flat cut of the room's total pot, taken once up front —
	// not summed from each winner's own gross-minus-net skim, which drifts
	// from the pot figure whenever the hot/not stakes aren't equal.
	commission := room.TotalPot() * uint64(BetCreatorCommissionPercentage) / 100

	var settlements []BetSettlement
	var events []TokenEvent

	room.Bets.Range(func(_ string, bet *BetDetails) bool {
		settlement := BetSettlement{
			Principal: bet.Principal,
			Direction: bet.Direction,
			Amount:    bet.Amount,
		}

		switch {
		case outcome == RoomOutcomeDraw:
			// Draw: every bettor gets their own stake back, minus commission.
			net := bet.Amount * uint64(100-BetCreatorCommissionPercentage) / 100
			settlement.WinningsOrLoss = int64(net)
			events = append(events, TokenEvent{
				Kind:      TokenEventPayoutEarned,
				Principal: bet.Principal,
				PostID:    postID,
				SlotID:    slotID,
				RoomID:    room.RoomID,
				Amount:    net,
			})

		case (outcome == RoomOutcomeHotWon && bet.Direction == Hot) ||
			(outcome == RoomOutcomeNotWon && bet.Direction == Not):
			// Winner: gross = amount * multiplier; commission comes off the
			// gross before it is paid out. Evaluated strictly multiply-then-
			// divide, left to right, to match the original integer truncation.
			gross := bet.Amount * uint64(WinningsMultiplier)
			net := gross * uint64(100-BetCreatorCommissionPercentage) / 100
			settlement.WinningsOrLoss = int64(net)
			events = append(events, TokenEvent{
				Kind:      TokenEventPayoutEarned,
				Principal: bet.Principal,
				PostID:    postID,
				SlotID:    slotID,
				RoomID:    room.RoomID,
				Amount:    net,
			})

		default:
			// Loser: stake is forfeit.
			settlement.WinningsOrLoss = -int64(bet.Amount)
		}

		outcomeCopy := outcome
		bet.Outcome = &outcomeCopy
		woc := settlement.WinningsOrLoss
		bet.WinningsOrLoss = &woc

		settlements = append(settlements, settlement)
		return true
	})

	// Commission is charged unconditionally, regardless of win or draw and
	// regardless of whether the pot is small enough to round it to zero.
	events = append(events, TokenEvent{
		Kind:      TokenEventCommissionPaid,
		Principal: owner,
		PostID:    postID,
		SlotID:    slotID,
		RoomID:    room.RoomID,
		Amount:    commission,
	})

	return RoomPayout{
		SlotID:     slotID,
		RoomID:     room.RoomID,
		Outcome:    outcome,
		Commission: commission,
		Bets:       settlements,
	}, events
}
