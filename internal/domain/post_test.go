package domain_test

import (
	"testing"
	"time"

	"github.com/evetabi/hotornot/internal/domain"
)

func newPrincipal(t *testing.T, seed byte) domain.Principal {
	t.Helper()
	p, err := domain.NewPrincipal([]byte{seed, seed + 1, seed + 2})
	if err != nil {
		t.Fatalf("NewPrincipal: %v", err)
	}
	return p
}

// ── Time grid ─────────────────────────────────────────────────────────────────

func TestSlotIDForElapsed_Boundaries(t *testing.T) {
	cases := []struct {
		elapsed  uint64
		wantSlot uint8
		wantOK   bool
	}{
		{0, 1, true},
		{3599, 1, true},
		{3600, 2, true}, // exactly on a slot boundary belongs to the next slot
		{domain.TotalContestSeconds - 1, domain.MaxSlots, true},
		{domain.TotalContestSeconds, domain.MaxSlots, true}, // inclusive upper boundary
		{domain.TotalContestSeconds + 1, 0, false},
	}
	for _, c := range cases {
		slot, ok := domain.SlotIDForElapsed(c.elapsed)
		if ok != c.wantOK {
			t.Errorf("SlotIDForElapsed(%d) ok = %v, want %v", c.elapsed, ok, c.wantOK)
			continue
		}
		if ok && slot != c.wantSlot {
			t.Errorf("SlotIDForElapsed(%d) slot = %d, want %d", c.elapsed, slot, c.wantSlot)
		}
	}
}

// ── Status query ──────────────────────────────────────────────────────────────

func TestBettingStatusFor_OpenThenClosed(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: created}
	caller := newPrincipal(t, 0x20)

	if got := post.BettingStatusFor(caller, created.Add(time.Minute)); got.Status != domain.BettingOpen {
		t.Errorf("status right after creation = %s, want %s", got.Status, domain.BettingOpen)
	}

	closed := created.Add(time.Duration(domain.TotalContestSeconds+1) * time.Second)
	if got := post.BettingStatusFor(caller, closed); got.Status != domain.BettingClosed {
		t.Errorf("status after window elapses = %s, want %s", got.Status, domain.BettingClosed)
	}
}

func TestBettingStatusFor_AlreadyParticipated(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: created}
	caller := newPrincipal(t, 0x30)

	if _, _, err := post.PlaceBet(caller, domain.Hot, 100, created.Add(time.Second)); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	got := post.BettingStatusFor(caller, created.Add(2*time.Second))
	if got.Status != domain.BettingOpenButAlreadyParticipated {
		t.Errorf("status after betting once = %s, want %s", got.Status, domain.BettingOpenButAlreadyParticipated)
	}
	if got.HasThisUserParticipatedInThisPost == nil || !*got.HasThisUserParticipatedInThisPost {
		t.Error("HasThisUserParticipatedInThisPost = false or nil, want true")
	}
	if got.NumberOfParticipants != 1 {
		t.Errorf("NumberOfParticipants = %d, want 1", got.NumberOfParticipants)
	}
	if got.OngoingSlot != 1 {
		t.Errorf("OngoingSlot = %d, want 1", got.OngoingSlot)
	}
	if got.OngoingRoom != 1 {
		t.Errorf("OngoingRoom = %d, want 1", got.OngoingRoom)
	}
	if !got.StartedAt.Equal(created) {
		t.Errorf("StartedAt = %s, want %s", got.StartedAt, created)
	}
}

func TestBettingStatusFor_AnonymousCallerHasNilParticipationFlag(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: created}

	got := post.BettingStatusFor(domain.AnonymousPrincipal, created.Add(time.Second))
	if got.HasThisUserParticipatedInThisPost != nil {
		t.Errorf("HasThisUserParticipatedInThisPost = %v, want nil for the anonymous caller", *got.HasThisUserParticipatedInThisPost)
	}
	if got.Status != domain.BettingOpen {
		t.Errorf("status = %s, want %s", got.Status, domain.BettingOpen)
	}
}

// ── Bet placement protocol ────────────────────────────────────────────────────

func TestPlaceBet_RejectsAnonymous(t *testing.T) {
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: time.Now()}
	_, _, err := post.PlaceBet(domain.AnonymousPrincipal, domain.Hot, 100, time.Now())
	if err != domain.ErrUserNotLoggedIn {
		t.Errorf("err = %v, want %v", err, domain.ErrUserNotLoggedIn)
	}
}

func TestPlaceBet_RejectsAfterWindowCloses(t *testing.T) {
	created := time.Now().Add(-time.Duration(domain.TotalContestSeconds+1) * time.Second)
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: created}
	_, _, err := post.PlaceBet(newPrincipal(t, 0x20), domain.Hot, 100, time.Now())
	if err != domain.ErrBettingClosed {
		t.Errorf("err = %v, want %v", err, domain.ErrBettingClosed)
	}
}

func TestPlaceBet_RejectsSecondBetAnywhereInPost(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: created}
	caller := newPrincipal(t, 0x40)

	if _, _, err := post.PlaceBet(caller, domain.Hot, 50, created.Add(time.Second)); err != nil {
		t.Fatalf("first PlaceBet: %v", err)
	}
	// Same principal, different slot — still must be rejected.
	_, _, err := post.PlaceBet(caller, domain.Not, 50, created.Add(2*time.Hour))
	if err != domain.ErrUserAlreadyParticipated {
		t.Errorf("err = %v, want %v", err, domain.ErrUserAlreadyParticipated)
	}
}

// TestPlaceBet_ReturnsPostInsertStatus confirms PlaceBet's returned status
// reflects the state created by the bet it just placed, not the state before it.
func TestPlaceBet_ReturnsPostInsertStatus(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: created}
	caller := newPrincipal(t, 0x45)

	result, _, err := post.PlaceBet(caller, domain.Hot, 100, created.Add(time.Second))
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if result.Status.Status != domain.BettingOpenButAlreadyParticipated {
		t.Errorf("post-insert status = %s, want %s", result.Status.Status, domain.BettingOpenButAlreadyParticipated)
	}
	if result.Status.NumberOfParticipants != 1 {
		t.Errorf("post-insert NumberOfParticipants = %d, want 1", result.Status.NumberOfParticipants)
	}
}

// TestPlaceBet_SpillsToNextRoomAtCapacity fills room 1 to RoomCapacity and
// checks the next bettor lands in room 2.
func TestPlaceBet_SpillsToNextRoomAtCapacity(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: created}

	for i := uint64(0); i < domain.RoomCapacity; i++ {
		caller, err := domain.NewPrincipal([]byte{byte(i), byte(i >> 8), 0xAA})
		if err != nil {
			t.Fatalf("NewPrincipal: %v", err)
		}
		result, _, err := post.PlaceBet(caller, domain.Hot, 10, created.Add(time.Second))
		if err != nil {
			t.Fatalf("PlaceBet #%d: %v", i, err)
		}
		if result.Bet.RoomID != 1 {
			t.Fatalf("bet #%d landed in room %d, want room 1", i, result.Bet.RoomID)
		}
	}

	overflowCaller, _ := domain.NewPrincipal([]byte{0xFF, 0xFE, 0xFD})
	result, _, err := post.PlaceBet(overflowCaller, domain.Hot, 10, created.Add(time.Second))
	if err != nil {
		t.Fatalf("overflow PlaceBet: %v", err)
	}
	if result.Bet.RoomID != 2 {
		t.Errorf("overflow bet landed in room %d, want room 2", result.Bet.RoomID)
	}
	if result.Status.OngoingRoom != 2 {
		t.Errorf("overflow bet status OngoingRoom = %d, want 2", result.Status.OngoingRoom)
	}
	if result.Status.NumberOfParticipants != 1 {
		t.Errorf("overflow bet status NumberOfParticipants = %d, want 1 (room 2 has only the overflow bettor)", result.Status.NumberOfParticipants)
	}
}

// ── Tabulation engine ─────────────────────────────────────────────────────────

// TestTabulateSlot_HotWins mirrors spec scenario S3: more hot stake than not
// stake in a room means every hot bettor is paid amount*2*(90/100) and every
// not bettor loses their stake. Commission is 10% of the room's total pot
// (150), not a sum of each winner's own gross-minus-net skim.
func TestTabulateSlot_HotWins(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 7, Owner: newPrincipal(t, 0x10), CreatedAt: created}

	hotBettor := newPrincipal(t, 0x01)
	notBettor := newPrincipal(t, 0x02)
	if _, _, err := post.PlaceBet(hotBettor, domain.Hot, 100, created.Add(time.Second)); err != nil {
		t.Fatalf("PlaceBet hot: %v", err)
	}
	if _, _, err := post.PlaceBet(notBettor, domain.Not, 50, created.Add(time.Second)); err != nil {
		t.Fatalf("PlaceBet not: %v", err)
	}

	payouts, events, err := post.TabulateSlot(1)
	if err != nil {
		t.Fatalf("TabulateSlot: %v", err)
	}
	if len(payouts) != 1 {
		t.Fatalf("expected 1 room payout, got %d", len(payouts))
	}
	room := payouts[0]
	if room.Outcome != domain.RoomOutcomeHotWon {
		t.Fatalf("outcome = %s, want %s", room.Outcome, domain.RoomOutcomeHotWon)
	}

	// amount=100, multiplier=2 -> gross=200, net=200*90/100=180
	wantNet := int64(180)
	// pot=100+50=150, commission=150*10/100=15
	wantCommission := uint64(15)
	var sawWinner, sawLoser bool
	for _, s := range room.Bets {
		switch s.Principal.Key() {
		case hotBettor.Key():
			sawWinner = true
			if s.WinningsOrLoss != wantNet {
				t.Errorf("winner payout = %d, want %d", s.WinningsOrLoss, wantNet)
			}
		case notBettor.Key():
			sawLoser = true
			if s.WinningsOrLoss != -50 {
				t.Errorf("loser result = %d, want -50", s.WinningsOrLoss)
			}
		}
	}
	if !sawWinner || !sawLoser {
		t.Fatalf("expected both a winner and a loser settlement")
	}
	if room.Commission != wantCommission {
		t.Errorf("commission = %d, want %d", room.Commission, wantCommission)
	}

	var sawCommissionEvent, sawPayoutEvent bool
	for _, e := range events {
		if e.Kind == domain.TokenEventCommissionPaid {
			sawCommissionEvent = true
		}
		if e.Kind == domain.TokenEventPayoutEarned {
			sawPayoutEvent = true
		}
	}
	if !sawCommissionEvent || !sawPayoutEvent {
		t.Errorf("expected both a commission and a payout token event")
	}
}

// TestTabulateSlot_NotWins mirrors TestTabulateSlot_HotWins with the not side
// as the majority pool, confirming the symmetric branch pays out correctly.
func TestTabulateSlot_NotWins(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 11, Owner: newPrincipal(t, 0x10), CreatedAt: created}

	hotBettor := newPrincipal(t, 0x06)
	notBettor := newPrincipal(t, 0x07)
	if _, _, err := post.PlaceBet(hotBettor, domain.Hot, 50, created.Add(time.Second)); err != nil {
		t.Fatalf("PlaceBet hot: %v", err)
	}
	if _, _, err := post.PlaceBet(notBettor, domain.Not, 100, created.Add(time.Second)); err != nil {
		t.Fatalf("PlaceBet not: %v", err)
	}

	payouts, _, err := post.TabulateSlot(1)
	if err != nil {
		t.Fatalf("TabulateSlot: %v", err)
	}
	room := payouts[0]
	if room.Outcome != domain.RoomOutcomeNotWon {
		t.Fatalf("outcome = %s, want %s", room.Outcome, domain.RoomOutcomeNotWon)
	}

	wantNet := int64(180) // 100*2*90/100
	wantCommission := uint64(15) // pot=150, 10%=15
	var sawWinner, sawLoser bool
	for _, s := range room.Bets {
		switch s.Principal.Key() {
		case notBettor.Key():
			sawWinner = true
			if s.WinningsOrLoss != wantNet {
				t.Errorf("winner payout = %d, want %d", s.WinningsOrLoss, wantNet)
			}
		case hotBettor.Key():
			sawLoser = true
			if s.WinningsOrLoss != -50 {
				t.Errorf("loser result = %d, want -50", s.WinningsOrLoss)
			}
		}
	}
	if !sawWinner || !sawLoser {
		t.Fatalf("expected both a winner and a loser settlement")
	}
	if room.Commission != wantCommission {
		t.Errorf("commission = %d, want %d", room.Commission, wantCommission)
	}
}

// TestTabulateSlot_Draw mirrors spec scenario S6: equal, non-zero pools on
// both sides return every stake minus commission (100->90, 50->45, 10->9),
// and the room still charges commission on its full pot (here 320 pot -> 32).
func TestTabulateSlot_Draw(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 8, Owner: newPrincipal(t, 0x10), CreatedAt: created}

	hotA := newPrincipal(t, 0x03)
	hotB := newPrincipal(t, 0x08)
	hotC := newPrincipal(t, 0x0B)
	notA := newPrincipal(t, 0x04)
	notB := newPrincipal(t, 0x0E)
	notC := newPrincipal(t, 0x11)

	bets := []struct {
		caller    domain.Principal
		direction domain.BetDirection
		amount    uint64
		wantNet   int64
	}{
		{hotA, domain.Hot, 100, 90},
		{notA, domain.Not, 100, 90},
		{hotB, domain.Hot, 50, 45},
		{notB, domain.Not, 50, 45},
		{hotC, domain.Hot, 10, 9},
		{notC, domain.Not, 10, 9},
	}
	for _, b := range bets {
		if _, _, err := post.PlaceBet(b.caller, b.direction, b.amount, created.Add(time.Second)); err != nil {
			t.Fatalf("PlaceBet %s %d: %v", b.direction, b.amount, err)
		}
	}

	payouts, events, err := post.TabulateSlot(1)
	if err != nil {
		t.Fatalf("TabulateSlot: %v", err)
	}
	room := payouts[0]
	if room.Outcome != domain.RoomOutcomeDraw {
		t.Fatalf("outcome = %s, want %s", room.Outcome, domain.RoomOutcomeDraw)
	}

	// pot = 160 hot + 160 not = 320, commission = 320*10/100 = 32
	wantCommission := uint64(32)
	if room.Commission != wantCommission {
		t.Errorf("commission = %d, want %d", room.Commission, wantCommission)
	}

	gotNet := map[string]int64{}
	for _, s := range room.Bets {
		gotNet[s.Principal.Key()] = s.WinningsOrLoss
	}
	for _, b := range bets {
		if got := gotNet[b.caller.Key()]; got != b.wantNet {
			t.Errorf("draw settlement for amount %d = %d, want %d", b.amount, got, b.wantNet)
		}
	}

	var sawCommissionEvent bool
	payoutEventCount := 0
	for _, e := range events {
		if e.Kind == domain.TokenEventCommissionPaid {
			sawCommissionEvent = true
		}
		if e.Kind == domain.TokenEventPayoutEarned {
			payoutEventCount++
		}
	}
	if !sawCommissionEvent {
		t.Error("expected a commission token event on a draw room")
	}
	if payoutEventCount != len(bets) {
		t.Errorf("expected %d payout events (one per bettor) on a draw room, got %d", len(bets), payoutEventCount)
	}
}

// TestTabulateSlot_DrawCommissionScalesWithPot pins the draw commission
// formula at the pot size from the 3900-pot scenario (two 1950 pools),
// without constructing all 78 individual bettors.
func TestTabulateSlot_DrawCommissionScalesWithPot(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 12, Owner: newPrincipal(t, 0x10), CreatedAt: created}

	hotBettor := newPrincipal(t, 0x20)
	notBettor := newPrincipal(t, 0x21)
	if _, _, err := post.PlaceBet(hotBettor, domain.Hot, 1950, created.Add(time.Second)); err != nil {
		t.Fatalf("PlaceBet hot: %v", err)
	}
	if _, _, err := post.PlaceBet(notBettor, domain.Not, 1950, created.Add(time.Second)); err != nil {
		t.Fatalf("PlaceBet not: %v", err)
	}

	payouts, _, err := post.TabulateSlot(1)
	if err != nil {
		t.Fatalf("TabulateSlot: %v", err)
	}
	room := payouts[0]
	if room.Commission != 390 {
		t.Errorf("commission = %d, want 390", room.Commission)
	}
}

// TestTabulateSlot_IsIdempotent confirms a second call for an already
// tabulated slot returns no payouts and does not re-settle any bet.
func TestTabulateSlot_IsIdempotent(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	post := &domain.Post{ID: 9, Owner: newPrincipal(t, 0x10), CreatedAt: created}
	if _, _, err := post.PlaceBet(newPrincipal(t, 0x05), domain.Hot, 10, created.Add(time.Second)); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	if _, _, err := post.TabulateSlot(1); err != nil {
		t.Fatalf("first TabulateSlot: %v", err)
	}
	payouts, events, err := post.TabulateSlot(1)
	if err != nil {
		t.Fatalf("second TabulateSlot: %v", err)
	}
	if len(payouts) != 0 || len(events) != 0 {
		t.Errorf("re-tabulating a settled slot should be a no-op, got %d payouts, %d events", len(payouts), len(events))
	}
}

func TestTabulateSlot_UnknownSlotNotFound(t *testing.T) {
	post := &domain.Post{ID: 1, Owner: newPrincipal(t, 0x10), CreatedAt: time.Now()}
	_, _, err := post.TabulateSlot(5)
	if err != domain.ErrSlotNotFound {
		t.Errorf("err = %v, want %v", err, domain.ErrSlotNotFound)
	}
}
