// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/evetabi/hotornot/internal/domain"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeBetPlaced     MsgType = "bet_placed"
	MsgTypeSlotTabulated MsgType = "slot_tabulated"
	MsgTypeError         MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// BetPlacedMessage — broadcast after a bet is accepted so room pools refresh
// for everyone watching the post.
// ──────────────────────────────────────────────────────────────────────────────

// BetPlacedMessage notifies all clients that a post's room pools have changed.
// It omits the bettor's principal: the placing client already has its own
// copy from the HTTP response, and other viewers have no business use for it.
type BetPlacedMessage struct {
	Type      MsgType             `json:"type"`
	PostID    uint64              `json:"post_id"`
	SlotID    uint8               `json:"slot_id"`
	RoomID    uint64              `json:"room_id"`
	Amount    uint64              `json:"amount"`
	Direction domain.BetDirection `json:"direction"`
	Timestamp time.Time           `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// SlotTabulatedMessage — broadcast once a slot has been settled.
// ──────────────────────────────────────────────────────────────────────────────

// RoomResult is the public view of one room's tabulation outcome.
type RoomResult struct {
	RoomID      uint64             `json:"room_id"`
	Outcome     domain.RoomOutcome `json:"outcome"`
	Commission  uint64             `json:"commission"`
	BettorCount int                `json:"bettor_count"`
}

// SlotTabulatedMessage tells clients which rooms of a slot were just settled.
type SlotTabulatedMessage struct {
	Type      MsgType      `json:"type"`
	PostID    uint64       `json:"post_id"`
	SlotID    uint8        `json:"slot_id"`
	Rooms     []RoomResult `json:"rooms"`
	Timestamp time.Time    `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
