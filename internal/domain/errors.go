package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Betting errors
var (
	// ErrUserNotLoggedIn is returned when the anonymous principal attempts
	// to place a bet.
	ErrUserNotLoggedIn = errors.New("user is not logged in")

	// ErrBettingClosed is returned once a post's total contest window has
	// elapsed.
	ErrBettingClosed = errors.New("betting is closed for this post")

	// ErrUserAlreadyParticipated is returned when a principal tries to place
	// a second bet anywhere on the same post.
	ErrUserAlreadyParticipated = errors.New("user has already bet on this post")

	// ErrInvalidBetDirection is returned when the direction is not Hot or Not.
	ErrInvalidBetDirection = errors.New("invalid bet direction: must be hot or not")

	// ErrBetTooSmall is returned when a bet amount is zero.
	ErrBetTooSmall = errors.New("bet amount must be greater than zero")

	// ErrSlotNotFound is returned when tabulation is requested for a slot
	// that has never received a bet.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrPostNotFound is returned when no post matches the given id.
	ErrPostNotFound = errors.New("post not found")
)

// Auth / admin account errors
var (
	// ErrAccountNotFound is returned when no admin account matches the given criteria.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned on registration when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned when a suspended account attempts an action.
	ErrAccountInactive = errors.New("account is inactive")
)

// Auth token errors
var (
	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the authenticated caller lacks the required role.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrTokenExpired is returned when a JWT or refresh token has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its signature
	// does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrPostNotFound,
	ErrSlotNotFound,
	ErrAccountNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values directly
// when you need to translate domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict (e.g.
// duplicate registration or a second bet on the same post).
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrEmailTaken,
		ErrUsernameTaken,
		ErrUserAlreadyParticipated,
		ErrBettingClosed,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
		ErrUserNotLoggedIn,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
