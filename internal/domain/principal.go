package domain

import (
	"encoding/base32"
	"errors"
	"strings"
)

// Principal identifies the caller placing a bet. It mirrors the Internet
// Computer's principal identifier: a short byte string, textually rendered
// as lower-case base32 with no padding. The anonymous principal is the
// single reserved value 0x04 and is never allowed to place a bet.
type Principal struct {
	bytes []byte
}

// AnonymousPrincipal is the reserved value representing an unauthenticated
// caller.
var AnonymousPrincipal = Principal{bytes: []byte{0x04}}

var errEmptyPrincipal = errors.New("principal: empty byte slice")

// NewPrincipal validates and wraps a raw principal byte slice.
func NewPrincipal(raw []byte) (Principal, error) {
	if len(raw) == 0 {
		return Principal{}, errEmptyPrincipal
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Principal{bytes: cp}, nil
}

// ParsePrincipalText decodes the lower-case, unpadded base32 text form used
// on the wire (e.g. in JSON request bodies).
func ParsePrincipalText(text string) (Principal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Principal{}, errEmptyPrincipal
	}
	padded := text + strings.Repeat("=", (8-len(text)%8)%8)
	raw, err := base32.StdEncoding.DecodeString(strings.ToUpper(padded))
	if err != nil {
		return Principal{}, errors.New("principal: invalid base32 text: " + err.Error())
	}
	return NewPrincipal(raw)
}

// IsAnonymous reports whether p is the reserved anonymous principal.
func (p Principal) IsAnonymous() bool {
	return len(p.bytes) == 1 && p.bytes[0] == 0x04
}

// String renders the principal as lower-case, unpadded base32 text.
func (p Principal) String() string {
	enc := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(p.bytes)
	return strings.ToLower(enc)
}

// Key returns a value usable as a map key (Principal itself is comparable
// via its underlying array only through this string form, since byte slices
// are not comparable).
func (p Principal) Key() string {
	return string(p.bytes)
}

// MarshalText implements encoding.TextMarshaler so Principal serialises as
// its base32 form in JSON request/response bodies.
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Principal) UnmarshalText(text []byte) error {
	parsed, err := ParsePrincipalText(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
