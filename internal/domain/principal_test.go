package domain_test

import (
	"testing"

	"github.com/evetabi/hotornot/internal/domain"
)

func TestNewPrincipal_RejectsEmpty(t *testing.T) {
	if _, err := domain.NewPrincipal(nil); err == nil {
		t.Error("NewPrincipal(nil) = nil error, want an error")
	}
	if _, err := domain.NewPrincipal([]byte{}); err == nil {
		t.Error("NewPrincipal([]byte{}) = nil error, want an error")
	}
}

func TestPrincipal_TextRoundTrip(t *testing.T) {
	p, err := domain.NewPrincipal([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	if err != nil {
		t.Fatalf("NewPrincipal: %v", err)
	}

	text, err := p.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var roundTripped domain.Principal
	if err := roundTripped.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if roundTripped.Key() != p.Key() {
		t.Errorf("round-tripped principal = %s, want %s", roundTripped, p)
	}
}

func TestPrincipal_AnonymousSentinel(t *testing.T) {
	if !domain.AnonymousPrincipal.IsAnonymous() {
		t.Error("AnonymousPrincipal.IsAnonymous() = false, want true")
	}
	p, err := domain.NewPrincipal([]byte{0xAA, 0xBB})
	if err != nil {
		t.Fatalf("NewPrincipal: %v", err)
	}
	if p.IsAnonymous() {
		t.Error("a concrete principal reported IsAnonymous() = true")
	}
}

func TestPrincipal_KeyDistinguishesDistinctBytes(t *testing.T) {
	a, _ := domain.NewPrincipal([]byte{0x01})
	b, _ := domain.NewPrincipal([]byte{0x02})
	if a.Key() == b.Key() {
		t.Error("distinct principals produced the same map key")
	}
}

func TestParsePrincipalText_RejectsGarbage(t *testing.T) {
	if _, err := domain.ParsePrincipalText("not valid base32!!"); err == nil {
		t.Error("ParsePrincipalText(garbage) = nil error, want an error")
	}
}
