package display

import (
	"testing"
	"time"

	"classmark/internal/token"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	codec, err := token.NewCodec("secret")
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	issuer := token.NewIssuer(codec, 10*time.Second)
	return NewBoard(issuer, "CS101_MON_09", "Intro to CS", "t-1")
}

func TestBoard_StartsIdle(t *testing.T) {
	b := newTestBoard(t)
	if b.State() != StateIdle {
		t.Errorf("new board state = %s, want idle", b.State())
	}
	if _, live := b.URI(); live {
		t.Error("idle board must not display a code")
	}
	if b.Remaining(time.UnixMilli(0)) != 0 {
		t.Error("idle board has no remaining time")
	}
}

func TestBoard_GenerateActivates(t *testing.T) {
	b := newTestBoard(t)
	now := time.UnixMilli(1000)

	uri, err := b.Generate(now)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if b.State() != StateActive {
		t.Fatalf("state = %s, want active", b.State())
	}
	displayed, live := b.URI()
	if !live || displayed != uri {
		t.Errorf("URI() = (%q, %v), want the generated code live", displayed, live)
	}
	if got := b.Remaining(now); got != 10*time.Second {
		t.Errorf("Remaining at issue = %s, want 10s", got)
	}
	if got := b.Remaining(time.UnixMilli(7000)); got != 4*time.Second {
		t.Errorf("Remaining after 6s = %s, want 4s", got)
	}
}

func TestBoard_TickExpires(t *testing.T) {
	b := newTestBoard(t)
	if _, err := b.Generate(time.UnixMilli(1000)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	b.Tick(time.UnixMilli(11000)) // boundary inclusive, still active
	if b.State() != StateActive {
		t.Fatalf("state at expiresAt = %s, want active", b.State())
	}

	b.Tick(time.UnixMilli(11001))
	if b.State() != StateExpired {
		t.Fatalf("state past expiresAt = %s, want expired", b.State())
	}
	if _, live := b.URI(); live {
		t.Error("expired board must clear the displayed code")
	}

	// No silent regeneration: further ticks leave the board expired.
	b.Tick(time.UnixMilli(20000))
	if b.State() != StateExpired {
		t.Errorf("state after more ticks = %s, want still expired", b.State())
	}
}

func TestBoard_RegenerateReplacesActiveToken(t *testing.T) {
	b := newTestBoard(t)

	first, err := b.Generate(time.UnixMilli(1000))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := b.Generate(time.UnixMilli(6000))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if first == second {
		t.Error("regeneration must mint a fresh code")
	}

	// The countdown restarted from the second issue time.
	if got := b.Remaining(time.UnixMilli(6000)); got != 10*time.Second {
		t.Errorf("Remaining after replace = %s, want 10s", got)
	}
	b.Tick(time.UnixMilli(12000)) // past first window, inside second
	if b.State() != StateActive {
		t.Errorf("state = %s, want active under the replacement window", b.State())
	}
}

func TestBoard_ExplicitGenerateAfterExpiry(t *testing.T) {
	b := newTestBoard(t)
	if _, err := b.Generate(time.UnixMilli(1000)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b.Tick(time.UnixMilli(12000))
	if b.State() != StateExpired {
		t.Fatalf("state = %s, want expired", b.State())
	}

	if _, err := b.Generate(time.UnixMilli(13000)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if b.State() != StateActive {
		t.Errorf("state after explicit regenerate = %s, want active", b.State())
	}
}
