package scan

import (
	"errors"
	"testing"
)

func TestGate_FullCycle(t *testing.T) {
	g := NewGate()
	if g.Phase() != PhaseReady {
		t.Fatalf("new gate phase = %v, want ready", g.Phase())
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if g.Phase() != PhaseScanning {
		t.Fatalf("phase = %v, want scanning", g.Phase())
	}
	if err := g.Capture(); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if g.Phase() != PhaseProcessing {
		t.Fatalf("phase = %v, want processing", g.Phase())
	}
	g.Finish()
	if g.Phase() != PhaseReady {
		t.Fatalf("phase after Finish = %v, want ready", g.Phase())
	}
}

func TestGate_RejectsReentrantCapture(t *testing.T) {
	g := NewGate()
	if err := g.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := g.Capture(); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// A second callback for the same physical presentation loses.
	if err := g.Capture(); !errors.Is(err, ErrBusy) {
		t.Errorf("re-entrant Capture = %v, want ErrBusy", err)
	}
	if err := g.Start(); !errors.Is(err, ErrBusy) {
		t.Errorf("Start while processing = %v, want ErrBusy", err)
	}
}

func TestGate_CaptureRequiresStart(t *testing.T) {
	g := NewGate()
	if err := g.Capture(); !errors.Is(err, ErrBusy) {
		t.Errorf("Capture from ready = %v, want ErrBusy", err)
	}
}

func TestGate_FailureReArms(t *testing.T) {
	// Every outcome must leave the gate usable for the next attempt.
	g := NewGate()
	for i := 0; i < 3; i++ {
		if err := g.Start(); err != nil {
			t.Fatalf("attempt %d Start failed: %v", i, err)
		}
		if err := g.Capture(); err != nil {
			t.Fatalf("attempt %d Capture failed: %v", i, err)
		}
		g.Finish() // success or failure, the owner re-arms
	}
}

func TestGate_CancelFromAnyPhase(t *testing.T) {
	g := NewGate()
	g.Cancel()
	if g.Phase() != PhaseReady {
		t.Errorf("Cancel from ready left phase %v", g.Phase())
	}

	_ = g.Start()
	g.Cancel()
	if g.Phase() != PhaseReady {
		t.Errorf("Cancel from scanning left phase %v", g.Phase())
	}

	_ = g.Start()
	_ = g.Capture()
	g.Cancel()
	if g.Phase() != PhaseReady {
		t.Errorf("Cancel from processing left phase %v", g.Phase())
	}
	if err := g.Start(); err != nil {
		t.Errorf("gate must be usable after Cancel: %v", err)
	}
}
