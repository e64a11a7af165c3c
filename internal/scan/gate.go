// Package scan serializes a scanner's capture pipeline so one physical QR
// presentation cannot fan out into parallel redemptions.
package scan

import (
	"errors"
	"sync"
)

// Phase is the scanner's position in its capture cycle.
type Phase int

const (
	// PhaseReady means the scanner is armed and may start.
	PhaseReady Phase = iota
	// PhaseScanning means the camera is live and one capture is awaited.
	PhaseScanning
	// PhaseProcessing means a capture is being validated and redeemed;
	// further captures are rejected until Finish.
	PhaseProcessing
)

// ErrBusy is returned for transitions attempted out of order, typically a
// re-entrant capture while the previous one is still processing.
var ErrBusy = errors.New("scan already in progress")

// Gate enforces the Ready -> Scanning -> Processing -> Ready cycle.
// On every outcome, success or failure, the owner must return the gate to
// Ready so the next attempt is possible; Cancel covers leaving mid-cycle.
type Gate struct {
	mu    sync.Mutex
	phase Phase
}

// NewGate returns a gate in the Ready phase.
func NewGate() *Gate { return &Gate{} }

// Phase returns the current phase.
func (g *Gate) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Start arms the scanner. Only valid from Ready.
func (g *Gate) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseReady {
		return ErrBusy
	}
	g.phase = PhaseScanning
	return nil
}

// Capture claims the in-flight slot for one scanned code. Only valid from
// Scanning, so rapid duplicate callbacks for the same presentation lose.
func (g *Gate) Capture() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseScanning {
		return ErrBusy
	}
	g.phase = PhaseProcessing
	return nil
}

// Finish completes the in-flight scan and re-arms the gate.
func (g *Gate) Finish() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.phase = PhaseReady
}

// Cancel aborts whatever is in flight and re-arms the gate. Safe from any
// phase; leaving the scanning screen must never wedge the scanner.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.phase = PhaseReady
}
