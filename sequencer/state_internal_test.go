package sequencer

import (
	"errors"
	"testing"

	"vid2mid/analysis"
)

func TestOpenWhileSustainingIsViolation(t *testing.T) {
	st := TrackState{Phase: Sustaining, Open: Note{OnsetFrame: 1, EndFrame: 2}}
	if _, err := openNote(st, Note{OnsetFrame: 3}); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("got %v, expected ErrInvariantViolation", err)
	}
}

func TestCloseWhileIdleIsViolation(t *testing.T) {
	if _, _, err := closeNote(TrackState{}, 4); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("got %v, expected ErrInvariantViolation", err)
	}
}

func TestUnknownPhaseIsViolation(t *testing.T) {
	cfg := TrackConfig{Role: RoleMedium, OnsetThreshold: 1, ReleaseThreshold: 1}
	_, _, err := Step(analysis.FrameSignal{}, cfg, TrackState{Phase: Phase(7)})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("got %v, expected ErrInvariantViolation", err)
	}
}
