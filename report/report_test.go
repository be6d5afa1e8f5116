package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"vid2mid/midi"
	"vid2mid/pipeline"
	"vid2mid/report"
	"vid2mid/sequencer"
)

func TestWriteSummary(t *testing.T) {
	seq := &midi.Sequence{
		BPM:          120,
		TicksPerBeat: 480,
		Tracks: []midi.TrackMeta{
			{Name: "background", Channel: 0, Program: 52},
			{Name: "medium", Channel: 1, Program: 74},
		},
		Events: []midi.Event{
			{Tick: 0, Type: midi.NoteOn, Note: 36, Velocity: 80},
			{Tick: 480, Type: midi.NoteOff, Note: 36},
			{Tick: 480, Type: midi.NoteOn, Note: 39, Velocity: 80},
			{Tick: 960, Type: midi.NoteOff, Note: 39},
		},
	}
	res := &pipeline.Result{
		Sequence: seq,
		Frames:   30,
		Signals:  29,
		Gaps:     1,
		Tracks:   pipeline.Stats(seq),
		Elapsed:  2 * time.Second,
	}

	var buf bytes.Buffer
	err := report.Write(&buf, report.Summary{
		Input:  "clip.mp4",
		Output: "clip.mid",
		Timing: sequencer.Timing{FPS: 30, TicksPerBeat: 480, BPM: 120},
		Result: res,
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"VID2MID SUMMARY\n===============\n",
		"preset    none",
		"frames    30 (29 analysed, 1 dropped)",
		"length    1s",
		"Background ch 1 prog 52: 2 notes, C2-D#2",
		"Medium     ch 2 prog 74: 0 notes\n",
		"events    4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
