// Package pipeline runs a video through extraction, the per-role mappers and
// the merger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"vid2mid/analysis"
	"vid2mid/config"
	"vid2mid/debug"
	"vid2mid/midi"
	"vid2mid/sequencer"
	"vid2mid/video"
)

// DefaultBuffer is the capacity of every signal channel.
const DefaultBuffer = 64

// Progress is sent after every frame index consumed.
type Progress struct {
	Frame int // frame indices consumed so far
	Total int // 0 when the source does not know its length
	Gaps  int
	Notes []int // notes merged so far, per track in role order
}

// Options tune a run. The zero value is usable.
type Options struct {
	Buffer int
	// Progress receives updates without blocking the run; updates are
	// dropped when the receiver is busy. It is not closed.
	Progress chan<- Progress
	Logger   *slog.Logger
}

// TrackStats summarizes one output track.
type TrackStats struct {
	midi.TrackMeta
	Notes     int
	LowPitch  uint8
	HighPitch uint8
}

// Result is a finished run.
type Result struct {
	Sequence *midi.Sequence
	Frames   int // frame indices consumed, decoded or not
	Signals  int
	Gaps     int
	Tracks   []TrackStats
	Elapsed  time.Duration
}

// Run analyses every frame of src and returns the merged sequence. res must
// have been resolved against src. A worker error cancels the whole run.
func Run(ctx context.Context, src video.Source, res *config.Resolved, opts Options) (*Result, error) {
	start := time.Now()
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if err := res.Analysis.Validate(src.Size()); err != nil {
		return nil, &config.ConfigError{Field: "global", Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	ex := analysis.NewExtractor(res.Analysis)
	// read by the mappers only after their signal channel is closed
	lastFrame := func() int { return ex.Frames() - 1 }

	// Signal channels are bounded; note queues are not. A mapper never
	// waits on the merger, so extraction only waits on the slowest mapper.
	sigChans := make([]chan analysis.FrameSignal, len(res.Tracks))
	inputs := make([]sequencer.TrackInput, len(res.Tracks))
	counts := make([]atomic.Int64, len(res.Tracks))
	for i, tc := range res.Tracks {
		sigChans[i] = make(chan analysis.FrameSignal, opts.Buffer)
		sigs := sequencer.NewChanSource(ctx, sigChans[i])
		sigs.End = lastFrame
		m, err := sequencer.NewMapper(tc, sigs)
		if err != nil {
			return nil, &config.ConfigError{Field: "tracks." + tc.Role.String(), Err: err}
		}
		notes := sequencer.NewNoteQueue(ctx)
		inputs[i] = sequencer.TrackInput{
			Config: tc,
			Notes:  countedNotes{notes, &counts[i]},
		}

		wg.Add(1)
		go func(role sequencer.Role) {
			defer wg.Done()
			if err := notes.Fill(m); err != nil {
				fail(fmt.Errorf("%v track: %w", role, err))
			}
		}(tc.Role)
	}

	merger, err := sequencer.NewMerger(inputs, res.Timing)
	if err != nil {
		cancel()
		closeAll(sigChans)
		wg.Wait()
		return nil, &config.ConfigError{Field: "tracks", Err: err}
	}

	var seq *midi.Sequence
	wg.Add(1)
	go func() {
		defer wg.Done()
		s, err := merger.Drain()
		if err != nil {
			fail(fmt.Errorf("merge: %w", err))
			return
		}
		seq = s
	}()

	progress := progressFunc(opts.Progress, src.Len(), ex, counts)
	signals, err := extract(ctx, src, ex, sigChans, progress)
	closeAll(sigChans)
	if err != nil {
		fail(err)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress()

	result := &Result{
		Sequence: seq,
		Frames:   ex.Frames(),
		Signals:  signals,
		Gaps:     ex.Gaps(),
		Tracks:   Stats(seq),
		Elapsed:  time.Since(start),
	}
	if result.Gaps > 0 {
		log.Warn("video: frames dropped", "gaps", result.Gaps, "frames", result.Frames)
	}
	log.Debug("pipeline: done", "frames", result.Frames, "events", len(seq.Events), "elapsed", result.Elapsed)
	return result, nil
}

// extract decodes and measures frames in order, handing every signal to all
// tracks. It returns the number of signals produced.
func extract(ctx context.Context, src video.Source, ex *analysis.Extractor, out []chan analysis.FrameSignal, progress func()) (int, error) {
	signals := 0
	for {
		if err := ctx.Err(); err != nil {
			return signals, err
		}
		img, err := src.Next()
		if err == io.EOF {
			return signals, nil
		}
		if errors.Is(err, video.ErrFrameDecode) {
			ex.Skip()
			progress()
			continue
		}
		if err != nil {
			return signals, fmt.Errorf("video: %w", err)
		}

		sig, err := ex.Feed(img)
		if err != nil {
			return signals, fmt.Errorf("frame %d: %w", ex.Frames(), err)
		}
		signals++
		for _, ch := range out {
			select {
			case ch <- sig:
			case <-ctx.Done():
				return signals, ctx.Err()
			}
		}
		debug.LogEvery(100, "pipeline", "frame %d sent to %d tracks", sig.FrameIndex, len(out))
		progress()
	}
}

// progressFunc returns a non-blocking progress reporter.
func progressFunc(ch chan<- Progress, total int, ex *analysis.Extractor, counts []atomic.Int64) func() {
	return func() {
		if ch == nil {
			return
		}
		p := Progress{Frame: ex.Frames(), Total: total, Gaps: ex.Gaps(), Notes: make([]int, len(counts))}
		for i := range counts {
			p.Notes[i] = int(counts[i].Load())
		}
		select {
		case ch <- p:
		default:
		}
	}
}

// countedNotes counts the notes pulled through it.
type countedNotes struct {
	sequencer.NoteStream
	n *atomic.Int64
}

func (c countedNotes) Next() (sequencer.Note, bool, error) {
	n, ok, err := c.NoteStream.Next()
	if ok {
		c.n.Add(1)
	}
	return n, ok, err
}

func closeAll(chans []chan analysis.FrameSignal) {
	for _, ch := range chans {
		close(ch)
	}
}

// Stats counts the notes and pitch span of every track of seq.
func Stats(seq *midi.Sequence) []TrackStats {
	stats := make([]TrackStats, len(seq.Tracks))
	for i, t := range seq.Tracks {
		stats[i].TrackMeta = t
	}
	for _, e := range seq.Events {
		if e.Type != midi.NoteOn || e.Track < 0 || e.Track >= len(stats) {
			continue
		}
		s := &stats[e.Track]
		if s.Notes == 0 || e.Note < s.LowPitch {
			s.LowPitch = e.Note
		}
		if s.Notes == 0 || e.Note > s.HighPitch {
			s.HighPitch = e.Note
		}
		s.Notes++
	}
	return stats
}
