package sequencer

import (
	"context"
	"sync"

	"vid2mid/analysis"
)

// SignalSource yields frame signals in increasing frame order. ok is false
// at the end of the stream.
type SignalSource interface {
	Next() (sig analysis.FrameSignal, ok bool, err error)
}

// StreamEnd is implemented by sources that know, once exhausted, the index
// of the last frame of the stream. -1 means unknown.
type StreamEnd interface {
	LastFrame() int
}

// NoteStream yields the closed notes of one track in onset order.
type NoteStream interface {
	Next() (n Note, ok bool, err error)
}

// SliceSource replays a fixed list of signals.
type SliceSource struct {
	sigs []analysis.FrameSignal
	i    int
}

func NewSliceSource(sigs []analysis.FrameSignal) *SliceSource {
	return &SliceSource{sigs: sigs}
}

func (s *SliceSource) Next() (analysis.FrameSignal, bool, error) {
	if s.i >= len(s.sigs) {
		return analysis.FrameSignal{}, false, nil
	}
	sig := s.sigs[s.i]
	s.i++
	return sig, true, nil
}

// ChanSource reads signals from a channel until it is closed.
type ChanSource struct {
	ctx context.Context
	ch  <-chan analysis.FrameSignal

	// End, if set, is called once the channel is closed and returns the
	// index of the last frame of the stream, which need not have produced
	// a signal.
	End func() int
}

func NewChanSource(ctx context.Context, ch <-chan analysis.FrameSignal) *ChanSource {
	return &ChanSource{ctx: ctx, ch: ch}
}

func (s *ChanSource) Next() (analysis.FrameSignal, bool, error) {
	select {
	case <-s.ctx.Done():
		return analysis.FrameSignal{}, false, s.ctx.Err()
	case sig, ok := <-s.ch:
		return sig, ok, nil
	}
}

// LastFrame returns End(), or -1 when End is unset.
func (s *ChanSource) LastFrame() int {
	if s.End == nil {
		return -1
	}
	return s.End()
}

// SliceNotes replays a fixed list of notes.
type SliceNotes struct {
	notes []Note
	i     int
}

func NewSliceNotes(notes []Note) *SliceNotes {
	return &SliceNotes{notes: notes}
}

func (s *SliceNotes) Next() (Note, bool, error) {
	if s.i >= len(s.notes) {
		return Note{}, false, nil
	}
	n := s.notes[s.i]
	s.i++
	return n, true, nil
}

// NoteQueue buffers the notes of one track between its mapper goroutine
// and the merger. Push never blocks, so a track that closes many notes keeps
// reading frames while the merger waits on a quieter one.
type NoteQueue struct {
	ctx  context.Context
	wake chan struct{}

	mu     sync.Mutex
	notes  []Note
	closed bool
	err    error
}

func NewNoteQueue(ctx context.Context) *NoteQueue {
	return &NoteQueue{ctx: ctx, wake: make(chan struct{}, 1)}
}

// Push appends n. It must not be called after Close.
func (q *NoteQueue) Push(n Note) {
	q.mu.Lock()
	q.notes = append(q.notes, n)
	q.mu.Unlock()
	q.signal()
}

// Close marks the end of the track. Next returns err once the queued notes
// have been read.
func (q *NoteQueue) Close(err error) {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.err = err
	}
	q.mu.Unlock()
	q.signal()
}

func (q *NoteQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued notes.
func (q *NoteQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notes)
}

// Next blocks until a note is queued or the queue is closed. It has a single
// reader.
func (q *NoteQueue) Next() (Note, bool, error) {
	for {
		q.mu.Lock()
		if len(q.notes) > 0 {
			n := q.notes[0]
			q.notes = q.notes[1:]
			q.mu.Unlock()
			return n, true, nil
		}
		closed, err := q.closed, q.err
		q.mu.Unlock()
		if closed {
			return Note{}, false, err
		}

		select {
		case <-q.ctx.Done():
			return Note{}, false, q.ctx.Err()
		case <-q.wake:
		}
	}
}

// Fill drains ns into q, then closes q with the stream's error. It is meant
// to run on its own goroutine, one per track.
func (q *NoteQueue) Fill(ns NoteStream) error {
	for {
		n, ok, err := ns.Next()
		if err != nil || !ok {
			q.Close(err)
			return err
		}
		q.Push(n)
	}
}

// Collect drains ns into a slice.
func Collect(ns NoteStream) ([]Note, error) {
	var notes []Note
	for {
		n, ok, err := ns.Next()
		if err != nil {
			return notes, err
		}
		if !ok {
			return notes, nil
		}
		notes = append(notes, n)
	}
}
