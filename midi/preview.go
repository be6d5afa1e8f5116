package midi

import (
	"context"
	"time"

	"vid2mid/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Play sends seq through send in real time, starting with each track's
// program change. If ctx is cancelled, every sounding note is released and
// ctx.Err() is returned.
func Play(ctx context.Context, seq *Sequence, send Sender) error {
	for _, t := range seq.Tracks {
		if err := send(gomidi.ProgramChange(t.Channel, t.Program)); err != nil {
			return err
		}
	}

	sounding := make(map[[2]uint8]bool)
	release := func() {
		for k := range sounding {
			send(gomidi.NoteOff(k[0], k[1]))
		}
	}

	t0 := time.Now()
	for _, evt := range seq.Events {
		wait := time.Until(t0.Add(seq.TickToDuration(evt.Tick)))
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				release()
				return ctx.Err()
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			release()
			return ctx.Err()
		}

		key := [2]uint8{evt.Channel, evt.Note}
		var err error
		switch evt.Type {
		case NoteOn:
			err = send(gomidi.NoteOn(evt.Channel, evt.Note, evt.Velocity))
			sounding[key] = true
		case NoteOff:
			err = send(gomidi.NoteOff(evt.Channel, evt.Note))
			delete(sounding, key)
		case ControlChange:
			err = send(gomidi.ControlChange(evt.Channel, evt.Note, evt.Velocity))
		}
		if err != nil {
			release()
			return err
		}
		debug.Log("preview", "%v", evt)
	}
	return nil
}
