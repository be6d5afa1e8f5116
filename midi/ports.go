package midi

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrScanTimeout is returned when the MIDI driver does not answer a port scan.
var ErrScanTimeout = errors.New("midi: port scan timed out")

// ScanTimeout bounds port enumeration (CoreMIDI can hang)
const ScanTimeout = 3 * time.Second

// Ports lists the input and output port names.
type Ports struct {
	In  []string
	Out []string
}

func scanPorts(timeout time.Duration) ([]drivers.Out, []drivers.In, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	select {
	case r := <-ch:
		return r.outPorts, r.inPorts, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, nil, ErrScanTimeout
	}
}

// ListPorts enumerates the available ports, giving up after timeout.
func ListPorts(timeout time.Duration) (Ports, error) {
	outs, ins, err := scanPorts(timeout)
	if err != nil {
		return Ports{}, err
	}
	var p Ports
	for _, in := range ins {
		p.In = append(p.In, in.String())
	}
	for _, out := range outs {
		p.Out = append(p.Out, out.String())
	}
	return p, nil
}

// Sender sends one message to an open output port.
type Sender func(gomidi.Message) error

// OpenOut opens the output port with the given name.
func OpenOut(name string, timeout time.Duration) (Sender, error) {
	outs, _, err := scanPorts(timeout)
	if err != nil {
		return nil, err
	}
	for _, port := range outs {
		if port.String() == name {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fmt.Errorf("open %q: %w", name, err)
			}
			return send, nil
		}
	}
	return nil, fmt.Errorf("output %q not found", name)
}

// ClosePorts shuts the MIDI driver down.
func ClosePorts() {
	gomidi.CloseDriver()
}
