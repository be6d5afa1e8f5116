package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"vid2mid/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "dump":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		err = dump(os.Args[2], len(os.Args) > 3 && os.Args[3] == "-json")
	case "play":
		if len(os.Args) < 4 {
			usage()
			os.Exit(2)
		}
		err = play(os.Args[2], os.Args[3])
	case "poll":
		err = pollPorts()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI inspection tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                - List all MIDI ports")
	fmt.Println("  dump <file> [-json] - Print the tracks and events of a MIDI file")
	fmt.Println("  play <file> <port>  - Play a MIDI file on an output port")
	fmt.Println("  poll                - Poll for port changes")
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(midi.ScanTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	defer midi.ClosePorts()

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.In {
		fmt.Printf("  %d: %s\n", i, p)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Out {
		fmt.Printf("  %d: %s\n", i, p)
	}
	return nil
}

func dump(path string, asJSON bool) error {
	seq, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	if asJSON {
		return midi.WriteJSON(os.Stdout, seq)
	}

	fmt.Printf("%s: %g bpm, %d ticks/beat, %v\n", path, seq.BPM, seq.TicksPerBeat, seq.Duration().Round(time.Millisecond))
	for i, t := range seq.Tracks {
		fmt.Printf("  track %d: %-12s ch %2d  prog %3d  %d events\n", i, t.Name, t.Channel+1, t.Program, len(seq.TrackEvents(i)))
	}
	fmt.Println("")
	for _, e := range seq.Events {
		fmt.Printf("  %8d  %-4s %v\n", e.Tick, midi.NoteName(e.Note), e)
	}
	return nil
}

func play(path, port string) error {
	seq, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	send, err := midi.OpenOut(port, midi.ScanTimeout)
	if err != nil {
		return err
	}
	defer midi.ClosePorts()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fmt.Printf("Playing %s on %s (%v). Ctrl+C to stop.\n", path, port, seq.Duration().Round(time.Millisecond))
	err = midi.Play(ctx, seq, send)
	if err == context.Canceled {
		return nil
	}
	return err
}

func pollPorts() error {
	fmt.Println("Polling for port changes every 2 seconds...")
	fmt.Println("Connect/disconnect devices to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ports, err := midi.ListPorts(midi.ScanTimeout)
		if err != nil {
			return err
		}

		currentIn := strings.Join(ports.In, ",")
		currentOut := strings.Join(ports.Out, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Port change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", ports.In)
			fmt.Printf("  Outputs: %v\n", ports.Out)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
