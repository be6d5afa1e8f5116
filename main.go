package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"vid2mid/config"
	"vid2mid/debug"
)

// logger is the process-wide structured logger; replaced by initLogger.
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// every package logs through it.
func initLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose, // include file:line in debug mode
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// options are the parsed command line flags.
type options struct {
	configPath  string
	preset      string
	bpm         float64
	tpb         int
	fps         float64
	verbose     bool
	debugLog    string
	noTUI       bool
	palette     string
	midiPreview string
	roiSnapshot string
	eventsJSON  string
	report      string
	initConfig  string

	input, output string
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "vid2mid turns the motion, color and brightness changes of a video into a MIDI file.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  vid2mid [flags] <input> <output.mid>")
	fmt.Fprintln(out, "  vid2mid -init-config <path>")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "<input> is a video file (decoded with ffmpeg) or a directory of numbered images.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "config file (YAML or JSON); default ~/.config/vid2mid/config.yaml if present")
	flag.StringVar(&o.preset, "preset", "", fmt.Sprintf("instrument preset %v", config.PresetNames()))
	flag.Float64Var(&o.bpm, "bpm", 0, "tempo in beats per minute (overrides the config)")
	flag.IntVar(&o.tpb, "tpb", 0, "ticks per beat (overrides the config)")
	flag.Float64Var(&o.fps, "fps", 0, "frame rate of an image directory")
	flag.BoolVar(&o.verbose, "v", false, "verbose logging (adds source location)")
	flag.StringVar(&o.debugLog, "debug-log", "", "write a per-frame trace log to this file")
	flag.BoolVar(&o.noTUI, "no-tui", false, "disable the progress display")
	flag.StringVar(&o.palette, "palette", "", "GIMP .gpl palette for the progress display and ROI snapshot")
	flag.StringVar(&o.midiPreview, "midi-preview", "", "play the result on this MIDI output port")
	flag.StringVar(&o.roiSnapshot, "roi-snapshot", "", "write the first frame with the ROI drawn on it to this PNG")
	flag.StringVar(&o.eventsJSON, "events-json", "", "write the merged notes as JSON to this file")
	flag.StringVar(&o.report, "report", "-", "write the run summary to this file (- for stdout, empty to skip)")
	flag.StringVar(&o.initConfig, "init-config", "", "write a starter config to this path and exit")
	flag.Usage = usage
	flag.Parse()

	if args := flag.Args(); len(args) == 2 {
		o.input, o.output = args[0], args[1]
	}
	return o
}

func main() {
	o := parseFlags()
	initLogger(o.verbose)

	if o.debugLog != "" {
		if err := debug.Enable(o.debugLog); err != nil {
			logger.Error("debug: cannot open trace log", "path", o.debugLog, "err", err)
			os.Exit(1)
		}
		defer debug.Disable()
	}

	if o.initConfig != "" {
		if err := writeStarterConfig(o); err != nil {
			logger.Error("config: cannot write starter config", "err", err)
			os.Exit(1)
		}
		logger.Info("config: starter config written", "path", o.initConfig)
		return
	}

	if o.input == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, o)
	stop()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("vid2mid: aborted")
		} else {
			logger.Error("vid2mid: failed", "err", err)
		}
		debug.Disable()
		os.Exit(1)
	}
}

func writeStarterConfig(o options) error {
	cfg := config.DefaultConfig()
	if o.preset != "" {
		if err := cfg.ApplyPreset(o.preset); err != nil {
			return err
		}
	}
	return cfg.Save(o.initConfig)
}
