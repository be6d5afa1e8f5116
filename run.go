package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"vid2mid/config"
	"vid2mid/midi"
	"vid2mid/pipeline"
	"vid2mid/report"
	"vid2mid/snapshot"
	"vid2mid/theme"
	"vid2mid/tui"
	"vid2mid/video"
)

// run converts o.input into o.output and writes the optional extras.
func run(ctx context.Context, o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.preset != "" {
		if err := cfg.ApplyPreset(o.preset); err != nil {
			return err
		}
	}
	if o.bpm > 0 {
		cfg.Timing.BPM = o.bpm
	}
	if o.tpb > 0 {
		cfg.Timing.TicksPerBeat = o.tpb
	}

	th := theme.New(nil)
	if o.palette != "" {
		p, err := theme.LoadGPL(o.palette)
		if err != nil {
			return err
		}
		th = theme.New(p)
	}

	src, err := video.Open(ctx, o.input, o.fps)
	if err != nil {
		return err
	}
	defer src.Close()

	// everything is validated before the first frame is analysed
	res, err := cfg.Resolve(src.Size(), src.FPS())
	if err != nil {
		return err
	}
	logger.Info("video: opened", "input", o.input, "size", fmt.Sprintf("%dx%d", src.Size().X, src.Size().Y),
		"fps", res.Timing.FPS, "frames", src.Len(), "roi", res.Analysis.ROI.String())

	if o.roiSnapshot != "" {
		if err := writeSnapshot(src, res, th, o.roiSnapshot); err != nil {
			return err
		}
		logger.Info("snapshot: written", "path", o.roiSnapshot)
	}

	var result *pipeline.Result
	if o.noTUI || !isatty.IsTerminal(os.Stderr.Fd()) {
		result, err = pipeline.Run(ctx, src, res, pipeline.Options{Logger: logger})
	} else {
		result, err = runWithTUI(ctx, src, res, th, filepath.Base(o.input))
	}
	if err != nil {
		return err
	}

	if err := midi.WriteFile(o.output, result.Sequence); err != nil {
		return fmt.Errorf("writing %s: %w", o.output, err)
	}
	logger.Info("midi: written", "path", o.output, "events", len(result.Sequence.Events), "length", result.Sequence.Duration())

	if o.eventsJSON != "" {
		if err := midi.WriteJSONFile(o.eventsJSON, result.Sequence); err != nil {
			return fmt.Errorf("writing %s: %w", o.eventsJSON, err)
		}
	}

	if o.report != "" {
		if err := writeReport(o, res, result); err != nil {
			return err
		}
	}

	if o.midiPreview != "" {
		return preview(ctx, o.midiPreview, result.Sequence)
	}
	return nil
}

// writeSnapshot draws the ROI over the first decodable frame, then rewinds.
func writeSnapshot(src video.Source, res *config.Resolved, th *theme.Theme, path string) error {
	for {
		img, err := src.Next()
		if errors.Is(err, video.ErrFrameDecode) {
			continue
		}
		if err == io.EOF {
			return fmt.Errorf("snapshot: no decodable frame")
		}
		if err != nil {
			return err
		}
		opt := snapshot.Options{Color: th.RGBA(theme.RoleSuccess)}
		if err := snapshot.WritePNG(path, img, res.Analysis.ROI, opt); err != nil {
			return err
		}
		return src.Rewind()
	}
}

// runWithTUI runs the pipeline while a bubbletea program shows its progress.
// Quitting the program cancels the run.
func runWithTUI(ctx context.Context, src video.Source, res *config.Resolved, th *theme.Theme, title string) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	names := make([]string, len(res.Tracks))
	for i, tc := range res.Tracks {
		names[i] = tc.TrackName()
	}
	// one lane cell per half second of video
	slot := int(res.Timing.FPS/2 + 0.5)

	progress := make(chan pipeline.Progress, 16)
	m := tui.NewModel(th, title, names, slot, progress, cancel)
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	type outcome struct {
		result *pipeline.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := pipeline.Run(ctx, src, res, pipeline.Options{Progress: progress, Logger: logger})
		done <- outcome{r, err}
		p.Send(tui.DoneMsg{Result: r, Err: err})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-done
		return nil, err
	}
	out := <-done
	return out.result, out.err
}

func writeReport(o options, res *config.Resolved, result *pipeline.Result) error {
	w := io.Writer(os.Stdout)
	if o.report != "-" {
		f, err := os.Create(o.report)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return report.Write(w, report.Summary{
		Input:  o.input,
		Output: o.output,
		Preset: o.preset,
		Timing: res.Timing,
		Result: result,
	})
}

func preview(ctx context.Context, port string, seq *midi.Sequence) error {
	send, err := midi.OpenOut(port, midi.ScanTimeout)
	if err != nil {
		return err
	}
	defer midi.ClosePorts()
	logger.Info("midi: previewing", "port", port, "length", seq.Duration())
	return midi.Play(ctx, seq, send)
}
