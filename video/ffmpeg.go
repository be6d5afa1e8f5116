package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"vid2mid/debug"
)

// FFmpegSource decodes a video file by piping raw RGB frames out of ffmpeg.
// Metadata comes from ffprobe.
type FFmpegSource struct {
	ctx  context.Context
	path string
	fps  float64
	size image.Point
	n    int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	buf    []byte
	done   bool
}

// probeInfo is the part of `ffprobe -of json` output that is used.
type probeInfo struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
}

func NewFFmpegSource(ctx context.Context, path string) (*FFmpegSource, error) {
	out, err := run(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate,nb_frames",
		"-of", "json",
		path,
	)
	if err != nil {
		return nil, err
	}
	s := &FFmpegSource{ctx: ctx, path: path}
	if err := s.parseProbe(out); err != nil {
		return nil, fmt.Errorf("video: %s: %w", path, err)
	}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FFmpegSource) parseProbe(data []byte) error {
	var info probeInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("reading ffprobe output: %w", err)
	}
	if len(info.Streams) == 0 {
		return errors.New("no video stream")
	}
	st := info.Streams[0]
	if st.Width <= 0 || st.Height <= 0 {
		return fmt.Errorf("bad frame size %dx%d", st.Width, st.Height)
	}
	fps, err := parseRate(st.AvgFrameRate)
	if err != nil || fps <= 0 {
		fps, err = parseRate(st.RFrameRate)
	}
	if err != nil {
		return err
	}
	if fps <= 0 {
		return fmt.Errorf("unknown frame rate %q", st.RFrameRate)
	}
	s.fps = fps
	s.size = image.Pt(st.Width, st.Height)
	s.n, _ = strconv.Atoi(st.NbFrames)
	s.buf = make([]byte, st.Width*st.Height*3)
	return nil
}

// parseRate reads an ffprobe rational such as "30000/1001".
func parseRate(r string) (float64, error) {
	num, den, ok := strings.Cut(r, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("frame rate %q: %w", r, err)
	}
	if !ok {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("frame rate %q: %w", r, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

func (s *FFmpegSource) args() []string {
	return []string{
		"-v", "error",
		"-nostdin",
		"-i", s.path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	}
}

func (s *FFmpegSource) start() error {
	args := s.args()
	cmd := exec.CommandContext(s.ctx, "ffmpeg", args...)
	s.stderr.Reset()
	cmd.Stderr = &s.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error executing FFmpeg command: %s; %w", commandLine("ffmpeg", args), err)
	}
	debug.Log("video", "started %s", commandLine("ffmpeg", args))
	s.cmd, s.stdout, s.done = cmd, stdout, false
	return nil
}

func (s *FFmpegSource) Next() (image.Image, error) {
	if s.done {
		return nil, io.EOF
	}
	_, err := io.ReadFull(s.stdout, s.buf)
	switch {
	case err == io.EOF:
		s.done = true
		if werr := s.wait(); werr != nil {
			return nil, werr
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		// a truncated last frame
		s.done = true
		return nil, fmt.Errorf("%w: truncated frame", ErrFrameDecode)
	case err != nil:
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, s.size.X, s.size.Y))
	for i, j := 0, 0; i < len(s.buf); i, j = i+3, j+4 {
		img.Pix[j] = s.buf[i]
		img.Pix[j+1] = s.buf[i+1]
		img.Pix[j+2] = s.buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}

func (s *FFmpegSource) wait() error {
	if s.cmd == nil {
		return nil
	}
	cmd := s.cmd
	s.cmd = nil
	if err := cmd.Wait(); err != nil {
		if s.ctx.Err() != nil {
			return s.ctx.Err()
		}
		return fmt.Errorf("error executing FFmpeg command: %s; %v: %s", commandLine("ffmpeg", s.args()), err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}

func (s *FFmpegSource) FPS() float64      { return s.fps }
func (s *FFmpegSource) Size() image.Point { return s.size }
func (s *FFmpegSource) Len() int          { return s.n }

// Rewind restarts decoding from the first frame.
func (s *FFmpegSource) Rewind() error {
	s.kill()
	return s.start()
}

func (s *FFmpegSource) Close() error {
	s.kill()
	return nil
}

func (s *FFmpegSource) kill() {
	if s.cmd == nil {
		return
	}
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	s.cmd = nil
	s.done = true
}

func run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("error executing command: %s; %v: %s", commandLine(name, args), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func commandLine(name string, args []string) string {
	return name + " " + strings.Join(args, " ")
}
