// Package video yields the decoded frames of a video, one at a time.
package video

import (
	"context"
	"errors"
	"image"
	"os"
)

// ErrFrameDecode marks a single frame that could not be decoded. The frame's
// index is consumed and reading may continue.
var ErrFrameDecode = errors.New("frame decode failed")

// DefaultImageFPS is the frame rate assumed for image directories when none
// is given.
const DefaultImageFPS = 30

// Source yields frames sequentially. Next returns io.EOF after the last
// frame and an error wrapping ErrFrameDecode for a frame that is skipped.
type Source interface {
	Next() (image.Image, error)
	FPS() float64
	Size() image.Point
	// Len is the number of frames if known, else 0.
	Len() int
	Rewind() error
	Close() error
}

// Open picks a source for path: a directory of numbered images, or any file
// ffmpeg can read. fps sets the frame rate of image directories and is
// ignored for files, whose rate comes from the container.
func Open(ctx context.Context, path string, fps float64) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		if fps <= 0 {
			fps = DefaultImageFPS
		}
		return NewImageDirSource(path, fps)
	}
	return NewFFmpegSource(ctx, path)
}
