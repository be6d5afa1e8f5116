package video_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"vid2mid/video"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageDirOrderAndGaps(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame10.png"), 8, 6, color.RGBA{0, 0, 255, 255})
	writePNG(t, filepath.Join(dir, "frame1.png"), 8, 6, color.RGBA{255, 0, 0, 255})
	if err := os.WriteFile(filepath.Join(dir, "frame2.png"), []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "frame3.png"), 4, 4, color.White)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := video.NewImageDirSource(dir, 25)
	if err != nil {
		t.Fatalf("NewImageDirSource failed: %v", err)
	}
	defer src.Close()
	if src.Size() != image.Pt(8, 6) || src.FPS() != 25 || src.Len() != 4 {
		t.Fatalf("unexpected metadata %v %v %d", src.Size(), src.FPS(), src.Len())
	}

	img, err := src.Next()
	if err != nil {
		t.Fatalf("frame1: %v", err)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0xffff {
		t.Fatalf("frame1 should come first")
	}
	if _, err := src.Next(); !errors.Is(err, video.ErrFrameDecode) {
		t.Fatalf("corrupt frame2 gave %v, expected ErrFrameDecode", err)
	}
	// wrong size counts as a gap too
	if _, err := src.Next(); !errors.Is(err, video.ErrFrameDecode) {
		t.Fatalf("resized frame3 gave %v, expected ErrFrameDecode", err)
	}
	img, err = src.Next()
	if err != nil {
		t.Fatalf("frame10: %v", err)
	}
	if _, _, b, _ := img.At(0, 0).RGBA(); b != 0xffff {
		t.Fatalf("frame10 should come last")
	}
	if _, err := src.Next(); err != io.EOF {
		t.Fatalf("got %v, expected io.EOF", err)
	}

	if err := src.Rewind(); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(); err != nil {
		t.Fatalf("after rewind: %v", err)
	}
}

func TestImageDirErrors(t *testing.T) {
	if _, err := video.NewImageDirSource(t.TempDir(), 30); err == nil {
		t.Fatalf("empty directory accepted")
	}
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2, color.Black)
	if _, err := video.NewImageDirSource(dir, 0); err == nil {
		t.Fatalf("zero fps accepted")
	}
}

func TestOpenDirectoryDefaultsFPS(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2, color.Black)
	src, err := video.Open(context.Background(), dir, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()
	if src.FPS() != video.DefaultImageFPS {
		t.Fatalf("got fps %v", src.FPS())
	}
	if _, err := video.Open(context.Background(), filepath.Join(dir, "missing.mp4"), 0); err == nil {
		t.Fatalf("missing file accepted")
	}
}
