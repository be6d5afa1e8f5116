package video

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"vid2mid/debug"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// ImageDirSource reads the images of a directory in natural name order
// (frame2 before frame10) as frames of a constant frame rate.
type ImageDirSource struct {
	dir   string
	files []string
	fps   float64
	size  image.Point
	pos   int
}

func NewImageDirSource(dir string, fps float64) (*ImageDirSource, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("video: fps %v must be positive", fps)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("video: no images in %s", dir)
	}
	sort.Slice(files, func(i, j int) bool { return naturalLess(files[i], files[j]) })

	s := &ImageDirSource{dir: dir, files: files, fps: fps}
	// frame size comes from the first readable image
	for _, name := range files {
		if cfg, err := s.decodeConfig(name); err == nil {
			s.size = image.Pt(cfg.Width, cfg.Height)
			break
		}
	}
	if s.size == (image.Point{}) {
		return nil, fmt.Errorf("video: no decodable image in %s", dir)
	}
	return s, nil
}

func (s *ImageDirSource) decodeConfig(name string) (image.Config, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	return cfg, err
}

func (s *ImageDirSource) Next() (image.Image, error) {
	if s.pos >= len(s.files) {
		return nil, io.EOF
	}
	name := s.files[s.pos]
	s.pos++

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFrameDecode, name, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		debug.Log("video", "decode %s: %v", name, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrFrameDecode, name, err)
	}
	if got := img.Bounds().Size(); got != s.size {
		return nil, fmt.Errorf("%w: %s is %dx%d, expected %dx%d", ErrFrameDecode, name, got.X, got.Y, s.size.X, s.size.Y)
	}
	return img, nil
}

func (s *ImageDirSource) FPS() float64      { return s.fps }
func (s *ImageDirSource) Size() image.Point { return s.size }
func (s *ImageDirSource) Len() int          { return len(s.files) }

func (s *ImageDirSource) Rewind() error {
	s.pos = 0
	return nil
}

func (s *ImageDirSource) Close() error {
	return nil
}

// naturalLess compares names with digit runs ordered by value.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			na, ra := digitRun(a)
			nb, rb := digitRun(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			if na != nb {
				return len(na) < len(nb)
			}
			a, b = ra, rb
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func digitRun(s string) (run, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
