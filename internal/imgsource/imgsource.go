// Package imgsource loads and tracks the base image the captions sit on.
// The Source is the collaborator boundary: whoever swaps the image in, the
// overlay reacts to the generation change by clearing itself.
package imgsource

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/example/quipshot/internal/geometry"
)

// httpTimeout bounds remote image fetches.
const httpTimeout = 30 * time.Second

// Load reads and decodes an image file. PNG/JPEG/GIF/TIFF/BMP come through
// imaging's registered decoders (with EXIF orientation applied); WebP gets an
// explicit fallback decode.
func Load(path string) (*image.RGBA, error) {
	if img, err := imaging.Open(path, imaging.AutoOrientation(true)); err == nil {
		return toRGBA(img), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// LoadURL downloads and decodes an image over HTTP(S).
func LoadURL(rawURL string) (*image.RGBA, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Get(rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	img, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return img, nil
}

// LoadAny treats source as a URL when it looks like one, a file path
// otherwise.
func LoadAny(source string) (*image.RGBA, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return LoadURL(source)
	}
	return Load(source)
}

func decode(data []byte) (*image.RGBA, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return toRGBA(img), nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return toRGBA(img), nil
	}
	return nil, fmt.Errorf("unknown or unsupported image format")
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Source holds the current base image. Every replacement bumps a generation
// counter; the counter doubles as the staleness guard for collaborator
// responses that were requested against an earlier image.
type Source struct {
	mu      sync.Mutex
	img     *image.RGBA
	gen     uint64
	changes chan struct{}
}

// NewSource creates a Source, optionally seeded with an initial image.
func NewSource(img *image.RGBA) *Source {
	s := &Source{changes: make(chan struct{}, 1)}
	if img != nil {
		s.img = img
		s.gen = 1
	}
	return s
}

// Changes delivers a tick after every replacement, coalesced to one pending
// tick.
func (s *Source) Changes() <-chan struct{} {
	return s.changes
}

// Replace swaps in a new base image and returns the new generation.
func (s *Source) Replace(img *image.RGBA) uint64 {
	s.mu.Lock()
	s.img = img
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	select {
	case s.changes <- struct{}{}:
	default:
	}
	return gen
}

// Image returns the current base image, or false when none is loaded yet.
func (s *Source) Image() (*image.RGBA, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img, s.img != nil
}

// Generation reports how many times the image has been replaced.
func (s *Source) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Natural returns the current image's pixel dimensions, or false when no
// image is loaded.
func (s *Source) Natural() (geometry.Size, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return geometry.Size{}, false
	}
	b := s.img.Bounds()
	return geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}, true
}
