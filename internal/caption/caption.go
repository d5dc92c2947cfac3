// Package caption defines the AI collaborators feeding the overlay: a
// Suggester that proposes caption strings for the current image and an
// Editor that produces a replacement image from an instruction. Both are
// opaque asynchronous services; the core only consumes their results.
package caption

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// Suggester proposes a finite ordered list of caption candidates for img.
type Suggester interface {
	Suggest(ctx context.Context, img image.Image, n int) ([]string, error)
}

// Editor produces a replacement image from a natural-language instruction,
// or reports failure without touching the current image.
type Editor interface {
	Edit(ctx context.Context, img image.Image, instruction string) (image.Image, error)
}

// maxModelDim caps the longest side of images sent to a model; vision
// backends neither need nor want full-resolution sources.
const maxModelDim = 1024

// encodeForModel downscales img to maxModelDim and encodes it as PNG.
func encodeForModel(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if w, h := b.Dx(), b.Dy(); w > maxModelDim || h > maxModelDim {
		if w >= h {
			img = imaging.Resize(img, maxModelDim, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxModelDim, imaging.Lanczos)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image for model: %w", err)
	}
	return buf.Bytes(), nil
}

// parseSuggestions extracts a JSON string array from a model response,
// tolerating code fences and prose around the array.
func parseSuggestions(raw string) ([]string, error) {
	raw = stripFences(raw)
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model response")
	}
	var out []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	cleaned := out[:0]
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("model returned no usable captions")
	}
	return cleaned, nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	return strings.TrimSpace(raw)
}
