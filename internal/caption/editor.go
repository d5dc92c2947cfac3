package caption

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// editTimeout bounds an edit request when the caller supplies no deadline.
const editTimeout = 120 * time.Second

// maxEditResponse caps the size of a replacement image accepted from the
// edit service.
const maxEditResponse = 64 << 20

// HTTPEditor sends the current image and an instruction to an image-edit
// service and decodes the replacement raster it returns. Any failure leaves
// the caller's state untouched.
type HTTPEditor struct {
	endpoint string
	client   *http.Client
}

// NewHTTPEditor creates an editor posting to the given endpoint.
func NewHTTPEditor(endpoint string) *HTTPEditor {
	return &HTTPEditor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: editTimeout},
	}
}

// Edit implements Editor. The request is a multipart form with an "image"
// PNG part and an "instruction" field; the response body must be a decodable
// raster image.
func (e *HTTPEditor) Edit(ctx context.Context, img image.Image, instruction string) (image.Image, error) {
	if e.endpoint == "" {
		return nil, fmt.Errorf("no edit endpoint configured")
	}
	if img == nil {
		return nil, fmt.Errorf("no image to edit")
	}

	data, err := encodeForModel(img)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "source.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.WriteField("instruction", instruction); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edit request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("edit service returned %s", resp.Status)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxEditResponse))
	if err != nil {
		return nil, err
	}
	edited, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode edited image: %w", err)
	}
	return edited, nil
}
