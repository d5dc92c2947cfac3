package caption

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultModel is the vision model asked for captions when the config does
// not name one.
const DefaultModel = "llava"

// suggestTimeout bounds a caption request when the caller's context carries
// no deadline; vision models on CPU can be slow.
const suggestTimeout = 120 * time.Second

const suggestPrompt = `You are captioning an image for a meme editor.
Propose %d short, punchy caption candidates for this image.
Respond with only a JSON array of strings, nothing else.`

// OllamaSuggester asks an Ollama vision model for caption candidates.
type OllamaSuggester struct {
	client *api.Client
	model  string
}

// NewOllamaSuggester creates a suggester talking to the Ollama server at
// baseURL (scheme and host only; any path is discarded).
func NewOllamaSuggester(baseURL, model string) (*OllamaSuggester, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &OllamaSuggester{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

// Suggest implements Suggester.
func (s *OllamaSuggester) Suggest(ctx context.Context, img image.Image, n int) ([]string, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to caption")
	}
	if n <= 0 {
		n = 3
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, suggestTimeout)
		defer cancel()
	}

	data, err := encodeForModel(img)
	if err != nil {
		return nil, err
	}

	stream := false
	req := &api.ChatRequest{
		Model: s.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: fmt.Sprintf(suggestPrompt, n),
			Images:  []api.ImageData{api.ImageData(data)},
		}},
		Stream: &stream,
	}

	var content string
	err = s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	if content == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}
	captions, err := parseSuggestions(content)
	if err != nil {
		return nil, err
	}
	if len(captions) > n {
		captions = captions[:n]
	}
	return captions, nil
}
