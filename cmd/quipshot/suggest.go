package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/example/quipshot/internal/caption"
	"github.com/example/quipshot/internal/imgsource"
)

// suggestCmd asks the configured model for captions and prints them.
type suggestCmd struct {
	file      string
	count     int
	model     string
	ollamaURL string
	*root
	fs *flag.FlagSet
}

func (s *suggestCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseSuggestCmd(args []string, r *root) (*suggestCmd, error) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	s := &suggestCmd{root: r.subcommand("suggest"), fs: fs}
	fs.Usage = usageFunc(s)
	fs.StringVar(&s.file, "file", "", "image file or http(s) URL to caption")
	fs.IntVar(&s.count, "n", 3, "number of suggestions to request")
	fs.StringVar(&s.model, "model", "", "model name (defaults to config)")
	fs.StringVar(&s.ollamaURL, "url", "", "ollama base URL (defaults to config)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if s.file == "" {
		if fs.NArg() == 1 {
			s.file = fs.Arg(0)
		} else {
			return nil, &UsageError{of: s}
		}
	}
	if s.count < 1 {
		return nil, fmt.Errorf("n must be at least 1")
	}
	return s, nil
}

func (s *suggestCmd) Run() error {
	img, err := imgsource.LoadAny(s.file)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.file, err)
	}

	url := s.ollamaURL
	if url == "" {
		url = s.root.config.Ollama.URL
	}
	model := s.model
	if model == "" {
		model = s.root.config.Ollama.Model
	}
	sg, err := caption.NewOllamaSuggester(url, model)
	if err != nil {
		return fmt.Errorf("ollama url: %w", err)
	}

	items, err := sg.Suggest(context.Background(), img, s.count)
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}
	for _, item := range items {
		fmt.Fprintln(os.Stdout, item)
	}
	if s.root != nil {
		s.root.notifySuggest(fmt.Sprintf("%d options", len(items)), img)
	}
	return nil
}
