package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"

	"github.com/example/quipshot/internal/caption"
	"github.com/example/quipshot/internal/clipboard"
	"github.com/example/quipshot/internal/imgsource"
	"github.com/example/quipshot/internal/overlay"
	"github.com/example/quipshot/internal/surface"
)

// editCmd opens the interactive caption editor window.
type editCmd struct {
	file          string
	fromClipboard bool
	saveDir       string
	fontSize      int
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "image file or http(s) URL to caption")
	fs.BoolVar(&e.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.StringVar(&e.saveDir, "save-dir", "", "directory exports are written to (defaults to config save_dir or .)")
	fs.IntVar(&e.fontSize, "font-size", 0, "font size for new captions (defaults to config font_size)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file == "" && !e.fromClipboard {
		if fs.NArg() == 1 {
			e.file = fs.Arg(0)
		} else {
			return nil, &UsageError{of: e}
		}
	}
	return e, nil
}

func (e *editCmd) Run() error {
	var rgba *image.RGBA
	if e.fromClipboard {
		img, err := clipboard.ReadImage()
		if err != nil {
			return fmt.Errorf("read clipboard image: %w", err)
		}
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		var err error
		rgba, err = imgsource.LoadAny(e.file)
		if err != nil {
			return fmt.Errorf("load %s: %w", e.file, err)
		}
	}

	cfg := e.root.config
	saveDir := e.saveDir
	if saveDir == "" {
		saveDir = cfg.SaveDir
	}
	if saveDir == "" {
		saveDir = "."
	}
	fontSize := e.fontSize
	if fontSize == 0 {
		fontSize = cfg.FontSize
	}

	opts := []surface.Option{
		surface.WithSource(imgsource.NewSource(rgba)),
		surface.WithStore(overlay.NewStore()),
		surface.WithTheme(e.root.activeTheme),
		surface.WithNotifier(e.root.notifier),
		surface.WithSaveDir(saveDir),
		surface.WithFontSize(fontSize),
	}
	if cfg.Ollama.URL != "" {
		sg, err := caption.NewOllamaSuggester(cfg.Ollama.URL, cfg.Ollama.Model)
		if err != nil {
			return fmt.Errorf("ollama url: %w", err)
		}
		opts = append(opts, surface.WithSuggester(sg))
	}
	if cfg.Edit.Endpoint != "" {
		opts = append(opts, surface.WithEditor(caption.NewHTTPEditor(cfg.Edit.Endpoint)))
	}

	surface.New(opts...).Run()
	return nil
}
