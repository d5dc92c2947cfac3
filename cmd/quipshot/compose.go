package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/colornames"

	"github.com/example/quipshot/internal/clipboard"
	"github.com/example/quipshot/internal/export"
	"github.com/example/quipshot/internal/geometry"
	"github.com/example/quipshot/internal/imgsource"
	"github.com/example/quipshot/internal/overlay"
)

// composeCmd stamps a caption onto an image without opening a window.
type composeCmd struct {
	file          string
	output        string
	fromClipboard bool
	toClipboard   bool
	shadow        bool
	colorSpec     string
	color         color.RGBA
	fontSize      int
	containerSpec string
	container     geometry.Size
	captions      []placement
	*root
	fs *flag.FlagSet
}

// placement pairs a caption with its container-space center.
type placement struct {
	pos  geometry.Point
	text string
}

func (c *composeCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseColorSpec(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	if strings.HasPrefix(spec, "#") && (len(spec) == 7 || len(spec) == 9) {
		r, err := strconv.ParseUint(spec[1:3], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		g, err := strconv.ParseUint(spec[3:5], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		b, err := strconv.ParseUint(spec[5:7], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		a := uint64(255)
		if len(spec) == 9 {
			val, err := strconv.ParseUint(spec[7:9], 16, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("invalid color %q", s)
			}
			a = val
		}
		return color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

func parseContainerSpec(s string) (geometry.Size, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return geometry.Size{}, fmt.Errorf("container must be WxH, got %q", s)
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid container width %q", parts[0])
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid container height %q", parts[1])
	}
	size := geometry.Size{W: w, H: h}
	if !size.Positive() {
		return geometry.Size{}, fmt.Errorf("container dimensions must be positive")
	}
	return size, nil
}

func parseComposeCmd(args []string, r *root) (*composeCmd, error) {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	c := &composeCmd{root: r.subcommand("compose"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "input image file or http(s) URL")
	fs.StringVar(&c.output, "output", "", "output file path (defaults to a timestamped name)")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.StringVar(&c.colorSpec, "color", "white", "caption color name or hex value")
	fs.IntVar(&c.fontSize, "size", overlay.DefaultFontSize, "caption font size in container pixels")
	fs.StringVar(&c.containerSpec, "container", "", "on-screen container size as WxH (defaults to the image size)")
	fs.BoolVar(&c.shadow, "shadow", false, "surround the result with a drop shadow")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	positionals := fs.Args()
	if len(positionals) < 3 {
		return nil, &UsageError{of: c}
	}
	group := positionals[:0:0]
	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		if len(group) < 3 {
			return fmt.Errorf("each caption needs <x> <y> <text...>, got %q", strings.Join(group, " "))
		}
		x, err := strconv.ParseFloat(group[0], 64)
		if err != nil {
			return fmt.Errorf("invalid x coordinate %q", group[0])
		}
		y, err := strconv.ParseFloat(group[1], 64)
		if err != nil {
			return fmt.Errorf("invalid y coordinate %q", group[1])
		}
		text := strings.Join(group[2:], " ")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("caption text cannot be empty")
		}
		c.captions = append(c.captions, placement{pos: geometry.Point{X: x, Y: y}, text: text})
		group = group[:0]
		return nil
	}
	for _, arg := range positionals {
		if arg == ";" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		group = append(group, arg)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(c.captions) == 0 {
		return nil, &UsageError{of: c}
	}

	if c.file == "" && !c.fromClipboard {
		return nil, fmt.Errorf("input file is required")
	}
	colorVal, err := parseColorSpec(c.colorSpec)
	if err != nil {
		return nil, err
	}
	c.color = colorVal
	if c.containerSpec != "" {
		c.container, err = parseContainerSpec(c.containerSpec)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func (c *composeCmd) Run() error {
	var base image.Image
	if c.fromClipboard {
		img, err := clipboard.ReadImage()
		if err != nil {
			return fmt.Errorf("read clipboard image: %w", err)
		}
		base = img
	} else {
		img, err := imgsource.LoadAny(c.file)
		if err != nil {
			return fmt.Errorf("load %s: %w", c.file, err)
		}
		base = img
	}

	container := c.container
	if !container.Positive() {
		b := base.Bounds()
		container = geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	}

	store := overlay.NewStore()
	for _, p := range c.captions {
		store.Add(p.text, p.pos, c.fontSize, c.color)
	}

	m := export.MetricsFor(base, container)
	flat, err := export.Flatten(base, store.Annotations(), m)
	if err != nil {
		return err
	}
	if c.shadow {
		flat = export.Shadow(toRGBA(flat), export.DefaultShadowOptions())
	}

	output := c.output
	if output == "" {
		output = export.Filename(time.Now())
	}
	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func(out *os.File) {
		if err := out.Close(); err != nil {
			log.Printf("error closing %q: %v", out.Name(), err)
		}
	}(out)
	if err := export.WritePNG(out, flat); err != nil {
		return err
	}
	saved := output
	if abs, err := filepath.Abs(output); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	if c.root != nil {
		c.root.notifyExport(saved)
	}
	if c.toClipboard {
		if err := clipboard.WriteImage(flat); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", filepath.Base(output))
	}
	return nil
}
