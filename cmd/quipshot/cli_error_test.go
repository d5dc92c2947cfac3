package main

import (
	"strings"
	"testing"
)

func TestParseComposeRequiresCoordinates(t *testing.T) {
	r := &root{program: "quipshot"}
	_, err := parseComposeCmd([]string{"-file", "in.png"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*UsageError); !ok {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestParseComposeInvalidCoordinate(t *testing.T) {
	r := &root{program: "quipshot"}
	_, err := parseComposeCmd([]string{"-file", "in.png", "left", "20", "hello"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "invalid x coordinate"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseComposeMultipleCaptions(t *testing.T) {
	r := &root{program: "quipshot"}
	c, err := parseComposeCmd([]string{"-file", "in.png", "10", "20", "top", "text", ";", "30", "40", "bottom"}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(c.captions) != 2 {
		t.Fatalf("expected 2 captions, got %d", len(c.captions))
	}
	if c.captions[0].text != "top text" {
		t.Errorf("first caption: got %q", c.captions[0].text)
	}
	if c.captions[1].pos.X != 30 || c.captions[1].pos.Y != 40 {
		t.Errorf("second caption position: got %v", c.captions[1].pos)
	}
}

func TestParseComposeTruncatedCaptionGroup(t *testing.T) {
	r := &root{program: "quipshot"}
	_, err := parseComposeCmd([]string{"-file", "in.png", "10", "20", "hello", ";", "30", "40"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "each caption needs"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseComposeRequiresInput(t *testing.T) {
	r := &root{program: "quipshot"}
	_, err := parseComposeCmd([]string{"10", "20", "hello"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "input file is required"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseComposeBadColor(t *testing.T) {
	r := &root{program: "quipshot"}
	_, err := parseComposeCmd([]string{"-file", "in.png", "-color", "not-a-color", "10", "20", "hi"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "invalid color"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseComposeBadContainer(t *testing.T) {
	r := &root{program: "quipshot"}
	_, err := parseComposeCmd([]string{"-file", "in.png", "-container", "wide", "10", "20", "hi"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "container must be WxH"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseContainerSpec(t *testing.T) {
	size, err := parseContainerSpec("400x300")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size.W != 400 || size.H != 300 {
		t.Fatalf("unexpected size: %+v", size)
	}
	if _, err := parseContainerSpec("0x300"); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestParseColorSpec(t *testing.T) {
	c, err := parseColorSpec("#FF8000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.R != 0xFF || c.G != 0x80 || c.B != 0x00 || c.A != 255 {
		t.Fatalf("unexpected color: %+v", c)
	}
	if _, err := parseColorSpec(""); err == nil {
		t.Fatalf("expected error for empty color")
	}
	named, err := parseColorSpec("white")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if named.R != 255 || named.G != 255 || named.B != 255 {
		t.Fatalf("unexpected named color: %+v", named)
	}
}

func TestParseSuggestRequiresFile(t *testing.T) {
	r := &root{program: "quipshot"}
	_, err := parseSuggestCmd([]string{}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*UsageError); !ok {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestParseSuggestRejectsZeroCount(t *testing.T) {
	r := &root{program: "quipshot"}
	_, err := parseSuggestCmd([]string{"-file", "in.png", "-n", "0"}, r)
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "n must be at least 1"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseEditPositionalFile(t *testing.T) {
	r := &root{program: "quipshot"}
	cmd, err := parseEditCmd([]string{"meme.png"}, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.file != "meme.png" {
		t.Fatalf("expected positional file, got %q", cmd.file)
	}
}

func TestRootUsageErrorRenders(t *testing.T) {
	r := newRoot()
	err := r.Run([]string{})
	uerr, ok := err.(*UsageError)
	if !ok {
		t.Fatalf("expected usage error, got %v", err)
	}
	text := uerr.Error()
	for _, want := range []string{"edit", "compose", "suggest", "config", "version"} {
		if !strings.Contains(text, want) {
			t.Errorf("usage text missing %q", want)
		}
	}
}
