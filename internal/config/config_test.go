package config

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/memes
font_size = 48

[ollama]
url = http://models.local:11434
model = llava:13b

[edit]
endpoint = http://models.local:8080/edit

[notify]
export = true
suggest = false
edit = true

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
CaptionFill = #FFFF00
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}

	if cfg.SaveDir != "/tmp/memes" {
		t.Errorf("Expected save_dir '/tmp/memes', got '%s'", cfg.SaveDir)
	}
	if cfg.FontSize != 48 {
		t.Errorf("Expected font_size 48, got %d", cfg.FontSize)
	}

	if cfg.Ollama.URL != "http://models.local:11434" {
		t.Errorf("Unexpected ollama url: %s", cfg.Ollama.URL)
	}
	if cfg.Ollama.Model != "llava:13b" {
		t.Errorf("Unexpected ollama model: %s", cfg.Ollama.Model)
	}
	if cfg.Edit.Endpoint != "http://models.local:8080/edit" {
		t.Errorf("Unexpected edit endpoint: %s", cfg.Edit.Endpoint)
	}

	if !cfg.Notify.Export {
		t.Error("Expected notify.export to be true")
	}
	if cfg.Notify.Suggest {
		t.Error("Expected notify.suggest to be false")
	}
	if !cfg.Notify.Edit {
		t.Error("Expected notify.edit to be true")
	}

	theme, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}

	if theme.Background.R != 0x11 || theme.Background.G != 0x11 || theme.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", theme.Background)
	}
	if theme.CaptionFill.R != 0xFF || theme.CaptionFill.G != 0xFF || theme.CaptionFill.B != 0x00 {
		t.Errorf("Unexpected CaptionFill color: %+v", theme.CaptionFill)
	}
}

func TestInvalidFontSize(t *testing.T) {
	_, err := Parse(strings.NewReader("font_size = huge\n"))
	if err == nil {
		t.Fatal("expected error for non-numeric font_size")
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/memes
font_size = 36

[ollama]
url = http://localhost:11434
model = llava

[edit]
endpoint = http://localhost:8080/edit

[notify]
export = true
suggest = true
edit = false

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("SaveDir mismatch: %q vs %q", cfg.SaveDir, cfg2.SaveDir)
	}
	if cfg.FontSize != cfg2.FontSize {
		t.Errorf("FontSize mismatch: %d vs %d", cfg.FontSize, cfg2.FontSize)
	}
	if cfg.Ollama != cfg2.Ollama {
		t.Errorf("Ollama mismatch: %+v vs %+v", cfg.Ollama, cfg2.Ollama)
	}
	if cfg.Edit != cfg2.Edit {
		t.Errorf("Edit mismatch: %+v vs %+v", cfg.Edit, cfg2.Edit)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	// Check theme persistence
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if t1.Background != t2.Background {
		t.Errorf("Theme background mismatch: %v vs %v", t1.Background, t2.Background)
	}
}
