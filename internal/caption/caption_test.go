package caption

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseSuggestions(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
		ok   bool
	}{
		{
			name: "plain array",
			raw:  `["top text", "bottom text", "me irl"]`,
			want: []string{"top text", "bottom text", "me irl"},
			ok:   true,
		},
		{
			name: "fenced",
			raw:  "```json\n[\"one\", \"two\"]\n```",
			want: []string{"one", "two"},
			ok:   true,
		},
		{
			name: "prose around array",
			raw:  `Sure! Here are some ideas: ["when it compiles"] Hope that helps.`,
			want: []string{"when it compiles"},
			ok:   true,
		},
		{
			name: "blank entries dropped",
			raw:  `["  ", "keeper", ""]`,
			want: []string{"keeper"},
			ok:   true,
		},
		{name: "no array", raw: "I cannot caption this image.", ok: false},
		{name: "empty array", raw: "[]", ok: false},
		{name: "malformed", raw: `["unterminated]`, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSuggestions(tc.raw)
			if tc.ok != (err == nil) {
				t.Fatalf("err = %v, want ok=%v", err, tc.ok)
			}
			if !tc.ok {
				return
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestEncodeForModelDownscales(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 4000, 2000))
	data, err := encodeForModel(big)
	if err != nil {
		t.Fatalf("encodeForModel failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != maxModelDim {
		t.Errorf("width = %d, want %d", b.Dx(), maxModelDim)
	}
}

func TestHTTPEditorRoundTrip(t *testing.T) {
	replacement := image.NewRGBA(image.Rect(0, 0, 50, 40))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Errorf("bad form: %v", err)
		}
		if got := r.FormValue("instruction"); got != "make it rain" {
			t.Errorf("instruction = %q", got)
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image part: %v", err)
		} else {
			data, _ := io.ReadAll(f)
			if _, err := png.Decode(bytes.NewReader(data)); err != nil {
				t.Errorf("image part not PNG: %v", err)
			}
			f.Close()
		}
		png.Encode(w, replacement)
	}))
	defer srv.Close()

	e := NewHTTPEditor(srv.URL)
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	out, err := e.Edit(context.Background(), src, "make it rain")
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("bounds %v, want 50x40", b)
	}
}

func TestHTTPEditorFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewHTTPEditor(srv.URL)
	if _, err := e.Edit(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)), "x"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestHTTPEditorUnconfigured(t *testing.T) {
	e := NewHTTPEditor("")
	if _, err := e.Edit(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)), "x"); err == nil {
		t.Fatal("expected error when endpoint is empty")
	}
}
