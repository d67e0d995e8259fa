package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/debemdeboas/inkwell/internal/cache"
	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/util"
)

func TestRenderers(t *testing.T) {
	md := []byte("# Heading\n\nSome *text* and a [link](https://example.com).\n\n```go\nfunc main() {}\n```\n")

	for _, name := range []string{config.MarkdownRendererMmark, config.MarkdownRendererClassic} {
		t.Run(name, func(t *testing.T) {
			r := New(config.RenderConfig{Renderer: name, SyntaxTheme: "gruvbox"})
			html, _ := r.Render(md)
			out := string(html)

			for _, want := range []string{"<h1", "Heading", "<em>text</em>", `href="https://example.com"`, `<div class="highlight">`, "<pre"} {
				if !strings.Contains(out, want) {
					t.Errorf("Expected %q in output:\n%s", want, out)
				}
			}
		})
	}
}

func TestUnknownRendererFallsBackToMmark(t *testing.T) {
	r := New(config.RenderConfig{Renderer: "pandoc"})
	if r.name != config.MarkdownRendererMmark {
		t.Errorf("Expected mmark, got %q", r.name)
	}
}

func TestHighlightCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		language string
		want     []string
		dontWant []string
	}{
		{
			name:     "Known language",
			code:     "package main",
			language: "go",
			want:     []string{"<pre", "style="},
		},
		{
			name:     "Unknown language",
			code:     "plain text",
			language: "no-such-language",
			want:     []string{"plain text"},
		},
		{
			name:     "Markup is escaped",
			code:     "<script>alert(1)</script>",
			language: "text",
			want:     []string{"&lt;script&gt;"},
			dontWant: []string{"<script>"},
		},
		{
			name:     "Callout",
			code:     "x := 1 // <<1>>",
			language: "go",
			want:     []string{`<span class="callout">1</span>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := HighlightCode(tt.code, tt.language, "gruvbox")
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Expected %q in %q", w, out)
				}
			}
			for _, w := range tt.dontWant {
				if strings.Contains(out, w) {
					t.Errorf("Did not expect %q in %q", w, out)
				}
			}
		})
	}
}

func TestRenderCached(t *testing.T) {
	cache.ClearRendered()
	defer cache.ClearRendered()

	r := New(config.RenderConfig{Renderer: config.MarkdownRendererClassic, SyntaxTheme: "github"})
	md := []byte("Cached *body*")

	first, _ := r.RenderCached(md)
	cached, ok := cache.GetRendered(util.ContentHash(md), config.MarkdownRendererClassic, "github")
	if !ok {
		t.Fatal("Expected rendered body to be cached")
	}
	if string(cached.HTML) != string(first) {
		t.Error("Expected cache to hold the rendered HTML")
	}

	second, _ := r.RenderCached(md)
	if string(first) != string(second) {
		t.Error("Expected cached render to match")
	}
}

func TestDocument(t *testing.T) {
	r := New(config.RenderConfig{Renderer: config.MarkdownRendererMmark, SyntaxTheme: "gruvbox"})

	t.Run("Front matter", func(t *testing.T) {
		doc := r.Document("launch.md", []byte("%%%\ntitle = \"We launched\"\ndate = 2025-09-23T00:00:00Z\nfeatured = true\n%%%\n\nBig *news*.\n"))
		if doc.Title != "We launched" || doc.Date != "9/23/2025" || !doc.IsFeatured {
			t.Errorf("Unexpected document %+v", doc)
		}
		if !strings.Contains(doc.Content, "<em>news</em>") {
			t.Errorf("Expected rendered body, got %q", doc.Content)
		}
		if strings.Contains(doc.Content, "%%%") {
			t.Errorf("Expected front matter stripped, got %q", doc.Content)
		}
		if doc.ID != 0 {
			t.Error("Expected id to be left to the store")
		}
	})

	t.Run("File name title", func(t *testing.T) {
		doc := r.Document("notes/weekly-update.md", []byte("Just text"))
		if doc.Title != "weekly-update" || doc.IsFeatured || doc.Date != "" {
			t.Errorf("Unexpected document %+v", doc)
		}
	})
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.md":       "Second",
		"a.md":       "%%%\ntitle = \"First\"\n%%%\nOne",
		"ignore.txt": "not markdown",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := New(config.RenderConfig{Renderer: config.MarkdownRendererClassic})
	docs, err := r.ImportDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].Title != "First" || docs[1].Title != "b" {
		t.Errorf("Unexpected import %+v", docs)
	}

	if _, err := r.ImportDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}
