package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/debemdeboas/inkwell/internal/model"
	"github.com/debemdeboas/inkwell/internal/util"
)

// Document builds a document from a Markdown file. The title comes from the
// front matter or, when there is none, from the file name. The id is left for
// the store to assign.
func (r *Renderer) Document(name string, md []byte) model.Document {
	info, body := util.SplitFrontMatter(md)

	doc := model.Document{
		Title: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
	}
	if info != nil {
		if info.Title != "" {
			doc.Title = info.Title
		}
		if !info.Date.IsZero() {
			doc.Date = model.DisplayDate(info.Date)
		}
		doc.IsFeatured = info.Featured
	}

	html, _ := r.RenderCached(body)
	doc.Content = string(bytes.TrimSpace(html))
	return doc
}

// ImportDir converts every .md file directly inside dir, in file name order.
func (r *Renderer) ImportDir(dir string) ([]model.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading import directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []model.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		md, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", entry.Name(), err)
		}
		docs = append(docs, r.Document(entry.Name(), md))
		renderLogger.Debug().Str("file", entry.Name()).Msg("Markdown file converted")
	}
	return docs, nil
}
