// Package model defines the documents and embedded image types shared by the editor and the widget.
package model

import (
	"fmt"
	"strconv"
	"time"
)

type DocumentID int64

func (id DocumentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseDocumentID(s string) (DocumentID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return DocumentID(v), nil
}

// Document is one authored post. Content holds the formatted body as an HTML fragment.
type Document struct {
	ID         DocumentID `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Date       string     `json:"date"`
	IsFeatured bool       `json:"isFeatured"`
}

// DisplayDate formats t the way documents are stamped on creation (M/D/YYYY).
func DisplayDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

const displayDateLayout = "1/2/2006"

var dateLayouts = []string{
	displayDateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate reads a document date written in any of the layouts documents have
// been stamped with over time.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date '%s' with any known layout", s)
}

// NormalizeDate rewrites s in the display layout. It reports false when s
// cannot be parsed or is already normalized.
func NormalizeDate(s string) (string, bool) {
	t, err := ParseDate(s)
	if err != nil {
		return s, false
	}
	out := DisplayDate(t)
	return out, out != s
}

// DefaultDocuments is the built-in set used whenever the store holds nothing usable.
func DefaultDocuments() []Document {
	return []Document{
		{
			ID:         1,
			Title:      "Welcome to Our Platform",
			Content:    "This is a featured post!",
			Date:       "9/23/2025",
			IsFeatured: true,
		},
		{
			ID:         2,
			Title:      "Latest Updates",
			Content:    "Check out our new features",
			Date:       "9/23/2025",
			IsFeatured: false,
		},
	}
}
