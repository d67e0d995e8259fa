// Package media stores uploaded images and returns the URL they are served at.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/inkwell/internal/config"
)

var mediaLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	mediaLogger = l
}

const keyPrefix = "images/"

type Uploader interface {
	// Upload stores data and returns the URL the image can be loaded from.
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// NewKey names an upload images/<uuid><ext>, taking the extension from the
// file name or, failing that, from the content type.
func NewKey(name, contentType string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" && contentType != "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return keyPrefix + uuid.New().String() + ext
}

// NaturalSize decodes the dimensions of a GIF, JPEG or PNG image.
func NaturalSize(data []byte) (width, height int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// Open builds the uploader selected by cfg.Backend.
func Open(cfg config.MediaConfig) (Uploader, error) {
	switch cfg.Backend {
	case "", "fs":
		return NewFSUploader(cfg.Dir, cfg.URLPrefix)
	case "s3":
		return NewS3Uploader(context.Background(), cfg.S3)
	}
	return nil, fmt.Errorf("unsupported media backend %q", cfg.Backend)
}
