package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type FSUploader struct { // implements Uploader
	dir       string
	urlPrefix string
}

func NewFSUploader(dir, urlPrefix string) (*FSUploader, error) {
	if err := os.MkdirAll(filepath.Join(dir, keyPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload directory: %w", err)
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &FSUploader{dir: dir, urlPrefix: urlPrefix}, nil
}

func (u *FSUploader) Dir() string { return u.dir }

func (u *FSUploader) Upload(_ context.Context, name, contentType string, data []byte) (string, error) {
	key := NewKey(name, contentType)
	if err := os.WriteFile(filepath.Join(u.dir, filepath.FromSlash(key)), data, 0o644); err != nil {
		return "", fmt.Errorf("error writing upload: %w", err)
	}

	mediaLogger.Info().Str("key", key).Int("size", len(data)).Msg("Image stored")
	return u.urlPrefix + key, nil
}
