package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNewKey(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		contentType string
		suffix      string
	}{
		{"Extension from name", "photo.PNG", "", ".png"},
		{"Extension from content type", "blob", "image/png", ".png"},
		{"No extension", "blob", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewKey(tt.file, tt.contentType)
			if !strings.HasPrefix(key, "images/") {
				t.Errorf("Expected key under images/, got %q", key)
			}
			if !strings.HasSuffix(key, tt.suffix) {
				t.Errorf("Expected key ending in %q, got %q", tt.suffix, key)
			}
		})
	}

	if NewKey("a.png", "") == NewKey("a.png", "") {
		t.Error("Expected keys to be unique")
	}
}

func TestNaturalSize(t *testing.T) {
	w, h, ok := NaturalSize(pngBytes(t, 640, 480))
	if !ok || w != 640 || h != 480 {
		t.Errorf("Expected 640x480, got %dx%d (ok=%v)", w, h, ok)
	}

	if _, _, ok := NaturalSize([]byte("not an image")); ok {
		t.Error("Expected garbage not to decode")
	}
}

func TestFSUploader(t *testing.T) {
	dir := t.TempDir()
	u, err := NewFSUploader(dir, "/uploads")
	if err != nil {
		t.Fatal(err)
	}

	data := pngBytes(t, 2, 2)
	src, err := u.Upload(context.Background(), "cat.png", "image/png", data)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasPrefix(src, "/uploads/images/") {
		t.Errorf("Unexpected src %q", src)
	}

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(src, "/uploads/")))
	if err != nil {
		t.Fatalf("Expected upload on disk: %v", err)
	}
	if !bytes.Equal(stored, data) {
		t.Error("Stored bytes differ from upload")
	}
}

func TestS3Uploader(t *testing.T) {
	var (
		mu      sync.Mutex
		method  string
		reqPath string
		ctype   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		mu.Lock()
		method, reqPath, ctype = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "auto",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
	})
	u := NewS3UploaderWithClient(client, "media", "https://cdn.example.com/")

	src, err := u.Upload(context.Background(), "cat.png", "image/png", pngBytes(t, 2, 2))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut {
		t.Errorf("Expected PUT, got %s", method)
	}
	if !strings.HasPrefix(reqPath, "/media/images/") || !strings.HasSuffix(reqPath, ".png") {
		t.Errorf("Unexpected object path %q", reqPath)
	}
	if ctype != "image/png" {
		t.Errorf("Expected content type image/png, got %q", ctype)
	}
	if want := "https://cdn.example.com/" + strings.TrimPrefix(reqPath, "/media/"); src != want {
		t.Errorf("Expected src %q, got %q", want, src)
	}
}
