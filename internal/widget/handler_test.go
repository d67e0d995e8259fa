package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/debemdeboas/inkwell/internal/store"
)

func TestHandler(t *testing.T) {
	w := New(widgetID, store.NewDocumentStore(store.NewMemoryKV(), ""))
	if err := w.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Unmount()

	srv := httptest.NewServer(NewHandler(w).Routes())
	defer srv.Close()

	t.Run("View", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var view viewResponse
		if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
			t.Fatalf("Failed to decode view: %v", err)
		}
		if view.ID != widgetID || len(view.Documents) != 2 || len(view.Featured) != 1 {
			t.Errorf("Unexpected view %+v", view)
		}
	})

	t.Run("View not modified", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		etag := resp.Header.Get("ETag")
		if etag == "" {
			t.Fatal("Expected an ETag")
		}

		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
		req.Header.Set("If-None-Match", etag)
		resp, err = http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotModified {
			t.Errorf("Expected 304, got %d", resp.StatusCode)
		}
	})

	t.Run("Visibility", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/visibility", "application/json", strings.NewReader(`{"visible":false}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", resp.StatusCode)
		}
		if w.Visible() {
			t.Error("Expected widget to be hidden")
		}

		before := w.ReloadCount()
		resp, _ = http.Post(srv.URL+"/visibility", "application/json", strings.NewReader(`{"visible":true}`))
		resp.Body.Close()
		eventually(t, "reload on visible", func() bool { return w.ReloadCount() > before })
	})

	t.Run("Bad visibility body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/visibility", "application/json", strings.NewReader(`nope`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("Reload", func(t *testing.T) {
		before := w.ReloadCount()
		resp, err := http.Post(srv.URL+"/reload", "application/json", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if w.ReloadCount() != before+1 {
			t.Errorf("Expected one reload, got %d", w.ReloadCount()-before)
		}
	})
}
