package widget

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/model"
	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/routes"
	"github.com/debemdeboas/inkwell/internal/util"
)

type Handler struct {
	widget *Widget
}

func NewHandler(w *Widget) *Handler {
	return &Handler{widget: w}
}

type viewResponse struct {
	ID        string           `json:"id"`
	Visible   bool             `json:"visible"`
	LoadedAt  time.Time        `json:"loadedAt"`
	Documents []model.Document `json:"documents"`
	Featured  []model.Document `json:"featured"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

// Routes serves the widget view and its browser bridge.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.serveView)
	r.Post("/reload", h.serveReload)
	r.Post("/visibility", h.serveVisibility)
	r.Get(routes.Events, h.serveEvents)
	r.Get(routes.Socket, h.serveSocket)
	return r
}

func (h *Handler) view() viewResponse {
	featured := h.widget.Featured()
	if featured == nil {
		featured = []model.Document{}
	}
	return viewResponse{
		ID:        h.widget.ID(),
		Visible:   h.widget.Visible(),
		LoadedAt:  h.widget.LoadedAt(),
		Documents: h.widget.Documents(),
		Featured:  featured,
	}
}

// serveView tags the view with an ETag over the document list so pollers
// can skip unchanged lists.
func (h *Handler) serveView(w http.ResponseWriter, r *http.Request) {
	view := h.view()

	docs, err := json.Marshal(view.Documents)
	if err != nil {
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	etag := `"` + util.ContentHash(docs) + `"`
	w.Header().Set(config.HETag, etag)
	w.Header().Set(config.HCacheControl, "no-cache")

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) serveReload(w http.ResponseWriter, r *http.Request) {
	h.widget.Reload(r.Context())
	writeJSON(w, http.StatusOK, h.view())
}

func (h *Handler) serveVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}
	h.widget.SetVisible(req.Visible)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.widget.Subscribe(r.Context())
	if err != nil {
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	push.ServeSSE(w, r, events)
}

// serveSocket forwards reload events to the page and takes visibility
// changes from it.
func (h *Handler) serveSocket(w http.ResponseWriter, r *http.Request) {
	events, err := h.widget.Subscribe(r.Context())
	if err != nil {
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	push.ServeWebSocket(w, r, events, func(msg push.Message) {
		if msg.Type == push.TypeVisibility && msg.Visible != nil {
			h.widget.SetVisible(*msg.Visible)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		widgetLogger.Error().Err(err).Msg("Error encoding response")
	}
}
