package editor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/content"
	"github.com/debemdeboas/inkwell/internal/media"
	"github.com/debemdeboas/inkwell/internal/model"
	"github.com/debemdeboas/inkwell/internal/store"
)

type Handler struct {
	service  *Service
	uploader media.Uploader

	maxUploadSize int64
}

func NewHandler(service *Service, uploader media.Uploader, maxUploadSize int64) *Handler {
	return &Handler{
		service:       service,
		uploader:      uploader,
		maxUploadSize: maxUploadSize,
	}
}

type stateResponse struct {
	ID              string           `json:"id"`
	DocumentID      model.DocumentID `json:"documentId"`
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	SelectedImageID *model.ImageID   `json:"selectedImageId,omitempty"`
	Overlay         *Overlay         `json:"overlay,omitempty"`
	Dragging        bool             `json:"dragging"`
}

type openRequest struct {
	DocumentID model.DocumentID `json:"documentId"`
}

type eventRequest struct {
	Type   content.EventType `json:"type"`
	Target string            `json:"target"`
	X      float64           `json:"x"`
	Y      float64           `json:"y"`
}

type eventResponse struct {
	DefaultPrevented bool          `json:"defaultPrevented"`
	State            stateResponse `json:"state"`
}

type selectRequest struct {
	ImageID model.ImageID `json:"imageId"`
}

type resizeRequest struct {
	Preset model.SizePreset `json:"preset"`
}

type positionRequest struct {
	Position model.Position `json:"position"`
}

type pressRequest struct {
	X float64 `json:"x"`
}

type insertRequest struct {
	Src      string         `json:"src"`
	Alt      string         `json:"alt"`
	Width    string         `json:"width"`
	Position model.Position `json:"position"`
}

// Routes serves editing sessions. Every route below /{sessionID} acts on one
// open session.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.serveOpen)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.withSession(h.serveState))
		r.Delete("/", h.serveClose)
		r.Post("/events", h.withSession(h.serveEvent))
		r.Post("/select", h.withSession(h.serveSelect))
		r.Post("/deselect", h.withSession(h.serveDeselect))
		r.Post("/actions/{action}", h.withSession(h.serveAction))
		r.Post("/images", h.withSession(h.serveInsert))
		r.Post("/images/{imageID}/resize", h.withSession(h.serveResize))
		r.Post("/images/{imageID}/position", h.withSession(h.servePosition))
		r.Post("/handles/{edge}", h.withSession(h.servePress))
		r.Post("/save", h.withSession(h.serveSave))
	})
	return r
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *Session)

func (h *Handler) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.service.Session(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, config.ErrSessionNotFound, http.StatusNotFound)
			return
		}
		next(w, r, s)
	}
}

func (h *Handler) state(s *Session) stateResponse {
	resp := stateResponse{
		ID:       s.ID(),
		Title:    s.Title(),
		Content:  s.Content(),
		Overlay:  s.Manager().Overlay(),
		Dragging: s.Manager().Dragging(),
	}
	if doc, ok := h.service.Document(s.ID()); ok {
		resp.DocumentID = doc.ID
	}
	if id, ok := s.SelectedImageID(); ok {
		resp.SelectedImageID = &id
	}
	return resp
}

func (h *Handler) serveOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
			return
		}
	}

	s, err := h.service.Open(r.Context(), req.DocumentID)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSessionID,
		Value:    s.ID(),
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusCreated, h.state(s))
}

func (h *Handler) serveState(w http.ResponseWriter, r *http.Request, s *Session) {
	writeJSON(w, http.StatusOK, h.state(s))
}

func (h *Handler) serveClose(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveEvent(w http.ResponseWriter, r *http.Request, s *Session) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}

	var resp eventResponse
	var err error
	switch req.Type {
	case content.EventClick:
		var e *content.Event
		if e, err = s.Click(req.Target); e != nil {
			resp.DefaultPrevented = e.DefaultPrevented()
		}
	case content.EventPointerMove:
		err = s.PointerMove(req.X, req.Y)
	case content.EventPointerUp:
		err = s.PointerUp(req.X, req.Y)
	default:
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp.State = h.state(s)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) serveSelect(w http.ResponseWriter, r *http.Request, s *Session) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}
	h.respond(w, s, s.SelectImage(req.ImageID))
}

func (h *Handler) serveDeselect(w http.ResponseWriter, r *http.Request, s *Session) {
	h.respond(w, s, s.DeselectImage())
}

func (h *Handler) serveAction(w http.ResponseWriter, r *http.Request, s *Session) {
	h.respond(w, s, s.Apply(Action(chi.URLParam(r, "action"))))
}

func (h *Handler) serveResize(w http.ResponseWriter, r *http.Request, s *Session) {
	id, ok := imageIDParam(r)
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); !ok || err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}
	h.respond(w, s, s.ResizeImageTo(id, req.Preset))
}

func (h *Handler) servePosition(w http.ResponseWriter, r *http.Request, s *Session) {
	id, ok := imageIDParam(r)
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); !ok || err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}
	h.respond(w, s, s.PositionImageTo(id, req.Position))
}

func (h *Handler) servePress(w http.ResponseWriter, r *http.Request, s *Session) {
	var req pressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}
	h.respond(w, s, s.PressHandle(Edge(chi.URLParam(r, "edge")), req.X))
}

func (h *Handler) serveSave(w http.ResponseWriter, r *http.Request, s *Session) {
	h.respond(w, s, s.Save(r.Context()))
}

// serveInsert takes either a JSON body naming an existing image or a
// multipart upload, which is stored through the uploader first.
func (h *Handler) serveInsert(w http.ResponseWriter, r *http.Request, s *Session) {
	var spec content.ImageSpec

	if strings.HasPrefix(r.Header.Get(config.HCType), "multipart/") {
		if h.uploader == nil {
			http.Error(w, "Uploads are disabled", http.StatusNotImplemented)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		src, err := h.uploader.Upload(r.Context(), header.Filename, header.Header.Get(config.HCType), data)
		if err != nil {
			editorLogger.Error().Err(err).Str("file", header.Filename).Msg("Error storing upload")
			http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
			return
		}
		spec.Src = src
		spec.Alt = r.FormValue("alt")
		spec.Position = model.Position(r.FormValue("position"))
		spec.NaturalWidth, spec.NaturalHeight, _ = media.NaturalSize(data)
	} else {
		var req insertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Src == "" {
			http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
			return
		}
		width, err := model.ParseLength(req.Width)
		if err != nil {
			http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
			return
		}
		spec = content.ImageSpec{Src: req.Src, Alt: req.Alt, Width: width, Position: req.Position}
	}

	if spec.Position != "" {
		if _, err := model.ParsePosition(string(spec.Position)); err != nil {
			http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
			return
		}
	}

	if _, err := s.InsertImage(r.Context(), spec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.state(s))
}

func (h *Handler) respond(w http.ResponseWriter, s *Session, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.state(s))
}

func imageIDParam(r *http.Request) (model.ImageID, bool) {
	return model.ParseImageElementID(model.ImageElementPrefix + chi.URLParam(r, "imageID"))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidPreset), errors.Is(err, ErrInvalidPosition),
		errors.Is(err, ErrUnknownEdge), errors.Is(err, ErrNoDrag), errors.Is(err, ErrUnknownAction):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrDuplicateImage):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrSessionClosed), errors.Is(err, ErrSessionNotFound):
		http.Error(w, config.ErrSessionNotFound, http.StatusNotFound)
	case errors.Is(err, store.ErrDocumentNotFound):
		http.Error(w, config.ErrDocumentNotFound, http.StatusNotFound)
	default:
		editorLogger.Error().Err(err).Msg("Error handling editor request")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		editorLogger.Error().Err(err).Msg("Error encoding response")
	}
}
