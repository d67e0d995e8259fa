package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/model"
	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/store"
)

type documentRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	IsFeatured *bool  `json:"isFeatured"`
}

func (s *Server) serveListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.docs.LoadDocuments(r.Context()))
}

func (s *Server) serveGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}

	doc, err := s.docs.Document(r.Context(), id)
	if err != nil {
		http.Error(w, config.ErrDocumentNotFound, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// serveSaveDocument creates a document on POST and updates an existing one on
// PUT. Either way the widget is told the list changed.
func (s *Server) serveSaveDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}

	doc := model.Document{}
	status := http.StatusCreated

	if r.Method == http.MethodPut {
		id, err := model.ParseDocumentID(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
			return
		}
		doc, err = s.docs.Document(r.Context(), id)
		if err != nil {
			http.Error(w, config.ErrDocumentNotFound, http.StatusNotFound)
			return
		}
		status = http.StatusOK
	}

	doc.Title = req.Title
	doc.Content = req.Content
	if req.IsFeatured != nil {
		doc.IsFeatured = *req.IsFeatured
	}
	if doc.Title == "" {
		doc.Title = "Untitled"
	}

	saved, err := s.docs.SaveDocument(r.Context(), doc)
	if err != nil {
		serverLogger.Error().Err(err).Msg(config.ErrSaveDocuments)
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	s.documentsChanged(r, saved.ID)

	writeJSON(w, status, saved)
}

func (s *Server) serveDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := model.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}

	if err := s.docs.DeleteDocument(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			http.Error(w, config.ErrDocumentNotFound, http.StatusNotFound)
			return
		}
		serverLogger.Error().Err(err).Msg(config.ErrSaveDocuments)
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	s.documentsChanged(r, id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) documentsChanged(r *http.Request, id model.DocumentID) {
	if s.notifier != nil {
		s.notifier.DocumentsChanged(r.Context(), id)
	}
}

// serveSendMessage relays a message from an out-of-process editor to the
// widget, the same way the built-in editor notifies it.
func (s *Server) serveSendMessage(w http.ResponseWriter, r *http.Request) {
	var msg push.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Type == "" {
		http.Error(w, config.HTTPErrBadRequest, http.StatusBadRequest)
		return
	}

	err := s.messenger.Send(r.Context(), s.cfg.Widget.ID, msg)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, push.ErrUndelivered):
		w.WriteHeader(http.StatusAccepted)
	default:
		serverLogger.Error().Err(err).Msg(config.ErrNotifyFailed)
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		serverLogger.Error().Err(err).Msg("Error encoding response")
	}
}
