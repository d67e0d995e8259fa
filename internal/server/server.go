// Package server wires the editor, the widget and the document API into one
// HTTP router.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/editor"
	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/routes"
	"github.com/debemdeboas/inkwell/internal/store"
	"github.com/debemdeboas/inkwell/internal/widget"
)

var serverLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	serverLogger = l
}

// Options holds the components served by the router. Editor and UploadsDir
// are optional.
type Options struct {
	Config    *config.Config
	Documents *store.DocumentStore
	Messenger push.Messenger
	Notifier  *push.Notifier
	Widget    *widget.Widget
	Editor    *editor.Handler

	// UploadsDir is served under routes.Uploads when set.
	UploadsDir string
}

type Server struct {
	cfg        *config.Config
	docs       *store.DocumentStore
	messenger  push.Messenger
	notifier   *push.Notifier
	widget     *widget.Widget
	editor     *editor.Handler
	uploadsDir string

	router     chi.Router
	httpServer *http.Server
}

func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:        cfg,
		docs:       opts.Documents,
		messenger:  opts.Messenger,
		notifier:   opts.Notifier,
		widget:     opts.Widget,
		editor:     opts.Editor,
		uploadsDir: opts.UploadsDir,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get(routes.HealthPath, s.serveHealth)
	r.Get(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.Write([]byte("User-agent: *\nDisallow: /api/\n"))
	})

	r.Route(routes.APIPrefix, func(r chi.Router) {
		if s.docs != nil {
			r.Get(routes.Documents, s.serveListDocuments)
			r.Post(routes.Documents, s.serveSaveDocument)
			r.Get(routes.DocumentByID, s.serveGetDocument)
			r.Put(routes.DocumentByID, s.serveSaveDocument)
			r.Delete(routes.DocumentByID, s.serveDeleteDocument)
		}
		if s.messenger != nil {
			r.Post(routes.Messages, s.serveSendMessage)
		}
		if s.editor != nil {
			r.Mount(routes.Sessions, s.editor.Routes())
		}
	})

	if s.widget != nil {
		r.Mount(routes.Widget, widget.NewHandler(s.widget).Routes())
	}

	if s.uploadsDir != "" {
		files := http.StripPrefix(routes.Uploads+"/", http.FileServer(http.Dir(s.uploadsDir)))
		r.Get(routes.Uploads+"/*", files.ServeHTTP)
	}

	return r
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port)
}

// ListenAndServe serves until ctx is done and then shuts the listener down,
// giving in-flight requests a few seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info().Str("addr", s.httpServer.Addr).Msg("Server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverLogger.Info().Msg("Shutting down server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.widget != nil {
		resp["widget"] = map[string]any{
			"id":       s.widget.ID(),
			"mounted":  s.widget.Mounted(),
			"loadedAt": s.widget.LoadedAt(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
