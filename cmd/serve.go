package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/editor"
	"github.com/debemdeboas/inkwell/internal/media"
	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/server"
	"github.com/debemdeboas/inkwell/internal/widget"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve editing sessions, the widget and the document API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		docs, kv, err := openDocuments(cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		messenger, closeMessenger, err := openMessenger(cfg)
		if err != nil {
			return fmt.Errorf("opening push backend: %w", err)
		}
		defer closeMessenger()
		notifier := push.NewNotifier(messenger, cfg.Widget.ID, cfg.Push.Origin)

		w := widget.New(cfg.Widget.ID, docs,
			widget.NewStoreTrigger(kv, docs.Key()),
			widget.NewMessageTrigger(messenger, cfg.Widget.ID, cfg.Push.AllowedOrigins),
			widget.NewPollTrigger(cfg.Widget.PollInterval),
		)
		if err := w.Mount(ctx); err != nil {
			return err
		}
		defer w.Unmount()

		opts := server.Options{
			Config:    cfg,
			Documents: docs,
			Messenger: messenger,
			Notifier:  notifier,
			Widget:    w,
		}

		if cfg.Editor.Enabled {
			uploader, err := media.Open(cfg.Media)
			if err != nil {
				return fmt.Errorf("opening media backend: %w", err)
			}
			if fsUploader, ok := uploader.(*media.FSUploader); ok {
				opts.UploadsDir = fsUploader.Dir()
			}

			svc := editor.NewService(docs, notifier, editor.NewMemoryRepository(), editor.Options{
				Autosave:      cfg.Editor.Autosave,
				SurfaceWidth:  cfg.Editor.SurfaceWidth,
				MinImageWidth: cfg.Editor.MinImageWidth,
			})
			defer svc.Shutdown()

			opts.Editor = editor.NewHandler(svc, uploader, int64(cfg.Media.MaxUploadSize))
		}

		log.Info().
			Str("store", cfg.Store.Backend).
			Str("push", cfg.Push.Backend).
			Bool("editor", cfg.Editor.Enabled).
			Msg("Starting inkwell")

		return server.New(opts).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
