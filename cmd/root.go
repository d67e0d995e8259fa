// Package cmd implements the inkwell command line.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/content"
	"github.com/debemdeboas/inkwell/internal/db"
	"github.com/debemdeboas/inkwell/internal/editor"
	"github.com/debemdeboas/inkwell/internal/logger"
	"github.com/debemdeboas/inkwell/internal/media"
	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/render"
	"github.com/debemdeboas/inkwell/internal/server"
	"github.com/debemdeboas/inkwell/internal/store"
	"github.com/debemdeboas/inkwell/internal/widget"
)

var (
	cfgFile  string
	envFile  string
	logLevel string

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Document editor with embedded images and a live widget view",
	Long: `Inkwell serves editing sessions for documents with embedded images and a
read-only widget that follows the stored documents as they change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}

		// Logging during config load goes to the default level.
		setLoggers(logger.New(logLevel))

		if err := config.LoadConfig(cfgFile); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := config.AppConfig.Logging.Level
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		setLoggers(logger.New(level))
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level, overrides the config")
}

func setLoggers(l zerolog.Logger) {
	log = l
	config.SetLogger(logger.Component(l, "config"))
	content.SetLogger(logger.Component(l, "content"))
	db.SetLogger(logger.Component(l, "db"))
	editor.SetLogger(logger.Component(l, "editor"))
	media.SetLogger(logger.Component(l, "media"))
	push.SetLogger(logger.Component(l, "push"))
	render.SetLogger(logger.Component(l, "render"))
	server.SetLogger(logger.Component(l, "server"))
	store.SetLogger(logger.Component(l, "store"))
	widget.SetLogger(logger.Component(l, "widget"))
}

// openMessenger returns the push backend and a func releasing it.
func openMessenger(cfg *config.Config) (push.Messenger, func(), error) {
	switch cfg.Push.Backend {
	case "redis":
		m, err := push.NewRedisMessenger(cfg.Store.Redis.URL, cfg.Store.Redis.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return m, func() { m.Close() }, nil
	default:
		return push.NewBroker(), func() {}, nil
	}
}

func openDocuments(cfg *config.Config) (*store.DocumentStore, store.KV, error) {
	kv, err := store.Open(cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf(config.ErrOpenStoreFmt, err)
	}
	return store.NewDocumentStore(kv, cfg.Store.Key), kv, nil
}
