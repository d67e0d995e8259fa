package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/model"
	"github.com/debemdeboas/inkwell/internal/push"
	"github.com/debemdeboas/inkwell/internal/render"
	"github.com/debemdeboas/inkwell/internal/store"
)

var (
	importPath   string
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a directory of Markdown files as documents",
	Long: `Converts every .md file in --path to a document and saves it. The title is
taken from the %%% front matter block when present, otherwise from the file name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig

		imported, err := render.New(cfg.Render).ImportDir(importPath)
		if err != nil {
			return err
		}
		if importDryRun {
			printDocuments(cmd.OutOrStdout(), imported)
			return nil
		}

		docs, kv, err := openDocuments(cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		saved, err := importDocuments(cmd.Context(), docs, imported)
		if err != nil {
			return err
		}

		if len(saved) > 0 {
			messenger, closeMessenger, err := openMessenger(cfg)
			if err != nil {
				log.Warn().Err(err).Msg("Push backend unavailable, widgets will catch up on their own")
			} else {
				push.NewNotifier(messenger, cfg.Widget.ID, cfg.Push.Origin).DocumentsChanged(cmd.Context(), saved[0].ID)
				closeMessenger()
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d documents from %s\n", len(saved), importPath)
		return nil
	},
}

// importDocuments saves docs so that the first file ends up first in the list.
func importDocuments(ctx context.Context, docs *store.DocumentStore, imported []model.Document) ([]model.Document, error) {
	saved := make([]model.Document, 0, len(imported))
	for i := len(imported) - 1; i >= 0; i-- {
		doc, err := docs.SaveDocument(ctx, imported[i])
		if err != nil {
			return saved, fmt.Errorf("saving %q: %w", imported[i].Title, err)
		}
		saved = append([]model.Document{doc}, saved...)
		log.Debug().Str("document_id", doc.ID.String()).Str("title", doc.Title).Msg("Document imported")
	}
	return saved, nil
}

func init() {
	importCmd.Flags().StringVarP(&importPath, "path", "p", "", "directory containing .md files")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "print the documents without saving them")
	importCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(importCmd)
}
