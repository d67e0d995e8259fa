package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/model"
)

var fixDatesDryRun bool

var fixDatesCmd = &cobra.Command{
	Use:   "fix-dates",
	Short: "Rewrite stored document dates in the M/D/YYYY display layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, kv, err := openDocuments(config.AppConfig)
		if err != nil {
			return err
		}
		defer kv.Close()

		list := docs.LoadDocuments(cmd.Context())
		fixed, failed := fixDates(list)
		for _, d := range failed {
			log.Warn().Str("document_id", d.ID.String()).Str("date", d.Date).Msg("Unrecognized date, leaving it as is")
		}

		if fixed == 0 || fixDatesDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "%d dates to fix\n", fixed)
			return nil
		}
		if err := docs.SaveDocuments(cmd.Context(), list); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Fixed %d dates\n", fixed)
		return nil
	},
}

// fixDates normalizes dates in place and returns how many changed and which
// documents could not be parsed.
func fixDates(docs []model.Document) (int, []model.Document) {
	var failed []model.Document
	fixed := 0
	for i := range docs {
		if _, err := model.ParseDate(docs[i].Date); err != nil {
			failed = append(failed, docs[i])
			continue
		}
		if date, changed := model.NormalizeDate(docs[i].Date); changed {
			docs[i].Date = date
			fixed++
		}
	}
	return fixed, failed
}

func init() {
	fixDatesCmd.Flags().BoolVar(&fixDatesDryRun, "dry-run", false, "only count the dates that would change")
	rootCmd.AddCommand(fixDatesCmd)
}
