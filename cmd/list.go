package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/inkwell/internal/config"
	"github.com/debemdeboas/inkwell/internal/content"
	"github.com/debemdeboas/inkwell/internal/model"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	featuredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Padding(0, 1)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const colFeatured = 4

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, kv, err := openDocuments(config.AppConfig)
		if err != nil {
			return err
		}
		defer kv.Close()

		printDocuments(cmd.OutOrStdout(), docs.LoadDocuments(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func printDocuments(w io.Writer, docs []model.Document) {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		featured := ""
		if d.IsFeatured {
			featured = "★"
		}
		rows = append(rows, []string{d.ID.String(), d.Date, d.Title, strconv.Itoa(imageCount(d)), featured})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "DATE", "TITLE", "IMAGES", "FEATURED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == colFeatured:
				return featuredStyle
			default:
				return cellStyle
			}
		})

	fmt.Fprintln(w, t.Render())
}

func imageCount(d model.Document) int {
	surface, err := content.NewSurface(d.Content)
	if err != nil {
		return 0
	}
	return len(surface.Images())
}
