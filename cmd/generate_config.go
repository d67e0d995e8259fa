package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/inkwell/internal/config"
)

const configHeader = "# Inkwell Configuration Example\n# Copy this file to config.yaml and customize as needed\n\n"

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config [file]",
	Short: "Write an example config with every default filled in",
	Long:  `Writes config.example.yaml, or the given file. Use "-" to print to stdout.`,
	Args:  cobra.MaximumNArgs(1),
	// Runs without an existing config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile := "config.example.yaml"
		if len(args) > 0 {
			outputFile = args[0]
		}

		output, err := exampleConfig()
		if err != nil {
			return err
		}

		if outputFile == "-" {
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		}
		if err := os.WriteFile(outputFile, []byte(output), 0o644); err != nil {
			return fmt.Errorf("error writing file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated example config: %s\n", outputFile)
		return nil
	},
}

func exampleConfig() (string, error) {
	yamlData, err := yaml.Marshal(config.Default())
	if err != nil {
		return "", fmt.Errorf("error generating YAML: %w", err)
	}
	return configHeader + string(yamlData), nil
}

func init() {
	rootCmd.AddCommand(generateConfigCmd)
}
