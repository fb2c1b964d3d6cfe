package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as YAML",
	Long: `Prints the configuration after merging defaults, config.yaml, and
GEOVAR_* environment variables. The database URL is redacted.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		shown := *cfg
		if shown.Database.URL != "" {
			shown.Database.URL = "(set, redacted)"
		}

		out, err := yaml.Marshal(&shown)
		if err != nil {
			return eris.Wrap(err, "config: marshal")
		}
		fmt.Fprint(os.Stdout, string(out))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
