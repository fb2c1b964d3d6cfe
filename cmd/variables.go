package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ncc-airhealth/korea-geovariable/internal/border"
	"github.com/ncc-airhealth/korea-geovariable/internal/point"
)

var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "List the available border and point variables",
	RunE: func(_ *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "KIND\tVARIABLE")
		_, _ = fmt.Fprintln(w, "----\t--------")
		for _, v := range border.Variables() {
			_, _ = fmt.Fprintf(w, "border\t%s\n", v)
		}
		for _, v := range point.Variables() {
			_, _ = fmt.Fprintf(w, "point\t%s\n", v)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(variablesCmd)
}
