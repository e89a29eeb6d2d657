package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/habitaplan/caju/sync"
)

var docsAsCSV bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print the configured field mapping documentation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		doc := sync.GenerateFieldDocumentation(cfg)
		if docsAsCSV {
			out, err := doc.CSV()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}
		fmt.Print(doc.Markdown())
		return nil
	},
}

func init() {
	docsCmd.Flags().BoolVar(&docsAsCSV, "csv", false, "emit CSV instead of markdown")
	rootCmd.AddCommand(docsCmd)
}
