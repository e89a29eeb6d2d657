package commands

import (
	"github.com/spf13/cobra"

	"github.com/habitaplan/caju/sync"
)

var configPaths []string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "caju",
	Short: "caju - RD Station CRM to Notion lead sync",
	Long: `caju reconciles deal records from the RD Station CRM into a Notion
database. Each run reads a full snapshot of the destination, matches
incoming deals by RD id or normalized phone, and writes only real
differences, never overwriting values with blanks or clobbering a
hand-edited status. Change summaries and status conflicts are reported
over WhatsApp via BotConversa.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configPaths, "config", "c", []string{"caju.yaml"},
		"config file(s), later files override earlier ones")
}

func loadConfig() (sync.Config, error) {
	return sync.LoadConfigFromFiles(configPaths...)
}
