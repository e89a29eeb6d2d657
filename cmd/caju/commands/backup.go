package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/habitaplan/caju/sync"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the Notion database to Google Drive",
	Long: `Backup snapshots the whole Notion database into a semicolon-delimited
CSV (including page ids and last-edited timestamps for auditing) and
uploads it to the configured Google Drive folder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := sync.RunBackup(cmd.Context(), sync.NewNotionClient(cfg), sync.NewDriveUploader(cfg)); err != nil {
			return err
		}
		color.Green("backup complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
