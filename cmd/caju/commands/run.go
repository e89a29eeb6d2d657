package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/habitaplan/caju/sync"
)

var runBackupFirst bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one sync batch",
	Long: `Run fetches deals for every configured RD stage, reconciles them
against the Notion database and sends the WhatsApp run report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		notion := sync.NewNotionClient(cfg)

		if runBackupFirst {
			if err := sync.RunBackup(cmd.Context(), notion, sync.NewDriveUploader(cfg)); err != nil {
				// the backup side channel never blocks a sync
				color.Yellow("backup failed: %v", err)
			}
		}

		syncer := sync.NewSyncer(cfg, sync.NewRDStationClient(cfg), notion, sync.NewBotConversaNotifier(cfg))
		report, err := syncer.Run(cmd.Context())
		if err != nil {
			return err
		}

		color.Green("sync finished: %d created, %d updated", len(report.Created), len(report.Updated))
		if report.Conflicts > 0 {
			color.Yellow("%d status conflict(s) reported", report.Conflicts)
		}
		if report.Skipped > 0 {
			color.Red("%d record(s) skipped after write failures", report.Skipped)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runBackupFirst, "backup", false, "back up the Notion database before syncing")
	rootCmd.AddCommand(runCmd)
}
