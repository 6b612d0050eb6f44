package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/n8nkit/n8nctl/pkg/backup"
	"github.com/n8nkit/n8nctl/pkg/cli/format"
)

var backupInstallCron string

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the configuration files now",
	Long: `Copy the environment file and compose descriptor into a timestamped
snapshot directory and rotate old snapshots. With --install-cron the
given schedule is validated and a crontab line for the nightly backup
script is installed.`,
	RunE:         runBackup,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringVar(&backupInstallCron, "install-cron", "",
		"Install a crontab line for backup.sh with this 5-field schedule")
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if backupInstallCron != "" {
		script := filepath.Join(cfg.Paths.BaseDir, "backup.sh")
		if err := backup.InstallCron(backupInstallCron, script); err != nil {
			return err
		}
		fmt.Println(format.Success("crontab entry installed: %s", backup.CronLine(backupInstallCron, script)))
	}

	entries := []backup.Entry{
		{Path: cfg.Paths.EnvFile, Class: backup.Mandatory},
		{Path: cfg.Paths.ComposeFile, Class: backup.Mandatory},
		{Path: filepath.Join(cfg.Paths.BaseDir, "Dockerfile"), Class: backup.Optional},
		{Path: filepath.Join(cfg.Paths.BaseDir, "Dockerfile.tools"), Class: backup.Optional},
	}
	snap, err := backup.Take(cfg.Paths.BackupRoot, uuid.NewString(), entries, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(format.Success("snapshot saved to %s", snap.Dir))

	if removed, err := backup.Rotate(cfg.Paths.BackupRoot, cfg.Backup.Keep); err != nil {
		fmt.Println(format.Warning("rotation failed: %v", err))
	} else if len(removed) > 0 {
		fmt.Printf("removed %d old snapshot(s)\n", len(removed))
	}
	return nil
}
