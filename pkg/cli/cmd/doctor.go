package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/n8nkit/n8nctl/pkg/runner"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow, color.Bold)
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report the state of the installation and its runtime",
	Long: `Run every preflight check and report the result without mutating
anything. Unlike setup, doctor always exits zero; it is a report, not a
gate.`,
	RunE:         runDoctor,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	comp := runner.NewComposeRunner(cfg.Paths.BaseDir, logger)

	checks := []struct {
		name string
		fn   func() error
	}{
		{"running as root", func() error {
			if os.Geteuid() != 0 {
				return fmt.Errorf("euid %d", os.Geteuid())
			}
			return nil
		}},
		{"base directory " + cfg.Paths.BaseDir, statCheck(cfg.Paths.BaseDir)},
		{"env file " + cfg.Paths.EnvFile, statCheck(cfg.Paths.EnvFile)},
		{"compose file " + cfg.Paths.ComposeFile, statCheck(cfg.Paths.ComposeFile)},
		{"docker binary", func() error {
			if !comp.BinaryAvailable() {
				return fmt.Errorf("not found in PATH")
			}
			return nil
		}},
		{"docker daemon", func() error {
			return runner.PingDaemon(cmd.Context(), cfg.Docker.FallbackAPIVersion, logger)
		}},
		{"health endpoint " + cfg.Health.URL, func() error {
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(cfg.Health.URL)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != 200 {
				return fmt.Errorf("status %d", resp.StatusCode)
			}
			return nil
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			fmt.Printf("[%s] %s: %v\n", warnColor.Sprint("WARN"), check.name, err)
		} else {
			fmt.Printf("[ %s ] %s\n", okColor.Sprint("OK"), check.name)
		}
	}
	return nil
}

func statCheck(path string) func() error {
	return func() error {
		_, err := os.Stat(path)
		return err
	}
}
