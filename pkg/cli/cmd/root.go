package cmd

import (
	"fmt"
	"os"

	"github.com/n8nkit/n8nctl/internal/config"
	"github.com/n8nkit/n8nctl/pkg/log"
	"github.com/n8nkit/n8nctl/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "n8nctl",
	Short: "n8nctl - declarative setup for an n8n Docker Compose stack",
	Long: `n8nctl converts a stock panel-provisioned n8n installation into a
customized Docker Compose deployment: it reconciles the environment
file against a desired baseline, regenerates the compose descriptor,
writes the supporting Dockerfiles and scripts, and restarts the stack.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}
	},
	Version:       version.Version,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/n8nctl/n8nctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	viper.SetEnvPrefix("N8NCTL")
	viper.AutomaticEnv() // read in environment variables that match
}

// loadConfig loads the tool configuration for a subcommand run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the run logger honoring --verbose and the configured
// level and format.
func newLogger(cfg *config.Config) log.Logger {
	level := log.ParseLevel(cfg.Log.Level)
	if verbose {
		level = log.DebugLevel
	}

	var formatter log.Formatter = log.NewTextFormatter()
	if cfg.Log.Format == "json" {
		formatter = &log.JSONFormatter{}
	}
	return log.NewLogger(log.WithLevel(level), log.WithFormatter(formatter))
}
