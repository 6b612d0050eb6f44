package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/n8nkit/n8nctl/internal/config"
	"github.com/n8nkit/n8nctl/pkg/envfile"
	"github.com/n8nkit/n8nctl/pkg/setup"
)

var (
	setupNoBot     bool
	setupNoTools   bool
	setupNoProxy   bool
	setupTimezone  string
	setupDomain    string
	setupAcmeEmail string
	setupDryRun    bool
)

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Reconcile the installation and regenerate the compose stack",
	Long: `Run the full reconciliation pipeline: preflight checks, backup,
environment merge, descriptor rendering and a stack restart. Existing
environment values are never overwritten; only absent keys are added.`,
	RunE:         runSetup,
	SilenceUsage: true,
	Example: `  # Full run with TLS for a public domain
  n8nctl setup --domain n8n.example.com

  # Local stack without the Telegram bot and without TLS
  n8nctl setup --no-bot --no-proxy

  # Check preconditions only, mutate nothing
  n8nctl setup --dry-run`,
}

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().BoolVar(&setupNoBot, "no-bot", false, "Skip the Telegram bot service")
	setupCmd.Flags().BoolVar(&setupNoTools, "no-tools", false, "Skip the tools utility service")
	setupCmd.Flags().BoolVar(&setupNoProxy, "no-proxy", false, "Serve plain HTTP, no ACME/TLS on the proxy")
	setupCmd.Flags().StringVar(&setupTimezone, "timezone", "", "Timezone (default: existing config, then "+config.DefaultTimezone+")")
	setupCmd.Flags().StringVar(&setupDomain, "domain", "", "Public domain name (default: existing config)")
	setupCmd.Flags().StringVar(&setupAcmeEmail, "acme-email", "", "Email for Let's Encrypt registration")
	setupCmd.Flags().BoolVar(&setupDryRun, "dry-run", false, "Run the preflight check only and exit")
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	opts := buildSetupOptions()
	if opts.IncludeBot && !opts.DryRun {
		opts.BotToken = promptBotToken(cfg)
	}

	return setup.New(cfg, opts, logger).Execute(cmd.Context())
}

// buildSetupOptions maps the inverted skip flags onto the driver options.
func buildSetupOptions() setup.Options {
	return setup.Options{
		Domain:       setupDomain,
		Timezone:     setupTimezone,
		AcmeEmail:    setupAcmeEmail,
		IncludeTools: !setupNoTools,
		IncludeBot:   !setupNoBot,
		ProxyTLS:     !setupNoProxy,
		DryRun:       setupDryRun,
	}
}

// promptBotToken asks for the Telegram bot token when the env file does
// not carry one yet and stdin is a terminal. Non-interactive runs keep
// the empty placeholder for the operator to fill in later.
func promptBotToken(cfg *config.Config) string {
	env, err := envfile.Load(cfg.Paths.EnvFile)
	if err == nil {
		if v, found := env.Get("TELEGRAM_BOT_TOKEN"); found && v != "" {
			return ""
		}
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ""
	}

	fmt.Print("Telegram bot token (empty to configure later): ")
	token, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(token))
}
