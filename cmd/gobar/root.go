package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/example/gobar/internal/definition"
	"github.com/example/gobar/internal/logging"
	"github.com/example/gobar/pkg/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings are the CLI defaults a user can override with GOBAR_* variables
// or gobar.vars.json next to the binary.
type settings struct {
	Debug     bool          `koanf:"DEBUG"`
	SecretEnv string        `koanf:"SECRET_ENV"`
	Refresh   time.Duration `koanf:"REFRESH"`
}

type app struct {
	verbosity int
	secretEnv string
	refresh   time.Duration
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "gobar",
		Short: "Build and preview menu bar plugin output",
		Long: `gobar turns menu definitions (YAML, TOML, JSON or encrypted files) into
the text protocol menu bar hosts such as xbar and SwiftBar read from plugins,
and previews them in the terminal or the system tray.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return a.loadSettings(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&a.secretEnv, "secret-env", "GOBAR_SECRET", "Environment variable holding the passphrase for .enc definitions")

	rootCmd.AddCommand(
		a.newRenderCmd(),
		a.newShowCmd(),
		a.newItemsCmd(),
		a.newPreviewCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadSettings fills options the user did not pass on the command line.
func (a *app) loadSettings(cmd *cobra.Command) error {
	cfg, report, err := config.Load(settings{
		SecretEnv: "GOBAR_SECRET",
		Refresh:   30 * time.Second,
	}, config.WithPrefix("GOBAR_"))
	if err != nil {
		return err
	}
	if cfg.Debug {
		logging.EnableDebug()
	}
	for _, w := range report.Warnings {
		log.Debug().Msg(w)
	}

	if !cmd.Flags().Changed("secret-env") {
		a.secretEnv = cfg.SecretEnv
	}
	if f := cmd.Flags().Lookup("interval"); f == nil || !f.Changed {
		a.refresh = cfg.Refresh
	}
	return nil
}

func (a *app) passphrase() string {
	if a.secretEnv == "" {
		return ""
	}
	pass := os.Getenv(a.secretEnv)
	logging.Debugf("passphrase from $%s: %q", a.secretEnv, logging.MaskIdentifier(pass))
	return pass
}

// definitionPath returns the first argument, or the default definition.
func definitionPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	return definition.DefaultPath()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gobar version %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
