package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mklimuk/als/cmd/dev/cmd"
)

// newLogger routes slog through charm; the dev tool only logs step progress,
// so no caller or timestamp.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	charm := log.NewWithOptions(w, log.Options{Prefix: "dev"})
	charm.SetColorProfile(termenv.ANSI256)
	charm.SetLevel(log.InfoLevel)
	if debug {
		charm.SetLevel(log.DebugLevel)
		charm.SetReportCaller(true)
	}
	return slog.New(charm)
}

func rootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "dev",
		Short:         "build, test and lint the als cli",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			slog.SetDefault(newLogger(os.Stderr, debug))
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")
	root.AddCommand(
		cmd.BuildCmd(),
		cmd.TestCmd(),
		cmd.LintCmd(),
		cmd.IntegrationTestCmd(),
		cmd.CheckCmd(),
	)
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("dev failed", "error", err)
		os.Exit(1)
	}
}
