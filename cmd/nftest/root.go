package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sarchlab/nftest/config"
	"github.com/sarchlab/nftest/session"
)

type rootOptions struct {
	configFile string
	envFile    string
	verbose    bool
	noColor    bool
}

var rootOpts rootOptions

// exitCode carries the code of the last command to main.
var exitCode = session.ExitPass

var rootCmd = &cobra.Command{
	Use:   "nftest",
	Short: "Regression harness for NetFPGA reference designs.",
	Long: `nftest runs regression scripts against a simulated device model ` +
		`or a NetFPGA board. The same script drives both backends.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootOpts.configFile, "config", "c", "",
		"configuration file (yaml, toml, or json)")
	pf.StringVar(&rootOpts.envFile, "env-file", ".env",
		"environment file loaded before NFTEST_ variables are read")
	pf.BoolVarP(&rootOpts.verbose, "verbose", "v", false,
		"list every check in the report")
	pf.BoolVar(&rootOpts.noColor, "no-color", false, "disable colored output")

	config.RegisterFlags(pf)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(config.Options{
		File:    rootOpts.configFile,
		EnvFile: rootOpts.envFile,
		Flags:   cmd.Flags(),
	})
}

func colored() bool {
	return !rootOpts.noColor && !color.NoColor
}

func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		session.Diagnose(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Run 'nftest --help' for usage.")

		return session.ExitFatal
	}

	return exitCode
}
