package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarchlab/nftest/fault"
	"github.com/sarchlab/nftest/logging"
	"github.com/sarchlab/nftest/regress"
	"github.com/sarchlab/nftest/session"
)

var seed uint64

var runCmd = &cobra.Command{
	Use:   "run [test...]",
	Short: "Run regression tests.",
	Long: "Run the named regression tests, or every test when none is named. " +
		"The exit code is 0 when all checks pass, 1 when a check fails, and " +
		"2 when a test could not run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		tests, err := selectTests(args)
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Log)
		if err != nil {
			return fault.New(fault.Configuration, "logging", err)
		}
		defer func() { _ = logger.Sync() }()

		for _, t := range tests {
			logger.Info("running test",
				zap.String("test", t.Name),
				zap.String("design", t.Design),
				zap.String("mode", cfg.Mode))

			code := t.Run(cmd.Context(), cfg, regress.Options{Seed: seed},
				session.WithLogger(logger.Named(t.Name)),
				session.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
				session.WithColor(colored()),
				session.WithVerbose(rootOpts.verbose),
			)

			if code > exitCode {
				exitCode = code
			}
		}

		return nil
	},
}

func selectTests(names []string) ([]regress.Test, error) {
	if len(names) == 0 {
		return regress.Tests(), nil
	}

	tests := make([]regress.Test, 0, len(names))

	for _, n := range names {
		t, err := regress.Lookup(n)
		if err != nil {
			return nil, err
		}

		tests = append(tests, t)
	}

	return tests, nil
}

func init() {
	runCmd.Flags().Uint64Var(&seed, "seed", 1,
		"seed of the random packet lengths")

	rootCmd.AddCommand(runCmd)
}
