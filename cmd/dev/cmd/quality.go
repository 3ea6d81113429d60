package cmd

import (
	"fmt"
	"log/slog"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

type step struct {
	name string
	run  func() error
}

var (
	unitStep  = step{"unit tests", test.Test}
	lintStep  = step{"lint", test.Lint}
	integStep = step{"integration tests", test.Integ}
)

// runSteps stops at the first failing step.
func runSteps(steps ...step) error {
	for _, s := range steps {
		slog.Info("running", "step", s.name)
		if err := s.run(); err != nil {
			return fmt.Errorf("%s failed: %w", s.name, err)
		}
	}
	return nil
}

func TestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run unit tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(unitStep)
		},
	}
}

func LintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run linting",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(lintStep)
		},
	}
}

// IntegrationTestCmd sets TEST_INTEGRATION_ENABLED so the suites that need a
// sensor on a bridge (adapter/mcp2221_integration_test.go) stop skipping.
func IntegrationTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "integration-test",
		Short: "Run hardware integration tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(integStep)
		},
	}
}

func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run lint and unit tests, as CI does",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(lintStep, unitStep)
		},
	}
}
