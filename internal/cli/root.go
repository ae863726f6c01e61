// Package cli implements the nsynca CLI commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/logging"
	"github.com/nsynca/nsynca/internal/models"
	"github.com/nsynca/nsynca/internal/orchestrator"
)

// errRunFailed reports a run that completed with failures. The summary has
// already been printed.
var errRunFailed = errors.New("run failed")

var (
	flagUpdaters []string
	flagLogLevel string
	flagEnvFile  string
)

var rootCmd = &cobra.Command{
	Use:   "nsynca",
	Short: "Keep a Notion workspace in sync",
	Long: `Nsynca reads deployments, tasks and service profiles from Notion,
computes derived values and writes them back to Notion pages.

Without a subcommand it runs the selected updaters (default: all).
Updaters are given as a comma list, a repeated flag or trailing names:

  nsynca --updaters task,service
  nsynca --updaters task --updaters service
  nsynca --updaters task service`,
	Args:              updaterArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	RunE:              runUpdaters,
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errRunFailed) {
		fmt.Fprintln(os.Stderr, styleError.Render("Error: ")+err.Error())
	}
	return err
}

func init() {
	rootCmd.Flags().StringSliceVarP(&flagUpdaters, "updaters", "u", nil,
		"updaters to run: deployment, task, service, charge or all (comma separated)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "INFO",
		"log level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", config.EnvFileName,
		"path of the .env file holding secrets")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(guiCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	logging.Setup(level)
	return nil
}

// signalContext cancels on SIGINT and SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// updaterArgs accepts trailing updater names.
func updaterArgs(cmd *cobra.Command, args []string) error {
	_, err := models.ParseSelection(args)
	return err
}

func runUpdaters(cmd *cobra.Command, args []string) error {
	names := append(append([]string(nil), flagUpdaters...), args...)
	sel, err := models.ParseSelection(names)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	run, err := s.orch.Run(ctx, sel, orchestrator.LogReporter{})
	if run == nil {
		return err
	}
	printRunSummary(cmd.OutOrStdout(), run)
	if err != nil {
		return err
	}
	if run.Status != models.RunStatusSuccess {
		return errRunFailed
	}
	return nil
}

func printRunSummary(w io.Writer, run *models.Run) {
	fmt.Fprintf(w, "\n%s %s %s\n", styleBrand.Render("Nsynca"), styleCommand.Render(run.Type), statusBadge(run.Status))
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Run:     "), styleValue.Render(run.ID))
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Duration:"), styleValue.Render(run.Duration().Round(time.Millisecond).String()))
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Records: "), styleValue.Render(run.Summary()))
	for _, ue := range run.UpdaterErrors {
		fmt.Fprintf(w, "  %s %s\n", styleWarning.Render(ue.Updater.Label()+" updater failed:"), ue.Error)
	}
	for _, res := range run.Results {
		if res.Failed() {
			fmt.Fprintf(w, "  %s %s: %s\n", styleError.Render("✗"), res.Name, res.Error)
		}
	}
	if run.Error != "" {
		fmt.Fprintf(w, "  %s %s\n", styleError.Render("Aborted:"), run.Error)
	}
}
