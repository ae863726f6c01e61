package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/models"
)

var (
	flagLogsMonth  string
	flagLogsType   string
	flagLogsStatus string
	flagLogsID     string
	flagLogsJSON   bool
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"history"},
	Short:   "Show past runs",
	Long: `Show past runs from the run history.

Lists the runs of the most recent month unless --month is given.
Use --id to show one run with every record result.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&flagLogsMonth, "month", "", "month to list (YYYY-MM)")
	logsCmd.Flags().StringVar(&flagLogsType, "type", "", "only runs of this type (all, deployment, task, service, charge)")
	logsCmd.Flags().StringVar(&flagLogsStatus, "status", "", "only runs with this status (success, failed, running)")
	logsCmd.Flags().StringVar(&flagLogsID, "id", "", "show the run with this ID (or unique prefix)")
	logsCmd.Flags().BoolVar(&flagLogsJSON, "json", false, "print JSON")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := config.NewHistoryStore(cfg.LogsDir())
	out := cmd.OutOrStdout()

	if flagLogsID != "" {
		run, err := store.FindRun(flagLogsID)
		if err != nil {
			return err
		}
		if flagLogsJSON {
			return writeJSON(out, run)
		}
		printRunDetail(out, run)
		return nil
	}

	month := flagLogsMonth
	if month == "" {
		months, err := store.ListMonths()
		if err != nil {
			return err
		}
		if len(months) == 0 {
			fmt.Fprintf(out, "No runs recorded in %s.\n", store.Dir())
			return nil
		}
		month = months[0]
	}

	runs, err := store.LoadRuns(month)
	if err != nil {
		return err
	}
	runs = config.FilterRuns(runs, config.RunFilter{Type: flagLogsType, Status: flagLogsStatus})

	if flagLogsJSON {
		if runs == nil {
			runs = []models.Run{}
		}
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No matching runs in %s.\n", month)
		return nil
	}
	printRunList(out, month, runs)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRunList(w io.Writer, month string, runs []models.Run) {
	fmt.Fprintf(w, "%s %s\n\n", styleBrand.Render("Runs"), styleLabel.Render(month))
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %s  %-10s %s  %s\n",
			styleHint.Render(shortID(r.ID)),
			styleValue.Render(r.StartedAt.Local().Format("2006-01-02 15:04")),
			r.Type,
			statusBadge(r.Status),
			styleLabel.Render(r.Summary()),
		)
	}
	fmt.Fprintf(w, "\n%s\n", styleHint.Render("Use 'nsynca logs --id <run>' for details."))
}

func printRunDetail(w io.Writer, r *models.Run) {
	fmt.Fprintf(w, "%s %s\n", styleBrand.Render("Run"), styleValue.Render(r.ID))
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Type:     "), r.Type)
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Status:   "), statusBadge(r.Status))
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Started:  "), r.StartedAt.Local().Format(time.DateTime))
	if r.CompletedAt != nil {
		fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Completed:"), r.CompletedAt.Local().Format(time.DateTime))
		fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Duration: "), r.Duration().Round(time.Millisecond))
	}
	fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Records:  "), r.Summary())
	if r.Error != "" {
		fmt.Fprintf(w, "  %s %s\n", styleLabel.Render("Error:    "), styleError.Render(r.Error))
	}
	for _, ue := range r.UpdaterErrors {
		fmt.Fprintf(w, "  %s %s\n", styleWarning.Render(ue.Updater.Label()+" updater failed:"), ue.Error)
	}
	if len(r.Results) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, res := range r.Results {
		if res.Failed() {
			fmt.Fprintf(w, "  %s %-10s %s: %s\n", styleError.Render("✗"), res.Updater, res.Name, res.Error)
			continue
		}
		fmt.Fprintf(w, "  %s %-10s %s %s\n", styleSuccess.Render("✓"), res.Updater, res.Name, styleHint.Render("("+res.Action+")"))
		if len(res.Changes) > 0 {
			fmt.Fprintf(w, "      %s\n", styleHint.Render(strings.Join(res.Changes, "\n      ")))
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
