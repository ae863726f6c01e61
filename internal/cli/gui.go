package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/logging"
	"github.com/nsynca/nsynca/internal/tui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Launch the terminal GUI",
	Long: `Launch the interactive terminal GUI.

The Update tab runs updaters and shows their progress. The Logs tab
browses past runs. Log output goes to nsynca.log in the log directory
while the GUI is open.`,
	Args: cobra.NoArgs,
	RunE: runGUI,
}

func runGUI(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	logDir := s.store.Dir()
	if err := config.EnsureDir(logDir); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	closer, err := logging.SetupFile(filepath.Join(logDir, config.AppLogFileName), logging.Level.Level())
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	return tui.Run(ctx, tui.Options{
		Runner:     s.orch,
		History:    s.store,
		HistoryDir: logDir,
	})
}
