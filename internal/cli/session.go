package cli

import (
	"log/slog"

	"github.com/nsynca/nsynca/internal/config"
	"github.com/nsynca/nsynca/internal/orchestrator"
	"github.com/nsynca/nsynca/internal/telemetry"
)

// session holds everything a command needs to run updaters.
type session struct {
	cfg       *config.Config
	store     *config.HistoryStore
	telemetry telemetry.Client
	orch      *orchestrator.Orchestrator
}

// loadConfig reads the .env file and settings.
func loadConfig() (*config.Config, error) {
	return config.Load(flagEnvFile)
}

// openSession loads configuration and wires the orchestrator. Missing
// secrets are not an error here; the orchestrator validates per selection.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	tel, changed := telemetry.New(&cfg.Settings.Telemetry)
	if changed {
		if err := config.SaveSettings(cfg.Settings); err != nil {
			slog.Warn("Failed to save telemetry install id", "err", err)
		}
	}

	store := config.NewHistoryStore(cfg.LogsDir())
	slog.Debug("Run history", "dir", store.Dir())
	return &session{
		cfg:       cfg,
		store:     store,
		telemetry: tel,
		orch:      orchestrator.NewFromConfig(cfg, store, tel),
	}, nil
}

// Close flushes telemetry.
func (s *session) Close() {
	if err := s.telemetry.Close(); err != nil {
		slog.Debug("Telemetry close failed", "err", err)
	}
}
