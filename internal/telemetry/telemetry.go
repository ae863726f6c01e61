// Package telemetry sends opt-in, anonymous run statistics to PostHog.
package telemetry

import (
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"

	"github.com/nsynca/nsynca/internal/buildinfo"
	"github.com/nsynca/nsynca/internal/models"
)

// EventRunCompleted is sent once per finished run.
const EventRunCompleted = "run_completed"

// DefaultEndpoint is the PostHog ingestion host.
const DefaultEndpoint = "https://us.i.posthog.com"

// Client records run events.
type Client interface {
	TrackRun(run *models.Run)
	Close() error
}

// New returns a PostHog client when telemetry is enabled and configured,
// and a no-op client otherwise. The second result reports whether settings
// changed (a new install ID was assigned) and should be saved.
func New(cfg *models.TelemetryConfig) (Client, bool) {
	if cfg == nil || !cfg.Enabled || cfg.APIKey == "" {
		return Nop{}, false
	}

	changed := false
	if cfg.InstallID == "" {
		cfg.InstallID = uuid.NewString()
		changed = true
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	ph, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		slog.Warn("Telemetry disabled", "err", err)
		return Nop{}, changed
	}
	return &posthogClient{client: ph, distinctID: cfg.InstallID}, changed
}

type posthogClient struct {
	client     posthog.Client
	distinctID string
}

// TrackRun enqueues a run_completed event. Failures are logged and dropped.
func (c *posthogClient) TrackRun(run *models.Run) {
	err := c.client.Enqueue(posthog.Capture{
		DistinctId: c.distinctID,
		Event:      EventRunCompleted,
		Properties: RunProperties(run),
	})
	if err != nil {
		slog.Debug("Failed to enqueue telemetry", "err", err)
	}
}

func (c *posthogClient) Close() error {
	return c.client.Close()
}

// RunProperties returns the event properties of a run. Names and IDs of
// Notion records are never included.
func RunProperties(run *models.Run) posthog.Properties {
	return posthog.NewProperties().
		Set("type", run.Type).
		Set("status", run.Status).
		Set("records", len(run.Results)).
		Set("created", run.ActionCount(models.ActionCreated)).
		Set("updated", run.ActionCount(models.ActionUpdated)).
		Set("unchanged", run.ActionCount(models.ActionUnchanged)).
		Set("failed", run.FailedCount()).
		Set("updater_errors", len(run.UpdaterErrors)).
		Set("duration_ms", run.Duration().Milliseconds()).
		Set("version", buildinfo.Version).
		Set("os", runtime.GOOS)
}

// Nop discards events.
type Nop struct{}

// TrackRun implements Client.
func (Nop) TrackRun(*models.Run) {}

// Close implements Client.
func (Nop) Close() error { return nil }
