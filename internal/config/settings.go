package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nsynca/nsynca/internal/models"
)

// ErrMissing is returned when required configuration is absent.
var ErrMissing = errors.New("missing configuration")

// LoadSettings loads the global settings from ~/.nsynca/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFile(path)
}

// LoadSettingsFile loads settings from path with defaults filled in.
func LoadSettingsFile(path string) (*models.Settings, error) {
	s, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	s.FillDefaults()
	return s, nil
}

// SaveSettings saves the global settings to ~/.nsynca/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// Config is the resolved runtime configuration: settings plus secrets and
// database IDs from the environment.
type Config struct {
	Settings      *models.Settings
	NotionToken   string
	GitHubToken   string
	DeploymentsDB string
	TasksDB       string
	ServicesDB    string
}

// Resolve builds a Config from settings and the process environment.
// Environment database IDs take precedence over the settings fallbacks.
func Resolve(settings *models.Settings) *Config {
	return &Config{
		Settings:      settings,
		NotionToken:   env(EnvNotionAPIKey),
		GitHubToken:   env(EnvGitHubToken),
		DeploymentsDB: firstNonEmpty(env(EnvDeploymentsDBID), settings.Databases.Deployments),
		TasksDB:       firstNonEmpty(env(EnvTasksDBID), settings.Databases.Tasks),
		ServicesDB:    firstNonEmpty(env(EnvServicesDBID), settings.Databases.Services),
	}
}

// Load reads the .env file at envFile, the global settings, and resolves them.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := LoadDotEnv(envFile); err != nil {
			return nil, err
		}
	}
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	return Resolve(settings), nil
}

// Validate checks that everything the selected updaters need is present.
// The returned error wraps ErrMissing and names every missing variable.
func (c *Config) Validate(sel models.Selection) error {
	var missing []string
	if c.NotionToken == "" {
		missing = append(missing, EnvNotionAPIKey)
	}
	if sel.Has(models.UpdaterDeployment) && c.DeploymentsDB == "" {
		missing = append(missing, EnvDeploymentsDBID)
	}
	if sel.Has(models.UpdaterTask) && c.TasksDB == "" {
		missing = append(missing, EnvTasksDBID)
	}
	if (sel.Has(models.UpdaterService) || sel.Has(models.UpdaterCharge)) && c.ServicesDB == "" {
		missing = append(missing, EnvServicesDBID)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// LogsDir returns the resolved run history directory.
func (c *Config) LogsDir() string {
	return LogsDir(c.Settings.Logs.Dir)
}

// RequestTimeout returns the per-request Notion timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Settings.Notion.TimeoutSeconds) * time.Second
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
