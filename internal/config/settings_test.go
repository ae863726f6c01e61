package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nsynca/nsynca/internal/models"
)

func TestValidate(t *testing.T) {
	full := &Config{
		Settings:      models.NewSettings(),
		NotionToken:   "secret",
		DeploymentsDB: "d",
		TasksDB:       "t",
		ServicesDB:    "s",
	}

	tests := []struct {
		name        string
		cfg         Config
		sel         models.Selection
		wantMissing []string
	}{
		{name: "complete", cfg: *full, sel: models.AllSelection()},
		{
			name:        "no token",
			cfg:         Config{TasksDB: "t"},
			sel:         models.Selection{models.UpdaterTask},
			wantMissing: []string{EnvNotionAPIKey},
		},
		{
			name: "task only needs tasks db",
			cfg:  Config{NotionToken: "secret", TasksDB: "t"},
			sel:  models.Selection{models.UpdaterTask},
		},
		{
			name:        "charge needs services db",
			cfg:         Config{NotionToken: "secret"},
			sel:         models.Selection{models.UpdaterCharge},
			wantMissing: []string{EnvServicesDBID},
		},
		{
			name:        "all missing",
			cfg:         Config{},
			sel:         models.AllSelection(),
			wantMissing: []string{EnvNotionAPIKey, EnvDeploymentsDBID, EnvTasksDBID, EnvServicesDBID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.sel)
			if len(tt.wantMissing) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrMissing) {
				t.Fatalf("Validate() = %v, want ErrMissing", err)
			}
			for _, name := range tt.wantMissing {
				if !strings.Contains(err.Error(), name) {
					t.Errorf("error %q does not mention %s", err, name)
				}
			}
		})
	}
}

func TestResolvePrefersEnvironment(t *testing.T) {
	t.Setenv(EnvNotionAPIKey, " secret ")
	t.Setenv(EnvTasksDBID, "from-env")
	t.Setenv(EnvDeploymentsDBID, "")
	t.Setenv(EnvServicesDBID, "")

	s := models.NewSettings()
	s.Databases.Tasks = "from-settings"
	s.Databases.Deployments = "deploy-settings"

	cfg := Resolve(s)
	if cfg.NotionToken != "secret" {
		t.Errorf("NotionToken = %q, want trimmed secret", cfg.NotionToken)
	}
	if cfg.TasksDB != "from-env" {
		t.Errorf("TasksDB = %q, want from-env", cfg.TasksDB)
	}
	if cfg.DeploymentsDB != "deploy-settings" {
		t.Errorf("DeploymentsDB = %q, want deploy-settings", cfg.DeploymentsDB)
	}
}

func TestLoadSettingsFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	content := "notion:\n  requests_per_second: 1\nproperties:\n  tasks:\n    completed_status: Done\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile: %v", err)
	}
	if s.Notion.RequestsPerSecond != 1 {
		t.Errorf("RequestsPerSecond = %v, want 1", s.Notion.RequestsPerSecond)
	}
	if s.Notion.APIVersion != "2022-06-28" {
		t.Errorf("APIVersion = %q, want default", s.Notion.APIVersion)
	}
	if s.Properties.Tasks.CompletedStatus != "Done" {
		t.Errorf("CompletedStatus = %q, want Done", s.Properties.Tasks.CompletedStatus)
	}
	if s.Properties.Tasks.Status != "Status " {
		t.Errorf("Status property = %q, want default with trailing space", s.Properties.Tasks.Status)
	}
}

func TestSaveAndLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SettingsFileName)
	s := models.NewSettings()
	s.Logs.Dir = "/var/log/nsynca"
	if err := SaveYAML(path, s); err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}
	got, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile: %v", err)
	}
	if got.Logs.Dir != s.Logs.Dir {
		t.Errorf("Logs.Dir = %q, want %q", got.Logs.Dir, s.Logs.Dir)
	}
}
