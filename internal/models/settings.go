package models

// NotionConfig holds settings for the Notion API gateway.
type NotionConfig struct {
	APIVersion        string  `yaml:"api_version"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// DatabasesConfig holds fallback database IDs. Environment variables win.
type DatabasesConfig struct {
	Deployments string `yaml:"deployments,omitempty"`
	Tasks       string `yaml:"tasks,omitempty"`
	Services    string `yaml:"services,omitempty"`
}

// DeploymentProperties maps deployment fields to Notion property names.
type DeploymentProperties struct {
	Project         string `yaml:"project"`
	Version         string `yaml:"version"`
	DevDate         string `yaml:"dev_date"`
	ProdDate        string `yaml:"prod_date"`
	LastDevDeploy   string `yaml:"last_dev_deploy"`
	LastDevVersion  string `yaml:"last_dev_version"`
	LastProdDeploy  string `yaml:"last_prod_deploy"`
	LastProdVersion string `yaml:"last_prod_version"`
	DevReleases     string `yaml:"dev_releases"`
	ProdReleases    string `yaml:"prod_releases"`
}

// TaskProperties maps task fields to Notion property names.
type TaskProperties struct {
	Project         string `yaml:"project"`
	Status          string `yaml:"status"` // the default carries a trailing space, as in the workspace
	CompletedStatus string `yaml:"completed_status"`
	TotalTasks      string `yaml:"total_tasks"`
	CompletedTasks  string `yaml:"completed_tasks"`
}

// ServiceProperties maps service and charge fields to Notion property names.
type ServiceProperties struct {
	Name          string `yaml:"name"`
	EntryType     string `yaml:"entry_type"`
	BillingCycle  string `yaml:"billing_cycle"`
	LastPayment   string `yaml:"last_payment"`
	EndDate       string `yaml:"end_date"`
	NextDueDate   string `yaml:"next_due_date"`
	Status        string `yaml:"status"`
	Date          string `yaml:"date"`
	Price         string `yaml:"price"`
	LinkedService string `yaml:"linked_service"`
	ProfileEntry  string `yaml:"profile_entry"`
	ChargeEntry   string `yaml:"charge_entry"`
	DueSoonDays   int    `yaml:"due_soon_days"`
}

// PropertyNames groups the property mapping of every updater.
type PropertyNames struct {
	Deployments DeploymentProperties `yaml:"deployments"`
	Tasks       TaskProperties       `yaml:"tasks"`
	Services    ServiceProperties    `yaml:"services"`
}

// LogsConfig holds run history settings.
type LogsConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// TelemetryConfig holds opt-in usage reporting settings.
type TelemetryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	InstallID string `yaml:"install_id,omitempty"`
}

// ReleaseConfig holds settings for the release check.
type ReleaseConfig struct {
	Repository string `yaml:"repository"` // owner/name on GitHub
}

// Settings represents global application settings.
// This corresponds to ~/.nsynca/settings.yaml.
type Settings struct {
	Version    int             `yaml:"version"`
	Notion     NotionConfig    `yaml:"notion"`
	Databases  DatabasesConfig `yaml:"databases"`
	Properties PropertyNames   `yaml:"properties"`
	Logs       LogsConfig      `yaml:"logs"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
	Release    ReleaseConfig   `yaml:"release"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Notion: NotionConfig{
			APIVersion:        "2022-06-28",
			RequestsPerSecond: 3,
			TimeoutSeconds:    30,
		},
		Properties: DefaultPropertyNames(),
		Release: ReleaseConfig{
			Repository: "nsynca/nsynca",
		},
	}
}

// DefaultPropertyNames returns the property names of the reference workspace.
func DefaultPropertyNames() PropertyNames {
	return PropertyNames{
		Deployments: DeploymentProperties{
			Project:         "Project",
			Version:         "Version",
			DevDate:         "Dev Deployed Date",
			ProdDate:        "Prod Deployed Date",
			LastDevDeploy:   "Last Dev Deploy",
			LastDevVersion:  "Last Dev Version",
			LastProdDeploy:  "Last Prod Deploy",
			LastProdVersion: "Last Prod Version",
			DevReleases:     "Nb Dev Releases",
			ProdReleases:    "Nb Prod Releases",
		},
		Tasks: TaskProperties{
			Project:         "Project",
			Status:          "Status ",
			CompletedStatus: "Prod Deployed",
			TotalTasks:      "Total Tasks",
			CompletedTasks:  "Completed Tasks",
		},
		Services: ServiceProperties{
			Name:          "Name",
			EntryType:     "Entry Type",
			BillingCycle:  "Billing Cycle",
			LastPayment:   "Last Payment Date",
			EndDate:       "End Date",
			NextDueDate:   "Next Due Date",
			Status:        "Status",
			Date:          "Date",
			Price:         "Price",
			LinkedService: "Linked Service",
			ProfileEntry:  "Service Profile",
			ChargeEntry:   "Charge",
			DueSoonDays:   5,
		},
	}
}

// FillDefaults sets zero-valued fields to their defaults. Settings files
// written by older versions may omit whole sections.
func (s *Settings) FillDefaults() {
	def := NewSettings()
	if s.Version == 0 {
		s.Version = def.Version
	}
	if s.Notion.APIVersion == "" {
		s.Notion.APIVersion = def.Notion.APIVersion
	}
	if s.Notion.RequestsPerSecond <= 0 {
		s.Notion.RequestsPerSecond = def.Notion.RequestsPerSecond
	}
	if s.Notion.TimeoutSeconds <= 0 {
		s.Notion.TimeoutSeconds = def.Notion.TimeoutSeconds
	}
	if s.Release.Repository == "" {
		s.Release.Repository = def.Release.Repository
	}
	fillString(&s.Properties.Deployments.Project, def.Properties.Deployments.Project)
	fillString(&s.Properties.Deployments.Version, def.Properties.Deployments.Version)
	fillString(&s.Properties.Deployments.DevDate, def.Properties.Deployments.DevDate)
	fillString(&s.Properties.Deployments.ProdDate, def.Properties.Deployments.ProdDate)
	fillString(&s.Properties.Deployments.LastDevDeploy, def.Properties.Deployments.LastDevDeploy)
	fillString(&s.Properties.Deployments.LastDevVersion, def.Properties.Deployments.LastDevVersion)
	fillString(&s.Properties.Deployments.LastProdDeploy, def.Properties.Deployments.LastProdDeploy)
	fillString(&s.Properties.Deployments.LastProdVersion, def.Properties.Deployments.LastProdVersion)
	fillString(&s.Properties.Deployments.DevReleases, def.Properties.Deployments.DevReleases)
	fillString(&s.Properties.Deployments.ProdReleases, def.Properties.Deployments.ProdReleases)
	fillString(&s.Properties.Tasks.Project, def.Properties.Tasks.Project)
	fillString(&s.Properties.Tasks.Status, def.Properties.Tasks.Status)
	fillString(&s.Properties.Tasks.CompletedStatus, def.Properties.Tasks.CompletedStatus)
	fillString(&s.Properties.Tasks.TotalTasks, def.Properties.Tasks.TotalTasks)
	fillString(&s.Properties.Tasks.CompletedTasks, def.Properties.Tasks.CompletedTasks)
	fillString(&s.Properties.Services.Name, def.Properties.Services.Name)
	fillString(&s.Properties.Services.EntryType, def.Properties.Services.EntryType)
	fillString(&s.Properties.Services.BillingCycle, def.Properties.Services.BillingCycle)
	fillString(&s.Properties.Services.LastPayment, def.Properties.Services.LastPayment)
	fillString(&s.Properties.Services.EndDate, def.Properties.Services.EndDate)
	fillString(&s.Properties.Services.NextDueDate, def.Properties.Services.NextDueDate)
	fillString(&s.Properties.Services.Status, def.Properties.Services.Status)
	fillString(&s.Properties.Services.Date, def.Properties.Services.Date)
	fillString(&s.Properties.Services.Price, def.Properties.Services.Price)
	fillString(&s.Properties.Services.LinkedService, def.Properties.Services.LinkedService)
	fillString(&s.Properties.Services.ProfileEntry, def.Properties.Services.ProfileEntry)
	fillString(&s.Properties.Services.ChargeEntry, def.Properties.Services.ChargeEntry)
	if s.Properties.Services.DueSoonDays <= 0 {
		s.Properties.Services.DueSoonDays = def.Properties.Services.DueSoonDays
	}
}

func fillString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
