package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UpdaterType identifies one updater variant.
type UpdaterType string

// Updater variants, in the order they run.
const (
	UpdaterDeployment UpdaterType = "deployment"
	UpdaterTask       UpdaterType = "task"
	UpdaterService    UpdaterType = "service"
	UpdaterCharge     UpdaterType = "charge"
)

// SelectionAll is the pseudo updater name that selects every variant.
const SelectionAll = "all"

// AllUpdaterTypes returns every updater variant in canonical order.
func AllUpdaterTypes() []UpdaterType {
	return []UpdaterType{UpdaterDeployment, UpdaterTask, UpdaterService, UpdaterCharge}
}

// Label returns the human readable name of the updater.
func (t UpdaterType) Label() string {
	switch t {
	case UpdaterDeployment:
		return "Deployments"
	case UpdaterTask:
		return "Tasks"
	case UpdaterService:
		return "Services"
	case UpdaterCharge:
		return "Charges"
	}
	return string(t)
}

// Selection is an ordered, duplicate-free set of updater variants.
type Selection []UpdaterType

// ParseSelection parses updater names. Names may be comma separated and are
// case-insensitive. An empty list, or any "all", selects every variant.
func ParseSelection(names []string) (Selection, error) {
	want := make(map[UpdaterType]bool)
	all := true
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			all = false
			if name == SelectionAll {
				return AllSelection(), nil
			}
			t, ok := parseUpdaterType(name)
			if !ok {
				return nil, fmt.Errorf("unknown updater %q (valid: deployment, task, service, charge, all)", name)
			}
			want[t] = true
		}
	}
	if all {
		return AllSelection(), nil
	}
	var sel Selection
	for _, t := range AllUpdaterTypes() {
		if want[t] {
			sel = append(sel, t)
		}
	}
	return sel, nil
}

func parseUpdaterType(name string) (UpdaterType, bool) {
	switch strings.TrimSuffix(name, "s") {
	case "deployment":
		return UpdaterDeployment, true
	case "task":
		return UpdaterTask, true
	case "service":
		return UpdaterService, true
	case "charge":
		return UpdaterCharge, true
	}
	return "", false
}

// AllSelection selects every updater variant.
func AllSelection() Selection {
	return Selection(AllUpdaterTypes())
}

// Has reports whether t is selected.
func (s Selection) Has(t UpdaterType) bool {
	for _, v := range s {
		if v == t {
			return true
		}
	}
	return false
}

// IsAll reports whether every variant is selected.
func (s Selection) IsAll() bool {
	for _, t := range AllUpdaterTypes() {
		if !s.Has(t) {
			return false
		}
	}
	return true
}

// Label returns "all" for the full selection and the comma-joined names otherwise.
func (s Selection) Label() string {
	if s.IsAll() {
		return SelectionAll
	}
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = string(t)
	}
	return strings.Join(names, ",")
}

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// Record statuses.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Record actions.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionUnchanged = "unchanged"
	ActionSkipped   = "skipped"
)

// RecordResult is the outcome of applying one record.
type RecordResult struct {
	Updater   UpdaterType `json:"updater"`
	RecordID  string      `json:"record_id,omitempty"`
	Name      string      `json:"name"`
	Status    string      `json:"status"`
	Action    string      `json:"action,omitempty"`
	Changes   []string    `json:"changes,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Failed reports whether the record failed.
func (r RecordResult) Failed() bool {
	return r.Status == ResultFailed
}

// UpdaterError records an updater that could not produce its records.
type UpdaterError struct {
	Updater UpdaterType `json:"updater"`
	Error   string      `json:"error"`
}

// Run represents one orchestrator run, persisted in the run history.
type Run struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Updaters      []UpdaterType  `json:"updaters"`
	StartedAt     time.Time      `json:"timestamp"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	Status        string         `json:"status"`
	Results       []RecordResult `json:"results,omitempty"`
	UpdaterErrors []UpdaterError `json:"updater_errors,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// NewRun creates a running Run for the given selection.
func NewRun(sel Selection, now time.Time) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Type:      sel.Label(),
		Updaters:  append([]UpdaterType(nil), sel...),
		StartedAt: now.UTC(),
		Status:    RunStatusRunning,
	}
}

// Finish marks the run complete. The run fails when it carries a fatal error,
// an updater error, or any failed record.
func (r *Run) Finish(now time.Time) {
	t := now.UTC()
	r.CompletedAt = &t
	r.Status = RunStatusSuccess
	if r.Error != "" || len(r.UpdaterErrors) > 0 || r.FailedCount() > 0 {
		r.Status = RunStatusFailed
	}
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// FailedCount returns the number of failed records.
func (r *Run) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// ActionCount returns the number of successful records with the given action.
func (r *Run) ActionCount(action string) int {
	n := 0
	for _, res := range r.Results {
		if !res.Failed() && res.Action == action {
			n++
		}
	}
	return n
}

// PagesUpdated returns the number of pages created or updated.
func (r *Run) PagesUpdated() int {
	return r.ActionCount(ActionCreated) + r.ActionCount(ActionUpdated)
}

// Summary returns a one-line description of the run counts.
func (r *Run) Summary() string {
	return fmt.Sprintf("%d created, %d updated, %d unchanged, %d failed",
		r.ActionCount(ActionCreated), r.ActionCount(ActionUpdated),
		r.ActionCount(ActionUnchanged), r.FailedCount())
}
