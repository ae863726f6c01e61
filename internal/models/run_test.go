package models

import (
	"reflect"
	"testing"
	"time"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    Selection
		wantErr bool
	}{
		{name: "empty selects all", input: nil, want: AllSelection()},
		{name: "all keyword", input: []string{"all"}, want: AllSelection()},
		{name: "single task", input: []string{"task"}, want: Selection{UpdaterTask}},
		{name: "canonical order", input: []string{"charge", "deployment"}, want: Selection{UpdaterDeployment, UpdaterCharge}},
		{name: "comma separated", input: []string{"service,task"}, want: Selection{UpdaterTask, UpdaterService}},
		{name: "duplicates collapse", input: []string{"task", "TASK", "tasks"}, want: Selection{UpdaterTask}},
		{name: "blank entries ignored", input: []string{" ", ""}, want: AllSelection()},
		{name: "unknown", input: []string{"project"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSelection(%v) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSelection(%v) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelection(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSelectionLabel(t *testing.T) {
	if got := AllSelection().Label(); got != "all" {
		t.Errorf("AllSelection().Label() = %q, want all", got)
	}
	if got := (Selection{UpdaterTask, UpdaterCharge}).Label(); got != "task,charge" {
		t.Errorf("Label() = %q, want task,charge", got)
	}
}

func TestRunFinish(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(r *Run)
		want    string
		summary string
	}{
		{
			name:    "no records",
			mutate:  func(r *Run) {},
			want:    RunStatusSuccess,
			summary: "0 created, 0 updated, 0 unchanged, 0 failed",
		},
		{
			name: "mixed actions",
			mutate: func(r *Run) {
				r.Results = []RecordResult{
					{Status: ResultSuccess, Action: ActionCreated},
					{Status: ResultSuccess, Action: ActionUpdated},
					{Status: ResultSuccess, Action: ActionUnchanged},
				}
			},
			want:    RunStatusSuccess,
			summary: "1 created, 1 updated, 1 unchanged, 0 failed",
		},
		{
			name: "failed record",
			mutate: func(r *Run) {
				r.Results = []RecordResult{{Status: ResultFailed, Error: "boom"}}
			},
			want:    RunStatusFailed,
			summary: "0 created, 0 updated, 0 unchanged, 1 failed",
		},
		{
			name: "updater error",
			mutate: func(r *Run) {
				r.UpdaterErrors = []UpdaterError{{Updater: UpdaterTask, Error: "query failed"}}
			},
			want:    RunStatusFailed,
			summary: "0 created, 0 updated, 0 unchanged, 0 failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRun(AllSelection(), start)
			if r.Status != RunStatusRunning {
				t.Fatalf("new run status = %q, want running", r.Status)
			}
			if r.ID == "" {
				t.Fatal("new run has no ID")
			}
			tt.mutate(r)
			r.Finish(start.Add(2 * time.Second))
			if r.Status != tt.want {
				t.Errorf("status = %q, want %q", r.Status, tt.want)
			}
			if got := r.Summary(); got != tt.summary {
				t.Errorf("Summary() = %q, want %q", got, tt.summary)
			}
			if r.Duration() != 2*time.Second {
				t.Errorf("Duration() = %v, want 2s", r.Duration())
			}
		})
	}
}
