package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nsynca/nsynca/internal/models"
)

const (
	historyPrefix = "update_history_"
	historySuffix = ".json"

	// MonthLayout is the display and lookup format of a history month.
	MonthLayout = "2006-01"

	fileMonthLayout = "200601"
)

// HistoryStore persists runs as JSON arrays, one file per month of the run
// start: <dir>/update_history_YYYYMM.json.
type HistoryStore struct {
	dir string
	mu  sync.Mutex
}

// NewHistoryStore returns a store rooted at dir.
func NewHistoryStore(dir string) *HistoryStore {
	return &HistoryStore{dir: dir}
}

// Dir returns the directory the store writes to.
func (h *HistoryStore) Dir() string {
	return h.dir
}

// HistoryFile returns the file holding runs started in the month of t.
func (h *HistoryStore) HistoryFile(t time.Time) string {
	return filepath.Join(h.dir, historyPrefix+t.UTC().Format(fileMonthLayout)+historySuffix)
}

// SaveRun writes run to its month file, replacing an earlier entry with
// the same ID.
func (h *HistoryStore) SaveRun(run *models.Run) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := EnsureDir(h.dir); err != nil {
		return fmt.Errorf("failed to ensure logs dir: %w", err)
	}

	path := h.HistoryFile(run.StartedAt)
	runs, err := readRuns(path)
	if err != nil {
		return err
	}

	replaced := false
	for i := range runs {
		if runs[i].ID == run.ID {
			runs[i] = *run
			replaced = true
			break
		}
	}
	if !replaced {
		runs = append(runs, *run)
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run history: %w", err)
	}
	return writeFileAtomic(path, data, 0644)
}

// ListMonths returns the months that have history, newest first (YYYY-MM).
func (h *HistoryStore) ListMonths() ([]string, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var months []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if month, ok := HistoryMonth(e.Name()); ok {
			months = append(months, month)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months, nil
}

// HistoryMonth returns the month (YYYY-MM) of a history file name.
func HistoryMonth(name string) (string, bool) {
	name = filepath.Base(name)
	if !strings.HasPrefix(name, historyPrefix) || !strings.HasSuffix(name, historySuffix) {
		return "", false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, historyPrefix), historySuffix)
	t, err := time.Parse(fileMonthLayout, stamp)
	if err != nil {
		return "", false
	}
	return t.Format(MonthLayout), true
}

// LoadRuns returns the runs of month (YYYY-MM), newest first.
func (h *HistoryStore) LoadRuns(month string) ([]models.Run, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: want YYYY-MM", month)
	}

	h.mu.Lock()
	runs, err := readRuns(h.HistoryFile(t))
	h.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// LatestRun returns the most recent run, or nil when there is no history.
func (h *HistoryStore) LatestRun() (*models.Run, error) {
	months, err := h.ListMonths()
	if err != nil {
		return nil, err
	}
	for _, m := range months {
		runs, err := h.LoadRuns(m)
		if err != nil {
			return nil, err
		}
		if len(runs) > 0 {
			return &runs[0], nil
		}
	}
	return nil, nil
}

// FindRun looks a run up by ID or unique ID prefix across every month.
func (h *HistoryStore) FindRun(id string) (*models.Run, error) {
	months, err := h.ListMonths()
	if err != nil {
		return nil, err
	}
	var match *models.Run
	for _, m := range months {
		runs, err := h.LoadRuns(m)
		if err != nil {
			return nil, err
		}
		for i := range runs {
			if runs[i].ID == id {
				return &runs[i], nil
			}
			if strings.HasPrefix(runs[i].ID, id) {
				if match != nil {
					return nil, fmt.Errorf("run id %q is ambiguous", id)
				}
				match = &runs[i]
			}
		}
	}
	if match == nil {
		return nil, fmt.Errorf("run %q not found", id)
	}
	return match, nil
}

// RunFilter selects runs by type and status. Empty fields match everything.
type RunFilter struct {
	Type   string
	Status string
}

// FilterRuns returns the runs matching f, keeping their order. A type filter
// matches the run label or any updater the run included.
func FilterRuns(runs []models.Run, f RunFilter) []models.Run {
	var out []models.Run
	for _, r := range runs {
		if f.Status != "" && !strings.EqualFold(r.Status, f.Status) {
			continue
		}
		if f.Type != "" && !runHasType(r, f.Type) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func runHasType(r models.Run, typ string) bool {
	if strings.EqualFold(r.Type, typ) {
		return true
	}
	for _, u := range r.Updaters {
		if strings.EqualFold(string(u), typ) {
			return true
		}
	}
	return false
}

func readRuns(path string) ([]models.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var runs []models.Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to parse run history %s: %w", path, err)
	}
	return runs, nil
}
