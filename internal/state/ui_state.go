package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/records"
)

const fileName = "ui-state.json"

// UIState holds dashboard preferences that carry across runs.
type UIState struct {
	Dashboard DashboardState `json:"dashboard"`
}

// DashboardState is the last filter and the groups the enumerator folded
// away.
type DashboardState struct {
	Status    records.StatusFilter `json:"status"`
	Search    string               `json:"search,omitempty"`
	Collapsed []string             `json:"collapsed,omitempty"`
	// LastRecord is selected again on the next start when it still exists.
	LastRecord string `json:"last_record,omitempty"`
}

// DefaultUIState shows every record with all groups expanded.
func DefaultUIState() *UIState {
	return &UIState{
		Dashboard: DashboardState{Status: records.StatusAll},
	}
}

// IsCollapsed reports whether a bucket is folded.
func (d DashboardState) IsCollapsed(bucket string) bool {
	for _, b := range d.Collapsed {
		if b == bucket {
			return true
		}
	}
	return false
}

// ToggleCollapsed folds or unfolds a bucket.
func (d *DashboardState) ToggleCollapsed(bucket string) {
	for i, b := range d.Collapsed {
		if b == bucket {
			d.Collapsed = append(d.Collapsed[:i:i], d.Collapsed[i+1:]...)
			return
		}
	}
	d.Collapsed = append(d.Collapsed, bucket)
}

// Load reads <dataDir>/ui-state.json. Missing or unreadable files yield
// the defaults.
func Load(dataDir string) *UIState {
	path := filepath.Join(dataDir, fileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultUIState()
	}
	if err != nil {
		logger.Warn("Failed to read UI state file: %v", err)
		return DefaultUIState()
	}

	state := DefaultUIState()
	if err := json.Unmarshal(data, state); err != nil {
		logger.Warn("Failed to parse UI state JSON: %v", err)
		return DefaultUIState()
	}
	status, err := records.ParseStatusFilter(string(state.Dashboard.Status))
	if err != nil {
		logger.Warn("Ignoring stored status filter: %v", err)
		status = records.StatusAll
	}
	state.Dashboard.Status = status
	return state
}

// Save writes <dataDir>/ui-state.json, creating the directory if needed.
func Save(dataDir string, state *UIState) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling UI state: %w", err)
	}

	path := filepath.Join(dataDir, fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing UI state file: %w", err)
	}

	logger.Debug("UI state saved to %s", path)
	return nil
}
