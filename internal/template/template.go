package template

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/render"
	"github.com/mark3labs/census/internal/session"
)

// Variables holds the data to be injected into template placeholders.
type Variables struct {
	Record   string // Record id
	Status   string // Record status
	Step     string // Step label, e.g. "3/8 Household Unit" or "complete"
	Progress string // Progress percentage
	Summary  string // Markdown summary of every filled step
	History  string // Formatted journal entries
	Exported string // Export timestamp
	User     string // Exporting enumerator
}

// Render replaces {{variable}} placeholders in template with actual values.
// Supports the following variables:
// - {{record}} - Record id
// - {{status}} - Record status
// - {{step}} - Step label
// - {{progress}} - Progress percentage
// - {{summary}} - Markdown summary of the record
// - {{history}} - Formatted activity (placeholder text if none)
// - {{exported}} - Export timestamp (RFC 3339)
// - {{user}} - Exporting enumerator
func Render(template string, vars Variables) string {
	return strings.NewReplacer(
		"{{record}}", vars.Record,
		"{{status}}", vars.Status,
		"{{step}}", vars.Step,
		"{{progress}}", vars.Progress,
		"{{summary}}", vars.Summary,
		"{{history}}", vars.History,
		"{{exported}}", vars.Exported,
		"{{user}}", vars.User,
	).Replace(template)
}

// LoadFromFile loads a template from a file.
// If the file doesn't exist or can't be read, returns an error.
func LoadFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return string(data), nil
}

// GetTemplate returns the template content.
// If customPath is non-empty, loads from that file.
// Otherwise returns the default embedded template.
func GetTemplate(customPath string) (string, error) {
	if customPath == "" {
		return DefaultTemplate, nil
	}
	return LoadFromFile(customPath)
}

// BuildConfig holds configuration for building an export.
type BuildConfig struct {
	Record       census.Record   // Record to export
	History      []session.Event // Journal entries for the record (optional)
	TemplatePath string          // Path to custom template (optional)
	User         string          // Exporting enumerator
	Now          time.Time       // Export time; zero means time.Now
}

// Build formats the record and its journal into the template.
func Build(cfg BuildConfig) (string, error) {
	logger.Debug("Building export for record %s with %d events", cfg.Record.ID, len(cfg.History))

	templateContent, err := GetTemplate(cfg.TemplatePath)
	if err != nil {
		logger.Error("Failed to get template: %v", err)
		return "", fmt.Errorf("failed to get template: %w", err)
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	progress := census.Progress(cfg.Record)
	if cfg.Record.Completed() {
		progress = 1
	}

	vars := Variables{
		Record:   cfg.Record.ID,
		Status:   string(cfg.Record.Status),
		Step:     render.StepLabel(cfg.Record),
		Progress: fmt.Sprintf("%.0f%%", progress*100),
		Summary:  strings.TrimRight(render.Summary(cfg.Record), "\n"),
		History:  formatHistory(cfg.History, now),
		Exported: now.UTC().Format(time.RFC3339),
		User:     cfg.User,
	}
	return Render(templateContent, vars), nil
}

// formatHistory lists journal entries oldest first.
func formatHistory(events []session.Event, now time.Time) string {
	if len(events) == 0 {
		return "No activity recorded."
	}

	sorted := append([]session.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var sb strings.Builder
	for _, ev := range sorted {
		fmt.Fprintf(&sb, "- %s (%s) %s", ev.Timestamp.UTC().Format("2006-01-02 15:04"), formatTimeAgo(now.Sub(ev.Timestamp)), ev.Kind)
		if ev.Step != 0 {
			fmt.Fprintf(&sb, " step %d", ev.Step)
		}
		if ev.Message != "" {
			fmt.Fprintf(&sb, ": %s", ev.Message)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatTimeAgo formats a duration as a human-readable "time ago" string.
func formatTimeAgo(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
