package render

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/session"
)

// RecordsTable formats records for `census list`.
func RecordsTable(recs []census.Record) string {
	if len(recs) == 0 {
		return "No records found"
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Status", "Step", "Progress", "Created"})
	for _, r := range recs {
		t.AppendRow(table.Row{
			r.ID,
			r.Status,
			StepLabel(r),
			ProgressBar(census.Progress(r), 10),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft},
	})
	return t.Render()
}

// HistoryTable formats journal summaries for `census history`.
func HistoryTable(acts []*session.Activity) string {
	if len(acts) == 0 {
		return "No activity recorded"
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Record", "Steps", "Rejected", "Failed", "Completed", "Last activity"})
	for _, a := range acts {
		done := ""
		if a.Completed {
			done = "yes"
		}
		t.AppendRow(table.Row{
			a.RecordID,
			len(a.Submitted),
			a.Rejections,
			a.Failures,
			done,
			formatWhen(a.LastEvent),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignCenter},
	})
	return t.Render()
}

// EventsTable formats the journal of one record.
func EventsTable(events []session.Event) string {
	if len(events) == 0 {
		return "No activity recorded"
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"When", "Event", "Step", "Current", "Message"})
	for _, ev := range events {
		step := ""
		if ev.Step != 0 {
			step = fmt.Sprint(int(ev.Step))
		}
		t.AppendRow(table.Row{formatWhen(ev.Timestamp), ev.Kind, step, int(ev.CurrentStep), ev.Message})
	}
	return t.Render()
}

// ProgressBar draws a fixed-width bar for a fraction in [0,1].
func ProgressBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac*float64(width) + 0.5)
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return fmt.Sprintf("%s %3.0f%%", string(bar), frac*100)
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
