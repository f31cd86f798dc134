package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/mark3labs/census/internal/render"
	"github.com/mark3labs/census/internal/session"
	"github.com/mark3labs/census/internal/template"
)

var exportFlags struct {
	dir      string
	template string
	stdout   bool
}

var historyFlags struct {
	events bool
}

var exportCmd = &cobra.Command{
	Use:   "export <record-id>",
	Short: "Export a record and its activity as Markdown",
	Long: `Export a record and its journaled activity as Markdown.

The export is written to <dir>/<record-id>.md unless --stdout is set. Use
'census export --template' with a custom file to change the layout; the
placeholders {{record}}, {{status}}, {{step}}, {{progress}}, {{summary}},
{{history}}, {{exported}} and {{user}} are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var historyCmd = &cobra.Command{
	Use:   "history [record-id]",
	Short: "Show journaled activity",
	Long: `Show the activity journaled on this machine.

Without a record id, one line per record is printed. With --events every
journal entry is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.dir, "dir", "d", "exports", "Output directory")
	exportCmd.Flags().StringVarP(&exportFlags.template, "template", "t", "", "Custom template file")
	exportCmd.Flags().BoolVar(&exportFlags.stdout, "stdout", false, "Print the export instead of writing a file")

	historyCmd.Flags().BoolVarP(&historyFlags.events, "events", "e", false, "List every journal entry")
}

func runExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		claims, err := a.requireLogin()
		if err != nil {
			return err
		}
		rec, err := a.client.GetRecord(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load record %s: %w", args[0], err)
		}
		history, err := a.journal.History(cmd.Context(), rec.ID)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}

		out, err := template.Build(template.BuildConfig{
			Record:       rec,
			History:      history,
			TemplatePath: exportFlags.template,
			User:         claims.Username,
			Now:          time.Now(),
		})
		if err != nil {
			return err
		}

		if exportFlags.stdout {
			fmt.Println(out)
			return nil
		}

		if err := os.MkdirAll(exportFlags.dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", exportFlags.dir, err)
		}
		path := filepath.Join(exportFlags.dir, exportFileName(rec.ID))
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Exported record %s to %s\n", rec.ID, path)
		return nil
	})
}

// exportFileName derives a safe file name from a record id.
func exportFileName(id string) string {
	name := slug.Make(id)
	if name == "" {
		name = "record"
	}
	return name + ".md"
}

func runHistory(cmd *cobra.Command, args []string) error {
	var id string
	if len(args) == 1 {
		id = args[0]
	}
	return withApp(cmd.Context(), func(a *app) error {
		events, err := a.journal.History(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		if historyFlags.events || id != "" {
			fmt.Println(render.EventsTable(events))
			return nil
		}
		fmt.Println(render.HistoryTable(session.Summarize(events)))
		return nil
	})
}
