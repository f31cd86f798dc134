package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/records"
	"github.com/mark3labs/census/internal/render"
	"github.com/mark3labs/census/internal/wizard"
)

var listFlags struct {
	search string
	status string
}

var stepFlags struct {
	step string
	file string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your records",
	RunE:  runList,
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new record",
	RunE:  runNew,
}

var showCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show the summary of a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var stepCmd = &cobra.Command{
	Use:   "step <record-id>",
	Short: "Print a step payload as YAML",
	Long: `Print a step payload as YAML.

Defaults to the record's current step. The output can be edited and sent
back with 'census submit --file'.`,
	Args: cobra.ExactArgs(1),
	RunE: runStep,
}

var editCmd = &cobra.Command{
	Use:   "edit <record-id>",
	Short: "Edit a step in $EDITOR and submit it",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var submitCmd = &cobra.Command{
	Use:   "submit <record-id>",
	Short: "Submit a step payload from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmit,
}

var validateCmd = &cobra.Command{
	Use:   "validate <record-id>",
	Short: "Ask the service to validate a whole record",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	listCmd.Flags().StringVarP(&listFlags.search, "search", "s", "", "Only records whose id contains this text")
	listCmd.Flags().StringVar(&listFlags.status, "status", "all", "Status filter: all, active, complete")

	for _, cmd := range []*cobra.Command{stepCmd, editCmd, submitCmd} {
		cmd.Flags().StringVar(&stepFlags.step, "step", "", "Step number 1-8 (default: the record's current step)")
	}
	submitCmd.Flags().StringVarP(&stepFlags.file, "file", "f", "", "Payload file (required)")
	_ = submitCmd.MarkFlagRequired("file")
}

func runList(cmd *cobra.Command, args []string) error {
	status, err := records.ParseStatusFilter(listFlags.status)
	if err != nil {
		return err
	}
	return withApp(cmd.Context(), func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}
		all, err := a.records.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}
		fmt.Println(render.RecordsTable(records.Filter(all, listFlags.search, status)))
		return nil
	})
}

func runNew(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}
		rec, err := a.records.Create(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}
		if err := a.wizard.Track(cmd.Context(), rec); err != nil {
			return err
		}
		fmt.Printf("Created record %s\n", rec.ID)
		fmt.Printf("Next: census edit %s\n", rec.ID)
		return nil
	})
}

func runShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}
		rec, err := a.client.GetRecord(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load record %s: %w", args[0], err)
		}
		fmt.Println(render.Markdown(render.Summary(rec), 100))
		return nil
	})
}

// resolveStep reads --step, defaulting to the record's current step.
func resolveStep(a *app, id string) (census.Step, error) {
	snap, err := a.wizard.Snapshot(id)
	if err != nil {
		return 0, err
	}
	if stepFlags.step == "" {
		return snap.Record.CurrentStep, nil
	}
	return census.ParseStep(stepFlags.step)
}

func runStep(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}
		id := args[0]
		if err := a.track(cmd.Context(), id); err != nil {
			return err
		}
		step, err := resolveStep(a, id)
		if err != nil {
			return err
		}
		p, err := a.wizard.Payload(id, step)
		if err != nil {
			return err
		}
		doc, err := render.PayloadYAML(p)
		if err != nil {
			return err
		}
		fmt.Println(render.Highlight(doc, "payload.yaml"))
		return nil
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}
		id := args[0]
		if err := a.track(cmd.Context(), id); err != nil {
			return err
		}
		step, err := resolveStep(a, id)
		if err != nil {
			return err
		}
		p, err := a.wizard.Payload(id, step)
		if err != nil {
			return err
		}

		path, err := writeStepFile(p)
		if err != nil {
			return err
		}
		defer func() { _ = os.Remove(path) }()

		editorCmd, err := editor.Command("census", path)
		if err != nil {
			return fmt.Errorf("opening editor: %w", err)
		}
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			return fmt.Errorf("editor exited: %w", err)
		}

		return applyAndSubmit(cmd.Context(), a, id, step, path)
	})
}

func runSubmit(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}
		id := args[0]
		if err := a.track(cmd.Context(), id); err != nil {
			return err
		}
		step, err := resolveStep(a, id)
		if err != nil {
			return err
		}
		return applyAndSubmit(cmd.Context(), a, id, step, stepFlags.file)
	})
}

// applyAndSubmit loads the payload file into the wizard and submits it.
func applyAndSubmit(ctx context.Context, a *app, id string, step census.Step, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}
	p, err := render.ParsePayloadYAML(step, data)
	if err != nil {
		return err
	}
	if err := a.wizard.SetPayload(id, p); err != nil {
		return err
	}

	res, err := a.wizard.Submit(ctx, id, step)
	if err != nil {
		return explainSubmit(step, err)
	}
	if res.Diff != "" {
		fmt.Println("The service normalized the step:")
		fmt.Println(render.Highlight(res.Diff, "changes.diff"))
	}
	if res.Completed {
		fmt.Printf("Record %s completed\n", res.Record.ID)
		return nil
	}
	fmt.Printf("Step %d saved. Record %s is now at %s\n", step, res.Record.ID, render.StepLabel(res.Record))
	return nil
}

// explainSubmit turns a wizard failure into the message the enumerator
// acts on.
func explainSubmit(step census.Step, err error) error {
	var verr *wizard.ValidationError
	var terr *wizard.TransportError
	var cerr *wizard.ConsistencyError
	switch {
	case errors.As(err, &verr):
		keys := verr.Errors.Keys()
		msg := fmt.Sprintf("step %d has %d field(s) to fix:", step, len(keys))
		for _, k := range keys {
			msg += fmt.Sprintf("\n  %s: %s", k, verr.Errors[k])
		}
		return errors.New(msg)
	case errors.As(err, &terr):
		return errors.New(terr.Message())
	case errors.As(err, &cerr):
		return fmt.Errorf("record changed on the server: %s", cerr.Reason)
	}
	return err
}

// writeStepFile writes the payload as YAML to a temp file.
func writeStepFile(p census.Payload) (string, error) {
	doc, err := render.PayloadYAML(p)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp("", fmt.Sprintf("census_step%d_*.yaml", p.Step()))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.WriteString(doc); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return f.Name(), nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if _, err := a.requireLogin(); err != nil {
			return err
		}
		report, err := a.client.ValidateRecord(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to validate record %s: %w", args[0], err)
		}
		if report.Valid {
			fmt.Printf("Record %s is valid\n", args[0])
		} else {
			fmt.Printf("Record %s has problems:\n", args[0])
		}
		printFieldMessages("error", report.Errors)
		printFieldMessages("warning", report.Warnings)
		if !report.Valid {
			return errors.New("record is not valid")
		}
		return nil
	})
}

func printFieldMessages(kind string, fields map[string][]string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, msg := range fields[k] {
			fmt.Printf("  %s %s: %s\n", kind, k, msg)
		}
	}
}
