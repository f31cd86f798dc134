package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/render"
	"github.com/mark3labs/census/internal/wizard"
)

// EditorFunc builds the command that opens path in an editor.
type EditorFunc func(path string) (*exec.Cmd, error)

// defaultEditor opens $EDITOR (or the platform default).
func defaultEditor(path string) (*exec.Cmd, error) {
	return editor.Command("census", path)
}

// writeStepFile writes the step payload as YAML to a temp file and
// returns its path.
func writeStepFile(p census.Payload) (string, error) {
	doc, err := render.PayloadYAML(p)
	if err != nil {
		return "", err
	}

	tmpfile, err := os.CreateTemp("", fmt.Sprintf("census_step%d_*.yaml", p.Step()))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmpfile.WriteString(doc); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		_ = os.Remove(tmpfile.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return tmpfile.Name(), nil
}

// editStep opens the step payload in an editor. The returned command
// reports back with EditorFinishedMsg.
func editStep(wiz *wizard.Controller, id string, step census.Step, open EditorFunc) tea.Cmd {
	p, err := wiz.Payload(id, step)
	if err != nil {
		return func() tea.Msg { return EditorFinishedMsg{RecordID: id, Step: step, Err: err} }
	}
	path, err := writeStepFile(p)
	if err != nil {
		return func() tea.Msg { return EditorFinishedMsg{RecordID: id, Step: step, Err: err} }
	}

	cmd, err := open(path)
	if err != nil {
		_ = os.Remove(path)
		return func() tea.Msg {
			return EditorFinishedMsg{RecordID: id, Step: step, Err: fmt.Errorf("opening editor: %w", err)}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return EditorFinishedMsg{RecordID: id, Step: step, Path: path, Err: err}
	})
}

// applyEdit reads the edited file back into the record's local payload.
// The temp file is removed either way.
func applyEdit(wiz *wizard.Controller, msg EditorFinishedMsg) error {
	if msg.Path != "" {
		defer func() { _ = os.Remove(msg.Path) }()
	}
	if msg.Err != nil {
		return msg.Err
	}

	data, err := os.ReadFile(msg.Path)
	if err != nil {
		return fmt.Errorf("reading edited step: %w", err)
	}
	p, err := render.ParsePayloadYAML(msg.Step, data)
	if err != nil {
		return err
	}
	return wiz.SetPayload(msg.RecordID, p)
}

// submitStep submits a step in the background.
func submitStep(ctx context.Context, wiz *wizard.Controller, id string, step census.Step) tea.Cmd {
	return func() tea.Msg {
		res, err := wiz.Submit(ctx, id, step)
		return StepSubmittedMsg{RecordID: id, Step: step, Result: res, Err: err}
	}
}

// submitMessage is the toast text for a submission outcome.
func submitMessage(msg StepSubmittedMsg) string {
	if msg.Err == nil {
		if msg.Result.Completed {
			return "Record completed"
		}
		return fmt.Sprintf("Step %d saved", msg.Step)
	}

	var verr *wizard.ValidationError
	var terr *wizard.TransportError
	var cerr *wizard.ConsistencyError
	switch {
	case errors.As(msg.Err, &verr):
		return fmt.Sprintf("Step %d has %d field(s) to fix", msg.Step, len(verr.Errors))
	case errors.As(msg.Err, &terr):
		return terr.Message()
	case errors.As(msg.Err, &cerr):
		return "Record changed on the server. Reload with r."
	default:
		return msg.Err.Error()
	}
}
