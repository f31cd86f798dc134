package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/records"
	"github.com/mark3labs/census/internal/render"
	"github.com/mark3labs/census/internal/validate"
	"github.com/mark3labs/census/internal/wizard"
)

// recordItem is the list_records entry shape.
type recordItem struct {
	ID          string        `json:"id"`
	Status      census.Status `json:"status"`
	CurrentStep census.Step   `json:"currentStep"`
	Progress    float64       `json:"progress"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func itemOf(rec census.Record) recordItem {
	return recordItem{
		ID:          rec.ID,
		Status:      rec.Status,
		CurrentStep: rec.CurrentStep,
		Progress:    census.Progress(rec),
		CreatedAt:   rec.CreatedAt,
	}
}

// stepView is the get_step result shape.
type stepView struct {
	RecordID    string          `json:"recordId"`
	Step        census.Step     `json:"step"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CurrentStep census.Step     `json:"currentStep"`
	State       string          `json:"state"`
	Payload     census.Payload  `json:"payload"`
	Errors      validate.Errors `json:"errors,omitempty"`
}

// submitView is the submit_step result shape.
type submitView struct {
	RecordID    string        `json:"recordId"`
	Step        census.Step   `json:"step"`
	CurrentStep census.Step   `json:"currentStep"`
	Status      census.Status `json:"status"`
	Completed   bool          `json:"completed"`
	Diff        string        `json:"diff,omitempty"`
}

// handleListRecords lists records, optionally filtered.
func (s *Server) handleListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	search, _ := args["search"].(string)
	statusArg, _ := args["status"].(string)

	status, err := records.ParseStatusFilter(statusArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	all, err := s.records.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load records: %v", err)), nil
	}

	filtered := records.Filter(all, search, status)
	items := make([]recordItem, 0, len(filtered))
	for i := len(filtered) - 1; i >= 0; i-- {
		items = append(items, itemOf(filtered[i]))
	}
	return jsonResult(items)
}

// handleCreateRecord creates a record and starts tracking it.
func (s *Server) handleCreateRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := s.records.Create(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create record: %v", err)), nil
	}
	if err := s.wizard.Track(ctx, rec); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(itemOf(rec))
}

// handleGetRecord renders a record summary.
func (s *Server) handleGetRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := recordIDArg(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}
	if err := s.track(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.wizard.Snapshot(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(render.Summary(snap.Record)), nil
}

// handleGetStep returns the local payload of one step.
func (s *Server) handleGetStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, step, errResult := s.stepTarget(ctx, request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}
	return s.stepResult(id, step)
}

// stepResult renders the local payload of step with its pending errors.
func (s *Server) stepResult(id string, step census.Step) (*mcp.CallToolResult, error) {
	snap, err := s.wizard.Snapshot(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := s.wizard.Payload(id, step)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info := step.Info()
	view := stepView{
		RecordID:    id,
		Step:        step,
		Title:       info.Title,
		Description: info.Description,
		CurrentStep: snap.Record.CurrentStep,
		State:       snap.State.String(),
		Payload:     payload,
	}
	if snap.ErrorStep == step {
		view.Errors = snap.Errors
	}
	return jsonResult(view)
}

// stepTarget reads record_id and step and makes sure the record is tracked.
func (s *Server) stepTarget(ctx context.Context, args map[string]any) (string, census.Step, *mcp.CallToolResult) {
	id, errResult := recordIDArg(args)
	if errResult != nil {
		return "", 0, errResult
	}
	step, err := stepArg(args)
	if err != nil {
		return "", 0, mcp.NewToolResultError(err.Error())
	}
	if err := s.track(ctx, id); err != nil {
		return "", 0, mcp.NewToolResultError(err.Error())
	}
	return id, step, nil
}

// handleUpdateFields merges top-level or dotted fields into a step.
func (s *Server) handleUpdateFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, step, errResult := s.stepTarget(ctx, args)
	if errResult != nil {
		return errResult, nil
	}
	fields, errResult := fieldsArg(args)
	if errResult != nil {
		return errResult, nil
	}
	if err := s.wizard.MergeFields(id, step, fields); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.stepResult(id, step)
}

// handleUpdateRow merges fields into one row of a step.
func (s *Server) handleUpdateRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, step, errResult := s.stepTarget(ctx, args)
	if errResult != nil {
		return errResult, nil
	}
	row, err := rowIDArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, errResult := fieldsArg(args)
	if errResult != nil {
		return errResult, nil
	}
	if err := s.wizard.MergeRow(id, step, row, fields); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.stepResult(id, step)
}

// handleAddRow appends a blank row to a list of a step.
func (s *Server) handleAddRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, step, errResult := s.stepTarget(ctx, args)
	if errResult != nil {
		return errResult, nil
	}
	list, ok := args["list"].(string)
	if !ok || list == "" {
		return mcp.NewToolResultError("error: missing 'list' parameter"), nil
	}
	if _, err := s.wizard.AddRow(id, step, list); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.stepResult(id, step)
}

// handleRemoveRow deletes one row of a step.
func (s *Server) handleRemoveRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, step, errResult := s.stepTarget(ctx, args)
	if errResult != nil {
		return errResult, nil
	}
	row, err := rowIDArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.wizard.RemoveRow(id, step, row); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.stepResult(id, step)
}

// handleSubmitStep replaces the local payload when one is given and
// submits the step.
func (s *Server) handleSubmitStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, errResult := recordIDArg(args)
	if errResult != nil {
		return errResult, nil
	}
	step, err := stepArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.track(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if raw, ok := args["payload"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("error: invalid payload: %v", err)), nil
		}
		p, err := census.DecodePayload(step, data, true)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("error: invalid payload: %v", err)), nil
		}
		if err := s.wizard.SetPayload(id, p); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	res, err := s.wizard.Submit(ctx, id, step)
	if err != nil {
		return mcp.NewToolResultError(submitMessage(err)), nil
	}
	s.records.Upsert(res.Record)

	return jsonResult(submitView{
		RecordID:    id,
		Step:        res.Step,
		CurrentStep: res.Record.CurrentStep,
		Status:      res.Record.Status,
		Completed:   res.Completed,
		Diff:        res.Diff,
	})
}

// track makes sure the wizard holds id, fetching it when needed.
func (s *Server) track(ctx context.Context, id string) error {
	if _, err := s.wizard.Snapshot(id); err == nil {
		return nil
	}
	rec, err := s.getter.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch record %s: %w", id, err)
	}
	s.records.Upsert(rec)
	return s.wizard.Track(ctx, rec)
}

// submitMessage turns a submission failure into guidance for the agent.
func submitMessage(err error) string {
	var verr *wizard.ValidationError
	var terr *wizard.TransportError
	switch {
	case errors.As(err, &verr):
		var sb strings.Builder
		fmt.Fprintf(&sb, "step %d (%s) has validation errors; fix them and submit again:\n", verr.Step, verr.Step.Title())
		for _, k := range verr.Errors.Keys() {
			fmt.Fprintf(&sb, "- %s: %s\n", k, verr.Errors[k])
		}
		return strings.TrimRight(sb.String(), "\n")
	case errors.As(err, &terr):
		return terr.Message()
	}
	return err.Error()
}

func recordIDArg(args map[string]any) (string, *mcp.CallToolResult) {
	if args == nil {
		return "", mcp.NewToolResultError("error: no arguments provided")
	}
	id, ok := args["record_id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", mcp.NewToolResultError("error: missing 'record_id' parameter")
	}
	return id, nil
}

// stepArg reads the step number. JSON numbers come as float64.
func stepArg(args map[string]any) (census.Step, error) {
	switch v := args["step"].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("error: 'step' must be a whole number")
		}
		return census.ParseStep(strconv.Itoa(int(v)))
	case string:
		return census.ParseStep(v)
	case nil:
		return 0, fmt.Errorf("error: missing 'step' parameter")
	}
	return 0, fmt.Errorf("error: 'step' is not a number")
}

// rowIDArg reads row_id as get_step reports it.
func rowIDArg(args map[string]any) (census.RowID, error) {
	v, ok := args["row_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("error: missing 'row_id' parameter")
	}
	if v != float64(int64(v)) || v == 0 {
		return 0, fmt.Errorf("error: 'row_id' must be a non-zero whole number")
	}
	return census.RowID(v), nil
}

func fieldsArg(args map[string]any) (map[string]any, *mcp.CallToolResult) {
	fields, ok := args["fields"].(map[string]any)
	if !ok || len(fields) == 0 {
		return nil, mcp.NewToolResultError("error: missing 'fields' parameter")
	}
	return fields, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("error: failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
