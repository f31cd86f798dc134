package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/census/internal/api"
	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/censustest"
	"github.com/mark3labs/census/internal/records"
	"github.com/mark3labs/census/internal/store"
	"github.com/mark3labs/census/internal/validate"
	"github.com/mark3labs/census/internal/wizard"
)

// setupTestServer creates a server backed by an in-memory census service
func setupTestServer(t *testing.T) (*Server, *censustest.Server) {
	t.Helper()

	fake := censustest.New()
	ts := httptest.NewServer(fake.Handler())
	t.Cleanup(ts.Close)

	if _, err := fake.AddUser("agent", "secret1", "AGENT"); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	token, err := fake.Token("agent")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	client := api.New(ts.URL+"/api", api.WithTokenSource(api.StaticToken(token)), api.WithReadAttempts(1))
	v, err := validate.New()
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	srv := New(records.New(client), wizard.New(client, v), client)
	return srv, fake
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	return result
}

func createRecord(t *testing.T, srv *Server) string {
	t.Helper()
	result := call(t, srv.handleCreateRecord, "create_record", nil)
	if result.IsError {
		t.Fatalf("create_record failed: %s", extractText(result))
	}
	var item recordItem
	if err := json.Unmarshal([]byte(extractText(result)), &item); err != nil {
		t.Fatalf("failed to decode create_record result: %v", err)
	}
	if item.ID == "" || item.CurrentStep != census.StepLocation {
		t.Fatalf("unexpected new record: %+v", item)
	}
	return item.ID
}

func payloadArg(t *testing.T, step census.Step) map[string]any {
	t.Helper()
	data, err := json.Marshal(censustest.ValidPayload(step))
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestHandleListRecords(t *testing.T) {
	srv, _ := setupTestServer(t)
	first := createRecord(t, srv)
	second := createRecord(t, srv)

	result := call(t, srv.handleListRecords, "list_records", map[string]any{})
	if result.IsError {
		t.Fatalf("list_records failed: %s", extractText(result))
	}
	var items []recordItem
	if err := json.Unmarshal([]byte(extractText(result)), &items); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 records, got %d", len(items))
	}
	ids := map[string]bool{items[0].ID: true, items[1].ID: true}
	if !ids[first] || !ids[second] {
		t.Errorf("list is missing created records: %+v", items)
	}

	result = call(t, srv.handleListRecords, "list_records", map[string]any{"status": "complete"})
	if text := strings.TrimSpace(extractText(result)); text != "[]" {
		t.Errorf("expected no completed records, got %s", text)
	}

	result = call(t, srv.handleListRecords, "list_records", map[string]any{"search": first[:8]})
	if err := json.Unmarshal([]byte(extractText(result)), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != first {
		t.Errorf("search did not narrow to %s: %+v", first, items)
	}
}

func TestHandleListRecords_BadStatus(t *testing.T) {
	srv, _ := setupTestServer(t)
	result := call(t, srv.handleListRecords, "list_records", map[string]any{"status": "archived"})
	if !result.IsError {
		t.Fatal("expected an error for an unknown status filter")
	}
}

func TestHandleGetStep(t *testing.T) {
	srv, _ := setupTestServer(t)
	id := createRecord(t, srv)

	result := call(t, srv.handleGetStep, "get_step", map[string]any{"record_id": id, "step": float64(2)})
	if result.IsError {
		t.Fatalf("get_step failed: %s", extractText(result))
	}
	var view struct {
		Step    census.Step            `json:"step"`
		Title   string                 `json:"title"`
		State   string                 `json:"state"`
		Payload census.HouseholdRoster `json:"payload"`
	}
	if err := json.Unmarshal([]byte(extractText(result)), &view); err != nil {
		t.Fatalf("failed to decode get_step: %v", err)
	}
	if view.Step != census.StepRoster || view.Title != "Household Roster" || view.State != "idle" {
		t.Errorf("unexpected view: %+v", view)
	}
	if len(view.Payload.Members) != 1 || view.Payload.Members[0].RelationshipToHead != "HEAD" {
		t.Errorf("expected the seeded head row, got %+v", view.Payload.Members)
	}
}

func TestHandleGetStep_BadArguments(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "no arguments", args: nil},
		{name: "missing record", args: map[string]any{"step": float64(1)}},
		{name: "missing step", args: map[string]any{"record_id": "x"}},
		{name: "fractional step", args: map[string]any{"record_id": "x", "step": 1.5}},
		{name: "step out of range", args: map[string]any{"record_id": "x", "step": float64(9)}},
		{name: "unknown record", args: map[string]any{"record_id": "missing", "step": float64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, srv.handleGetStep, "get_step", tt.args)
			if !result.IsError {
				t.Errorf("expected an error result, got %s", extractText(result))
			}
		})
	}
}

func TestHandleSubmitStep_AllSteps(t *testing.T) {
	srv, fake := setupTestServer(t)
	id := createRecord(t, srv)

	var last submitView
	for _, step := range census.AllSteps() {
		result := call(t, srv.handleSubmitStep, "submit_step", map[string]any{
			"record_id": id,
			"step":      float64(step),
			"payload":   payloadArg(t, step),
		})
		if result.IsError {
			t.Fatalf("submit_step %d failed: %s", step, extractText(result))
		}
		if err := json.Unmarshal([]byte(extractText(result)), &last); err != nil {
			t.Fatal(err)
		}
	}

	if !last.Completed || last.Status != census.StatusCompleted {
		t.Errorf("expected a completed record, got %+v", last)
	}
	rec, ok := fake.Record(id)
	if !ok || !rec.Completed() {
		t.Errorf("service record not completed: %+v", rec)
	}

	result := call(t, srv.handleGetRecord, "get_record", map[string]any{"record_id": id})
	if !strings.Contains(extractText(result), "COMPLETED") {
		t.Errorf("summary missing status: %s", extractText(result))
	}
}

func TestHandleSubmitStep_ValidationError(t *testing.T) {
	srv, fake := setupTestServer(t)
	id := createRecord(t, srv)

	payload := payloadArg(t, census.StepLocation)
	payload["regionName"] = ""
	result := call(t, srv.handleSubmitStep, "submit_step", map[string]any{
		"record_id": id,
		"step":      float64(1),
		"payload":   payload,
	})
	if !result.IsError {
		t.Fatal("expected a validation error")
	}
	if text := extractText(result); !strings.Contains(text, "regionName") {
		t.Errorf("error should name the field: %s", text)
	}
	if n := fake.Calls(censustest.RouteSubmit); n != 0 {
		t.Errorf("invalid payload reached the service %d times", n)
	}

	// The error is visible on the step until it is fixed
	result = call(t, srv.handleGetStep, "get_step", map[string]any{"record_id": id, "step": float64(1)})
	if !strings.Contains(extractText(result), `"errors"`) {
		t.Errorf("get_step should carry the pending errors: %s", extractText(result))
	}
}

func TestHandleSubmitStep_UnknownField(t *testing.T) {
	srv, _ := setupTestServer(t)
	id := createRecord(t, srv)

	payload := payloadArg(t, census.StepLocation)
	payload["colour"] = "blue"
	result := call(t, srv.handleSubmitStep, "submit_step", map[string]any{
		"record_id": id,
		"step":      float64(1),
		"payload":   payload,
	})
	if !result.IsError {
		t.Fatal("expected unknown fields to be rejected")
	}
}

func TestHandleSubmitStep_TransportError(t *testing.T) {
	srv, fake := setupTestServer(t)
	id := createRecord(t, srv)
	fake.FailNext(censustest.RouteSubmit, 503)

	args := map[string]any{"record_id": id, "step": float64(1), "payload": payloadArg(t, census.StepLocation)}
	result := call(t, srv.handleSubmitStep, "submit_step", args)
	if !result.IsError || !strings.Contains(extractText(result), "try again") {
		t.Fatalf("expected a retryable transport error, got %s", extractText(result))
	}

	// Retry without a payload submits the payload already held locally
	delete(args, "payload")
	result = call(t, srv.handleSubmitStep, "submit_step", args)
	if result.IsError {
		t.Fatalf("retry failed: %s", extractText(result))
	}
}

// rosterView decodes a step 2 result.
func rosterView(t *testing.T, result *mcp.CallToolResult) []census.HouseholdMember {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool failed: %s", extractText(result))
	}
	var view struct {
		Payload census.HouseholdRoster `json:"payload"`
	}
	if err := json.Unmarshal([]byte(extractText(result)), &view); err != nil {
		t.Fatalf("failed to decode step: %v", err)
	}
	return view.Payload.Members
}

func TestHandleRowEditing(t *testing.T) {
	srv, _ := setupTestServer(t)
	id := createRecord(t, srv)
	roster := map[string]any{"record_id": id, "step": float64(2)}
	with := func(extra map[string]any) map[string]any {
		out := map[string]any{}
		for k, v := range roster {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	members := rosterView(t, call(t, srv.handleAddRow, "add_row", with(map[string]any{"list": "members"})))
	if len(members) != 2 {
		t.Fatalf("expected 2 members after add_row, got %d", len(members))
	}
	head, spouse := members[0].ID, members[1].ID
	if spouse == 0 || spouse == head {
		t.Fatalf("new row needs its own id, got %d (head %d)", spouse, head)
	}

	members = rosterView(t, call(t, srv.handleUpdateRow, "update_row", with(map[string]any{
		"row_id": float64(spouse),
		"fields": map[string]any{"fullName": "Efua Mensah", "relationshipToHead": "SPOUSE", "sex": "F"},
	})))
	if members[1].FullName != "Efua Mensah" {
		t.Errorf("update_row did not apply: %+v", members[1])
	}
	if want := census.RelationshipCode(census.RelationshipSpouse); members[1].RelationshipCode != want {
		t.Errorf("relationshipCode = %q, want %q", members[1].RelationshipCode, want)
	}

	result := call(t, srv.handleUpdateRow, "update_row", with(map[string]any{
		"row_id": float64(spouse),
		"fields": map[string]any{"id": float64(99)},
	}))
	if !result.IsError {
		t.Error("changing a row id should be rejected")
	}

	result = call(t, srv.handleRemoveRow, "remove_row", with(map[string]any{"row_id": float64(head)}))
	if !result.IsError || !strings.Contains(extractText(result), "head") {
		t.Errorf("expected the head to be protected, got %s", extractText(result))
	}

	members = rosterView(t, call(t, srv.handleRemoveRow, "remove_row", with(map[string]any{"row_id": float64(spouse)})))
	if len(members) != 1 || members[0].ID != head {
		t.Errorf("expected only the head to remain, got %+v", members)
	}
}

func TestHandleAddRow_RosterLimit(t *testing.T) {
	srv, _ := setupTestServer(t)
	id := createRecord(t, srv)
	args := map[string]any{"record_id": id, "step": float64(2), "list": "members"}

	for i := 1; i < store.DefaultMaxMembers; i++ {
		if result := call(t, srv.handleAddRow, "add_row", args); result.IsError {
			t.Fatalf("add_row %d failed: %s", i, extractText(result))
		}
	}
	result := call(t, srv.handleAddRow, "add_row", args)
	if !result.IsError || !strings.Contains(extractText(result), "row limit") {
		t.Errorf("expected the roster limit, got %s", extractText(result))
	}

	result = call(t, srv.handleAddRow, "add_row", map[string]any{"record_id": id, "step": float64(2), "list": "pets"})
	if !result.IsError {
		t.Error("unknown list should be rejected")
	}
}

func TestHandleUpdateFields(t *testing.T) {
	srv, _ := setupTestServer(t)
	id := createRecord(t, srv)

	payload := payloadArg(t, census.StepLocation)
	payload["regionName"] = ""
	payload["districtName"] = ""
	call(t, srv.handleSubmitStep, "submit_step", map[string]any{"record_id": id, "step": float64(1), "payload": payload})

	result := call(t, srv.handleUpdateFields, "update_fields", map[string]any{
		"record_id": id,
		"step":      float64(1),
		"fields":    map[string]any{"regionName": "Volta"},
	})
	if result.IsError {
		t.Fatalf("update_fields failed: %s", extractText(result))
	}
	var view struct {
		Payload census.LocationInfo `json:"payload"`
		Errors  map[string]string   `json:"errors"`
	}
	if err := json.Unmarshal([]byte(extractText(result)), &view); err != nil {
		t.Fatal(err)
	}
	if view.Payload.RegionName != "Volta" {
		t.Errorf("regionName = %q", view.Payload.RegionName)
	}
	if _, ok := view.Errors["regionName"]; ok {
		t.Error("the edited field should have its error cleared")
	}
	if _, ok := view.Errors["districtName"]; !ok {
		t.Errorf("untouched fields keep their errors: %v", view.Errors)
	}

	// A structural change anywhere clears every pending error
	call(t, srv.handleAddRow, "add_row", map[string]any{"record_id": id, "step": float64(2), "list": "members"})
	result = call(t, srv.handleGetStep, "get_step", map[string]any{"record_id": id, "step": float64(1)})
	if strings.Contains(extractText(result), `"errors"`) {
		t.Errorf("errors should be cleared after add_row: %s", extractText(result))
	}

	result = call(t, srv.handleUpdateFields, "update_fields", map[string]any{"record_id": id, "step": float64(1)})
	if !result.IsError {
		t.Error("missing fields should be rejected")
	}
}

func TestStepArg(t *testing.T) {
	tests := []struct {
		in   any
		want census.Step
		ok   bool
	}{
		{float64(3), census.StepHouseholdUnit, true},
		{"8", census.StepAgriculture, true},
		{float64(0), 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got, err := stepArg(map[string]any{"step": tt.in})
			if (err == nil) != tt.ok {
				t.Fatalf("stepArg(%v) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("stepArg(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestServerStartStop(t *testing.T) {
	srv, _ := setupTestServer(t)

	port, err := srv.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if port == 0 {
		t.Fatal("expected a port")
	}
	if !strings.Contains(srv.URL(), fmt.Sprintf(":%d/mcp", port)) {
		t.Errorf("URL() = %s", srv.URL())
	}
	if _, err := srv.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
