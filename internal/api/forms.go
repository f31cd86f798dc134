package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mark3labs/census/internal/census"
)

// ValidationReport is the server-side validation result of a record.
type ValidationReport struct {
	Valid    bool                `json:"valid"`
	Errors   map[string][]string `json:"errors"`
	Warnings map[string][]string `json:"warnings,omitempty"`
}

// CreateRecord allocates a new record.
func (c *Client) CreateRecord(ctx context.Context) (census.Record, error) {
	var rec census.Record
	err := c.do(ctx, http.MethodPost, "forms", nil, &rec, true)
	return rec, err
}

// ListRecords returns the records of the authenticated agent.
func (c *Client) ListRecords(ctx context.Context) ([]census.Record, error) {
	var recs []census.Record
	err := c.get(ctx, "forms/agent", &recs)
	return recs, err
}

// GetRecord fetches one record by id.
func (c *Client) GetRecord(ctx context.Context, id string) (census.Record, error) {
	var rec census.Record
	err := c.get(ctx, formPath(id), &rec)
	return rec, err
}

// SubmitStep sends the payload of one step and returns the canonical
// record. Placeholder row ids are cleared before sending.
func (c *Client) SubmitStep(ctx context.Context, id string, step census.Step, payload census.Payload) (census.Record, error) {
	if !step.Valid() {
		return census.Record{}, fmt.Errorf("invalid step %d", step)
	}
	if payload == nil || payload.Step() != step {
		return census.Record{}, fmt.Errorf("payload %T does not belong to step %d", payload, step)
	}
	var rec census.Record
	err := c.do(ctx, http.MethodPost, formPath(id, fmt.Sprintf("step%d", step)), census.ForSubmission(payload), &rec, true)
	return rec, err
}

// CompleteRecord finalizes a record after its last step.
func (c *Client) CompleteRecord(ctx context.Context, id string) (census.Record, error) {
	var rec census.Record
	err := c.do(ctx, http.MethodPost, formPath(id, "complete"), nil, &rec, true)
	return rec, err
}

// ValidateRecord asks the service to validate a whole record.
func (c *Client) ValidateRecord(ctx context.Context, id string) (ValidationReport, error) {
	var report ValidationReport
	err := c.get(ctx, formPath(id, "validate"), &report)
	return report, err
}
