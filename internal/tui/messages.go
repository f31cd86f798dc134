package tui

import (
	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/wizard"
)

// RecordsLoadedMsg carries the result of listing records.
type RecordsLoadedMsg struct {
	Records []census.Record
	Err     error
}

// RecordCreatedMsg carries a newly created record.
type RecordCreatedMsg struct {
	Record census.Record
	Err    error
}

// RecordSelectedMsg is sent when the list cursor lands on a record.
type RecordSelectedMsg struct {
	ID string
}

// OpenRecordMsg asks to move focus to a record's detail.
type OpenRecordMsg struct {
	ID string
}

// StepSubmittedMsg carries the outcome of a submission.
type StepSubmittedMsg struct {
	RecordID string
	Step     census.Step
	Result   wizard.Result
	Err      error
}

// EditorFinishedMsg is sent when the external editor exits.
type EditorFinishedMsg struct {
	RecordID string
	Step     census.Step
	Path     string
	Err      error
}
