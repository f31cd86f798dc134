package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers the record and step tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_records",
			mcp.WithDescription("List the enumerator's census records, newest first"),
			mcp.WithString("search",
				mcp.Description("Only records whose id contains this text"),
			),
			mcp.WithString("status",
				mcp.Description("Status filter"),
				mcp.Enum("all", "active", "complete"),
			),
		),
		s.handleListRecords,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("create_record",
			mcp.WithDescription("Create a new census record at step 1"),
		),
		s.handleCreateRecord,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_record",
			mcp.WithDescription("Summarize a census record as markdown"),
			mcp.WithString("record_id", mcp.Required(),
				mcp.Description("Record id"),
			),
		),
		s.handleGetRecord,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_step",
			mcp.WithDescription("Get the payload of one wizard step (1-8) with its pending validation errors"),
			mcp.WithString("record_id", mcp.Required(),
				mcp.Description("Record id"),
			),
			mcp.WithNumber("step", mcp.Required(),
				mcp.Description("Step number, 1 to 8"),
				mcp.Min(1),
				mcp.Max(8),
			),
		),
		s.handleGetStep,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("submit_step",
			mcp.WithDescription("Validate and submit one wizard step. Submitting step 8 completes the record"),
			mcp.WithString("record_id", mcp.Required(),
				mcp.Description("Record id"),
			),
			mcp.WithNumber("step", mcp.Required(),
				mcp.Description("Step number, 1 to 8"),
				mcp.Min(1),
				mcp.Max(8),
			),
			mcp.WithObject("payload",
				mcp.Description("Step payload in the shape get_step returns. Omit to submit the current local payload"),
			),
		),
		s.handleSubmitStep,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_fields",
			mcp.WithDescription("Set fields of a step payload locally. Dots address nested objects, e.g. interviewDates.dateStarted. Returns the updated step"),
			recordIDParam(),
			stepParam(),
			mcp.WithObject("fields", mcp.Required(),
				mcp.Description("Field names to new values"),
			),
		),
		s.handleUpdateFields,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_row",
			mcp.WithDescription("Set fields of one row (e.g. a household member) locally. Returns the updated step"),
			recordIDParam(),
			stepParam(),
			rowIDParam(),
			mcp.WithObject("fields", mcp.Required(),
				mcp.Description("Field names to new values; the row id cannot be changed"),
			),
		),
		s.handleUpdateRow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_row",
			mcp.WithDescription("Append a blank row to a list of a step. Clears pending validation errors. Returns the updated step"),
			recordIDParam(),
			stepParam(),
			mcp.WithString("list", mcp.Required(),
				mcp.Description("List name as it appears in the payload, e.g. members, people, activities, crops"),
			),
		),
		s.handleAddRow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("remove_row",
			mcp.WithDescription("Remove one row from a step. The household head and the last row of a required list cannot be removed. Returns the updated step"),
			recordIDParam(),
			stepParam(),
			rowIDParam(),
		),
		s.handleRemoveRow,
	)
}

func recordIDParam() mcp.ToolOption {
	return mcp.WithString("record_id", mcp.Required(), mcp.Description("Record id"))
}

func stepParam() mcp.ToolOption {
	return mcp.WithNumber("step", mcp.Required(),
		mcp.Description("Step number, 1 to 8"),
		mcp.Min(1),
		mcp.Max(8),
	)
}

func rowIDParam() mcp.ToolOption {
	return mcp.WithNumber("row_id", mcp.Required(),
		mcp.Description("Row id as returned by get_step"),
	)
}
