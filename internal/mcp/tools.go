package mcp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/anastasia/starset/internal/workout"
)

// --- Tool definitions ---

var toolGetTodayPlan = mcp.NewTool("get_today_plan",
	mcp.WithDescription("Get today's day type (A/B/C) and the ordered list of machines scheduled for it."),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get the current workout session (stars, points, quest status), creating one if none is open. A session idle for over three hours is closed and replaced automatically."),
)

var toolLogSet = mcp.NewTool("log_set",
	mcp.WithDescription("Log one completed set on a machine. Returns the recorded set with its star index and updates the machine's last-used weight."),
	mcp.WithString("machine_id", mcp.Required(), mcp.Description("Machine ID (from get_today_plan or list_machines)")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight used, non-negative integer")),
	mcp.WithNumber("reps", mcp.Description("Optional rep count")),
)

var toolUndoSet = mcp.NewTool("undo_set",
	mcp.WithDescription("Undo a logged set from the open session by log ID. Undoing a set that is not in the open session does nothing."),
	mcp.WithString("log_id", mcp.Required(), mcp.Description("Set log ID to remove")),
)

var toolFinishSession = mcp.NewTool("finish_session",
	mcp.WithDescription("Finish the open session. If its quest was cleared (10+ stars) the day rotation advances. Does nothing when no session is open."),
)

var toolGetStreaks = mcp.NewTool("get_streaks",
	mcp.WithDescription("Get the quest streak (consecutive quest-cleared sessions) and soft streak (consecutive workout days counting back from today)."),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("List past sessions, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 14; 0 returns all.")),
)

var toolListMachines = mcp.NewTool("list_machines",
	mcp.WithDescription("List the full machine roster with multipliers, last-used weights, and active flags."),
)

// --- Tool handlers ---

func (h *handlers) getTodayPlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, machines, err := h.ds.TodayPlan(ctx)
	if err != nil {
		h.log.Error("mcp get_today_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"dayType":  day,
		"machines": machines,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := h.ds.ActiveSession(ctx)
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(session)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("machine_id")
	if err != nil {
		return mcp.NewToolResultError("machine_id parameter is required"), nil
	}
	machineID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("machine_id is not a valid ID"), nil
	}

	weight, err := req.RequireInt("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	if weight < 0 {
		return mcp.NewToolResultError("weight must be non-negative"), nil
	}

	var reps *int
	if r := req.GetInt("reps", -1); r >= 0 {
		reps = &r
	}

	entry, err := h.ds.LogSet(ctx, machineID, weight, reps)
	if errors.Is(err, workout.ErrMachineNotFound) {
		return mcp.NewToolResultError("unknown machine: " + idStr), nil
	}
	if err != nil {
		h.log.Error("mcp log_set", "error", err)
		return mcp.NewToolResultError("logging failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entry)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) undoSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("log_id")
	if err != nil {
		return mcp.NewToolResultError("log_id parameter is required"), nil
	}
	logID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("log_id is not a valid ID"), nil
	}

	if err := h.ds.UndoLog(ctx, logID); err != nil {
		h.log.Error("mcp undo_set", "error", err)
		return mcp.NewToolResultError("undo failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (h *handlers) finishSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.ds.FinishSession(ctx); err != nil {
		h.log.Error("mcp finish_session", "error", err)
		return mcp.NewToolResultError("finish failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (h *handlers) getStreaks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	quest, soft, err := h.ds.Streaks(ctx)
	if err != nil {
		h.log.Error("mcp get_streaks", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]int{
		"questStreak":    quest,
		"softStreakDays": soft,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 14)
	if limit < 0 {
		return mcp.NewToolResultError("limit must be non-negative"), nil
	}

	sessions, err := h.ds.History(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listMachines(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	machines, err := h.ds.Machines(ctx)
	if err != nil {
		h.log.Error("mcp list_machines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(machines)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
