package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("StarSet", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("StarSet workout tracker. Read today's machine plan, log and undo sets, finish sessions, and review streaks and history. Ten stars clear a session's quest and advance the A/B/C day rotation."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetTodayPlan, Handler: h.getTodayPlan},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolLogSet, Handler: h.logSet},
		server.ServerTool{Tool: toolUndoSet, Handler: h.undoSet},
		server.ServerTool{Tool: toolFinishSession, Handler: h.finishSession},
		server.ServerTool{Tool: toolGetStreaks, Handler: h.getStreaks},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolListMachines, Handler: h.listMachines},
	)

	s.AddResources(
		server.ServerResource{Resource: resToday, Handler: h.today},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resToday = mcp.NewResource(
	"starset://today",
	"Today",
	mcp.WithResourceDescription("Today's day type and machine plan, plus the open session and its logs if one exists"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) today(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	day, machines, err := h.ds.TodayPlan(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := map[string]any{
		"dayType":  day,
		"machines": machines,
	}

	logs, err := h.ds.SessionLogs(ctx)
	if err != nil {
		h.log.Warn("today resource: session logs failed", "error", err)
	} else if logs != nil {
		snapshot["sessionLogs"] = logs
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
