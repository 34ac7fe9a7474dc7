package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"
)

const (
	serverName    = "rentdesk-reminders"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management. The stdio transport
// runs tool calls on a worker pool, so every handler holds mu while it uses
// the Manager.
type Server struct {
	mcpServer *server.MCPServer
	manager   *Manager
	mu        sync.Mutex
}

// NewServer creates a new Reminder MCP server backed by the given manager.
func NewServer(manager *Manager) *Server {
	s := &Server{
		manager: manager,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// create_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("create_reminder",
			mcp.WithDescription("Create a return, maintenance or payment reminder"),
			mcp.WithString("kind", mcp.Required(), mcp.Enum("return", "maintenance", "payment"),
				mcp.Description("Reminder kind")),
			mcp.WithNumber("subject_id", mcp.Required(), mcp.Description("Rental, vehicle or payment ID the reminder refers to")),
			mcp.WithString("due_date", mcp.Required(), mcp.Description("Due date in RFC3339 format (e.g. 2025-01-15T09:00:00Z)")),
			mcp.WithString("description", mcp.Description("Maintenance work to be done (maintenance only)")),
			mcp.WithNumber("amount", mcp.Description("Amount due (payment only)")),
		),
		s.handleCreateReminder,
	)

	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders, optionally filtered by urgency and kind"),
			mcp.WithString("filter", mcp.Enum("all", "pending", "active", "overdue", "due_soon"),
				mcp.Description("Filter (default: all)")),
			mcp.WithString("kind", mcp.Description("Only this kind: return, maintenance, payment")),
			mcp.WithNumber("window_hours", mcp.Description("Window for due_soon in hours (default: configured window)")),
		),
		s.handleListReminders,
	)

	// mark_reminder_sent
	s.mcpServer.AddTool(
		mcp.NewTool("mark_reminder_sent",
			mcp.WithDescription("Mark a pending reminder as sent to the customer"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleMarkSent,
	)

	// complete_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder as completed"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleCompleteReminder,
	)

	// reminder_summary
	s.mcpServer.AddTool(
		mcp.NewTool("reminder_summary",
			mcp.WithDescription("Count reminders by status, overdue and due soon"),
		),
		s.handleSummary,
	)
}

func (s *Server) handleCreateReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind, err := ParseKind(req.GetString("kind", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dueDateStr := req.GetString("due_date", "")
	if dueDateStr == "" {
		return mcp.NewToolResultError("due_date is required"), nil
	}
	dueAt, err := time.Parse(time.RFC3339, dueDateStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid due_date format: %v (use RFC3339, e.g. 2025-01-15T09:00:00Z)", err)), nil
	}

	subjectID, err := intArg(req, "subject_id", -1)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var created Reminder
	switch kind {
	case KindReturn:
		created, err = s.manager.CreateReturnReminder(subjectID, dueAt)
	case KindMaintenance:
		created, err = s.manager.CreateMaintenanceReminder(subjectID, dueAt, req.GetString("description", ""))
	case KindPayment:
		amount := decimal.NewFromFloat(req.GetFloat("amount", 0))
		created, err = s.manager.CreatePaymentReminder(subjectID, dueAt, amount)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create reminder: %v", err)), nil
	}

	return jsonResult(s.view(created))
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reminders []Reminder
	switch filter := req.GetString("filter", "all"); filter {
	case "", "all":
		reminders = s.manager.AllReminders()
	case "pending":
		reminders = s.manager.PendingReminders()
	case "active":
		reminders = Snapshot(s.manager.AllReminders()).Active()
	case "overdue":
		reminders = s.manager.OverdueReminders()
	case "due_soon":
		window := time.Duration(req.GetFloat("window_hours", 0) * float64(time.Hour))
		reminders = s.manager.RemindersDueSoon(window)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown filter: %s", filter)), nil
	}

	if k := req.GetString("kind", ""); k != "" {
		kind, err := ParseKind(k)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reminders = Snapshot(reminders).ByKind(kind)
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	views := make([]reminderView, 0, len(reminders))
	for _, r := range reminders {
		views = append(views, s.view(r))
	}
	return jsonResult(views)
}

func (s *Server) handleMarkSent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleTransition(req, s.manager.MarkReminderAsSent, "sent")
}

func (s *Server) handleCompleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleTransition(req, s.manager.MarkReminderAsCompleted, "completed")
}

func (s *Server) handleTransition(req mcp.CallToolRequest, apply func(int64) (Reminder, error), label string) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := intArg(req, "id", -1)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if id < 0 {
		return mcp.NewToolResultError("id is required and must be a positive number"), nil
	}

	if _, err := apply(id); err != nil {
		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) {
			return mcp.NewToolResultError(fmt.Sprintf("reminder %d is already %s", id, invalid.From)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d marked as %s.", id, label)), nil
}

func (s *Server) handleSummary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := s.manager.Summary()
	return jsonResult(map[string]int{
		"total":     sum.Total,
		"active":    sum.Active,
		"pending":   sum.Pending,
		"sent":      sum.Sent,
		"completed": sum.Completed,
		"overdue":   sum.Overdue,
		"due_soon":  sum.DueSoon,
	})
}

type reminderView struct {
	ID          int64     `json:"id"`
	Kind        Kind      `json:"kind"`
	Message     string    `json:"message"`
	DueAt       time.Time `json:"due_at"`
	SubjectID   int64     `json:"subject_id"`
	Priority    string    `json:"priority"`
	Status      Status    `json:"status"`
	Description string    `json:"description,omitempty"`
	Amount      string    `json:"amount,omitempty"`
	Overdue     bool      `json:"overdue"`
}

func (s *Server) view(r Reminder) reminderView {
	v := reminderView{
		ID:        r.ID,
		Kind:      r.Kind(),
		Message:   r.Message,
		DueAt:     r.DueAt,
		SubjectID: r.SubjectID,
		Priority:  r.Priority.String(),
		Status:    r.Status,
		Overdue:   r.Overdue(s.manager.Now()),
	}
	switch d := r.Details.(type) {
	case MaintenanceDetails:
		v.Description = d.Description
	case PaymentDetails:
		v.Amount = d.Amount.StringFixed(2)
	}
	return v
}

// intArg reads a whole-number argument. JSON numbers arrive as floats, so
// fractional values are rejected rather than truncated.
func intArg(req mcp.CallToolRequest, key string, def int64) (int64, error) {
	if _, ok := req.GetArguments()[key]; !ok {
		return def, nil
	}
	f := req.GetFloat(key, math.NaN())
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%s must be a whole number", key)
	}
	return int64(f), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}
