package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/notexe/rentdesk/internal/reminder"
	"github.com/notexe/rentdesk/internal/repl"
	"github.com/notexe/rentdesk/internal/scheduler"
	"github.com/notexe/rentdesk/internal/ui"
)

var (
	listFilter string
	listKind   string
	listWindow int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print reminders and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, repo, err := openManager()
		if err != nil {
			return err
		}
		defer repo.Close()

		window := time.Duration(listWindow) * time.Hour
		if window <= 0 {
			window = manager.DueSoonWindow()
		}

		var title string
		var reminders []reminder.Reminder
		switch listFilter {
		case "all":
			title, reminders = "All reminders", manager.AllReminders()
		case "active":
			title, reminders = "Active reminders", reminder.Snapshot(manager.AllReminders()).Active()
		case "pending":
			title, reminders = "Pending", manager.PendingReminders()
		case "overdue":
			title, reminders = "Overdue", manager.OverdueReminders()
		case "soon":
			title, reminders = "Due soon", manager.RemindersDueSoon(window)
		default:
			return fmt.Errorf("unknown filter: %s (all, active, pending, overdue, soon)", listFilter)
		}

		if listKind != "" {
			kind, err := reminder.ParseKind(listKind)
			if err != nil {
				return err
			}
			reminders = reminder.Snapshot(reminders).ByKind(kind)
		}

		formatter := ui.NewFormatter(cfg.UI.ColoredOutput)
		fmt.Println(formatter.FormatReminderList(title, reminders, manager.Now(), window))
		fmt.Println(formatter.FormatSummary(manager.Summary()))
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print a digest of overdue and due-soon reminders on an interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepository()
		if err != nil {
			return fmt.Errorf("failed to open reminder store: %w", err)
		}
		defer repo.Close()

		s := scheduler.New(repo, scheduler.Config{
			Interval: cfg.WatchInterval(),
			Window:   cfg.DueSoonWindow(),
		}, os.Stdout, ui.NewFormatter(cfg.UI.ColoredOutput), logger)

		return s.Run(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reminder tools over MCP (stdio)",
	Long: `Start an MCP server on stdin/stdout.

TOOLS:
    create_reminder     Create a return, maintenance or payment reminder
    list_reminders      List reminders (filter: all, pending, active, overdue, due_soon)
    mark_reminder_sent  Mark a pending reminder as sent
    complete_reminder   Mark a reminder as completed
    reminder_summary    Count reminders by status and urgency

CONFIGURATION:
    {
      "mcpServers": {
        "rentdesk": {
          "command": "/path/to/rentdesk",
          "args": ["serve"]
        }
      }
    }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, repo, err := openManager()
		if err != nil {
			return err
		}
		defer repo.Close()

		s := reminder.NewServer(manager)
		if err := server.ServeStdio(s.MCPServer()); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func runShell(ctx context.Context) error {
	manager, repo, err := openManager()
	if err != nil {
		return err
	}
	defer repo.Close()

	shell, err := repl.NewREPL(manager, cfg.Store.Path, ui.NewFormatter(cfg.UI.ColoredOutput))
	if err != nil {
		return err
	}
	return shell.Start(ctx)
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "active", "Filter: all, active, pending, overdue, soon")
	listCmd.Flags().StringVar(&listKind, "kind", "", "Only this kind: return, maintenance, payment")
	listCmd.Flags().IntVar(&listWindow, "window", 0, "Due-soon window in hours (default: configured window)")
}
