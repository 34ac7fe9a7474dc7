package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/notexe/rentdesk/internal/reminder"
	"github.com/notexe/rentdesk/internal/ui"
	"github.com/shopspring/decimal"
)

type REPL struct {
	manager   *reminder.Manager
	storePath string
	rl        *readline.Instance
	formatter *ui.Formatter
	out       io.Writer
}

func NewREPL(manager *reminder.Manager, storePath string, formatter *ui.Formatter) (*REPL, error) {
	rl, err := setupReadline()
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	return &REPL{
		manager:   manager,
		storePath: storePath,
		rl:        rl,
		formatter: formatter,
		out:       os.Stdout,
	}, nil
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if !isCommand {
			r.displayError(fmt.Errorf("commands start with / (type /help for available commands)"))
			continue
		}

		if err := r.handleCommand(command, args); err != nil {
			r.displayError(err)
		}

		if command == "/quit" || command == "/exit" || command == "/q" {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

func (r *REPL) handleCommand(command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return nil

	case "/return":
		return r.handleReturn(args)

	case "/maintenance", "/maint":
		return r.handleMaintenance(args)

	case "/payment", "/pay":
		return r.handlePayment(args)

	case "/list", "/ls":
		return r.handleList(args)

	case "/sent":
		return r.handleTransition(command, args, r.manager.MarkReminderAsSent, "sent")

	case "/done", "/complete":
		return r.handleTransition(command, args, r.manager.MarkReminderAsCompleted, "completed")

	case "/summary", "/s":
		r.displayInfo(r.formatter.FormatSummary(r.manager.Summary()))
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) handleReturn(args string) error {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return fmt.Errorf("usage: /return <rental-id> <due>")
	}

	subjectID, dueAt, err := r.parseSubjectAndDue(parts[0], parts[1])
	if err != nil {
		return err
	}

	created, err := r.manager.CreateReturnReminder(subjectID, dueAt)
	if err != nil {
		return err
	}
	r.displayCreated(created)
	return nil
}

func (r *REPL) handleMaintenance(args string) error {
	parts := strings.Fields(args)
	if len(parts) < 3 {
		return fmt.Errorf("usage: /maintenance <vehicle-id> <due> <description>")
	}

	subjectID, dueAt, err := r.parseSubjectAndDue(parts[0], parts[1])
	if err != nil {
		return err
	}

	created, err := r.manager.CreateMaintenanceReminder(subjectID, dueAt, strings.Join(parts[2:], " "))
	if err != nil {
		return err
	}
	r.displayCreated(created)
	return nil
}

func (r *REPL) handlePayment(args string) error {
	parts := strings.Fields(args)
	if len(parts) != 3 {
		return fmt.Errorf("usage: /payment <payment-id> <due> <amount>")
	}

	subjectID, dueAt, err := r.parseSubjectAndDue(parts[0], parts[1])
	if err != nil {
		return err
	}

	amount, err := decimal.NewFromString(strings.TrimPrefix(parts[2], "$"))
	if err != nil {
		return fmt.Errorf("invalid amount %q", parts[2])
	}

	created, err := r.manager.CreatePaymentReminder(subjectID, dueAt, amount)
	if err != nil {
		return err
	}
	r.displayCreated(created)
	return nil
}

func (r *REPL) handleList(args string) error {
	parts := strings.Fields(args)
	filter := "active"
	if len(parts) > 0 {
		filter = strings.ToLower(parts[0])
	}

	now := r.manager.Now()
	window := r.manager.DueSoonWindow()

	var title string
	var reminders []reminder.Reminder
	switch filter {
	case "all":
		title, reminders = "All reminders", r.manager.AllReminders()
	case "active":
		title, reminders = "Active reminders", reminder.Snapshot(r.manager.AllReminders()).Active()
	case "pending":
		title, reminders = "Pending", r.manager.PendingReminders()
	case "overdue":
		title, reminders = "Overdue", r.manager.OverdueReminders()
	case "soon":
		if len(parts) > 1 {
			hours, err := strconv.Atoi(parts[1])
			if err != nil || hours <= 0 {
				return fmt.Errorf("usage: /list soon [hours]")
			}
			window = time.Duration(hours) * time.Hour
		}
		title, reminders = "Due soon", r.manager.RemindersDueSoon(window)
	default:
		kind, err := reminder.ParseKind(filter)
		if err != nil {
			return fmt.Errorf("unknown filter: %s (all, active, pending, overdue, soon, return, maintenance, payment)", filter)
		}
		label := string(kind[:1]) + strings.ToLower(string(kind[1:]))
		title, reminders = label+" reminders", r.manager.RemindersByKind(kind)
	}

	fmt.Fprintln(r.out, r.formatter.FormatReminderList(title, reminders, now, window))
	return nil
}

func (r *REPL) handleTransition(command, args string, apply func(int64) (reminder.Reminder, error), label string) error {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(args), "#"), 10, 64)
	if err != nil {
		return fmt.Errorf("usage: %s <id>", command)
	}

	updated, err := apply(id)
	if err != nil {
		return err
	}

	r.displaySystem(fmt.Sprintf("Reminder %d marked as %s.", updated.ID, label))
	return nil
}

func (r *REPL) parseSubjectAndDue(subject, due string) (int64, time.Time, error) {
	subjectID, err := strconv.ParseInt(strings.TrimPrefix(subject, "#"), 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid id %q", subject)
	}

	dueAt, err := parseDue(due, r.manager.Now())
	if err != nil {
		return 0, time.Time{}, err
	}
	return subjectID, dueAt, nil
}

func (r *REPL) displayWelcome() {
	fmt.Fprintln(r.out, r.formatter.FormatWelcome(r.storePath, r.manager.Summary()))
}

func (r *REPL) displayCreated(created reminder.Reminder) {
	r.displaySystem(fmt.Sprintf("Created reminder %d.", created.ID))
	fmt.Fprintln(r.out, r.formatter.FormatReminder(created, r.manager.Now(), r.manager.DueSoonWindow()))
}

func (r *REPL) displayError(err error) {
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
}

func (r *REPL) displayInfo(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatInfo(msg))
}

func (r *REPL) displaySystem(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSystem(msg))
}
