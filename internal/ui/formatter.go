package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/rentdesk/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	OverdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	DueSoonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222"))

	CompletedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)
)

var priorityStyles = map[reminder.Priority]lipgloss.Style{
	reminder.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	reminder.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("222")),
	reminder.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
}

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

// Colored reports whether output is styled.
func (f *Formatter) Colored() bool {
	return f.colored
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if !f.colored {
		return s
	}
	return style.Render(s)
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSystem(msg string) string {
	return f.render(SystemStyle, msg)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, msg)
}

// FormatReminder renders one reminder as a two-line entry: a header with id,
// priority, kind, due time and status, then the message.
func (f *Formatter) FormatReminder(r reminder.Reminder, now time.Time, window time.Duration) string {
	priority := fmt.Sprintf("[%s]", strings.ToUpper(r.Priority.String()))
	if style, ok := priorityStyles[r.Priority]; ok {
		priority = f.render(style, priority)
	}

	due := r.DueAt.Format("2006-01-02 15:04")
	switch {
	case r.Overdue(now):
		due = f.render(OverdueStyle, due+" (overdue by "+formatSpan(now.Sub(r.DueAt))+")")
	case r.DueSoon(now, window):
		due = f.render(DueSoonStyle, due+" (in "+formatSpan(r.DueAt.Sub(now))+")")
	}

	header := fmt.Sprintf("#%-4d %s %-11s due %s  %s", r.ID, priority, r.Kind(), due, r.Status)
	message := "      " + r.Message
	if r.Status == reminder.StatusCompleted {
		message = "      " + f.render(CompletedStyle, r.Message)
	}
	return header + "\n" + message
}

// FormatReminderList renders a titled list, most urgent first.
func (f *Formatter) FormatReminderList(title string, rs []reminder.Reminder, now time.Time, window time.Duration) string {
	header := f.render(HeaderStyle, fmt.Sprintf("%s (%d)", title, len(rs)))
	if len(rs) == 0 {
		return header + "\n" + f.render(DimStyle, "  none")
	}

	sorted := append([]reminder.Reminder(nil), rs...)
	reminder.SortByUrgency(sorted)

	lines := []string{header}
	for _, r := range sorted {
		lines = append(lines, f.FormatReminder(r, now, window))
	}
	return strings.Join(lines, "\n")
}

// FormatSummary renders the counters of a reminder set.
func (f *Formatter) FormatSummary(sum reminder.Summary) string {
	parts := []string{
		fmt.Sprintf("active: %d", sum.Active),
		fmt.Sprintf("pending: %d", sum.Pending),
		fmt.Sprintf("sent: %d", sum.Sent),
		fmt.Sprintf("completed: %d", sum.Completed),
	}
	line := strings.Join(parts, " | ")

	urgent := fmt.Sprintf("overdue: %d", sum.Overdue)
	if sum.Overdue > 0 {
		urgent = f.render(OverdueStyle, urgent)
	}
	soon := fmt.Sprintf("due soon: %d", sum.DueSoon)
	if sum.DueSoon > 0 {
		soon = f.render(DueSoonStyle, soon)
	}

	return line + "\n" + urgent + " | " + soon
}

func (f *Formatter) FormatWelcome(storePath string, sum reminder.Summary) string {
	lines := []string{
		"rentdesk • reminders",
		"Store: " + storePath,
		fmt.Sprintf("%d active, %d overdue, %d due soon", sum.Active, sum.Overdue, sum.DueSoon),
		"Type /help for commands",
	}

	if f.colored {
		lines[0] = HeaderStyle.Render(lines[0])
		lines[1] = DimStyle.Render(lines[1])
		lines[3] = DimStyle.Render(lines[3])
		return "\n" + BoxStyle.Render(strings.Join(lines, "\n")) + "\n"
	}

	return "\n" + strings.Join(lines, "\n") + "\n"
}

// formatSpan renders a duration as days/hours/minutes, e.g. "2d 3h" or "45m".
func formatSpan(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	d = d.Round(time.Minute)

	days := int(d / (24 * time.Hour))
	hours := int(d%(24*time.Hour)) / int(time.Hour)
	minutes := int(d%time.Hour) / int(time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
