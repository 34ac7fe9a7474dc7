package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (r *REPL) parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

// dueLayouts are the absolute formats accepted for a due date. Layouts
// without a zone are read as UTC.
var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDue reads an absolute date or an offset from now such as "+5d",
// "+36h" or "+90m".
func parseDue(s string, now time.Time) (time.Time, error) {
	if strings.HasPrefix(s, "+") {
		offset := s[1:]
		if strings.HasSuffix(offset, "d") {
			days, err := strconv.Atoi(strings.TrimSuffix(offset, "d"))
			if err != nil || days < 0 {
				return time.Time{}, fmt.Errorf("invalid due offset %q", s)
			}
			return now.AddDate(0, 0, days), nil
		}
		d, err := time.ParseDuration(offset)
		if err != nil || d < 0 {
			return time.Time{}, fmt.Errorf("invalid due offset %q", s)
		}
		return now.Add(d), nil
	}

	for _, layout := range dueLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q (use 2006-01-02, 2006-01-02T15:04, RFC3339 or +5d/+36h)", s)
}

func setupReadline() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "rentdesk> ",
		HistoryFile:         "",
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		AutoComplete:        completer,
	})

	return rl, err
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("/help"),
	readline.PcItem("/return"),
	readline.PcItem("/maintenance"),
	readline.PcItem("/payment"),
	readline.PcItem("/list",
		readline.PcItem("all"),
		readline.PcItem("active"),
		readline.PcItem("pending"),
		readline.PcItem("overdue"),
		readline.PcItem("soon"),
		readline.PcItem("return"),
		readline.PcItem("maintenance"),
		readline.PcItem("payment"),
	),
	readline.PcItem("/sent"),
	readline.PcItem("/done"),
	readline.PcItem("/summary"),
	readline.PcItem("/quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
