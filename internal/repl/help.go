package repl

import "fmt"

const helpMarkdown = `# Commands

## Reminders
| Command | Description |
|---|---|
| ` + "`/return <rental-id> <due>`" + ` | Vehicle return reminder |
| ` + "`/maintenance <vehicle-id> <due> <description>`" + ` | Maintenance reminder |
| ` + "`/payment <payment-id> <due> <amount>`" + ` | Payment reminder |
| ` + "`/sent <id>`" + ` | Mark a pending reminder as sent |
| ` + "`/done <id>`" + ` | Mark a reminder as completed |

## Queries
| Command | Description |
|---|---|
| ` + "`/list [active]`" + ` | Reminders not yet completed |
| ` + "`/list all`" + ` | Every reminder |
| ` + "`/list pending`" + ` | Reminders not sent yet |
| ` + "`/list overdue`" + ` | Past due and not completed |
| ` + "`/list soon [hours]`" + ` | Pending and due within the window |
| ` + "`/list return\\|maintenance\\|payment`" + ` | One kind only |
| ` + "`/summary`" + ` | Counters |

## Due dates
` + "`2026-05-01`, `2026-05-01T09:30`, RFC3339, or an offset from now: `+5d`, `+36h`, `+90m`." + `

Ctrl+C, Ctrl+D or ` + "`/quit`" + ` to exit.
`

func (r *REPL) displayHelp() {
	fmt.Fprintln(r.out, r.formatter.RenderMarkdown(helpMarkdown))
}
