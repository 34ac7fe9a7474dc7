package reminder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// columns is the fixed layout of the reminders table. The first line of the
// file repeats it as a header.
var columns = []string{"id", "kind", "message", "due_at", "subject_id", "priority", "status", "detail"}

// Store provides CSV-backed storage for reminders. Each reminder is one row;
// new ids are appended and known ids are rewritten in place.
//
// Store assumes a single writing process. Concurrent writers can lose rows.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore opens (or creates) the CSV file at path.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		line, err := encodeLine(columns)
		if err != nil {
			return nil, err
		}
		if err := writeFileAtomic(path, line); err != nil {
			return nil, fmt.Errorf("failed to create store file: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat store file: %w", err)
	}

	return &Store{path: path, logger: logger}, nil
}

// Path returns the location of the CSV file.
func (s *Store) Path() string {
	return s.path
}

// Close is a no-op; the file is opened per operation.
func (s *Store) Close() error {
	return nil
}

// Save appends r, or overwrites the row with the same id. Saving an unchanged
// reminder does not touch the file.
func (s *Store) Save(r Reminder) error {
	fields, err := encodeReminder(r)
	if err != nil {
		return err
	}
	line, err := encodeLine(fields)
	if err != nil {
		return err
	}

	data, rows, err := s.scan()
	if err != nil {
		return err
	}

	id := fields[0]
	for i, row := range rows {
		if row.err != nil || len(row.fields) == 0 || row.fields[0] != id {
			continue
		}
		if bytes.Equal(row.raw, line) {
			return nil
		}

		var buf bytes.Buffer
		for j, other := range rows {
			if j == i {
				buf.Write(line)
				continue
			}
			buf.Write(other.raw)
			if !bytes.HasSuffix(other.raw, []byte("\n")) {
				buf.WriteByte('\n')
			}
		}
		if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to rewrite reminder %s: %w", id, err)
		}
		return nil
	}

	return s.appendLine(data, line)
}

func (s *Store) appendLine(existing, line []byte) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open store file: %w", err)
	}
	defer f.Close()

	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		line = append([]byte("\n"), line...)
	}
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append reminder: %w", err)
	}
	return f.Sync()
}

// LoadAll reads every reminder in file order. Rows that cannot be parsed are
// logged and skipped.
func (s *Store) LoadAll() ([]Reminder, error) {
	_, rows, err := s.scan()
	if err != nil {
		return nil, err
	}

	reminders := make([]Reminder, 0, len(rows))
	for _, row := range rows {
		if row.isHeader() {
			continue
		}

		var r Reminder
		err := row.err
		if err == nil {
			r, err = decodeReminder(row.fields, row.line)
		}
		if err != nil {
			var corrupt *CorruptRecordError
			if !errors.As(err, &corrupt) {
				corrupt = &CorruptRecordError{Line: row.line, Reason: err.Error()}
			}
			s.logger.Warn("skipping corrupt reminder row",
				zap.String("path", s.path),
				zap.Int("line", corrupt.Line),
				zap.String("reason", corrupt.Reason))
			continue
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}

// Snapshot reloads the file and returns its reminders for filtering.
func (s *Store) Snapshot() (Snapshot, error) {
	return LoadSnapshot(s)
}

type csvRow struct {
	raw    []byte
	fields []string
	line   int
	err    error
}

func (r csvRow) isHeader() bool {
	return r.err == nil && len(r.fields) > 0 && r.fields[0] == columns[0]
}

// scan splits the file into rows, keeping the raw bytes of each one so a
// rewrite can reproduce rows it could not parse.
func (s *Store) scan() ([]byte, []csvRow, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read store file: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	var rows []csvRow
	var start int64
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		end := cr.InputOffset()
		row := csvRow{raw: data[start:end]}
		start = end

		var parseErr *csv.ParseError
		switch {
		case err == nil:
			row.fields = fields
			row.line, _ = cr.FieldPos(0)
		case errors.As(err, &parseErr):
			row.line = parseErr.StartLine
			row.err = &CorruptRecordError{Line: parseErr.StartLine, Reason: parseErr.Err.Error()}
		default:
			return nil, nil, fmt.Errorf("failed to read store file: %w", err)
		}
		rows = append(rows, row)
	}
	return data, rows, nil
}

func encodeReminder(r Reminder) ([]string, error) {
	var detail string
	switch d := r.Details.(type) {
	case ReturnDetails:
	case MaintenanceDetails:
		detail = d.Description
	case PaymentDetails:
		detail = d.Amount.StringFixed(2)
	default:
		return nil, fmt.Errorf("reminder %d has no kind details", r.ID)
	}

	return []string{
		strconv.FormatInt(r.ID, 10),
		string(r.Kind()),
		r.Message,
		r.DueAt.UTC().Format(time.RFC3339),
		strconv.FormatInt(r.SubjectID, 10),
		r.Priority.String(),
		string(r.Status),
		detail,
	}, nil
}

func decodeReminder(fields []string, line int) (Reminder, error) {
	corrupt := func(format string, args ...any) error {
		return &CorruptRecordError{Line: line, Reason: fmt.Sprintf(format, args...)}
	}

	if len(fields) != len(columns) {
		return Reminder{}, corrupt("expected %d columns, got %d", len(columns), len(fields))
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return Reminder{}, corrupt("bad id %q", fields[0])
	}
	kind := Kind(fields[1])
	if _, err := ParseKind(fields[1]); err != nil || kind != Kind(fields[1]) {
		return Reminder{}, corrupt("bad kind %q", fields[1])
	}
	dueAt, err := time.Parse(time.RFC3339, fields[3])
	if err != nil {
		return Reminder{}, corrupt("bad due_at %q", fields[3])
	}
	subjectID, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil || subjectID < 0 {
		return Reminder{}, corrupt("bad subject_id %q", fields[4])
	}
	priority, err := ParsePriority(fields[5])
	if err != nil {
		return Reminder{}, corrupt("%v", err)
	}
	if priority != PriorityFor(kind) {
		return Reminder{}, corrupt("priority %s does not match kind %s", priority, kind)
	}
	status, err := ParseStatus(fields[6])
	if err != nil || string(status) != fields[6] {
		return Reminder{}, corrupt("bad status %q", fields[6])
	}

	var details Details
	switch kind {
	case KindReturn:
		details = ReturnDetails{}
	case KindMaintenance:
		details = MaintenanceDetails{Description: fields[7]}
	case KindPayment:
		amount, err := decimal.NewFromString(fields[7])
		if err != nil {
			return Reminder{}, corrupt("bad amount %q", fields[7])
		}
		details = PaymentDetails{Amount: amount}
	}

	return Reminder{
		ID:        id,
		Details:   details,
		Message:   fields[2],
		DueAt:     dueAt.UTC(),
		SubjectID: subjectID,
		Priority:  priority,
		Status:    status,
	}, nil
}

func encodeLine(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic replaces path with data via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
