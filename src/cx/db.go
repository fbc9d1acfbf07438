package cx

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// DefaultPipeBufferSize how many bytes the batch stream may hold in memory
	// before the writer side blocks waiting for the bulk load command to drain it
	DefaultPipeBufferSize = 524288
	// DefaultLoadTimeout limit for a single bulk load command
	DefaultLoadTimeout = 5 * time.Minute
)

var ErrEmptyTableName = errors.New("table name can not be empty")

// Table describes the destination table of the bulk load.
// Columns are optional, when set the load command gets an explicit column list
// and the mapped rows must produce cells in exactly that order
type Table struct {
	Name    string
	Columns []string
}

func NewTable(name string, columns ...string) (Table, error) {
	if name == "" {
		return Table{}, ErrEmptyTableName
	}
	return Table{Name: name, Columns: columns}, nil
}

// EscapeIdentifier wraps the identifier in backticks and doubles embedded backticks,
// so a name containing the quote character cannot break out of the statement
func EscapeIdentifier(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

// Escaped returns the table name safe for interpolation into the load command
func (t Table) Escaped() string {
	return EscapeIdentifier(t.Name)
}

// SingleStore is a statement executor over a SingleStore (MySQL protocol) database.
// LoadBatch transfers the whole batch with a single LOAD DATA LOCAL INFILE command
// and returns the row count reported by the server.
// A non-nil error means the batch must be considered unwritten, even when the server
// managed to report a row count before the transmission failure was observed
type SingleStore interface {
	LoadBatch(context.Context, Table, *Batch) (uint64, error)
	Close() error
}

// RuntimeOptions tuning of the database implementations
type RuntimeOptions struct {
	LoadTimeout    time.Duration
	PipeBufferSize int
}

func (r *RuntimeOptions) GetLoadTimeout() time.Duration {
	if r.LoadTimeout == 0 {
		return DefaultLoadTimeout
	}
	return r.LoadTimeout
}

func (r *RuntimeOptions) GetPipeBufferSize() int {
	if r.PipeBufferSize == 0 {
		return DefaultPipeBufferSize
	}
	return r.PipeBufferSize
}
