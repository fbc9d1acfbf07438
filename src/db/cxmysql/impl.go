package cxmysql

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/zikwall/singlestore-bulk/src/cx"
)

const (
	defaultMaxIdleConns    = 20
	defaultMaxOpenConns    = 21
	defaultConnMaxLifetime = time.Minute * 5
)

// readerHandleSeq makes infile reader names unique across concurrent loads,
// the driver keeps registered handlers in a process-wide table
var readerHandleSeq uint64

func nextReaderHandle() string {
	return fmt.Sprintf("singlestore-bulk-%d", atomic.AddUint64(&readerHandleSeq, 1))
}

type singleStore struct {
	db             *sqlx.DB
	loadTimeout    time.Duration
	pipeBufferSize int
}

// Config connection settings for the SingleStore (MySQL protocol) database
type Config struct {
	Address  string
	User     string
	Password string
	Database string
}

type Opt struct {
	maxIdleConns    int
	maxOpenConns    int
	connMaxLifetime time.Duration
}

type Option func(o *Opt)

// WithMaxIdleConns set `maxIdleConns` to connection pool options
func WithMaxIdleConns(maxIdleConns int) Option {
	return func(opt *Opt) {
		opt.maxIdleConns = maxIdleConns
	}
}

// WithMaxOpenConns set `maxOpenConns` to connection pool options
func WithMaxOpenConns(maxOpenConns int) Option {
	return func(opt *Opt) {
		opt.maxOpenConns = maxOpenConns
	}
}

// WithConnMaxLifetime set `connMaxLifetime` to connection pool options
func WithConnMaxLifetime(connMaxLifetime time.Duration) Option {
	return func(opt *Opt) {
		opt.connMaxLifetime = connMaxLifetime
	}
}

func buildConnectionString(c *Config) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = c.Address
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	return cfg.FormatDSN()
}

// NewSingleStore opens a connection pool, verifies it and returns the cx.SingleStore
// implementation together with the underlying handle for schema management queries
func NewSingleStore(
	ctx context.Context,
	config *Config,
	runtime *cx.RuntimeOptions,
	options ...Option,
) (
	cx.SingleStore,
	*sqlx.DB,
	error,
) {
	conn, err := sqlx.Open("mysql", buildConnectionString(config))
	if err != nil {
		return nil, nil, err
	}
	opt := &Opt{
		maxIdleConns:    defaultMaxIdleConns,
		maxOpenConns:    defaultMaxOpenConns,
		connMaxLifetime: defaultConnMaxLifetime,
	}
	for _, option := range options {
		option(opt)
	}
	if opt.maxIdleConns > 0 {
		conn.SetMaxIdleConns(opt.maxIdleConns)
	}
	if opt.maxOpenConns > 0 {
		conn.SetMaxOpenConns(opt.maxOpenConns)
	}
	if opt.connMaxLifetime > 0 {
		conn.SetConnMaxLifetime(opt.connMaxLifetime)
	}
	if err = conn.PingContext(ctx); err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok {
			return nil, nil, fmt.Errorf("[%d] %s", mysqlErr.Number, mysqlErr.Message)
		}
		return nil, nil, err
	}
	return NewSingleStoreWithConn(conn, runtime), conn, nil
}

// NewSingleStoreWithConn wraps an already configured connection pool
func NewSingleStoreWithConn(conn *sqlx.DB, runtime *cx.RuntimeOptions) cx.SingleStore {
	return &singleStore{
		db:             conn,
		loadTimeout:    runtime.GetLoadTimeout(),
		pipeBufferSize: runtime.GetPipeBufferSize(),
	}
}

func (s *singleStore) Close() error {
	return s.db.Close()
}

// loadQuery builds the bulk load command, the infile name refers to the reader
// registered with the driver for this one invocation
func loadQuery(handle string, table cx.Table) string {
	query := fmt.Sprintf("LOAD DATA LOCAL INFILE 'Reader::%s' INTO TABLE %s", handle, table.Escaped())
	if len(table.Columns) > 0 {
		escaped := make([]string, 0, len(table.Columns))
		for _, column := range table.Columns {
			escaped = append(escaped, cx.EscapeIdentifier(column))
		}
		query += fmt.Sprintf(" (%s)", strings.Join(escaped, ", "))
	}
	return query
}

// LoadBatch streams the batch into the server with a single LOAD DATA LOCAL INFILE command.
// The serializer goroutine and the command run concurrently over a bounded pipe,
// sequencing them would deadlock once the batch outgrows the pipe buffer.
// The writer outcome is always joined after the command returns: a transmission
// error invalidates the batch even when the server already reported a row count
func (s *singleStore) LoadBatch(ctx context.Context, table cx.Table, batch *cx.Batch) (uint64, error) {
	if batch.Len() == 0 {
		return 0, nil
	}
	stream := newBatchStream(batch, s.pipeBufferSize)
	handle := nextReaderHandle()
	mysql.RegisterReaderHandler(handle, func() io.Reader {
		return stream
	})
	defer mysql.DeregisterReaderHandler(handle)

	timeoutContext, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	// one connection is pinned for the whole load, it is never shared across batches
	conn, err := s.db.Conn(timeoutContext)
	if err != nil {
		stream.abort(err)
		_ = stream.join()
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	result, execErr := conn.ExecContext(timeoutContext, loadQuery(handle, table))
	if execErr != nil {
		// wake up the writer goroutine if it is still blocked on the full pipe
		stream.abort(execErr)
	}
	writeErr := stream.join()
	if execErr != nil {
		return 0, fmt.Errorf("bulk load into %s: %w", table.Name, execErr)
	}
	if writeErr != nil {
		return 0, fmt.Errorf("stream batch into %s: %w", table.Name, writeErr)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return uint64(affected), nil
}
