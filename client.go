package singlestorebulk

import (
	"context"
	"sync"

	"github.com/zikwall/singlestore-bulk/src/cx"
)

// Client main interface, provides a top-level API.
// Client generates child Writer-s and stores all necessary configuration in itself.
// Client owns an instance of a SingleStore database connection.
type Client interface {
	// Options returns the options associated with client
	Options() *Options
	// LoadBatch sends one batch with a single bulk load command and returns the row count
	// reported by the server. Used implicitly by the non-blocking Writer and explicitly
	// by WriterBlocking. An error means the batch is unwritten as far as this layer knows
	LoadBatch(context.Context, cx.Table, *cx.Batch) (uint64, error)
	// Writer returns the asynchronous, non-blocking, Writer client.
	// Ensures using a single Writer instance for each table.
	Writer(context.Context, cx.Table, cx.Buffer) Writer
	// WriterBlocking returns the synchronous, blocking, WriterBlocking client.
	// Ensures using a single WriterBlocking instance for each table.
	WriterBlocking(cx.Table) WriterBlocking
	// Close ensures all ongoing asynchronous write clients finish.
	Close()
}

// Implementation of the Client interface
type clientImpl struct {
	context       context.Context
	singlestore   cx.SingleStore
	options       *Options
	writeAPIs     map[string]Writer
	syncWriteAPIs map[string]WriterBlocking
	mu            sync.RWMutex
	logger        cx.Logger
}

// NewClient creates an object implementing the Client interface with default options
func NewClient(ctx context.Context, singlestore cx.SingleStore) Client {
	client, _ := NewClientWithOptions(ctx, singlestore, NewOptions())
	return client
}

// NewClientWithOptions similar to NewClient except that there is a configuration option
// with an encapsulated setting inside.
// The options are validated eagerly, a misconfigured client processes nothing
func NewClientWithOptions(ctx context.Context, singlestore cx.SingleStore, options *Options) (Client, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if options.logger == nil {
		options.logger = cx.NewDefaultLogger()
	}
	client := &clientImpl{
		context:       ctx,
		singlestore:   singlestore,
		options:       options,
		writeAPIs:     map[string]Writer{},
		syncWriteAPIs: map[string]WriterBlocking{},
		logger:        options.logger,
	}
	return client, nil
}

// Options return global options object
func (c *clientImpl) Options() *Options {
	return c.options
}

// Writer returns the asynchronous, non-blocking, Writer client.
// Ensures using a single Writer instance for each table.
func (c *clientImpl) Writer(ctx context.Context, table cx.Table, buf cx.Buffer) Writer {
	key := table.Name
	c.mu.Lock()
	if _, ok := c.writeAPIs[key]; !ok {
		c.writeAPIs[key] = NewWriter(ctx, c, table, buf)
	}
	writer := c.writeAPIs[key]
	c.mu.Unlock()
	return writer
}

// WriterBlocking returns the synchronous, blocking, WriterBlocking client.
// Ensures using a single WriterBlocking instance for each table.
func (c *clientImpl) WriterBlocking(table cx.Table) WriterBlocking {
	key := table.Name
	c.mu.Lock()
	if _, ok := c.syncWriteAPIs[key]; !ok {
		c.syncWriteAPIs[key] = NewWriterBlocking(c, table)
	}
	writer := c.syncWriteAPIs[key]
	c.mu.Unlock()
	return writer
}

// Close API top-level method safely closes all child asynchronous and synchronous Writer-s
func (c *clientImpl) Close() {
	if c.options.isDebug {
		c.logger.Log("close singlestore bulk client")
		c.logger.Log("close async writers")
	}
	// closing and destroying all asynchronous writers
	c.mu.Lock()
	for key, w := range c.writeAPIs {
		w.Close()
		delete(c.writeAPIs, key)
	}
	c.mu.Unlock()
	// closing and destroying all synchronous writers
	if c.options.isDebug {
		c.logger.Log("close sync writers")
	}
	c.mu.Lock()
	for key := range c.syncWriteAPIs {
		delete(c.syncWriteAPIs, key)
	}
	c.mu.Unlock()
}

// LoadBatch API top-level method for loading batches into the SingleStore database.
// All child Writer-s use this method to transfer their accumulated and encapsulated data.
// The row count is forwarded only after the store implementation has joined its
// writer side, a transmission failure is never reported as a partial success
func (c *clientImpl) LoadBatch(ctx context.Context, table cx.Table, batch *cx.Batch) (uint64, error) {
	affected, err := c.singlestore.LoadBatch(ctx, table, batch)
	if err != nil {
		return 0, err
	}
	return affected, nil
}
