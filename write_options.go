package singlestorebulk

import (
	"errors"
	"fmt"

	"github.com/zikwall/singlestore-bulk/src/cx"
)

const (
	// DefaultBatchSize maximum number of rows transferred by one load command
	DefaultBatchSize = 100000
	// DefaultFlushInterval in milliseconds
	DefaultFlushInterval = 1000
)

var ErrInvalidBatchSize = errors.New("batch size must be greater than zero")

// Options holds write configuration properties
type Options struct {
	// Maximum number of rows sent to server in a single load command. Default 100000
	batchSize uint
	// Interval, in ms, in which is buffer flushed if it has not been already written (by reaching batch size).
	// Zero disables the ticker, batches are then emitted only full or on Close. Default 1000ms
	flushInterval uint
	// Debug mode
	isDebug bool
	// Logger with
	logger cx.Logger
}

type OptionFunc func(o *Options)

// WithBatchSize sets number of rows sent in a single load command
func WithBatchSize(batchSize uint) OptionFunc {
	return func(o *Options) {
		o.batchSize = batchSize
	}
}

// WithFlushInterval sets flush interval in ms in which is buffer flushed if it has not been already written
func WithFlushInterval(flushIntervalMs uint) OptionFunc {
	return func(o *Options) {
		o.flushInterval = flushIntervalMs
	}
}

// WithDebugMode set debug mode, for logs and errors
func WithDebugMode(isDebug bool) OptionFunc {
	return func(o *Options) {
		o.isDebug = isDebug
	}
}

// WithLogger installs a custom implementation of the cx.Logger interface
func WithLogger(logger cx.Logger) OptionFunc {
	return func(o *Options) {
		o.logger = logger
	}
}

// NewOptions returns an Options object, defaults overridden by the given setters
func NewOptions(options ...OptionFunc) *Options {
	o := &Options{
		batchSize:     DefaultBatchSize,
		flushInterval: DefaultFlushInterval,
	}
	for _, option := range options {
		option(o)
	}
	return o
}

// BatchSize returns size of batch
func (o *Options) BatchSize() uint {
	return o.batchSize
}

// FlushInterval returns flush interval in ms
func (o *Options) FlushInterval() uint {
	return o.flushInterval
}

// Validate reports configuration errors before any record is processed
func (o *Options) Validate() error {
	if o.batchSize == 0 {
		return fmt.Errorf("validate options: %w", ErrInvalidBatchSize)
	}
	return nil
}
