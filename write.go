package singlestorebulk

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zikwall/singlestore-bulk/src/cx"
)

// Writer is client interface with non-blocking methods for writing rows asynchronously
// in batches into a SingleStore server.
// Writer can be used concurrently.
// When using multiple goroutines for writing, use a single Writer instance in all goroutines.
type Writer interface {
	// WriteRow writes asynchronously one mapped row into the buffer.
	WriteRow(row cx.Rowable)
	// Errors returns a channel for reading errors which occurs during async writes.
	Errors() <-chan error
	// Stats returns how many batches and rows were confirmed by the server so far.
	Stats() (batches, rows uint64)
	// Close writer
	Close()
}

type writer struct {
	context      context.Context
	table        cx.Table
	client       Client
	bufferEngine cx.Buffer
	writeOptions *Options
	errCh        chan error
	loadCh       chan *cx.Batch
	bufferCh     chan cx.Row
	doneCh       chan struct{}
	writeStop    chan struct{}
	bufferStop   chan struct{}
	mu           *sync.RWMutex
	isOpenErr    int32
	batchesDone  cx.Countable
	rowsDone     cx.Countable
}

// NewWriter returns new non-blocking write client for writing rows to a SingleStore table
func NewWriter(ctx context.Context, client Client, table cx.Table, engine cx.Buffer) Writer {
	w := &writer{
		mu:           &sync.RWMutex{},
		context:      ctx,
		table:        table,
		client:       client,
		bufferEngine: engine,
		writeOptions: client.Options(),
		batchesDone:  cx.NewUint64Counter(),
		rowsDone:     cx.NewUint64Counter(),
		// write buffers
		loadCh:   make(chan *cx.Batch),
		bufferCh: make(chan cx.Row, 100),
		// signals
		doneCh:     make(chan struct{}),
		bufferStop: make(chan struct{}),
		writeStop:  make(chan struct{}),
	}
	go w.runBufferBridge()
	go w.runLoadBridge()
	return w
}

// WriteRow writes asynchronously one mapped row into the buffer.
// WriteRow adds the row into the buffer which is sent on the background
// when it reaches the batch size.
func (w *writer) WriteRow(row cx.Rowable) {
	w.bufferCh <- row.Row()
}

// Errors returns a channel for reading errors which occurs during async writes.
// Must be called before performing any writes for errors to be collected.
// The chan is unbuffered and must be drained or the writer will block.
func (w *writer) Errors() <-chan error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.errCh == nil {
		atomic.StoreInt32(&w.isOpenErr, 1)
		w.errCh = make(chan error)
	}
	return w.errCh
}

func (w *writer) hasErrReader() bool {
	return atomic.LoadInt32(&w.isOpenErr) > 0
}

// Stats returns the counters of batches and rows confirmed by the server
func (w *writer) Stats() (batches, rows uint64) {
	return w.batchesDone.Val(), w.rowsDone.Val()
}

// Close finishes outstanding write operations,
// stop background routines and closes all channels
func (w *writer) Close() {
	if w.loadCh != nil {
		// stop and wait for buffer bridge
		close(w.bufferStop)
		<-w.doneCh

		// stop and wait for load bridge
		close(w.writeStop)
		<-w.doneCh
	}
	if w.writeOptions.isDebug {
		w.writeOptions.logger.Logf("close writer %s", w.table.Name)
	}
}

func (w *writer) flush() {
	if w.writeOptions.isDebug {
		w.writeOptions.logger.Logf("flush buffer: %s", w.table.Name)
	}
	w.loadCh <- cx.NewBatch(w.bufferEngine.Read())
	w.bufferEngine.Flush()
}

// accumulates incoming rows, a batch leaves the buffer only full,
// on the flush ticker, or as the final remainder when the writer closes
func (w *writer) runBufferBridge() {
	var tickerC <-chan time.Time
	if interval := w.writeOptions.FlushInterval(); interval > 0 {
		ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
		defer ticker.Stop()
		tickerC = ticker.C
	}
	defer func() {
		// flush last data
		if w.bufferEngine.Len() > 0 {
			w.flush()
		}
		// close buffer channel
		close(w.bufferCh)
		w.bufferCh = nil
		// send signal, buffer listener is done
		w.doneCh <- struct{}{}
		w.writeOptions.logger.Logf("stop buffer bridge: %s", w.table.Name)
	}()
	w.writeOptions.logger.Logf("run buffer bridge: %s", w.table.Name)
	for {
		select {
		case row := <-w.bufferCh:
			w.bufferEngine.Write(row)
			if w.bufferEngine.Len() == int(w.writeOptions.BatchSize()) {
				w.flush()
			}
		case <-w.bufferStop:
			return
		case <-tickerC:
			if w.bufferEngine.Len() > 0 {
				w.flush()
			}
		}
	}
}

// transfers completed batches to the SingleStore database one at a time
func (w *writer) runLoadBridge() {
	w.writeOptions.logger.Logf("run load bridge: %s", w.table.Name)
	defer func() {
		// close load channel
		close(w.loadCh)
		w.loadCh = nil
		// close errors channel if it created
		w.mu.Lock()
		if w.errCh != nil {
			close(w.errCh)
			w.errCh = nil
		}
		w.mu.Unlock()
		// send signal, load listener is done
		w.doneCh <- struct{}{}
		w.writeOptions.logger.Logf("stop load bridge: %s", w.table.Name)
	}()
	for {
		select {
		case batch := <-w.loadCh:
			affected, err := w.client.LoadBatch(w.context, w.table, batch)
			if err != nil {
				if w.hasErrReader() {
					w.errCh <- err
				}
				continue
			}
			w.batchesDone.Inc()
			w.rowsDone.Add(affected)
		case <-w.writeStop:
			return
		}
	}
}
