package singlestorebulk

import (
	"context"

	"github.com/zikwall/singlestore-bulk/src/cx"
)

// WriterBlocking similar to Writer except that this interface must implement a blocking entry.
// WriterBlocking does not buffer anything, the given rows become one batch and the call
// returns the server confirmed row count. All responsibility for error handling
// and repeating undelivered batches falls on the developer
type WriterBlocking interface {
	// WriteRow writes row(s) into the destination table.
	// WriteRow writes without implicit batching. Batch is created from the given number of records.
	// Non-blocking alternative is available in the Writer interface
	WriteRow(ctx context.Context, row ...cx.Rowable) (uint64, error)
}

// writerBlocking structure implements the WriterBlocking interface and encapsulates all necessary logic within itself
type writerBlocking struct {
	table  cx.Table
	client Client
}

// NewWriterBlocking WriterBlocking object
func NewWriterBlocking(client Client, table cx.Table) WriterBlocking {
	w := &writerBlocking{
		table:  table,
		client: client,
	}
	return w
}

// WriteRow similar to Writer.WriteRow,
// only it is blocking and has the ability to write a large batch of data directly to the database at once
func (w *writerBlocking) WriteRow(ctx context.Context, row ...cx.Rowable) (uint64, error) {
	if len(row) > 0 {
		rows := make([]cx.Row, 0, len(row))
		for _, r := range row {
			rows = append(rows, r.Row())
		}
		return w.write(ctx, rows)
	}
	return 0, nil
}

// write to the SingleStore database
func (w *writerBlocking) write(ctx context.Context, rows []cx.Row) (uint64, error) {
	return w.client.LoadBatch(ctx, w.table, cx.NewBatch(rows))
}
