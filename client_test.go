package singlestorebulk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/zikwall/singlestore-bulk/src/buffer/cxsyncmem"
	"github.com/zikwall/singlestore-bulk/src/cx"
)

var errSingleStoreDown = errors.New("server has gone away")

// SingleStoreImplMock confirms every batch and remembers what was transferred
type SingleStoreImplMock struct {
	mu      sync.Mutex
	batches [][]cx.Row
}

func (m *SingleStoreImplMock) LoadBatch(_ context.Context, _ cx.Table, batch *cx.Batch) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := batch.Rows()
	m.batches = append(m.batches, rows)
	return uint64(len(rows)), nil
}

func (m *SingleStoreImplMock) Close() error {
	return nil
}

func (m *SingleStoreImplMock) Batches() [][]cx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([][]cx.Row, len(m.batches))
	copy(snapshot, m.batches)
	return snapshot
}

type SingleStoreImplErrMock struct{}

func (m *SingleStoreImplErrMock) LoadBatch(_ context.Context, _ cx.Table, _ *cx.Batch) (uint64, error) {
	return 0, errSingleStoreDown
}

func (m *SingleStoreImplErrMock) Close() error {
	return nil
}

type RowMock struct {
	id   int
	name string
}

func (r RowMock) Row() cx.Row {
	return cx.Row{fmt.Sprint(r.id), r.name}
}

func testTable(t *testing.T) cx.Table {
	t.Helper()
	table, err := cx.NewTable("test_db.test_table", "id", "name")
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestOptionsValidation(t *testing.T) {
	t.Run("it should reject zero batch size before anything runs", func(t *testing.T) {
		_, err := NewClientWithOptions(context.Background(), &SingleStoreImplMock{},
			NewOptions(WithBatchSize(0)),
		)
		if !errors.Is(err, ErrInvalidBatchSize) {
			t.Fatalf("failed, expected ErrInvalidBatchSize, received %v", err)
		}
	})
	t.Run("it should apply defaults", func(t *testing.T) {
		options := NewOptions()
		if options.BatchSize() != DefaultBatchSize {
			t.Fatalf("failed, expected default batch size, received %d", options.BatchSize())
		}
		if err := options.Validate(); err != nil {
			t.Fatal(err)
		}
	})
}

// nolint:funlen // scenario test
func TestWriterBatching(t *testing.T) {
	table := testTable(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("it should emit full batches and flush the remainder on close", func(t *testing.T) {
		mock := &SingleStoreImplMock{}
		client, err := NewClientWithOptions(ctx, mock,
			NewOptions(WithBatchSize(3), WithFlushInterval(0)),
		)
		if err != nil {
			t.Fatal(err)
		}
		writeAPI := client.Writer(ctx, table, cxsyncmem.NewBuffer(client.Options().BatchSize()))
		total := 10
		for i := 0; i < total; i++ {
			writeAPI.WriteRow(RowMock{id: i, name: fmt.Sprintf("name-%d", i)})
		}
		time.Sleep(time.Millisecond * 500)
		client.Close()

		batches := mock.Batches()
		if len(batches) != 4 {
			t.Fatalf("failed, expected 4 batches, received %d", len(batches))
		}
		seen := 0
		for i, batch := range batches {
			if i < len(batches)-1 && len(batch) != 3 {
				t.Fatalf("failed, batch %d expected full size 3, received %d", i, len(batch))
			}
			for _, row := range batch {
				if row[0] != fmt.Sprint(seen) {
					t.Fatalf("failed, rows reordered: expected %d, received %s", seen, row[0])
				}
				seen++
			}
		}
		if seen != total {
			t.Fatalf("failed, expected %d rows transferred, received %d", total, seen)
		}
		if last := batches[len(batches)-1]; len(last) != 1 {
			t.Fatalf("failed, expected final short batch of 1, received %d", len(last))
		}
		if batchesDone, rowsDone := writeAPI.Stats(); batchesDone != 4 || rowsDone != uint64(total) {
			t.Fatalf("failed, unexpected stats: %d batches, %d rows", batchesDone, rowsDone)
		}
	})

	t.Run("it should issue one load per row when batch size is one", func(t *testing.T) {
		mock := &SingleStoreImplMock{}
		client, err := NewClientWithOptions(ctx, mock,
			NewOptions(WithBatchSize(1), WithFlushInterval(0)),
		)
		if err != nil {
			t.Fatal(err)
		}
		writeAPI := client.Writer(ctx, table, cxsyncmem.NewBuffer(client.Options().BatchSize()))
		total := 1000
		for i := 0; i < total; i++ {
			writeAPI.WriteRow(RowMock{id: i, name: fmt.Sprintf("name-%d", i)})
		}
		time.Sleep(time.Second)
		client.Close()

		batches := mock.Batches()
		if len(batches) != total {
			t.Fatalf("failed, expected %d load invocations, received %d", total, len(batches))
		}
		unique := make(map[string]struct{}, total)
		for _, batch := range batches {
			if len(batch) != 1 {
				t.Fatalf("failed, expected single row batch, received %d", len(batch))
			}
			unique[batch[0][0]] = struct{}{}
		}
		if len(unique) != total {
			t.Fatalf("failed, expected %d distinct rows, received %d", total, len(unique))
		}
	})
}

func TestWriterErrors(t *testing.T) {
	table := testTable(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := NewClientWithOptions(ctx, &SingleStoreImplErrMock{},
		NewOptions(WithBatchSize(2), WithFlushInterval(0)),
	)
	if err != nil {
		t.Fatal(err)
	}
	writeAPI := client.Writer(ctx, table, cxsyncmem.NewBuffer(client.Options().BatchSize()))
	errs := writeAPI.Errors()

	writeAPI.WriteRow(RowMock{id: 1, name: "one"})
	writeAPI.WriteRow(RowMock{id: 2, name: "two"})

	select {
	case werr := <-errs:
		if !errors.Is(werr, errSingleStoreDown) {
			t.Fatalf("failed, expected transfer error, received %v", werr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("failed, no error surfaced for a failed batch")
	}
	if batchesDone, rowsDone := writeAPI.Stats(); batchesDone != 0 || rowsDone != 0 {
		t.Fatalf("failed, a failed batch must not count as loaded: %d/%d", batchesDone, rowsDone)
	}
	client.Close()
}

func TestWriterBlocking(t *testing.T) {
	table := testTable(t)
	ctx := context.Background()

	t.Run("it should transfer all rows in one load command", func(t *testing.T) {
		mock := &SingleStoreImplMock{}
		client, err := NewClientWithOptions(ctx, mock, NewOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer client.Close()
		writeAPI := client.WriterBlocking(table)
		affected, err := writeAPI.WriteRow(ctx,
			RowMock{id: 1, name: "one"},
			RowMock{id: 2, name: "two"},
			RowMock{id: 3, name: "three"},
		)
		if err != nil {
			t.Fatal(err)
		}
		if affected != 3 {
			t.Fatalf("failed, expected 3 rows confirmed, received %d", affected)
		}
		if len(mock.Batches()) != 1 {
			t.Fatalf("failed, expected exactly one load invocation, received %d", len(mock.Batches()))
		}
	})

	t.Run("it should report a failed batch as unwritten", func(t *testing.T) {
		client, err := NewClientWithOptions(ctx, &SingleStoreImplErrMock{}, NewOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer client.Close()
		writeAPI := client.WriterBlocking(table)
		affected, err := writeAPI.WriteRow(ctx, RowMock{id: 1, name: "one"})
		if !errors.Is(err, errSingleStoreDown) {
			t.Fatalf("failed, expected transfer error, received %v", err)
		}
		if affected != 0 {
			t.Fatalf("failed, row count must not be reported on failure, received %d", affected)
		}
	})

	t.Run("it should do nothing for an empty call", func(t *testing.T) {
		mock := &SingleStoreImplMock{}
		client, err := NewClientWithOptions(ctx, mock, NewOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer client.Close()
		writeAPI := client.WriterBlocking(table)
		if affected, err := writeAPI.WriteRow(ctx); err != nil || affected != 0 {
			t.Fatalf("failed, expected no-op, received %d, %v", affected, err)
		}
		if len(mock.Batches()) != 0 {
			t.Fatal("failed, expected no load invocations")
		}
	})
}
