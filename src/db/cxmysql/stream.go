package cxmysql

import (
	"bufio"
	"io"

	"github.com/zikwall/singlestore-bulk/src/cx"
	"github.com/zikwall/singlestore-bulk/src/tsv"
)

// batchStream connects the batch serializer with the driver reading the infile data.
// A writer goroutine encodes rows into the write end of an in-process pipe while the
// load command drains the read end. The bufio layer bounds how many bytes are held
// in memory: once it is full the goroutine blocks until the server consumes bytes,
// so memory stays flat no matter how large the batch is
type batchStream struct {
	pr   *io.PipeReader
	done chan struct{}
	err  error
}

func newBatchStream(batch *cx.Batch, bufferSize int) *batchStream {
	pr, pw := io.Pipe()
	s := &batchStream{
		pr:   pr,
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		bw := bufio.NewWriterSize(pw, bufferSize)
		err := tsv.NewEncoder(bw).WriteBatch(batch)
		if err == nil {
			err = bw.Flush()
		}
		s.err = err
		// a nil error turns into io.EOF on the read end, signalling end of stream
		pw.CloseWithError(err)
	}()
	return s
}

// Read makes batchStream usable directly as the registered infile reader
func (s *batchStream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

// abort closes the read end so a blocked writer goroutine wakes up with err
// instead of hanging forever when the load command fails before draining the pipe
func (s *batchStream) abort(err error) {
	_ = s.pr.CloseWithError(err)
}

// join waits for the writer goroutine to finish and reports its outcome.
// Must be called after the load command returns, never before, otherwise the
// bounded pipe deadlocks with the writer blocked and nobody reading
func (s *batchStream) join() error {
	<-s.done
	return s.err
}
