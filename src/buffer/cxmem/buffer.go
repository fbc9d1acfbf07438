package cxmem

import (
	"github.com/zikwall/singlestore-bulk/src/cx"
)

type memory struct {
	buffer []cx.Row
	size   uint
}

func NewBuffer(bufferSize uint) cx.Buffer {
	return &memory{
		buffer: make([]cx.Row, 0, bufferSize+1),
		size:   bufferSize + 1,
	}
}

func (i *memory) Write(row cx.Row) {
	i.buffer = append(i.buffer, row)
}

func (i *memory) Read() []cx.Row {
	snapshot := make([]cx.Row, len(i.buffer))
	copy(snapshot, i.buffer)
	return snapshot
}

func (i *memory) Len() int {
	return len(i.buffer)
}

func (i *memory) Flush() {
	i.buffer = i.buffer[:0]
}
