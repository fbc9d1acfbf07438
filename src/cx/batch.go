package cx

// Batch holds information for sending rows batch
type Batch struct {
	rows []Row
}

// NewBatch creates new batch
func NewBatch(rows []Row) *Batch {
	return &Batch{
		rows: rows,
	}
}

func (b *Batch) Rows() []Row {
	return b.rows
}

func (b *Batch) Len() int {
	return len(b.rows)
}
