// Package tsv implements the text format consumed by the LOAD DATA LOCAL INFILE parser:
// tab-separated cells, newline-terminated rows, with backslash escaping of the
// characters that would otherwise be read as cell or row delimiters.
package tsv

import (
	"io"
	"strings"

	"github.com/zikwall/singlestore-bulk/src/cx"
)

const (
	cellDelimiter = '\t'
	rowDelimiter  = '\n'
)

// AppendCell appends the escaped cell value to dst.
// The backslash substitution runs first, otherwise the escape sequences
// produced for tabs and newlines would be escaped a second time
func AppendCell(dst []byte, cell string) []byte {
	if strings.IndexByte(cell, '\\') != -1 {
		cell = strings.ReplaceAll(cell, `\`, `\\`)
	}
	if strings.IndexByte(cell, '\n') != -1 {
		cell = strings.ReplaceAll(cell, "\n", `\n`)
	}
	if strings.IndexByte(cell, '\t') != -1 {
		cell = strings.ReplaceAll(cell, "\t", `\t`)
	}
	return append(dst, cell...)
}

// UnescapeCell is the exact inverse of AppendCell on a single cell value
func UnescapeCell(cell string) string {
	if strings.IndexByte(cell, '\\') == -1 {
		return cell
	}
	var b strings.Builder
	b.Grow(len(cell))
	for i := 0; i < len(cell); i++ {
		c := cell[i]
		if c == '\\' && i+1 < len(cell) {
			i++
			switch cell[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(cell[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Encoder serializes rows into the delimited wire format
type Encoder struct {
	w       io.Writer
	scratch []byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteRow writes all cells of the row in order, tab-separated, and terminates
// the row with a newline. Cell values are escaped, so delimiters inside the data
// survive the round trip through the server side parser
func (e *Encoder) WriteRow(row cx.Row) error {
	e.scratch = e.scratch[:0]
	for i, cell := range row {
		if i > 0 {
			e.scratch = append(e.scratch, cellDelimiter)
		}
		e.scratch = AppendCell(e.scratch, cell)
	}
	e.scratch = append(e.scratch, rowDelimiter)
	_, err := e.w.Write(e.scratch)
	return err
}

// WriteBatch writes every row of the batch in arrival order
func (e *Encoder) WriteBatch(batch *cx.Batch) error {
	for _, row := range batch.Rows() {
		if err := e.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}
