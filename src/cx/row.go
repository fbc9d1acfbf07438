package cx

import (
	"bytes"
	"encoding/gob"
)

// Rowable interface is an assistant in the correct formation of the order of fields in the data
// before sending it to SingleStore. The user type maps itself to an ordered set of cell values,
// one cell per target table column
type Rowable interface {
	Row() Row
}

// Row basic structure for writing, an ordered slice of cell values for a single table row.
// All values are transferred as text, the server casts them to column types during the bulk load
type Row []string

// RowDecoded a type that is a string, but contains a binary data format
type RowDecoded string

// Encode turns the Row type into an array of bytes.
// Encode is used for data serialization and storage in remote buffers, such as cxredis.Buffer
func (r Row) Encode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(r)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode method is required to reverse deserialize an array of bytes in a Row type
func (d RowDecoded) Decode() (Row, error) {
	var r Row
	err := gob.NewDecoder(bytes.NewReader([]byte(d))).Decode(&r)
	if err != nil {
		return nil, err
	}
	return r, nil
}
