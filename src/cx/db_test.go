package cx

import (
	"errors"
	"testing"
)

func TestEscapeIdentifier(t *testing.T) {
	cases := map[string]string{
		"users":        "`users`",
		"db.users":     "`db.users`",
		"weird`name":   "`weird``name`",
		"``":           "``````",
		"many`tick`ed": "`many``tick``ed`",
	}
	for in, want := range cases {
		if got := EscapeIdentifier(in); got != want {
			t.Fatalf("failed, expected %s, received %s", want, got)
		}
	}
}

func TestNewTable(t *testing.T) {
	t.Run("it should reject an empty table name", func(t *testing.T) {
		if _, err := NewTable(""); !errors.Is(err, ErrEmptyTableName) {
			t.Fatalf("failed, expected ErrEmptyTableName, received %v", err)
		}
	})
	t.Run("it should keep the column order", func(t *testing.T) {
		table, err := NewTable("t", "a", "b", "c")
		if err != nil {
			t.Fatal(err)
		}
		if len(table.Columns) != 3 || table.Columns[0] != "a" || table.Columns[2] != "c" {
			t.Fatalf("failed, unexpected columns %v", table.Columns)
		}
	})
}
