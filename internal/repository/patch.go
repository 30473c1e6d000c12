package repository

import "strings"

// assignment is one "column = ?" entry of a partial update.
type assignment struct {
	column string
	value  any
}

// buildUpdate renders UPDATE <table> SET ... WHERE <key> = ? from the
// assignments that are present.  An empty list is ErrNoFields.
func buildUpdate(table, keyColumn string, key any, set []assignment) (string, []any, error) {
	if len(set) == 0 {
		return "", nil, ErrNoFields
	}
	cols := make([]string, 0, len(set))
	args := make([]any, 0, len(set)+1)
	for _, a := range set {
		cols = append(cols, a.column+" = ?")
		args = append(args, a.value)
	}
	args = append(args, key)
	return "UPDATE " + table + " SET " + strings.Join(cols, ", ") + " WHERE " + keyColumn + " = ?", args, nil
}
