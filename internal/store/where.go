package store

import (
	"fmt"
	"strings"
)

// WhereBuilder assembles a parameterized WHERE clause. Placeholders are
// numbered in the order conditions are added.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "column = $n". Empty string values are skipped so optional
// filters can be passed straight through.
func (wb *WhereBuilder) Add(column string, value any) *WhereBuilder {
	if s, ok := value.(string); ok && s == "" {
		return wb
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", column, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
	return wb
}

// AddOr appends "(c1 op $n OR c2 op $n ...)" with every column sharing one
// argument.
func (wb *WhereBuilder) AddOr(columns []string, op string, value any) *WhereBuilder {
	if len(columns) == 0 {
		return wb
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s %s $%d", col, op, wb.argIndex)
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
	wb.args = append(wb.args, value)
	wb.argIndex++
	return wb
}

// Build returns the clause with a leading " WHERE ", or "" and nil args when
// nothing was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex is the placeholder number the next argument would take, for
// appending LIMIT/OFFSET.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
