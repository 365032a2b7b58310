package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the subset of pgx.Tx the repositories depend on. Both pgx.Tx and
// *pgxpool.Pool satisfy it, so read paths can run straight off the pool.
type Tx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ExtendedFieldSet lets an entity contribute extra columns to inserts and
// updates without the repository knowing about them.
type ExtendedFieldSet interface {
	Fields() []string
	Value(field string) any
}

// Join concatenates non-empty SQL fragments with single spaces.
func Join(parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filtered = append(filtered, p)
		}
	}
	return strings.Join(filtered, " ")
}

// JoinWhere builds a WHERE clause AND-ing the given conditions. Returns an
// empty string when there are none.
func JoinWhere(conditions ...string) string {
	filtered := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if strings.TrimSpace(c) != "" {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(filtered, " AND ")
}

// Insert builds an INSERT statement with positional placeholders for the
// given fields, optionally with a RETURNING clause.
func Insert(table string, fields []string, returning ...string) string {
	placeholders := make([]string, len(fields))
	for i := range fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
	)
	if len(returning) > 0 {
		q += " RETURNING " + strings.Join(returning, ", ")
	}
	return q
}

// Update builds an UPDATE statement assigning $1..$n to the given fields.
// The where fragments may reference placeholders beyond $n.
func Update(table string, fields []string, where ...string) string {
	assignments := make([]string, len(fields))
	for i, f := range fields {
		assignments[i] = fmt.Sprintf("%s = $%d", f, i+1)
	}
	q := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(assignments, ", "))
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q
}

// Delete builds a DELETE statement with the given where fragments.
func Delete(table string, where ...string) string {
	q := "DELETE FROM " + table
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	return q
}

// Exists wraps a query in SELECT EXISTS.
func Exists(query string) string {
	return fmt.Sprintf("SELECT EXISTS (%s)", query)
}

// FormatLimitOffset renders LIMIT/OFFSET fragments, omitting non-positive
// values.
func FormatLimitOffset(limit, offset int) string {
	if limit > 0 && offset > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	}
	if limit > 0 {
		return fmt.Sprintf("LIMIT %d", limit)
	}
	if offset > 0 {
		return fmt.Sprintf("OFFSET %d", offset)
	}
	return ""
}

// BatchInsertQueryN expands a multi-row VALUES list onto the given insert
// prefix and returns the flattened argument slice. All rows must have the
// same arity.
func BatchInsertQueryN(prefix string, rows [][]any) (string, []any) {
	if len(rows) == 0 {
		return prefix, nil
	}
	width := len(rows[0])
	args := make([]any, 0, len(rows)*width)
	tuples := make([]string, 0, len(rows))
	for i, row := range rows {
		placeholders := make([]string, width)
		for j := range row {
			placeholders[j] = fmt.Sprintf("$%d", i*width+j+1)
		}
		tuples = append(tuples, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, row...)
	}
	return prefix + " " + strings.Join(tuples, ", "), args
}
