// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package database

import (
	stdctx "context"
	"fmt"

	"github.com/taibuivan/quill/internal/platform/dberr"
	"github.com/taibuivan/quill/pkg/query"
)

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one record from the current row, in the table's column order.
type ScanFunc[T any] func(row Scanner) (*T, error)

/*
Table is a typed accessor for one relational table.

Every read projects the configured columns and decodes rows with the scan
function, so callers always receive records of type T. Predicates are
conjunctions of column equalities built with [query.Eq].
*/
type Table[T any] struct {
	db      *DB
	name    string
	columns []string
	scan    ScanFunc[T]
}

// NewTable binds a table name, its projected columns and a row decoder.
func NewTable[T any](db *DB, name string, columns []string, scan ScanFunc[T]) *Table[T] {
	return &Table[T]{db: db, name: name, columns: columns, scan: scan}
}

// Name returns the table name.
func (table *Table[T]) Name() string {
	return table.name
}

// Get returns the first row matching where, or [dberr.ErrNotFound].
func (table *Table[T]) Get(context stdctx.Context, where ...query.Pair) (*T, error) {
	return table.get(context, query.Select(table.name, table.columns...).Where(where...).Limit(1))
}

// GetForUpdate is [Table.Get] with a row lock on dialects that support one.
// It only has an effect inside [DB.Atomic].
func (table *Table[T]) GetForUpdate(context stdctx.Context, where ...query.Pair) (*T, error) {
	return table.get(context, query.Select(table.name, table.columns...).Where(where...).Limit(1).ForUpdate())
}

func (table *Table[T]) get(context stdctx.Context, builder *query.SelectBuilder) (*T, error) {
	statement, err := builder.Build(table.db.dialect)
	if err != nil {
		return nil, err
	}

	record, err := table.scan(table.db.Conn(context).QueryRowContext(context, statement.SQL, statement.Args...))
	if err != nil {
		return nil, dberr.Classify(err)
	}
	return record, nil
}

// Query returns every row matching where.
func (table *Table[T]) Query(context stdctx.Context, where ...query.Pair) ([]*T, error) {
	return table.list(context, query.Select(table.name, table.columns...).Where(where...))
}

// Page returns one ordered slice of the rows matching where.
func (table *Table[T]) Page(context stdctx.Context, orderBy string, descending bool, limit, offset int, where ...query.Pair) ([]*T, error) {
	return table.list(context, query.Select(table.name, table.columns...).
		Where(where...).
		OrderBy(orderBy, descending).
		Limit(limit).
		Offset(offset))
}

func (table *Table[T]) list(context stdctx.Context, builder *query.SelectBuilder) ([]*T, error) {
	statement, err := builder.Build(table.db.dialect)
	if err != nil {
		return nil, err
	}

	rows, err := table.db.Conn(context).QueryContext(context, statement.SQL, statement.Args...)
	if err != nil {
		return nil, fmt.Errorf("table_query_failed: %s: %w", table.name, err)
	}
	defer rows.Close()

	var records []*T
	for rows.Next() {
		record, err := table.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("table_scan_failed: %s: %w", table.name, err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table_rows_failed: %s: %w", table.name, err)
	}
	return records, nil
}

// Count returns the number of rows matching where.
func (table *Table[T]) Count(context stdctx.Context, where ...query.Pair) (int, error) {
	statement, err := query.Count(table.name).Where(where...).Build(table.db.dialect)
	if err != nil {
		return 0, err
	}

	var count int
	if err := table.db.Conn(context).QueryRowContext(context, statement.SQL, statement.Args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("table_count_failed: %s: %w", table.name, err)
	}
	return count, nil
}

// Insert writes one row. Unique conflicts are reported as [dberr.ErrUniqueViolation].
func (table *Table[T]) Insert(context stdctx.Context, values ...query.Pair) error {
	statement, err := query.Insert(table.name).Values(values...).Build(table.db.dialect)
	if err != nil {
		return err
	}

	if _, err := table.db.Conn(context).ExecContext(context, statement.SQL, statement.Args...); err != nil {
		return dberr.Classify(err)
	}
	return nil
}

// InsertReturning writes one row and returns the integer value of column, usually the generated id.
func (table *Table[T]) InsertReturning(context stdctx.Context, column string, values ...query.Pair) (int64, error) {
	statement, err := query.Insert(table.name).Values(values...).Returning(column).Build(table.db.dialect)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := table.db.Conn(context).QueryRowContext(context, statement.SQL, statement.Args...).Scan(&id); err != nil {
		return 0, dberr.Classify(err)
	}
	return id, nil
}

// Update opens a change set for the rows matching where. Nothing is written
// until [Changeset.Commit] runs.
func (table *Table[T]) Update(where ...query.Pair) *Changeset {
	return &Changeset{db: table.db, builder: query.Update(table.name).Where(where...)}
}

// Delete removes the rows matching where and returns how many were removed.
func (table *Table[T]) Delete(context stdctx.Context, where ...query.Pair) (int64, error) {
	statement, err := query.Delete(table.name).Where(where...).Build(table.db.dialect)
	if err != nil {
		return 0, err
	}

	result, err := table.db.Conn(context).ExecContext(context, statement.SQL, statement.Args...)
	if err != nil {
		return 0, fmt.Errorf("table_delete_failed: %s: %w", table.name, err)
	}
	return result.RowsAffected()
}

// # Change Sets

/*
Changeset accumulates column assignments for one UPDATE statement.

	affected, err := users.Update(query.Eq("id", id)).
	    Set("is_locked", false).
	    Set("login_attempts", 0).
	    Commit(ctx)
*/
type Changeset struct {
	db      *DB
	builder *query.UpdateBuilder
	pending int
}

// Set records an assignment.
func (changeset *Changeset) Set(column string, value any) *Changeset {
	changeset.builder.Set(column, value)
	changeset.pending++
	return changeset
}

// Pending reports how many assignments are waiting for Commit.
func (changeset *Changeset) Pending() int {
	return changeset.pending
}

// Commit writes every assignment in one statement and returns the affected row count.
// A change set without assignments commits nothing.
func (changeset *Changeset) Commit(context stdctx.Context) (int64, error) {
	if changeset.pending == 0 {
		return 0, nil
	}

	statement, err := changeset.builder.Build(changeset.db.dialect)
	if err != nil {
		return 0, err
	}

	result, err := changeset.db.Conn(context).ExecContext(context, statement.SQL, statement.Args...)
	if err != nil {
		return 0, dberr.Classify(err)
	}
	return result.RowsAffected()
}
