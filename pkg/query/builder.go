// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"strconv"
	"strings"
)

// # SELECT

// SelectBuilder renders `SELECT columns FROM table [WHERE ...] [ORDER BY ...] [LIMIT/OFFSET] [FOR UPDATE]`.
type SelectBuilder struct {
	table      string
	columns    []string
	predicates []Pair
	orderBy    string
	descending bool
	limit      int
	offset     int
	forUpdate  bool
}

// Select starts a SELECT over the given columns. No columns means `*`.
func Select(table string, columns ...string) *SelectBuilder {
	return &SelectBuilder{table: table, columns: columns}
}

// Where appends equality predicates.
func (builder *SelectBuilder) Where(predicates ...Pair) *SelectBuilder {
	builder.predicates = append(builder.predicates, predicates...)
	return builder
}

// OrderBy sorts by one column.
func (builder *SelectBuilder) OrderBy(column string, descending bool) *SelectBuilder {
	builder.orderBy = column
	builder.descending = descending
	return builder
}

// Limit caps the number of rows. Zero disables the clause.
func (builder *SelectBuilder) Limit(limit int) *SelectBuilder {
	builder.limit = limit
	return builder
}

// Offset skips rows. Zero disables the clause.
func (builder *SelectBuilder) Offset(offset int) *SelectBuilder {
	builder.offset = offset
	return builder
}

// ForUpdate locks the selected rows where the dialect supports it.
func (builder *SelectBuilder) ForUpdate() *SelectBuilder {
	builder.forUpdate = true
	return builder
}

// Build renders the statement for dialect.
func (builder *SelectBuilder) Build(dialect Dialect) (Statement, error) {
	if err := checkIdentifiers(builder.table); err != nil {
		return Statement{}, err
	}
	if err := checkIdentifiers(builder.columns...); err != nil {
		return Statement{}, err
	}

	projection := "*"
	if len(builder.columns) > 0 {
		projection = strings.Join(builder.columns, ", ")
	}

	bound := &args{dialect: dialect}
	where, err := bound.where(builder.predicates)
	if err != nil {
		return Statement{}, err
	}

	var sql strings.Builder
	sql.WriteString("SELECT " + projection + " FROM " + builder.table + where)

	if builder.orderBy != "" {
		if err := checkIdentifiers(builder.orderBy); err != nil {
			return Statement{}, err
		}
		sql.WriteString(" ORDER BY " + builder.orderBy)
		if builder.descending {
			sql.WriteString(" DESC")
		}
	}

	if builder.limit > 0 {
		sql.WriteString(" LIMIT " + strconv.Itoa(builder.limit))
	}
	if builder.offset > 0 {
		sql.WriteString(" OFFSET " + strconv.Itoa(builder.offset))
	}

	if builder.forUpdate && dialect.SupportsRowLocks() {
		sql.WriteString(" FOR UPDATE")
	}

	return Statement{SQL: sql.String(), Args: bound.values}, nil
}

// # COUNT

// CountBuilder renders `SELECT COUNT(*) FROM table [WHERE ...]`.
type CountBuilder struct {
	table      string
	predicates []Pair
}

// Count starts a row count.
func Count(table string) *CountBuilder {
	return &CountBuilder{table: table}
}

// Where appends equality predicates.
func (builder *CountBuilder) Where(predicates ...Pair) *CountBuilder {
	builder.predicates = append(builder.predicates, predicates...)
	return builder
}

// Build renders the statement for dialect.
func (builder *CountBuilder) Build(dialect Dialect) (Statement, error) {
	if err := checkIdentifiers(builder.table); err != nil {
		return Statement{}, err
	}

	bound := &args{dialect: dialect}
	where, err := bound.where(builder.predicates)
	if err != nil {
		return Statement{}, err
	}

	return Statement{SQL: "SELECT COUNT(*) FROM " + builder.table + where, Args: bound.values}, nil
}

// # INSERT

// InsertBuilder renders `INSERT INTO table (cols) VALUES (...) [RETURNING col]`.
type InsertBuilder struct {
	table     string
	values    []Pair
	returning string
}

// Insert starts an INSERT.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Values appends column assignments.
func (builder *InsertBuilder) Values(values ...Pair) *InsertBuilder {
	builder.values = append(builder.values, values...)
	return builder
}

// Returning asks the database to return one column of the inserted row.
func (builder *InsertBuilder) Returning(column string) *InsertBuilder {
	builder.returning = column
	return builder
}

// Build renders the statement for dialect.
func (builder *InsertBuilder) Build(dialect Dialect) (Statement, error) {
	if err := checkIdentifiers(builder.table); err != nil {
		return Statement{}, err
	}
	if len(builder.values) == 0 {
		return Statement{}, ErrNoValues
	}

	bound := &args{dialect: dialect}
	columns := make([]string, 0, len(builder.values))
	placeholders := make([]string, 0, len(builder.values))

	for _, value := range builder.values {
		if err := checkIdentifiers(value.Column); err != nil {
			return Statement{}, err
		}
		columns = append(columns, value.Column)
		placeholders = append(placeholders, bound.bind(value.Value))
	}

	sql := "INSERT INTO " + builder.table +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"

	if builder.returning != "" {
		if err := checkIdentifiers(builder.returning); err != nil {
			return Statement{}, err
		}
		sql += " RETURNING " + builder.returning
	}

	return Statement{SQL: sql, Args: bound.values}, nil
}

// # UPDATE

// UpdateBuilder renders `UPDATE table SET a = $1 [WHERE ...]`.
type UpdateBuilder struct {
	table      string
	values     []Pair
	predicates []Pair
}

// Update starts an UPDATE.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set appends one assignment.
func (builder *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	builder.values = append(builder.values, Set(column, value))
	return builder
}

// Where appends equality predicates.
func (builder *UpdateBuilder) Where(predicates ...Pair) *UpdateBuilder {
	builder.predicates = append(builder.predicates, predicates...)
	return builder
}

// Build renders the statement for dialect. SET placeholders precede WHERE placeholders.
func (builder *UpdateBuilder) Build(dialect Dialect) (Statement, error) {
	if err := checkIdentifiers(builder.table); err != nil {
		return Statement{}, err
	}
	if len(builder.values) == 0 {
		return Statement{}, ErrNoValues
	}

	bound := &args{dialect: dialect}
	assignments := make([]string, 0, len(builder.values))
	for _, value := range builder.values {
		if err := checkIdentifiers(value.Column); err != nil {
			return Statement{}, err
		}
		assignments = append(assignments, value.Column+" = "+bound.bind(value.Value))
	}

	where, err := bound.where(builder.predicates)
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		SQL:  "UPDATE " + builder.table + " SET " + strings.Join(assignments, ", ") + where,
		Args: bound.values,
	}, nil
}

// # DELETE

// DeleteBuilder renders `DELETE FROM table [WHERE ...]`. An empty predicate deletes every row.
type DeleteBuilder struct {
	table      string
	predicates []Pair
}

// Delete starts a DELETE.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where appends equality predicates.
func (builder *DeleteBuilder) Where(predicates ...Pair) *DeleteBuilder {
	builder.predicates = append(builder.predicates, predicates...)
	return builder
}

// Build renders the statement for dialect.
func (builder *DeleteBuilder) Build(dialect Dialect) (Statement, error) {
	if err := checkIdentifiers(builder.table); err != nil {
		return Statement{}, err
	}

	bound := &args{dialect: dialect}
	where, err := bound.where(builder.predicates)
	if err != nil {
		return Statement{}, err
	}

	return Statement{SQL: "DELETE FROM " + builder.table + where, Args: bound.values}, nil
}
