// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package query assembles parameterized SQL fragments with PostgreSQL-style
// positional placeholders ($1, $2, ...), which both DuckDB and PostgreSQL
// accept.
//
// Column names passed to the builders must be constants; only values are
// parameterized.
package query

import (
	"strconv"
	"strings"
)

// WhereBuilder accumulates AND-joined predicates.
type WhereBuilder struct {
	clauses []string
	args    []interface{}
	offset  int
}

// NewWhereBuilder creates an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// StartAt makes the next placeholder $n+1, for use after n arguments already
// bound by an earlier fragment (e.g. a SET list).
func (wb *WhereBuilder) StartAt(n int) *WhereBuilder {
	wb.offset = n
	return wb
}

// AddClause appends a predicate written with '?' markers, one per arg.
//
//	wb.AddClause("business_name = ?", name)
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	var sb strings.Builder
	n := len(wb.args)
	for _, r := range clause {
		if r == '?' {
			n++
			sb.WriteString(placeholder(wb.offset + n))
			continue
		}
		sb.WriteRune(r)
	}
	wb.args = append(wb.args, args...)
	wb.clauses = append(wb.clauses, sb.String())
	return wb
}

// AddEquals adds "column = value" when value is non-empty.
func (wb *WhereBuilder) AddEquals(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	return wb.AddClause(column+" = ?", value)
}

// Build returns the joined predicate and its arguments. An empty builder
// yields "1=1" so callers can always emit a WHERE.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	clause, args := wb.Build()
	return "WHERE " + clause, args
}

// Count returns the number of predicates.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no predicate was added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// SetBuilder accumulates "column = $n" assignments for UPDATE statements.
type SetBuilder struct {
	assignments []string
	args        []interface{}
}

// NewSetBuilder creates an empty SET list.
func NewSetBuilder() *SetBuilder {
	return &SetBuilder{}
}

// Set assigns value to column.
func (sb *SetBuilder) Set(column string, value interface{}) *SetBuilder {
	sb.args = append(sb.args, value)
	sb.assignments = append(sb.assignments, column+" = "+placeholder(len(sb.args)))
	return sb
}

// Len returns the number of assignments.
func (sb *SetBuilder) Len() int {
	return len(sb.assignments)
}

// Build returns the comma-joined assignments and their arguments.
func (sb *SetBuilder) Build() (string, []interface{}) {
	return strings.Join(sb.assignments, ", "), sb.args
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
