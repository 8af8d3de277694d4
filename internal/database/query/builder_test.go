// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package query

import (
	"reflect"
	"testing"
)

func TestWhereBuilder_Empty(t *testing.T) {
	t.Parallel()

	wb := NewWhereBuilder()
	if !wb.IsEmpty() || wb.Count() != 0 {
		t.Error("expected new builder to be empty")
	}
	clause, args := wb.Build()
	if clause != "1=1" || len(args) != 0 {
		t.Errorf("Build() = %q, %v", clause, args)
	}
	prefixed, _ := wb.BuildWithPrefix()
	if prefixed != "WHERE 1=1" {
		t.Errorf("BuildWithPrefix() = %q", prefixed)
	}
}

func TestWhereBuilder_Placeholders(t *testing.T) {
	t.Parallel()

	wb := NewWhereBuilder().
		AddEquals("business_name", "Cafe X").
		AddEquals("city", "").
		AddClause("review_rating BETWEEN ? AND ?", 2, 5).
		AddClause("sentiment_score IS NULL")

	clause, args := wb.Build()
	want := "business_name = $1 AND review_rating BETWEEN $2 AND $3 AND sentiment_score IS NULL"
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"Cafe X", 2, 5}) {
		t.Errorf("args = %v", args)
	}
	if wb.Count() != 3 {
		t.Errorf("Count() = %d, want 3", wb.Count())
	}
}

func TestSetThenWhere(t *testing.T) {
	t.Parallel()

	sb := NewSetBuilder().Set("title", "t").Set("status", "resolved")
	set, setArgs := sb.Build()
	if set != "title = $1, status = $2" {
		t.Errorf("set = %q", set)
	}

	where, whereArgs := NewWhereBuilder().StartAt(sb.Len()).AddEquals("id", "abc").Build()
	if where != "id = $3" {
		t.Errorf("where = %q", where)
	}
	if got := append(setArgs, whereArgs...); !reflect.DeepEqual(got, []interface{}{"t", "resolved", "abc"}) {
		t.Errorf("args = %v", got)
	}
}
