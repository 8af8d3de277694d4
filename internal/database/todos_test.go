// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/branchpulse/internal/models"
)

func TestTodoLifecycle(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	fixedClock(db, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	due := "2026-03-15"
	first, err := db.AddTodo(ctx, models.NewTodo{BranchID: "b1", Title: "Restock napkins"})
	if err != nil {
		t.Fatalf("AddTodo: %v", err)
	}
	if first.Category != "general" || first.Priority != "medium" {
		t.Errorf("defaults = %q/%q, want general/medium", first.Category, first.Priority)
	}
	if first.Completed || first.CompletedAt != nil {
		t.Error("new todo must start incomplete with no completed_at")
	}

	second, err := db.AddTodo(ctx, models.NewTodo{BranchID: "b1", Title: "Fix sign", Priority: "high", DueDate: &due})
	if err != nil {
		t.Fatalf("AddTodo: %v", err)
	}
	if _, err := db.AddTodo(ctx, models.NewTodo{BranchID: "b2", Title: "Other branch"}); err != nil {
		t.Fatalf("AddTodo: %v", err)
	}

	todos, err := db.GetTodosByBranch(ctx, "b1")
	if err != nil {
		t.Fatalf("GetTodosByBranch: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("got %d todos, want 2", len(todos))
	}
	if todos[0].ID != second.ID {
		t.Errorf("todos not newest first: got %s first", todos[0].Title)
	}
	if todos[0].DueDate == nil || *todos[0].DueDate != due {
		t.Errorf("due date = %v, want %s", todos[0].DueDate, due)
	}

	done, err := db.ToggleTodoStatus(ctx, first.ID, true)
	if err != nil {
		t.Fatalf("ToggleTodoStatus(true): %v", err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Errorf("completed todo = %+v, want completed with completed_at", done)
	}

	reopened, err := db.ToggleTodoStatus(ctx, first.ID, false)
	if err != nil {
		t.Fatalf("ToggleTodoStatus(false): %v", err)
	}
	if reopened.Completed || reopened.CompletedAt != nil {
		t.Errorf("reopened todo = %+v, want incomplete with nil completed_at", reopened)
	}

	if ok, err := db.DeleteTodo(ctx, first.ID); err != nil || !ok {
		t.Fatalf("DeleteTodo = %v, %v", ok, err)
	}
	todos, err = db.GetTodosByBranch(ctx, "b1")
	if err != nil {
		t.Fatalf("GetTodosByBranch: %v", err)
	}
	if len(todos) != 1 {
		t.Errorf("got %d todos after delete, want 1", len(todos))
	}
}

func TestToggleTodoStatus_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	_, err := db.ToggleTodoStatus(context.Background(), "missing", true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTodo_MissingIDSucceeds(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	ok, err := db.DeleteTodo(context.Background(), "missing")
	if err != nil || !ok {
		t.Errorf("DeleteTodo(missing) = %v, %v; want true, nil", ok, err)
	}
}

func TestGetTodosByBranch_EmptyIsNotNil(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	todos, err := db.GetTodosByBranch(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetTodosByBranch: %v", err)
	}
	if todos == nil || len(todos) != 0 {
		t.Errorf("todos = %#v, want empty non-nil slice", todos)
	}
}
