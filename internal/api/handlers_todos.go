// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"net/http"
)

// ListTodos handles GET /api/todos?branch_id=.
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	branchID, err := requiredQuery(r, "branch_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := requireBranchAccess(r, branchID); err != nil {
		respondError(w, r, err)
		return
	}

	todos, err := h.store.GetTodosByBranch(r.Context(), branchID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(todos, len(todos))
}

// CreateTodo handles POST /api/todos.
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	in := req.toModel()
	if err := requireBranchAccess(r, in.BranchID); err != nil {
		respondError(w, r, err)
		return
	}

	todo, err := h.store.AddTodo(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(todo)
}

// ToggleTodo handles PATCH /api/todos/{id}.
func (h *Handler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req ToggleTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	todo, err := h.store.ToggleTodoStatus(r.Context(), id, *req.Completed)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(todo)
}

// DeleteTodo handles DELETE /api/todos/{id}. Deleting an unknown id
// succeeds.
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	deleted, err := h.store.DeleteTodo(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]bool{"deleted": deleted})
}
