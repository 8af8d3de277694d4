// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/branchpulse/internal/models"
)

// optionalInt accepts a JSON number, a numeric string, an empty string or
// null. HTML forms post numeric inputs as strings.
type optionalInt struct {
	Value *int
}

func (o *optionalInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			o.Value = nil
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", data)
	}
	o.Value = &n
	return nil
}

// CreateTodoRequest is the body of POST /api/todos.
type CreateTodoRequest struct {
	BranchID string  `json:"branch_id" validate:"notblank,max=100"`
	Title    string  `json:"title" validate:"notblank,max=255"`
	Category string  `json:"category" validate:"max=100"`
	Priority string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate  *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Notes    string  `json:"notes" validate:"max=5000"`
}

func (r *CreateTodoRequest) toModel() models.NewTodo {
	return models.NewTodo{
		BranchID: strings.TrimSpace(r.BranchID),
		Title:    strings.TrimSpace(r.Title),
		Category: r.Category,
		Priority: r.Priority,
		DueDate:  r.DueDate,
		Notes:    r.Notes,
	}
}

// ToggleTodoRequest is the body of PATCH /api/todos/{id}.
type ToggleTodoRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// CreateConcernRequest is the body of POST /api/concerns.
type CreateConcernRequest struct {
	BranchID    string `json:"branch_id" validate:"notblank,max=100"`
	Title       string `json:"title" validate:"notblank,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    string `json:"category" validate:"max=100"`
	Status      string `json:"status" validate:"omitempty,oneof=open in_progress resolved"`
}

func (r *CreateConcernRequest) toModel() models.NewConcern {
	return models.NewConcern{
		BranchID:    strings.TrimSpace(r.BranchID),
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Priority:    r.Priority,
		Category:    r.Category,
		Status:      r.Status,
	}
}

// UpdateConcernRequest is the body of PUT /api/concerns/{id}.
type UpdateConcernRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Status      *string `json:"status" validate:"omitempty,oneof=open in_progress resolved"`
}

func (r *UpdateConcernRequest) toModel() models.ConcernUpdate {
	return models.ConcernUpdate{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Category:    r.Category,
		Status:      r.Status,
	}
}

// RegisterBranchRequest is the branch registration form.
type RegisterBranchRequest struct {
	BranchID        string      `json:"branchId" validate:"notblank,max=100"`
	BusinessName    string      `json:"businessName" validate:"notblank,max=255"`
	BranchName      string      `json:"branchName" validate:"notblank,max=255"`
	Password        string      `json:"password" validate:"required,min=8,max=72"`
	BusinessType    string      `json:"businessType" validate:"max=100"`
	YearEstablished optionalInt `json:"yearEstablished"`
	FullName        string      `json:"fullName" validate:"max=255"`
	Position        string      `json:"position" validate:"max=100"`
	Email           string      `json:"email" validate:"required,email,max=255"`
	Phone           string      `json:"phone" validate:"max=30"`
	Address         string      `json:"address" validate:"max=500"`
	City            string      `json:"city" validate:"max=100"`
	State           string      `json:"state" validate:"max=100"`
	ZipCode         string      `json:"zipCode" validate:"max=20"`
	Country         string      `json:"country" validate:"max=100"`
	Platforms       []string    `json:"platforms" validate:"max=20,dive,max=50"`
	AdditionalInfo  string      `json:"additionalInfo" validate:"max=5000"`
	Newsletter      bool        `json:"newsletter"`
}

func (r *RegisterBranchRequest) toModel(hash string) *models.Branch {
	return &models.Branch{
		BranchID:             strings.TrimSpace(r.BranchID),
		BusinessName:         strings.TrimSpace(r.BusinessName),
		BranchName:           strings.TrimSpace(r.BranchName),
		PasswordHash:         hash,
		BusinessType:         r.BusinessType,
		YearEstablished:      r.YearEstablished.Value,
		FullName:             r.FullName,
		Position:             r.Position,
		Email:                strings.TrimSpace(r.Email),
		Phone:                r.Phone,
		Address:              r.Address,
		City:                 r.City,
		State:                r.State,
		ZipCode:              r.ZipCode,
		Country:              r.Country,
		ReviewPlatforms:      r.Platforms,
		AdditionalInfo:       r.AdditionalInfo,
		NewsletterSubscribed: r.Newsletter,
	}
}

// BranchLoginRequest is the body of POST /api/branch-login.
type BranchLoginRequest struct {
	BranchID string `json:"branchId" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// BranchLoginResponse carries the issued token.
type BranchLoginResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresAt string         `json:"expires_at"`
	Branch    *models.Branch `json:"branch"`
}

// UpdateBranchRequest is the body of PUT /api/branches/{branchID}.
type UpdateBranchRequest struct {
	BusinessName    *string      `json:"businessName" validate:"omitempty,notblank,max=255"`
	BranchName      *string      `json:"branchName" validate:"omitempty,notblank,max=255"`
	BusinessType    *string      `json:"businessType" validate:"omitempty,max=100"`
	YearEstablished *optionalInt `json:"yearEstablished"`
	FullName        *string      `json:"fullName" validate:"omitempty,max=255"`
	Position        *string      `json:"position" validate:"omitempty,max=100"`
	Email           *string      `json:"email" validate:"omitempty,email,max=255"`
	Phone           *string      `json:"phone" validate:"omitempty,max=30"`
	Address         *string      `json:"address" validate:"omitempty,max=500"`
	City            *string      `json:"city" validate:"omitempty,max=100"`
	State           *string      `json:"state" validate:"omitempty,max=100"`
	ZipCode         *string      `json:"zipCode" validate:"omitempty,max=20"`
	Country         *string      `json:"country" validate:"omitempty,max=100"`
	Platforms       *[]string    `json:"platforms" validate:"omitempty,max=20"`
	AdditionalInfo  *string      `json:"additionalInfo" validate:"omitempty,max=5000"`
	Newsletter      *bool        `json:"newsletter"`
}

func (r *UpdateBranchRequest) toModel() models.BranchProfileUpdate {
	u := models.BranchProfileUpdate{
		BusinessName:         r.BusinessName,
		BranchName:           r.BranchName,
		BusinessType:         r.BusinessType,
		FullName:             r.FullName,
		Position:             r.Position,
		Email:                r.Email,
		Phone:                r.Phone,
		Address:              r.Address,
		City:                 r.City,
		State:                r.State,
		ZipCode:              r.ZipCode,
		Country:              r.Country,
		ReviewPlatforms:      r.Platforms,
		AdditionalInfo:       r.AdditionalInfo,
		NewsletterSubscribed: r.Newsletter,
	}
	if r.YearEstablished != nil {
		u.YearEstablished = r.YearEstablished.Value
	}
	return u
}

// UpdateLocationRequest is the body of PUT /api/branches/{branchID}/location.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}
