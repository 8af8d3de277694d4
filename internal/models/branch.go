// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package models

import "time"

// Branch is a physical business location. BranchID is the natural key
// chosen by the business at registration.
type Branch struct {
	BranchID             string    `json:"branch_id"`
	BusinessName         string    `json:"business_name"`
	BranchName           string    `json:"branch_name"`
	PasswordHash         string    `json:"-"`
	BusinessType         string    `json:"business_type"`
	YearEstablished      *int      `json:"year_established"`
	FullName             string    `json:"full_name"`
	Position             string    `json:"position"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	Address              string    `json:"address"`
	City                 string    `json:"city"`
	State                string    `json:"state"`
	ZipCode              string    `json:"zip_code"`
	Country              string    `json:"country"`
	ReviewPlatforms      []string  `json:"review_platforms"`
	AdditionalInfo       string    `json:"additional_info"`
	NewsletterSubscribed bool      `json:"newsletter_subscribed"`
	Latitude             *float64  `json:"latitude"`
	Longitude            *float64  `json:"longitude"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// BranchLocation is the map projection of a branch.
type BranchLocation struct {
	BranchID   string   `json:"branch_id"`
	BranchName string   `json:"branch_name"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// BranchProfileUpdate is a partial update; nil fields are left unchanged.
type BranchProfileUpdate struct {
	BusinessName         *string
	BranchName           *string
	BusinessType         *string
	YearEstablished      *int
	FullName             *string
	Position             *string
	Email                *string
	Phone                *string
	Address              *string
	City                 *string
	State                *string
	ZipCode              *string
	Country              *string
	ReviewPlatforms      *[]string
	AdditionalInfo       *string
	NewsletterSubscribed *bool
}
