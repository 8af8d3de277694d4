// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package models

import "time"

// User is an end-user account owned by the external auth provider.
type User struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	LastSignInAt     *time.Time             `json:"last_sign_in_at,omitempty"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
}

// FullName returns the full_name metadata value, if any.
func (u *User) FullName() string {
	s, _ := u.UserMetadata["full_name"].(string)
	return s
}

// UserStats summarizes the user base.
type UserStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`       // signed in at least once
	NewThisMonth int `json:"newThisMonth"` // created in the current calendar month
	Pending      int `json:"pending"`      // email not yet confirmed
}

// ComputeUserStats derives UserStats relative to now.
func ComputeUserStats(users []User, now time.Time) UserStats {
	now = now.UTC()
	stats := UserStats{Total: len(users)}
	for i := range users {
		u := &users[i]
		if u.LastSignInAt != nil {
			stats.Active++
		}
		if c := u.CreatedAt.UTC(); c.Year() == now.Year() && c.Month() == now.Month() {
			stats.NewThisMonth++
		}
		if u.EmailConfirmedAt == nil {
			stats.Pending++
		}
	}
	return stats
}
