// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestOptionalInt_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    *int
		wantErr bool
	}{
		{in: `1999`, want: intPtr(1999)},
		{in: `"2004"`, want: intPtr(2004)},
		{in: `" 2010 "`, want: intPtr(2010)},
		{in: `""`},
		{in: `null`},
		{in: `"soon"`, wantErr: true},
		{in: `19.5`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			var body struct {
				Year optionalInt `json:"year"`
			}
			err := json.Unmarshal([]byte(`{"year":`+tt.in+`}`), &body)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.in, err)
			}
			switch {
			case tt.want == nil && body.Year.Value != nil:
				t.Errorf("got %d, want nil", *body.Year.Value)
			case tt.want != nil && (body.Year.Value == nil || *body.Year.Value != *tt.want):
				t.Errorf("got %v, want %d", body.Year.Value, *tt.want)
			}
		})
	}
}

func TestRegisterBranchRequest_ToModelTrims(t *testing.T) {
	t.Parallel()

	req := RegisterBranchRequest{BranchID: "  br-1 ", BusinessName: " Cafe X ", BranchName: "Main", Email: " a@b.co "}
	b := req.toModel("hash")
	if b.BranchID != "br-1" || b.BusinessName != "Cafe X" || b.Email != "a@b.co" {
		t.Errorf("fields not trimmed: %+v", b)
	}
	if b.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q", b.PasswordHash)
	}
}

func intPtr(i int) *int { return &i }
