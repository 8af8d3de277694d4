// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/branchpulse/internal/models"
)

// Column names understood by Read.
const (
	ColBusinessName     = "business_name"
	ColBusinessCategory = "business_category"
	ColAddress          = "address"
	ColCity             = "city"
	ColLatitude         = "latitude"
	ColLongitude        = "longitude"
	ColReviewerName     = "reviewer_name"
	ColReviewRating     = "review_rating"
	ColReviewText       = "review_text"
	ColReviewDate       = "review_date"
	ColPricePerPerson   = "price_per_person"
	ColMealType         = "meal_type"
)

var requiredColumns = []string{ColBusinessName, ColReviewRating}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// RowError describes a data row that was skipped. Line is the 1-based
// line in the file, counting the header.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Result is the outcome of Read.
type Result struct {
	Reviews []models.Review
	Skipped []*RowError
}

// Read parses r. now stamps rows whose review_date is empty or
// unparseable. A malformed header or a CSV syntax error aborts the read;
// bad field values only skip their row.
func Read(r io.Reader, now time.Time) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("csv: %w %q", ErrMissingColumn, col)
		}
	}

	res := &Result{}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}

		rv, err := parseRecord(row{index: index, record: record}, now)
		if err != nil {
			res.Skipped = append(res.Skipped, &RowError{Line: line, Err: err})
			continue
		}
		res.Reviews = append(res.Reviews, rv)
	}
	return res, nil
}

type row struct {
	index  map[string]int
	record []string
}

func (r row) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func parseRecord(r row, now time.Time) (models.Review, error) {
	rv := models.Review{
		BusinessName:     r.get(ColBusinessName),
		BusinessCategory: r.get(ColBusinessCategory),
		Address:          r.get(ColAddress),
		City:             r.get(ColCity),
		ReviewerName:     r.get(ColReviewerName),
		ReviewText:       r.get(ColReviewText),
		MealType:         r.get(ColMealType),
	}
	if rv.BusinessName == "" {
		return rv, errors.New("business_name is empty")
	}

	rating, err := parseRating(r.get(ColReviewRating))
	if err != nil {
		return rv, err
	}
	rv.ReviewRating = rating

	if rv.Latitude, err = optionalFloat(r.get(ColLatitude), ColLatitude, -90, 90); err != nil {
		return rv, err
	}
	if rv.Longitude, err = optionalFloat(r.get(ColLongitude), ColLongitude, -180, 180); err != nil {
		return rv, err
	}
	rv.PricePerPerson = parsePrice(r.get(ColPricePerPerson))

	stamp := now
	if date, ok := parseDate(r.get(ColReviewDate)); ok {
		stamp = date
		rv.ReviewDate = date.Format(time.DateOnly)
	}
	rv.StampTime(stamp)
	rv.CleanReviewText = models.CleanText(rv.ReviewText)
	return rv, nil
}

// parseRating accepts whole numbers and whole-valued decimals ("4.0")
// as exported by spreadsheet tools.
func parseRating(s string) (int, error) {
	if s == "" {
		return 0, errors.New("review_rating is empty")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("review_rating %q is not a whole number", s)
	}
	n := int(f)
	if n < 1 || n > 5 {
		return 0, fmt.Errorf("review_rating %d out of range 1..5", n)
	}
	return n, nil
}

func optionalFloat(s, col string, lo, hi float64) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a number", col, s)
	}
	if f < lo || f > hi {
		return nil, fmt.Errorf("%s %v out of range", col, f)
	}
	return &f, nil
}

// parsePrice extracts the first number from values like "$12.50" or
// "10-20". Anything else is treated as unknown.
func parsePrice(s string) *float64 {
	start := strings.IndexFunc(s, isNumberRune)
	if start < 0 {
		return nil
	}
	end := start
	for end < len(s) && isNumberRune(rune(s[end])) {
		end++
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s[start:end], ",", ""), 64)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}

func isNumberRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.' || r == ','
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.DateTime, "2006/01/02", "01/02/2006"}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
