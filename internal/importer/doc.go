// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package importer reads review exports in CSV form.
//
// Columns are matched by header name, case-insensitively and in any order:
//
//	business_name, business_category, address, city, latitude, longitude,
//	reviewer_name, review_rating, review_text, review_date,
//	price_per_person, meal_type
//
// business_name and review_rating are required. Unknown columns are
// ignored. Rows that cannot be converted are reported as RowError and
// skipped; the rest of the file is still imported. Imported reviews carry
// no sentiment until batch analysis labels them.
package importer
