// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

/*
Package api provides the HTTP surface of the branchpulse backend.

Handlers decode and validate the request, call one store or service
operation, and write the result inside the standard envelope:

	{"success":true,"data":{...},"meta":{"request_id":"...","timestamp":"...","duration_ms":3}}

Failures are mapped in one place (classifyError in errors.go) so every
endpoint reports the same status for the same domain error:

	validation          400 VALIDATION_ERROR
	bad credentials     401 UNAUTHORIZED
	other branch        403 FORBIDDEN
	missing record      404 NOT_FOUND
	duplicate, busy     409 CONFLICT
	predictor rejected  502 UPSTREAM_ERROR
	predictor down      503 UPSTREAM_UNAVAILABLE
	anything else       500 INTERNAL_ERROR

A predictor that answers with a non-2xx status is reported as 502 rather
than 500, since the fault lies upstream. The predictor's JSON body is passed
through unchanged in error.details.

Routing lives in chi_router.go. When AUTH_MODE is jwt, every route except
health, signup and login, branch registration, the branch map, and single
review analysis requires a bearer token issued by POST /api/branch-login. A
token only grants access to its own branch's data.
*/
package api
