// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

/*
Package services adapts branchpulse components to suture.Service.

HTTPServerService turns the blocking ListenAndServe/Shutdown pair of an
*http.Server into a context-aware Serve with graceful shutdown.

BatchAnalyzeService runs batch sentiment analysis on a fixed interval.
A run rejected because another batch is in flight is skipped, not
treated as a failure.

Return values drive the supervisor:

	nil or ctx.Err()  stopped, not restarted
	other error       crashed, restarted with backoff
*/
package services
