// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

/*
Package supervisor runs the long-lived services of branchpulse under suture v4.

The tree has two layers so a failing background job cannot take the API down:

	RootSupervisor ("branchpulse")
	├── WorkerSupervisor ("worker-layer")
	│   └── BatchAnalyzeService (if PREDICTOR_BATCH_INTERVAL > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (start, failure, backoff, restart) are logged through
sutureslog into the zerolog logger via logging.NewSlogLogger.

A service returning an error is restarted. Returning nil or ctx.Err() ends
it. Failure counting decays over FailureDecay seconds; once it exceeds
FailureThreshold the layer waits FailureBackoff before restarting again.

The database is not supervised. It is an embedded library or a connection
pool, and both recover on their own.
*/
package supervisor
