// Package core implements the buyer lead operations.
//
// [Service] is the single entry point used by the HTTP server and the
// leadctl CLI. Every mutating call runs in the same order:
//
//  1. consume one slot of the actor's rate-limit window
//  2. parse the request body as a JSON object
//  3. validate it into a canonical [buyer.Buyer]
//  4. persist through [BuyerStore], which enforces existence, ownership
//     and the optimistic-concurrency check inside one transaction
//  5. hand committed history entries to the [HistoryPublisher]
//
// Imports accept CSV or XLSX files of at most [buyer.MaxImportRows] rows.
// They are all-or-nothing and additionally capped by an [ImportLimiter] so
// a burst of large files cannot exhaust database connections.
//
// # Errors
//
// Operations return the typed errors of package buyer unchanged, wrapped
// at most once. [MapError] converts any error into a [UserMessage] with a
// support code.
//
// # Observability
//
// Each operation opens an OpenTelemetry span named "buyers.<operation>" and
// records its outcome in the Prometheus instruments of package metrics.
package core
