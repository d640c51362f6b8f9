// Package inventory exposes reconciliation over HTTP.
//
// # Routes
//
//   - GET /inventory/reconcile?organization=NAME: runs a reconciliation and returns the result as JSON.
//   - GET /inventory/reconcile.csv?organization=NAME: same run, rendered as the CSV report.
//   - GET /inventory/comparisons: the configured comparison set.
//   - GET /inventory/history?organization=NAME: past runs, when the report database is enabled.
//   - GET /inventory/reports?organization=NAME: uploaded CSV reports, when object storage is enabled.
//
// A run answers 200 even when some comparisons are indeterminate; the JSON
// body says which and why. Only a run where every comparison is
// indeterminate answers 502, since nothing in it can be trusted.
package inventory
