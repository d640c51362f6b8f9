// Package report turns reconciliation results into reports.
//
// Every output implements Sink. Sinks only consume a finished
// reconcile.Result; none of them feeds anything back into a later run.
//
// # Sinks
//
//   - CSVSink: the ComputerName,MissingFrom file expected by downstream tooling.
//   - ConsoleSink: a human-readable summary rendered with lipgloss tables.
//   - StorageSink: uploads the CSV to object storage under reports/<org>/<run>.csv.
//   - DatabaseSink: records each run as an audit trail through GORM.
//   - MultiSink: fans one result out to several sinks.
//
// Indeterminate comparisons never produce rows: their hosts are unknown, not
// missing. Sinks that render diagnostics show the cause instead.
package report
