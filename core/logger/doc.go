// Package logger builds the zap logger shared by the CLI and the server.
//
// Level accepts any zap level name; "debug" also switches to zap's development
// preset. Format selects the json or the colored console encoder.
//
//	log, err := logger.New(&logger.Config{Level: "info", Format: "json"})
//
// Request handlers derive a child logger with WithRayID so every line of a
// reconciliation request carries the same ray_id field.
package logger
