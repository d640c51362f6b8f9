// Package database handles the connection to the report database.
//
// It wraps GORM to configure MySQL or SQLite connections from the
// application's configuration. The database only stores the audit trail of
// reconciliation runs written by the database report sink; it is never read
// back during reconciliation.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
