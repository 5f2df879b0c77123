// Package database provides SQLite-based storage for verscan.
//
// This package implements the ScanDB, which stores:
//   - Complete scan reports as JSON for historical comparison
//   - A target registry with one row per scanned base URL
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// The database lives in the XDG data directory so scan history survives
// across runs and working directories.
package database
