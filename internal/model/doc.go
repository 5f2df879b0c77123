// Package model defines the core data structures used throughout verscan.
//
// This package contains the following main types:
//   - Target: A validated, normalized base URL for a deployment under test
//   - ProbeResult: The outcome of probing one versioned asset candidate
//   - ScanReport: The main scan result structure
//   - SimpleReport: A summarized, human-readable report
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (probe, search, pipeline, report) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
