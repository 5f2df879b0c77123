// Package progress renders the live, single-line status UI for scans.
//
// The Line type owns overwrite-in-place rendering: each update rewrites
// the current terminal line, rate limited so a fast probe loop does not
// flood the output stream. Formatting helpers compose the enumeration
// and probing phase lines with terminal colors.
//
// The reporter is presentation only. Callers must never rely on it for
// program logic - search state is the source of truth, and in disabled
// mode (--no-ui, or output that is not a terminal) every operation is a
// no-op.
package progress
