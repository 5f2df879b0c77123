// Package search drives the version sweep: it walks enumerated
// candidates strictly in enumeration order, probes each one, and keeps
// the running counters every other layer reads from.
//
// The controller never reorders candidates. GitHub returns releases
// newest first, and on production targets the newest handful of
// versions is where the hit almost always is; preserving that order is
// what makes early exit fast.
package search
