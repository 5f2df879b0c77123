// Package probe sends the per-version existence probes against a
// target.
//
// A probe asks one question: does the admin bundle for version X exist
// at this deployment? It fetches a single byte of the candidate asset
// with a ranged GET and classifies the response. Transport failures are
// part of the answer, not errors - a target that drops probe
// connections is an observation worth recording, and one flaky probe
// must never abort a search that may be hundreds of candidates long.
package probe
