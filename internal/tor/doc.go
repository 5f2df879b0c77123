// Package tor provides optional Tor network connectivity for verscan.
//
// When a scan runs with --tor, every request - release index fetches,
// page inspection, and version probes - is routed through a Tor SOCKS5
// proxy so the target never sees the operator's address. The package
// handles proxy status verification and builds HTTP clients whose
// redirect and TLS behavior matches their direct counterparts in the
// client package.
//
// Design decision: The embedded daemon path uses tornago because it
// provides a well-tested, maintained Tor lifecycle implementation.
// Users with their own Tor daemon can point verscan at its SOCKS port
// instead; that path only needs standard SOCKS5 dialing.
//
// The package is designed to be used with dependency injection - create a
// Client and pass it to components that need Tor connectivity rather than
// using global state.
package tor
