// Package client constructs the HTTP clients used by verscan.
//
// Three client profiles exist because the tool talks to two very
// different kinds of servers:
//
//   - The index client talks to the release index (GitHub's API). It
//     verifies TLS and follows redirects like any well-behaved API
//     consumer.
//   - The page client fetches a target's base page for passive
//     inspection. Recon targets often sit behind self-signed
//     certificates, so verification is skipped.
//   - The probe client sends the version probes. It never follows
//     redirects: a redirect status is an observation to classify, not
//     a navigation instruction.
//
// The package is designed to be used with dependency injection - build
// a client here and pass it to components that need HTTP rather than
// using global state.
package client
