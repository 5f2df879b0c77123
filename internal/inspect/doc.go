// Package inspect performs passive page inspection of a target.
//
// One GET against the base URL, nothing else: the page HTML is parsed
// for versioned admin-asset references, and the response headers are
// read for server fingerprints. Inspection runs before enumeration and
// its hints are informational only. They never add candidates and
// never change probe order; the probing phase is the sole authority on
// which version is deployed.
package inspect
