// Package release enumerates published release tags from a GitHub-style
// release index and turns them into probe candidates.
//
// The enumerator walks the paginated releases endpoint following
// RFC 5988 Link headers, normalizes each tag into the bare version
// string the asset path template expects, and deduplicates while
// preserving upstream order. Order matters: the index returns newest
// releases first, and the search phase relies on that to find current
// deployments quickly, so this package never sorts.
//
// Enumeration failures are fatal to a scan (without the candidate list
// there is nothing to probe), so errors here carry the HTTP status and
// a body excerpt for diagnosis rather than being absorbed the way probe
// failures are.
package release
