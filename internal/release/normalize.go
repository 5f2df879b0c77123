package release

import "strings"

// NormalizeTag converts a raw release tag into the bare version string
// used in probe URLs. Publishing conventions vary across a project's
// history; the two known decorations are a "version/" path segment and
// a "v" prefix, stripped in that order so "version/v1.2.3", "v1.2.3",
// and "1.2.3" all normalize to "1.2.3".
//
// An empty result means the tag carried no version at all and should be
// discarded by the caller.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, "version/")
	tag = strings.TrimPrefix(tag, "v")
	return tag
}
