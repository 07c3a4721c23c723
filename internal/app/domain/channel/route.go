package channel

import "strings"

// RouteNamespace prefixes every derived route.
const RouteNamespace = "/channels/"

// DeriveRoute maps a display name to its canonical route: lowercased, with
// whitespace runs collapsed to a single hyphen, under the channel namespace.
// Names differing only in case or whitespace run length derive the same route.
func DeriveRoute(channelName string) string {
	slug := strings.ToLower(strings.TrimSpace(channelName))
	slug = strings.Join(strings.Fields(slug), "-")
	return RouteNamespace + slug
}
