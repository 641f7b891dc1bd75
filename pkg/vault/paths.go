package vault

import (
	"net/url"
	"strings"
)

// operation names double as audit operation values.
const (
	opRead   = "read"
	opList   = "list"
	opWrite  = "write"
	opDelete = "delete"
)

// apiPath maps a logical path to the HTTP API path for op. KV v2 mounts keep
// secrets under data/ and their listings under metadata/, directly below the
// mount point.
func apiPath(kvVersion int, op, path string) string {
	segments := splitPath(path)
	if kvVersion == 2 && len(segments) > 0 {
		infix := "data"
		if op == opList {
			infix = "metadata"
		}
		if len(segments) < 2 || segments[1] != infix {
			segments = append([]string{segments[0], infix}, segments[1:]...)
		}
	}
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func splitPath(path string) []string {
	raw := strings.Split(strings.Trim(strings.TrimSpace(path), "/"), "/")
	out := raw[:0]
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
