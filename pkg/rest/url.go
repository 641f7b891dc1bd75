package rest

import (
	"net/url"
	"strings"
)

// ComposeURL appends an encoded query to base for read verbs. An existing
// query string is preserved verbatim ahead of the new pairs; with nothing to
// add base is returned unchanged.
func ComposeURL(base, encoded string) string {
	if encoded == "" {
		return base
	}

	head, fragment, hasFragment := strings.Cut(base, "#")

	var b strings.Builder
	b.Grow(len(base) + len(encoded) + 1)
	b.WriteString(head)
	switch {
	case !strings.Contains(head, "?"):
		b.WriteByte('?')
	case strings.HasSuffix(head, "?"), strings.HasSuffix(head, "&"):
	default:
		b.WriteByte('&')
	}
	b.WriteString(encoded)

	if hasFragment {
		b.WriteByte('#')
		b.WriteString(fragment)
	}
	return b.String()
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return newError(KindInvalidURL, "url is empty", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return newError(KindInvalidURL, "parse url", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return newError(KindInvalidURL, "url is not absolute", nil)
	default:
		return newError(KindInvalidURL, "unsupported scheme "+u.Scheme, nil)
	}
	if u.Host == "" {
		return newError(KindInvalidURL, "url has no host", nil)
	}
	return nil
}
