package rest

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Params is an insertion-ordered set of form parameters. Setting an existing
// name replaces its value in place.
type Params struct {
	names  []string
	values map[string]string
}

// Set stores value under name.
func (p *Params) Set(name, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = value
}

// Get returns the value stored under name.
func (p *Params) Get(name string) (string, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Len returns the number of distinct names.
func (p *Params) Len() int { return len(p.names) }

// Encode renders the parameters as application/x-www-form-urlencoded.
// Spaces become '+'. An empty set encodes to "".
func (p *Params) Encode() (string, error) {
	if p.Len() == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, name := range p.names {
		value := p.values[name]
		if !utf8.ValidString(name) {
			return "", newError(KindEncodingFailure, fmt.Sprintf("parameter name %q is not valid UTF-8", name), nil)
		}
		if !utf8.ValidString(value) {
			return "", newError(KindEncodingFailure, fmt.Sprintf("value of parameter %q is not valid UTF-8", name), nil)
		}
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	return b.String(), nil
}
