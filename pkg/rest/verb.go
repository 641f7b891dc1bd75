package rest

import (
	"fmt"
	"strings"
)

// Verb is one of the HTTP methods the builder supports.
type Verb string

const (
	Get    Verb = "GET"
	Post   Verb = "POST"
	Put    Verb = "PUT"
	Delete Verb = "DELETE"
)

// Routing says where a verb carries its parameters.
type Routing int

const (
	// RouteQuery merges parameters into the URL query string.
	RouteQuery Routing = iota
	// RouteBody sends parameters as a form-encoded body and leaves the URL alone.
	RouteBody
)

// Routing returns the parameter routing policy for v.
func (v Verb) Routing() Routing {
	switch v {
	case Post, Put:
		return RouteBody
	default:
		return RouteQuery
	}
}

// Valid reports whether v is a supported verb.
func (v Verb) Valid() bool {
	switch v {
	case Get, Post, Put, Delete:
		return true
	}
	return false
}

// ParseVerb resolves a case-insensitive method name.
func ParseVerb(s string) (Verb, error) {
	v := Verb(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unsupported verb %q", s)
	}
	return v, nil
}
