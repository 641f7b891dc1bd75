package httpclient

import (
	"context"
	"net/http"
)

// Header is a single outgoing header, kept exactly as the caller supplied it.
type Header struct {
	Name  string
	Value string
}

// Request is a fully-formed HTTP request ready to be put on the wire.
type Request struct {
	Method  string
	URL     string
	Headers []Header
	Body    []byte
	// HasBody distinguishes an empty payload from no payload at all.
	HasBody bool
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
