package rest

import (
	"bytes"
	"net/http"
	"strings"
)

// Response is the uniform result of a completed HTTP exchange, whatever its status.
type Response struct {
	status   int
	mimeType string
	header   http.Header
	body     []byte
}

// NewResponse builds a Response. The mime type is taken from the Content-Type
// header with any parameters dropped.
func NewResponse(status int, header http.Header, body []byte) *Response {
	return &Response{
		status:   status,
		mimeType: mimeTypeOf(header.Get("Content-Type")),
		header:   header.Clone(),
		body:     bytes.Clone(body),
	}
}

func mimeTypeOf(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mt)
}

// Status returns the HTTP status code.
func (r *Response) Status() int { return r.status }

// MimeType returns the declared content type without charset or other parameters.
func (r *Response) MimeType() string { return r.mimeType }

// Header returns the first value of the named response header.
func (r *Response) Header(name string) string { return r.header.Get(name) }

// Body returns a copy of the raw payload.
func (r *Response) Body() []byte { return bytes.Clone(r.body) }

// Text returns the payload as a string; callers decide whether that is meaningful.
func (r *Response) Text() string { return string(r.body) }

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool { return r.status >= 200 && r.status < 300 }
