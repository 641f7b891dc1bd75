package rest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/samvad-hq/vault-rest/pkg/httpclient"
	"golang.org/x/net/http/httpguts"
)

const (
	formContentType = "application/x-www-form-urlencoded"
	rawContentType  = "application/octet-stream"
)

// Request accumulates a URL, parameters and headers and is consumed by exactly
// one terminal verb call. It is not safe for concurrent use.
type Request struct {
	client  httpclient.Client
	url     string
	params  Params
	headers []httpclient.Header
	body    []byte
	hasBody bool
	used    atomic.Bool
}

// New returns an empty Request dispatched through client.
// A nil client falls back to a resty transport with default settings.
func New(client httpclient.Client) *Request {
	if client == nil {
		client = httpclient.NewRestyClient(0)
	}
	return &Request{client: client}
}

// SetURL sets the base URL. Any query string it carries is kept as is.
func (r *Request) SetURL(u string) *Request {
	r.url = u
	return r
}

// AddParameter sets a parameter; a repeated name overwrites the earlier value.
func (r *Request) AddParameter(name, value string) *Request {
	r.params.Set(name, value)
	return r
}

// AddHeader sets a header. The name is transmitted exactly as given; a repeated
// name overwrites the earlier value.
func (r *Request) AddHeader(name, value string) *Request {
	for i := range r.headers {
		if r.headers[i].Name == name {
			r.headers[i].Value = value
			return r
		}
	}
	r.headers = append(r.headers, httpclient.Header{Name: name, Value: value})
	return r
}

// SetBody sets a raw payload for POST and PUT. When set, parameters are not
// sent in the body. Without a caller Content-Type the payload goes out as
// application/octet-stream.
func (r *Request) SetBody(body []byte) *Request {
	r.body = body
	r.hasBody = true
	return r
}

// Get executes the request as GET.
func (r *Request) Get(ctx context.Context) (*Response, error) { return r.Do(ctx, Get) }

// Post executes the request as POST.
func (r *Request) Post(ctx context.Context) (*Response, error) { return r.Do(ctx, Post) }

// Put executes the request as PUT.
func (r *Request) Put(ctx context.Context) (*Response, error) { return r.Do(ctx, Put) }

// Delete executes the request as DELETE.
func (r *Request) Delete(ctx context.Context) (*Response, error) { return r.Do(ctx, Delete) }

// Do executes the request with verb. Every completed exchange yields a
// Response, whatever its status code; only invalid input or transport errors
// yield an *Error.
func (r *Request) Do(ctx context.Context, verb Verb) (*Response, error) {
	if !verb.Valid() {
		return nil, fmt.Errorf("rest: unsupported verb %q", verb)
	}
	if r.used.Swap(true) {
		return nil, ErrRequestReused
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := r.build(verb)
	if err != nil {
		return nil, withRequest(err, verb, r.url)
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return nil, &Error{Kind: KindTransportFailure, Verb: verb, URL: req.URL, Message: "execute request", Err: err}
	}
	return NewResponse(resp.StatusCode(), resp.Header(), resp.Body()), nil
}

// Build returns the wire request Do would send for verb without sending it.
func (r *Request) Build(verb Verb) (httpclient.Request, error) {
	req, err := r.build(verb)
	if err != nil {
		return httpclient.Request{}, withRequest(err, verb, r.url)
	}
	return req, nil
}

func (r *Request) build(verb Verb) (httpclient.Request, error) {
	if err := ValidateURL(r.url); err != nil {
		return httpclient.Request{}, err
	}
	if err := validateHeaders(r.headers); err != nil {
		return httpclient.Request{}, err
	}

	encoded, err := r.params.Encode()
	if err != nil {
		return httpclient.Request{}, err
	}

	req := httpclient.Request{
		Method:  string(verb),
		URL:     r.url,
		Headers: append([]httpclient.Header(nil), r.headers...),
	}

	switch verb.Routing() {
	case RouteQuery:
		req.URL = ComposeURL(r.url, encoded)
	case RouteBody:
		req.HasBody = true
		contentType := formContentType
		if r.hasBody {
			req.Body = append([]byte(nil), r.body...)
			contentType = rawContentType
		} else {
			req.Body = []byte(encoded)
		}
		if !hasHeader(req.Headers, "Content-Type") {
			req.Headers = append(req.Headers, httpclient.Header{Name: "Content-Type", Value: contentType})
		}
	}
	return req, nil
}

func validateHeaders(headers []httpclient.Header) error {
	for _, h := range headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return newError(KindEncodingFailure, fmt.Sprintf("invalid header name %q", h.Name), nil)
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return newError(KindEncodingFailure, fmt.Sprintf("invalid value for header %q", h.Name), nil)
		}
	}
	return nil
}

func hasHeader(headers []httpclient.Header, name string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

func withRequest(err error, verb Verb, url string) error {
	if e, ok := err.(*Error); ok {
		e.Verb = verb
		e.URL = url
		return e
	}
	return err
}
