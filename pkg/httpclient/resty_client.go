package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// Options tunes the underlying transport.
type Options struct {
	Timeout            time.Duration
	InsecureSkipVerify bool
	// RootCAPEM replaces the system pool when set.
	RootCAPEM []byte
	UserAgent string
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	c, _ := NewRestyClientWithOptions(Options{Timeout: timeout})
	return c
}

// NewRestyClientWithOptions creates a RestyClient with TLS and timeout settings applied.
func NewRestyClientWithOptions(opts Options) (*RestyClient, error) {
	c, err := newRestyBaseClient(opts)
	if err != nil {
		return nil, err
	}
	return &RestyClient{client: c}, nil
}

// newRestyBaseClient creates a new resty.Client from opts.
func newRestyBaseClient(opts Options) (*resty.Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	c := resty.New()
	c.SetTimeout(opts.Timeout)
	c.SetRetryCount(0)
	if opts.UserAgent != "" {
		c.SetHeader("User-Agent", opts.UserAgent)
	}

	if opts.InsecureSkipVerify || len(opts.RootCAPEM) > 0 {
		tlsCfg := &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // opt-in via config
		}
		if len(opts.RootCAPEM) > 0 {
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(opts.RootCAPEM) {
				return nil, errors.New("no certificates found in root CA PEM")
			}
			tlsCfg.RootCAs = pool
		}
		c.SetTLSClientConfig(tlsCfg)
	}
	return c, nil
}

// Do performs req with the specified context. Header names are sent verbatim.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	for _, h := range req.Headers {
		if defaultedHeader(h.Name) {
			rr.SetHeader(h.Name, h.Value)
			continue
		}
		rr.SetHeaderVerbatim(h.Name, h.Value)
	}
	if req.HasBody {
		body := req.Body
		if body == nil {
			// resty rejects a nil []byte body.
			body = []byte{}
		}
		rr.SetBody(body)
	}

	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// defaultedHeader reports whether resty or net/http fill name in when it is
// absent. Both look these up by canonical key only, so they are set canonically.
func defaultedHeader(name string) bool {
	switch http.CanonicalHeaderKey(name) {
	case "Content-Type", "User-Agent", "Accept", "Accept-Encoding":
		return true
	}
	return false
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
