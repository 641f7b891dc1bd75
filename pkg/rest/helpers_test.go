package rest

import (
	"context"
	"net/http"

	"github.com/samvad-hq/vault-rest/pkg/httpclient"
)

// countingClient records requests and answers 200 without network access.
type countingClient struct {
	calls int
	last  httpclient.Request
}

func (c *countingClient) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	c.calls++
	c.last = req
	return stubResponse{status: http.StatusOK}, nil
}

type stubResponse struct {
	status int
	header http.Header
	body   []byte
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return s.header }
