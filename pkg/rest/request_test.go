package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// echoed mirrors what the test server saw on the wire.
type echoed struct {
	Method      string            `json:"method"`
	RequestURI  string            `json:"request_uri"`
	Body        string            `json:"body"`
	ContentType string            `json:"content_type"`
	Headers     map[string]string `json:"headers"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		headers := make(map[string]string, len(r.Header))
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(echoed{
			Method:      r.Method,
			RequestURI:  r.RequestURI,
			Body:        string(raw),
			ContentType: r.Header.Get("Content-Type"),
			Headers:     headers,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func decodeEcho(t *testing.T, resp *Response) echoed {
	t.Helper()
	var e echoed
	if err := json.Unmarshal(resp.Body(), &e); err != nil {
		t.Fatalf("decode echo: %v", err)
	}
	return e
}

func TestPutPlain(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).SetURL(srv.URL + "/put").Put(context.Background())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if resp.Status() != http.StatusOK {
		t.Fatalf("status = %d", resp.Status())
	}
	if resp.MimeType() != "application/json" {
		t.Fatalf("mime type = %q", resp.MimeType())
	}
	e := decodeEcho(t, resp)
	if e.Method != http.MethodPut || e.RequestURI != "/put" {
		t.Fatalf("unexpected request line %s %s", e.Method, e.RequestURI)
	}
	if e.Body != "" {
		t.Fatalf("expected empty body, got %q", e.Body)
	}
}

func TestPutInsertParams(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).
		SetURL(srv.URL+"/put").
		AddParameter("foo", "bar").
		AddParameter("apples", "oranges").
		AddParameter("multi part", "this parameter has whitespace in its name and value").
		Put(context.Background())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	e := decodeEcho(t, resp)
	if e.RequestURI != "/put" {
		t.Fatalf("url modified: %s", e.RequestURI)
	}
	if e.ContentType != formContentType {
		t.Fatalf("content type = %q", e.ContentType)
	}
	form, err := url.ParseQuery(e.Body)
	if err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if form.Get("foo") != "bar" || form.Get("apples") != "oranges" {
		t.Fatalf("unexpected form %v", form)
	}
	if got := form.Get("multi part"); got != "this parameter has whitespace in its name and value" {
		t.Fatalf("multi part = %q", got)
	}
}

func TestPutKeepsExistingQuery(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).
		SetURL(srv.URL+"/put?hot=cold").
		AddParameter("foo", "bar").
		Put(context.Background())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	e := decodeEcho(t, resp)
	if e.RequestURI != "/put?hot=cold" {
		t.Fatalf("url = %s", e.RequestURI)
	}
	if e.Body != "foo=bar" {
		t.Fatalf("body = %q", e.Body)
	}
}

func TestPostSendsFormBody(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).SetURL(srv.URL+"/post").AddParameter("a b", "c&d").Post(context.Background())
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	e := decodeEcho(t, resp)
	if e.Method != http.MethodPost || e.RequestURI != "/post" {
		t.Fatalf("unexpected request line %s %s", e.Method, e.RequestURI)
	}
	if e.Body != "a+b=c%26d" {
		t.Fatalf("body = %q", e.Body)
	}
}

func TestGetAppendsParameters(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).SetURL(srv.URL+"/put").AddParameter("foo", "bar").Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	e := decodeEcho(t, resp)
	if e.Method != http.MethodGet || e.RequestURI != "/put?foo=bar" {
		t.Fatalf("unexpected request line %s %s", e.Method, e.RequestURI)
	}
	if e.Body != "" {
		t.Fatalf("GET must not send a body, got %q", e.Body)
	}
}

func TestGetMergesIntoExistingQuery(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).
		SetURL(srv.URL+"/get?hot=cold&x=1").
		AddParameter("foo", "bar baz").
		Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := decodeEcho(t, resp).RequestURI; got != "/get?hot=cold&x=1&foo=bar+baz" {
		t.Fatalf("url = %s", got)
	}
}

func TestDeleteRoutesParametersToQuery(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).SetURL(srv.URL+"/delete").AddParameter("version", "3").Delete(context.Background())
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	e := decodeEcho(t, resp)
	if e.Method != http.MethodDelete || e.RequestURI != "/delete?version=3" || e.Body != "" {
		t.Fatalf("unexpected request %+v", e)
	}
}

func TestHeadersAreTransmitted(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).
		SetURL(srv.URL+"/put").
		AddHeader("black", "white").
		AddHeader("day", "night").
		AddHeader("two-part", "Note that headers are sent as given").
		Put(context.Background())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	h := decodeEcho(t, resp).Headers
	if h["Black"] != "white" || h["Day"] != "night" {
		t.Fatalf("headers = %v", h)
	}
	if h["Two-Part"] != "Note that headers are sent as given" {
		t.Fatalf("Two-Part = %q", h["Two-Part"])
	}
}

func TestBuildKeepsHeaderNamesVerbatim(t *testing.T) {
	req, err := New(nil).
		SetURL("https://example.org/put").
		AddHeader("two-part", "x").
		AddHeader("X-MiXeD", "y").
		AddHeader("two-part", "z").
		Build(Put)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(req.Headers) != 3 {
		t.Fatalf("expected 2 supplied headers plus content type, got %v", req.Headers)
	}
	if req.Headers[0].Name != "two-part" || req.Headers[0].Value != "z" {
		t.Fatalf("first header = %+v", req.Headers[0])
	}
	if req.Headers[1].Name != "X-MiXeD" {
		t.Fatalf("second header = %+v", req.Headers[1])
	}
}

func TestCallerContentTypeWins(t *testing.T) {
	req, err := New(nil).
		SetURL("https://example.org/put").
		AddHeader("content-type", "text/plain").
		AddParameter("a", "b").
		Build(Put)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(req.Headers) != 1 || req.Headers[0].Value != "text/plain" {
		t.Fatalf("headers = %v", req.Headers)
	}
}

func TestRawBodyReplacesParameters(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).
		SetURL(srv.URL+"/post").
		AddHeader("Content-Type", "application/json").
		AddParameter("ignored", "1").
		SetBody([]byte(`{"k":"v"}`)).
		Post(context.Background())
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	e := decodeEcho(t, resp)
	if e.Body != `{"k":"v"}` || e.ContentType != "application/json" {
		t.Fatalf("unexpected echo %+v", e)
	}
}

func TestRawBodyWithoutContentTypeIsOctetStream(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := New(nil).
		SetURL(srv.URL+"/put").
		SetBody([]byte("plain words")).
		Put(context.Background())
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	e := decodeEcho(t, resp)
	if e.Body != "plain words" || e.ContentType != rawContentType {
		t.Fatalf("unexpected echo %+v", e)
	}
}

func TestNon2xxIsAResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("sealed"))
	}))
	defer srv.Close()

	resp, err := New(nil).SetURL(srv.URL).Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Status() != http.StatusServiceUnavailable || resp.IsSuccess() {
		t.Fatalf("status = %d", resp.Status())
	}
	if resp.Text() != "sealed" || resp.MimeType() != "text/plain" {
		t.Fatalf("unexpected response %q %q", resp.Text(), resp.MimeType())
	}
}

func TestInvalidURLFailsBeforeIO(t *testing.T) {
	client := &countingClient{}
	for _, raw := range []string{"", "not a url", "/relative/path", "ftp://example.org/x", "http://"} {
		_, err := New(client).SetURL(raw).Get(context.Background())
		if !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("%q: expected ErrInvalidURL, got %v", raw, err)
		}
	}
	if client.calls != 0 {
		t.Fatalf("transport was called %d times", client.calls)
	}
}

func TestTransportFailureIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(nil).SetURL(addr).Get(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Unwrap() == nil {
		t.Fatalf("expected wrapped cause, got %#v", err)
	}
}

func TestInvalidHeaderIsEncodingFailure(t *testing.T) {
	client := &countingClient{}
	_, err := New(client).SetURL("https://example.org").AddHeader("bad header", "x").Get(context.Background())
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
	_, err = New(client).SetURL("https://example.org").AddHeader("X-Ok", "line\r\nbreak").Get(context.Background())
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("transport was called %d times", client.calls)
	}
}

func TestRequestIsSingleUse(t *testing.T) {
	client := &countingClient{}
	req := New(client).SetURL("https://example.org/get").AddParameter("a", "1")

	if _, err := req.Get(context.Background()); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if _, err := req.Get(context.Background()); !errors.Is(err, ErrRequestReused) {
		t.Fatalf("expected ErrRequestReused, got %v", err)
	}
	if client.calls != 1 || client.last.URL != "https://example.org/get?a=1" {
		t.Fatalf("calls=%d last=%+v", client.calls, client.last)
	}
}
