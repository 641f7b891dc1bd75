package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samvad-hq/vault-rest/pkg/httpclient"
	"github.com/samvad-hq/vault-rest/pkg/rest"
)

// httpSink posts each event as JSON to a webhook through the rest builder.
type httpSink struct {
	id      string
	verb    rest.Verb
	url     string
	headers [][2]string
	client  httpclient.Client
	log     Logger
}

func newHTTPSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}
	if err := rest.ValidateURL(cfg.HTTP.URL); err != nil {
		return nil, fmt.Errorf("sink %q: %w", cfg.ID, err)
	}
	verb, err := rest.ParseVerb(cfg.HTTP.Method)
	if err != nil {
		return nil, fmt.Errorf("sink %q: %w", cfg.ID, err)
	}
	if verb.Routing() != rest.RouteBody {
		return nil, fmt.Errorf("sink %q: method %s cannot carry an event body", cfg.ID, verb)
	}

	names := make([]string, 0, len(cfg.HTTP.Headers))
	for name := range cfg.HTTP.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	headers := make([][2]string, 0, len(names))
	for _, name := range names {
		headers = append(headers, [2]string{name, cfg.HTTP.Headers[name]})
	}

	return &httpSink{
		id:      cfg.ID,
		verb:    verb,
		url:     cfg.HTTP.URL,
		headers: headers,
		client:  httpclient.NewRestyClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     forSink(log, cfg),
	}, nil
}

func (h *httpSink) ID() string   { return h.id }
func (h *httpSink) Type() string { return TypeHTTP }

func (h *httpSink) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req := rest.New(h.client).SetURL(h.url)
	for _, hdr := range h.headers {
		req.AddHeader(hdr[0], hdr[1])
	}
	resp, err := req.AddHeader("Content-Type", "application/json").SetBody(payload).Do(ctx, h.verb)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook status %d: %s", resp.Status(), snippet(resp.Text()))
	}
	h.log.DebugObj("http audit sink delivered event", "audit_http_delivery", map[string]any{
		"status": resp.Status(),
	})
	return nil
}

func snippet(body string) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(body)
}
