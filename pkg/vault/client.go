package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/vault-rest/internal/domain"
	"github.com/samvad-hq/vault-rest/pkg/audit"
	"github.com/samvad-hq/vault-rest/pkg/httpclient"
	"github.com/samvad-hq/vault-rest/pkg/rest"
)

const (
	headerToken     = "X-Vault-Token"
	headerNamespace = "X-Vault-Namespace"
	headerRequest   = "X-Vault-Request"
)

// Config describes how to reach the secrets API.
type Config struct {
	Address       string
	Token         string
	Namespace     string
	KVVersion     int
	MaxRetries    int
	RetryInterval time.Duration
}

// Client performs logical secret operations on top of the rest request builder.
type Client struct {
	cfg     Config
	http    httpclient.Client
	cache   Cache
	auditor Auditor
	log     Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for every request.
func WithHTTPClient(c httpclient.Client) Option { return func(cl *Client) { cl.http = c } }

// WithCache enables caching of read responses.
func WithCache(c Cache) Option { return func(cl *Client) { cl.cache = c } }

// WithAuditor publishes an audit event per operation.
func WithAuditor(a Auditor) Option { return func(cl *Client) { cl.auditor = a } }

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.Address = strings.TrimRight(strings.TrimSpace(cfg.Address), "/")
	if err := rest.ValidateURL(cfg.Address); err != nil {
		return nil, fmt.Errorf("vault address: %w", err)
	}
	if cfg.KVVersion == 0 {
		cfg.KVVersion = 2
	}
	if cfg.KVVersion != 1 && cfg.KVVersion != 2 {
		return nil, fmt.Errorf("unsupported kv version %d", cfg.KVVersion)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	c := &Client{cfg: cfg, log: noopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(0)
	}
	return c, nil
}

// Read fetches the secret at path. A missing secret yields a *ResponseError
// for which IsNotFound is true.
func (c *Client) Read(ctx context.Context, path string) (*domain.Secret, error) {
	if len(splitPath(path)) == 0 {
		return nil, ErrEmptyPath
	}
	p := apiPath(c.cfg.KVVersion, opRead, path)
	evt := audit.NewEvent(opRead, string(rest.Get), p)
	start := time.Now()

	if body, ok := c.cacheGet(p); ok {
		secret, err := c.decodeSecret(path, body)
		if err == nil {
			evt.CacheHit = true
			evt.Status = http.StatusOK
			c.finish(ctx, &evt, start, nil)
			return secret, nil
		}
		c.cacheDelete(p)
	}

	resp, err := c.execute(ctx, &evt, rest.Get, p, nil, nil)
	if err != nil {
		c.finish(ctx, &evt, start, err)
		return nil, err
	}
	if resp.Status() != http.StatusOK {
		err = newResponseError(opRead, path, resp)
		c.finish(ctx, &evt, start, err)
		return nil, err
	}

	body := resp.Body()
	secret, err := c.decodeSecret(path, body)
	if err != nil {
		c.finish(ctx, &evt, start, err)
		return nil, err
	}
	c.cachePut(p, body)
	c.finish(ctx, &evt, start, nil)
	return secret, nil
}

// List returns the keys directly below path.
func (c *Client) List(ctx context.Context, path string) ([]string, error) {
	if len(splitPath(path)) == 0 {
		return nil, ErrEmptyPath
	}
	p := apiPath(c.cfg.KVVersion, opList, path)
	evt := audit.NewEvent(opList, string(rest.Get), p)
	start := time.Now()

	resp, err := c.execute(ctx, &evt, rest.Get, p, map[string]string{"list": "true"}, nil)
	if err != nil {
		c.finish(ctx, &evt, start, err)
		return nil, err
	}
	if resp.Status() == http.StatusNotFound {
		// an empty folder is reported as 404
		c.finish(ctx, &evt, start, nil)
		return nil, nil
	}
	if resp.Status() != http.StatusOK {
		err = newResponseError(opList, path, resp)
		c.finish(ctx, &evt, start, err)
		return nil, err
	}

	var payload struct {
		Data struct {
			Keys []string `json:"keys"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		err = fmt.Errorf("decode list response: %w", err)
		c.finish(ctx, &evt, start, err)
		return nil, err
	}
	c.finish(ctx, &evt, start, nil)
	return payload.Data.Keys, nil
}

// Write stores data at path. The server reply, if any, is returned; a 204
// yields a nil secret.
func (c *Client) Write(ctx context.Context, path string, data map[string]any) (*domain.Secret, error) {
	if len(splitPath(path)) == 0 {
		return nil, ErrEmptyPath
	}
	p := apiPath(c.cfg.KVVersion, opWrite, path)
	evt := audit.NewEvent(opWrite, string(rest.Post), p)
	start := time.Now()

	var payload any = data
	if c.cfg.KVVersion == 2 {
		payload = map[string]any{"data": data}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("encode secret: %w", err)
		c.finish(ctx, &evt, start, err)
		return nil, err
	}

	resp, err := c.execute(ctx, &evt, rest.Post, p, nil, body)
	if err != nil {
		c.finish(ctx, &evt, start, err)
		return nil, err
	}
	c.cacheDelete(apiPath(c.cfg.KVVersion, opRead, path))

	switch resp.Status() {
	case http.StatusNoContent:
		c.finish(ctx, &evt, start, nil)
		return nil, nil
	case http.StatusOK:
		var out domain.Secret
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			err = fmt.Errorf("decode write response: %w", err)
			c.finish(ctx, &evt, start, err)
			return nil, err
		}
		out.Path = path
		c.finish(ctx, &evt, start, nil)
		return &out, nil
	default:
		err = newResponseError(opWrite, path, resp)
		c.finish(ctx, &evt, start, err)
		return nil, err
	}
}

// Delete removes the secret at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	if len(splitPath(path)) == 0 {
		return ErrEmptyPath
	}
	p := apiPath(c.cfg.KVVersion, opDelete, path)
	evt := audit.NewEvent(opDelete, string(rest.Delete), p)
	start := time.Now()

	resp, err := c.execute(ctx, &evt, rest.Delete, p, nil, nil)
	if err != nil {
		c.finish(ctx, &evt, start, err)
		return err
	}
	c.cacheDelete(apiPath(c.cfg.KVVersion, opRead, path))

	if resp.Status() != http.StatusOK && resp.Status() != http.StatusNoContent {
		err = newResponseError(opDelete, path, resp)
		c.finish(ctx, &evt, start, err)
		return err
	}
	c.finish(ctx, &evt, start, nil)
	return nil
}

// execute sends one logical request, retrying transport failures and server
// errors up to MaxRetries times. Each attempt uses a fresh rest.Request.
func (c *Client) execute(ctx context.Context, evt *audit.Event, verb rest.Verb, path string, params map[string]string, body []byte) (*rest.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target := c.cfg.Address + "/v1/" + path

	for attempt := 1; ; attempt++ {
		evt.Attempts = attempt

		req := c.newRequest(target)
		for k, v := range params {
			req.AddParameter(k, v)
		}
		if body != nil {
			req.AddHeader("Content-Type", "application/json").SetBody(body)
		}

		resp, err := req.Do(ctx, verb)
		if resp != nil {
			evt.Status = resp.Status()
		}
		if !retryable(resp, err) || attempt > c.cfg.MaxRetries {
			return resp, err
		}

		c.log.WarnObj("vault request failed; retrying", "vault_retry", map[string]any{
			"method":  string(verb),
			"path":    path,
			"attempt": attempt,
			"status":  evt.Status,
			"error":   errString(err),
		})

		timer := time.NewTimer(c.cfg.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("vault %s %s: %w", verb, path, ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *Client) newRequest(target string) *rest.Request {
	req := rest.New(c.http).SetURL(target).AddHeader(headerRequest, "true")
	if c.cfg.Token != "" {
		req.AddHeader(headerToken, c.cfg.Token)
	}
	if c.cfg.Namespace != "" {
		req.AddHeader(headerNamespace, c.cfg.Namespace)
	}
	return req
}

func retryable(resp *rest.Response, err error) bool {
	if err != nil {
		return errors.Is(err, rest.ErrTransport)
	}
	return resp.Status() >= http.StatusInternalServerError
}

func (c *Client) decodeSecret(path string, body []byte) (*domain.Secret, error) {
	var secret domain.Secret
	if err := json.Unmarshal(body, &secret); err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}
	secret.Path = path
	if c.cfg.KVVersion == 2 {
		inner, _ := secret.Data["data"].(map[string]any)
		meta, _ := secret.Data["metadata"].(map[string]any)
		secret.Data = inner
		secret.Metadata = meta
	}
	return &secret, nil
}

// finish stamps the event and publishes it. Audit failures never fail the operation.
func (c *Client) finish(ctx context.Context, evt *audit.Event, start time.Time, err error) {
	evt.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		evt.Error = err.Error()
	}

	logObj := map[string]any{
		"operation": evt.Operation,
		"path":      evt.Path,
		"status":    evt.Status,
		"attempts":  evt.Attempts,
		"cache_hit": evt.CacheHit,
		"elapsed":   evt.DurationMs,
	}
	if err != nil {
		logObj["error"] = err.Error()
		c.log.ErrorObj("vault operation failed", "vault_op", logObj)
	} else {
		c.log.DebugObj("vault operation completed", "vault_op", logObj)
	}

	if c.auditor == nil {
		return
	}
	if _, aerr := c.auditor.Publish(ctx, *evt); aerr != nil {
		c.log.WarnObj("audit publish failed", "audit_error", aerr.Error())
	}
}

// cacheKey scopes entries to the token that fetched them.
func (c *Client) cacheKey(p string) string {
	sum := sha256.Sum256([]byte(c.cfg.Token))
	return hex.EncodeToString(sum[:8]) + "|" + c.cfg.Namespace + "|" + p
}

func (c *Client) cacheGet(p string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(c.cacheKey(p))
	if err != nil {
		c.log.WarnObj("cache read failed", "cache_error", err.Error())
		return nil, false
	}
	return body, ok
}

func (c *Client) cachePut(p string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(c.cacheKey(p), body); err != nil {
		c.log.WarnObj("cache write failed", "cache_error", err.Error())
	}
}

func (c *Client) cacheDelete(p string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(c.cacheKey(p)); err != nil {
		c.log.WarnObj("cache evict failed", "cache_error", err.Error())
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
