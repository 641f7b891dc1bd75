package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/vault-rest/internal/config"
	"github.com/samvad-hq/vault-rest/internal/logger"
	"github.com/samvad-hq/vault-rest/internal/storage"
	"github.com/samvad-hq/vault-rest/pkg/audit"
	"github.com/samvad-hq/vault-rest/pkg/httpclient"
	"github.com/samvad-hq/vault-rest/pkg/vault"
)

// Runtime holds the wired transport, cache, audit fanout and secrets client.
// It manages their lifecycles and must be closed after use.
type Runtime struct {
	HTTP   httpclient.Client
	Vault  *vault.Client
	fanout *audit.Fanout
	store  storage.Store
	log    logger.Logger
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	transport, err := httpclient.NewRestyClientWithOptions(httpclient.Options{
		Timeout:            cfg.HTTPTimeout,
		InsecureSkipVerify: cfg.TLSSkipVerify,
		RootCAPEM:          cfg.TLSCACertPEM,
		UserAgent:          cfg.AppName,
	})
	if err != nil {
		return nil, fmt.Errorf("init transport: %w", err)
	}
	if cfg.TLSSkipVerify {
		log.WarnObj("tls verification disabled", "vault_addr", cfg.VaultAddr)
	}

	fanout, err := buildFanout(ctx, cfg.AuditSinksFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		TTL:             cfg.CacheTTL,
		CleanupInterval: cfg.CacheCleanupInterval,
	}
	store, err := storage.NewStore(cfg.CacheType, cfg.CachePath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("cache initialized", "cache_config", map[string]any{
		"type":                     cfg.CacheType,
		"path":                     cfg.CachePath,
		"ttl_seconds":              int(cfg.CacheTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.CacheCleanupInterval.Seconds()),
	})

	client, err := vault.NewClient(vault.Config{
		Address:       cfg.VaultAddr,
		Token:         cfg.VaultToken,
		Namespace:     cfg.VaultNamespace,
		KVVersion:     cfg.KVVersion,
		MaxRetries:    cfg.MaxRetries,
		RetryInterval: cfg.RetryInterval,
	},
		vault.WithHTTPClient(transport),
		vault.WithCache(store),
		vault.WithAuditor(fanout),
		vault.WithLogger(log),
	)
	if err != nil {
		_ = fanout.Close()
		_ = store.Close()
		return nil, fmt.Errorf("init vault client: %w", err)
	}

	return &Runtime{
		HTTP:   transport,
		Vault:  client,
		fanout: fanout,
		store:  store,
		log:    log,
	}, nil
}

// buildFanout loads audit sinks; an unset file means no auditing.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*audit.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return audit.NewFanout(nil), nil
	}

	reg, err := audit.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load audit sinks registry: %w", err)
	}
	enabled := reg.Enabled()

	fanout, err := audit.DefaultRegistry().Open(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("open audit sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   c.ID,
			"type": c.Type,
		})
	}
	log.InfoObj("audit sinks loaded", "audit_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return fanout, nil
}

// Close releases the cache and audit sinks, logging any errors encountered.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("audit sinks close failed", "error", err)
	}
}
