package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/vault-rest/internal/app"
	"github.com/samvad-hq/vault-rest/internal/config"
	"github.com/samvad-hq/vault-rest/internal/logger"
	"github.com/samvad-hq/vault-rest/pkg/rest"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vaultrest",
		Short:         "Read and write secrets over the Vault HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newReadCmd(),
		newListCmd(),
		newWriteCmd(),
		newDeleteCmd(),
		newRequestCmd(),
	)
	return root
}

// withRuntime loads config, logging and the runtime around fn.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *app.Runtime) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.DebugObj("vaultrest starting", "config", cfg.Redacted())

	ctx := cmd.Context()
	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize runtime", "error", err.Error())
		return err
	}
	defer rt.Close()

	return fn(ctx, rt)
}

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <path>",
		Short: "Read the secret at path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				secret, err := rt.Vault.Read(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), secret)
			})
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <path>",
		Short: "List keys below path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				keys, err := rt.Vault.List(ctx, args[0])
				if err != nil {
					return err
				}
				if keys == nil {
					keys = []string{}
				}
				return printJSON(cmd.OutOrStdout(), keys)
			})
		},
	}
}

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <path> key=value...",
		Short: "Write key/value pairs to path",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args[1:], "=")
			if err != nil {
				return err
			}
			data := make(map[string]any, len(pairs))
			for _, p := range pairs {
				data[p[0]] = p[1]
			}
			return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				out, err := rt.Vault.Write(ctx, args[0], data)
				if err != nil {
					return err
				}
				if out == nil {
					return nil
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete the secret at path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				return rt.Vault.Delete(ctx, args[0])
			})
		},
	}
}

type requestFlags struct {
	params  []string
	headers []string
	body    string
	dryRun  bool
}

// requestOutput is what the request command prints.
type requestOutput struct {
	Method   string `json:"method"`
	URL      string `json:"url"`
	Status   int    `json:"status,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Body     string `json:"body"`
}

func newRequestCmd() *cobra.Command {
	var f requestFlags
	cmd := &cobra.Command{
		Use:   "request <GET|POST|PUT|DELETE> <url>",
		Short: "Send a raw request with form parameters and headers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			verb, err := rest.ParseVerb(args[0])
			if err != nil {
				return err
			}
			params, err := parsePairs(f.params, "=")
			if err != nil {
				return err
			}
			headers, err := parsePairs(f.headers, ":")
			if err != nil {
				return err
			}

			build := func(req *rest.Request) *rest.Request {
				req.SetURL(args[1])
				for _, p := range params {
					req.AddParameter(p[0], p[1])
				}
				for _, h := range headers {
					req.AddHeader(h[0], h[1])
				}
				if cmd.Flags().Changed("body") {
					req.SetBody([]byte(f.body))
				}
				return req
			}

			if f.dryRun {
				wire, err := build(rest.New(nil)).Build(verb)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), requestOutput{Method: wire.Method, URL: wire.URL, Body: string(wire.Body)})
			}

			return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				req := build(rest.New(rt.HTTP))
				wire, err := req.Build(verb)
				if err != nil {
					return err
				}
				resp, err := req.Do(ctx, verb)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), requestOutput{
					Method:   wire.Method,
					URL:      wire.URL,
					Status:   resp.Status(),
					MimeType: resp.MimeType(),
					Body:     resp.Text(),
				})
			})
		},
	}
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "parameter as name=value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "header as Name: value (repeatable)")
	cmd.Flags().StringVar(&f.body, "body", "", "raw body for POST/PUT, replaces form parameters")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the composed request without sending it")
	return cmd
}

// parsePairs splits each item on the first sep.
func parsePairs(items []string, sep string) ([][2]string, error) {
	out := make([][2]string, 0, len(items))
	for _, item := range items {
		k, v, ok := strings.Cut(item, sep)
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid %q: expected name%svalue", item, sep)
		}
		if sep == ":" {
			v = strings.TrimSpace(v)
		}
		out = append(out, [2]string{k, v})
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
