package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openapi-it/openapi-client-go/internal/app"
	"github.com/openapi-it/openapi-client-go/internal/config"
	"github.com/openapi-it/openapi-client-go/internal/logger"
)

// cli owns the cobra tree and the session opened for the running command.
type cli struct {
	root *cobra.Command
	out  io.Writer

	envFile    string
	logLevel   string
	testEnv    bool
	production bool

	sess *app.Session
}

func newCLI(out io.Writer) *cli {
	c := &cli{out: out}

	c.root = &cobra.Command{
		Use:           "openapi",
		Short:         "Command line client for the OpenAPI.it OAuth service and APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}

	flags := c.root.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", config.DefaultEnvFile, "dotenv file read before the environment")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&c.testEnv, "test", false, "use the test OAuth environment")
	flags.BoolVar(&c.production, "production", false, "use the production OAuth environment")
	c.root.MarkFlagsMutuallyExclusive("test", "production")

	c.root.AddCommand(
		c.scopesCmd(),
		c.tokenCmd(),
		c.countersCmd(),
		c.requestCmd(),
		c.profilesCmd(),
	)
	return c
}

// open loads configuration, applies flag overrides and starts the session.
func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(c.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if c.testEnv {
		cfg.TestMode = true
	}
	if c.production {
		cfg.TestMode = false
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("openapi cli starting", "config", cfg.Redacted())

	sess, err := app.NewSession(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	c.sess = sess
	return nil
}

func (c *cli) close() {
	if c.sess != nil {
		if err := c.sess.Close(); err != nil {
			logger.ErrorObj("session close failed", "error", err.Error())
		}
		c.sess = nil
	}
	_ = logger.Close()
}

func (c *cli) print(body string) error {
	_, err := fmt.Fprintln(c.out, body)
	return err
}

func (c *cli) scopesCmd() *cobra.Command {
	var limit bool
	cmd := &cobra.Command{
		Use:   "scopes",
		Short: "List the scopes available to the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := c.sess.Scopes(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return c.print(body)
		},
	}
	cmd.Flags().BoolVar(&limit, "limit", false, "ask the service for a reduced listing")
	return cmd
}

func (c *cli) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create, list and revoke access tokens",
	}
	cmd.AddCommand(
		c.tokenCreateCmd(),
		c.tokenListCmd(),
		c.tokenDeleteCmd(),
		c.tokenLocalCmd(),
	)
	return cmd
}

func (c *cli) tokenCreateCmd() *cobra.Command {
	var in app.CreateTokenInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a token for a profile or explicit scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := c.sess.CreateToken(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.print(body)
		},
	}
	cmd.Flags().StringVar(&in.Profile, "profile", "", "token profile id")
	cmd.Flags().StringArrayVar(&in.Scopes, "scope", nil, "scope as METHOD:host/path (repeatable)")
	cmd.Flags().Uint64Var(&in.TTL, "ttl", 0, "token lifetime in seconds")
	return cmd
}

func (c *cli) tokenListCmd() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List server-side tokens granting a scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := c.sess.Tokens(cmd.Context(), scope)
			if err != nil {
				return err
			}
			return c.print(body)
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "scope to filter by")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func (c *cli) tokenDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Revoke a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := c.sess.DeleteToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(body)
		},
	}
}

func (c *cli) tokenLocalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "local",
		Short: "Show unexpired tokens recorded on this machine",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			records, err := c.sess.LocalTokens()
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			return c.print(string(raw))
		},
	}
}

func (c *cli) countersCmd() *cobra.Command {
	var export bool
	cmd := &cobra.Command{
		Use:   "counters <period> <date>",
		Short: "Show usage counters for a period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := c.sess.Counters(cmd.Context(), args[0], args[1], export)
			if body != "" {
				if perr := c.print(body); perr != nil && err == nil {
					err = perr
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&export, "export", false, "publish the counters to the configured sinks")
	return cmd
}

func (c *cli) requestCmd() *cobra.Command {
	var (
		data   string
		params []string
	)
	cmd := &cobra.Command{
		Use:   "request <METHOD> <URL>",
		Short: "Call an OpenAPI.it service with the Bearer token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}
			body, err := c.sess.Request(cmd.Context(), args[0], args[1], data, query)
			if err != nil {
				return err
			}
			return c.print(body)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	cmd.Flags().StringArrayVar(&params, "param", nil, "query parameter as key=value (repeatable)")
	return cmd
}

// profileView is the listing shape of a token profile.
type profileView struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Scopes      []string `json:"scopes"`
	TTL         string   `json:"ttl"`
}

func (c *cli) profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the token profiles usable with token create --profile",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			all := c.sess.Profiles()
			views := make([]profileView, 0, len(all))
			for _, p := range all {
				views = append(views, profileView{
					ID:          p.ID,
					Description: p.Description,
					Scopes:      p.Scopes,
					TTL:         p.TTL().String(),
				})
			}
			raw, err := json.MarshalIndent(views, "", "  ")
			if err != nil {
				return err
			}
			return c.print(string(raw))
		},
	}
}

func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}
