package cli

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"github.com/wirecat/wirecat/pkg/cli/internal/parse"
	"github.com/wirecat/wirecat/pkg/cliconfig"
	"github.com/wirecat/wirecat/pkg/wsclient"
)

// connFlags holds the connection flags shared by connect, send and listen.
type connFlags struct {
	headers      []string
	subprotocols []string
	insecure     bool
	ping         time.Duration
	proxy        string
	timeout      time.Duration
	maxMessage   int64
}

// registerConnFlags binds the shared connection flags to a command.
func registerConnFlags(cmd *cobra.Command, cf *connFlags) {
	cmd.Flags().StringArrayVarP(&cf.headers, "header", "H", nil, "Extra handshake header (key:value), repeatable")
	cmd.Flags().StringSliceVar(&cf.subprotocols, "subprotocol", nil, "Subprotocols to offer, in preference order")
	cmd.Flags().BoolVar(&cf.insecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().DurationVar(&cf.ping, "ping", 0, "Keepalive ping interval (0 disables)")
	cmd.Flags().StringVar(&cf.proxy, "proxy", "", "SOCKS5 proxy URL (socks5://host:port)")
	cmd.Flags().DurationVarP(&cf.timeout, "timeout", "t", 30*time.Second, "Handshake timeout")
	cmd.Flags().Int64Var(&cf.maxMessage, "max-message", 0, "Maximum incoming message size in bytes (0 = 10MB)")
}

// resolveTarget merges the selected profile and the command's flags into
// a target URL and client options. Flags win over profile values.
func resolveTarget(cmd *cobra.Command, arg string, cf *connFlags, log *slog.Logger) (string, *wsclient.Options, error) {
	cfg, err := cliconfig.Load(configPath)
	if err != nil {
		return "", nil, err
	}

	var prof *cliconfig.Profile
	if name := cliconfig.ResolveProfileName(profileName, cfg); name != "" {
		prof = cfg.Profile(name)
		if prof == nil {
			return "", nil, fmt.Errorf("profile not found: %s", name)
		}
	}

	target := cliconfig.ResolveURL(arg, prof)
	if target == "" {
		return "", nil, ErrNoURL
	}

	opts, err := buildOptions(cmd, prof, cf, log)
	if err != nil {
		return "", nil, err
	}
	return target, opts, nil
}

// buildOptions turns a profile plus flags into wsclient options.
// Profile values apply first; flags the user actually set override them.
func buildOptions(cmd *cobra.Command, prof *cliconfig.Profile, cf *connFlags, log *slog.Logger) (*wsclient.Options, error) {
	opts := wsclient.DefaultOptions()
	opts.Logger = log

	if prof != nil {
		if len(prof.Headers) > 0 {
			opts.ExtraHeaders = http.Header{}
			for k, v := range prof.Headers {
				opts.ExtraHeaders.Set(k, v)
			}
		}
		opts.Subprotocols = append(opts.Subprotocols, prof.Subprotocols...)
		if prof.Insecure {
			opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		}
		d, err := prof.PingDuration()
		if err != nil {
			return nil, fmt.Errorf("profile pingInterval: %w", err)
		}
		opts.PingInterval = d
		if prof.Proxy != "" {
			u, err := url.Parse(prof.Proxy)
			if err != nil {
				return nil, fmt.Errorf("profile proxy: %w", err)
			}
			opts.Proxy = u
		}
	}

	for _, h := range cf.headers {
		parts := parse.HeaderParts(h)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid header %q (want key:value)", h)
		}
		if opts.ExtraHeaders == nil {
			opts.ExtraHeaders = http.Header{}
		}
		opts.ExtraHeaders.Add(parts[0], parts[1])
	}
	if cmd.Flags().Changed("subprotocol") {
		opts.Subprotocols = cf.subprotocols
	}
	if cf.insecure {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cmd.Flags().Changed("ping") {
		opts.PingInterval = cf.ping
	}
	if cmd.Flags().Changed("timeout") {
		opts.HandshakeTimeout = cf.timeout
	}
	if cf.maxMessage > 0 {
		opts.MaxMessageSize = cf.maxMessage
	}
	if cf.proxy != "" {
		u, err := url.Parse(cf.proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", cf.proxy, err)
		}
		opts.Proxy = u
	}

	return opts, nil
}

// argOrEmpty returns the first positional argument, if any.
func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
