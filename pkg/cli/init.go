package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/wirecat/wirecat/pkg/cli/internal/parse"
	"github.com/wirecat/wirecat/pkg/cliconfig"
)

var initFlags struct {
	name         string
	url          string
	headers      []string
	subprotocols []string
	ping         string
	insecure     bool
	makeDefault  bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a connection profile",
	Long: `Create a named connection profile in the config file.

Without --url this runs an interactive form. With --url the profile is
created directly from the flags, which is useful in scripts.

The first profile automatically becomes the default.`,
	Example: `  # Interactive setup
  wirecat init

  # Non-interactive setup
  wirecat init --name staging --url wss://staging.example.com/ws --default

  # With an auth header and keepalive
  wirecat init --name prod --url wss://api.example.com/ws \
    -H "Authorization:Bearer token" --ping 30s`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initFlags.name, "name", "", "Profile name")
	initCmd.Flags().StringVar(&initFlags.url, "url", "", "WebSocket URL (skips the interactive form)")
	initCmd.Flags().StringArrayVarP(&initFlags.headers, "header", "H", nil, "Extra handshake header (key:value), repeatable")
	initCmd.Flags().StringSliceVar(&initFlags.subprotocols, "subprotocol", nil, "Subprotocols to offer")
	initCmd.Flags().StringVar(&initFlags.ping, "ping", "", "Keepalive ping interval (e.g. 30s, empty disables)")
	initCmd.Flags().BoolVar(&initFlags.insecure, "insecure", false, "Skip TLS certificate verification")
	initCmd.Flags().BoolVar(&initFlags.makeDefault, "default", false, "Make this the default profile")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := cliconfig.Load(configPath)
	if err != nil {
		return err
	}

	// If the URL flag was omitted, gather everything interactively.
	if !cmd.Flags().Changed("url") {
		if err := runInitForm(cfg); err != nil {
			return err
		}
	}

	name := initFlags.name
	if name == "" {
		name = "default"
	}

	prof := &cliconfig.Profile{
		URL:          initFlags.url,
		Subprotocols: initFlags.subprotocols,
		Insecure:     initFlags.insecure,
		PingInterval: initFlags.ping,
	}
	if len(initFlags.headers) > 0 {
		prof.Headers = parse.Headers(initFlags.headers)
	}
	if err := prof.Validate(); err != nil {
		return err
	}

	if err := cfg.AddProfile(name, prof); err != nil {
		return err
	}
	if initFlags.makeDefault || cfg.Default == "" {
		_ = cfg.SetDefault(name)
	}
	if err := cliconfig.Save(configPath, cfg); err != nil {
		return err
	}

	path, err := cliconfig.Path(configPath)
	if err != nil {
		path = "config file"
	}

	printResult(map[string]any{
		"profile": name,
		"path":    path,
		"default": cfg.Default == name,
	}, func() {
		fmt.Printf("Saved profile %q to %s\n", name, path)
		fmt.Println()
		fmt.Println("Next steps:")
		if cfg.Default == name {
			fmt.Println("  wirecat connect")
		} else {
			fmt.Printf("  wirecat connect --profile %s\n", name)
		}
	})
	return nil
}

// runInitForm collects profile settings interactively into initFlags.
func runInitForm(cfg *cliconfig.Config) error {
	var headerStr, subprotoStr string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Profile name").
				Placeholder("staging").
				Value(&initFlags.name).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("name is required")
					}
					if cfg.Profile(s) != nil {
						return fmt.Errorf("profile %q already exists", s)
					}
					return nil
				}),
			huh.NewInput().
				Title("WebSocket URL").
				Placeholder("wss://api.example.com/ws").
				Value(&initFlags.url).
				Validate(func(s string) error {
					p := cliconfig.Profile{URL: s}
					return p.Validate()
				}),
			huh.NewInput().
				Title("Extra headers (key:value, comma separated, optional)").
				Value(&headerStr),
			huh.NewInput().
				Title("Subprotocols (comma separated, optional)").
				Value(&subprotoStr),
			huh.NewSelect[string]().
				Title("Keepalive pings").
				Options(
					huh.NewOption("disabled", ""),
					huh.NewOption("every 30 seconds", "30s"),
					huh.NewOption("every minute", "1m"),
				).
				Value(&initFlags.ping),
			huh.NewConfirm().
				Title("Skip TLS certificate verification?").
				Value(&initFlags.insecure),
			huh.NewConfirm().
				Title("Make this the default profile?").
				Value(&initFlags.makeDefault),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	initFlags.headers = parse.SplitTrim(headerStr, ",")
	initFlags.subprotocols = parse.SplitTrim(subprotoStr, ",")
	return nil
}
