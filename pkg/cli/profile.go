package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/wirecat/wirecat/pkg/cli/internal/output"
	"github.com/wirecat/wirecat/pkg/cliconfig"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage connection profiles",
	Long: `Manage the named connection profiles in the config file.

A profile bundles a URL with headers, subprotocols and TLS settings so
that 'wirecat connect' needs no flags. Create profiles with 'wirecat init'.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load(configPath)
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.JSON(cfg)
		}

		if len(cfg.Profiles) == 0 {
			fmt.Println("No profiles configured. Create one with: wirecat init")
			return nil
		}

		names := make([]string, 0, len(cfg.Profiles))
		for name := range cfg.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		w := output.Table()
		fmt.Fprintln(w, "NAME\tURL\tDEFAULT\tDESCRIPTION")
		for _, name := range names {
			p := cfg.Profiles[name]
			def := ""
			if name == cfg.Default {
				def = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.URL, def, p.Description)
		}
		return w.Flush()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load(configPath)
		if err != nil {
			return err
		}

		name := args[0]
		p := cfg.Profile(name)
		if p == nil {
			return fmt.Errorf("profile not found: %s", name)
		}

		printResult(p, func() {
			fmt.Printf("Profile: %s", name)
			if name == cfg.Default {
				fmt.Print(" (default)")
			}
			fmt.Println()
			fmt.Printf("  URL:          %s\n", p.URL)
			if len(p.Subprotocols) > 0 {
				fmt.Printf("  Subprotocols: %v\n", p.Subprotocols)
			}
			for k, v := range p.Headers {
				fmt.Printf("  Header:       %s: %s\n", k, v)
			}
			if p.PingInterval != "" {
				fmt.Printf("  Ping:         every %s\n", p.PingInterval)
			}
			if p.Insecure {
				fmt.Println("  TLS:          certificate verification disabled")
			}
			if p.Proxy != "" {
				fmt.Printf("  Proxy:        %s\n", p.Proxy)
			}
			if p.Description != "" {
				fmt.Printf("  Description:  %s\n", p.Description)
			}
		})
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.SetDefault(args[0]); err != nil {
			return err
		}
		if err := cliconfig.Save(configPath, cfg); err != nil {
			return err
		}
		printResult(map[string]string{"default": args[0]}, func() {
			fmt.Printf("Default profile is now %q\n", args[0])
		})
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.RemoveProfile(args[0]); err != nil {
			return err
		}
		if err := cliconfig.Save(configPath, cfg); err != nil {
			return err
		}
		printResult(map[string]string{"removed": args[0]}, func() {
			fmt.Printf("Removed profile %q\n", args[0])
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileRemoveCmd)
}
