package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dragonfly-hpc/hsnaddr/pkg/cli"
	"github.com/dragonfly-hpc/hsnaddr/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.hsnaddr/settings.json.

Settings provide defaults for flags and positional arguments:
  - default_class:     Switch class when none is given (else 2)
  - probe_config:      Probe configuration YAML (--config)
  - registry_addr:     Registry Redis address (--registry-addr)
  - registry_ssh_host: SSH tunnel host for the registry (--ssh-host)
  - registry_ssh_user: SSH tunnel user (--ssh-user)
  - machine_name:      Node name prefix for placement (-m)
  - key_file:          Diagnostic output read by placement (--key)

Examples:
  hsnaddr settings show
  hsnaddr settings set default_class 3
  hsnaddr settings set registry_ssh_host mgmt1
  hsnaddr settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n\n", cli.Bold("Settings file:"), settings.DefaultSettingsPath())

		t := cli.NewTable(cmd.OutOrStdout(), "SETTING", "VALUE")
		for _, name := range settings.Names {
			value, _ := s.Get(name)
			t.Row(name, cli.OrNotSet(value))
		}
		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting, value := args[0], args[1]

		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}

		if err := s.Set(setting, value); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s set to: %s\n", setting, value)
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		value, err := s.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(not set)")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		s.Clear()
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
