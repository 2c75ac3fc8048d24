package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dragonfly-hpc/hsnaddr/pkg/cli"
	"github.com/dragonfly-hpc/hsnaddr/pkg/registry"
)

var listJSON bool

type registryEntry struct {
	Host     string `json:"host"`
	NIC      int    `json:"nic"`
	MAC      string `json:"mac"`
	LogAddr  int    `json:"logaddr"`
	Location string `json:"location"`
	Class    string `json:"class"`
	Source   string `json:"source,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List addresses published to the registry",
	Long: `List every NIC address in the registry, sorted by host then NIC.

Examples:
  hsnaddr list
  hsnaddr list --json --ssh-host mgmt1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := dialRegistry(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		records, err := client.List(ctx)
		if err != nil {
			return err
		}

		if listJSON {
			entries := make([]registryEntry, 0, len(records))
			for _, rec := range records {
				entries = append(entries, registryEntry{
					Host:     rec.Host,
					NIC:      rec.NIC,
					MAC:      rec.MAC,
					LogAddr:  int(rec.Addr),
					Location: rec.Addr.String(),
					Class:    rec.Class.String(),
					Source:   rec.Source,
				})
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No addresses registered.")
			return nil
		}

		t := cli.NewTable(cmd.OutOrStdout(), "HOST", "NIC", "MAC", "LOGADDR", "LOCATION", "CLASS", "SOURCE")
		for _, rec := range records {
			t.Row(rec.Host, strconv.Itoa(rec.NIC), rec.MAC, fmt.Sprintf("%05d", int(rec.Addr)),
				rec.Addr.String(), rec.Class.String(), rec.Source)
		}
		t.Flush()
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <host>...",
	Short: "Remove hosts from the registry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := dialRegistry(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		for _, host := range args {
			n, err := client.Delete(ctx, host)
			if err != nil {
				return fmt.Errorf("removing %s: %w", host, err)
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", host, cli.Yellow("not registered"))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: removed %d NIC(s) from %s\n", host, n, registry.Table)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "JSON output")
}
