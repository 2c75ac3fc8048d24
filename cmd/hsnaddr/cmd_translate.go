package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dragonfly-hpc/hsnaddr/pkg/cli"
	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
)

var (
	translateClass string
	jsonOutput     bool
)

type translation struct {
	MAC      string `json:"mac"`
	Class    string `json:"class"`
	Group    int    `json:"group"`
	Switch   int    `json:"switch"`
	Port     int    `json:"physical_port"`
	LogAddr  int    `json:"logaddr"`
	Location string `json:"location,omitempty"`
	Error    string `json:"error,omitempty"`
}

var translateCmd = &cobra.Command{
	Use:   "translate <mac>...",
	Short: "Translate MAC addresses to logical addresses",
	Long: `Translate one or more MAC addresses under a switch class.

Examples:
  hsnaddr translate 00:40:a6:82:f3:0c
  hsnaddr translate ec:0d:9a:00:28:da --class 3 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		class, err := switchClass(translateClass)
		if err != nil {
			return err
		}

		m := newMetrics()
		defer writeMetrics(m)

		tr := &logaddr.Translator{Debug: debug}
		results := make([]translation, 0, len(args))
		failed := 0
		for _, mac := range args {
			res := translation{MAC: mac, Class: class.String(), LogAddr: int(logaddr.Invalid)}
			if c, err := logaddr.DecodeMAC(mac); err == nil {
				res.Group, res.Switch, res.Port = c.Group, c.Switch, c.PhysicalPort
			}
			addr, err := tr.Translate(mac, class)
			m.ObserveTranslation(class, err)
			if err != nil {
				res.Error = err.Error()
				failed++
			} else {
				res.LogAddr = int(addr)
				res.Location = addr.String()
			}
			results = append(results, res)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		} else {
			t := cli.NewTable(cmd.OutOrStdout(), "MAC", "CLASS", "GROUP", "SWITCH", "PHYS", "LOGADDR", "LOCATION")
			for _, r := range results {
				if r.Error != "" {
					t.Row(r.MAC, r.Class, "-", "-", "-", "-", cli.Red(r.Error))
					continue
				}
				t.Row(r.MAC, r.Class, strconv.Itoa(r.Group), strconv.Itoa(r.Switch), strconv.Itoa(r.Port),
					fmt.Sprintf("%05d", r.LogAddr), r.Location)
			}
			t.Flush()
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d addresses could not be translated", failed, len(args))
		}
		return nil
	},
}

var locationCmd = &cobra.Command{
	Use:   "location <logaddr|GGG.SS.PP>...",
	Short: "Convert between logical addresses and locations",
	Long: `Decode logical addresses (decimal) or locations (GGG.SS.PP) into their
group, switch and logical port.

Examples:
  hsnaddr location 2612
  hsnaddr location 005.03.04`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := cli.NewTable(cmd.OutOrStdout(), "INPUT", "LOGADDR", "LOCATION", "GROUP", "SWITCH", "PORT")
		for _, arg := range args {
			addr, err := parseAddrArg(arg)
			if err != nil {
				t.Flush()
				return err
			}
			g, s, p := addr.Unpack()
			t.Row(arg, fmt.Sprintf("%05d", int(addr)), addr.String(),
				strconv.Itoa(g), strconv.Itoa(s), strconv.Itoa(p))
		}
		t.Flush()
		return nil
	},
}

// parseAddrArg accepts a decimal logical address or a GGG.SS.PP location.
func parseAddrArg(s string) (logaddr.LogicalAddress, error) {
	if strings.Contains(s, ".") {
		return logaddr.ParseLocation(s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return logaddr.Invalid, fmt.Errorf("invalid logical address %q", s)
	}
	addr := logaddr.LogicalAddress(n)
	g, sw, p := addr.Unpack()
	if n < 0 || logaddr.Pack(g, sw, p) != addr {
		return logaddr.Invalid, fmt.Errorf("logical address %d out of range", n)
	}
	return addr, nil
}

var tablesCmd = &cobra.Command{
	Use:   "tables [name]",
	Short: "Show the port wiring tables",
	Long: `Show the physical to logical port wiring tables. Unwired ports show "-".

Tables: class0, class1, mountain, class2plus (river).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := logaddr.Tables()
		if len(args) == 1 {
			tbl, ok := logaddr.TableByName(args[0])
			if !ok {
				return fmt.Errorf("unknown table: %s (valid: class0, class1, mountain, class2plus)", args[0])
			}
			tables = []logaddr.NamedTable{{Name: args[0], Table: tbl}}
		}

		headers := []string{"PHYS"}
		for _, nt := range tables {
			headers = append(headers, strings.ToUpper(nt.Name))
		}
		t := cli.NewTable(cmd.OutOrStdout(), headers...)
		for phys := 0; phys < logaddr.PortCount; phys++ {
			row := []string{strconv.Itoa(phys)}
			for i := range tables {
				if port, ok := tables[i].Table.Lookup(phys); ok {
					row = append(row, strconv.Itoa(port))
				} else {
					row = append(row, "-")
				}
			}
			t.Row(row...)
		}
		t.Flush()
		return nil
	},
}

func init() {
	translateCmd.Flags().StringVarP(&translateClass, "class", "c", "", "Switch class 0-4 (default: default_class setting, else 2)")
	translateCmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
}
