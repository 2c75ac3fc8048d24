package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dragonfly-hpc/hsnaddr/pkg/cli"
	"github.com/dragonfly-hpc/hsnaddr/pkg/logaddr"
	"github.com/dragonfly-hpc/hsnaddr/pkg/metrics"
	"github.com/dragonfly-hpc/hsnaddr/pkg/resolver"
	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

var publishFlag bool

// resolveNICs builds a resolver from the probe config and resolves nics.
func resolveNICs(ctx context.Context, nics int, class logaddr.SwitchClass, m *metrics.Metrics) ([]resolver.Record, error) {
	host, err := hostname()
	if err != nil {
		return nil, err
	}
	cfg, err := probeConfig()
	if err != nil {
		return nil, err
	}
	chain, err := cfg.Chain(host)
	if err != nil {
		return nil, err
	}

	util.Debugf("resolving %d NICs on %s under %s", nics, host, class)
	r := resolver.New(host, chain, class, m)
	r.Translator.Debug = debug
	return r.ResolveAll(ctx, nics), nil
}

// newMetrics returns a registry when --metrics-textfile is set, else nil.
func newMetrics() *metrics.Metrics {
	if metricsTextfile == "" {
		return nil
	}
	return metrics.New()
}

func writeMetrics(m *metrics.Metrics) {
	if m == nil {
		return
	}
	if err := m.WriteTextfile(metricsTextfile); err != nil {
		util.Warnf("Could not write metrics to %s: %v", metricsTextfile, err)
	}
}

// printDiagnostic writes one line per record to out, stopping at the first
// record that did not translate, which is reported on errOut. It returns
// errFailed in that case.
func printDiagnostic(out, errOut io.Writer, records []resolver.Record) error {
	for _, rec := range records {
		if !rec.OK() {
			fmt.Fprintln(errOut, rec.FailureLine())
			return errFailed
		}
		fmt.Fprintln(out, rec.Line())
	}
	return nil
}

func runDiagnostic(cmd *cobra.Command, args []string) error {
	nics, class, err := parseDiagArgs(args)
	if err != nil {
		return err
	}

	m := newMetrics()
	defer writeMetrics(m)

	records, err := resolveNICs(cmd.Context(), nics, class, m)
	if err != nil {
		return err
	}

	if publishFlag {
		if err := publishRecords(cmd.Context(), records); err != nil {
			util.Errorf("Could not publish: %v", err)
		}
	}

	return printDiagnostic(cmd.OutOrStdout(), cmd.ErrOrStderr(), records)
}

func publishRecords(ctx context.Context, records []resolver.Record) error {
	client, err := dialRegistry(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	n, err := client.Publish(ctx, records)
	if err != nil {
		return err
	}
	util.Infof("published %d of %d NICs", n, len(records))
	return nil
}

var publishCmd = &cobra.Command{
	Use:   "publish [num_nics [class]]",
	Short: "Resolve this node's NICs and publish them to the registry",
	Long: `Resolve this node's NICs and publish every translated address to the
registry. NICs that fail to translate are shown but not published.

Examples:
  hsnaddr publish 4
  hsnaddr publish 4 3 --ssh-host mgmt1`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nics, class, err := parseDiagArgs(args)
		if err != nil {
			return err
		}

		m := newMetrics()
		defer writeMetrics(m)

		records, err := resolveNICs(cmd.Context(), nics, class, m)
		if err != nil {
			return err
		}

		t := cli.NewTable(cmd.OutOrStdout(), "HOST", "NIC", "MAC", "SOURCE", "LOGADDR", "LOCATION", "STATUS")
		for _, rec := range records {
			addr, loc := "-", "-"
			if rec.OK() {
				addr, loc = fmt.Sprintf("%05d", int(rec.Addr)), rec.Addr.String()
			}
			t.Row(rec.Host, fmt.Sprint(rec.NIC), rec.MAC, rec.Source, addr, loc, cli.Status(rec.Err))
		}
		t.Flush()

		if err := publishRecords(cmd.Context(), records); err != nil {
			return fmt.Errorf("publishing: %w", err)
		}
		if resolver.FirstFailure(records) >= 0 {
			return fmt.Errorf("some NICs could not be translated")
		}
		return nil
	},
}
