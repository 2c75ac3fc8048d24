package macprobe

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/dragonfly-hpc/hsnaddr/pkg/util"
)

// DefaultIfcfgFiles are the network configuration files searched for a
// hardware address. Their names vary between machines.
var DefaultIfcfgFiles = []string{
	"/etc/sysconfig/network/ifcfg-hsn",
	"/etc/sysconfig/network/ifcfg-hsn{nic}",
	"/etc/sysconfig/network-scripts/ifcfg-enp94s0",
	"/etc/sysconfig/network-scripts/ifcfg-enp92s0",
}

// ifcfgKeys are the keys that carry a hardware address in ifcfg files.
var ifcfgKeys = map[string]bool{"LLADDR": true, "MACADDR": true}

// IfcfgProbe reads LLADDR or MACADDR from sysconfig ifcfg files.
type IfcfgProbe struct {
	// Paths are tried in order; {nic} and {ifname} are substituted.
	Paths  []string
	Prefix string
}

// Name implements Probe.
func (p *IfcfgProbe) Name() string { return ProbeIfcfg }

// HardwareAddr returns the first LLADDR or MACADDR value found.
func (p *IfcfgProbe) HardwareAddr(ctx context.Context, nic int) (string, error) {
	ifname := (&IoctlProbe{Prefix: p.Prefix}).InterfaceName(nic)
	for _, pattern := range p.Paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		path := expandPath(pattern, ifname, nic)
		mac, err := readIfcfg(path)
		if err != nil {
			util.WithProbe(ProbeIfcfg).Debugf("skipping %s: %v", path, err)
			continue
		}
		if mac != "" {
			return mac, nil
		}
	}
	return "", fmt.Errorf("no LLADDR or MACADDR in %d ifcfg files: %w", len(p.Paths), ErrNotFound)
}

// readIfcfg returns the first hardware address key in path. A missing file
// yields an empty result.
func readIfcfg(path string) (string, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		Loose:                   true,
		KeyValueDelimiters:      "=",
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, path)
	if err != nil {
		return "", err
	}
	for _, key := range cfg.Section(ini.DefaultSection).Keys() {
		if !ifcfgKeys[key.Name()] {
			continue
		}
		if v := strings.Trim(strings.TrimSpace(key.Value()), `'"`); v != "" {
			return v, nil
		}
	}
	return "", nil
}
