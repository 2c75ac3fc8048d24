package macprobe

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// DefaultSysfsPath is the per-interface address attribute.
const DefaultSysfsPath = "/sys/class/net/{ifname}/address"

// SysfsProbe reads the address attribute the kernel exports in sysfs.
type SysfsProbe struct {
	Path   string
	Prefix string
}

// Name implements Probe.
func (p *SysfsProbe) Name() string { return ProbeSysfs }

// HardwareAddr returns the last non-empty line of the address file.
func (p *SysfsProbe) HardwareAddr(ctx context.Context, nic int) (string, error) {
	pattern := p.Path
	if pattern == "" {
		pattern = DefaultSysfsPath
	}
	ifname := (&IoctlProbe{Prefix: p.Prefix}).InterfaceName(nic)
	path := expandPath(pattern, ifname, nic)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var mac string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			mac = line
		}
	}
	if mac == "" {
		return "", fmt.Errorf("%s is empty: %w", path, ErrNotFound)
	}
	return mac, nil
}
