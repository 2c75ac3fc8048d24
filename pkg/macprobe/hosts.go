package macprobe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DefaultHostsFile is searched by HostsProbe.
const DefaultHostsFile = "/etc/hosts"

var macToken = regexp.MustCompile(`^([a-fA-F0-9]{2}[:]){5}([a-fA-F0-9]{2})$`)

// HostsProbe scans a hosts file for a MAC address listed on a line that
// mentions the node's hostname. Some sites record HSN MACs there.
type HostsProbe struct {
	Path     string
	Hostname string
}

// Name implements Probe.
func (p *HostsProbe) Name() string { return ProbeHosts }

// HardwareAddr returns the first MAC-shaped token on a line containing the
// hostname.
func (p *HostsProbe) HardwareAddr(ctx context.Context, nic int) (string, error) {
	if p.Hostname == "" {
		return "", fmt.Errorf("hostname required")
	}
	path := p.Path
	if path == "" {
		path = DefaultHostsFile
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, p.Hostname) {
			continue
		}
		for _, tok := range strings.Fields(line) {
			if macToken.MatchString(tok) {
				return tok, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return "", fmt.Errorf("no MAC for %s in %s: %w", p.Hostname, path, ErrNotFound)
}
