package macprobe

import "strconv"

// DefaultInterfacePrefix names HSN interfaces hsn0, hsn1, ...
const DefaultInterfacePrefix = "hsn"

// IoctlProbe asks the kernel for the interface's hardware address.
type IoctlProbe struct {
	// Prefix is prepended to the NIC index to form the interface name.
	// Test systems without HSN devices use "eth".
	Prefix string
}

// Name implements Probe.
func (p *IoctlProbe) Name() string { return ProbeIoctl }

// InterfaceName returns the kernel interface name for nic.
func (p *IoctlProbe) InterfaceName(nic int) string {
	prefix := p.Prefix
	if prefix == "" {
		prefix = DefaultInterfacePrefix
	}
	return prefix + strconv.Itoa(nic)
}
