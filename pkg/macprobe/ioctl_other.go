//go:build !linux

package macprobe

import "context"

// HardwareAddr is only implemented on linux.
func (p *IoctlProbe) HardwareAddr(ctx context.Context, nic int) (string, error) {
	return "", ErrUnsupported
}
