//go:build linux

package macprobe

import (
	"context"
	"fmt"
	"net"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ifreqHwaddr is struct ifreq with the ifr_hwaddr member of the union.
type ifreqHwaddr struct {
	Name   [unix.IFNAMSIZ]byte
	Family uint16
	Data   [14]byte
	_      [8]byte
}

// HardwareAddr queries the kernel with SIOCGIFHWADDR.
func (p *IoctlProbe) HardwareAddr(ctx context.Context, nic int) (string, error) {
	name := p.InterfaceName(nic)
	if len(name) >= unix.IFNAMSIZ {
		return "", fmt.Errorf("interface name %q too long", name)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_IP)
	if err != nil {
		return "", fmt.Errorf("socket: %w", err)
	}
	defer unix.Close(fd)

	var req ifreqHwaddr
	copy(req.Name[:], name)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(unix.SIOCGIFHWADDR), uintptr(unsafe.Pointer(&req)))
	if errno != 0 {
		return "", fmt.Errorf("SIOCGIFHWADDR %s: %w", name, errno)
	}

	return net.HardwareAddr(req.Data[:6]).String(), nil
}
