//go:build linux
// +build linux

package ospf3

import (
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// setSockOpts applies the raw-socket options x/net/ipv6 does not expose:
// OSPFv3 packets are sized against the interface MTU by the sender, so
// kernel fragmentation is disabled to surface oversize sends as errors,
// and path MTU discovery is pinned to the link.
func setSockOpts(pc net.PacketConn) error {
	sc, ok := pc.(interface {
		SyscallConn() (syscall.RawConn, error)
	})
	if !ok {
		return nil
	}

	raw, err := sc.SyscallConn()
	if err != nil {
		return fmt.Errorf("failed to access raw connection: %w", err)
	}

	var serr error
	err = raw.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_DONTFRAG, 1)
		if serr != nil {
			return
		}
		serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_MTU_DISCOVER, unix.IPV6_PMTUDISC_INTERFACE)
	})
	if err != nil {
		return err
	}
	return serr
}
