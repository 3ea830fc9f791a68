//go:build !linux
// +build !linux

package ospf3

import "net"

// setSockOpts is a no-op on platforms without the Linux raw-socket options.
func setSockOpts(pc net.PacketConn) error { return nil }
