package iface

import (
	"errors"
	"fmt"
	"net"

	ospf3 "github.com/ospf6d/ospf6"
)

var errNoEndpoint = errors.New("no virtual link endpoint address")

// DeriveVLinkEndpoints computes the unicast source and destination
// addresses for a virtual link across a transit area. The source is the
// local router's global address on the forwarding interface; the
// destination is the LA-flagged prefix the remote ABR advertises in its
// Intra-Area-Prefix-LSA (RFC 5340, section 4.4.3.8).
func DeriveVLinkEndpoints(localGlobal net.IP, remote *ospf3.IntraAreaPrefixLSABody) (src, dst [16]byte, err error) {
	local := localGlobal.To16()
	if local == nil || local.IsLinkLocalUnicast() {
		return src, dst, fmt.Errorf("iface: virtual link source must be a global address: %w", errNoEndpoint)
	}

	p, ok := remote.LAPrefix()
	if !ok {
		return src, dst, fmt.Errorf("iface: remote intra-area-prefix-LSA carries no LA-flagged prefix: %w", errNoEndpoint)
	}

	copy(src[:], local)
	copy(dst[:], p.Address.To16())
	return src, dst, nil
}

// NewVirtual creates the pseudo-interface for a virtual link over a
// transit area. A virtual link never joins multicast groups; every packet
// it emits goes unicast to dst.
func NewVirtual(name string, routerID [4]byte, p Params, src, dst [16]byte) *Interface {
	ifc := New(name, Virtual, routerID, p)
	ifc.VLinkSource = src
	ifc.VLinkDest = dst
	return ifc
}

// UnicastOnly reports whether every packet on this interface must be sent
// unicast rather than to the AllSPFRouters/AllDRouters groups.
func (ifc *Interface) UnicastOnly() bool {
	return ifc.Type == Virtual
}
