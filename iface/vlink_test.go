package iface

import (
	"net"
	"testing"

	ospf3 "github.com/ospf6d/ospf6"
)

func TestDeriveVLinkEndpoints(t *testing.T) {
	remote := &ospf3.IntraAreaPrefixLSABody{
		ReferencedLSType: ospf3.RouterLSA,
		Prefixes: []ospf3.Prefix{
			{Length: 64, Options: 0, Address: net.ParseIP("2001:db8:1::")},
			{Length: 128, Options: ospf3.LABit, Address: net.ParseIP("2001:db8::2")},
		},
	}

	src, dst, err := DeriveVLinkEndpoints(net.ParseIP("2001:db8::1"), remote)
	if err != nil {
		t.Fatalf("failed to derive endpoints: %v", err)
	}
	if got := net.IP(src[:]); !got.Equal(net.ParseIP("2001:db8::1")) {
		t.Fatalf("source = %v, want 2001:db8::1", got)
	}
	if got := net.IP(dst[:]); !got.Equal(net.ParseIP("2001:db8::2")) {
		t.Fatalf("destination = %v, want 2001:db8::2", got)
	}
}

func TestDeriveVLinkEndpointsRejectsLinkLocalSource(t *testing.T) {
	remote := &ospf3.IntraAreaPrefixLSABody{
		Prefixes: []ospf3.Prefix{{Length: 128, Options: ospf3.LABit, Address: net.ParseIP("2001:db8::2")}},
	}
	if _, _, err := DeriveVLinkEndpoints(net.ParseIP("fe80::1"), remote); err == nil {
		t.Fatal("link-local source should be rejected")
	}
}

func TestDeriveVLinkEndpointsRequiresLAPrefix(t *testing.T) {
	remote := &ospf3.IntraAreaPrefixLSABody{
		Prefixes: []ospf3.Prefix{{Length: 64, Address: net.ParseIP("2001:db8:1::")}},
	}
	if _, _, err := DeriveVLinkEndpoints(net.ParseIP("2001:db8::1"), remote); err == nil {
		t.Fatal("remote LSA without an LA prefix should be rejected")
	}
}

func TestNewVirtualIsUnicastOnly(t *testing.T) {
	var src, dst [16]byte
	copy(src[:], net.ParseIP("2001:db8::1"))
	copy(dst[:], net.ParseIP("2001:db8::2"))

	ifc := NewVirtual("vlink0", [4]byte{1, 1, 1, 1}, Params{}, src, dst)
	if !ifc.UnicastOnly() {
		t.Fatal("virtual link interfaces must be unicast-only")
	}
	if ifc.DRCandidate() {
		t.Fatal("virtual link interfaces never elect a DR")
	}
}
