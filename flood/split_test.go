package flood

import (
	"testing"

	ospf3 "github.com/ospf6d/ospf6"
)

func fullLSA(bodyLen int) ospf3.FullLSA {
	return ospf3.FullLSA{
		Header: ospf3.LSAHeader{
			LSA: ospf3.LSA{
				Type:              ospf3.RouterLSA,
				AdvertisingRouter: ospf3.ID{1, 1, 1, 1},
			},
			Length: uint16(20 + bodyLen),
		},
		Body: make([]byte, bodyLen),
	}
}

func TestSplitUpdatesSinglePacketWhenItFits(t *testing.T) {
	h := ospf3.Header{RouterID: ospf3.ID{1, 1, 1, 1}}
	out := SplitUpdates(h, []ospf3.FullLSA{fullLSA(100), fullLSA(100)}, 1500)
	if len(out) != 1 {
		t.Fatalf("got %d packets, want 1", len(out))
	}
	if got := len(out[0].LSAs); got != 2 {
		t.Fatalf("got %d LSAs in packet, want 2", got)
	}
}

func TestSplitUpdatesFragmentsAtMTU(t *testing.T) {
	h := ospf3.Header{RouterID: ospf3.ID{1, 1, 1, 1}}

	// Each LSA is 20+480 = 500 bytes; budget per packet is 1280-20 = 1260,
	// so two fit per packet and the fifth spills into a third.
	var lsas []ospf3.FullLSA
	for i := 0; i < 5; i++ {
		lsas = append(lsas, fullLSA(480))
	}

	out := SplitUpdates(h, lsas, 1280)
	if len(out) != 3 {
		t.Fatalf("got %d packets, want 3", len(out))
	}
	var total int
	for _, u := range out {
		total += len(u.LSAs)
	}
	if total != 5 {
		t.Fatalf("packets carry %d LSAs, want 5", total)
	}
}

func TestSplitUpdatesOversizeLSAGetsOwnPacket(t *testing.T) {
	h := ospf3.Header{}
	out := SplitUpdates(h, []ospf3.FullLSA{fullLSA(10), fullLSA(4000), fullLSA(10)}, 1280)
	if len(out) != 3 {
		t.Fatalf("got %d packets, want 3", len(out))
	}
	if len(out[1].LSAs) != 1 || out[1].LSAs[0].WireLen() != 4020 {
		t.Fatal("oversize LSA should travel alone")
	}
}

func TestSplitUpdatesEmpty(t *testing.T) {
	if out := SplitUpdates(ospf3.Header{}, nil, 1500); out != nil {
		t.Fatalf("got %d packets for empty input, want none", len(out))
	}
}
