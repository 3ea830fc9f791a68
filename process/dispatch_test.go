package process

import (
	"testing"
	"time"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/neighbor"
)

func manetInterface(p *Process, mode iface.FloodingMode) *iface.Interface {
	a := p.Area([4]byte{0, 0, 0, 0}, 0)
	ifc := iface.New("mnet0", iface.MANETLink, p.RouterID, iface.Params{
		FloodingMode:     mode,
		HelloInterval:    2 * time.Second,
		DeadInterval:     6 * time.Second,
		RxmtInterval:     5 * time.Second,
		PushbackInterval: 2 * time.Second,
		AckInterval:      time.Second,
	})
	a.Interfaces = append(a.Interfaces, ifc)
	return ifc
}

func fullNeighbor(ifc *iface.Interface, rid [4]byte) *neighbor.Neighbor {
	n := ifc.Neighbor(rid)
	n.State = neighbor.Full
	return n
}

func wireLSA(rid [4]byte, seq uint32) ospf3.FullLSA {
	body := []byte{0, 0, 0, 0}
	h := ospf3.LSAHeader{
		LSA: ospf3.LSA{
			Type:              ospf3.RouterLSA,
			LinkStateID:       ospf3.ID{0, 0, 0, 1},
			AdvertisingRouter: ospf3.ID(rid),
		},
		SequenceNumber: seq,
		Length:         uint16(20 + len(body)),
	}
	h.Checksum = ospf3.ChecksumLSA(h, body)
	return ospf3.FullLSA{Header: h, Body: body}
}

func TestHandleLSUpdateDropsBadChecksum(t *testing.T) {
	p, _, _ := testProcess(t)
	ifc := manetInterface(p, iface.MPRSDCDS)
	a := p.Areas[[4]byte{0, 0, 0, 0}]
	from := fullNeighbor(ifc, [4]byte{2, 2, 2, 2})

	l := wireLSA([4]byte{9, 9, 9, 9}, 0x80000001)
	l.Header.Checksum ^= 0xffff

	now := time.Unix(1000, 0)
	p.HandleLSUpdate(now, a, ifc, from, &ospf3.LinkStateUpdate{LSAs: []ospf3.FullLSA{l}}, true)

	if a.LSDB.Len() != 0 {
		t.Fatal("an LSA with a bad checksum must never be installed")
	}
	if p.FloodCounters()["dropped_checksum"] != 1 {
		t.Fatal("checksum drop should be counted")
	}
}

func TestHandleLSUpdateInstallsAndStagesAck(t *testing.T) {
	p, _, _ := testProcess(t)
	ifc := manetInterface(p, iface.Classic)
	a := p.Areas[[4]byte{0, 0, 0, 0}]
	from := fullNeighbor(ifc, [4]byte{2, 2, 2, 2})

	now := time.Unix(1000, 0)
	l := wireLSA([4]byte{9, 9, 9, 9}, 0x80000001)
	p.HandleLSUpdate(now, a, ifc, from, &ospf3.LinkStateUpdate{LSAs: []ospf3.FullLSA{l}}, true)

	if a.LSDB.Len() != 1 {
		t.Fatalf("LSDB has %d entries, want 1", a.LSDB.Len())
	}
	if ifc.LSAckList.Len() == 0 {
		t.Fatal("a MANET interface must stage a coalesced multicast ack")
	}
}

func TestPushbackCanceledByRefloodCoverage(t *testing.T) {
	p, _, _ := testProcess(t)
	ifc := manetInterface(p, iface.MPRSDCDS)
	a := p.Areas[[4]byte{0, 0, 0, 0}]

	// Clique A (us), B, C: L arrives from B, we are not an AOR for B, so
	// we push back while waiting on C.
	b := fullNeighbor(ifc, [4]byte{2, 2, 2, 2})
	c := fullNeighbor(ifc, [4]byte{3, 3, 3, 3})
	b.MANET.RNL = map[[4]byte]bool{}
	c.MANET.RNL = map[[4]byte]bool{{2, 2, 2, 2}: true, p.RouterID: true}

	now := time.Unix(1000, 0)
	l := wireLSA([4]byte{2, 2, 2, 2}, 0x80000001)
	p.HandleLSUpdate(now, a, ifc, b, &ospf3.LinkStateUpdate{LSAs: []ospf3.FullLSA{l}}, true)

	st := p.manetFor(ifc)
	if len(st.pushbacks) != 1 {
		t.Fatalf("held %d pushbacks, want 1", len(st.pushbacks))
	}

	// C refloods the same instance: C's RNL covers everyone we were
	// waiting on, so the pushback cancels before its timer fires.
	p.HandleLSUpdate(now.Add(time.Second), a, ifc, c, &ospf3.LinkStateUpdate{LSAs: []ospf3.FullLSA{l}}, true)

	if len(st.pushbacks) != 0 {
		t.Fatal("a reflood covering the backup-wait list must cancel the pushback")
	}
	if p.FloodCounters()["pushback_canceled"] == 0 {
		t.Fatal("cancellation should be counted")
	}
}

func TestHandleLSAckClearsRetransAndCaches(t *testing.T) {
	p, _, _ := testProcess(t)
	ifc := manetInterface(p, iface.Classic)
	from := fullNeighbor(ifc, [4]byte{2, 2, 2, 2})

	now := time.Unix(1000, 0)
	l := wireLSA([4]byte{9, 9, 9, 9}, 0x80000001)
	inst := lsadb.NewInstance(l.Header, l.Body, now)
	inst.Ref()
	from.Lists.Retrans.Add(inst, now)
	inst.IncRetrans()

	p.HandleLSAck(now, ifc, from, &ospf3.LinkStateAcknowledgement{LSAs: []ospf3.LSAHeader{l.Header}})

	if _, ok := from.Lists.Retrans.Lookup(inst.Key()); ok {
		t.Fatal("an explicit ack must clear the retrans_list entry")
	}
	if inst.RetransCount() != 0 {
		t.Fatalf("RetransCount = %d, want 0", inst.RetransCount())
	}
	if len(from.MANET.AckCache) != 1 {
		t.Fatalf("ack cache holds %d entries, want 1", len(from.MANET.AckCache))
	}
}

func TestHandleHelloBringsNeighborToInit(t *testing.T) {
	p, _, _ := testProcess(t)
	ifc := manetInterface(p, iface.MDRSICDS)
	a := p.Areas[[4]byte{0, 0, 0, 0}]

	now := time.Unix(1000, 0)
	h := &ospf3.Hello{
		Header:             ospf3.Header{RouterID: ospf3.ID{2, 2, 2, 2}},
		HelloInterval:      ifc.Params.HelloInterval,
		RouterDeadInterval: ifc.Params.DeadInterval,
	}
	p.HandleHello(now, a, ifc, h)

	n := ifc.Neighbor([4]byte{2, 2, 2, 2})
	if n.State != neighbor.Init {
		t.Fatalf("state after first Hello = %v, want Init", n.State)
	}

	// A Hello listing us advances to 2-Way and, with MDR defaults, into
	// adjacency formation.
	h.NeighborIDs = []ospf3.ID{ospf3.ID(p.RouterID)}
	p.HandleHello(now.Add(time.Second), a, ifc, h)
	if n.State < neighbor.Twoway {
		t.Fatalf("state after 2-way Hello = %v, want at least Twoway", n.State)
	}
}

func TestHandleHelloRejectsTimerMismatch(t *testing.T) {
	p, _, _ := testProcess(t)
	ifc := manetInterface(p, iface.Classic)
	a := p.Areas[[4]byte{0, 0, 0, 0}]

	h := &ospf3.Hello{
		Header:             ospf3.Header{RouterID: ospf3.ID{2, 2, 2, 2}},
		HelloInterval:      ifc.Params.HelloInterval + time.Second,
		RouterDeadInterval: ifc.Params.DeadInterval,
	}
	p.HandleHello(time.Unix(1000, 0), a, ifc, h)

	if len(ifc.Neighbors) != 0 {
		t.Fatal("a Hello with mismatched intervals must not create a neighbor")
	}
}
