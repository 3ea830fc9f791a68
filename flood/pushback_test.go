package flood

import (
	"testing"
	"time"

	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/manet"
)

func TestPushbackedAckFromEmptiesWaitList(t *testing.T) {
	now := time.Unix(0, 0)
	l := lsadb.NewInstance(testHeader(1, 1), nil, now)
	p := NewPushbacked(l, map[manet.RouterID]bool{{0, 0, 0, 1}: true, {0, 0, 0, 2}: true}, nil)

	if p.AckFrom(manet.RouterID{0, 0, 0, 1}) {
		t.Fatal("wait list should not be empty after only one ack")
	}
	if !p.AckFrom(manet.RouterID{0, 0, 0, 2}) {
		t.Fatal("wait list should be empty once all routers have acked")
	}
}

func TestPushbackedReceivedFromClearsReportedRouters(t *testing.T) {
	now := time.Unix(0, 0)
	l := lsadb.NewInstance(testHeader(1, 1), nil, now)
	p := NewPushbacked(l, map[manet.RouterID]bool{{0, 0, 0, 1}: true, {0, 0, 0, 2}: true}, nil)

	empty := p.ReceivedFrom(map[manet.RouterID]bool{{0, 0, 0, 1}: true, {0, 0, 0, 2}: true, {0, 0, 0, 9}: true})
	if !empty {
		t.Fatal("wait list should empty once a reflood reports all waited-on routers")
	}
}

func TestPushbackedCancelStopsTimer(t *testing.T) {
	now := time.Unix(0, 0)
	l := lsadb.NewInstance(testHeader(1, 1), nil, now)
	c := &fakeCanceler{}
	p := NewPushbacked(l, nil, c)

	p.Cancel()
	if !c.canceled {
		t.Fatal("Cancel should cancel the underlying timer")
	}
}

type fakeCanceler struct{ canceled bool }

func (f *fakeCanceler) Cancel() { f.canceled = true }

func TestPushbackedFireSetsFloodBack(t *testing.T) {
	now := time.Unix(0, 0)
	l := lsadb.NewInstance(testHeader(1, 1), nil, now)
	p := NewPushbacked(l, nil, nil)

	p.Fire(now)
	if !l.HasFlags(lsadb.FloodBack) {
		t.Fatal("Fire should set the FLOODBACK flag")
	}
}
