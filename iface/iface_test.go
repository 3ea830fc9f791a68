package iface

import "testing"

func TestDRCandidateRequiresBroadcastOrNBMA(t *testing.T) {
	bc := New("eth0", Broadcast, id(1), Params{Priority: 1})
	if !bc.DRCandidate() {
		t.Fatal("broadcast interface with priority > 0 should be a DR candidate")
	}

	p2p := New("eth1", PointToPoint, id(1), Params{Priority: 1})
	if p2p.DRCandidate() {
		t.Fatal("point-to-point interfaces never participate in DR election")
	}

	zeroPrio := New("eth2", Broadcast, id(1), Params{Priority: 0})
	if zeroPrio.DRCandidate() {
		t.Fatal("priority-0 broadcast interface should not be a DR candidate")
	}
}

func TestNeighborCreatesOnFirstLookup(t *testing.T) {
	ifc := New("eth0", Broadcast, id(1), Params{})
	n := ifc.Neighbor(id(2))
	if n == nil {
		t.Fatal("Neighbor should never return nil")
	}
	if again := ifc.Neighbor(id(2)); again != n {
		t.Fatal("Neighbor should return the same instance on repeated lookup")
	}
	if len(ifc.Neighbors) != 1 {
		t.Fatalf("Neighbors map has %d entries, want 1", len(ifc.Neighbors))
	}
}

type fakeCanceler struct{ canceled bool }

func (f *fakeCanceler) Cancel() { f.canceled = true }

func TestSetHelloTimerCancelsPrevious(t *testing.T) {
	ifc := New("eth0", Broadcast, id(1), Params{})
	first := &fakeCanceler{}
	ifc.SetHelloTimer(first)
	second := &fakeCanceler{}
	ifc.SetHelloTimer(second)

	if !first.canceled {
		t.Fatal("previous hello timer should be canceled when replaced")
	}
	if second.canceled {
		t.Fatal("new hello timer should not be canceled")
	}
}

func TestSetDeadTimerPerNeighbor(t *testing.T) {
	ifc := New("eth0", Broadcast, id(1), Params{})
	a := &fakeCanceler{}
	ifc.SetDeadTimer(id(2), a)
	b := &fakeCanceler{}
	ifc.SetDeadTimer(id(2), b)

	if !a.canceled {
		t.Fatal("previous dead timer for the same neighbor should be canceled")
	}

	c := &fakeCanceler{}
	ifc.SetDeadTimer(id(3), c)
	if b.canceled {
		t.Fatal("dead timer for a different neighbor should not be touched")
	}
}
