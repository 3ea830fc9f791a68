package lsadb

import (
	"testing"
	"time"

	ospf3 "github.com/ospf6d/ospf6"
)

func routerLSA(adv byte, lsid byte) ospf3.LSAHeader {
	return ospf3.LSAHeader{
		LSA: ospf3.LSA{
			Type:              ospf3.LSType(0x2001),
			LinkStateID:       ospf3.ID{0, 0, 0, lsid},
			AdvertisingRouter: ospf3.ID{0, 0, 0, adv},
		},
		SequenceNumber: uint32(InitialSequenceNumber),
	}
}

func networkLSA(adv byte, lsid byte) ospf3.LSAHeader {
	h := routerLSA(adv, lsid)
	h.LSA.Type = ospf3.LSType(0x2002)
	return h
}

func TestDatabaseAddLookupRemove(t *testing.T) {
	d := NewDatabase("test")
	now := time.Unix(0, 0)

	i1 := NewInstance(routerLSA(1, 0), nil, now)
	d.Add(i1, now)

	got, ok := d.Lookup(i1.Key())
	if !ok || got != i1 {
		t.Fatalf("Lookup after Add = %v, %v; want %v, true", got, ok, i1)
	}
	if i1.Database() != d {
		t.Fatal("Instance.Database() should point back at d")
	}

	d.Remove(i1.Key())
	if _, ok := d.Lookup(i1.Key()); ok {
		t.Fatal("Lookup after Remove should fail")
	}
	if i1.Database() != nil {
		t.Fatal("Instance.Database() should be nil after Remove")
	}
}

func TestDatabaseOrderingAndTraversal(t *testing.T) {
	d := NewDatabase("test")
	now := time.Unix(0, 0)

	// Insert out of order; traversal must come back sorted.
	insts := []*Instance{
		NewInstance(routerLSA(3, 0), nil, now),
		NewInstance(routerLSA(1, 0), nil, now),
		NewInstance(networkLSA(1, 5), nil, now),
		NewInstance(routerLSA(2, 0), nil, now),
	}
	for _, i := range insts {
		d.Add(i, now)
	}

	var gotOrder []Key
	i, ok := d.Head()
	for ok {
		gotOrder = append(gotOrder, i.Key())
		i, ok = d.Next(i.Key())
	}

	if len(gotOrder) != 4 {
		t.Fatalf("traversed %d entries, want 4", len(gotOrder))
	}
	for n := 1; n < len(gotOrder); n++ {
		if !gotOrder[n-1].Less(gotOrder[n]) {
			t.Fatalf("traversal not sorted: %v then %v", gotOrder[n-1], gotOrder[n])
		}
	}
}

func TestDatabaseTypeTraversal(t *testing.T) {
	d := NewDatabase("test")
	now := time.Unix(0, 0)

	d.Add(NewInstance(routerLSA(1, 0), nil, now), now)
	d.Add(NewInstance(routerLSA(2, 0), nil, now), now)
	d.Add(NewInstance(networkLSA(1, 5), nil, now), now)

	first, ok := d.TypeHead(Key{Type: ospf3.LSType(0x2001)})
	if !ok {
		t.Fatal("TypeHead found nothing for router LSAs")
	}
	count := 1
	cur := first
	for {
		next, ok := d.TypeNext(cur.Key())
		if !ok {
			break
		}
		count++
		cur = next
	}
	if count != 2 {
		t.Fatalf("type traversal found %d router LSAs, want 2", count)
	}
}

func TestDatabaseTypeRouterTraversal(t *testing.T) {
	d := NewDatabase("test")
	now := time.Unix(0, 0)

	d.Add(NewInstance(routerLSA(1, 0), nil, now), now)
	d.Add(NewInstance(networkLSA(1, 5), nil, now), now)
	d.Add(NewInstance(networkLSA(1, 6), nil, now), now)
	d.Add(NewInstance(networkLSA(2, 7), nil, now), now)

	first, ok := d.TypeRouterHead(Key{Type: ospf3.LSType(0x2002), AdvertisingRouter: ospf3.ID{0, 0, 0, 1}})
	if !ok {
		t.Fatal("TypeRouterHead found nothing")
	}
	count := 1
	cur := first
	for {
		next, ok := d.TypeRouterNext(cur.Key())
		if !ok {
			break
		}
		count++
		cur = next
	}
	if count != 2 {
		t.Fatalf("type+router traversal found %d, want 2", count)
	}
}

func TestDatabaseAddReplacesExisting(t *testing.T) {
	d := NewDatabase("test")
	now := time.Unix(0, 0)

	var removed []*Instance
	d.OnRemove(func(i *Instance) { removed = append(removed, i) })

	h := routerLSA(1, 0)
	first := NewInstance(h, nil, now)
	d.Add(first, now)

	h.SequenceNumber++
	second := NewInstance(h, nil, now)
	d.Add(second, now)

	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
	if len(removed) != 1 || removed[0] != first {
		t.Fatalf("expected first instance to be removed via OnRemove hook, got %v", removed)
	}
	got, _ := d.Lookup(second.Key())
	if got != second {
		t.Fatal("Lookup should return the replacement instance")
	}
}

func TestDatabaseHooksFireOnAdd(t *testing.T) {
	d := NewDatabase("test")
	now := time.Unix(0, 0)

	var added []*Instance
	d.OnAdd(func(i *Instance) { added = append(added, i) })

	i := NewInstance(routerLSA(1, 0), nil, now)
	d.Add(i, now)

	if len(added) != 1 || added[0] != i {
		t.Fatalf("OnAdd hook did not fire with the new instance, got %v", added)
	}
}
