package rtable

import (
	"net/netip"
	"testing"
)

func pfx(s string) netip.Prefix {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		panic(err)
	}
	return p
}

func TestRouteBetterByPathType(t *testing.T) {
	intra := Route{Type: IntraArea, Cost: 100}
	inter := Route{Type: InterArea, Cost: 1}
	if !intra.Better(inter) {
		t.Fatal("IntraArea should always beat InterArea regardless of cost")
	}
}

func TestRouteBetterByCostWithinType(t *testing.T) {
	cheap := Route{Type: IntraArea, Cost: 1}
	expensive := Route{Type: IntraArea, Cost: 10}
	if !cheap.Better(expensive) {
		t.Fatal("lower cost should win within the same PathType")
	}
}

func TestRouteBetterType2UsesType2CostFirst(t *testing.T) {
	a := Route{Type: Type2External, Type2Cost: 1, Cost: 100}
	b := Route{Type: Type2External, Type2Cost: 2, Cost: 1}
	if !a.Better(b) {
		t.Fatal("lower Type2Cost should win before Cost for Type2External routes")
	}
}

func TestTableAddLookupRemove(t *testing.T) {
	rt := New()
	p := pfx("2001:db8::/64")
	rt.Add(Route{Prefix: p, Type: IntraArea, Cost: 10})

	got, ok := rt.Lookup(p)
	if !ok || got.Cost != 10 {
		t.Fatalf("Lookup = %v, %v; want cost 10", got, ok)
	}

	rt.Remove(p)
	if _, ok := rt.Lookup(p); ok {
		t.Fatal("route should be gone after Remove")
	}
}

func TestBorderTableAddLookupRemove(t *testing.T) {
	bt := NewBorderTable()
	routerID := [4]byte{192, 0, 2, 1}
	area := [4]byte{0, 0, 0, 1}

	bt.Add(routerID, area, Route{Type: IntraArea, Cost: 5})
	got, ok := bt.Lookup(routerID, area)
	if !ok || got.Cost != 5 {
		t.Fatalf("Lookup = %v, %v; want cost 5", got, ok)
	}

	bt.Remove(routerID, area)
	if _, ok := bt.Lookup(routerID, area); ok {
		t.Fatal("border route should be gone after Remove")
	}
}

func TestBorderTableDistinguishesAreas(t *testing.T) {
	bt := NewBorderTable()
	routerID := [4]byte{192, 0, 2, 1}

	bt.Add(routerID, [4]byte{0, 0, 0, 1}, Route{Cost: 1})
	bt.Add(routerID, [4]byte{0, 0, 0, 2}, Route{Cost: 2})

	a1, _ := bt.Lookup(routerID, [4]byte{0, 0, 0, 1})
	a2, _ := bt.Lookup(routerID, [4]byte{0, 0, 0, 2})
	if a1.Cost == a2.Cost {
		t.Fatal("routes to the same router-id in different areas must be distinct entries")
	}
}
