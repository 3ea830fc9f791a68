// Package rtable implements the global route table, border-router table,
// and per-area range table, backed by gaissmai/bart's compressed
// trie for longest-prefix-match lookups.
package rtable

import (
	"net/netip"

	"github.com/gaissmai/bart"
)

// PathType orders OSPFv3 route preference, most preferred first, per
// RFC5340 §11.
type PathType int

// Possible PathType values.
const (
	IntraArea PathType = iota
	InterArea
	Type1External
	Type2External
)

// A Route is one entry in the global route table: a destination's best
// path as currently installed.
type Route struct {
	Prefix    netip.Prefix
	Type      PathType
	Cost      uint32
	Type2Cost uint32 // Only meaningful for Type2External.
	Area      [4]byte
	NextHops  []netip.Addr
	BorderRouter bool // True if Prefix identifies an ABR/ASBR, not a network.
}

// Better reports whether r is preferred over o under RFC5340 §11's
// tie-break: lower PathType wins; within Type1External/IntraArea/InterArea
// lower Cost wins; within Type2External lower Type2Cost wins, then lower
// Cost.
func (r Route) Better(o Route) bool {
	if r.Type != o.Type {
		return r.Type < o.Type
	}
	if r.Type == Type2External {
		if r.Type2Cost != o.Type2Cost {
			return r.Type2Cost < o.Type2Cost
		}
	}
	return r.Cost < o.Cost
}

// Table is the global route table: a longest-prefix-match structure over
// every destination this router currently installs a route for.
type Table struct {
	t *bart.Table[Route]
}

// New creates an empty Table.
func New() *Table {
	return &Table{t: new(bart.Table[Route])}
}

// Add installs route, replacing any existing entry for the same prefix.
// Callers are expected to have already applied Better against any existing
// entry; Add performs no preference comparison itself.
func (rt *Table) Add(route Route) {
	rt.t.Insert(route.Prefix, route)
}

// Remove withdraws the route for pfx, if any.
func (rt *Table) Remove(pfx netip.Prefix) {
	rt.t.Delete(pfx)
}

// Lookup returns the exact-match route for pfx.
func (rt *Table) Lookup(pfx netip.Prefix) (Route, bool) {
	return rt.t.Get(pfx)
}

// LookupAddr returns the longest-prefix-match route covering addr, used
// for simple forwarding-table consultation.
func (rt *Table) LookupAddr(addr netip.Addr) (Route, bool) {
	return rt.t.Lookup(addr)
}

// Size returns the number of installed routes.
func (rt *Table) Size() int { return rt.t.Size() }

// A BorderTable indexes border routers (ABRs discovered via Inter-Area-
// Router LSAs, ASBRs via router-LSA bits), keyed by router-id-as-prefix so
// the same bart.Table machinery serves both lookups.
type BorderTable struct {
	t *bart.Table[Route]
}

// NewBorderTable creates an empty BorderTable.
func NewBorderTable() *BorderTable {
	return &BorderTable{t: new(bart.Table[Route])}
}

func routerPrefix(routerID [4]byte, area [4]byte) netip.Prefix {
	addr := netip.AddrFrom16([16]byte{
		0: routerID[0], 1: routerID[1], 2: routerID[2], 3: routerID[3],
		4: area[0], 5: area[1], 6: area[2], 7: area[3],
	})
	return netip.PrefixFrom(addr, 64)
}

// Add installs route as the best known path to the border router
// identified by (routerID, area).
func (bt *BorderTable) Add(routerID, area [4]byte, route Route) {
	bt.t.Insert(routerPrefix(routerID, area), route)
}

// Lookup returns the installed path to the border router identified by
// (routerID, area).
func (bt *BorderTable) Lookup(routerID, area [4]byte) (Route, bool) {
	return bt.t.Get(routerPrefix(routerID, area))
}

// Remove withdraws the path to (routerID, area).
func (bt *BorderTable) Remove(routerID, area [4]byte) {
	bt.t.Delete(routerPrefix(routerID, area))
}
