package rtable

import (
	"net/netip"

	"github.com/gaissmai/bart"
)

// A Range is one `area A range P/L` configuration entry, governing
// inter-area aggregation.
type Range struct {
	Prefix    netip.Prefix
	Advertise bool // False means Do-Not-Advertise: the range is configured but suppressed.

	// contained tracks how many component routes currently fall within
	// this range, so the aggregate can be withdrawn once the last
	// contributing route disappears.
	contained int
}

// RangeTable holds the configured aggregation ranges for one area, and
// resolves which range (if any) covers a given prefix via longest-prefix
// match.
type RangeTable struct {
	t *bart.Table[*Range]
}

// NewRangeTable creates an empty RangeTable.
func NewRangeTable() *RangeTable {
	return &RangeTable{t: new(bart.Table[*Range])}
}

// Configure installs or updates the range covering prefix.
func (rt *RangeTable) Configure(prefix netip.Prefix, advertise bool) {
	rt.t.Insert(prefix, &Range{Prefix: prefix, Advertise: advertise})
}

// Match returns the most specific configured Range covering pfx, if any.
func (rt *RangeTable) Match(pfx netip.Prefix) (*Range, bool) {
	_, rg, ok := rt.t.LookupPrefixLPM(pfx)
	return rg, ok
}

// Contribute records that one more component route now falls under r,
// returning true the first time (when the aggregate itself must be
// originated).
func (r *Range) Contribute() bool {
	r.contained++
	return r.contained == 1
}

// Withdraw records that a component route no longer falls under r,
// returning true when none remain (when the aggregate must be withdrawn).
func (r *Range) Withdraw() bool {
	if r.contained > 0 {
		r.contained--
	}
	return r.contained == 0
}

// ShouldOriginate reports whether r should currently be advertised as an
// Inter-Area-Prefix/-Router LSA: configured Advertise, and at least one
// contributing component route.
func (r *Range) ShouldOriginate() bool {
	return r.Advertise && r.contained > 0
}
