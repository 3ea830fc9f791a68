// Package area implements OSPFv3 area state and the ABR summarisation and
// NSSA Type-7 to Type-5 translation logic of RFC 3101.
package area

import (
	"time"

	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/rtable"
)

// LSInfinity is the metric value representing unreachable, per RFC5340 §11.
const LSInfinity = 0xffffff

// Flags are the per-area role bits.
type Flags uint8

// Possible Flags values.
const (
	Stub Flags = 1 << iota
	NSSA
	NoSummary
	Transit
)

// TranslatorState is an NSSA area's Type-7-to-Type-5 translator role
// (RFC 3101, section 3).
type TranslatorState int

// Possible TranslatorState values.
const (
	TranslatorDisabled TranslatorState = iota
	TranslatorEnabled
	TranslatorElected // Candidate, awaiting stability timer before Disabled takes effect.
)

// An Area is one OSPFv3 area: its LSDB, flags, interfaces, and (for
// non-backbone areas) the tables ABR summarisation needs.
type Area struct {
	ID    [4]byte
	Flags Flags
	LSDB  *lsadb.Database

	Interfaces []*iface.Interface

	Ranges       *rtable.RangeTable
	DefaultCost  uint32
	FilterIn     PrefixListSet
	FilterOut    PrefixListSet

	TranslatorState            TranslatorState
	translatorDisabledSince    time.Time
	NSSATranslatorStabilityInterval time.Duration
}

// PrefixListSet matches a prefix against a named filter list; the concrete
// matching engine lives outside this subsystem, so area only consumes it
// through this interface.
type PrefixListSet interface {
	Match(name string, route rtable.Route) bool
}

// New creates an Area with an empty LSDB and range table.
func New(id [4]byte, flags Flags) *Area {
	return &Area{
		ID:     id,
		Flags:  flags,
		LSDB:   lsadb.NewDatabase("area"),
		Ranges: rtable.NewRangeTable(),
	}
}

// IsBackbone reports whether this is area 0.0.0.0.
func (a *Area) IsBackbone() bool {
	return a.ID == [4]byte{0, 0, 0, 0}
}

// SummarizationCandidate reports whether route, sourced from sourceArea,
// should be originated into this area as an Inter-Area-Prefix/-Router LSA,
// per RFC 2328 section 12.4.3's conditions. It does not itself check range aggregation
// (the caller resolves that via a.Ranges.Match and Range.Contribute/
// Withdraw, since that state transcends a single route).
func (a *Area) SummarizationCandidate(route rtable.Route, sourceArea [4]byte, filterName string) bool {
	if sourceArea == a.ID {
		return false // Not inter-area with respect to itself.
	}
	if route.Cost >= LSInfinity {
		return false
	}
	if !a.IsBackbone() && a.Flags&(Stub|NSSA) != 0 && a.Flags&NoSummary != 0 {
		return false
	}
	if a.FilterIn != nil && filterName != "" && !a.FilterIn.Match(filterName, route) {
		return false
	}
	return true
}

// RestrictInterToBackbone reports whether originating a summary computed
// from a route already learned via inter-area means into the backbone is
// disallowed, per RFC5340's no-inter-area-to-backbone restriction.
func RestrictInterToBackbone(target [4]byte, routeType rtable.PathType) bool {
	return target == [4]byte{0, 0, 0, 0} && routeType == rtable.InterArea
}
