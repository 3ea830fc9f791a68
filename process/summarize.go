package process

import (
	"net/netip"
	"time"

	"github.com/sirupsen/logrus"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/area"
	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/rtable"
)

// RouteAdded reacts to a route entering the global route table: for every
// area other than the route's source area, an Inter-Area-Prefix LSA (or
// Inter-Area-Router LSA for border routers) is originated, subject to
// range aggregation, filter lists, the LSInfinity cap, and the
// inter-to-backbone restriction.
func (p *Process) RouteAdded(now time.Time, r rtable.Route, sourceArea [4]byte) {
	contributed, first := false, false
	for id, a := range p.Areas {
		if id == sourceArea {
			continue
		}
		if area.RestrictInterToBackbone(id, r.Type) {
			continue
		}
		if !a.SummarizationCandidate(r, sourceArea, "") {
			continue
		}

		// A configured range on the source area replaces the component
		// route with its aggregate; Do-Not-Advertise suppresses both.
		prefix, cost := r.Prefix, r.Cost
		if src, ok := p.Areas[sourceArea]; ok {
			if rng, ok := src.Ranges.Match(r.Prefix); ok {
				// The route counts toward the range once, not once per
				// target area.
				if !contributed {
					contributed, first = true, rng.Contribute()
				}
				if !rng.Advertise {
					continue
				}
				if !first {
					continue // Aggregate already originated.
				}
				prefix = rng.Prefix
			}
		}

		p.originateSummary(now, a, r, prefix, cost)
	}
}

// RouteRemoved withdraws the summaries RouteAdded originated once the last
// contributing route under an aggregate disappears.
func (p *Process) RouteRemoved(now time.Time, r rtable.Route, sourceArea [4]byte) {
	withdrawn, last := false, false
	for id, a := range p.Areas {
		if id == sourceArea {
			continue
		}

		prefix := r.Prefix
		if src, ok := p.Areas[sourceArea]; ok {
			if rng, ok := src.Ranges.Match(r.Prefix); ok {
				if !withdrawn {
					withdrawn, last = true, rng.Withdraw()
				}
				if !last {
					continue // Other component routes still hold the aggregate up.
				}
				prefix = rng.Prefix
			}
		}

		p.Withdraw(now, a.LSDB, lsadb.Key{
			Type:              summaryType(r),
			AdvertisingRouter: ospf3.ID(p.RouterID),
			LinkStateID:       p.summaryID(prefix.String()),
		})
	}
}

func summaryType(r rtable.Route) ospf3.LSType {
	if r.BorderRouter {
		return ospf3.InterAreaRouterLSA
	}
	return ospf3.InterAreaPrefixLSA
}

func (p *Process) originateSummary(now time.Time, a *area.Area, r rtable.Route, prefix netip.Prefix, cost uint32) {
	var body ospf3.LSABody
	typ := summaryType(r)
	if r.BorderRouter {
		body = &ospf3.InterAreaRouterLSABody{
			Options:             ospf3.V6Bit | ospf3.RBit | ospf3.EBit,
			Metric:              cost,
			DestinationRouterID: ospf3.ID(routerIDOf(r)),
		}
	} else {
		addr := prefix.Addr().As16()
		body = &ospf3.InterAreaPrefixLSABody{
			Metric: cost,
			Prefix: ospf3.Prefix{
				Length:  uint8(prefix.Bits()),
				Address: addr[:],
			},
		}
	}

	if _, err := p.Originate(now, a.LSDB, typ, p.summaryID(prefix.String()), body); err != nil {
		p.log.WithFields(logrus.Fields{
			"area":   ospf3.ID(a.ID),
			"prefix": prefix.String(),
		}).WithError(err).Warn("failed to originate summary")
	}
}

// summaryID assigns a stable link-state ID per summarised destination
// within this process.
func (p *Process) summaryID(dest string) ospf3.ID {
	id, ok := p.summaryIDs[dest]
	if !ok {
		p.nextSummaryID++
		id = p.nextSummaryID
		p.summaryIDs[dest] = id
	}
	var out ospf3.ID
	out[0] = byte(id >> 24)
	out[1] = byte(id >> 16)
	out[2] = byte(id >> 8)
	out[3] = byte(id)
	return out
}

func routerIDOf(r rtable.Route) [4]byte {
	// Border-router routes encode the router ID in the prefix address's
	// first four bytes; see rtable.BorderTable's keying.
	a := r.Prefix.Addr().As16()
	return [4]byte{a[0], a[1], a[2], a[3]}
}
