// Package process ties the flooding/adjacency core together: it owns the
// areas, the AS-scoped LSDB, the global route and border-router tables,
// the external-LSA ID counter, and the single-threaded scheduler every
// other package's callbacks run on.
package process

import (
	"time"

	"github.com/sirupsen/logrus"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/area"
	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/neighbor"
	"github.com/ospf6d/ospf6/rtable"
	"github.com/ospf6d/ospf6/sched"
)

// A RouteInstaller receives the process's best-path decisions. The kernel
// RIB shim behind it is a collaborator outside this subsystem.
type RouteInstaller interface {
	Install(r rtable.Route) error
	Withdraw(r rtable.Route) error
}

// An SPFRunner schedules a shortest-path recomputation for one area. The
// Dijkstra implementation behind it is a collaborator; the process only
// needs to know when topology changed.
type SPFRunner interface {
	Schedule(areaID [4]byte)
}

// A Process is one OSPFv3 protocol instance: the top-level owner of all
// areas, interfaces, and AS-scoped state.
type Process struct {
	RouterID [4]byte

	Sched *sched.Scheduler

	Areas map[[4]byte]*area.Area

	// ASExternal holds the AS-flooding-scope LSDB; Cache holds LSAs
	// received while the local adjacency was still below Exchange, so a
	// later Database Description exchange need not request known content.
	ASExternal *lsadb.Database
	Cache      *lsadb.Database

	Routes    *rtable.Table
	Externals *rtable.Table
	Borders   *rtable.BorderTable

	installer RouteInstaller
	spf       SPFRunner

	// externalID numbers locally originated AS-external LSAs. It increases
	// monotonically and wraps silently at 2^32.
	externalID uint32

	// summaryIDs maps summarised destinations to the stable link-state
	// IDs their Inter-Area LSAs use across refreshes.
	summaryIDs    map[string]uint32
	nextSummaryID uint32

	counters map[string]uint64

	// manetIfcs holds the per-interface relay/pushback state; retrans the
	// per-(interface, neighbor, LSA) retransmit timers.
	manetIfcs map[string]*manetState
	retrans   map[retransKey]*sched.Timer
	sinks     map[string]PacketSink

	rxBuf []byte

	now func() time.Time
	log *logrus.Entry
}

// New creates a Process around sched with the given collaborators. The AS
// LSDB's hooks are wired so that any AS-scope topology change schedules SPF
// in every area.
func New(routerID [4]byte, s *sched.Scheduler, installer RouteInstaller, spf SPFRunner) *Process {
	p := &Process{
		RouterID:   routerID,
		Sched:      s,
		Areas:      make(map[[4]byte]*area.Area),
		ASExternal: lsadb.NewDatabase("as"),
		Cache:      lsadb.NewDatabase("cache"),
		Routes:     rtable.New(),
		Externals:  rtable.New(),
		Borders:    rtable.NewBorderTable(),
		installer:  installer,
		spf:        spf,
		counters:   make(map[string]uint64),
		summaryIDs: make(map[string]uint32),
		now:        time.Now,
		log:        logrus.WithField("component", "process"),
	}

	p.ASExternal.OnAdd(func(i *lsadb.Instance) {
		p.Count("installed")
		p.armExpiry(p.ASExternal, i)
		p.scheduleSPFAll()
	})
	p.ASExternal.OnRemove(func(*lsadb.Instance) {
		p.scheduleSPFAll()
	})

	return p
}

// Area returns the Area for id, creating it with flags and wiring its LSDB
// hooks on first use. An area-scope install or removal schedules that
// area's SPF.
func (p *Process) Area(id [4]byte, flags area.Flags) *area.Area {
	a, ok := p.Areas[id]
	if ok {
		return a
	}

	a = area.New(id, flags)
	p.Areas[id] = a

	a.LSDB.OnAdd(func(i *lsadb.Instance) {
		p.Count("installed")
		p.armExpiry(a.LSDB, i)
		if p.spf != nil {
			p.spf.Schedule(id)
		}
	})
	a.LSDB.OnRemove(func(*lsadb.Instance) {
		if p.spf != nil {
			p.spf.Schedule(id)
		}
	})

	p.log.WithFields(logrus.Fields{
		"area":  ospf3.ID(id),
		"flags": flags,
	}).Info("area created")

	return a
}

func (p *Process) scheduleSPFAll() {
	if p.spf == nil {
		return
	}
	for id := range p.Areas {
		p.spf.Schedule(id)
	}
}

// NextExternalID returns the next AS-external link-state ID. The counter
// wraps at 2^32 without any collision guard.
func (p *Process) NextExternalID() uint32 {
	p.externalID++
	return p.externalID
}

// Count bumps the named flood-engine counter exposed through metrics.
func (p *Process) Count(kind string) {
	p.counters[kind]++
}

// Interfaces returns every interface in every area.
func (p *Process) Interfaces() []*iface.Interface {
	var out []*iface.Interface
	for _, a := range p.Areas {
		out = append(out, a.Interfaces...)
	}
	return out
}

// AllNeighbors returns every neighbor across every interface in every
// area, the set the flooding engine consults for retrans-list clearing and
// the MaxAge removal precondition.
func (p *Process) AllNeighbors() []*neighbor.Neighbor {
	var out []*neighbor.Neighbor
	for _, ifc := range p.Interfaces() {
		for _, n := range ifc.Neighbors {
			out = append(out, n)
		}
	}
	return out
}

// AnyExchangeOrLoading reports whether any neighbor anywhere in the
// process is mid-exchange. While true, no MaxAge LSA may be removed from
// any LSDB, since the neighbor's Database Description may still reference
// it.
func (p *Process) AnyExchangeOrLoading() bool {
	for _, n := range p.AllNeighbors() {
		if n.State == neighbor.Exchange || n.State == neighbor.Loading {
			return true
		}
	}
	return false
}

// SweepMaxAge runs the process-level MaxAge remover over every LSDB: an
// instance is removed only when it has aged out, has no outstanding
// retransmissions, and no neighbor in the process is in Exchange or
// Loading.
func (p *Process) SweepMaxAge(now time.Time) []*lsadb.Instance {
	if p.AnyExchangeOrLoading() {
		return nil
	}

	var removed []*lsadb.Instance
	removed = append(removed, p.ASExternal.Sweep(now, nil)...)
	for _, a := range p.Areas {
		removed = append(removed, a.LSDB.Sweep(now, nil)...)
	}
	for _, ifc := range p.Interfaces() {
		removed = append(removed, ifc.LinkLSDB.Sweep(now, nil)...)
	}

	if len(removed) > 0 {
		p.Count("maxage_removed")
		p.log.WithField("count", len(removed)).Debug("MaxAge sweep removed instances")
	}
	return removed
}

// InstallRoute records r as the best path to its prefix, pushes it to the
// route installer, and runs ABR summarisation toward every other area.
func (p *Process) InstallRoute(now time.Time, r rtable.Route, sourceArea [4]byte) {
	p.Routes.Add(r)
	if p.installer != nil {
		if err := p.installer.Install(r); err != nil {
			p.log.WithError(err).WithField("prefix", r.Prefix).Warn("route install failed")
		}
	}
	p.RouteAdded(now, r, sourceArea)
}

// RemoveRoute withdraws r from the route table, the installer, and any
// summaries it contributed to.
func (p *Process) RemoveRoute(now time.Time, r rtable.Route, sourceArea [4]byte) {
	p.Routes.Remove(r.Prefix)
	if p.installer != nil {
		if err := p.installer.Withdraw(r); err != nil {
			p.log.WithError(err).WithField("prefix", r.Prefix).Warn("route withdraw failed")
		}
	}
	p.RouteRemoved(now, r, sourceArea)
}

// armExpiry schedules inst's MaxAge expiry for (MaxAge - current age). At
// fire time the Instance is resolved by Key against db, so a replaced or
// removed Instance never acts on a stale handle.
func (p *Process) armExpiry(db *lsadb.Database, inst *lsadb.Instance) {
	d := lsadb.MaxAge - inst.Age(p.now())
	if d < 0 {
		d = 0
	}
	key := inst.Key()
	inst.SetExpiry(p.Sched.AddTimer(d, func() {
		if cur, ok := db.Lookup(key); ok && cur == inst {
			p.SweepMaxAge(p.now())
		}
	}))
}

// RxBuffer returns the shared receive buffer, sized to the largest IfMTU
// of any enabled interface and reallocated only when that maximum
// changes.
func (p *Process) RxBuffer() []byte {
	max := 1280 // IPv6 minimum MTU floor.
	for _, ifc := range p.Interfaces() {
		if m := int(ifc.Params.IfMTU); m > max {
			max = m
		}
	}
	if len(p.rxBuf) != max {
		p.rxBuf = make([]byte, max)
	}
	return p.rxBuf
}
