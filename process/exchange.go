package process

import (
	"time"

	"github.com/sirupsen/logrus"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/area"
	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/neighbor"
)

// idGreater orders router IDs for master/slave negotiation.
func idGreater(a, b [4]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

// HandleDBDesc advances the Database Description exchange with from.
func (p *Process) HandleDBDesc(now time.Time, a *area.Area, ifc *iface.Interface, from *neighbor.Neighbor, dd *ospf3.DatabaseDescription) {
	if dd.InterfaceMTU > ifc.Params.IfMTU && ifc.Params.IfMTU != 0 && !ifc.Params.MTUIgnore {
		p.Count("dropped_mtu_mismatch")
		p.log.WithFields(logrus.Fields{
			"interface": ifc.Name,
			"neighbor":  ospf3.ID(from.RouterID),
			"mtu":       dd.InterfaceMTU,
		}).Warn("MTU mismatch in DBDesc")
		return
	}

	switch from.State {
	case neighbor.ExStart:
		p.negotiate(now, a, ifc, from, dd)

	case neighbor.Exchange, neighbor.Loading, neighbor.Full:
		if dd.Flags&ospf3.IBit != 0 {
			p.seqMismatch(now, a, ifc, from)
			return
		}
		if from.MasterSlave {
			// Master: the slave must echo our current sequence number.
			if dd.SequenceNumber != from.DDSequence {
				p.seqMismatch(now, a, ifc, from)
				return
			}
			from.DDSequence++
		} else {
			// Slave: the master drives; we accept its next sequence number.
			if dd.SequenceNumber != from.DDSequence+1 && dd.SequenceNumber != from.DDSequence {
				p.seqMismatch(now, a, ifc, from)
				return
			}
			from.DDSequence = dd.SequenceNumber
		}

		p.absorbHeaders(now, a, ifc, from, dd.LSAs)

		// Exchange completes once neither side has more to describe.
		if dd.Flags&ospf3.MBit == 0 && from.Lists.Summary.Len() == 0 {
			from.Apply(now, neighbor.ExchangeDone, ifc)
			if from.State == neighbor.Loading {
				p.sendLSReq(now, ifc, from)
			}
			return
		}
		p.sendDBDesc(now, ifc, from)
	}
}

// sendDBDesc describes the next batch of summary_list headers toward from,
// packing as many as the interface MTU allows and setting the M bit while
// more remain.
func (p *Process) sendDBDesc(now time.Time, ifc *iface.Interface, from *neighbor.Neighbor) {
	dd := &ospf3.DatabaseDescription{
		Header:         ospf3.Header{RouterID: ospf3.ID(p.RouterID), InstanceID: ifc.Params.InstanceID},
		Options:        ospf3.V6Bit | ospf3.RBit | ospf3.EBit,
		InterfaceMTU:   ifc.Params.IfMTU,
		SequenceNumber: from.DDSequence,
	}
	if from.MasterSlave {
		dd.Flags |= ospf3.MSBit
	}

	budget := int(ifc.Params.IfMTU)
	if budget == 0 {
		budget = 1280
	}
	max := (budget - 32) / 20 // 32 B covers the 16 B packet header and 12 B DBDesc fixed part, then 20 B per header.
	for _, inst := range from.Lists.Summary.All() {
		if len(dd.LSAs) >= max {
			break
		}
		dd.LSAs = append(dd.LSAs, inst.Header)
		from.Lists.Summary.Remove(inst.Key())
		inst.Unref()
	}
	if from.Lists.Summary.Len() > 0 {
		dd.Flags |= ospf3.MBit
	}

	p.send(ifc, dd, ospf3.AllSPFRouters)
}

// negotiate handles the ExStart master/slave agreement.
func (p *Process) negotiate(now time.Time, a *area.Area, ifc *iface.Interface, from *neighbor.Neighbor, dd *ospf3.DatabaseDescription) {
	initial := ospf3.IBit | ospf3.MBit | ospf3.MSBit

	switch {
	case dd.Flags == initial && len(dd.LSAs) == 0 && idGreater(from.RouterID, p.RouterID):
		// Peer is master; adopt its sequence number.
		from.MasterSlave = false
		from.DDSequence = dd.SequenceNumber

	case dd.Flags&(ospf3.IBit|ospf3.MSBit) == 0 && dd.SequenceNumber == from.DDSequence && idGreater(p.RouterID, from.RouterID):
		// Peer acknowledged us as master.
		from.MasterSlave = true
		from.DDSequence++

	default:
		return
	}

	acts := from.Apply(now, neighbor.NegotiationDone, ifc)
	if acts.SeedSummaryRequired {
		from.SeedSummary(now, p.Cache, ifc.LinkLSDB, a.LSDB, p.ASExternal)
	}
	p.absorbHeaders(now, a, ifc, from, dd.LSAs)
	p.sendDBDesc(now, ifc, from)
}

// absorbHeaders compares described LSA headers against our databases,
// queuing strictly newer identities on the request_list.
func (p *Process) absorbHeaders(now time.Time, a *area.Area, ifc *iface.Interface, from *neighbor.Neighbor, headers []ospf3.LSAHeader) {
	resolver := Scopes{Proc: p, Ifc: ifc, Area: a}
	for _, h := range headers {
		described := lsadb.NewInstance(h, nil, now)
		db := resolver.Database(uint8(h.LSA.Type.FloodingScope()))
		ours, ok := db.Lookup(described.Key())
		if !ok || lsadb.Compare(described, ours, now) < 0 {
			described.Ref()
			from.Lists.Request.Add(described, now)
		}
	}
}

// sendLSReq turns the request_list into a Link State Request toward the
// neighbor.
func (p *Process) sendLSReq(now time.Time, ifc *iface.Interface, from *neighbor.Neighbor) {
	all := from.Lists.Request.All()
	if len(all) == 0 {
		return
	}

	req := &ospf3.LinkStateRequest{
		Header: ospf3.Header{RouterID: ospf3.ID(p.RouterID), InstanceID: ifc.Params.InstanceID},
	}
	for _, inst := range all {
		req.LSAs = append(req.LSAs, inst.Header.LSA)
	}
	p.send(ifc, req, ospf3.AllSPFRouters)
}

// HandleLSReq answers a neighbor's Link State Request from our databases.
// Requesting an LSA we do not have is a BadLSReq.
func (p *Process) HandleLSReq(now time.Time, a *area.Area, ifc *iface.Interface, from *neighbor.Neighbor, req *ospf3.LinkStateRequest) {
	if from.State < neighbor.Exchange {
		p.Count("dropped")
		return
	}

	resolver := Scopes{Proc: p, Ifc: ifc, Area: a}
	for _, l := range req.LSAs {
		key := lsadb.Key{Type: l.Type, AdvertisingRouter: l.AdvertisingRouter, LinkStateID: l.LinkStateID}
		inst, ok := resolver.Database(uint8(l.Type.FloodingScope())).Lookup(key)
		if !ok {
			p.Count("badlsreq")
			from.Apply(now, neighbor.BadLSReq, ifc)
			return
		}
		inst.Ref()
		from.Lists.LSUpdate.Add(inst, now)
	}
	p.drainUpdates(ifc)
}

// HandleLSUpdateLoading clears satisfied requests: once the request_list
// empties during Loading the neighbor reaches Full.
func (p *Process) HandleLSUpdateLoading(now time.Time, ifc *iface.Interface, from *neighbor.Neighbor) {
	if from.State == neighbor.Loading && from.Lists.Request.Len() == 0 {
		from.Apply(now, neighbor.LoadingDone, ifc)
		p.log.WithFields(logrus.Fields{
			"interface": ifc.Name,
			"neighbor":  ospf3.ID(from.RouterID),
		}).Info("neighbor reached Full")
	}
}

func (p *Process) seqMismatch(now time.Time, a *area.Area, ifc *iface.Interface, from *neighbor.Neighbor) {
	p.Count("seq_mismatch")
	acts := from.Apply(now, neighbor.SeqNumberMismatch, ifc)
	if acts.ClearLists {
		p.cancelRetransFor(ifc, from.RouterID)
	}
}
