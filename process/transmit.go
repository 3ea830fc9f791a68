package process

import (
	"net"
	"time"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/area"
	"github.com/ospf6d/ospf6/flood"
	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/lsadb"
)

// A PacketSink is the write side of one interface's raw OSPFv3 socket,
// satisfied by *ospf3.Conn.
type PacketSink interface {
	WriteTo(m ospf3.Message, dst *net.IPAddr) error
}

// RegisterInterface attaches ifc to area a, records its socket sink, and
// starts its periodic Hello and coalesced-ack timers. Passive interfaces
// never transmit Hellos and so never form adjacencies.
func (p *Process) RegisterInterface(a *area.Area, ifc *iface.Interface, sink PacketSink) {
	a.Interfaces = append(a.Interfaces, ifc)
	if p.sinks == nil {
		p.sinks = make(map[string]PacketSink)
	}
	p.sinks[ifc.Name] = sink
	if !ifc.Params.Passive {
		p.scheduleHello(a, ifc)
	}
	if ifc.Params.AckInterval > 0 {
		p.scheduleAckDrain(ifc)
	}

	switch ifc.Type {
	case iface.Broadcast, iface.NBMA:
		// Hold off on electing ourselves until the Wait interval has
		// passed, so an established DR/BDR is learned before we vote.
		p.Sched.AddTimer(ifc.Params.DeadInterval, func() {
			ifc.WaitDone = true
			p.runDRElection(p.now(), ifc)
		})
	default:
		ifc.WaitDone = true
	}
}

func (p *Process) scheduleHello(a *area.Area, ifc *iface.Interface) {
	ifc.SetHelloTimer(p.Sched.AddTimer(ifc.Params.HelloInterval, func() {
		p.sendHello(a, ifc)
		p.drainUpdates(ifc)
		p.scheduleHello(a, ifc)
	}))
}

// sendHello builds and transmits one Hello, including the MANET LLS block
// on MANET-mode interfaces.
func (p *Process) sendHello(a *area.Area, ifc *iface.Interface) {
	h := &ospf3.Hello{
		Header: ospf3.Header{
			RouterID:   ospf3.ID(p.RouterID),
			AreaID:     ospf3.ID(a.ID),
			InstanceID: ifc.Params.InstanceID,
		},
		RouterPriority:           ifc.Params.Priority,
		Options:                  ospf3.V6Bit | ospf3.RBit | ospf3.EBit,
		HelloInterval:            ifc.Params.HelloInterval,
		RouterDeadInterval:       ifc.Params.DeadInterval,
		DesignatedRouterID:       ospf3.ID(ifc.DR),
		BackupDesignatedRouterID: ospf3.ID(ifc.BDR),
	}
	for rid := range ifc.Neighbors {
		h.NeighborIDs = append(h.NeighborIDs, ospf3.ID(rid))
	}

	if ifc.Type == iface.MANETLink {
		h.Options |= ospf3.LBit
		h.LLS = p.buildHelloLLS(ifc)
	}

	dst := ospf3.AllSPFRouters
	if ifc.UnicastOnly() {
		dst = &net.IPAddr{IP: net.IP(ifc.VLinkDest[:])}
	}
	p.send(ifc, h, dst)
}

// buildHelloLLS assembles the LLS TLVs for a MANET Hello: the state-check
// sequence, the full reported neighbor list, and the relay set under
// MPR-SDCDS.
func (p *Process) buildHelloLLS(ifc *iface.Interface) *ospf3.LLSBlock {
	st := p.manetFor(ifc)
	lls := &ospf3.LLSBlock{}
	lls.SetStateCheckSequence(st.scs)

	var reported []ospf3.ID
	for rid := range ifc.Neighbors {
		reported = append(reported, ospf3.ID(rid))
	}
	lls.SetReportedNeighbors(reported)

	switch ifc.Params.FloodingMode {
	case iface.MPRSDCDS:
		var relays []ospf3.ID
		for r := range st.mpr.AOR {
			relays = append(relays, ospf3.ID(r))
		}
		lls.SetRelayIDs(relays)
	case iface.MDRSICDS:
		lls.SetMDRLevel(uint8(ifc.MDRLevel-1), ifc.Params.Priority)
	}

	return lls
}

// scheduleAckDrain arms the AckInterval coalescing timer: every interval,
// pending LSA headers on the interface's lsack_list go out as a single
// multicast Link State Acknowledgement.
func (p *Process) scheduleAckDrain(ifc *iface.Interface) {
	p.Sched.AddTimer(ifc.Params.AckInterval, func() {
		p.drainAcks(ifc)
		p.scheduleAckDrain(ifc)
	})
}

// drainAcks flushes the interface lsack_list. Non-DR routers ack toward
// AllDRouters; the DR, BDR, and MANET routers toward AllSPFRouters.
func (p *Process) drainAcks(ifc *iface.Interface) {
	all := ifc.LSAckList.All()
	if len(all) == 0 {
		return
	}

	ack := &ospf3.LinkStateAcknowledgement{
		Header: ospf3.Header{RouterID: ospf3.ID(p.RouterID), InstanceID: ifc.Params.InstanceID},
	}
	for _, inst := range all {
		ack.LSAs = append(ack.LSAs, inst.Header)
		ifc.LSAckList.Remove(inst.Key())
		inst.Unref()
	}

	dst := ospf3.AllDRouters
	if ifc.Type == iface.MANETLink || ifc.DR == ifc.RouterID || ifc.BDR == ifc.RouterID {
		dst = ospf3.AllSPFRouters
	}
	p.send(ifc, ack, dst)
}

// drainUpdates flushes the interface's multicast lsupdate_list and every
// neighbor's unicast staging list, fragmenting against the interface MTU.
func (p *Process) drainUpdates(ifc *iface.Interface) {
	h := ospf3.Header{RouterID: ospf3.ID(p.RouterID), InstanceID: ifc.Params.InstanceID}

	if all := ifc.LSUpdateList.All(); len(all) > 0 {
		for _, u := range flood.SplitUpdates(h, p.payload(ifc.LSUpdateList, all, ifc.Params.TransmitDelay), int(ifc.Params.IfMTU)) {
			p.send(ifc, u, ospf3.AllSPFRouters)
		}
	}

	for _, n := range ifc.Neighbors {
		all := n.Lists.LSUpdate.All()
		if len(all) == 0 {
			continue
		}
		for _, u := range flood.SplitUpdates(h, p.payload(n.Lists.LSUpdate, all, ifc.Params.TransmitDelay), int(ifc.Params.IfMTU)) {
			// Per-neighbor updates also go to AllSPFRouters; the sink is
			// given no neighbor address.
			p.send(ifc, u, ospf3.AllSPFRouters)
		}
	}
}

// payload drains list's instances into wire LSAs, aging each by the
// configured transmit delay and releasing the staging references.
func (p *Process) payload(list *lsadb.Database, all []*lsadb.Instance, delay time.Duration) []ospf3.FullLSA {
	if delay <= 0 {
		delay = time.Second
	}
	out := make([]ospf3.FullLSA, 0, len(all))
	for _, inst := range all {
		h := inst.Header
		h.Age += delay
		out = append(out, ospf3.FullLSA{Header: h, Body: inst.Body})
		list.Remove(inst.Key())
		inst.Unref()
	}
	return out
}

func (p *Process) send(ifc *iface.Interface, m ospf3.Message, dst *net.IPAddr) {
	sink, ok := p.sinks[ifc.Name]
	if !ok {
		return
	}
	if err := sink.WriteTo(m, dst); err != nil {
		// Transport failure: log and rely on the next scheduled transmit.
		p.log.WithField("interface", ifc.Name).WithError(err).Warn("send failed")
		p.Count("send_failed")
		return
	}
	p.Count("sent")
}
