package process

import (
	"time"

	"github.com/sirupsen/logrus"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/area"
	"github.com/ospf6d/ospf6/flood"
	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/manet"
	"github.com/ospf6d/ospf6/neighbor"
	"github.com/ospf6d/ospf6/sched"
)

// retransKey identifies one (interface, neighbor, LSA) retransmission
// conversation.
type retransKey struct {
	ifc string
	rid [4]byte
	lsa lsadb.Key
}

// manetState is the per-interface MANET bookkeeping the dispatch path
// maintains across Hellos: the current relay selection and the pushbacked
// LSAs awaiting their backup-wait timers.
type manetState struct {
	mpr       manet.MPRResult
	snapshot  manet.Snapshot
	pushbacks map[lsadb.Key]*flood.Pushbacked

	// scs is the State Check Sequence advertised in differential Hellos,
	// bumped whenever the relay set changes.
	scs uint16
}

func (p *Process) manetFor(ifc *iface.Interface) *manetState {
	if p.manetIfcs == nil {
		p.manetIfcs = make(map[string]*manetState)
	}
	st, ok := p.manetIfcs[ifc.Name]
	if !ok {
		st = &manetState{
			snapshot:  manet.NewSnapshot(),
			pushbacks: make(map[lsadb.Key]*flood.Pushbacked),
		}
		p.manetIfcs[ifc.Name] = st
	}
	return st
}

// HandleHello processes one received Hello on ifc: neighbor state machine
// events, MANET LLS bookkeeping, relay election, and DR election.
func (p *Process) HandleHello(now time.Time, a *area.Area, ifc *iface.Interface, h *ospf3.Hello) {
	if h.HelloInterval != ifc.Params.HelloInterval || h.RouterDeadInterval != ifc.Params.DeadInterval {
		p.Count("dropped_hello_mismatch")
		return
	}

	rid := [4]byte(h.Header.RouterID)
	n := ifc.Neighbor(rid)
	n.Priority = h.RouterPriority
	n.DR = [4]byte(h.DesignatedRouterID)
	n.BDR = [4]byte(h.BackupDesignatedRouterID)
	n.InterfaceID = h.InterfaceID

	acts := n.Apply(now, neighbor.HelloReceived, ifc)
	if acts.StartInactivityTimer {
		ifc.SetDeadTimer(rid, p.Sched.AddTimer(ifc.Params.DeadInterval, func() {
			p.expireNeighbor(p.now(), ifc, rid)
		}))
	}

	heardUs := false
	for _, id := range h.NeighborIDs {
		if [4]byte(id) == p.RouterID {
			heardUs = true
			break
		}
	}
	if heardUs {
		n.Apply(now, neighbor.TwowayReceived, ifc)
	} else if n.State >= neighbor.Twoway {
		n.Apply(now, neighbor.OnewayReceived, ifc)
	}

	if h.LLS != nil {
		p.applyLLS(n, h.LLS)
	}

	switch {
	case ifc.Type == iface.MANETLink:
		p.runRelayElection(ifc)
	case ifc.DRCandidate() || ifc.Type == iface.Broadcast || ifc.Type == iface.NBMA:
		p.runDRElection(now, ifc)
	}
}

// applyLLS folds a Hello's LLS block into the neighbor's MANET state.
func (p *Process) applyLLS(n *neighbor.Neighbor, lls *ospf3.LLSBlock) {
	rnl := lls.ReportedNeighbors()
	n.MANET.RNL = make(map[[4]byte]bool, len(rnl))
	for _, id := range rnl {
		n.MANET.RNL[[4]byte(id)] = true
	}
	n.MANET.Report2Hop = n.MANET.RNL[p.RouterID]

	n.MANET.Dependent = false
	for _, id := range lls.DependentNeighbors() {
		if [4]byte(id) == p.RouterID {
			n.MANET.Dependent = true
			break
		}
	}

	if scs, ok := lls.StateCheckSequence(); ok {
		n.MANET.SCSNumber = scs
	}
	if level, _, ok := lls.MDRLevel(); ok {
		n.MANET.MDRLevel = int(level) + 1
	}
}

// runRelayElection recomputes the interface's relay state from the current
// neighbor table and re-evaluates adjacencies from the result.
func (p *Process) runRelayElection(ifc *iface.Interface) {
	st := p.manetFor(ifc)

	switch ifc.Params.FloodingMode {
	case iface.MPRSDCDS:
		neighbors := make(map[manet.RouterID]bool)
		twoHop := make(manet.TwoHopSet)
		for rid, n := range ifc.Neighbors {
			if n.State < neighbor.Full {
				continue
			}
			id := manet.RouterID(rid)
			neighbors[id] = true
			twoHop[id] = make(map[manet.RouterID]bool, len(n.MANET.RNL))
			for r := range n.MANET.RNL {
				if r != p.RouterID {
					twoHop[id][manet.RouterID(r)] = true
				}
			}
		}
		st.mpr = manet.Compute(neighbors, twoHop, st.mpr.AOR)
		if st.mpr.Changed {
			st.scs++
		}

	case iface.MDRSICDS:
		var infos []manet.NeighborInfo
		for rid, n := range ifc.Neighbors {
			if n.State < neighbor.Twoway {
				continue
			}
			info := manet.NeighborInfo{
				ID:       manet.RouterID(rid),
				Priority: n.Priority,
				Level:    manet.MDRLevel(n.MANET.MDRLevel - 1),
				TwoHop:   make(map[manet.RouterID]bool, len(n.MANET.RNL)),
			}
			for r := range n.MANET.RNL {
				info.TwoHop[manet.RouterID(r)] = true
			}
			infos = append(infos, info)
		}

		self := manet.NeighborInfo{
			ID:       manet.RouterID(p.RouterID),
			Priority: ifc.Params.Priority,
			Level:    manet.MDRLevel(ifc.MDRLevel - 1),
		}
		res := manet.Elect(self, infos, manet.Params{
			MDRConstraint:   2,
			AdjConnectivity: ifc.Params.AdjConnectivity,
		})
		ifc.MDRLevel = int(res.Level) + 1

		for rid, n := range ifc.Neighbors {
			n.MANET.Parent = res.HasParent && manet.RouterID(rid) == res.Parent ||
				res.HasBackup && manet.RouterID(rid) == res.BackupParent
		}
	}

	ifc.UpdateAdjacencies()
}

// runDRElection rebuilds the candidate set from the neighbor table and
// applies the two-pass election.
func (p *Process) runDRElection(now time.Time, ifc *iface.Interface) {
	if !ifc.WaitDone {
		// Still in the Wait interval: adopt whatever the link reports.
		for _, n := range ifc.Neighbors {
			if n.State >= neighbor.Twoway && n.DR == n.RouterID {
				ifc.DR, ifc.BDR = n.DR, n.BDR
			}
		}
		return
	}

	candidates := []iface.Candidate{{
		RouterID:    ifc.RouterID,
		Priority:    ifc.Params.Priority,
		DeclaredDR:  ifc.DR,
		DeclaredBDR: ifc.BDR,
	}}
	for rid, n := range ifc.Neighbors {
		if n.State < neighbor.Twoway {
			continue
		}
		candidates = append(candidates, iface.Candidate{
			RouterID:    rid,
			Priority:    n.Priority,
			DeclaredDR:  n.DR,
			DeclaredBDR: n.BDR,
		})
	}

	dr, bdr := iface.ElectDR(candidates)
	if dr != ifc.DR || bdr != ifc.BDR {
		p.log.WithFields(logrus.Fields{
			"interface": ifc.Name,
			"dr":        ospf3.ID(dr),
			"bdr":       ospf3.ID(bdr),
		}).Info("DR election changed")
		ifc.DR, ifc.BDR = dr, bdr
		for _, n := range ifc.Neighbors {
			if n.State >= neighbor.Twoway {
				n.ApplyAdjOK(ifc)
			}
		}
	}
}

// expireNeighbor runs the InactivityTimer event: the neighbor and all its
// staged state are destroyed.
func (p *Process) expireNeighbor(now time.Time, ifc *iface.Interface, rid [4]byte) {
	n, ok := ifc.Neighbors[rid]
	if !ok {
		return
	}
	acts := n.Apply(now, neighbor.InactivityTimer, ifc)
	if acts.DeleteNeighbor {
		delete(ifc.Neighbors, rid)
		p.cancelRetransFor(ifc, rid)
		p.Count("neighbor_expired")
		p.log.WithFields(logrus.Fields{
			"interface": ifc.Name,
			"neighbor":  ospf3.ID(rid),
		}).Info("neighbor inactivity timeout")
	}
}

// HandleLSUpdate runs every LSA of u through the flooding engine.
func (p *Process) HandleLSUpdate(now time.Time, a *area.Area, ifc *iface.Interface, from *neighbor.Neighbor, u *ospf3.LinkStateUpdate, recvMcast bool) {
	for _, l := range u.LSAs {
		if !ospf3.VerifyLSA(l.Header, l.Body) {
			p.Count("dropped_checksum")
			continue
		}

		inst := lsadb.NewInstance(l.Header, l.Body, now)
		if recvMcast {
			inst.SetFlags(lsadb.RecvMcast)
		}

		if from.State < neighbor.Exchange {
			// The adjacency is not far enough along to flood; remember the
			// content so the eventual Database Description exchange need
			// not request it.
			p.Cache.Add(inst, now)
			p.Count("cached")
			continue
		}

		scope := l.Header.LSA.Type.FloodingScope()
		resolver := Scopes{Proc: p, Ifc: ifc, Area: a}
		res := flood.Receive(now, inst, from, uint8(scope), resolver)

		switch res.Action {
		case flood.ActionDrop:
			p.Count("dropped")

		case flood.ActionRaiseBadLSReq:
			p.Count("badlsreq")
			from.Apply(now, neighbor.BadLSReq, ifc)

		case flood.ActionDirectAck:
			p.stageAck(now, ifc, from, inst, flood.AckContext{
				ReceivedMulticast: recvMcast,
				Duplicate:         true,
			})

		case flood.ActionImpliedAck:
			p.cancelRetrans(ifc, from.RouterID, inst.Key())
			p.stageAck(now, ifc, from, inst, flood.AckContext{
				ReceivedMulticast: recvMcast,
				Duplicate:         true,
				ImpliedAck:        true,
			})
			p.pushbackProgress(ifc, from, inst.Key())

		case flood.ActionSendBack:
			if ours, ok := resolver.Database(uint8(scope)).Lookup(inst.Key()); ok {
				ours.Ref()
				from.Lists.LSUpdate.Add(ours, now)
			}

		case flood.ActionInstallAndFlood:
			flood.ClearRetrans(inst.Key(), p.AllNeighbors())
			p.redistribute(now, inst, from, ifc)
			p.stageAck(now, ifc, from, inst, flood.AckContext{
				ReceivedMulticast: recvMcast,
			})
			p.pushbackProgress(ifc, from, inst.Key())
		}

		if res.ScheduleRefresh {
			p.Count("refresh_scheduled")
		}
	}

	p.HandleLSUpdateLoading(now, ifc, from)
}

// HandleMessage routes one received packet to the matching handler. It is
// the Dispatch implementation Run is normally given.
func (p *Process) HandleMessage(now time.Time, a *area.Area, ifc *iface.Interface, m ospf3.Message, recvMcast bool) {
	switch v := m.(type) {
	case *ospf3.Hello:
		p.HandleHello(now, a, ifc, v)
	case *ospf3.DatabaseDescription:
		p.HandleDBDesc(now, a, ifc, p.senderOf(ifc, v.Header), v)
	case *ospf3.LinkStateRequest:
		p.HandleLSReq(now, a, ifc, p.senderOf(ifc, v.Header), v)
	case *ospf3.LinkStateUpdate:
		p.HandleLSUpdate(now, a, ifc, p.senderOf(ifc, v.Header), v, recvMcast)
	case *ospf3.LinkStateAcknowledgement:
		p.HandleLSAck(now, ifc, p.senderOf(ifc, v.Header), v)
	}
}

func (p *Process) senderOf(ifc *iface.Interface, h ospf3.Header) *neighbor.Neighbor {
	return ifc.Neighbor([4]byte(h.RouterID))
}

// redistribute floods inst to eligible neighbors and decides the multicast
// refloor, including the MANET pushback path.
func (p *Process) redistribute(now time.Time, inst *lsadb.Instance, from *neighbor.Neighbor, ifc *iface.Interface) {
	flood.Redistribute(now, inst, from, ifc, p.armRetrans(now, ifc))

	st := p.manetFor(ifc)
	senderIsAOR := from != nil && st.mpr.IsAOR(manet.RouterID(from.RouterID))
	reflood, pushback := flood.ShouldReflood(ifc, senderIsAOR, flood.MDRRole(ifc.MDRLevel-1), p.anyUncovered(ifc, from))

	switch {
	case reflood:
		inst.Ref()
		inst.SetFlags(lsadb.FloodBack)
		ifc.LSUpdateList.Add(inst, now)

	case pushback:
		uncovered := p.uncoveredSet(ifc, from)
		pb := flood.NewPushbacked(inst, uncovered, nil)
		pb.Timer = p.Sched.AddTimer(ifc.Params.PushbackInterval+pushbackJitter(inst.Key()), func() {
			p.firePushback(ifc, inst.Key())
		})
		st.pushbacks[inst.Key()] = pb
		p.Count("pushback_held")
	}
}

// pushbackJitter derives a deterministic per-LSA jitter below one second so
// simultaneous pushbacks across the neighborhood do not fire in lockstep.
func pushbackJitter(k lsadb.Key) time.Duration {
	var sum int
	for _, b := range k.AdvertisingRouter {
		sum += int(b)
	}
	for _, b := range k.LinkStateID {
		sum += int(b)
	}
	return time.Duration(sum%1000) * time.Millisecond
}

// uncoveredSet returns the neighbors on ifc the sender's RNL does not
// cover.
func (p *Process) uncoveredSet(ifc *iface.Interface, from *neighbor.Neighbor) map[manet.RouterID]bool {
	out := make(map[manet.RouterID]bool)
	for rid, n := range ifc.Neighbors {
		if n.State < neighbor.Exchange || (from != nil && rid == from.RouterID) {
			continue
		}
		if from == nil || !from.MANET.RNL[rid] {
			out[manet.RouterID(rid)] = true
		}
	}
	return out
}

func (p *Process) anyUncovered(ifc *iface.Interface, from *neighbor.Neighbor) bool {
	return len(p.uncoveredSet(ifc, from)) > 0
}

// firePushback is the backup-wait timer callback: the held LSA goes onto
// the interface's lsupdate_list, its pending delayed ack is cleared, and
// per-neighbor retransmit timers reset.
func (p *Process) firePushback(ifc *iface.Interface, key lsadb.Key) {
	st := p.manetFor(ifc)
	pb, ok := st.pushbacks[key]
	if !ok {
		return
	}
	delete(st.pushbacks, key)

	now := p.now()
	pb.Fire(now)
	pb.Instance.Ref()
	ifc.LSUpdateList.Add(pb.Instance, now)
	ifc.LSAckList.Remove(key)
	for rid := range ifc.Neighbors {
		if t, ok := p.retrans[retransKey{ifc.Name, rid, key}]; ok {
			t.Reset(ifc.Params.RxmtInterval)
		}
	}
	p.Count("pushback_fired")
}

// pushbackProgress applies the implicit-ack-by-proxy rule: a copy of a
// pushbacked LSA arriving from neighbor m removes m's reported neighbors
// from the backup-wait list, canceling the reflood if it empties.
func (p *Process) pushbackProgress(ifc *iface.Interface, from *neighbor.Neighbor, key lsadb.Key) {
	if from == nil {
		return
	}
	st := p.manetFor(ifc)
	pb, ok := st.pushbacks[key]
	if !ok {
		return
	}

	reported := make(map[manet.RouterID]bool, len(from.MANET.RNL)+1)
	reported[manet.RouterID(from.RouterID)] = true
	for r := range from.MANET.RNL {
		reported[manet.RouterID(r)] = true
	}
	if pb.ReceivedFrom(reported) {
		pb.Cancel()
		delete(st.pushbacks, key)
		p.Count("pushback_canceled")
	}
}

// HandleLSAck clears acknowledged instances off the sender's retrans_list
// and feeds pushback cancellation.
func (p *Process) HandleLSAck(now time.Time, ifc *iface.Interface, from *neighbor.Neighbor, ack *ospf3.LinkStateAcknowledgement) {
	for _, h := range ack.LSAs {
		key := lsadb.Key{
			Type:              h.LSA.Type,
			AdvertisingRouter: h.LSA.AdvertisingRouter,
			LinkStateID:       h.LSA.LinkStateID,
		}

		if inst, ok := from.Lists.Retrans.Lookup(key); ok {
			from.Lists.Retrans.Remove(key)
			inst.DecRetrans()
			inst.Unref()
			p.cancelRetrans(ifc, from.RouterID, key)
		}

		from.MANET.AckCache = append(from.MANET.AckCache, key)
		if len(from.MANET.AckCache) > ackCacheSize {
			from.MANET.AckCache = from.MANET.AckCache[len(from.MANET.AckCache)-ackCacheSize:]
		}

		st := p.manetFor(ifc)
		if pb, ok := st.pushbacks[key]; ok && pb.AckFrom(manet.RouterID(from.RouterID)) {
			pb.Cancel()
			delete(st.pushbacks, key)
			p.Count("pushback_canceled")
		}
	}
}

// ackCacheSize bounds each neighbor's recently-acknowledged cache.
const ackCacheSize = 64

// stageAck applies the acknowledgement policy and stages the result on the
// right list.
func (p *Process) stageAck(now time.Time, ifc *iface.Interface, from *neighbor.Neighbor, inst *lsadb.Instance, ctx flood.AckContext) {
	ctx.InterfaceIsBDR = ifc.BDR == ifc.RouterID
	ctx.MDRRole = flood.MDRRole(ifc.MDRLevel - 1)
	ctx.FullAdjacencyConfigured = ifc.Params.AdjConnectivity == 0

	switch flood.Policy(ifc, ctx) {
	case flood.AckDirectUnicast:
		inst.Ref()
		from.Lists.LSAck.Add(inst, now)
	case flood.AckDelayedMulticast, flood.AckImmediateMulticast:
		inst.Ref()
		ifc.LSAckList.Add(inst, now)
	}
}

// armRetrans returns the RetransArmer Redistribute uses: one timer per
// (interface, neighbor, LSA), reset whenever the entry is re-armed.
func (p *Process) armRetrans(now time.Time, ifc *iface.Interface) flood.RetransArmer {
	return func(n *neighbor.Neighbor, key lsadb.Key) flood.Canceler {
		if p.retrans == nil {
			p.retrans = make(map[retransKey]*sched.Timer)
		}
		rk := retransKey{ifc.Name, n.RouterID, key}
		if t, ok := p.retrans[rk]; ok {
			t.Reset(ifc.Params.RxmtInterval)
			return t
		}
		t := p.Sched.AddTimer(ifc.Params.RxmtInterval, func() {
			p.retransmit(ifc, n, key)
		})
		p.retrans[rk] = t
		return t
	}
}

// retransmit fires when RxmtInterval elapses without an ack: the instance
// goes back on the neighbor's lsupdate staging list and the timer re-arms.
func (p *Process) retransmit(ifc *iface.Interface, n *neighbor.Neighbor, key lsadb.Key) {
	inst, ok := n.Lists.Retrans.Lookup(key)
	if !ok {
		delete(p.retrans, retransKey{ifc.Name, n.RouterID, key})
		return
	}
	inst.Ref()
	n.Lists.LSUpdate.Add(inst, p.now())
	p.Count("retransmitted")
	if t, ok := p.retrans[retransKey{ifc.Name, n.RouterID, key}]; ok {
		t.Reset(ifc.Params.RxmtInterval)
	}
}

func (p *Process) cancelRetrans(ifc *iface.Interface, rid [4]byte, key lsadb.Key) {
	rk := retransKey{ifc.Name, rid, key}
	if t, ok := p.retrans[rk]; ok {
		t.Cancel()
		delete(p.retrans, rk)
	}
}

func (p *Process) cancelRetransFor(ifc *iface.Interface, rid [4]byte) {
	for rk, t := range p.retrans {
		if rk.ifc == ifc.Name && rk.rid == rid {
			t.Cancel()
			delete(p.retrans, rk)
		}
	}
}
