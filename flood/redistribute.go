package flood

import (
	"time"

	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/neighbor"
)

// A Canceler cancels a previously armed timer; satisfied by *sched.Timer.
type Canceler interface {
	Cancel()
}

// RetransArmer arms the per-neighbor retransmit timer for key, to be
// canceled when the neighbor's retrans_list entry clears.
type RetransArmer func(n *neighbor.Neighbor, key lsadb.Key) Canceler

// Redistribute implements RFC 2328 section 13.3: for every candidate neighbor on the
// interface, reconcile against its request_list and (if still warranted)
// add the LSA to its retrans_list; then decide whether to additionally
// enqueue the LSA on the interface's lsupdate_list for multicast refloor.
func Redistribute(now time.Time, l *lsadb.Instance, receivedFrom *neighbor.Neighbor, ifc *iface.Interface, rxmt RetransArmer) {
	for _, n := range ifc.Neighbors {
		if n.State < neighbor.Exchange {
			continue
		}

		if n.State != neighbor.Full {
			if req, ok := n.Lists.Request.Lookup(l.Key()); ok {
				cmp := lsadb.Compare(l, req, now)
				switch {
				case cmp < 0:
					n.Lists.Request.Remove(l.Key())
				case cmp > 0:
					continue // Older than what's requested: suppress flooding to this neighbor.
				}
			}
		}

		if n == receivedFrom {
			continue
		}

		l.Ref()
		n.Lists.Retrans.Add(l, now)
		l.IncRetrans()
		if rxmt != nil {
			rxmt(n, l.Key())
		}
	}
}

// ShouldReflood decides whether l should additionally be enqueued on the
// interface's lsupdate_list for a multicast refloor, branching on the
// configured classic/MPR-SDCDS/MDR-SICDS flooding mode.
func ShouldReflood(ifc *iface.Interface, senderIsAOR bool, localRole MDRRole, uncoveredNeighbor bool) (reflood, pushback bool) {
	switch ifc.Params.FloodingMode {
	case iface.Classic:
		switch ifc.Type {
		case iface.Broadcast, iface.NBMA, iface.PointToMultipoint, iface.MANETLink:
			return true, false
		default:
			return false, false
		}

	case iface.MPRSDCDS:
		if senderIsAOR {
			return true, false
		}
		return false, true

	case iface.MDRSICDS:
		switch localRole {
		case RoleMDR:
			return uncoveredNeighbor, false
		case RoleBMDR:
			return false, true
		default:
			return false, false
		}
	}
	return false, false
}

// MDRRole mirrors manet.MDRLevel without importing the manet package,
// avoiding a dependency cycle (manet has no need to know about interfaces).
type MDRRole int

// Possible MDRRole values, matching manet.Other/BMDR/MDR by position.
const (
	RoleOther MDRRole = iota
	RoleBMDR
	RoleMDR
)
