package iface

import (
	"github.com/sirupsen/logrus"

	"github.com/ospf6d/ospf6/neighbor"
)

// MDR levels mirrored from the relay election, kept on the Interface so
// the adjacency decision does not depend on the manet package.
const (
	MDROther = iota + 1
	MDRBackup
	MDRFull
)

// SyncPathFunc reports whether a synchronized path to routerID already
// exists in the synchronisation SPF table, the smart-peering criterion for
// MPR-mode adjacency suppression.
type SyncPathFunc func(routerID [4]byte) bool

// NeedAdjacency implements neighbor.AdjacencyDecider for this interface:
// point-to-point and virtual links always form adjacencies; broadcast and
// NBMA links only between DR/BDR and others (RFC 5340, section 4.2.4);
// MANET links follow the relay-dependent rules of RFC 5614 (MDR) or
// smart peering (MPR).
func (ifc *Interface) NeedAdjacency(n *neighbor.Neighbor) bool {
	switch ifc.Type {
	case PointToPoint, PointToMultipoint, Virtual:
		return true

	case Broadcast, NBMA:
		self := ifc.RouterID
		return ifc.DR == self || ifc.BDR == self || ifc.DR == n.RouterID || ifc.BDR == n.RouterID

	case MANETLink:
		switch ifc.Params.FloodingMode {
		case MDRSICDS:
			if ifc.Params.AdjConnectivity == 0 {
				return true // Full adjacency between all bidirectional pairs.
			}
			if ifc.MDRLevel >= MDRBackup && n.MANET.MDRLevel >= MDRBackup && n.MANET.Dependent {
				return true
			}
			return n.MANET.Parent || n.MANET.Child

		case MPRSDCDS:
			if ifc.SyncPath == nil {
				return true
			}
			// Smart peering: only adjacency when no synchronized route to
			// the peer exists yet.
			return !ifc.SyncPath(n.RouterID)
		}
		return true
	}
	return false
}

// KeepAdjacency reports whether an existing adjacency (ExStart or beyond)
// should be retained. It is deliberately laxer than NeedAdjacency so a
// relay-set flap does not tear down synchronized pairs: an adjacency is
// kept while either side still satisfies the formation rule or the pair
// is already Full on a MANET link with unlimited connectivity.
func (ifc *Interface) KeepAdjacency(n *neighbor.Neighbor) bool {
	if ifc.Type == MANETLink && ifc.Params.FloodingMode == MDRSICDS {
		if ifc.Params.AdjConnectivity == 0 {
			return true
		}
		return ifc.MDRLevel >= MDRBackup && n.MANET.MDRLevel >= MDRBackup ||
			n.MANET.Parent || n.MANET.Child || n.MANET.Dependent
	}
	return ifc.NeedAdjacency(n)
}

// UpdateAdjacencies re-evaluates every 2-Way-or-beyond neighbor after a
// relay election: pairs that now satisfy NeedAdjacency restart their
// Database Description exchange from ExStart, and pairs no longer
// satisfying KeepAdjacency fall back to 2-Way with cleared lists.
func (ifc *Interface) UpdateAdjacencies() {
	for _, n := range ifc.Neighbors {
		switch {
		case n.State == neighbor.Twoway && ifc.NeedAdjacency(n):
			n.State = neighbor.ExStart
			logger.WithFields(logrus.Fields{
				"interface": ifc.Name,
				"neighbor":  n.RouterID,
			}).Debug("raising adjacency")

		case n.State >= neighbor.ExStart && !ifc.KeepAdjacency(n):
			n.ApplyAdjOK(nil)
			logger.WithFields(logrus.Fields{
				"interface": ifc.Name,
				"neighbor":  n.RouterID,
			}).Debug("dropping adjacency")
		}
	}
}
