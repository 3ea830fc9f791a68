// Package flood implements the LSA receive, redistribution,
// acknowledgement, and MANET pushback algorithms (RFC 2328 section 13,
// with the relay-reduction extensions of RFC 5449 and RFC 5614).
package flood

import (
	"time"

	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/neighbor"
)

// Action enumerates what Receive decided to do with an incoming LSA, so
// the caller (which owns the socket and scheduler) can carry it out.
type Action int

// Possible Action values.
const (
	ActionDrop Action = iota
	ActionDirectAck
	ActionInstallAndFlood
	ActionRaiseBadLSReq
	ActionImpliedAck
	ActionSendBack
)

// ReceiveResult reports the outcome of Receive.
type ReceiveResult struct {
	Action       Action
	ScheduleRefresh bool
}

// ScopeResolver maps an LSA's flooding scope to the Database that should
// hold it: the receiving interface's link-local LSDB, the owning area's
// LSDB, or the process-wide AS LSDB.
type ScopeResolver interface {
	Database(scope ospf3FloodingScope) *lsadb.Database
	Cache() *lsadb.Database
	StubArea() bool
	SelfOriginated(key lsadb.Key) bool
	// AllNeighbors returns every Neighbor across every scope-relevant
	// interface, used to clear retrans-lists and to check the "no neighbor
	// in Exchange/Loading" MaxAge precondition.
	AllNeighbors() []*neighbor.Neighbor
}

// ospf3FloodingScope avoids an import cycle on the root package's exported
// FloodingScope type name while keeping the signature self-documenting;
// callers pass ospf3.FloodingScope values directly since the underlying
// type is identical (uint8).
type ospf3FloodingScope = uint8

// Receive runs the RFC 2328 section 13 receive algorithm against incoming Instance l,
// received from neighbor from on the database resolved by scope.
func Receive(now time.Time, l *lsadb.Instance, from *neighbor.Neighbor, scope ospf3FloodingScope, resolver ScopeResolver) ReceiveResult {
	// Reject stub-area AS-external.
	if resolver.StubArea() && scope == 0b10 {
		return ReceiveResult{Action: ActionDrop}
	}

	db := resolver.Database(scope)
	old, hasOld := db.Lookup(l.Key())

	// MaxAge no-instance fast drop.
	if l.IsMaxAge(now) && !hasOld && !anyExchangeOrLoading(resolver.AllNeighbors()) {
		return ReceiveResult{Action: ActionDirectAck}
	}

	if !hasOld {
		return installAndFlood(now, l, from, db)
	}

	cmp := lsadb.Compare(l, old, now)
	switch {
	case cmp < 0:
		// l is strictly newer.
		if now.Sub(old.InstallTime()) < lsadb.MinLSArrival {
			return ReceiveResult{Action: ActionDrop}
		}
		res := installAndFlood(now, l, from, db)
		if resolver.SelfOriginated(l.Key()) && lsadb.Compare(old, l, now) > 0 {
			res.ScheduleRefresh = true
		}
		return res

	case cmp == 0:
		// Check this neighbor's request_list first.
		if _, onRequest := from.Lists.Request.Lookup(l.Key()); onRequest {
			return ReceiveResult{Action: ActionRaiseBadLSReq}
		}
		// Same instance: implied-ack against retrans list.
		if _, onRetrans := from.Lists.Retrans.Lookup(l.Key()); onRetrans {
			from.Lists.Retrans.Remove(l.Key())
			old.DecRetrans()
			old.SetFlags(lsadb.ImpliedAck)
			return ReceiveResult{Action: ActionImpliedAck}
		}
		return ReceiveResult{Action: ActionDirectAck}

	default:
		// l is older than our copy.
		if _, onRequest := from.Lists.Request.Lookup(l.Key()); onRequest {
			return ReceiveResult{Action: ActionRaiseBadLSReq}
		}
		if int32(old.Header.SequenceNumber) == lsadb.MaxSequenceNumber {
			return ReceiveResult{Action: ActionDrop}
		}
		return ReceiveResult{Action: ActionSendBack}
	}
}

func installAndFlood(now time.Time, l *lsadb.Instance, from *neighbor.Neighbor, db *lsadb.Database) ReceiveResult {
	db.Add(l, now)
	if _, onRequest := from.Lists.Request.Lookup(l.Key()); onRequest {
		from.Lists.Request.Remove(l.Key())
	}
	return ReceiveResult{Action: ActionInstallAndFlood}
}

// ClearRetrans removes key from every neighbor's retrans_list, decrementing
// each cleared Instance's retransmission counter, so an install clears the
// identical copy from every neighbor on every scope-relevant interface.
func ClearRetrans(key lsadb.Key, neighbors []*neighbor.Neighbor) {
	for _, n := range neighbors {
		if inst, ok := n.Lists.Retrans.Lookup(key); ok {
			n.Lists.Retrans.Remove(key)
			inst.DecRetrans()
		}
	}
}

func anyExchangeOrLoading(neighbors []*neighbor.Neighbor) bool {
	for _, n := range neighbors {
		if n.State == neighbor.Exchange || n.State == neighbor.Loading {
			return true
		}
	}
	return false
}
