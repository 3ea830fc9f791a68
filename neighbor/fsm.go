package neighbor

import "time"

// Actions are the side effects a transition asks its caller to perform.
// Neighbor itself never touches the scheduler, wire codec, or LSDB directly
// outside of the staging lists it owns; everything it cannot decide alone
// (timer arming, packet transmission, re-running need_adjacency against
// live interface/MANET state) is reported back through Actions so the
// process package can execute it on the single scheduler goroutine.
type Actions struct {
	StartInactivityTimer bool
	ClearLists           bool
	SeedSummaryRequired  bool // Caller must call Neighbor.SeedSummary.
	ReevaluateAdjacency  bool
	DeleteNeighbor       bool
}

// ErrBadTransition describes an event that is not valid from the
// Neighbor's current state. Apply does not return it: Apply has no error
// result, and (state, event) pairs not in its table are ignored.
type ErrBadTransition struct {
	From  State
	Event Event
}

func (e *ErrBadTransition) Error() string {
	return "neighbor: no transition for event " + e.Event.String() + " from state " + e.From.String()
}

// Apply advances n according to the RFC 5340 transition table, returning the
// Actions the caller must perform as a result. need_adjacency is consulted
// via the provided AdjacencyDecider wherever the table says "decide
// need_adjacency" or "re-evaluate need_adjacency".
func (n *Neighbor) Apply(now time.Time, event Event, decider AdjacencyDecider) Actions {
	switch event {
	case HelloReceived:
		n.Touch(now)
		if n.State == Down {
			n.State = Init
			return Actions{StartInactivityTimer: true}
		}
		return Actions{StartInactivityTimer: true}

	case TwowayReceived:
		if n.State != Init {
			return Actions{}
		}
		if decider != nil && decider.NeedAdjacency(n) {
			n.State = ExStart
		} else {
			n.State = Twoway
		}
		return Actions{}

	case NegotiationDone:
		if n.State != ExStart {
			return Actions{}
		}
		n.State = Exchange
		return Actions{SeedSummaryRequired: true}

	case ExchangeDone:
		if n.State != Exchange {
			return Actions{}
		}
		if n.Lists.Request.Len() == 0 {
			n.State = Full
		} else {
			n.State = Loading
		}
		return Actions{}

	case LoadingDone:
		if n.State != Loading {
			return Actions{}
		}
		if n.Lists.Request.Len() != 0 {
			// Loading with a non-empty request_list is a logic error
			// upstream; do not silently promote to Full.
			return Actions{}
		}
		n.State = Full
		return Actions{}

	case AdjOK:
		if n.State < Twoway {
			return Actions{}
		}
		return Actions{ReevaluateAdjacency: true}

	case SeqNumberMismatch, BadLSReq:
		if n.State < Exchange {
			return Actions{}
		}
		n.clearLists()
		n.State = ExStart
		return Actions{ClearLists: true}

	case OnewayReceived:
		if n.State < Twoway {
			return Actions{}
		}
		n.clearLists()
		n.State = Init
		return Actions{ClearLists: true}

	case InactivityTimer, KillNbr:
		n.clearLists()
		n.State = Down
		return Actions{ClearLists: true, DeleteNeighbor: true}

	default:
		return Actions{}
	}
}

// ApplyAdjOK executes the "re-evaluate need_adjacency" action: when the
// decision flips from adjacent to non-adjacent on a neighbor at ExStart or
// beyond, the neighbor drops back to Twoway; when it flips from
// non-adjacent to adjacent on a Twoway neighbor, it advances to ExStart.
// Any other combination is a no-op, matching RFC5340 §10.3's AdjOK? table.
func (n *Neighbor) ApplyAdjOK(decider AdjacencyDecider) {
	adjacent := decider != nil && decider.NeedAdjacency(n)
	switch {
	case n.State == Twoway && adjacent:
		n.State = ExStart
	case n.State >= ExStart && !adjacent:
		n.clearLists()
		n.State = Twoway
	}
}
