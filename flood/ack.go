package flood

import (
	"github.com/ospf6d/ospf6/iface"
)

// AckKind is the acknowledgement channel Policy selects.
type AckKind int

// Possible AckKind values.
const (
	AckNone AckKind = iota
	AckDelayedMulticast
	AckDirectUnicast
	AckImmediateMulticast
)

// AckContext carries everything Policy needs about the interface's role
// and the instance's receive-time flags.
type AckContext struct {
	InterfaceIsBDR    bool
	ReceivedMulticast bool
	Duplicate         bool
	ImpliedAck        bool
	MDRRole           MDRRole
	FullAdjacencyConfigured bool
}

// Policy decides how to acknowledge an LSA on ifc, per the BDR/AllOther
// role split of RFC 2328 section 13.5 and the MANET coalescing and
// immediate-multicast rules.
func Policy(ifc *iface.Interface, ctx AckContext) AckKind {
	if ctx.ImpliedAck {
		// An implied ack against the retrans list still needs a real ack
		// only if it was a duplicate; otherwise the retransmission-list
		// removal itself is sufficient acknowledgement.
		if !ctx.Duplicate {
			return AckNone
		}
	}

	if ifc.Type == iface.MANETLink {
		if ctx.Duplicate {
			if ctx.ReceivedMulticast {
				// Suppressed: the upcoming coalesced multicast ack
				// covers it.
				return AckDelayedMulticast
			}
			return AckDirectUnicast
		}
		if ctx.MDRRole == RoleMDR || ctx.MDRRole == RoleBMDR || ctx.FullAdjacencyConfigured {
			return AckImmediateMulticast
		}
		return AckDelayedMulticast
	}

	if ctx.InterfaceIsBDR {
		return AckDirectUnicast
	}
	if ctx.Duplicate {
		return AckDirectUnicast
	}
	return AckDelayedMulticast
}
