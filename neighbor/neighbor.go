// Package neighbor implements the OSPFv3 neighbor state machine of RFC5340
// §10.3, generalized to the MANET need_adjacency rules of RFC 5614.
package neighbor

import (
	"time"

	"github.com/ospf6d/ospf6/lsadb"
)

// A State is one of the eight neighbor conversation states of RFC5340 §10.1.
type State int

// Possible State values, ordered so that State comparisons like "any >=
// Twoway" in the transition table can be written as plain integer
// comparisons.
const (
	Down State = iota
	Attempt
	Init
	Twoway
	ExStart
	Exchange
	Loading
	Full
)

func (s State) String() string {
	switch s {
	case Down:
		return "Down"
	case Attempt:
		return "Attempt"
	case Init:
		return "Init"
	case Twoway:
		return "Twoway"
	case ExStart:
		return "ExStart"
	case Exchange:
		return "Exchange"
	case Loading:
		return "Loading"
	case Full:
		return "Full"
	default:
		return "State(?)"
	}
}

// An Event drives a Neighbor's state transition (RFC 5340, section 4.2.2).
type Event int

// Possible Event values.
const (
	HelloReceived Event = iota
	TwowayReceived
	NegotiationDone
	ExchangeDone
	LoadingDone
	AdjOK
	SeqNumberMismatch
	BadLSReq
	OnewayReceived
	InactivityTimer
	KillNbr
)

func (e Event) String() string {
	switch e {
	case HelloReceived:
		return "HelloReceived"
	case TwowayReceived:
		return "2-WayReceived"
	case NegotiationDone:
		return "NegotiationDone"
	case ExchangeDone:
		return "ExchangeDone"
	case LoadingDone:
		return "LoadingDone"
	case AdjOK:
		return "AdjOK?"
	case SeqNumberMismatch:
		return "SeqNumberMismatch"
	case BadLSReq:
		return "BadLSReq"
	case OnewayReceived:
		return "1-WayReceived"
	case InactivityTimer:
		return "InactivityTimer"
	case KillNbr:
		return "KillNbr"
	default:
		return "Event(?)"
	}
}

// AdjacencyDecider reports whether an adjacency should be formed with a
// given Neighbor: point-to-point always
// adjacent; broadcast only with DR/BDR; MDR-SICDS by MDR/BMDR/dependent/
// parent-child relationship; MPR-SDCDS-with-smart-peering only absent an
// existing synchronization route. The concrete decision logic lives in the
// iface and manet packages, which know about link type and relay-selection
// results neighbor does not.
type AdjacencyDecider interface {
	NeedAdjacency(n *Neighbor) bool
}

// Lists are the seven staging LSDBs attached to every neighbor
// conversation. request_list and the rest use lsadb.Database so they get
// the same ordered-traversal semantics as the authoritative LSDB; an
// Instance may be Ref'd into several of these simultaneously; lsadb.Key
// equality (not pointer identity) is always the lookup/removal key.
type Lists struct {
	Summary  *lsadb.Database // summary_list: described during Exchange.
	Request  *lsadb.Database // request_list: LSAs this neighbor must still send us.
	Retrans  *lsadb.Database // retrans_list: our LSAs pending this neighbor's ack.
	DBDesc   *lsadb.Database // dbdesc_list: in-flight Database Description packets.
	LSReq    *lsadb.Database // lsreq_list: outstanding Link State Request entries.
	LSUpdate *lsadb.Database // lsupdate_list: LSAs queued for the next Link State Update.
	LSAck    *lsadb.Database // lsack_list: LSA headers queued for the next Ack.
}

func newLists(scope string) *Lists {
	return &Lists{
		Summary:  lsadb.NewDatabase(scope + "/summary"),
		Request:  lsadb.NewDatabase(scope + "/request"),
		Retrans:  lsadb.NewDatabase(scope + "/retrans"),
		DBDesc:   lsadb.NewDatabase(scope + "/dbdesc"),
		LSReq:    lsadb.NewDatabase(scope + "/lsreq"),
		LSUpdate: lsadb.NewDatabase(scope + "/lsupdate"),
		LSAck:    lsadb.NewDatabase(scope + "/lsack"),
	}
}

// MANET carries the per-neighbor fields the MDR-SICDS and MPR-SDCDS relay
// algorithms need.
type MANET struct {
	Report2Hop bool // This neighbor's Hello carries our router in its reported 2-hop set.
	MDRLevel   int  // 0=Unknown,1=OtherMDR,2=BackupMDR,3=MDR, per RFC 5614 section 5.
	Parent     bool // This neighbor is our MDR-SICDS parent.
	Child      bool // We are this neighbor's parent or backup parent.
	Dependent  bool // We are listed in this neighbor's DependentNeighbors TLV.
	Adv        bool // This neighbor is selected for advertisement in our router-LSA.
	SCSNumber  uint16

	// RNL is the neighbor's reported neighbor list from its most recent
	// Hello LLS block, consulted for MDR coverage and pushback's implicit
	// ack by proxy.
	RNL map[[4]byte]bool

	// AckCache holds the keys (LS type, advertising router, LS ID; no
	// sequence number) of the LSAs this neighbor most recently acknowledged
	// in an explicit Ack, oldest first. The process package appends to it and
	// bounds its length; pushback cancellation does not read it.
	AckCache []lsadb.Key
}

// A Neighbor is one OSPFv3 conversation, keyed by RouterID within the
// owning Interface.
type Neighbor struct {
	RouterID       [4]byte
	State          State
	DR, BDR        [4]byte
	Priority       uint8
	InterfaceID    uint32
	Options        uint32
	MasterSlave    bool   // True if we are Master in the DBDesc exchange.
	DDSequence     uint32 // Current Database Description sequence number.

	Lists *Lists
	MANET MANET

	inactivity Canceler
	lastSeen   time.Time
}

// A Canceler cancels a previously armed timer; satisfied by *sched.Timer.
type Canceler interface {
	Cancel()
}

// New creates a Down-state Neighbor for routerID.
func New(routerID [4]byte) *Neighbor {
	return &Neighbor{
		RouterID: routerID,
		State:    Down,
		Lists:    newLists(idString(routerID)),
	}
}

func idString(id [4]byte) string {
	const hex = "0123456789abcdef"
	b := make([]byte, 0, 8)
	for _, o := range id {
		b = append(b, hex[o>>4], hex[o&0xf])
	}
	return string(b)
}

// SetInactivityTimer records the Canceler so a later event can cancel it
// before arming a new one. The process package owns the scheduler and is
// responsible for actually arming/disarming via sched.Timer.
func (n *Neighbor) SetInactivityTimer(c Canceler) {
	if n.inactivity != nil {
		n.inactivity.Cancel()
	}
	n.inactivity = c
}

// Touch records that a Hello (or other liveness signal) was just received.
func (n *Neighbor) Touch(now time.Time) { n.lastSeen = now }

// LastSeen returns the last Touch time.
func (n *Neighbor) LastSeen() time.Time { return n.lastSeen }

// clearLists resets every staging list, used when a conversation falls
// back below Exchange and must restart its Database Description exchange.
func (n *Neighbor) clearLists() {
	n.Lists.Summary = lsadb.NewDatabase(n.Lists.Summary.Scope)
	n.Lists.Request = lsadb.NewDatabase(n.Lists.Request.Scope)
	n.Lists.Retrans = lsadb.NewDatabase(n.Lists.Retrans.Scope)
	n.Lists.DBDesc = lsadb.NewDatabase(n.Lists.DBDesc.Scope)
	n.Lists.LSReq = lsadb.NewDatabase(n.Lists.LSReq.Scope)
	n.Lists.LSUpdate = lsadb.NewDatabase(n.Lists.LSUpdate.Scope)
	n.Lists.LSAck = lsadb.NewDatabase(n.Lists.LSAck.Scope)
}

// SeedSummary populates summary_list on entering Exchange: every non-MaxAge
// Instance from the given scope LSDBs that isn't already present in cache
// goes onto summary_list to be described; MaxAge Instances go straight onto
// retrans_list instead, so they are flushed rather than described.
func (n *Neighbor) SeedSummary(now time.Time, cache *lsadb.Database, scopeDBs ...*lsadb.Database) {
	for _, db := range scopeDBs {
		for _, inst := range db.All() {
			if cache != nil {
				if _, ok := cache.Lookup(inst.Key()); ok {
					continue
				}
			}
			if inst.IsMaxAge(now) {
				inst.Ref()
				n.Lists.Retrans.Add(inst, now)
				continue
			}
			inst.Ref()
			n.Lists.Summary.Add(inst, now)
		}
	}
}
