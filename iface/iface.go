// Package iface implements per-interface OSPFv3 state: DR/BDR election,
// timer configuration, MTU handling, and MANET flooding parameters.
package iface

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/neighbor"
)

// FloodingMode selects the relay-selection algorithm an interface uses,
// for a link.
type FloodingMode int

// Possible FloodingMode values.
const (
	Classic FloodingMode = iota
	MPRSDCDS
	MDRSICDS
)

func (m FloodingMode) String() string {
	switch m {
	case Classic:
		return "classic"
	case MPRSDCDS:
		return "mpr-sdcds"
	case MDRSICDS:
		return "mdr-sicds"
	default:
		return "FloodingMode(?)"
	}
}

// LSAFullness selects how much topology this router's self-originated
// router-LSA describes on an interface.
type LSAFullness int

// Possible LSAFullness values.
const (
	Full LSAFullness = iota
	MinCost
	MinCost2Paths
	MDRFullLSA
)

// LinkType is the RFC5340 interface type, extended with a MANET and a
// virtual-link variant of RFC 5340, section 4.4.3.8.
type LinkType int

// Possible LinkType values.
const (
	Broadcast LinkType = iota
	NBMA
	PointToMultipoint
	PointToPoint
	MANETLink
	Virtual
)

// Params holds the tunable per-interface parameters. Zero-value Params is
// not valid; use config.Interface to build one with validation.
type Params struct {
	FloodingMode    FloodingMode
	AdjConnectivity int // 1, 2, or 0 meaning unlimited.
	LSAFullness     LSAFullness
	Cost            uint16
	IfMTU           uint16
	MTUIgnore       bool
	HelloInterval   time.Duration
	DeadInterval    time.Duration
	RxmtInterval    time.Duration
	TransmitDelay   time.Duration
	Priority        uint8
	Passive         bool
	InstanceID      uint8
	AckInterval     time.Duration
	PushbackInterval time.Duration
}

// An Interface is one OSPFv3-speaking link: its configuration, its
// neighbor table, and (for broadcast/NBMA links) its elected DR/BDR.
type Interface struct {
	Name     string
	Type     LinkType
	RouterID [4]byte
	Params   Params

	Neighbors map[[4]byte]*neighbor.Neighbor

	// The three link-scoped databases: the authoritative link LSDB plus
	// the multicast transmit staging lists drained by the lsupdate and
	// lsack send timers.
	LinkLSDB     *lsadb.Database
	LSUpdateList *lsadb.Database
	LSAckList    *lsadb.Database

	DR, BDR [4]byte

	// WaitDone reports that the Wait interval after interface-up has
	// elapsed, allowing this router to participate in DR election rather
	// than only learn the incumbents from Hellos.
	WaitDone bool

	// MDRLevel is this router's own relay level on the link (MDROther,
	// MDRBackup, or MDRFull), set after each MDR election.
	MDRLevel int

	// SyncPath, when set, enables smart peering on MPR-mode links: a new
	// adjacency is only formed when no synchronized path to the peer
	// exists yet.
	SyncPath SyncPathFunc

	// Virtual link source/destination, populated only when Type == Virtual.
	VLinkSource, VLinkDest [16]byte

	helloTimer Canceler
	deadTimer  map[[4]byte]Canceler
}

// A Canceler cancels a previously armed timer; satisfied by *sched.Timer.
type Canceler interface {
	Cancel()
}

// New creates an empty Interface.
func New(name string, typ LinkType, routerID [4]byte, p Params) *Interface {
	return &Interface{
		Name:         name,
		Type:         typ,
		RouterID:     routerID,
		Params:       p,
		Neighbors:    make(map[[4]byte]*neighbor.Neighbor),
		LinkLSDB:     lsadb.NewDatabase("link/" + name),
		LSUpdateList: lsadb.NewDatabase("link/" + name + "/lsupdate"),
		LSAckList:    lsadb.NewDatabase("link/" + name + "/lsack"),
		deadTimer:    make(map[[4]byte]Canceler),
	}
}

// Neighbor returns the Neighbor for routerID, creating it in the Down state
// if it does not yet exist.
func (ifc *Interface) Neighbor(routerID [4]byte) *neighbor.Neighbor {
	n, ok := ifc.Neighbors[routerID]
	if !ok {
		n = neighbor.New(routerID)
		ifc.Neighbors[routerID] = n
	}
	return n
}

// DRCandidate reports whether this interface participates in DR/BDR
// election at all: only broadcast and NBMA links with non-zero priority
// do, per RFC5340 §4.2.3.
func (ifc *Interface) DRCandidate() bool {
	return (ifc.Type == Broadcast || ifc.Type == NBMA) && ifc.Params.Priority > 0
}

// SetHelloTimer records the Canceler for the interface's periodic Hello,
// canceling any prior one first.
func (ifc *Interface) SetHelloTimer(c Canceler) {
	if ifc.helloTimer != nil {
		ifc.helloTimer.Cancel()
	}
	ifc.helloTimer = c
}

// SetDeadTimer records the inactivity Canceler for routerID's neighbor
// conversation, canceling any prior one first.
func (ifc *Interface) SetDeadTimer(routerID [4]byte, c Canceler) {
	if old, ok := ifc.deadTimer[routerID]; ok && old != nil {
		old.Cancel()
	}
	ifc.deadTimer[routerID] = c
}

var logger = logrus.WithField("component", "iface")
