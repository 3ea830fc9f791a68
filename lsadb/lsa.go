// Package lsadb implements the Link State Database: a reference-counted,
// ordered collection of LSA instances keyed by
// (type, advertising router, link-state ID), with the age/sequence-number/
// checksum recency rules and MaxAge removal semantics OSPFv3 requires.
package lsadb

import (
	"errors"
	"fmt"
	"time"

	ospf3 "github.com/ospf6d/ospf6"
)

// Architectural constants from RFC 2328, appendix B.
const (
	MaxAge        = 3600 * time.Second
	MaxAgeDiff    = 900 * time.Second
	MinLSArrival  = 1 * time.Second
	MinLSInterval = 5 * time.Second
	LSRefreshTime = 1800 * time.Second
)

// InitialSequenceNumber and MaxSequenceNumber are declared as vars rather
// than consts solely so that uint32(InitialSequenceNumber) is a runtime
// conversion instead of a constant conversion; Go forbids constant
// conversion of a negative int32 constant to uint32 even though the
// intended bit pattern (0x80000001) is representable.
var (
	InitialSequenceNumber int32 = -0x7fffffff - 1 + 1 // 0x80000001 as a signed int32.
	MaxSequenceNumber     int32 = 0x7fffffff
)

var (
	// ErrMaxAgeLocked describes a MaxAge LSA that still has outstanding
	// retransmissions. No function in this package returns it; Sweep skips
	// such an Instance instead.
	ErrMaxAgeLocked = errors.New("lsadb: MaxAge LSA has outstanding retransmissions")
)

// Key identifies an Instance within a single Database. The cache LSDB
// holding content received before an adjacency reached Exchange is not
// distinguished by a flag in Key: the cache and authoritative LSDBs for a
// given scope are simply two separate Database values.
type Key struct {
	Type              ospf3.LSType
	AdvertisingRouter ospf3.ID
	LinkStateID       ospf3.ID
}

// Less orders keys lexicographically by (Type, AdvertisingRouter,
// LinkStateID), the order all iteration follows.
func (k Key) Less(o Key) bool {
	if k.Type != o.Type {
		return k.Type < o.Type
	}
	if k.AdvertisingRouter != o.AdvertisingRouter {
		return lessID(k.AdvertisingRouter, o.AdvertisingRouter)
	}
	return lessID(k.LinkStateID, o.LinkStateID)
}

func lessID(a, b ospf3.ID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Type, k.AdvertisingRouter, k.LinkStateID)
}

// Flags are the MANET-only per-instance bits.
type Flags uint8

// Possible Flags values.
const (
	FloodBack Flags = 1 << iota // Reflooded out its receive interface.
	Duplicate
	ImpliedAck
	RecvMcast
	Translated
)

// An Instance is a single LSA as tracked by the flooding/adjacency core: a
// header, an opaque body, and derived bookkeeping. The
// same Instance is shared (never copied) across the authoritative Database
// entry, any neighbor's staging lists, and in-flight transmit callbacks; Ref
// and Unref implement the lock-count discipline that keeps it alive while
// any of those hold a reference.
type Instance struct {
	Header ospf3.LSAHeader
	Body   []byte

	scope ospf3.FloodingScope

	installTime  time.Time
	birthTime    time.Time
	receivedTime time.Time

	lockCount    int
	retransCount int

	flags Flags

	db *Database // Owning Database, set by Database.Add.

	expiry  Canceler
	refresh Canceler
}

// A Canceler cancels a previously armed timer. It is satisfied by
// *sched.Timer; lsadb does not import sched directly so that it has no
// dependency on the scheduler's wall-clock assumptions in tests.
type Canceler interface {
	Cancel()
}

// NewInstance wraps header and body into a fresh Instance with birth/receive
// timestamps set to now. Newly originated (self) LSAs and newly received
// LSAs both start this way; Database.Add records InstallTime separately.
func NewInstance(header ospf3.LSAHeader, body []byte, now time.Time) *Instance {
	return &Instance{
		Header:       header,
		Body:         body,
		scope:        header.LSA.Type.FloodingScope(),
		birthTime:    now,
		receivedTime: now,
	}
}

// Key returns the Instance's Database key.
func (i *Instance) Key() Key {
	return Key{
		Type:              i.Header.LSA.Type,
		AdvertisingRouter:  i.Header.LSA.AdvertisingRouter,
		LinkStateID:        i.Header.LSA.LinkStateID,
	}
}

// Scope returns the flooding scope (link-local, area, or AS) encoded in the
// LSA's type field.
func (i *Instance) Scope() ospf3.FloodingScope { return i.scope }

// Age returns the LSA's age at instant now: its header Age at install time
// plus wall-clock elapsed since installation. Self-originated LSAs that have
// never been installed report the age since birth.
func (i *Instance) Age(now time.Time) time.Duration {
	base := i.installTime
	if base.IsZero() {
		base = i.birthTime
	}
	return i.Header.Age + now.Sub(base)
}

// IsMaxAge reports whether the Instance's age has reached MaxAge.
func (i *Instance) IsMaxAge(now time.Time) bool {
	return i.Age(now) >= MaxAge
}

// InstallTime, BirthTime, and ReceivedTime expose the derived timestamps
// for collaborators (flooding's MinLSArrival enforcement, refresh
// scheduling).
func (i *Instance) InstallTime() time.Time  { return i.installTime }
func (i *Instance) BirthTime() time.Time    { return i.birthTime }
func (i *Instance) ReceivedTime() time.Time { return i.receivedTime }

// RetransCount returns the number of neighbor retrans_lists currently
// holding this Instance.
func (i *Instance) RetransCount() int { return i.retransCount }

// IncRetrans and DecRetrans adjust RetransCount as the Instance is added to
// or removed from a neighbor's retrans_list.
func (i *Instance) IncRetrans() { i.retransCount++ }
func (i *Instance) DecRetrans() {
	if i.retransCount > 0 {
		i.retransCount--
	}
}

// Ref increments the lock count, recording one more list membership.
func (i *Instance) Ref() { i.lockCount++ }

// Unref decrements the lock count. Over-release is clamped at zero rather
// than panicking.
func (i *Instance) Unref() {
	if i.lockCount > 0 {
		i.lockCount--
	}
}

// LockCount returns the current reference count.
func (i *Instance) LockCount() int { return i.lockCount }

// Flags returns the MANET-only bits.
func (i *Instance) Flags() Flags { return i.flags }

// SetFlags ORs in the given bits.
func (i *Instance) SetFlags(f Flags) { i.flags |= f }

// ClearFlags ANDs out the given bits.
func (i *Instance) ClearFlags(f Flags) { i.flags &^= f }

// HasFlags reports whether all of f are set.
func (i *Instance) HasFlags(f Flags) bool { return i.flags&f == f }

// SetExpiry records the expiry timer handle, canceling any prior one. The
// timer should resolve the Instance by Key at fire time rather than hold
// it live.
func (i *Instance) SetExpiry(c Canceler) {
	if i.expiry != nil {
		i.expiry.Cancel()
	}
	i.expiry = c
}

// SetRefresh records the self-origination refresh timer handle, canceling
// any prior one.
func (i *Instance) SetRefresh(c Canceler) {
	if i.refresh != nil {
		i.refresh.Cancel()
	}
	i.refresh = c
}

// CancelTimers cancels the expiry and refresh timers; Database removal
// calls this so a removed Instance never fires stale callbacks.
func (i *Instance) CancelTimers() {
	if i.expiry != nil {
		i.expiry.Cancel()
		i.expiry = nil
	}
	if i.refresh != nil {
		i.refresh.Cancel()
		i.refresh = nil
	}
}

// ChecksumOK reports whether the Instance's stored checksum matches its
// header and body bytes.
func (i *Instance) ChecksumOK() bool {
	return ospf3.VerifyLSA(i.Header, i.Body)
}

// Database returns the owning Database, or nil if the Instance is not
// currently installed anywhere.
func (i *Instance) Database() *Database { return i.db }

// Compare orders two Instances by recency, per RFC 2328 section 13.1:
// Compare(a,b) < 0 means a is more recent. Equal-content instances compare
// as 0.
func Compare(a, b *Instance, now time.Time) int {
	as, bs := a.Header.SequenceNumber, b.Header.SequenceNumber
	if as != bs {
		// Sequence numbers use the signed wrap convention: interpreting the
		// bit pattern as a signed int32 makes InitialSequenceNumber the most
		// negative value and MaxSequenceNumber the most positive, so a plain
		// signed comparison already expresses "greater seqnum wins".
		if int32(as) > int32(bs) {
			return -1
		}
		return 1
	}

	if a.Header.Checksum != b.Header.Checksum {
		if a.Header.Checksum > b.Header.Checksum {
			return -1
		}
		return 1
	}

	aMax, bMax := a.IsMaxAge(now), b.IsMaxAge(now)
	if aMax != bMax {
		if aMax {
			return -1
		}
		return 1
	}

	aAge, bAge := a.Age(now), b.Age(now)
	diff := aAge - bAge
	if diff < 0 {
		diff = -diff
	}
	if diff > MaxAgeDiff {
		if aAge < bAge {
			return -1
		}
		return 1
	}

	return 0
}
