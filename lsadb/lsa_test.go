package lsadb

import (
	"testing"
	"time"

	ospf3 "github.com/ospf6d/ospf6"
)

func header(seq uint32, checksum uint16, age time.Duration) ospf3.LSAHeader {
	return ospf3.LSAHeader{
		Age: age,
		LSA: ospf3.LSA{
			Type:              ospf3.LSType(0x2001),
			LinkStateID:       ospf3.ID{0, 0, 0, 1},
			AdvertisingRouter: ospf3.ID{192, 0, 2, 1},
		},
		SequenceNumber: seq,
		Checksum:       checksum,
		Length:         20,
	}
}

func TestCompareSequenceNumber(t *testing.T) {
	now := time.Unix(0, 0)
	older := NewInstance(header(uint32(InitialSequenceNumber), 1, 0), nil, now)
	newer := NewInstance(header(uint32(InitialSequenceNumber)+1, 1, 0), nil, now)

	if got := Compare(newer, older, now); got >= 0 {
		t.Fatalf("Compare(newer, older) = %d, want < 0", got)
	}
	if got := Compare(older, newer, now); got <= 0 {
		t.Fatalf("Compare(older, newer) = %d, want > 0", got)
	}
}

func TestCompareChecksumTiebreak(t *testing.T) {
	now := time.Unix(0, 0)
	a := NewInstance(header(1, 100, 0), nil, now)
	b := NewInstance(header(1, 50, 0), nil, now)

	if got := Compare(a, b, now); got >= 0 {
		t.Fatalf("Compare(higher checksum, lower) = %d, want < 0", got)
	}
}

func TestCompareMaxAgeWins(t *testing.T) {
	now := time.Unix(0, 0)
	stale := NewInstance(header(1, 1, MaxAge), nil, now)
	fresh := NewInstance(header(1, 1, 0), nil, now)

	if got := Compare(stale, fresh, now); got >= 0 {
		t.Fatalf("Compare(MaxAge, fresh) = %d, want < 0 (MaxAge is always most recent)", got)
	}
}

func TestCompareAgeWithinDiffIsEqual(t *testing.T) {
	now := time.Unix(0, 0)
	a := NewInstance(header(1, 1, 10*time.Second), nil, now)
	b := NewInstance(header(1, 1, 10*time.Second+MaxAgeDiff-time.Second), nil, now)

	if got := Compare(a, b, now); got != 0 {
		t.Fatalf("Compare within MaxAgeDiff = %d, want 0", got)
	}
}

func TestCompareAgeBeyondDiffOlderLoses(t *testing.T) {
	now := time.Unix(0, 0)
	younger := NewInstance(header(1, 1, 0), nil, now)
	older := NewInstance(header(1, 1, MaxAgeDiff+time.Second), nil, now)

	if got := Compare(younger, older, now); got >= 0 {
		t.Fatalf("Compare(younger, older) = %d, want < 0", got)
	}
}

func TestInstanceLockCount(t *testing.T) {
	now := time.Unix(0, 0)
	i := NewInstance(header(1, 1, 0), nil, now)

	i.Ref()
	i.Ref()
	if got := i.LockCount(); got != 2 {
		t.Fatalf("LockCount = %d, want 2", got)
	}
	i.Unref()
	if got := i.LockCount(); got != 1 {
		t.Fatalf("LockCount = %d, want 1", got)
	}
	i.Unref()
	i.Unref() // Over-release must not go negative or panic.
	if got := i.LockCount(); got != 0 {
		t.Fatalf("LockCount = %d, want 0", got)
	}
}

func TestInstanceFlags(t *testing.T) {
	now := time.Unix(0, 0)
	i := NewInstance(header(1, 1, 0), nil, now)

	i.SetFlags(FloodBack | ImpliedAck)
	if !i.HasFlags(FloodBack) || !i.HasFlags(ImpliedAck) {
		t.Fatal("expected both flags set")
	}
	if i.HasFlags(Duplicate) {
		t.Fatal("Duplicate should not be set")
	}
	i.ClearFlags(FloodBack)
	if i.HasFlags(FloodBack) {
		t.Fatal("FloodBack should be cleared")
	}
	if !i.HasFlags(ImpliedAck) {
		t.Fatal("ImpliedAck should remain set")
	}
}

func TestKeyOrdering(t *testing.T) {
	a := Key{Type: 1, AdvertisingRouter: ospf3.ID{0, 0, 0, 1}, LinkStateID: ospf3.ID{0, 0, 0, 1}}
	b := Key{Type: 1, AdvertisingRouter: ospf3.ID{0, 0, 0, 2}, LinkStateID: ospf3.ID{0, 0, 0, 1}}
	c := Key{Type: 2, AdvertisingRouter: ospf3.ID{0, 0, 0, 0}, LinkStateID: ospf3.ID{0, 0, 0, 0}}

	if !a.Less(b) {
		t.Fatal("expected a < b by AdvertisingRouter")
	}
	if !b.Less(c) {
		t.Fatal("expected b < c by Type")
	}
	if a.Less(a) {
		t.Fatal("key must not be less than itself")
	}
}
