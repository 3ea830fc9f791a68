package ospf3

import (
	"testing"
	"time"
)

func TestChecksumLSARoundTrip(t *testing.T) {
	h := LSAHeader{
		Age: 0,
		LSA: LSA{
			Type:              RouterLSA,
			LinkStateID:       ID{0, 0, 0, 1},
			AdvertisingRouter: ID{1, 1, 1, 1},
		},
		SequenceNumber: 0x80000001,
		Length:         24,
	}
	body := []byte{0x01, 0x00, 0x00, 0x13}

	h.Checksum = ChecksumLSA(h, body)
	if h.Checksum == 0 {
		t.Fatal("Fletcher checksum of a non-trivial LSA should not be zero")
	}
	if !VerifyLSA(h, body) {
		t.Fatal("checksum should verify against the bytes it was computed over")
	}

	// Flipping any body byte must break verification.
	body[0] ^= 0xff
	if VerifyLSA(h, body) {
		t.Fatal("corrupted body should fail verification")
	}
}

func TestChecksumLSAIgnoresAge(t *testing.T) {
	h := LSAHeader{
		LSA:            LSA{Type: LinkLSA, AdvertisingRouter: ID{2, 2, 2, 2}},
		SequenceNumber: 0x80000002,
		Length:         20,
	}
	h.Checksum = ChecksumLSA(h, nil)

	aged := h
	aged.Age = 900 * time.Second // Age advances in flight; the checksum must not.
	if !VerifyLSA(aged, nil) {
		t.Fatal("checksum must be independent of the Age field")
	}
}
