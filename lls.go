package ospf3

import (
	"encoding/binary"
	"fmt"
)

// LLS (Link-Local Signaling) carries MANET extension TLVs after a Hello or
// DatabaseDescription packet, as described in RFC5613 and used by the MANET
// flooding/relay extensions. Its presence is signaled by the
// L-bit in the carrying packet's Options.
const llsHeaderLen = 4

// An LLSTLVType identifies the kind of data carried in an LLSTLV.
type LLSTLVType uint16

// Possible LLSTLVType values.
const (
	LLSOptionsTLV      LLSTLVType = 1
	LLSStateCheckSeqTLV LLSTLVType = 2
	LLSNeighborDropTLV LLSTLVType = 3
	LLSRelayTLV        LLSTLVType = 4
	LLSWillingnessTLV  LLSTLVType = 5
	LLSRequestTLV      LLSTLVType = 6
	LLSFullSyncTLV     LLSTLVType = 7
	LLSHeardNLTLV      LLSTLVType = 0x11
	LLSReportedNLTLV   LLSTLVType = 0x12
	LLSLostNLTLV       LLSTLVType = 0x13
	LLSHelloSeqTLV     LLSTLVType = 0x14
	LLSMDRPairTLV      LLSTLVType = 0x15
	LLSDependentNLTLV  LLSTLVType = 0x16
)

// An LLSTLV is a single, opaque Link-Local Signaling TLV. The typed
// accessors below (NeighborIDs, StateCheckSequence, etc.) interpret Value
// for the TLV kinds the MANET extensions require.
type LLSTLV struct {
	Type  LLSTLVType
	Value []byte
}

func (t LLSTLV) wireLen() int {
	// Round up to a 4 byte boundary; RFC5613 TLVs are padded to that
	// boundary so the whole LLS block stays 32-bit aligned.
	return 4 + ((len(t.Value) + 3) &^ 3)
}

func (t LLSTLV) marshal(b []byte) {
	binary.BigEndian.PutUint16(b[0:2], uint16(t.Type))
	binary.BigEndian.PutUint16(b[2:4], uint16(len(t.Value)))
	copy(b[4:], t.Value)
}

func parseLLSTLV(b []byte) (LLSTLV, int, error) {
	if len(b) < 4 {
		return LLSTLV{}, 0, fmt.Errorf("not enough bytes for LLS TLV header: %d: %w", len(b), errParse)
	}

	t := LLSTLV{
		Type: LLSTLVType(binary.BigEndian.Uint16(b[0:2])),
	}
	vlen := int(binary.BigEndian.Uint16(b[2:4]))
	total := 4 + vlen
	if len(b) < total {
		return LLSTLV{}, 0, fmt.Errorf("not enough bytes for LLS TLV value: need %d, have %d: %w", vlen, len(b)-4, errParse)
	}

	t.Value = make([]byte, vlen)
	copy(t.Value, b[4:total])

	// Consume alignment padding, if any, when computing the next offset.
	padded := 4 + ((vlen + 3) &^ 3)
	if len(b) < padded {
		padded = total
	}

	return t, padded, nil
}

// An LLSBlock is the RFC5613 Link-Local Signaling block appended after a
// Hello or DatabaseDescription when MANET mode is active on the sending
// interface.
type LLSBlock struct {
	// Checksum is written to the wire as set; marshal does not compute it.
	Checksum uint16
	TLVs     []LLSTLV
}

// lenWords returns the LLS block's length in 32-bit words, including its own
// 4 byte header, as stored on the wire.
func (l *LLSBlock) lenWords() uint16 {
	n := llsHeaderLen
	for _, t := range l.TLVs {
		n += t.wireLen()
	}
	return uint16(n / 4)
}

func (l *LLSBlock) byteLen() int {
	return int(l.lenWords()) * 4
}

func (l *LLSBlock) marshal(b []byte) {
	// Checksum is computed over the LLS data by the caller's transport layer
	// (the IPv6 pseudo-header participates per RFC5613 §2.2); this package
	// stores whatever value is set and leaves verification to Conn, matching
	// how Header.Checksum is handled by parseHeader.
	binary.BigEndian.PutUint16(b[0:2], l.Checksum)
	binary.BigEndian.PutUint16(b[2:4], l.lenWords())

	off := llsHeaderLen
	for _, t := range l.TLVs {
		t.marshal(b[off:])
		off += t.wireLen()
	}
}

func parseLLSBlock(b []byte) (*LLSBlock, error) {
	if len(b) < llsHeaderLen {
		return nil, fmt.Errorf("not enough bytes for LLS header: %d: %w", len(b), errParse)
	}

	l := &LLSBlock{Checksum: binary.BigEndian.Uint16(b[0:2])}
	words := binary.BigEndian.Uint16(b[2:4])
	total := int(words) * 4
	if total < llsHeaderLen || total > len(b) {
		return nil, fmt.Errorf("LLS length %d words out of range for %d available bytes: %w", words, len(b), errParse)
	}

	off := llsHeaderLen
	for off < total {
		t, n, err := parseLLSTLV(b[off:total])
		if err != nil {
			return nil, fmt.Errorf("failed to parse LLS TLV at offset %d: %w", off, err)
		}
		l.TLVs = append(l.TLVs, t)
		off += n
	}

	return l, nil
}

// Get returns the first TLV of the given type, if present.
func (l *LLSBlock) Get(t LLSTLVType) (LLSTLV, bool) {
	for _, tlv := range l.TLVs {
		if tlv.Type == t {
			return tlv, true
		}
	}
	return LLSTLV{}, false
}

// Set replaces (or appends) the first TLV of the given type.
func (l *LLSBlock) Set(t LLSTLV) {
	for i, tlv := range l.TLVs {
		if tlv.Type == t.Type {
			l.TLVs[i] = t
			return
		}
	}
	l.TLVs = append(l.TLVs, t)
}

// StateCheckSequence returns the ScS counter carried in an
// LLSStateCheckSeqTLV, used by differential Hellos to trigger a full RNL
// resync on mismatch.
func (l *LLSBlock) StateCheckSequence() (uint16, bool) {
	tlv, ok := l.Get(LLSStateCheckSeqTLV)
	if !ok || len(tlv.Value) < 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(tlv.Value[0:2]), true
}

// SetStateCheckSequence stores scs in an LLSStateCheckSeqTLV.
func (l *LLSBlock) SetStateCheckSequence(scs uint16) {
	v := make([]byte, 2)
	binary.BigEndian.PutUint16(v, scs)
	l.Set(LLSTLV{Type: LLSStateCheckSeqTLV, Value: v})
}

// neighborIDList decodes a TLV whose value is a flat array of 4 byte router
// IDs, the shape shared by Heard-NL, Reported-NL, Lost-NL, and Dependent-NL.
func neighborIDList(v []byte) []ID {
	ids := make([]ID, 0, len(v)/4)
	for i := 0; i+4 <= len(v); i += 4 {
		var id ID
		copy(id[:], v[i:i+4])
		ids = append(ids, id)
	}
	return ids
}

func marshalNeighborIDList(ids []ID) []byte {
	v := make([]byte, 4*len(ids))
	for i, id := range ids {
		copy(v[i*4:i*4+4], id[:])
	}
	return v
}

// ReportedNeighbors returns the RNL (Reported Neighbor List) carried in an
// LLSReportedNLTLV: the set of neighbors the sender has heard on this
// interface, consulted by MDR-SICDS uncovered-neighbor computation and by
// pushback's implicit-ack-by-proxy rule.
func (l *LLSBlock) ReportedNeighbors() []ID {
	tlv, ok := l.Get(LLSReportedNLTLV)
	if !ok {
		return nil
	}
	return neighborIDList(tlv.Value)
}

// SetReportedNeighbors stores the RNL in an LLSReportedNLTLV.
func (l *LLSBlock) SetReportedNeighbors(ids []ID) {
	l.Set(LLSTLV{Type: LLSReportedNLTLV, Value: marshalNeighborIDList(ids)})
}

// HeardNeighbors returns the set of neighbors heard since the last
// differential Hello, from an LLSHeardNLTLV.
func (l *LLSBlock) HeardNeighbors() []ID { return l.neighborListOf(LLSHeardNLTLV) }

// LostNeighbors returns the set of neighbors no longer heard since the last
// differential Hello, from an LLSLostNLTLV.
func (l *LLSBlock) LostNeighbors() []ID { return l.neighborListOf(LLSLostNLTLV) }

// DependentNeighbors returns the set of neighbors this router depends on for
// MDR parent/child adjacency decisions, from an
// LLSDependentNLTLV.
func (l *LLSBlock) DependentNeighbors() []ID { return l.neighborListOf(LLSDependentNLTLV) }

func (l *LLSBlock) neighborListOf(t LLSTLVType) []ID {
	tlv, ok := l.Get(t)
	if !ok {
		return nil
	}
	return neighborIDList(tlv.Value)
}

// RelayIDs returns the set of active relay router IDs carried in an
// LLSRelayTLV, advertised by an MPR-SDCDS selector so peers can see who it
// has chosen as AOR.
func (l *LLSBlock) RelayIDs() []ID { return l.neighborListOf(LLSRelayTLV) }

// SetRelayIDs stores the AOR set in an LLSRelayTLV.
func (l *LLSBlock) SetRelayIDs(ids []ID) {
	l.Set(LLSTLV{Type: LLSRelayTLV, Value: marshalNeighborIDList(ids)})
}

// Willingness returns the single-byte willingness value from an
// LLSWillingnessTLV, used as an MPR-SDCDS tie-break input.
func (l *LLSBlock) Willingness() (uint8, bool) {
	tlv, ok := l.Get(LLSWillingnessTLV)
	if !ok || len(tlv.Value) < 1 {
		return 0, false
	}
	return tlv.Value[0], true
}

// SetWillingness stores w in an LLSWillingnessTLV.
func (l *LLSBlock) SetWillingness(w uint8) {
	l.Set(LLSTLV{Type: LLSWillingnessTLV, Value: []byte{w}})
}

// MDRLevel and MDRPriority are decoded from an LLSMDRPairTLV, the MDR-SICDS
// equivalent of Willingness: the sender's current (mdr_level, priority)
// pair used by the sidcds_lexicographic tie-break.
func (l *LLSBlock) MDRLevel() (level uint8, priority uint8, ok bool) {
	tlv, found := l.Get(LLSMDRPairTLV)
	if !found || len(tlv.Value) < 2 {
		return 0, 0, false
	}
	return tlv.Value[0], tlv.Value[1], true
}

// SetMDRLevel stores the (level, priority) pair in an LLSMDRPairTLV.
func (l *LLSBlock) SetMDRLevel(level, priority uint8) {
	l.Set(LLSTLV{Type: LLSMDRPairTLV, Value: []byte{level, priority}})
}

// HelloSequence returns the diff-Hello sequence number from an
// LLSHelloSeqTLV, matched against Neighbor.ScsNum to detect missed
// differential Hellos and trigger a full RNL resync.
func (l *LLSBlock) HelloSequence() (uint32, bool) {
	tlv, ok := l.Get(LLSHelloSeqTLV)
	if !ok || len(tlv.Value) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(tlv.Value[0:4]), true
}

// SetHelloSequence stores seq in an LLSHelloSeqTLV.
func (l *LLSBlock) SetHelloSequence(seq uint32) {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, seq)
	l.Set(LLSTLV{Type: LLSHelloSeqTLV, Value: v})
}

// llsCarrier is implemented by the Message types that may carry a trailing
// LLS block: Hello and DatabaseDescription.
type llsCarrier interface {
	llsBlock() *LLSBlock
	setLLSBlock(*LLSBlock)
	hasLBit() bool
}

func (h *Hello) llsBlock() *LLSBlock        { return h.LLS }
func (h *Hello) setLLSBlock(l *LLSBlock)    { h.LLS = l }
func (h *Hello) hasLBit() bool              { return h.Options&LBit != 0 }

func (dd *DatabaseDescription) llsBlock() *LLSBlock     { return dd.LLS }
func (dd *DatabaseDescription) setLLSBlock(l *LLSBlock) { dd.LLS = l }
func (dd *DatabaseDescription) hasLBit() bool           { return dd.Options&LBit != 0 }

// MarshalMessageLLS is the LLS-aware counterpart to MarshalMessage: when m
// is a Hello or DatabaseDescription with the L-bit set and a non-nil LLS
// block, the marshaled LLS bytes are appended after the packet.
func MarshalMessageLLS(m Message) ([]byte, error) {
	b, err := MarshalMessage(m)
	if err != nil {
		return nil, err
	}

	lc, ok := m.(llsCarrier)
	if !ok || !lc.hasLBit() || lc.llsBlock() == nil {
		return b, nil
	}

	lls := lc.llsBlock()
	full := make([]byte, len(b)+lls.byteLen())
	copy(full, b)
	lls.marshal(full[len(b):])
	return full, nil
}

// ParseMessageLLS is the LLS-aware counterpart to ParseMessage: trailing
// bytes beyond the packet's declared length are parsed as an LLS block when
// the L-bit is set on a Hello or DatabaseDescription.
func ParseMessageLLS(b []byte) (Message, error) {
	_, _, plen, err := parseHeader(b)
	if err != nil {
		return nil, fmt.Errorf("ospf3: failed to parse Header: %w", err)
	}

	m, err := ParseMessage(b[:plen])
	if err != nil {
		return nil, err
	}

	lc, ok := m.(llsCarrier)
	if !ok || !lc.hasLBit() || len(b) <= plen {
		return m, nil
	}

	lls, err := parseLLSBlock(b[plen:])
	if err != nil {
		return nil, fmt.Errorf("ospf3: failed to parse LLS block: %w", err)
	}
	lc.setLLSBlock(lls)

	return m, nil
}
