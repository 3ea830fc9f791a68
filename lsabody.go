package ospf3

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Fixed length structures for LSA body parsing.
const (
	routerLSAFixedLen  = 4
	routerLinkLen      = 16
	networkLSAFixedLen = 4
	interAreaPrefixFix = 4
	interAreaRouterFix = 12
	asExternalFix      = 4
	linkLSAFixedLen    = 24
	intraAreaPfxFix    = 12
	prefixFixedLen     = 4 // PrefixLength, PrefixOptions, Metric/reserved, then 0-16 bytes of address.
)

// PrefixOptions is a bitmask of flags carried alongside an OSPFv3 prefix, as
// described in RFC5340, appendix A.4.1.1.
type PrefixOptions uint8

// Possible PrefixOptions bits.
const (
	NUBit PrefixOptions = 1 << 0 // No-Unicast
	LABit PrefixOptions = 1 << 1 // Local-Address
	MCBit PrefixOptions = 1 << 2 // Multicast
	PBit  PrefixOptions = 1 << 3 // Propagate (NSSA Type-7 only)
	DNBit PrefixOptions = 1 << 4 // Do-Not-Advertise (inter-area re-origination guard)
)

// A Prefix is an OSPFv3 IPv6 prefix, packed on the wire as a prefix length in
// bits followed by only as many whole bytes of address as the length
// requires, rounded up to a 4 byte boundary.
type Prefix struct {
	Length  uint8
	Options PrefixOptions
	Address net.IP // Always stored as a 16 byte IPv6 address for convenience.
}

func prefixWireLen(bits uint8) int {
	// Round up to the nearest 4 byte (32 bit) boundary.
	return ((int(bits) + 31) / 32) * 4
}

func (p Prefix) len() int {
	return prefixFixedLen + prefixWireLen(p.Length)
}

func (p Prefix) marshal(b []byte) {
	b[0] = p.Length
	b[1] = byte(p.Options)
	// b[2:4] reserved (or Metric, depending on containing LSA; callers that
	// need Metric there overwrite it after calling marshal).

	n := prefixWireLen(p.Length)
	addr := p.Address.To16()
	if addr == nil {
		addr = make(net.IP, 16)
	}
	copy(b[4:4+n], addr[:n])
}

func parsePrefix(b []byte) (Prefix, int, error) {
	if len(b) < prefixFixedLen {
		return Prefix{}, 0, fmt.Errorf("not enough bytes for prefix header: %d: %w", len(b), errParse)
	}

	p := Prefix{
		Length:  b[0],
		Options: PrefixOptions(b[1]),
	}
	if p.Length > 128 {
		return Prefix{}, 0, fmt.Errorf("invalid prefix length %d: %w", p.Length, errParse)
	}

	n := prefixWireLen(p.Length)
	total := prefixFixedLen + n
	if len(b) < total {
		return Prefix{}, 0, fmt.Errorf("not enough bytes for %d byte prefix address: %w", n, errParse)
	}

	addr := make(net.IP, 16)
	copy(addr, b[4:4+n])
	p.Address = addr

	return p, total, nil
}

// An LSABody is the type-specific payload of a FullLSA. It is a collaborator
// interface: the flooding/adjacency core never calls these methods itself,
// but components that originate or inspect LSA content (ABR summarisation,
// MANET 2-hop topology, virtual link address selection) use ParseLSABody to
// decode a FullLSA.Body on demand.
type LSABody interface {
	lsaBodyLen() int
	marshalBody(b []byte) error
}

// ParseLSABody decodes body according to the LSA type t. Unknown or
// unsupported types (including link-local-scope vendor extensions) return
// errParse; callers that don't need to inspect content should simply not
// call this function and treat the body as opaque.
func ParseLSABody(t LSType, body []byte) (LSABody, error) {
	switch t {
	case RouterLSA:
		return parseRouterLSABody(body)
	case NetworkLSA:
		return parseNetworkLSABody(body)
	case InterAreaPrefixLSA:
		return parseInterAreaPrefixLSABody(body)
	case InterAreaRouterLSA:
		return parseInterAreaRouterLSABody(body)
	case ASExternalLSA, NSSALSA:
		return parseASExternalLSABody(body)
	case LinkLSA:
		return parseLinkLSABody(body)
	case IntraAreaPrefixLSA:
		return parseIntraAreaPrefixLSABody(body)
	default:
		return nil, fmt.Errorf("ospf3: no body decoder for LSA type %s: %w", t, errParse)
	}
}

// MarshalLSABody is the inverse of ParseLSABody.
func MarshalLSABody(body LSABody) ([]byte, error) {
	b := make([]byte, body.lsaBodyLen())
	if err := body.marshalBody(b); err != nil {
		return nil, err
	}
	return b, nil
}

// RouterLSABits are the Nt/x/V/E/B bits carried in a RouterLSABody,
// described in RFC5340, appendix A.4.3.
type RouterLSABits uint8

// Possible RouterLSABits values.
const (
	BBit       RouterLSABits = 1 << 0 // ABR.
	EBitRouter RouterLSABits = 1 << 1 // ASBR.
	VBit       RouterLSABits = 1 << 2 // Virtual link endpoint.
	NtBit      RouterLSABits = 1 << 3 // NSSA translator.
)

// RouterLSALinkType is the type of a RouterLSABody link, per RFC5340
// appendix A.4.3.
type RouterLSALinkType uint8

// Possible RouterLSALinkType values.
const (
	PointToPointLink RouterLSALinkType = 1
	TransitNetwork    RouterLSALinkType = 2
	VirtualLink       RouterLSALinkType = 4
)

// A RouterLSALink describes one adjacency advertised in a RouterLSABody.
type RouterLSALink struct {
	Type                RouterLSALinkType
	Metric              uint16
	InterfaceID         uint32
	NeighborInterfaceID uint32
	NeighborRouterID    ID
}

// A RouterLSABody is the content of a Router-LSA (RFC5340, appendix A.4.3).
// Its Links describe the adjacencies this router has formed; the 2-hop
// topology consumed by MANET relay selection is built from the
// Links of every neighbor's most recent Router-LSA.
type RouterLSABody struct {
	Bits    RouterLSABits
	Options Options
	Links   []RouterLSALink
}

func (r *RouterLSABody) lsaBodyLen() int {
	return routerLSAFixedLen + routerLinkLen*len(r.Links)
}

func (r *RouterLSABody) marshalBody(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], uint32(r.Bits)<<24|uint32(r.Options))

	off := routerLSAFixedLen
	for _, l := range r.Links {
		b[off] = byte(l.Type)
		// b[off+1] reserved.
		binary.BigEndian.PutUint16(b[off+2:off+4], l.Metric)
		binary.BigEndian.PutUint32(b[off+4:off+8], l.InterfaceID)
		binary.BigEndian.PutUint32(b[off+8:off+12], l.NeighborInterfaceID)
		copy(b[off+12:off+16], l.NeighborRouterID[:])
		off += routerLinkLen
	}

	return nil
}

func parseRouterLSABody(b []byte) (*RouterLSABody, error) {
	if len(b) < routerLSAFixedLen {
		return nil, fmt.Errorf("not enough bytes for RouterLSABody: %d: %w", len(b), errParse)
	}
	if (len(b)-routerLSAFixedLen)%routerLinkLen != 0 {
		return nil, fmt.Errorf("RouterLSABody links must end on a %d byte boundary: %w", routerLinkLen, errParse)
	}

	word := binary.BigEndian.Uint32(b[0:4])
	r := &RouterLSABody{
		Bits:    RouterLSABits(word >> 24),
		Options: Options(word & 0x00ffffff),
	}

	n := (len(b) - routerLSAFixedLen) / routerLinkLen
	r.Links = make([]RouterLSALink, 0, n)
	for i := 0; i < n; i++ {
		off := routerLSAFixedLen + i*routerLinkLen
		l := RouterLSALink{
			Type:                RouterLSALinkType(b[off]),
			Metric:              binary.BigEndian.Uint16(b[off+2 : off+4]),
			InterfaceID:         binary.BigEndian.Uint32(b[off+4 : off+8]),
			NeighborInterfaceID: binary.BigEndian.Uint32(b[off+8 : off+12]),
		}
		copy(l.NeighborRouterID[:], b[off+12:off+16])
		r.Links = append(r.Links, l)
	}

	return r, nil
}

// A NetworkLSABody is the content of a Network-LSA, originated by the DR of
// a transit broadcast/NBMA link (RFC5340, appendix A.4.4).
type NetworkLSABody struct {
	Options         Options
	AttachedRouters []ID
}

func (n *NetworkLSABody) lsaBodyLen() int {
	return networkLSAFixedLen + 4*len(n.AttachedRouters)
}

func (n *NetworkLSABody) marshalBody(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], uint32(n.Options))
	off := networkLSAFixedLen
	for _, r := range n.AttachedRouters {
		copy(b[off:off+4], r[:])
		off += 4
	}
	return nil
}

func parseNetworkLSABody(b []byte) (*NetworkLSABody, error) {
	if len(b) < networkLSAFixedLen || (len(b)-networkLSAFixedLen)%4 != 0 {
		return nil, fmt.Errorf("malformed NetworkLSABody: %d bytes: %w", len(b), errParse)
	}

	n := &NetworkLSABody{Options: options(b[0:4])}
	count := (len(b) - networkLSAFixedLen) / 4
	n.AttachedRouters = make([]ID, 0, count)
	for i := 0; i < count; i++ {
		var id ID
		off := networkLSAFixedLen + i*4
		copy(id[:], b[off:off+4])
		n.AttachedRouters = append(n.AttachedRouters, id)
	}
	return n, nil
}

// An InterAreaPrefixLSABody is the content of an Inter-Area-Prefix-LSA
// originated by an ABR to summarise a prefix from one area into another
// (§4.5), RFC5340 appendix A.4.5.
type InterAreaPrefixLSABody struct {
	Metric uint32 // Only the low 24 bits are significant.
	Prefix Prefix
}

func (i *InterAreaPrefixLSABody) lsaBodyLen() int {
	return interAreaPrefixFix + i.Prefix.len()
}

func (i *InterAreaPrefixLSABody) marshalBody(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], i.Metric&0x00ffffff)
	i.Prefix.marshal(b[interAreaPrefixFix:])
	return nil
}

func parseInterAreaPrefixLSABody(b []byte) (*InterAreaPrefixLSABody, error) {
	if len(b) < interAreaPrefixFix {
		return nil, fmt.Errorf("not enough bytes for InterAreaPrefixLSABody: %d: %w", len(b), errParse)
	}
	p, _, err := parsePrefix(b[interAreaPrefixFix:])
	if err != nil {
		return nil, err
	}
	return &InterAreaPrefixLSABody{
		Metric: binary.BigEndian.Uint32(b[0:4]) & 0x00ffffff,
		Prefix: p,
	}, nil
}

// An InterAreaRouterLSABody is the content of an Inter-Area-Router-LSA,
// originated by an ABR to advertise reachability to an ASBR in another area
// (RFC5340, appendix A.4.6).
type InterAreaRouterLSABody struct {
	Options             Options
	Metric              uint32 // Low 24 bits.
	DestinationRouterID ID
}

func (i *InterAreaRouterLSABody) lsaBodyLen() int { return interAreaRouterFix }

func (i *InterAreaRouterLSABody) marshalBody(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], uint32(i.Options))
	binary.BigEndian.PutUint32(b[4:8], i.Metric&0x00ffffff)
	copy(b[8:12], i.DestinationRouterID[:])
	return nil
}

func parseInterAreaRouterLSABody(b []byte) (*InterAreaRouterLSABody, error) {
	if len(b) < interAreaRouterFix {
		return nil, fmt.Errorf("not enough bytes for InterAreaRouterLSABody: %d: %w", len(b), errParse)
	}
	i := &InterAreaRouterLSABody{
		Options: options(b[0:4]),
		Metric:  binary.BigEndian.Uint32(b[4:8]) & 0x00ffffff,
	}
	copy(i.DestinationRouterID[:], b[8:12])
	return i, nil
}

// ASExternalBits are the E/F/T bits of an AS-External-LSA or, when P is set,
// a Type-7 NSSA LSA (RFC5340, appendix A.4.7).
type ASExternalBits uint8

// Possible ASExternalBits values.
const (
	EBitExternal ASExternalBits = 1 << 0 // Type 2 metric.
	FBit         ASExternalBits = 1 << 1 // Forwarding address present.
	TBit         ASExternalBits = 1 << 2 // External route tag present.
)

// An ASExternalLSABody is the content of an AS-External-LSA or, for area
// types carrying NSSALSA, a Type-7 LSA (RFC 3101). The P-bit (PBit), which
// gates Type-7 to Type-5 translation eligibility, is carried in
// Prefix.Options.
type ASExternalLSABody struct {
	Bits               ASExternalBits
	Metric             uint32 // Low 24 bits.
	Prefix             Prefix
	ForwardingAddress  net.IP // Present only if FBit is set.
	ExternalRouteTag   uint32 // Present only if TBit is set.
	ReferencedLSType   LSType // Present only if Prefix wire length leaves room; 0 if absent.
}

func (a *ASExternalLSABody) lsaBodyLen() int {
	n := asExternalFix + a.Prefix.len()
	if a.Bits&FBit != 0 {
		n += 16
	}
	if a.Bits&TBit != 0 {
		n += 4
	}
	if a.ReferencedLSType != 0 {
		n += 4
	}
	return n
}

func (a *ASExternalLSABody) marshalBody(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], uint32(a.Bits)<<24|(a.Metric&0x00ffffff))
	off := asExternalFix
	a.Prefix.marshal(b[off:])
	off += a.Prefix.len()

	if a.Bits&FBit != 0 {
		fa := a.ForwardingAddress.To16()
		if fa == nil {
			fa = make(net.IP, 16)
		}
		copy(b[off:off+16], fa)
		off += 16
	}
	if a.Bits&TBit != 0 {
		binary.BigEndian.PutUint32(b[off:off+4], a.ExternalRouteTag)
		off += 4
	}
	if a.ReferencedLSType != 0 {
		// b[off:off+2] reserved.
		binary.BigEndian.PutUint16(b[off+2:off+4], uint16(a.ReferencedLSType))
	}

	return nil
}

func parseASExternalLSABody(b []byte) (*ASExternalLSABody, error) {
	if len(b) < asExternalFix {
		return nil, fmt.Errorf("not enough bytes for ASExternalLSABody: %d: %w", len(b), errParse)
	}

	word := binary.BigEndian.Uint32(b[0:4])
	a := &ASExternalLSABody{
		Bits:   ASExternalBits(word >> 24),
		Metric: word & 0x00ffffff,
	}

	off := asExternalFix
	p, n, err := parsePrefix(b[off:])
	if err != nil {
		return nil, err
	}
	a.Prefix = p
	off += n

	if a.Bits&FBit != 0 {
		if len(b) < off+16 {
			return nil, fmt.Errorf("not enough bytes for forwarding address: %w", errParse)
		}
		fa := make(net.IP, 16)
		copy(fa, b[off:off+16])
		a.ForwardingAddress = fa
		off += 16
	}
	if a.Bits&TBit != 0 {
		if len(b) < off+4 {
			return nil, fmt.Errorf("not enough bytes for external route tag: %w", errParse)
		}
		a.ExternalRouteTag = binary.BigEndian.Uint32(b[off : off+4])
		off += 4
	}
	if len(b) >= off+4 {
		a.ReferencedLSType = LSType(binary.BigEndian.Uint16(b[off+2 : off+4]))
	}

	return a, nil
}

// A LinkLSABody is the content of a Link-LSA, originated by each router onto
// each link-local-scope link (RFC5340, appendix A.4.8). VLINKs never
// originate a Link-LSA; their addressing is derived from the endpoint
// ABRs' Intra-Area-Prefix-LSAs instead.
type LinkLSABody struct {
	RouterPriority uint8
	Options        Options
	LinkLocalAddr  net.IP
	Prefixes       []Prefix
}

func (l *LinkLSABody) lsaBodyLen() int {
	n := linkLSAFixedLen
	for _, p := range l.Prefixes {
		n += p.len()
	}
	return n
}

func (l *LinkLSABody) marshalBody(b []byte) error {
	binary.BigEndian.PutUint32(b[0:4], uint32(l.RouterPriority)<<24|uint32(l.Options))
	addr := l.LinkLocalAddr.To16()
	if addr == nil {
		addr = make(net.IP, 16)
	}
	copy(b[4:20], addr)
	binary.BigEndian.PutUint32(b[20:24], uint32(len(l.Prefixes)))

	off := linkLSAFixedLen
	for _, p := range l.Prefixes {
		p.marshal(b[off:])
		off += p.len()
	}
	return nil
}

func parseLinkLSABody(b []byte) (*LinkLSABody, error) {
	if len(b) < linkLSAFixedLen {
		return nil, fmt.Errorf("not enough bytes for LinkLSABody: %d: %w", len(b), errParse)
	}

	word := binary.BigEndian.Uint32(b[0:4])
	l := &LinkLSABody{
		RouterPriority: uint8(word >> 24),
		Options:        Options(word & 0x00ffffff),
	}
	addr := make(net.IP, 16)
	copy(addr, b[4:20])
	l.LinkLocalAddr = addr

	count := int(binary.BigEndian.Uint32(b[20:24]))
	off := linkLSAFixedLen
	l.Prefixes = make([]Prefix, 0, count)
	for i := 0; i < count; i++ {
		p, n, err := parsePrefix(b[off:])
		if err != nil {
			return nil, fmt.Errorf("failed to parse prefix %d of %d: %w", i, count, err)
		}
		l.Prefixes = append(l.Prefixes, p)
		off += n
	}

	return l, nil
}

// An IntraAreaPrefixLSABody is the content of an Intra-Area-Prefix-LSA,
// carrying the prefixes attached to a router or transit network (RFC5340,
// appendix A.4.9). Virtual link endpoint addresses derive from the
// LA-flagged prefix of the remote ABR's Intra-Area-Prefix-LSA.
type IntraAreaPrefixLSABody struct {
	ReferencedLSType   LSType
	ReferencedLinkID   ID
	ReferencedAdvRtr   ID
	Prefixes           []Prefix
}

func (i *IntraAreaPrefixLSABody) lsaBodyLen() int {
	n := intraAreaPfxFix
	for _, p := range i.Prefixes {
		n += p.len()
	}
	return n
}

func (i *IntraAreaPrefixLSABody) marshalBody(b []byte) error {
	binary.BigEndian.PutUint16(b[0:2], uint16(len(i.Prefixes)))
	binary.BigEndian.PutUint16(b[2:4], uint16(i.ReferencedLSType))
	copy(b[4:8], i.ReferencedLinkID[:])
	copy(b[8:12], i.ReferencedAdvRtr[:])

	off := intraAreaPfxFix
	for _, p := range i.Prefixes {
		p.marshal(b[off:])
		off += p.len()
	}
	return nil
}

func parseIntraAreaPrefixLSABody(b []byte) (*IntraAreaPrefixLSABody, error) {
	if len(b) < intraAreaPfxFix {
		return nil, fmt.Errorf("not enough bytes for IntraAreaPrefixLSABody: %d: %w", len(b), errParse)
	}

	i := &IntraAreaPrefixLSABody{
		ReferencedLSType: LSType(binary.BigEndian.Uint16(b[2:4])),
	}
	copy(i.ReferencedLinkID[:], b[4:8])
	copy(i.ReferencedAdvRtr[:], b[8:12])

	count := int(binary.BigEndian.Uint16(b[0:2]))
	off := intraAreaPfxFix
	i.Prefixes = make([]Prefix, 0, count)
	for n := 0; n < count; n++ {
		p, pn, err := parsePrefix(b[off:])
		if err != nil {
			return nil, fmt.Errorf("failed to parse prefix %d of %d: %w", n, count, err)
		}
		i.Prefixes = append(i.Prefixes, p)
		off += pn
	}

	return i, nil
}

// LAPrefix returns the first LA-flagged (local address) prefix in the
// IntraAreaPrefixLSABody, used to derive a virtual link's remote
// IPv6 endpoint address.
func (i *IntraAreaPrefixLSABody) LAPrefix() (Prefix, bool) {
	for _, p := range i.Prefixes {
		if p.Options&LABit != 0 {
			return p, true
		}
	}
	return Prefix{}, false
}
