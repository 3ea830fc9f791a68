package flood

import (
	ospf3 "github.com/ospf6d/ospf6"
)

// lsuOverhead is the fixed cost of one Link State Update packet: the
// 16-byte OSPFv3 header plus the 4-byte LSA count.
const lsuOverhead = 20

// SplitUpdates packs lsas into as few LinkStateUpdate messages as possible
// without any single message exceeding mtu bytes on the wire. An LSA whose
// wire length alone exceeds the MTU budget is placed in a packet of its own,
// which then exceeds mtu; it is never silently dropped.
func SplitUpdates(h ospf3.Header, lsas []ospf3.FullLSA, mtu int) []*ospf3.LinkStateUpdate {
	if len(lsas) == 0 {
		return nil
	}

	budget := mtu - lsuOverhead
	var out []*ospf3.LinkStateUpdate
	cur := &ospf3.LinkStateUpdate{Header: h}
	used := 0
	for _, l := range lsas {
		n := l.WireLen()
		if used > 0 && used+n > budget {
			out = append(out, cur)
			cur = &ospf3.LinkStateUpdate{Header: h}
			used = 0
		}
		cur.LSAs = append(cur.LSAs, l)
		used += n
	}
	return append(out, cur)
}
