package process

import (
	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/lsadb"
)

// LSDBSize implements metrics.Source, counting installed LSAs per
// (scope label, LSA type) pair.
func (p *Process) LSDBSize() map[[2]string]int {
	out := make(map[[2]string]int)
	count := func(label string, db *lsadb.Database) {
		for _, i := range db.All() {
			out[[2]string{label, i.Header.LSA.Type.String()}]++
		}
	}

	count("as", p.ASExternal)
	for id, a := range p.Areas {
		count("area:"+ospf3.ID(id).String(), a.LSDB)
		for _, ifc := range a.Interfaces {
			count("link:"+ifc.Name, ifc.LinkLSDB)
		}
	}
	return out
}

// NeighborStates implements metrics.Source.
func (p *Process) NeighborStates() map[[2]string]string {
	out := make(map[[2]string]string)
	for _, a := range p.Areas {
		for _, ifc := range a.Interfaces {
			for id, n := range ifc.Neighbors {
				out[[2]string{ifc.Name, ospf3.ID(id).String()}] = n.State.String()
			}
		}
	}
	return out
}

// FloodCounters implements metrics.Source.
func (p *Process) FloodCounters() map[string]uint64 {
	out := make(map[string]uint64, len(p.counters))
	for k, v := range p.counters {
		out[k] = v
	}
	return out
}
