package process

import (
	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/area"
	"github.com/ospf6d/ospf6/iface"
	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/neighbor"
)

// Scopes adapts one receiving interface and its owning area to the
// flood.ScopeResolver interface: it maps an incoming LSA's flooding scope
// bits to the link, area, or AS database it belongs in.
type Scopes struct {
	Proc *Process
	Ifc  *iface.Interface
	Area *area.Area
}

// Database returns the LSDB matching the LSA's flooding scope.
func (s Scopes) Database(scope uint8) *lsadb.Database {
	switch ospf3.FloodingScope(scope) {
	case ospf3.LinkLocalScoping:
		return s.Ifc.LinkLSDB
	case ospf3.ASScoping:
		return s.Proc.ASExternal
	default:
		return s.Area.LSDB
	}
}

// Cache returns the process-wide pre-Exchange cache LSDB.
func (s Scopes) Cache() *lsadb.Database { return s.Proc.Cache }

// StubArea reports whether the receiving interface's area refuses
// AS-scope LSAs.
func (s Scopes) StubArea() bool { return s.Area.Flags&area.Stub != 0 }

// SelfOriginated reports whether k names one of this router's own LSAs.
func (s Scopes) SelfOriginated(k lsadb.Key) bool {
	return k.AdvertisingRouter == ospf3.ID(s.Proc.RouterID)
}

// AllNeighbors returns every neighbor in the process.
func (s Scopes) AllNeighbors() []*neighbor.Neighbor { return s.Proc.AllNeighbors() }
