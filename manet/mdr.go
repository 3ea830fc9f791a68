package manet

import "sort"

// MDRLevel is a router's relay role under MDR-SICDS, per RFC 5614 section 5.
type MDRLevel int

// Possible MDRLevel values, ordered so sidcdsLess's tuple comparison can
// compare levels with plain integers.
const (
	Other MDRLevel = iota
	BMDR
	MDR
)

// NeighborInfo is everything MDR-SICDS needs to know about one 1-hop
// neighbor: its advertised priority/router-id/level (for tie-breaking) and
// its 2-hop cost, i.e. the set of routers it in turn reports as neighbors.
type NeighborInfo struct {
	ID       RouterID
	Priority uint8
	Level    MDRLevel
	TwoHop   map[RouterID]bool
}

// Params are the configurable knobs of the MDR election.
type Params struct {
	MDRConstraint     int // BFS-hop threshold beyond which this router becomes MDR.
	AdjConnectivity   int // 1 or 2; backup-parent is only selected when 2.
	NonPersistentMDR  bool
}

// Result is the per-router outcome of Elect: this router's own level,
// parent, and (if AdjConnectivity=2) backup-parent.
type Result struct {
	Level        MDRLevel
	Parent       RouterID
	HasParent    bool
	BackupParent RouterID
	HasBackup    bool
}

// sidcdsLess implements the sidcds_lexicographic tie-break predicate: by
// default compares (Level, Priority, ID); with NonPersistentMDR set,
// compares (Priority, ID) only.
func sidcdsLess(a, b NeighborInfo, nonPersistent bool) bool {
	if !nonPersistent && a.Level != b.Level {
		return a.Level < b.Level
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID.less(b.ID)
}

// Elect runs the two BFS phases of RFC 5614 section 5 for the local router (identified
// only implicitly — it is never one of neighbors) given its current
// (priority, level) and its 1-hop neighbors' NeighborInfo.
func Elect(self NeighborInfo, neighbors []NeighborInfo, p Params) Result {
	if len(neighbors) == 0 {
		return Result{Level: Other}
	}

	rMax := neighbors[0]
	for _, n := range neighbors[1:] {
		if sidcdsLess(rMax, n, p.NonPersistentMDR) {
			rMax = n
		}
	}

	// Phase 1: BFS from R_max using only neighbors strictly greater than
	// self, bounded by the available 1-hop NeighborInfo (this router's own
	// 2-hop view stands in for the full topology).
	greater := make([]NeighborInfo, 0, len(neighbors))
	for _, n := range neighbors {
		if sidcdsLess(self, n, p.NonPersistentMDR) {
			greater = append(greater, n)
		}
	}
	hops := bfsHops(rMax, greater)

	level := Other
	for _, n := range neighbors {
		h, ok := hops[n.ID]
		if !ok || h > p.MDRConstraint {
			level = MDR
			break
		}
	}

	// Phase 2: remove R_max, compute second-path lengths across what's
	// left; any neighbor unreachable there promotes this router to BMDR if
	// not already MDR.
	if level != MDR {
		withoutRMax := make([]NeighborInfo, 0, len(greater))
		for _, n := range greater {
			if n.ID != rMax.ID {
				withoutRMax = append(withoutRMax, n)
			}
		}
		var secondRoot *NeighborInfo
		for i := range neighbors {
			if neighbors[i].ID != rMax.ID {
				n := neighbors[i]
				secondRoot = &n
				break
			}
		}
		if secondRoot != nil {
			hops2 := bfsHops(*secondRoot, withoutRMax)
			for _, n := range neighbors {
				if n.ID == rMax.ID {
					continue
				}
				if _, ok := hops2[n.ID]; !ok {
					level = BMDR
					break
				}
			}
		}
	}

	result := Result{Level: level}

	switch level {
	case MDR:
		result.Parent, result.HasParent = rMax.ID, true
	default:
		if adj, ok := maxAdjacentMDR(neighbors); ok {
			result.Parent, result.HasParent = adj, true
		} else {
			result.Parent, result.HasParent = rMax.ID, true
		}
	}

	if p.AdjConnectivity == 2 {
		if bp, ok := secondBestParent(neighbors, result.Parent, level); ok {
			result.BackupParent, result.HasBackup = bp, true
		}
	}

	return result
}

// bfsHops returns hop-distance from root across the graph restricted to
// members of pool (root is always distance 0, reachable through pool
// members' TwoHop adjacency).
func bfsHops(root NeighborInfo, pool []NeighborInfo) map[RouterID]int {
	byID := make(map[RouterID]NeighborInfo, len(pool)+1)
	byID[root.ID] = root
	for _, n := range pool {
		byID[n.ID] = n
	}

	dist := map[RouterID]int{root.ID: 0}
	queue := []RouterID{root.ID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		node, ok := byID[cur]
		if !ok {
			continue
		}
		ids := make([]RouterID, 0, len(node.TwoHop))
		for id := range node.TwoHop {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].less(ids[j]) })
		for _, next := range ids {
			if _, ok := byID[next]; !ok {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

func maxAdjacentMDR(neighbors []NeighborInfo) (RouterID, bool) {
	var best NeighborInfo
	found := false
	for _, n := range neighbors {
		if n.Level != MDR {
			continue
		}
		if !found || best.ID.less(n.ID) {
			best = n
			found = true
		}
	}
	return best.ID, found
}

func secondBestParent(neighbors []NeighborInfo, exclude RouterID, selfLevel MDRLevel) (RouterID, bool) {
	var best NeighborInfo
	found := false
	for _, n := range neighbors {
		if n.ID == exclude {
			continue
		}
		if n.Level != MDR && selfLevel != MDR {
			continue
		}
		if !found || best.ID.less(n.ID) {
			best = n
			found = true
		}
	}
	return best.ID, found
}
