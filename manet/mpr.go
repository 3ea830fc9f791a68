// Package manet implements two MANET relay-selection algorithms: MPR-SDCDS
// (RFC 5449), a source-dependent greedy set cover over the 2-hop
// neighborhood, and MDR-SICDS (RFC 5614), a source-independent two-phase BFS
// election.
// Both run entirely off snapshots the caller builds from router-LSAs and
// Hello LLS blocks, so this package has no knowledge of the wire format or
// the scheduler.
package manet

import "sort"

// A RouterID is a 4-byte OSPFv3 router identifier, compared as an unsigned
// 32-bit integer wherever the draft specifies "break ties by larger
// router-id".
type RouterID [4]byte

func (r RouterID) less(o RouterID) bool {
	for i := range r {
		if r[i] != o[i] {
			return r[i] < o[i]
		}
	}
	return false
}

// TwoHopSet is the MPR-SDCDS input: for every adjacent (Full-state)
// neighbor, the set of routers reachable through it per its most recently
// received router-LSA (its reported 1-hop neighbors, i.e. our 2-hop set).
type TwoHopSet map[RouterID]map[RouterID]bool

// MPRResult is the output of Compute: the new active-overlapping-relay set,
// and the set of routers dropped from relay duty since the previous
// computation.
type MPRResult struct {
	AOR     map[RouterID]bool
	Dropped map[RouterID]bool
	Changed bool // True if AOR differs from previousAOR; callers bump State Check Sequence.
}

// Compute runs the greedy set-cover relay selection over neighbors (the
// full set of adjacent 1-hop routers) and twoHop (each 1-hop's reported
// neighbors). previousAOR is the AOR set computed on the prior run, used
// only to populate MPRResult.Dropped and Changed.
func Compute(neighbors map[RouterID]bool, twoHop TwoHopSet, previousAOR map[RouterID]bool) MPRResult {
	covered := make(map[RouterID]bool)
	aor := make(map[RouterID]bool)

	// Step 2: a 2-hop reachable via exactly one 1-hop forces that 1-hop
	// into the relay set.
	reachedBy := make(map[RouterID][]RouterID)
	for n := range neighbors {
		for two := range twoHop[n] {
			if two == n || neighbors[two] {
				continue // Not actually a strict 2-hop.
			}
			reachedBy[two] = append(reachedBy[two], n)
		}
	}
	for two, via := range reachedBy {
		if len(via) == 1 {
			aor[via[0]] = true
			covered[two] = true
		}
	}

	// Step 3: greedily cover remaining 2-hops, breaking ties by router-id.
	for {
		uncovered := 0
		for two := range reachedBy {
			if !covered[two] {
				uncovered++
			}
		}
		if uncovered == 0 {
			break
		}

		var best RouterID
		bestCount := -1
		haveBest := false
		// Deterministic iteration: sort neighbor IDs first so ties resolve
		// identically regardless of map iteration order.
		ordered := sortedRouterIDs(neighbors)
		for _, n := range ordered {
			if aor[n] {
				continue
			}
			count := 0
			for two := range twoHop[n] {
				if two == n || neighbors[two] || covered[two] {
					continue
				}
				count++
			}
			if count == 0 {
				continue
			}
			if count > bestCount || (count == bestCount && haveBest && best.less(n)) {
				best = n
				bestCount = count
				haveBest = true
			}
		}
		if !haveBest {
			break // No remaining neighbor covers anything; 2-hop is unreachable.
		}
		aor[best] = true
		for two := range twoHop[best] {
			if two != best && !neighbors[two] {
				covered[two] = true
			}
		}
	}

	dropped := make(map[RouterID]bool)
	changed := len(aor) != len(previousAOR)
	for r := range previousAOR {
		if !aor[r] {
			dropped[r] = true
			changed = true
		}
	}
	if !changed {
		for r := range aor {
			if !previousAOR[r] {
				changed = true
				break
			}
		}
	}

	return MPRResult{AOR: aor, Dropped: dropped, Changed: changed}
}

func sortedRouterIDs(m map[RouterID]bool) []RouterID {
	out := make([]RouterID, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// IsAOR reports whether router is currently an active overlapping relay
// for the local router, per the MPRResult of the most recent Compute call.
func (r MPRResult) IsAOR(router RouterID) bool { return r.AOR[router] }
