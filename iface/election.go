package iface

// Candidate is one DR-election participant's state: its own vote for
// DR/BDR as seen in its Hello, its priority, and its router-id.
type Candidate struct {
	RouterID      [4]byte
	Priority      uint8
	DeclaredDR    [4]byte
	DeclaredBDR   [4]byte
}

var zeroID [4]byte

// electDR runs RFC5340 §4.2.3's DR/BDR algorithm once over candidates,
// optionally preferring an already-elected incumbent DR/BDR (the second
// pass of the two-pass hysteresis scheme). A Priority-0 candidate never
// becomes DR or BDR but still participates as a voter.
func electDR(candidates []Candidate, preferDR, preferBDR [4]byte) (dr, bdr [4]byte) {
	seen := make(map[[4]byte]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.RouterID] {
			logger.WithField("router_id", c.RouterID).Warn("duplicate router-id seen in DR election")
		}
		seen[c.RouterID] = true
	}

	// Step 2 — BDR: candidates that did not vote for themselves as DR,
	// highest (declared-BDR-votes-for-self-preferred, priority,
	// router-id) wins; an incumbent preferred BDR wins ties per the
	// hysteresis rule. A candidate we already consider DR never becomes
	// BDR.
	bdr = electBDR(candidates, preferBDR, preferDR)

	// Step 3 — DR: only candidates that have declared themselves DR are
	// eligible; the incumbent counts as declared. If nobody has, the
	// newly elected BDR is promoted.
	drVoters := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Priority == 0 {
			continue
		}
		if c.DeclaredDR == c.RouterID || c.RouterID == preferDR {
			drVoters = append(drVoters, c)
		}
	}
	dr = selectHighest(drVoters, preferDR, func(c Candidate) bool { return true })
	if dr == zeroID {
		dr = bdr
	}

	// Step 4 — a BDR promoted to DR stops being BDR; repeat the BDR
	// election without it.
	if dr != zeroID && dr == bdr {
		bdr = electBDR(candidates, preferBDR, dr)
	}

	return dr, bdr
}

// electBDR runs the BDR half of the election: priority-0 candidates,
// self-declared DRs, and the excluded router (the DR) are not eligible.
func electBDR(candidates []Candidate, prefer, exclude [4]byte) [4]byte {
	voters := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Priority == 0 {
			continue
		}
		if c.DeclaredDR == c.RouterID || c.RouterID == exclude {
			continue
		}
		voters = append(voters, c)
	}
	return selectHighest(voters, prefer, func(c Candidate) bool { return c.DeclaredBDR == c.RouterID })
}

// selectHighest picks the Candidate maximizing (selfVote, priority,
// router-id), where selfVote(c) reports whether c nominates itself for the
// role being elected; incumbent, if present among candidates, wins ties
// against any non-incumbent of equal rank (RFC5340's non-preemption rule).
func selectHighest(candidates []Candidate, incumbent [4]byte, selfVote func(Candidate) bool) [4]byte {
	var best Candidate
	found := false
	for _, c := range candidates {
		if !found || ranksHigher(c, best, incumbent, selfVote) {
			best = c
			found = true
		}
	}
	if !found {
		return zeroID
	}
	return best.RouterID
}

func ranksHigher(a, b Candidate, incumbent [4]byte, selfVote func(Candidate) bool) bool {
	if a.RouterID == incumbent && b.RouterID != incumbent {
		return true
	}
	if b.RouterID == incumbent && a.RouterID != incumbent {
		return false
	}
	av, bv := selfVote(a), selfVote(b)
	if av != bv {
		return av
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return idGreater(a.RouterID, b.RouterID)
}

func idGreater(a, b [4]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

// ElectDR runs the election twice for hysteresis: first over all candidates
// with no incumbent preferred; then again with the DR/BDR of that pass
// preferred, so they win ties against any other candidate of equal rank.
// The calculating router is treated like any other entry in candidates and
// must be present there to be eligible to win.
func ElectDR(candidates []Candidate) (dr, bdr [4]byte) {
	dr1, bdr1 := electDR(candidates, zeroID, zeroID)
	return electDR(candidates, dr1, bdr1)
}
