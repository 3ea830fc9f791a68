package manet

// Snapshot is this router's view of its 1-hop neighborhood at one instant:
// which neighbors are currently Heard (appeared in a recent Hello or
// packet) vs. the Reported set most recently sent in our own Hello's LLS
// block. Diff compares two snapshots to produce the minimal differential
// Hello update.
type Snapshot struct {
	Heard    map[RouterID]bool
	Reported map[RouterID]bool
}

// NewSnapshot returns an empty Snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{Heard: map[RouterID]bool{}, Reported: map[RouterID]bool{}}
}

// Diff is the set of changes between two Snapshots: routers newly heard
// since last report, and routers previously reported but no longer heard
// (lost). A differential Hello carries exactly these two lists rather than
// the router's full neighbor table.
type Diff struct {
	NewlyHeard map[RouterID]bool
	Lost       map[RouterID]bool
}

// ComputeDiff returns the Diff from prev to cur: routers in cur.Heard not in
// prev.Reported are NewlyHeard; routers in prev.Reported no longer in
// cur.Heard are Lost.
func ComputeDiff(prev, cur Snapshot) Diff {
	d := Diff{NewlyHeard: map[RouterID]bool{}, Lost: map[RouterID]bool{}}
	for r := range cur.Heard {
		if !prev.Reported[r] {
			d.NewlyHeard[r] = true
		}
	}
	for r := range prev.Reported {
		if !cur.Heard[r] {
			d.Lost[r] = true
		}
	}
	return d
}

// Apply folds a Diff into a Reported set, producing the set that should be
// recorded as reported going forward once the differential Hello carrying
// it has been sent.
func (d Diff) Apply(reported map[RouterID]bool) map[RouterID]bool {
	out := make(map[RouterID]bool, len(reported)+len(d.NewlyHeard))
	for r := range reported {
		if !d.Lost[r] {
			out[r] = true
		}
	}
	for r := range d.NewlyHeard {
		out[r] = true
	}
	return out
}

// Empty reports whether the Diff carries no changes at all, in which case
// no differential Hello payload is needed beyond the base Hello.
func (d Diff) Empty() bool {
	return len(d.NewlyHeard) == 0 && len(d.Lost) == 0
}
