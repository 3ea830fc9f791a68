package lsadb

import "time"

// A RetransPredicate reports whether any neighbor still has i on a
// retransmission or staging list, or is currently in the Exchange or
// Loading state at all (in which case no MaxAge LSA anywhere may be
// removed, since the neighbor's Database Description exchange may still
// reference it). Database has no notion of neighbors, so the MaxAge
// remover takes this as an optional callback from its caller; nil blocks
// nothing. process.SweepMaxAge passes nil and checks the Exchange/Loading
// condition itself before sweeping.
type RetransPredicate func(i *Instance) bool

// Sweep removes every Instance that has reached MaxAge and is safe to
// discard: RetransCount is zero and blocked reports false for it. It
// returns the removed Instances so the caller can flood their withdrawal
// acknowledgements or free associated forwarding state.
//
// Sweep enforces the MaxAge removal precondition: a MaxAge LSA must
// never be freed while a neighbor conversation might still retransmit or
// request it.
func (d *Database) Sweep(now time.Time, blocked RetransPredicate) []*Instance {
	var removed []*Instance
	for _, k := range append([]Key(nil), d.order...) {
		i, ok := d.byKey[k]
		if !ok || !i.IsMaxAge(now) {
			continue
		}
		if i.RetransCount() > 0 {
			continue
		}
		if blocked != nil && blocked(i) {
			continue
		}
		d.remove(i)
		removed = append(removed, i)
	}
	return removed
}

// NeedsRefresh reports whether a self-originated Instance is due for
// refresh: its age has reached LSRefreshTime. Refresh scheduling itself
// (arming a sched.Timer per Instance) belongs to the process package, which
// owns the scheduler; lsadb only exposes the predicate so that decision is
// made in one place.
func (i *Instance) NeedsRefresh(now time.Time) bool {
	return i.Age(now) >= LSRefreshTime
}
