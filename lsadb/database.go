package lsadb

import (
	"sort"
	"time"
)

// A Hook observes Instances entering or leaving a Database.
type Hook func(i *Instance)

// A Database is one ordered Link State Database: all known
// Instances for one flooding scope (a single interface for link-local LSAs,
// a single area for area-scoped LSAs, or the whole process for AS-scoped
// LSAs), kept in the (Type, AdvertisingRouter, LinkStateID) order the
// Database Description exchange and periodic refresh walks require.
//
// Database is not safe for concurrent use; like the rest of this package it
// is only ever touched from the scheduler's single goroutine.
type Database struct {
	Scope string // Human-readable owner identity, for logging only.

	byKey map[Key]*Instance
	order []Key // kept sorted by Key.Less

	onAdd    []Hook
	onRemove []Hook
}

// NewDatabase creates an empty Database for the named scope (e.g. an
// interface name or area ID string, used only in diagnostics).
func NewDatabase(scope string) *Database {
	return &Database{
		Scope: scope,
		byKey: make(map[Key]*Instance),
	}
}

// OnAdd registers a Hook run synchronously after an Instance is added.
func (d *Database) OnAdd(h Hook) { d.onAdd = append(d.onAdd, h) }

// OnRemove registers a Hook run synchronously after an Instance is removed.
func (d *Database) OnRemove(h Hook) { d.onRemove = append(d.onRemove, h) }

// Lookup returns the Instance installed under k, if any.
func (d *Database) Lookup(k Key) (*Instance, bool) {
	i, ok := d.byKey[k]
	return i, ok
}

// Add installs i, replacing any existing Instance under the same Key. The
// replaced Instance (if any) is removed first, running its onRemove hooks,
// so callers that need to preserve a prior Instance's references must save
// it before calling Add. now stamps i's InstallTime.
func (d *Database) Add(i *Instance, now time.Time) {
	k := i.Key()
	if old, ok := d.byKey[k]; ok {
		d.remove(old)
	}
	d.insertOrder(k)
	i.installTime = now
	i.db = d
	d.byKey[k] = i
	for _, h := range d.onAdd {
		h(i)
	}
}

// Remove uninstalls the Instance at k, if present, running its onRemove
// hooks. It is a no-op if k is not installed.
func (d *Database) Remove(k Key) {
	i, ok := d.byKey[k]
	if !ok {
		return
	}
	d.remove(i)
}

func (d *Database) remove(i *Instance) {
	k := i.Key()
	delete(d.byKey, k)
	d.removeOrder(k)
	i.db = nil
	i.CancelTimers()
	for _, h := range d.onRemove {
		h(i)
	}
}

func (d *Database) insertOrder(k Key) {
	idx := sort.Search(len(d.order), func(n int) bool { return !d.order[n].Less(k) })
	d.order = append(d.order, Key{})
	copy(d.order[idx+1:], d.order[idx:])
	d.order[idx] = k
}

func (d *Database) removeOrder(k Key) {
	idx := sort.Search(len(d.order), func(n int) bool { return !d.order[n].Less(k) })
	if idx >= len(d.order) || d.order[idx] != k {
		return
	}
	d.order = append(d.order[:idx], d.order[idx+1:]...)
}

// Len returns the number of installed Instances.
func (d *Database) Len() int { return len(d.order) }

// Head returns the first Instance in Key order, and false if the Database
// is empty.
func (d *Database) Head() (*Instance, bool) {
	if len(d.order) == 0 {
		return nil, false
	}
	return d.byKey[d.order[0]], true
}

// Next returns the Instance immediately following k in Key order, and false
// if k is the last entry or not present.
func (d *Database) Next(k Key) (*Instance, bool) {
	idx := sort.Search(len(d.order), func(n int) bool { return !d.order[n].Less(k) })
	if idx >= len(d.order) || d.order[idx] != k {
		return nil, false
	}
	if idx+1 >= len(d.order) {
		return nil, false
	}
	return d.byKey[d.order[idx+1]], true
}

// TypeHead returns the first Instance of the given type, and false if none
// exists. Because Database order is primarily keyed by Type, this is a
// binary search to the start of that type's run.
func (d *Database) TypeHead(t Key) (*Instance, bool) {
	idx := sort.Search(len(d.order), func(n int) bool { return d.order[n].Type >= t.Type })
	if idx >= len(d.order) || d.order[idx].Type != t.Type {
		return nil, false
	}
	return d.byKey[d.order[idx]], true
}

// TypeNext returns the Instance following k that still shares k's Type, and
// false once the type's run is exhausted.
func (d *Database) TypeNext(k Key) (*Instance, bool) {
	i, ok := d.Next(k)
	if !ok || i.Key().Type != k.Type {
		return nil, false
	}
	return i, true
}

// TypeRouterHead returns the first Instance matching both Type and
// AdvertisingRouter, used by ABR/ASBR origination logic to walk a single
// router's LSAs of a given type.
func (d *Database) TypeRouterHead(t Key) (*Instance, bool) {
	idx := sort.Search(len(d.order), func(n int) bool {
		if d.order[n].Type != t.Type {
			return d.order[n].Type >= t.Type
		}
		return !lessID(d.order[n].AdvertisingRouter, t.AdvertisingRouter)
	})
	if idx >= len(d.order) {
		return nil, false
	}
	k := d.order[idx]
	if k.Type != t.Type || k.AdvertisingRouter != t.AdvertisingRouter {
		return nil, false
	}
	return d.byKey[k], true
}

// TypeRouterNext returns the Instance following k that still shares k's
// Type and AdvertisingRouter.
func (d *Database) TypeRouterNext(k Key) (*Instance, bool) {
	i, ok := d.Next(k)
	if !ok {
		return nil, false
	}
	ik := i.Key()
	if ik.Type != k.Type || ik.AdvertisingRouter != k.AdvertisingRouter {
		return nil, false
	}
	return i, true
}

// All returns every installed Instance in Key order. Callers must not
// mutate the returned slice's backing Instances' Database membership while
// iterating.
func (d *Database) All() []*Instance {
	out := make([]*Instance, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.byKey[k])
	}
	return out
}
