package process

import (
	"time"

	"github.com/sirupsen/logrus"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/lsadb"
)

// Originate builds and installs a self-originated LSA of typ into db,
// advancing the per-identity sequence number and computing the Fletcher
// checksum. If the previous instance carries identical content the
// origination is suppressed and the existing instance returned, so a
// content-equal refresh never floods.
func (p *Process) Originate(now time.Time, db *lsadb.Database, typ ospf3.LSType, linkStateID ospf3.ID, body ospf3.LSABody) (*lsadb.Instance, error) {
	raw, err := ospf3.MarshalLSABody(body)
	if err != nil {
		return nil, err
	}

	key := lsadb.Key{
		Type:              typ,
		AdvertisingRouter: ospf3.ID(p.RouterID),
		LinkStateID:       linkStateID,
	}

	seq := uint32(lsadb.InitialSequenceNumber)
	if old, ok := db.Lookup(key); ok {
		if string(old.Body) == string(raw) && !old.IsMaxAge(now) {
			return old, nil
		}
		if since := now.Sub(old.InstallTime()); since < lsadb.MinLSInterval {
			// Too soon to re-originate this identity; retry once the
			// interval has elapsed.
			p.Sched.AddTimer(lsadb.MinLSInterval-since, func() {
				p.Originate(p.now(), db, typ, linkStateID, body)
			})
			return old, nil
		}
		seq = nextSeq(old.Header.SequenceNumber)
	}

	h := ospf3.LSAHeader{
		LSA: ospf3.LSA{
			Type:              typ,
			LinkStateID:       linkStateID,
			AdvertisingRouter: ospf3.ID(p.RouterID),
		},
		SequenceNumber: seq,
		Length:         uint16(20 + len(raw)),
	}
	h.Checksum = ospf3.ChecksumLSA(h, raw)

	inst := lsadb.NewInstance(h, raw, now)
	db.Add(inst, now)
	inst.SetRefresh(p.Sched.AddTimer(lsadb.LSRefreshTime, func() {
		p.refreshSelf(db, key)
	}))
	p.Count("originated")

	p.log.WithFields(logrus.Fields{
		"type": typ,
		"id":   linkStateID,
		"seq":  seq,
	}).Debug("originated LSA")

	return inst, nil
}

// nextSeq advances a sequence number, restarting at the initial value
// after MaxSequenceNumber rather than producing the reserved wrap value.
func nextSeq(seq uint32) uint32 {
	if int32(seq) == lsadb.MaxSequenceNumber {
		return uint32(lsadb.InitialSequenceNumber)
	}
	return uint32(int32(seq) + 1)
}

// refreshSelf re-issues a self-originated LSA at LSRefreshTime with the
// next sequence number and identical content, keeping remote copies from
// aging out.
func (p *Process) refreshSelf(db *lsadb.Database, key lsadb.Key) {
	old, ok := db.Lookup(key)
	if !ok {
		return
	}

	now := p.now()
	h := old.Header
	h.Age = 0
	h.SequenceNumber = nextSeq(h.SequenceNumber)
	h.Checksum = ospf3.ChecksumLSA(h, old.Body)

	inst := lsadb.NewInstance(h, old.Body, now)
	db.Add(inst, now)
	inst.SetRefresh(p.Sched.AddTimer(lsadb.LSRefreshTime, func() {
		p.refreshSelf(db, key)
	}))
	p.Count("refreshed")
}

// Withdraw prematurely ages this router's own LSA identified by key out of
// db by reinstalling it at MaxAge, so the flush floods ahead of natural
// expiry.
func (p *Process) Withdraw(now time.Time, db *lsadb.Database, key lsadb.Key) *lsadb.Instance {
	old, ok := db.Lookup(key)
	if !ok {
		return nil
	}

	h := old.Header
	h.Age = lsadb.MaxAge
	flushed := lsadb.NewInstance(h, old.Body, now)
	db.Add(flushed, now)
	p.Count("withdrawn")
	return flushed
}
