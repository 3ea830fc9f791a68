package flood

import (
	"time"

	"github.com/ospf6d/ospf6/lsadb"
	"github.com/ospf6d/ospf6/manet"
)

// A Pushbacked LSA is a reflood deferred by the relay-reduction rules: it
// carries a backup-wait list of
// neighbors that had not yet received it when it was pushed back, and
// fires a reflood when either that list empties early or its timer
// expires.
type Pushbacked struct {
	Instance   *lsadb.Instance
	BackupWait map[manet.RouterID]bool
	Timer      Canceler
}

// NewPushbacked records l as pushed back, awaiting acknowledgement from
// every router in uncovered.
func NewPushbacked(l *lsadb.Instance, uncovered map[manet.RouterID]bool, timer Canceler) *Pushbacked {
	wait := make(map[manet.RouterID]bool, len(uncovered))
	for r := range uncovered {
		wait[r] = true
	}
	return &Pushbacked{Instance: l, BackupWait: wait, Timer: timer}
}

// AckFrom removes router from the backup-wait list because a cached ack
// arrived from it. It returns true if the wait list is now empty, meaning
// the caller should cancel the pending reflood.
func (p *Pushbacked) AckFrom(router manet.RouterID) bool {
	delete(p.BackupWait, router)
	return len(p.BackupWait) == 0
}

// ReceivedFrom implements implicit ack by proxy: when the same LSA arrives
// as a reflood from neighbor m, every router m itself reports as heard
// (its RNL) is considered to have received the LSA, regardless of whether
// *we* have confirmation from them individually. It returns true if the
// wait list is now empty.
func (p *Pushbacked) ReceivedFrom(mReported map[manet.RouterID]bool) bool {
	for r := range mReported {
		delete(p.BackupWait, r)
	}
	return len(p.BackupWait) == 0
}

// Cancel stops the pending reflood timer, used when AckFrom/ReceivedFrom
// empties the wait list before the timer fires.
func (p *Pushbacked) Cancel() {
	if p.Timer != nil {
		p.Timer.Cancel()
	}
}

// Fire is invoked when the pushback timer itself expires: the caller must
// enqueue p.Instance onto the interface's lsupdate_list, clear any pending
// delayed ack for it, and reset per-neighbor retransmit timers; Fire itself
// only marks the Instance so flood-back accounting is correct.
func (p *Pushbacked) Fire(now time.Time) {
	p.Instance.SetFlags(lsadb.FloodBack)
}
