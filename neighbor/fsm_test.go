package neighbor

import (
	"testing"
	"time"
)

type fixedDecider bool

func (f fixedDecider) NeedAdjacency(*Neighbor) bool { return bool(f) }

func TestDownToInitOnHello(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	now := time.Unix(0, 0)

	act := n.Apply(now, HelloReceived, nil)
	if n.State != Init {
		t.Fatalf("State = %v, want Init", n.State)
	}
	if !act.StartInactivityTimer {
		t.Fatal("expected StartInactivityTimer action")
	}
}

func TestInitToExStartWhenAdjacent(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Init
	now := time.Unix(0, 0)

	n.Apply(now, TwowayReceived, fixedDecider(true))
	if n.State != ExStart {
		t.Fatalf("State = %v, want ExStart", n.State)
	}
}

func TestInitToTwowayWhenNotAdjacent(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Init
	now := time.Unix(0, 0)

	n.Apply(now, TwowayReceived, fixedDecider(false))
	if n.State != Twoway {
		t.Fatalf("State = %v, want Twoway", n.State)
	}
}

func TestExStartToExchangeSeedsSummary(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = ExStart
	now := time.Unix(0, 0)

	act := n.Apply(now, NegotiationDone, nil)
	if n.State != Exchange {
		t.Fatalf("State = %v, want Exchange", n.State)
	}
	if !act.SeedSummaryRequired {
		t.Fatal("expected SeedSummaryRequired action")
	}
}

func TestExchangeDoneGoesLoadingWhenRequestNonEmpty(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Exchange
	now := time.Unix(0, 0)
	n.Lists.Request.Add(newTestInstance(1, now), now)

	n.Apply(now, ExchangeDone, nil)
	if n.State != Loading {
		t.Fatalf("State = %v, want Loading", n.State)
	}
}

func TestExchangeDoneGoesFullWhenRequestEmpty(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Exchange
	now := time.Unix(0, 0)

	n.Apply(now, ExchangeDone, nil)
	if n.State != Full {
		t.Fatalf("State = %v, want Full", n.State)
	}
}

func TestLoadingDoneRefusesWithNonEmptyRequestList(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Loading
	now := time.Unix(0, 0)
	n.Lists.Request.Add(newTestInstance(1, now), now)

	n.Apply(now, LoadingDone, nil)
	if n.State != Loading {
		t.Fatalf("State = %v, want to remain Loading while requests are outstanding", n.State)
	}
}

func TestSeqNumberMismatchFromExchangeGoesExStart(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Exchange
	now := time.Unix(0, 0)

	act := n.Apply(now, SeqNumberMismatch, nil)
	if n.State != ExStart {
		t.Fatalf("State = %v, want ExStart", n.State)
	}
	if !act.ClearLists {
		t.Fatal("expected ClearLists action")
	}
}

func TestOnewayFromFullGoesInit(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Full
	now := time.Unix(0, 0)

	n.Apply(now, OnewayReceived, nil)
	if n.State != Init {
		t.Fatalf("State = %v, want Init", n.State)
	}
}

func TestInactivityTimerAlwaysGoesDown(t *testing.T) {
	for _, start := range []State{Init, Twoway, ExStart, Exchange, Loading, Full} {
		n := New([4]byte{1, 1, 1, 1})
		n.State = start
		now := time.Unix(0, 0)

		act := n.Apply(now, InactivityTimer, nil)
		if n.State != Down {
			t.Fatalf("from %v: State = %v, want Down", start, n.State)
		}
		if !act.DeleteNeighbor {
			t.Fatalf("from %v: expected DeleteNeighbor action", start)
		}
	}
}

func TestAdjOKPromotesTwowayToExStart(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Twoway

	n.ApplyAdjOK(fixedDecider(true))
	if n.State != ExStart {
		t.Fatalf("State = %v, want ExStart", n.State)
	}
}

func TestAdjOKDemotesExchangeToTwoway(t *testing.T) {
	n := New([4]byte{1, 1, 1, 1})
	n.State = Exchange

	n.ApplyAdjOK(fixedDecider(false))
	if n.State != Twoway {
		t.Fatalf("State = %v, want Twoway", n.State)
	}
}
