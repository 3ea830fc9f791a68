package rtable

import "testing"

func TestRangeMatchFindsLongestPrefix(t *testing.T) {
	rt := NewRangeTable()
	rt.Configure(pfx("2001:db8::/32"), true)

	rg, ok := rt.Match(pfx("2001:db8:1::/48"))
	if !ok {
		t.Fatal("expected a matching range")
	}
	if rg.Prefix.String() != "2001:db8::/32" {
		t.Fatalf("Match returned %v, want 2001:db8::/32", rg.Prefix)
	}
}

func TestRangeContributeWithdrawTracksCount(t *testing.T) {
	rg := &Range{Advertise: true}

	if first := rg.Contribute(); !first {
		t.Fatal("first Contribute should report true")
	}
	if second := rg.Contribute(); second {
		t.Fatal("second Contribute should report false (already originated)")
	}
	if !rg.ShouldOriginate() {
		t.Fatal("range with contributing routes and Advertise=true should originate")
	}

	if last := rg.Withdraw(); last {
		t.Fatal("withdraw with one remaining contributor should not be the last")
	}
	if last := rg.Withdraw(); !last {
		t.Fatal("withdraw of the final contributor should report true")
	}
	if rg.ShouldOriginate() {
		t.Fatal("range with no contributors should not originate")
	}
}

func TestRangeDoNotAdvertiseNeverOriginates(t *testing.T) {
	rg := &Range{Advertise: false}
	rg.Contribute()
	if rg.ShouldOriginate() {
		t.Fatal("Do-Not-Advertise range must never originate regardless of contributors")
	}
}
