package manet

import "testing"

func TestComputeDiffNewlyHeardAndLost(t *testing.T) {
	prev := Snapshot{Reported: map[RouterID]bool{r(1): true, r(2): true}}
	cur := Snapshot{Heard: map[RouterID]bool{r(2): true, r(3): true}}

	d := ComputeDiff(prev, cur)
	if !d.NewlyHeard[r(3)] {
		t.Fatal("r(3) was heard but not reported, should be NewlyHeard")
	}
	if !d.Lost[r(1)] {
		t.Fatal("r(1) was reported but not heard, should be Lost")
	}
	if d.NewlyHeard[r(2)] || d.Lost[r(2)] {
		t.Fatal("r(2) is unchanged, should appear in neither set")
	}
}

func TestDiffEmpty(t *testing.T) {
	d := Diff{NewlyHeard: map[RouterID]bool{}, Lost: map[RouterID]bool{}}
	if !d.Empty() {
		t.Fatal("Diff with no entries should be Empty")
	}
	d.NewlyHeard[r(1)] = true
	if d.Empty() {
		t.Fatal("Diff with an entry should not be Empty")
	}
}

func TestDiffApplyUpdatesReportedSet(t *testing.T) {
	reported := map[RouterID]bool{r(1): true, r(2): true}
	d := Diff{
		NewlyHeard: map[RouterID]bool{r(3): true},
		Lost:       map[RouterID]bool{r(1): true},
	}

	out := d.Apply(reported)
	if out[r(1)] {
		t.Fatal("lost router should be removed")
	}
	if !out[r(2)] {
		t.Fatal("unaffected router should remain")
	}
	if !out[r(3)] {
		t.Fatal("newly heard router should be added")
	}
}
