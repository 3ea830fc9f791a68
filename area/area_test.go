package area

import (
	"testing"

	"github.com/ospf6d/ospf6/rtable"
)

func TestIsBackbone(t *testing.T) {
	backbone := New([4]byte{0, 0, 0, 0}, 0)
	if !backbone.IsBackbone() {
		t.Fatal("area 0.0.0.0 should be the backbone")
	}
	other := New([4]byte{0, 0, 0, 1}, 0)
	if other.IsBackbone() {
		t.Fatal("area 0.0.0.1 should not be the backbone")
	}
}

func TestSummarizationCandidateRejectsSameArea(t *testing.T) {
	a := New([4]byte{0, 0, 0, 1}, 0)
	route := rtable.Route{Cost: 10}
	if a.SummarizationCandidate(route, [4]byte{0, 0, 0, 1}, "") {
		t.Fatal("a route already in the target area is not an inter-area candidate")
	}
}

func TestSummarizationCandidateRejectsInfiniteCost(t *testing.T) {
	a := New([4]byte{0, 0, 0, 1}, 0)
	route := rtable.Route{Cost: LSInfinity}
	if a.SummarizationCandidate(route, [4]byte{0, 0, 0, 2}, "") {
		t.Fatal("a route at LSInfinity must never be summarized")
	}
}

func TestSummarizationCandidateRejectsStubNoSummary(t *testing.T) {
	a := New([4]byte{0, 0, 0, 1}, Stub|NoSummary)
	route := rtable.Route{Cost: 10}
	if a.SummarizationCandidate(route, [4]byte{0, 0, 0, 2}, "") {
		t.Fatal("a stub area with NoSummary must suppress inter-area summaries")
	}
}

func TestSummarizationCandidateAppliesFilter(t *testing.T) {
	a := New([4]byte{0, 0, 0, 1}, 0)
	a.FilterIn = rejectAll{}
	route := rtable.Route{Cost: 10}
	if a.SummarizationCandidate(route, [4]byte{0, 0, 0, 2}, "DENY") {
		t.Fatal("a route rejected by the configured filter-list must not summarize")
	}
}

type rejectAll struct{}

func (rejectAll) Match(string, rtable.Route) bool { return false }

func TestRestrictInterToBackbone(t *testing.T) {
	if !RestrictInterToBackbone([4]byte{0, 0, 0, 0}, rtable.InterArea) {
		t.Fatal("an inter-area route must not be re-summarized into the backbone")
	}
	if RestrictInterToBackbone([4]byte{0, 0, 0, 0}, rtable.IntraArea) {
		t.Fatal("an intra-area route may be summarized into the backbone")
	}
	if RestrictInterToBackbone([4]byte{0, 0, 0, 1}, rtable.InterArea) {
		t.Fatal("the restriction only applies when the target is the backbone")
	}
}
