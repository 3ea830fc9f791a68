package area

import (
	"testing"
	"time"
)

func TestElectTranslatorPicksLargestRouterID(t *testing.T) {
	candidates := []TranslatorCandidate{
		{RouterID: [4]byte{0, 0, 0, 1}, NTBit: true},
		{RouterID: [4]byte{0, 0, 0, 3}, NTBit: true},
		{RouterID: [4]byte{0, 0, 0, 2}, NTBit: true},
	}
	winner, elected := ElectTranslator([4]byte{0, 0, 0, 1}, candidates)
	if winner != ([4]byte{0, 0, 0, 3}) {
		t.Fatalf("winner = %v, want {0,0,0,3}", winner)
	}
	if elected {
		t.Fatal("self is not the winner here, weAreElected should be false")
	}
}

func TestElectTranslatorIgnoresNonNTCandidates(t *testing.T) {
	candidates := []TranslatorCandidate{
		{RouterID: [4]byte{0, 0, 0, 9}, NTBit: false},
		{RouterID: [4]byte{0, 0, 0, 1}, NTBit: true},
	}
	winner, elected := ElectTranslator([4]byte{0, 0, 0, 1}, candidates)
	if winner != ([4]byte{0, 0, 0, 1}) || !elected {
		t.Fatalf("winner = %v, elected = %v; want self elected", winner, elected)
	}
}

func TestElectTranslatorNoCandidates(t *testing.T) {
	_, elected := ElectTranslator([4]byte{0, 0, 0, 1}, nil)
	if elected {
		t.Fatal("with no NT candidates, nobody should be elected")
	}
}

func TestUpdateTranslatorStateHoldsDownBeforeDisabling(t *testing.T) {
	a := New([4]byte{0, 0, 0, 1}, NSSA)
	a.NSSATranslatorStabilityInterval = 40 * time.Second
	a.TranslatorState = TranslatorEnabled

	t0 := time.Unix(0, 0)
	a.UpdateTranslatorState(t0, false)
	if a.TranslatorState != TranslatorElected {
		t.Fatalf("TranslatorState = %v, want TranslatorElected immediately after losing election", a.TranslatorState)
	}

	a.UpdateTranslatorState(t0.Add(10*time.Second), false)
	if a.TranslatorState != TranslatorElected {
		t.Fatal("should remain TranslatorElected before the stability interval elapses")
	}

	a.UpdateTranslatorState(t0.Add(41*time.Second), false)
	if a.TranslatorState != TranslatorDisabled {
		t.Fatal("should become TranslatorDisabled once the stability interval elapses")
	}
}

func TestUpdateTranslatorStateReElectionCancelsHoldDown(t *testing.T) {
	a := New([4]byte{0, 0, 0, 1}, NSSA)
	a.NSSATranslatorStabilityInterval = 40 * time.Second
	a.TranslatorState = TranslatorElected

	a.UpdateTranslatorState(time.Unix(100, 0), true)
	if a.TranslatorState != TranslatorEnabled {
		t.Fatalf("TranslatorState = %v, want TranslatorEnabled once re-elected", a.TranslatorState)
	}
}

func TestTranslateType7RequiresAllFourConditions(t *testing.T) {
	a := New([4]byte{0, 0, 0, 1}, NSSA)
	a.TranslatorState = TranslatorEnabled

	if a.TranslateType7(false, false, false) {
		t.Fatal("P-bit clear must suppress translation")
	}
	if a.TranslateType7(true, true, false) {
		t.Fatal("existing preferred Type-5 must suppress translation")
	}
	if a.TranslateType7(true, false, true) {
		t.Fatal("a no-op translation must be suppressed")
	}
	if !a.TranslateType7(true, false, false) {
		t.Fatal("all conditions satisfied, translation should proceed")
	}

	a.TranslatorState = TranslatorDisabled
	if a.TranslateType7(true, false, false) {
		t.Fatal("translator state must be Enabled for translation to proceed")
	}
}
