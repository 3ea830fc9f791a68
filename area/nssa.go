package area

import "time"

// TranslatorCandidate is one router advertising NSSA-translator capability
// (the NT bit in its router-LSA) within the area.
type TranslatorCandidate struct {
	RouterID [4]byte
	NTBit    bool
}

// ElectTranslator implements the RFC 3101 election: the translator is the reachable
// NSSA-translator-capable router with the largest router-id. self is this
// router's own ID; candidates should include self if it advertises NT.
func ElectTranslator(self [4]byte, candidates []TranslatorCandidate) (winner [4]byte, weAreElected bool) {
	found := false
	for _, c := range candidates {
		if !c.NTBit {
			continue
		}
		if !found || idGreater(c.RouterID, winner) {
			winner = c.RouterID
			found = true
		}
	}
	if !found {
		return [4]byte{}, false
	}
	return winner, winner == self
}

func idGreater(a, b [4]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

// UpdateTranslatorState applies an election result to the Area's
// TranslatorState, implementing the stability-interval hold-down of
// RFC 3101 section 3.1: losing the election does not immediately disable translation;
// it holds TranslatorElected until NSSATranslatorStabilityInterval has
// elapsed, so a transient partition does not cause a flap.
func (a *Area) UpdateTranslatorState(now time.Time, weAreElected bool) {
	switch {
	case weAreElected:
		a.TranslatorState = TranslatorEnabled
		a.translatorDisabledSince = time.Time{}

	case a.TranslatorState == TranslatorEnabled:
		a.TranslatorState = TranslatorElected
		a.translatorDisabledSince = now

	case a.TranslatorState == TranslatorElected:
		if now.Sub(a.translatorDisabledSince) >= a.NSSATranslatorStabilityInterval {
			a.TranslatorState = TranslatorDisabled
		}
	}
}

// TranslateType7 decides whether a Type-7 LSA with the given P-bit should
// be translated to Type-5, per RFC 3101 section 3.2. preferredType5Exists reports
// whether a more-preferred locally-originated Type-5 LSA for the same
// prefix already exists; noOp reports whether the translated result would
// be identical to an already-installed Type-5 (in which case translating
// again is pointless).
func (a *Area) TranslateType7(pBit, preferredType5Exists, noOp bool) bool {
	if a.TranslatorState != TranslatorEnabled {
		return false
	}
	if !pBit {
		return false
	}
	if preferredType5Exists {
		return false
	}
	if noOp {
		return false
	}
	return true
}
