package process

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	ospf3 "github.com/ospf6d/ospf6"
	"github.com/ospf6d/ospf6/area"
	"github.com/ospf6d/ospf6/lsadb"
)

// RunTranslatorElection gathers translator candidates for an NSSA area,
// applies the election, and (re)translates every eligible Type-7 LSA when
// this router holds the Enabled role.
func (p *Process) RunTranslatorElection(now time.Time, a *area.Area, candidates []area.TranslatorCandidate) {
	_, elected := area.ElectTranslator(p.RouterID, candidates)
	prev := a.TranslatorState
	a.UpdateTranslatorState(now, elected)

	if a.TranslatorState != prev {
		p.log.WithFields(logrus.Fields{
			"area":  ospf3.ID(a.ID),
			"state": a.TranslatorState,
		}).Info("NSSA translator state changed")
	}

	if a.TranslatorState != area.TranslatorEnabled {
		return
	}

	head, ok := a.LSDB.TypeHead(lsadb.Key{Type: ospf3.NSSALSA})
	for ; ok; head, ok = a.LSDB.TypeNext(head.Key()) {
		if err := p.TranslateType7(now, a, head); err != nil {
			p.log.WithField("key", head.Key()).WithError(err).Warn("Type-7 translation failed")
		}
	}
}

// TranslateType7 converts one Type-7 LSA into an AS-External-LSA in the AS
// LSDB, provided the area's translator role and the LSA's P-bit allow it.
// The translated instance carries the link-state ID translatedKey assigns to
// the Type-7 identity and is marked Translated so flooding can distinguish it from a
// locally redistributed external.
func (p *Process) TranslateType7(now time.Time, a *area.Area, seven *lsadb.Instance) error {
	body, err := ospf3.ParseLSABody(ospf3.NSSALSA, seven.Body)
	if err != nil {
		return fmt.Errorf("process: parsing Type-7 body: %w", err)
	}
	ext, ok := body.(*ospf3.ASExternalLSABody)
	if !ok {
		return fmt.Errorf("process: Type-7 body decoded as %T", body)
	}

	pBit := ext.Prefix.Options&ospf3.PBit != 0
	key := p.translatedKey(seven.Key())
	_, exists := p.ASExternal.Lookup(key)
	if !a.TranslateType7(pBit, p.preferredType5Exists(seven), exists && sameContent(p.ASExternal, key, ext)) {
		return nil
	}

	inst, err := p.Originate(now, p.ASExternal, ospf3.ASExternalLSA, key.LinkStateID, ext)
	if err != nil {
		return err
	}
	inst.SetFlags(lsadb.Translated)
	p.Count("translated")
	return nil
}

// translatedKey maps a Type-7 identity to the stable Type-5 identity its
// translation uses, allocating a new ID from summaryID on first sight.
func (p *Process) translatedKey(seven lsadb.Key) lsadb.Key {
	dest := fmt.Sprintf("t7/%s", seven)
	return lsadb.Key{
		Type:              ospf3.ASExternalLSA,
		AdvertisingRouter: ospf3.ID(p.RouterID),
		LinkStateID:       p.summaryID(dest),
	}
}

// preferredType5Exists reports whether a locally originated AS-External-LSA
// already covers the Type-7's prefix with a preferred path, in which case
// translation is suppressed.
func (p *Process) preferredType5Exists(seven *lsadb.Instance) bool {
	head, ok := p.ASExternal.TypeRouterHead(lsadb.Key{
		Type:              ospf3.ASExternalLSA,
		AdvertisingRouter: ospf3.ID(p.RouterID),
	})
	for ; ok; head, ok = p.ASExternal.TypeRouterNext(head.Key()) {
		if head.HasFlags(lsadb.Translated) {
			continue
		}
		if string(head.Body) == string(seven.Body) {
			return true
		}
	}
	return false
}

func sameContent(db *lsadb.Database, key lsadb.Key, body ospf3.LSABody) bool {
	old, ok := db.Lookup(key)
	if !ok {
		return false
	}
	raw, err := ospf3.MarshalLSABody(body)
	if err != nil {
		return false
	}
	return string(old.Body) == string(raw)
}
