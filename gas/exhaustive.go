// SPDX-License-Identifier: BUSL-1.1

package gas

import "fmt"

// AllHashAlgorithms enumerates every HashAlgorithm variant this price
// list must price.
func AllHashAlgorithms() []HashAlgorithm {
	return []HashAlgorithm{Sha2_256, Blake2b256, Blake2b512, Keccak256, Ripemd160}
}

// AllSignatureTypes enumerates every SignatureType variant this price
// list must price.
func AllSignatureTypes() []SignatureType {
	return []SignatureType{SignatureSecp256k1, SignatureBLS}
}

// AllSealProofTypes enumerates every SealProofType variant known to
// this package. Not every price list prices every variant directly
// (NiPoRep variants are Teep-only); PriceList.OnVerifyAggregateSeals
// falls back to StackedDRG32GiBV1P1 for the ones it doesn't.
func AllSealProofTypes() []SealProofType {
	return []SealProofType{
		StackedDRG32GiBV1P1, StackedDRG64GiBV1P1,
		NiPoRepP2Feat32GiB, NiPoRepP2Feat64GiB,
	}
}

// AllPoStProofTypes enumerates every PoStProofType variant this price
// list must price.
func AllPoStProofTypes() []PoStProofType {
	return []PoStProofType{Window512MiBV1, Window32GiBV1, Window64GiBV1}
}

// NamedPriceLists returns every statically built price list, keyed by
// name, so a caller can check exhaustiveness across all of them
// without reaching into package-private globals.
func NamedPriceLists() map[string]*PriceList {
	return map[string]*PriceList{
		watermelonPrices.Name: watermelonPrices,
		teepPrices.Name:       teepPrices,
	}
}

// ExhaustivenessReport is the result of checking one price list's
// sub-tables against the full enum universe of HashAlgorithm,
// SignatureType, and PoStProofType. SealProofType is checked
// separately by CheckSealProofCoverage since the NiPoRep variants are
// legitimately absent from Watermelon by design, not by omission.
type ExhaustivenessReport struct {
	PriceListName    string
	MissingHash      []HashAlgorithm
	MissingSignature []SignatureType
	MissingPoSt      []PoStProofType
}

// OK reports whether the price list covers every enum variant checked.
func (r ExhaustivenessReport) OK() bool {
	return len(r.MissingHash) == 0 && len(r.MissingSignature) == 0 && len(r.MissingPoSt) == 0
}

// CheckExhaustiveness verifies that p has an entry for every hash
// algorithm, signature type, and PoSt proof type this package knows
// about.
func CheckExhaustiveness(p *PriceList) ExhaustivenessReport {
	r := ExhaustivenessReport{PriceListName: p.Name}
	for _, h := range AllHashAlgorithms() {
		if _, ok := p.HashingCost[h]; !ok {
			r.MissingHash = append(r.MissingHash, h)
		}
	}
	for _, s := range AllSignatureTypes() {
		if _, ok := p.SigCost[s]; !ok {
			r.MissingSignature = append(r.MissingSignature, s)
		}
	}
	for _, post := range AllPoStProofTypes() {
		if _, ok := p.VerifyPostLookup[post]; !ok {
			r.MissingPoSt = append(r.MissingPoSt, post)
		}
	}
	return r
}

// CheckSealProofCoverage reports whether proofType has a dedicated
// entry in p's aggregate-seal tables, distinguishing "priced
// directly" from "served by the documented 32GiB fallback" — both are
// valid outcomes per spec, so this is informational rather than a
// pass/fail check the way CheckExhaustiveness is.
func CheckSealProofCoverage(p *PriceList, proofType SealProofType) (direct bool) {
	_, ok := p.VerifyAggregateSealPer[proofType]
	return ok
}

// String renders a human-readable summary, used by cmd/gaslint.
func (r ExhaustivenessReport) String() string {
	if r.OK() {
		return fmt.Sprintf("%s: exhaustive", r.PriceListName)
	}
	return fmt.Sprintf("%s: missing hash=%v signature=%v post=%v",
		r.PriceListName, r.MissingHash, r.MissingSignature, r.MissingPoSt)
}
