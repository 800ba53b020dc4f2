// SPDX-License-Identifier: BUSL-1.1

package gas

// teepPrices is the price list in force for network versions V25 and
// V26 (and, under the nv27-dev flag, V27). It starts from a copy of
// watermelonPrices and overrides only the fields the reference
// implementation actually changes: seal verification got dramatically
// more expensive, and two new NiPoRep aggregate-seal proof variants
// were added.
var teepPrices = buildTeepPrices()

func buildTeepPrices() *PriceList {
	p := *watermelonPrices
	p.Name = "teep"

	p.VerifySealBase = NewGas(42_000_000)

	p.VerifyAggregateSealPer = map[SealProofType]Gas{
		StackedDRG32GiBV1P1: NewGas(449900),
		StackedDRG64GiBV1P1: NewGas(359272),
		NiPoRepP2Feat32GiB:  NewGas(44990 * 126),
		NiPoRepP2Feat64GiB:  NewGas(35928 * 126),
	}

	p.VerifyAggregateSealSteps = map[SealProofType]StepCost{
		StackedDRG32GiBV1P1: watermelonPrices.VerifyAggregateSealSteps[StackedDRG32GiBV1P1],
		StackedDRG64GiBV1P1: watermelonPrices.VerifyAggregateSealSteps[StackedDRG64GiBV1P1],
		NiPoRepP2Feat32GiB: {
			{Start: 1, Cost: NewGas(112356810)},
			{Start: 2, Cost: NewGas(122912610)},
			{Start: 3, Cost: NewGas(137559930)},
			{Start: 5, Cost: NewGas(162039100)},
			{Start: 9, Cost: NewGas(210960780)},
			{Start: 17, Cost: NewGas(318351180)},
			{Start: 33, Cost: NewGas(528274980)},
		},
		NiPoRepP2Feat64GiB: {
			{Start: 1, Cost: NewGas(110803030)},
			{Start: 2, Cost: NewGas(120803700)},
			{Start: 3, Cost: NewGas(134642130)},
			{Start: 5, Cost: NewGas(157357890)},
			{Start: 9, Cost: NewGas(203017690)},
			{Start: 17, Cost: NewGas(304253590)},
			{Start: 33, Cost: NewGas(509880640)},
		},
	}

	return &p
}
