// SPDX-License-Identifier: BUSL-1.1

package gas

// This file implements the priced-event catalogue: one method per
// billable VM event, mirroring the reference price list's on_* methods
// one for one. Each returns a GasCharge so the ledger can debit it
// atomically and keep the event name for diagnostics.

// OnChainMessage charges for storing a message of the given size on
// chain plus updating the sender's nonce/balance in the state tree.
func (p *PriceList) OnChainMessage(msgSize int) GasCharge {
	return NewGasCharge(
		"OnChainMessage",
		p.OnChainMessageCompute.Apply(uint64(msgSize)),
		p.ActorUpdate.Add(p.OnChainMessageStorage.Apply(uint64(msgSize))),
	)
}

// OnValueTransfer charges for transferring funds to an actor.
func (p *PriceList) OnValueTransfer() GasCharge {
	return NewGasCharge("OnValueTransfer", p.SendTransferFunds, Zero)
}

// OnMethodInvocation charges for invoking a method.
func (p *PriceList) OnMethodInvocation(paramLinks int) GasCharge {
	charge := p.SendInvokeMethod.Add(p.IPLDLinkTracked.MulUint64(uint64(paramLinks)))
	return NewGasCharge("OnMethodInvocation", charge, Zero)
}

// OnMethodReturn charges for returning a value from a method. At the
// top level (callDepth == 1) this charges for storing the block
// on-chain; everywhere else it charges for tracking IPLD links.
func (p *PriceList) OnMethodReturn(callDepth int, returnSize int, returnLinks int) GasCharge {
	if callDepth == 1 {
		return NewGasCharge(
			"OnChainReturnValue",
			p.OnChainReturnCompute.Apply(uint64(returnSize)),
			p.OnChainReturnStorage.Apply(uint64(returnSize)),
		)
	}
	return NewGasCharge("OnReturnValue", p.IPLDLinkTracked.MulUint64(uint64(returnLinks)), Zero)
}

// OnCreateActor charges for creating an actor. Pass newAddress=true
// when a new address is being explicitly assigned.
func (p *PriceList) OnCreateActor(newAddress bool) GasCharge {
	charge := p.ActorCreateStorage
	if newAddress {
		charge = charge.Add(p.AddressAssignment).Add(p.AddressLookup)
	}
	return NewGasCharge("OnCreateActor", Zero, charge)
}

// OnDeleteActor charges for deleting an actor (currently free).
func (p *PriceList) OnDeleteActor() GasCharge {
	return NewGasCharge("OnDeleteActor", Zero, Zero)
}

// OnVerifySignature charges for verifying a cryptographic signature.
func (p *PriceList) OnVerifySignature(sigType SignatureType, dataLen int) GasCharge {
	cost := p.SigCost[sigType]
	return NewGasCharge("OnVerifySignature", cost.Apply(uint64(dataLen)), Zero)
}

// OnVerifyAggregateSignature charges for BLS aggregate signature
// verification. When numSigs signatures are aggregated, the verifier
// performs numSigs+1 pairing operations: one for the aggregate
// signature and one per signed digest.
func (p *PriceList) OnVerifyAggregateSignature(numSigs int, dataLen int) GasCharge {
	numPairings := uint64(numSigs) + 1
	gasPairings := p.BLSPairingCost.MulUint64(numPairings)
	gasHashing := p.BLSHashingCost.Apply(uint64(dataLen))
	return NewGasCharge("OnVerifyBlsAggregateSignature", gasPairings.Add(gasHashing), Zero)
}

// OnRecoverSecpPublicKey charges for recovering a signer's public key
// from a secp256k1 signature.
func (p *PriceList) OnRecoverSecpPublicKey() GasCharge {
	return NewGasCharge("OnRecoverSecpPublicKey", p.Secp256k1RecoverCost, Zero)
}

// OnHashing charges for hashing data with the given algorithm.
func (p *PriceList) OnHashing(alg HashAlgorithm, dataLen int) GasCharge {
	cost := p.HashingCost[alg]
	return NewGasCharge("OnHashing", cost.Apply(uint64(dataLen)), Zero)
}

// OnUTF8Validation charges for validating a UTF-8 string of the given length.
func (p *PriceList) OnUTF8Validation(length int) GasCharge {
	return NewGasCharge("OnUtf8Validation", p.UTF8Validation.Apply(uint64(length)), Zero)
}

// OnComputeUnsealedSectorCid charges for computing an unsealed sector CID.
func (p *PriceList) OnComputeUnsealedSectorCid() GasCharge {
	return NewGasCharge("OnComputeUnsealedSectorCid", p.ComputeUnsealedSectorCidBase, Zero)
}

// OnVerifySeal charges for seal verification.
func (p *PriceList) OnVerifySeal() GasCharge {
	return NewGasCharge("OnVerifySeal", p.VerifySealBase, Zero)
}

// OnVerifyAggregateSeals charges for aggregate seal verification across
// numProofs proofs of the given seal proof type. Unknown proof types
// fall back to StackedDRG32GiBV1P1, matching the reference
// implementation's graceful-degradation behavior for forward
// compatibility with proof types this price list does not yet know.
func (p *PriceList) OnVerifyAggregateSeals(proofType SealProofType, numProofs int) GasCharge {
	perProof, ok := p.VerifyAggregateSealPer[proofType]
	if !ok {
		perProof = p.VerifyAggregateSealPer[StackedDRG32GiBV1P1]
	}
	steps, ok := p.VerifyAggregateSealSteps[proofType]
	if !ok {
		steps = p.VerifyAggregateSealSteps[StackedDRG32GiBV1P1]
	}
	num := uint64(numProofs)
	gas := perProof.MulUint64(num).Add(steps.Lookup(num))
	return NewGasCharge("OnVerifyAggregateSeals", gas, Zero)
}

// OnVerifyReplicaUpdate charges for replica update verification.
func (p *PriceList) OnVerifyReplicaUpdate() GasCharge {
	return NewGasCharge("OnVerifyReplicaUpdate", p.VerifyReplicaUpdate, Zero)
}

// OnVerifyPost charges for Window PoSt verification. A nil or unknown
// proof type falls back to Window512MiBV1, matching the reference
// implementation.
func (p *PriceList) OnVerifyPost(proofType PoStProofType, hasProof bool, challengedSectors int) GasCharge {
	lookup := Window512MiBV1
	if hasProof {
		lookup = proofType
	}
	cost, ok := p.VerifyPostLookup[lookup]
	if !ok {
		cost = p.VerifyPostLookup[Window512MiBV1]
	}
	return NewGasCharge("OnVerifyPost", cost.Apply(uint64(challengedSectors)), Zero)
}

// OnVerifyConsensusFault charges for consensus fault verification.
func (p *PriceList) OnVerifyConsensusFault() GasCharge {
	return NewGasCharge("OnVerifyConsensusFault", Zero, p.VerifyConsensusFault)
}

// OnGetRandomness charges for fetching randomness at the given lookback distance.
func (p *PriceList) OnGetRandomness(lookback int64) GasCharge {
	return NewGasCharge("OnGetRandomness", Zero, p.LookbackCost.Apply(uint64(lookback)))
}

// OnBlockOpenBase charges the size-independent portion of opening a block.
func (p *PriceList) OnBlockOpenBase() GasCharge {
	return NewGasCharge("OnBlockOpenBase", p.IPLDLinkChecked, p.BlockOpen.Flat)
}

// OnBlockOpen charges for loading an object of dataSize bytes with the
// given number of outgoing links. The result is never less than the
// configured memory retention minimum for the object's size.
func (p *PriceList) OnBlockOpen(dataSize int, links int) GasCharge {
	compute := p.IPLDLinkTracked.MulUint64(uint64(links))
	blockOpen := p.BlockOpen.Scale.MulUint64(uint64(dataSize)).
		Add(p.BlockAllocate.Apply(uint64(dataSize))).
		Add(p.BlockMemcpy.Apply(uint64(dataSize)))

	retentionMin := p.BlockMemoryRetentionMinimum.Apply(uint64(dataSize))
	retentionSurcharge := retentionMin.Sub(compute.Add(blockOpen))

	return NewGasCharge("OnBlockOpen", compute, blockOpen.Add(retentionSurcharge))
}

// OnBlockRead charges for reading an already-loaded object.
func (p *PriceList) OnBlockRead(dataSize int) GasCharge {
	return NewGasCharge("OnBlockRead", p.BlockMemcpy.Apply(uint64(dataSize)), Zero)
}

// OnBlockCreate charges for adding an object to the execution cache.
func (p *PriceList) OnBlockCreate(dataSize int, links int) GasCharge {
	compute := p.BlockMemcpy.Apply(uint64(dataSize)).
		Add(p.BlockAllocate.Apply(uint64(dataSize))).
		Add(p.IPLDLinkChecked.MulUint64(uint64(links)))

	retentionMin := p.BlockMemoryRetentionMinimum.Apply(uint64(dataSize))
	retentionSurcharge := retentionMin.Sub(compute)

	return NewGasCharge("OnBlockCreate", compute, retentionSurcharge)
}

// OnBlockLink charges for committing an object to the state
// blockstore: hashing it into a CID now, plus the deferred cost of
// persisting and flushing it.
func (p *PriceList) OnBlockLink(hashAlg HashAlgorithm, dataSize int) GasCharge {
	memcpy := p.BlockMemcpy.Apply(uint64(dataSize))
	alloc := p.BlockAllocate.Apply(uint64(dataSize))
	hashing := p.HashingCost[hashAlg].Apply(uint64(dataSize))

	initialCompute := memcpy.Add(alloc).Add(hashing).Add(p.IPLDLinkTracked)
	storage := p.BlockPersistStorage.Apply(uint64(dataSize))
	deferredCompute := p.BlockPersistCompute

	return NewGasCharge("OnBlockLink", initialCompute, deferredCompute.Add(storage))
}

// OnBlockStat charges for a block stat lookup (currently free).
func (p *PriceList) OnBlockStat() GasCharge {
	return NewGasCharge("OnBlockStat", Zero, Zero)
}

// OnActorLookup charges for looking up an actor in the state tree.
func (p *PriceList) OnActorLookup() GasCharge {
	return NewGasCharge("OnActorLookup", Zero, p.ActorLookup)
}

// OnActorUpdate charges for updating an actor in the state tree.
// Assumes the lookup fee has already been charged.
func (p *PriceList) OnActorUpdate() GasCharge {
	return NewGasCharge("OnActorUpdate", Zero, p.ActorUpdate)
}

// OnActorCreate charges for creating a new actor in the state tree.
// Assumes the lookup and update fees have already been charged.
func (p *PriceList) OnActorCreate() GasCharge {
	return NewGasCharge("OnActorCreate", Zero, p.ActorCreateStorage)
}

// OnSelfBalance charges for reading the current actor's own balance (free).
func (p *PriceList) OnSelfBalance() GasCharge {
	return NewGasCharge("OnSelfBalance", Zero, Zero)
}

// OnBalanceOf charges for reading another actor's balance (free).
func (p *PriceList) OnBalanceOf() GasCharge {
	return NewGasCharge("OnBalanceOf", Zero, Zero)
}

// OnResolveAddress charges for resolving an actor address.
func (p *PriceList) OnResolveAddress() GasCharge {
	return NewGasCharge("OnResolveAddress", Zero, Zero)
}

// OnLookupDelegatedAddress charges for looking up an actor's delegated address.
func (p *PriceList) OnLookupDelegatedAddress() GasCharge {
	return NewGasCharge("OnLookupAddress", Zero, Zero)
}

// OnGetActorCodeCid charges for fetching the code CID of an actor.
func (p *PriceList) OnGetActorCodeCid() GasCharge {
	return NewGasCharge("OnGetActorCodeCid", Zero, Zero)
}

// OnGetBuiltinActorType charges for looking up a builtin actor's type by CID.
func (p *PriceList) OnGetBuiltinActorType() GasCharge {
	return NewGasCharge("OnGetBuiltinActorType", p.BuiltinActorManifestLookup, Zero)
}

// OnGetCodeCidForType charges for looking up a builtin actor's CID by type.
func (p *PriceList) OnGetCodeCidForType() GasCharge {
	return NewGasCharge("OnGetCodeCidForType", p.BuiltinActorManifestLookup, Zero)
}

// OnTipsetCid charges for looking up a tipset CID at the given lookback distance.
func (p *PriceList) OnTipsetCid(lookback int64) GasCharge {
	return NewGasCharge("OnTipsetCid", Zero, p.LookbackCost.Apply(uint64(lookback)))
}

// OnNetworkContext charges for accessing the network context.
func (p *PriceList) OnNetworkContext() GasCharge {
	return NewGasCharge("OnNetworkContext", p.NetworkContext, Zero)
}

// OnMessageContext charges for accessing the message context.
func (p *PriceList) OnMessageContext() GasCharge {
	return NewGasCharge("OnMessageContext", p.MessageContext, Zero)
}

// OnInstallActor charges for installing a WASM actor of the given size.
func (p *PriceList) OnInstallActor(wasmSize int) GasCharge {
	return NewGasCharge("OnInstallActor", p.InstallWasmPerByteCost.MulUint64(uint64(wasmSize)), Zero)
}

// OnActorEvent charges for validating and storing an actor event with
// the given number of entries and total key/value sizes. The estimated
// CBOR-encoded size is built from saturating arithmetic throughout, so
// a pathological input (e.g. an entry count near math.MaxUint64)
// saturates the estimate — and therefore the charge — at the maximum
// representable Gas instead of overflowing or erroring.
func (p *PriceList) OnActorEvent(entries int, keysize int, valuesize int) GasCharge {
	validateEntries := p.EventPerEntry.Apply(uint64(entries))
	validateUTF8 := p.UTF8Validation.Apply(uint64(keysize))

	estimatedSize := saturatingAddU64(
		uint64(eventOverhead),
		saturatingMulU64(uint64(eventEntryOverhead), uint64(entries)),
		uint64(keysize),
		uint64(valuesize),
	)

	mem := p.BlockMemcpy.Apply(estimatedSize).Add(p.BlockAllocate.Apply(estimatedSize))
	hash := p.HashingCost[Blake2b256].Apply(estimatedSize)

	return NewGasCharge(
		"OnActorEvent",
		mem.MulUint64(2).Add(validateEntries).Add(validateUTF8),
		hash.Add(mem),
	)
}

func saturatingAddU64(vals ...uint64) uint64 {
	var sum uint64
	for _, v := range vals {
		next := sum + v
		if next < sum {
			return ^uint64(0)
		}
		sum = next
	}
	return sum
}

func saturatingMulU64(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	product := a * b
	if product/a != b {
		return ^uint64(0)
	}
	return product
}

// OnGetRoot charges for reading an actor's state root.
func (p *PriceList) OnGetRoot() GasCharge {
	return NewGasCharge("OnActorGetRoot", p.IPLDLinkTracked, Zero)
}

// OnSetRoot charges for writing an actor's state root.
func (p *PriceList) OnSetRoot() GasCharge {
	return NewGasCharge("OnActorSetRoot", p.IPLDLinkChecked, Zero)
}
