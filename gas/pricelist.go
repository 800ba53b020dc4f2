// SPDX-License-Identifier: BUSL-1.1

package gas

// NetworkVersion identifies the protocol version a message executes
// under, which in turn selects the priced event catalogue in force.
type NetworkVersion int

const (
	NV21 NetworkVersion = 21 + iota
	NV22
	NV23
	NV24
	NV25
	NV26
	NV27
)

// HashAlgorithm enumerates the digest functions the price list has an
// entry for. The concrete hashing implementations themselves are out of
// scope here; only their cost is priced.
type HashAlgorithm int

const (
	Sha2_256 HashAlgorithm = iota
	Blake2b256
	Blake2b512
	Keccak256
	Ripemd160
)

// SignatureType enumerates the signature schemes the price list has an
// entry for. As with HashAlgorithm, verification internals are out of
// scope; Secp256k1 and BLS are priced by name only.
type SignatureType int

const (
	SignatureSecp256k1 SignatureType = iota
	SignatureBLS
)

// SealProofType enumerates the sector sealing proof variants the price
// list covers. Unknown values fall back to StackedDRG32GiBV1P1.
type SealProofType int

const (
	StackedDRG32GiBV1P1 SealProofType = iota
	StackedDRG64GiBV1P1
	// NiPoRepP2Feat32GiB and NiPoRepP2Feat64GiB are only priced under the
	// Teep price list.
	NiPoRepP2Feat32GiB
	NiPoRepP2Feat64GiB
)

// PoStProofType enumerates the Window PoSt proof variants the price
// list covers. Unknown values fall back to Window512MiBV1.
type PoStProofType int

const (
	Window512MiBV1 PoStProofType = iota
	Window32GiBV1
	Window64GiBV1
)

// WasmGasPrices holds the per-instruction-category costs used by
// InstructionRules to price a WASM module's instruction stream.
type WasmGasPrices struct {
	InstructionDefault Gas
	MathDefault        Gas
	JumpUnconditional  Gas
	JumpConditional    Gas
	JumpIndirect       Gas
	Call               Gas

	MemoryFillBaseCost     Gas
	MemoryFillPerByteCost  Gas
	MemoryAccessCost       Gas
	MemoryCopyPerByteCost  Gas

	HostCallCost Gas
}

// PriceList is the full priced event catalogue in force for one network
// version. All costs are in milligas. Every on_* method on PriceList
// returns a GasCharge, never a raw number, so the name survives into
// ledger diagnostics.
type PriceList struct {
	Name string

	OnChainMessageCompute ScalingCost
	OnChainMessageStorage ScalingCost
	OnChainReturnCompute  ScalingCost
	OnChainReturnStorage  ScalingCost

	SendTransferFunds Gas
	SendInvokeMethod  Gas

	AddressLookup     Gas
	AddressAssignment Gas

	ActorLookup       Gas
	ActorUpdate       Gas
	ActorCreateStorage Gas

	SigCost map[SignatureType]ScalingCost

	Secp256k1RecoverCost Gas
	BLSPairingCost       Gas
	BLSHashingCost       ScalingCost

	HashingCost map[HashAlgorithm]ScalingCost

	LookbackCost ScalingCost

	ComputeUnsealedSectorCidBase Gas
	VerifySealBase               Gas
	VerifyAggregateSealPer       map[SealProofType]Gas
	VerifyAggregateSealSteps     map[SealProofType]StepCost

	VerifyPostLookup     map[PoStProofType]ScalingCost
	VerifyConsensusFault Gas
	VerifyReplicaUpdate  Gas

	BlockMemcpy                 ScalingCost
	BlockAllocate               ScalingCost
	BlockMemoryRetentionMinimum ScalingCost
	BlockOpen                   ScalingCost
	BlockPersistStorage         ScalingCost
	BlockPersistCompute         Gas

	WasmRules WasmGasPrices

	EventPerEntry             ScalingCost
	BuiltinActorManifestLookup Gas
	UTF8Validation            ScalingCost
	NetworkContext            Gas
	MessageContext            Gas
	InstallWasmPerByteCost    Gas

	PreloadedActors []int64

	IPLDCborScanPerField Gas
	IPLDCborScanPerCid   Gas
	IPLDLinkTracked      Gas
	IPLDLinkChecked      Gas
}

const (
	tableElementSize   = 8
	eventOverhead      = 12
	eventEntryOverhead = 9
)
