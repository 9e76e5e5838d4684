// Package latency provides instruction timing models for CHIP-8 programs.
//
// The latency values are machine-cycle estimates and can be configured via
// TimingConfig.
package latency

import (
	"github.com/sarchlab/c8sim/insts"
)

// Class groups instructions that share a timing rule.
type Class uint8

// Instruction classes.
const (
	ClassOther Class = iota
	ClassALU
	ClassBranch
	ClassCall
	ClassLoad
	ClassStore
	ClassDraw
	ClassClear
	ClassTimer
	ClassKey
	ClassRandom
)

// NumClasses is the number of instruction classes.
const NumClasses = int(ClassRandom) + 1

var classNames = [NumClasses]string{
	ClassOther:  "other",
	ClassALU:    "alu",
	ClassBranch: "branch",
	ClassCall:   "call",
	ClassLoad:   "load",
	ClassStore:  "store",
	ClassDraw:   "draw",
	ClassClear:  "clear",
	ClassTimer:  "timer",
	ClassKey:    "key",
	ClassRandom: "random",
}

func (c Class) String() string {
	if int(c) < NumClasses {
		return classNames[c]
	}
	return "unknown"
}

// Classify returns the timing class of an instruction.
func Classify(inst *insts.Instruction) Class {
	if inst == nil {
		return ClassOther
	}

	switch inst.Op {
	case insts.OpLDImm, insts.OpADDImm, insts.OpLDReg, insts.OpOR,
		insts.OpAND, insts.OpXOR, insts.OpADDReg, insts.OpSUB,
		insts.OpSHR, insts.OpSUBN, insts.OpSHL, insts.OpLDI,
		insts.OpADDI, insts.OpLDF:
		return ClassALU

	case insts.OpJP, insts.OpJPV0, insts.OpSEImm, insts.OpSNEImm,
		insts.OpSEReg, insts.OpSNEReg:
		return ClassBranch

	case insts.OpCALL, insts.OpRET:
		return ClassCall

	case insts.OpLDLoad:
		return ClassLoad

	case insts.OpLDStore, insts.OpLDB:
		return ClassStore

	case insts.OpDRW:
		return ClassDraw

	case insts.OpCLS:
		return ClassClear

	case insts.OpLDVxDT, insts.OpLDDTVx, insts.OpLDSTVx:
		return ClassTimer

	case insts.OpSKP, insts.OpSKNP, insts.OpLDVxK:
		return ClassKey

	case insts.OpRND:
		return ClassRandom

	default:
		return ClassOther
	}
}

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given
// instruction. Memory costs beyond the per-byte rates are charged
// separately by the cache model.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch Classify(inst) {
	case ClassALU:
		return t.config.ALULatency
	case ClassBranch:
		return t.config.BranchLatency
	case ClassCall:
		return t.config.CallLatency
	case ClassLoad:
		return t.config.LoadLatency * (uint64(inst.X) + 1)
	case ClassStore:
		if inst.Op == insts.OpLDB {
			return t.config.StoreLatency * 3
		}
		return t.config.StoreLatency * (uint64(inst.X) + 1)
	case ClassDraw:
		return t.config.DrawBaseLatency + t.config.DrawRowLatency*uint64(inst.N)
	case ClassClear:
		return t.config.ClearLatency
	case ClassTimer:
		return t.config.TimerLatency
	case ClassKey:
		return t.config.KeyLatency
	case ClassRandom:
		return t.config.RandomLatency
	default:
		return 1
	}
}

// IsMemoryOp returns true if the instruction reads or writes data memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return t.IsLoadOp(inst) || t.IsStoreOp(inst)
}

// IsLoadOp returns true if the instruction reads data memory. Sprite draws
// read their rows from memory.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLDLoad || inst.Op == insts.OpDRW
}

// IsStoreOp returns true if the instruction writes data memory.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLDStore || inst.Op == insts.OpLDB
}

// IsBranchOp returns true if the instruction can change control flow.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	switch Classify(inst) {
	case ClassBranch, ClassCall:
		return true
	case ClassKey:
		return inst.Op != insts.OpLDVxK
	default:
		return false
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
