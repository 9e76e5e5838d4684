// Package insts provides CHIP-8 instruction definitions and decoding.
package insts

// Op represents a CHIP-8 operation.
type Op uint8

// CHIP-8 operations.
const (
	OpUnknown Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEImm      // 3XNN
	OpSNEImm     // 4XNN
	OpSEReg      // 5XY0
	OpLDImm      // 6XNN
	OpADDImm     // 7XNN
	OpLDReg      // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADDReg     // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEReg     // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpRND        // CXNN
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDVxK      // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDI       // FX1E
	OpLDF        // FX29
	OpLDB        // FX33
	OpLDStore    // FX55
	OpLDLoad     // FX65
)

var opNames = [...]string{
	OpUnknown: "???",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEImm:   "SE",
	OpSNEImm:  "SNE",
	OpSEReg:   "SE",
	OpLDImm:   "LD",
	OpADDImm:  "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpLDStore: "LD",
	OpLDLoad:  "LD",
}

// String returns the conventional mnemonic of the operation.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpUnknown]
}

// Format represents which operand fields of an instruction are meaningful.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatNone           // No operands (CLS, RET)
	FormatAddr           // 12-bit address NNN
	FormatRegImm         // Register X and 8-bit immediate NN
	FormatRegReg         // Registers X and Y
	FormatReg            // Register X only
	FormatDraw           // Registers X, Y and 4-bit height N
)

// Instruction represents a decoded CHIP-8 instruction.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Operand layout

	Raw uint16 // The opcode the instruction was decoded from

	X   uint8  // Register index from bits [11:8]
	Y   uint8  // Register index from bits [7:4]
	N   uint8  // 4-bit immediate from bits [3:0]
	NN  uint8  // 8-bit immediate from bits [7:0]
	NNN uint16 // 12-bit address from bits [11:0]
}

// Decoder decodes CHIP-8 opcodes into instructions.
type Decoder struct{}

// NewDecoder creates a new CHIP-8 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 16-bit CHIP-8 opcode. Opcodes that match no instruction
// are returned with Op set to OpUnknown and all operand fields populated.
func (d *Decoder) Decode(opcode uint16) *Instruction {
	inst := &Instruction{
		Op:     OpUnknown,
		Format: FormatUnknown,
		Raw:    opcode,
		X:      uint8((opcode >> 8) & 0xF),
		Y:      uint8((opcode >> 4) & 0xF),
		N:      uint8(opcode & 0xF),
		NN:     uint8(opcode & 0xFF),
		NNN:    opcode & 0x0FFF,
	}

	switch opcode >> 12 {
	case 0x0:
		d.decodeSystem(inst)
	case 0x1:
		inst.Op, inst.Format = OpJP, FormatAddr
	case 0x2:
		inst.Op, inst.Format = OpCALL, FormatAddr
	case 0x3:
		inst.Op, inst.Format = OpSEImm, FormatRegImm
	case 0x4:
		inst.Op, inst.Format = OpSNEImm, FormatRegImm
	case 0x5:
		if inst.N == 0 {
			inst.Op, inst.Format = OpSEReg, FormatRegReg
		}
	case 0x6:
		inst.Op, inst.Format = OpLDImm, FormatRegImm
	case 0x7:
		inst.Op, inst.Format = OpADDImm, FormatRegImm
	case 0x8:
		d.decodeALU(inst)
	case 0x9:
		if inst.N == 0 {
			inst.Op, inst.Format = OpSNEReg, FormatRegReg
		}
	case 0xA:
		inst.Op, inst.Format = OpLDI, FormatAddr
	case 0xB:
		inst.Op, inst.Format = OpJPV0, FormatAddr
	case 0xC:
		inst.Op, inst.Format = OpRND, FormatRegImm
	case 0xD:
		inst.Op, inst.Format = OpDRW, FormatDraw
	case 0xE:
		d.decodeKey(inst)
	case 0xF:
		d.decodeMisc(inst)
	}

	return inst
}

// decodeSystem decodes the 0x0 group. Only 00E0 and 00EE are part of the
// instruction set; 0NNN machine-code calls are left unknown.
func (d *Decoder) decodeSystem(inst *Instruction) {
	switch inst.Raw {
	case 0x00E0:
		inst.Op, inst.Format = OpCLS, FormatNone
	case 0x00EE:
		inst.Op, inst.Format = OpRET, FormatNone
	}
}

// aluOps maps the low nibble of an 8XYN opcode to its operation. Nibbles
// 0x8-0xD and 0xF are unassigned.
var aluOps = [16]Op{
	0x0: OpLDReg,
	0x1: OpOR,
	0x2: OpAND,
	0x3: OpXOR,
	0x4: OpADDReg,
	0x5: OpSUB,
	0x6: OpSHR,
	0x7: OpSUBN,
	0xE: OpSHL,
}

// decodeALU decodes the 8XYN register-register group by its low nibble.
func (d *Decoder) decodeALU(inst *Instruction) {
	if op := aluOps[inst.N]; op != OpUnknown {
		inst.Op, inst.Format = op, FormatRegReg
	}
}

// decodeKey decodes the EX9E/EXA1 key skips by their low byte.
func (d *Decoder) decodeKey(inst *Instruction) {
	switch inst.NN {
	case 0x9E:
		inst.Op, inst.Format = OpSKP, FormatReg
	case 0xA1:
		inst.Op, inst.Format = OpSKNP, FormatReg
	}
}

// decodeMisc decodes the FXNN timer, index and memory group by its low byte.
func (d *Decoder) decodeMisc(inst *Instruction) {
	switch inst.NN {
	case 0x07:
		inst.Op = OpLDVxDT
	case 0x0A:
		inst.Op = OpLDVxK
	case 0x15:
		inst.Op = OpLDDTVx
	case 0x18:
		inst.Op = OpLDSTVx
	case 0x1E:
		inst.Op = OpADDI
	case 0x29:
		inst.Op = OpLDF
	case 0x33:
		inst.Op = OpLDB
	case 0x55:
		inst.Op = OpLDStore
	case 0x65:
		inst.Op = OpLDLoad
	default:
		return
	}
	inst.Format = FormatReg
}
