// Package decoder splits a fetched 32-bit instruction word into its
// opcode/funct3/funct7 fields and reconstructs the sign- or zero-extended
// immediate for whichever of the I/S/B/U/J formats applies, using only
// bitvec.Slice and bitvec.Concat -- grounded on the field-extraction shape
// of a reference RV32I decoder, adapted from host shift-and-mask into the
// bitvec package's MSB-first slicing.
package decoder

import (
	"github.com/rv32toy/rv32sim/bitvec"
	"github.com/rv32toy/rv32sim/faults"
)

const component = "decoder"

// Mnemonic names every instruction this decoder recognizes.
type Mnemonic int

const (
	Unknown Mnemonic = iota
	LUI
	AUIPC
	JAL
	JALR
	BEQ
	BNE
	BLT
	BGE
	BLTU
	BGEU
	LB
	LH
	LW
	LBU
	LHU
	SB
	SH
	SW
	ADDI
	SLTI
	SLTIU
	XORI
	ORI
	ANDI
	SLLI
	SRLI
	SRAI
	ADD
	SUB
	SLL
	SLT
	SLTU
	XOR
	SRL
	SRA
	OR
	AND
	FENCE
	ECALL
	EBREAK
	MUL
	MULH
	MULHSU
	MULHU
	DIV
	DIVU
	REM
	REMU
	FLW
	FSW
	FADD_S
	FSUB_S
	FMUL_S
)

var mnemonicNames = map[Mnemonic]string{
	Unknown: "UNKNOWN", LUI: "LUI", AUIPC: "AUIPC", JAL: "JAL", JALR: "JALR",
	BEQ: "BEQ", BNE: "BNE", BLT: "BLT", BGE: "BGE", BLTU: "BLTU", BGEU: "BGEU",
	LB: "LB", LH: "LH", LW: "LW", LBU: "LBU", LHU: "LHU",
	SB: "SB", SH: "SH", SW: "SW",
	ADDI: "ADDI", SLTI: "SLTI", SLTIU: "SLTIU", XORI: "XORI", ORI: "ORI", ANDI: "ANDI",
	SLLI: "SLLI", SRLI: "SRLI", SRAI: "SRAI",
	ADD: "ADD", SUB: "SUB", SLL: "SLL", SLT: "SLT", SLTU: "SLTU", XOR: "XOR",
	SRL: "SRL", SRA: "SRA", OR: "OR", AND: "AND",
	FENCE: "FENCE", ECALL: "ECALL", EBREAK: "EBREAK",
	MUL: "MUL", MULH: "MULH", MULHSU: "MULHSU", MULHU: "MULHU",
	DIV: "DIV", DIVU: "DIVU", REM: "REM", REMU: "REMU",
	FLW: "FLW", FSW: "FSW", FADD_S: "FADD.S", FSUB_S: "FSUB.S", FMUL_S: "FMUL.S",
}

func (m Mnemonic) String() string {
	if name, ok := mnemonicNames[m]; ok {
		return name
	}
	return "UNKNOWN"
}

// Format identifies which immediate-construction rule applies.
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// Decoded is a fully split instruction: raw fields plus the reconstructed
// 32-bit immediate (already sign- or zero-extended as the format demands).
type Decoded struct {
	Raw      bitvec.Vector
	Mnemonic Mnemonic
	Format   Format
	Opcode   bitvec.Vector // 7 bits
	Rd       int
	Rs1      int
	Rs2      int
	Funct3   bitvec.Vector // 3 bits
	Funct7   bitvec.Vector // 7 bits
	Imm      bitvec.Vector // 32 bits, sign/zero-extended per format
}

// Decode splits a 32-bit instruction word.
func Decode(instr bitvec.Vector) (Decoded, error) {
	if instr.Width() != 32 {
		return Decoded{}, faults.New(component, faults.KindWidthMismatch, "instruction must be 32 bits, got %d", instr.Width())
	}

	opcode := instr.Slice(25, 32)
	rd := fieldToInt(instr.Slice(20, 25))
	funct3 := instr.Slice(17, 20)
	rs1 := fieldToInt(instr.Slice(12, 17))
	rs2 := fieldToInt(instr.Slice(7, 12))
	funct7 := instr.Slice(0, 7)

	mnemonic, format := classify(opcode, funct3, funct7, rs2)

	d := Decoded{
		Raw: instr, Mnemonic: mnemonic, Format: format,
		Opcode: opcode, Rd: rd, Rs1: rs1, Rs2: rs2, Funct3: funct3, Funct7: funct7,
	}
	d.Imm = buildImmediate(instr, format)
	return d, nil
}

func fieldToInt(v bitvec.Vector) int {
	weights := [5]int{16, 8, 4, 2, 1}
	total := 0
	for i := 0; i < 5; i++ {
		if v.Get(i) {
			total += weights[i]
		}
	}
	return total
}

func buildImmediate(instr bitvec.Vector, format Format) bitvec.Vector {
	switch format {
	case FormatI:
		return bitvec.SignExtend(instr.Slice(0, 12), 32)
	case FormatS:
		hi := instr.Slice(0, 7)
		lo := instr.Slice(20, 25)
		return bitvec.SignExtend(bitvec.Concat(hi, lo), 32)
	case FormatB:
		bit12 := instr.Slice(0, 1)
		bits10to5 := instr.Slice(1, 7)
		bits4to1 := instr.Slice(20, 24)
		bit11 := instr.Slice(24, 25)
		raw := bitvec.Concat(bit12, bit11, bits10to5, bits4to1, bitvec.New(1))
		return bitvec.SignExtend(raw, 32)
	case FormatU:
		return bitvec.Concat(instr.Slice(0, 20), bitvec.New(12))
	case FormatJ:
		bit20 := instr.Slice(0, 1)
		bits19to12 := instr.Slice(12, 20)
		bit11 := instr.Slice(11, 12)
		bits10to1 := instr.Slice(1, 11)
		raw := bitvec.Concat(bit20, bits19to12, bit11, bits10to1, bitvec.New(1))
		return bitvec.SignExtend(raw, 32)
	default:
		return bitvec.New(32)
	}
}

func eq7(v bitvec.Vector, pattern string) bool {
	for i, c := range pattern {
		if v.Get(i) != (c == '1') {
			return false
		}
	}
	return true
}

func eq3(v bitvec.Vector, pattern string) bool {
	for i, c := range pattern {
		if v.Get(i) != (c == '1') {
			return false
		}
	}
	return true
}

func classify(opcode, funct3, funct7 bitvec.Vector, rs2 int) (Mnemonic, Format) {
	switch {
	case eq7(opcode, "0110111"):
		return LUI, FormatU
	case eq7(opcode, "0010111"):
		return AUIPC, FormatU
	case eq7(opcode, "1101111"):
		return JAL, FormatJ
	case eq7(opcode, "1100111"):
		return JALR, FormatI
	case eq7(opcode, "1100011"):
		return classifyBranch(funct3), FormatB
	case eq7(opcode, "0000011"):
		return classifyLoad(funct3), FormatI
	case eq7(opcode, "0100011"):
		return classifyStore(funct3), FormatS
	case eq7(opcode, "0010011"):
		return classifyOpImm(funct3, funct7), FormatI
	case eq7(opcode, "0110011"):
		return classifyOp(funct3, funct7), FormatR
	case eq7(opcode, "0001111"):
		return FENCE, FormatI
	case eq7(opcode, "1110011"):
		if rs2 == 1 {
			return EBREAK, FormatI
		}
		return ECALL, FormatI
	case eq7(opcode, "0000111"):
		return FLW, FormatI
	case eq7(opcode, "0100111"):
		return FSW, FormatS
	case eq7(opcode, "1010011"):
		return classifyFP(funct7), FormatR
	default:
		return Unknown, FormatR
	}
}

func classifyBranch(funct3 bitvec.Vector) Mnemonic {
	switch {
	case eq3(funct3, "000"):
		return BEQ
	case eq3(funct3, "001"):
		return BNE
	case eq3(funct3, "100"):
		return BLT
	case eq3(funct3, "101"):
		return BGE
	case eq3(funct3, "110"):
		return BLTU
	case eq3(funct3, "111"):
		return BGEU
	default:
		return Unknown
	}
}

func classifyLoad(funct3 bitvec.Vector) Mnemonic {
	switch {
	case eq3(funct3, "000"):
		return LB
	case eq3(funct3, "001"):
		return LH
	case eq3(funct3, "010"):
		return LW
	case eq3(funct3, "100"):
		return LBU
	case eq3(funct3, "101"):
		return LHU
	default:
		return Unknown
	}
}

func classifyStore(funct3 bitvec.Vector) Mnemonic {
	switch {
	case eq3(funct3, "000"):
		return SB
	case eq3(funct3, "001"):
		return SH
	case eq3(funct3, "010"):
		return SW
	default:
		return Unknown
	}
}

func classifyOpImm(funct3, funct7 bitvec.Vector) Mnemonic {
	switch {
	case eq3(funct3, "000"):
		return ADDI
	case eq3(funct3, "010"):
		return SLTI
	case eq3(funct3, "011"):
		return SLTIU
	case eq3(funct3, "100"):
		return XORI
	case eq3(funct3, "110"):
		return ORI
	case eq3(funct3, "111"):
		return ANDI
	case eq3(funct3, "001"):
		return SLLI
	case eq3(funct3, "101"):
		if eq7(funct7, "0100000") {
			return SRAI
		}
		return SRLI
	default:
		return Unknown
	}
}

func classifyOp(funct3, funct7 bitvec.Vector) Mnemonic {
	if eq7(funct7, "0000001") {
		switch {
		case eq3(funct3, "000"):
			return MUL
		case eq3(funct3, "001"):
			return MULH
		case eq3(funct3, "010"):
			return MULHSU
		case eq3(funct3, "011"):
			return MULHU
		case eq3(funct3, "100"):
			return DIV
		case eq3(funct3, "101"):
			return DIVU
		case eq3(funct3, "110"):
			return REM
		case eq3(funct3, "111"):
			return REMU
		}
		return Unknown
	}
	switch {
	case eq3(funct3, "000"):
		if eq7(funct7, "0100000") {
			return SUB
		}
		return ADD
	case eq3(funct3, "001"):
		return SLL
	case eq3(funct3, "010"):
		return SLT
	case eq3(funct3, "011"):
		return SLTU
	case eq3(funct3, "100"):
		return XOR
	case eq3(funct3, "101"):
		if eq7(funct7, "0100000") {
			return SRA
		}
		return SRL
	case eq3(funct3, "110"):
		return OR
	case eq3(funct3, "111"):
		return AND
	default:
		return Unknown
	}
}

func classifyFP(funct7 bitvec.Vector) Mnemonic {
	switch {
	case eq7(funct7, "0000000"):
		return FADD_S
	case eq7(funct7, "0000100"):
		return FSUB_S
	case eq7(funct7, "0001000"):
		return FMUL_S
	default:
		return Unknown
	}
}
