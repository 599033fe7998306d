package cpu

// CPURDWRCycles is the bus memory-access cost, in cycles, charged for
// each of an opcode's k read/write operations. Every table entry below
// bakes in 1 + k*CPURDWRCycles as its base cycle cost.
const CPURDWRCycles = 1

// instruction describes one opcode slot: its addressing mode, encoded
// length, base cycle cost, the extra cycle charged when an indexed
// addressing mode crosses a page boundary, and its operation function.
// illegal opcodes have a nil fn and are logged rather than executed.
type instruction struct {
	mnemonic string
	mode     addrMode
	length   byte
	cycles   byte
	bpCycles byte
	illegal  bool
	fn       func(*CPU)
}

var table [256]instruction

func init() {
	for i := range table {
		table[i] = instruction{mnemonic: "???", length: 1, cycles: 2, illegal: true}
	}

	def := func(op byte, mnem string, mode addrMode, length, cycles, bp byte, fn func(*CPU)) {
		table[op] = instruction{mnemonic: mnem, mode: mode, length: length, cycles: cycles, bpCycles: bp, fn: fn}
	}

	def(0x00, "BRK", modeImplied, 2, 7, 0, (*CPU).opBRK)
	def(0x01, "ORA", modeIndirectX, 2, 6, 0, (*CPU).opORA)
	def(0x04, "TSB", modeZeroPage, 2, 5, 0, (*CPU).opTSB)
	def(0x05, "ORA", modeZeroPage, 2, 3, 0, (*CPU).opORA)
	def(0x06, "ASL", modeZeroPage, 2, 5, 0, (*CPU).opASL)
	def(0x08, "PHP", modeImplied, 1, 3, 0, (*CPU).opPHP)
	def(0x09, "ORA", modeImmediate, 2, 2, 0, (*CPU).opORA)
	def(0x0a, "ASL", modeAccumulator, 1, 2, 0, (*CPU).opASL)
	def(0x0c, "TSB", modeAbsolute, 3, 6, 0, (*CPU).opTSB)
	def(0x0d, "ORA", modeAbsolute, 3, 4, 0, (*CPU).opORA)
	def(0x0e, "ASL", modeAbsolute, 3, 6, 0, (*CPU).opASL)

	def(0x10, "BPL", modeRelative, 2, 2, 0, (*CPU).opBPL)
	def(0x11, "ORA", modeIndirectY, 2, 5, 1, (*CPU).opORA)
	def(0x12, "ORA", modeIndirectZP, 2, 5, 0, (*CPU).opORA)
	def(0x14, "TRB", modeZeroPage, 2, 5, 0, (*CPU).opTRB)
	def(0x15, "ORA", modeZeroPageX, 2, 4, 0, (*CPU).opORA)
	def(0x16, "ASL", modeZeroPageX, 2, 6, 0, (*CPU).opASL)
	def(0x18, "CLC", modeImplied, 1, 2, 0, (*CPU).opCLC)
	def(0x19, "ORA", modeAbsoluteY, 3, 4, 1, (*CPU).opORA)
	def(0x1a, "INC", modeAccumulator, 1, 2, 0, (*CPU).opINC)
	def(0x1c, "TRB", modeAbsolute, 3, 6, 0, (*CPU).opTRB)
	def(0x1d, "ORA", modeAbsoluteX, 3, 4, 1, (*CPU).opORA)
	def(0x1e, "ASL", modeAbsoluteX, 3, 7, 0, (*CPU).opASL)

	def(0x20, "JSR", modeAbsolute, 3, 6, 0, (*CPU).opJSR)
	def(0x21, "AND", modeIndirectX, 2, 6, 0, (*CPU).opAND)
	def(0x24, "BIT", modeZeroPage, 2, 3, 0, (*CPU).opBIT)
	def(0x25, "AND", modeZeroPage, 2, 3, 0, (*CPU).opAND)
	def(0x26, "ROL", modeZeroPage, 2, 5, 0, (*CPU).opROL)
	def(0x28, "PLP", modeImplied, 1, 4, 0, (*CPU).opPLP)
	def(0x29, "AND", modeImmediate, 2, 2, 0, (*CPU).opAND)
	def(0x2a, "ROL", modeAccumulator, 1, 2, 0, (*CPU).opROL)
	def(0x2c, "BIT", modeAbsolute, 3, 4, 0, (*CPU).opBIT)
	def(0x2d, "AND", modeAbsolute, 3, 4, 0, (*CPU).opAND)
	def(0x2e, "ROL", modeAbsolute, 3, 6, 0, (*CPU).opROL)

	def(0x30, "BMI", modeRelative, 2, 2, 0, (*CPU).opBMI)
	def(0x31, "AND", modeIndirectY, 2, 5, 1, (*CPU).opAND)
	def(0x32, "AND", modeIndirectZP, 2, 5, 0, (*CPU).opAND)
	def(0x34, "BIT", modeZeroPageX, 2, 4, 0, (*CPU).opBIT)
	def(0x35, "AND", modeZeroPageX, 2, 4, 0, (*CPU).opAND)
	def(0x36, "ROL", modeZeroPageX, 2, 6, 0, (*CPU).opROL)
	def(0x38, "SEC", modeImplied, 1, 2, 0, (*CPU).opSEC)
	def(0x39, "AND", modeAbsoluteY, 3, 4, 1, (*CPU).opAND)
	def(0x3a, "DEC", modeAccumulator, 1, 2, 0, (*CPU).opDEC)
	def(0x3c, "BIT", modeAbsoluteX, 3, 4, 1, (*CPU).opBIT)
	def(0x3d, "AND", modeAbsoluteX, 3, 4, 1, (*CPU).opAND)
	def(0x3e, "ROL", modeAbsoluteX, 3, 7, 0, (*CPU).opROL)

	def(0x40, "RTI", modeImplied, 1, 6, 0, (*CPU).opRTI)
	def(0x41, "EOR", modeIndirectX, 2, 6, 0, (*CPU).opEOR)
	def(0x45, "EOR", modeZeroPage, 2, 3, 0, (*CPU).opEOR)
	def(0x46, "LSR", modeZeroPage, 2, 5, 0, (*CPU).opLSR)
	def(0x48, "PHA", modeImplied, 1, 3, 0, (*CPU).opPHA)
	def(0x49, "EOR", modeImmediate, 2, 2, 0, (*CPU).opEOR)
	def(0x4a, "LSR", modeAccumulator, 1, 2, 0, (*CPU).opLSR)
	def(0x4c, "JMP", modeAbsolute, 3, 3, 0, (*CPU).opJMP)
	def(0x4d, "EOR", modeAbsolute, 3, 4, 0, (*CPU).opEOR)
	def(0x4e, "LSR", modeAbsolute, 3, 6, 0, (*CPU).opLSR)

	def(0x50, "BVC", modeRelative, 2, 2, 0, (*CPU).opBVC)
	def(0x51, "EOR", modeIndirectY, 2, 5, 1, (*CPU).opEOR)
	def(0x52, "EOR", modeIndirectZP, 2, 5, 0, (*CPU).opEOR)
	def(0x55, "EOR", modeZeroPageX, 2, 4, 0, (*CPU).opEOR)
	def(0x56, "LSR", modeZeroPageX, 2, 6, 0, (*CPU).opLSR)
	def(0x58, "CLI", modeImplied, 1, 2, 0, (*CPU).opCLI)
	def(0x59, "EOR", modeAbsoluteY, 3, 4, 1, (*CPU).opEOR)
	def(0x5a, "PHY", modeImplied, 1, 3, 0, (*CPU).opPHY)
	def(0x5d, "EOR", modeAbsoluteX, 3, 4, 1, (*CPU).opEOR)
	def(0x5e, "LSR", modeAbsoluteX, 3, 7, 0, (*CPU).opLSR)

	def(0x60, "RTS", modeImplied, 1, 6, 0, (*CPU).opRTS)
	def(0x61, "ADC", modeIndirectX, 2, 6, 0, (*CPU).opADC)
	def(0x64, "STZ", modeZeroPage, 2, 3, 0, (*CPU).opSTZ)
	def(0x65, "ADC", modeZeroPage, 2, 3, 0, (*CPU).opADC)
	def(0x66, "ROR", modeZeroPage, 2, 5, 0, (*CPU).opROR)
	def(0x68, "PLA", modeImplied, 1, 4, 0, (*CPU).opPLA)
	def(0x69, "ADC", modeImmediate, 2, 2, 0, (*CPU).opADC)
	def(0x6a, "ROR", modeAccumulator, 1, 2, 0, (*CPU).opROR)
	def(0x6c, "JMP", modeIndirect, 3, 6, 0, (*CPU).opJMP)
	def(0x6d, "ADC", modeAbsolute, 3, 4, 0, (*CPU).opADC)
	def(0x6e, "ROR", modeAbsolute, 3, 6, 0, (*CPU).opROR)

	def(0x70, "BVS", modeRelative, 2, 2, 0, (*CPU).opBVS)
	def(0x71, "ADC", modeIndirectY, 2, 5, 1, (*CPU).opADC)
	def(0x72, "ADC", modeIndirectZP, 2, 5, 0, (*CPU).opADC)
	def(0x74, "STZ", modeZeroPageX, 2, 4, 0, (*CPU).opSTZ)
	def(0x75, "ADC", modeZeroPageX, 2, 4, 0, (*CPU).opADC)
	def(0x76, "ROR", modeZeroPageX, 2, 6, 0, (*CPU).opROR)
	def(0x78, "SEI", modeImplied, 1, 2, 0, (*CPU).opSEI)
	def(0x79, "ADC", modeAbsoluteY, 3, 4, 1, (*CPU).opADC)
	def(0x7a, "PLY", modeImplied, 1, 4, 0, (*CPU).opPLY)
	def(0x7c, "JMP", modeIndirectAbsoluteX, 3, 6, 0, (*CPU).opJMP)
	def(0x7d, "ADC", modeAbsoluteX, 3, 4, 1, (*CPU).opADC)
	def(0x7e, "ROR", modeAbsoluteX, 3, 7, 0, (*CPU).opROR)

	def(0x80, "BRA", modeRelative, 2, 3, 0, (*CPU).opBRA)
	def(0x81, "STA", modeIndirectX, 2, 6, 0, (*CPU).opSTA)
	def(0x84, "STY", modeZeroPage, 2, 3, 0, (*CPU).opSTY)
	def(0x85, "STA", modeZeroPage, 2, 3, 0, (*CPU).opSTA)
	def(0x86, "STX", modeZeroPage, 2, 3, 0, (*CPU).opSTX)
	def(0x88, "DEY", modeImplied, 1, 2, 0, (*CPU).opDEY)
	def(0x89, "BIT", modeImmediate, 2, 2, 0, (*CPU).opBITImm)
	def(0x8a, "TXA", modeImplied, 1, 2, 0, (*CPU).opTXA)
	def(0x8c, "STY", modeAbsolute, 3, 4, 0, (*CPU).opSTY)
	def(0x8d, "STA", modeAbsolute, 3, 4, 0, (*CPU).opSTA)
	def(0x8e, "STX", modeAbsolute, 3, 4, 0, (*CPU).opSTX)

	def(0x90, "BCC", modeRelative, 2, 2, 0, (*CPU).opBCC)
	def(0x91, "STA", modeIndirectY, 2, 6, 0, (*CPU).opSTA)
	def(0x92, "STA", modeIndirectZP, 2, 5, 0, (*CPU).opSTA)
	def(0x94, "STY", modeZeroPageX, 2, 4, 0, (*CPU).opSTY)
	def(0x95, "STA", modeZeroPageX, 2, 4, 0, (*CPU).opSTA)
	def(0x96, "STX", modeZeroPageY, 2, 4, 0, (*CPU).opSTX)
	def(0x98, "TYA", modeImplied, 1, 2, 0, (*CPU).opTYA)
	def(0x99, "STA", modeAbsoluteY, 3, 5, 0, (*CPU).opSTA)
	def(0x9a, "TXS", modeImplied, 1, 2, 0, (*CPU).opTXS)
	def(0x9c, "STZ", modeAbsolute, 3, 4, 0, (*CPU).opSTZ)
	def(0x9d, "STA", modeAbsoluteX, 3, 5, 0, (*CPU).opSTA)
	def(0x9e, "STZ", modeAbsoluteX, 3, 5, 0, (*CPU).opSTZ)

	def(0xa0, "LDY", modeImmediate, 2, 2, 0, (*CPU).opLDY)
	def(0xa1, "LDA", modeIndirectX, 2, 6, 0, (*CPU).opLDA)
	def(0xa2, "LDX", modeImmediate, 2, 2, 0, (*CPU).opLDX)
	def(0xa4, "LDY", modeZeroPage, 2, 3, 0, (*CPU).opLDY)
	def(0xa5, "LDA", modeZeroPage, 2, 3, 0, (*CPU).opLDA)
	def(0xa6, "LDX", modeZeroPage, 2, 3, 0, (*CPU).opLDX)
	def(0xa8, "TAY", modeImplied, 1, 2, 0, (*CPU).opTAY)
	def(0xa9, "LDA", modeImmediate, 2, 2, 0, (*CPU).opLDA)
	def(0xaa, "TAX", modeImplied, 1, 2, 0, (*CPU).opTAX)
	def(0xac, "LDY", modeAbsolute, 3, 4, 0, (*CPU).opLDY)
	def(0xad, "LDA", modeAbsolute, 3, 4, 0, (*CPU).opLDA)
	def(0xae, "LDX", modeAbsolute, 3, 4, 0, (*CPU).opLDX)

	def(0xb0, "BCS", modeRelative, 2, 2, 0, (*CPU).opBCS)
	def(0xb1, "LDA", modeIndirectY, 2, 5, 1, (*CPU).opLDA)
	def(0xb2, "LDA", modeIndirectZP, 2, 5, 0, (*CPU).opLDA)
	def(0xb4, "LDY", modeZeroPageX, 2, 4, 0, (*CPU).opLDY)
	def(0xb5, "LDA", modeZeroPageX, 2, 4, 0, (*CPU).opLDA)
	def(0xb6, "LDX", modeZeroPageY, 2, 4, 0, (*CPU).opLDX)
	def(0xb8, "CLV", modeImplied, 1, 2, 0, (*CPU).opCLV)
	def(0xb9, "LDA", modeAbsoluteY, 3, 4, 1, (*CPU).opLDA)
	def(0xba, "TSX", modeImplied, 1, 2, 0, (*CPU).opTSX)
	def(0xbc, "LDY", modeAbsoluteX, 3, 4, 1, (*CPU).opLDY)
	def(0xbd, "LDA", modeAbsoluteX, 3, 4, 1, (*CPU).opLDA)
	def(0xbe, "LDX", modeAbsoluteY, 3, 4, 1, (*CPU).opLDX)

	def(0xc0, "CPY", modeImmediate, 2, 2, 0, (*CPU).opCPY)
	def(0xc1, "CMP", modeIndirectX, 2, 6, 0, (*CPU).opCMP)
	def(0xc4, "CPY", modeZeroPage, 2, 3, 0, (*CPU).opCPY)
	def(0xc5, "CMP", modeZeroPage, 2, 3, 0, (*CPU).opCMP)
	def(0xc6, "DEC", modeZeroPage, 2, 5, 0, (*CPU).opDEC)
	def(0xc8, "INY", modeImplied, 1, 2, 0, (*CPU).opINY)
	def(0xc9, "CMP", modeImmediate, 2, 2, 0, (*CPU).opCMP)
	def(0xca, "DEX", modeImplied, 1, 2, 0, (*CPU).opDEX)
	def(0xcb, "WAI", modeImplied, 1, 2, 0, (*CPU).opWAI)
	def(0xcc, "CPY", modeAbsolute, 3, 4, 0, (*CPU).opCPY)
	def(0xcd, "CMP", modeAbsolute, 3, 4, 0, (*CPU).opCMP)
	def(0xce, "DEC", modeAbsolute, 3, 6, 0, (*CPU).opDEC)

	def(0xd0, "BNE", modeRelative, 2, 2, 0, (*CPU).opBNE)
	def(0xd1, "CMP", modeIndirectY, 2, 5, 1, (*CPU).opCMP)
	def(0xd2, "CMP", modeIndirectZP, 2, 5, 0, (*CPU).opCMP)
	def(0xd5, "CMP", modeZeroPageX, 2, 4, 0, (*CPU).opCMP)
	def(0xd6, "DEC", modeZeroPageX, 2, 6, 0, (*CPU).opDEC)
	def(0xd8, "CLD", modeImplied, 1, 2, 0, (*CPU).opCLD)
	def(0xd9, "CMP", modeAbsoluteY, 3, 4, 1, (*CPU).opCMP)
	def(0xda, "PHX", modeImplied, 1, 3, 0, (*CPU).opPHX)
	def(0xdb, "STP", modeImplied, 1, 2, 0, (*CPU).opSTP)
	def(0xdd, "CMP", modeAbsoluteX, 3, 4, 1, (*CPU).opCMP)
	def(0xde, "DEC", modeAbsoluteX, 3, 7, 0, (*CPU).opDEC)

	def(0xe0, "CPX", modeImmediate, 2, 2, 0, (*CPU).opCPX)
	def(0xe1, "SBC", modeIndirectX, 2, 6, 0, (*CPU).opSBC)
	def(0xe4, "CPX", modeZeroPage, 2, 3, 0, (*CPU).opCPX)
	def(0xe5, "SBC", modeZeroPage, 2, 3, 0, (*CPU).opSBC)
	def(0xe6, "INC", modeZeroPage, 2, 5, 0, (*CPU).opINC)
	def(0xe8, "INX", modeImplied, 1, 2, 0, (*CPU).opINX)
	def(0xe9, "SBC", modeImmediate, 2, 2, 0, (*CPU).opSBC)
	def(0xea, "NOP", modeImplied, 1, 2, 0, (*CPU).opNOP)
	def(0xec, "CPX", modeAbsolute, 3, 4, 0, (*CPU).opCPX)
	def(0xed, "SBC", modeAbsolute, 3, 4, 0, (*CPU).opSBC)
	def(0xee, "INC", modeAbsolute, 3, 6, 0, (*CPU).opINC)

	def(0xf0, "BEQ", modeRelative, 2, 2, 0, (*CPU).opBEQ)
	def(0xf1, "SBC", modeIndirectY, 2, 5, 1, (*CPU).opSBC)
	def(0xf2, "SBC", modeIndirectZP, 2, 5, 0, (*CPU).opSBC)
	def(0xf5, "SBC", modeZeroPageX, 2, 4, 0, (*CPU).opSBC)
	def(0xf6, "INC", modeZeroPageX, 2, 6, 0, (*CPU).opINC)
	def(0xf8, "SED", modeImplied, 1, 2, 0, (*CPU).opSED)
	def(0xf9, "SBC", modeAbsoluteY, 3, 4, 1, (*CPU).opSBC)
	def(0xfa, "PLX", modeImplied, 1, 4, 0, (*CPU).opPLX)
	def(0xfd, "SBC", modeAbsoluteX, 3, 4, 1, (*CPU).opSBC)
	def(0xfe, "INC", modeAbsoluteX, 3, 7, 0, (*CPU).opINC)

	// Illegal opcodes still consume bus cycles on real silicon, and the cost
	// varies per opcode; the reference never advances past the opcode byte
	// itself for an illegal (no addressing-mode fetch runs), so length stays
	// 1 for all of them here and only the tabulated cost differs.
	illegal := func(op, cycles byte) {
		table[op] = instruction{mnemonic: "???", length: 1, cycles: cycles, illegal: true}
	}
	for _, op := range []byte{0x02, 0x03, 0x07, 0x0b, 0x13, 0x1b, 0x22, 0x23, 0x2b,
		0x33, 0x3b, 0x42, 0x43, 0x4b, 0x53, 0x5b, 0x62, 0x63, 0x6b, 0x73, 0x7b,
		0x82, 0x83, 0x8b, 0x93, 0x9b, 0xa3, 0xab, 0xb3, 0xbb, 0xc2, 0xc3,
		0xd3, 0xe2, 0xe3, 0xeb, 0xf3, 0xfb} {
		illegal(op, 2)
	}
	illegal(0x44, 3)
	illegal(0x54, 4)
	illegal(0xd4, 4)
	illegal(0xf4, 4)
	illegal(0x5c, 8)
	illegal(0xdc, 4)
	illegal(0xfc, 4)
	illegal(0xbf, 4)
	for _, op := range []byte{0x0f, 0x17, 0x1f, 0x27, 0x2f, 0x37, 0x3f, 0x47, 0x4f,
		0x57, 0x5f, 0x67, 0x6f, 0x77, 0x7f, 0x87, 0x8f, 0x97, 0x9f, 0xa7, 0xaf,
		0xb7, 0xc7, 0xcf, 0xd7, 0xdf, 0xe7, 0xef, 0xf7, 0xff} {
		illegal(op, 5)
	}
}

func (c *CPU) opADC() {
	v := c.load()
	carryIn := byte(0)
	if c.c {
		carryIn = 1
	}
	binSum := int(c.a) + int(v) + int(carryIn)
	binResult := byte(binSum)
	// V is the binary-sum overflow in both modes; the 65C02 leaves it
	// decimal-mode-undefined like its NMOS ancestor, unlike N and Z.
	c.v = (c.a^v)&0x80 == 0 && (c.a^binResult)&0x80 != 0

	if c.d {
		lo := int(c.a&0x0f) + int(v&0x0f) + int(carryIn)
		hi := int(c.a>>4) + int(v>>4)
		if lo > 9 {
			hi++
			lo -= 10
		}
		if hi > 9 {
			hi -= 10
			c.c = true
		} else {
			c.c = false
		}
		c.a = byte((hi << 4) | (lo & 0x0f))
	} else {
		c.c = binSum > 0xff
		c.a = binResult
	}
	c.setNZ(c.a)
}

func (c *CPU) opSBC() {
	v := c.load()
	borrowIn := byte(0)
	if !c.c {
		borrowIn = 1
	}
	binDiff := int(c.a) - int(v) - int(borrowIn)
	binResult := byte(binDiff)
	c.v = (c.a^v)&0x80 != 0 && (c.a^binResult)&0x80 != 0
	c.c = binDiff >= 0

	if c.d {
		lo := int(c.a&0x0f) - int(v&0x0f) - int(borrowIn)
		hi := int(c.a>>4) - int(v>>4)
		if lo < 0 {
			lo += 10
			hi--
		}
		if hi < 0 {
			hi += 10
		}
		c.a = byte((hi << 4) | (lo & 0x0f))
	} else {
		c.a = binResult
	}
	c.setNZ(c.a)
}

func (c *CPU) opAND() { c.a &= c.load(); c.setNZ(c.a) }
func (c *CPU) opORA() { c.a |= c.load(); c.setNZ(c.a) }
func (c *CPU) opEOR() { c.a ^= c.load(); c.setNZ(c.a) }

func (c *CPU) opASL() {
	v := c.load()
	c.c = v&0x80 != 0
	v <<= 1
	c.setNZ(v)
	c.store(v)
}

func (c *CPU) opLSR() {
	v := c.load()
	c.c = v&0x01 != 0
	v >>= 1
	c.setNZ(v)
	c.store(v)
}

func (c *CPU) opROL() {
	v := c.load()
	carryOut := v&0x80 != 0
	v <<= 1
	if c.c {
		v |= 0x01
	}
	c.c = carryOut
	c.setNZ(v)
	c.store(v)
}

func (c *CPU) opROR() {
	v := c.load()
	carryOut := v&0x01 != 0
	v >>= 1
	if c.c {
		v |= 0x80
	}
	c.c = carryOut
	c.setNZ(v)
	c.store(v)
}

func (c *CPU) bitTest(v byte) {
	c.z = c.a&v == 0
	c.n = v&0x80 != 0
	c.v = v&0x40 != 0
}

func (c *CPU) opBIT() { c.bitTest(c.load()) }

// opBITImm is the 65C02 BIT #imm form: it updates Z only, leaving N and V
// untouched since there is no memory operand to read them from.
func (c *CPU) opBITImm() {
	c.z = c.a&c.load() == 0
}

func (c *CPU) opTRB() {
	v := c.load()
	c.z = c.a&v == 0
	c.store(v &^ c.a)
}

func (c *CPU) opTSB() {
	v := c.load()
	c.z = c.a&v == 0
	c.store(v | c.a)
}

func (c *CPU) compare(reg byte) {
	v := c.load()
	r := reg - v
	c.c = reg >= v
	c.setNZ(r)
}

func (c *CPU) opCMP() { c.compare(c.a) }
func (c *CPU) opCPX() { c.compare(c.x) }
func (c *CPU) opCPY() { c.compare(c.y) }

func (c *CPU) opDEC() { v := c.load() - 1; c.setNZ(v); c.store(v) }
func (c *CPU) opINC() { v := c.load() + 1; c.setNZ(v); c.store(v) }
func (c *CPU) opDEX() { c.x--; c.setNZ(c.x) }
func (c *CPU) opDEY() { c.y--; c.setNZ(c.y) }
func (c *CPU) opINX() { c.x++; c.setNZ(c.x) }
func (c *CPU) opINY() { c.y++; c.setNZ(c.y) }

func (c *CPU) opLDA() { c.a = c.load(); c.setNZ(c.a) }
func (c *CPU) opLDX() { c.x = c.load(); c.setNZ(c.x) }
func (c *CPU) opLDY() { c.y = c.load(); c.setNZ(c.y) }
func (c *CPU) opSTA() { c.store(c.a) }
func (c *CPU) opSTX() { c.store(c.x) }
func (c *CPU) opSTY() { c.store(c.y) }
func (c *CPU) opSTZ() { c.store(0) }

func (c *CPU) opTAX() { c.x = c.a; c.setNZ(c.x) }
func (c *CPU) opTAY() { c.y = c.a; c.setNZ(c.y) }
func (c *CPU) opTXA() { c.a = c.x; c.setNZ(c.a) }
func (c *CPU) opTYA() { c.a = c.y; c.setNZ(c.a) }
func (c *CPU) opTSX() { c.x = c.sp; c.setNZ(c.x) }
func (c *CPU) opTXS() { c.sp = c.x }

func (c *CPU) opPHA() { c.push(c.a) }
func (c *CPU) opPHX() { c.push(c.x) }
func (c *CPU) opPHY() { c.push(c.y) }
func (c *CPU) opPHP() { c.push(c.PackedStatus() | 0x10) }
func (c *CPU) opPLA() { c.a = c.pop(); c.setNZ(c.a) }
func (c *CPU) opPLX() { c.x = c.pop(); c.setNZ(c.x) }
func (c *CPU) opPLY() { c.y = c.pop(); c.setNZ(c.y) }
func (c *CPU) opPLP() { c.SetPackedStatus(c.pop()) }

func (c *CPU) opCLC() { c.c = false }
func (c *CPU) opSEC() { c.c = true }
func (c *CPU) opCLD() { c.d = false }
func (c *CPU) opSED() { c.d = true }
func (c *CPU) opCLI() { c.i = false }
func (c *CPU) opSEI() { c.i = true }
func (c *CPU) opCLV() { c.v = false }
func (c *CPU) opNOP() {}

func (c *CPU) opBPL() { c.branch(!c.n) }
func (c *CPU) opBMI() { c.branch(c.n) }
func (c *CPU) opBVC() { c.branch(!c.v) }
func (c *CPU) opBVS() { c.branch(c.v) }
func (c *CPU) opBCC() { c.branch(!c.c) }
func (c *CPU) opBCS() { c.branch(c.c) }
func (c *CPU) opBNE() { c.branch(!c.z) }
func (c *CPU) opBEQ() { c.branch(c.z) }
func (c *CPU) opBRA() { c.branch(true) }

func (c *CPU) opJMP() { c.pc = c.addr() }

func (c *CPU) opJSR() {
	ret := c.pc - 1
	c.push(byte(ret >> 8))
	c.push(byte(ret))
	c.pc = c.operandWord()
}

func (c *CPU) opRTS() {
	lo := c.pop()
	hi := c.pop()
	c.pc = (uint16(hi)<<8 | uint16(lo)) + 1
}

func (c *CPU) opBRK() {
	c.push(byte(c.pc >> 8))
	c.push(byte(c.pc))
	c.push(c.PackedStatus() | 0x10)
	c.i = true
	c.d = false
	c.pc = c.peekW(VectorIRQ)
}

func (c *CPU) opRTI() {
	c.SetPackedStatus(c.pop())
	lo := c.pop()
	hi := c.pop()
	c.pc = uint16(hi)<<8 | uint16(lo)

	// A clear B in the popped status marks a return from a hardware IRQ
	// rather than a BRK; only then is the sleep state saved at IRQ entry
	// restored.
	if !c.b {
		if c.wakeup != nil && c.savedAsleep {
			c.wakeup.ExtendWakeup(c.cycles - c.irqEntryCycle)
		}
		c.asleep = c.savedAsleep
		c.savedAsleep = false
	}
}

// opWAI halts instruction dispatch until IRQ is asserted; Update
// re-checks c.asleep on every call and skips fetch/decode while set. NMI
// is reserved in the data model but asserting it is a dispatcher no-op
// per spec, so it cannot wake a WAI'd CPU today.
func (c *CPU) opWAI() { c.asleep = true }

// opSTP halts the CPU permanently; only a Reset clears it.
func (c *CPU) opSTP() { c.stopped = true }
