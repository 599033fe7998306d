// Package cpu implements a cycle-counted interpreter for the WDC 65C02
// variant used by the console's CPU, including the Rockwell/WDC CMOS
// extensions (STP, WAI, PHX/PLX/PHY/PLY, STZ, TRB/TSB, BRA, indirect-zp
// addressing, and the indirect-absolute-indexed-X JMP form).
package cpu

import (
	"log"

	"github.com/user-none/lynxmp/savestate"
)

// Interrupt and reset vectors.
const (
	VectorNMI   uint16 = 0xfffa
	VectorReset uint16 = 0xfffc
	VectorIRQ   uint16 = 0xfffe
)

// Memory is the bus interface the CPU reads and writes through. The CPU
// never sees the top-page remapping directly; that is the bus's job.
type Memory interface {
	Peek(addr uint16) byte
	Poke(addr uint16, v byte)
}

// WakeupExtender receives cycle-count adjustments when an RTI re-enters
// sleep, so the sound/timer chip's next scheduled event can be pushed back
// by the time spent servicing the interrupt.
type WakeupExtender interface {
	ExtendWakeup(cycles uint32)
}

// CPU is a single interpreter instance bound to a Memory implementation.
type CPU struct {
	mem    Memory
	wakeup WakeupExtender
	logger *log.Logger

	a, x, y, sp byte
	pc          uint16

	n, v, b, d, i, z, c bool

	opcode      byte
	operand     [2]byte
	operandLen  byte
	mode        addrMode
	pageCrossed bool
	branchExtra byte

	cycles uint32

	irqLine     bool
	nmiLine     bool
	asleep      bool
	savedAsleep bool
	stopped     bool

	irqEntryCycle uint32

	bcdDecode [256]byte // mBCDTable[0]: packed BCD -> binary
	bcdEncode [256]byte // mBCDTable[1]: binary -> packed BCD
}

// New creates a CPU bound to mem. wakeup may be nil if no sound/timer
// coprocessor is attached. logger may be nil to discard diagnostics.
func New(mem Memory, wakeup WakeupExtender, logger *log.Logger) *CPU {
	c := &CPU{mem: mem, wakeup: wakeup, logger: logger}
	for t := 0; t < 256; t++ {
		c.bcdDecode[t] = byte((t>>4)*10 + (t & 0x0f))
		c.bcdEncode[t] = byte((((t % 100) / 10) << 4) | (t % 10))
	}
	return c
}

// Reset clears A/X/Y, sets SP to 0xff, sets I and Z, clears the remaining
// flags, clears pending interrupts and sleep, and fetches PC from the reset
// vector.
func (c *CPU) Reset() {
	c.a, c.x, c.y = 0, 0, 0
	c.sp = 0xff
	c.n, c.v, c.b, c.d, c.c = false, false, false, false, false
	c.i = true
	c.z = true
	c.irqLine = false
	c.nmiLine = false
	c.asleep = false
	c.savedAsleep = false
	c.stopped = false
	c.cycles = 0
	c.irqEntryCycle = 0
	c.pc = c.peekW(VectorReset)
}

// SetPC forces the program counter, used by boot-ROM HLE stubs and tests.
func (c *CPU) SetPC(pc uint16) { c.pc = pc }

// PC returns the current program counter.
func (c *CPU) PC() uint16 { return c.pc }

// A, X, Y, SP return the corresponding register.
func (c *CPU) A() byte  { return c.a }
func (c *CPU) X() byte  { return c.x }
func (c *CPU) Y() byte  { return c.y }
func (c *CPU) SP() byte { return c.sp }

// SetA, SetX, SetY, SetSP set the corresponding register, for test setup
// and debugger-style access.
func (c *CPU) SetA(v byte)  { c.a = v }
func (c *CPU) SetX(v byte)  { c.x = v }
func (c *CPU) SetY(v byte)  { c.y = v }
func (c *CPU) SetSP(v byte) { c.sp = v }

// Cycles returns the CPU's monotonic cycle counter.
func (c *CPU) Cycles() uint32 { return c.cycles }

// Asleep reports whether the CPU is halted by WAI awaiting an interrupt.
func (c *CPU) Asleep() bool { return c.asleep }

// Stopped reports whether the CPU is halted by STP. Only Reset clears it.
func (c *CPU) Stopped() bool { return c.stopped }

// SetIRQ asserts or clears the maskable interrupt line.
func (c *CPU) SetIRQ(v bool) { c.irqLine = v }

// SetNMI asserts the non-maskable interrupt line. No subsystem in this
// core calls this today; it exists for completeness per the data model.
func (c *CPU) SetNMI(v bool) { c.nmiLine = v }

// SetCarry, SetDecimal, SetInterruptDisable set individual flags, used by
// HLE BIOS stubs that synthesize CPU state without executing instructions.
func (c *CPU) SetCarry(v bool)             { c.c = v }
func (c *CPU) SetDecimal(v bool)           { c.d = v }
func (c *CPU) SetInterruptDisable(v bool)  { c.i = v }

// PackedStatus returns the processor status byte. Bit 5 is always set.
func (c *CPU) PackedStatus() byte {
	var ps byte = 0x20
	if c.n {
		ps |= 0x80
	}
	if c.v {
		ps |= 0x40
	}
	if c.b {
		ps |= 0x10
	}
	if c.d {
		ps |= 0x08
	}
	if c.i {
		ps |= 0x04
	}
	if c.z {
		ps |= 0x02
	}
	if c.c {
		ps |= 0x01
	}
	return ps
}

// SetPackedStatus unpacks ps into the individual flags.
func (c *CPU) SetPackedStatus(ps byte) {
	c.n = ps&0x80 != 0
	c.v = ps&0x40 != 0
	c.b = ps&0x10 != 0
	c.d = ps&0x08 != 0
	c.i = ps&0x04 != 0
	c.z = ps&0x02 != 0
	c.c = ps&0x01 != 0
}

// Update executes at most one instruction, first servicing a pending IRQ if
// the I flag is clear. It returns the number of cycles consumed.
func (c *CPU) Update() int {
	var consumed uint32

	if c.stopped {
		return 0
	}

	if c.irqLine && !c.i {
		c.push(byte(c.pc >> 8))
		c.push(byte(c.pc))
		c.push(c.PackedStatus() &^ 0x10)
		c.i = true
		c.d = false
		c.pc = c.peekW(VectorIRQ)
		c.irqEntryCycle = c.cycles
		c.savedAsleep = c.asleep
		c.asleep = false
		c.irqLine = false
	}

	// An asserted IRQ ends WAI even while I masks its dispatch; execution
	// then resumes with the instruction after WAI.
	if c.asleep && c.irqLine {
		c.asleep = false
	}

	if c.asleep {
		return int(consumed)
	}

	c.opcode = c.mem.Peek(c.pc)
	c.pc++

	inst := &table[c.opcode]
	c.mode = inst.mode
	c.operandLen = inst.length - 1
	for k := byte(0); k < c.operandLen; k++ {
		c.operand[k] = c.mem.Peek(c.pc)
		c.pc++
	}

	c.pageCrossed = false
	c.branchExtra = 0

	if inst.illegal {
		c.xIllegal()
	} else {
		inst.fn(c)
	}

	cost := uint32(inst.cycles) + uint32(c.branchExtra)
	if c.pageCrossed {
		cost += uint32(inst.bpCycles)
	}
	c.cycles += cost
	consumed += cost

	return int(consumed)
}

func (c *CPU) xIllegal() {
	if c.logger != nil {
		c.logger.Printf("cpu: illegal opcode %#02x at pc=%#04x", c.opcode, c.pc-1)
	}
}

// push writes v to the stack page and decrements SP.
func (c *CPU) push(v byte) {
	c.mem.Poke(0x0100+uint16(c.sp), v)
	c.sp--
}

// pop increments SP and reads from the stack page.
func (c *CPU) pop() byte {
	c.sp++
	return c.mem.Peek(0x0100 + uint16(c.sp))
}

func (c *CPU) peekW(addr uint16) uint16 {
	lo := c.mem.Peek(addr)
	hi := c.mem.Peek(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) setNZ(v byte) {
	c.z = v == 0
	c.n = v&0x80 != 0
}

// ContextSave implements the "C6502::ContextSave" tagged save-state segment.
func (c *CPU) ContextSave(w *savestate.Writer) {
	w.Tag("C6502::ContextSave")
	w.Field(uint32(c.a))
	w.Field(uint32(c.x))
	w.Field(uint32(c.y))
	w.Field(uint32(c.sp))
	w.Field(uint32(c.PackedStatus()))
	w.Field(uint32(c.pc))
	w.Field(boolToUint32(c.irqLine))
	w.Field(boolToUint32(c.asleep))
	w.Field(boolToUint32(c.stopped))
}

// ContextLoad reads a "C6502::ContextSave" segment written by ContextSave.
func (c *CPU) ContextLoad(r *savestate.Reader) {
	r.Tag("C6502::ContextSave")
	var a, x, y, sp, ps, pc, irq, asleep, stopped uint32
	r.Field(&a)
	r.Field(&x)
	r.Field(&y)
	r.Field(&sp)
	r.Field(&ps)
	r.Field(&pc)
	r.Field(&irq)
	r.Field(&asleep)
	r.Field(&stopped)
	if r.Err() != nil {
		return
	}
	c.a, c.x, c.y, c.sp = byte(a), byte(x), byte(y), byte(sp)
	c.SetPackedStatus(byte(ps))
	c.pc = uint16(pc)
	c.irqLine = irq != 0
	c.asleep = asleep != 0
	c.stopped = stopped != 0
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
