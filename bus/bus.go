// Package bus implements the 64 KiB flat address space shared by the CPU
// and the coprocessors: a constant RAM region below 0xFC00, and a 1 KiB
// top page above it whose routing (RAM, Suzy registers, Mikey registers,
// boot ROM) is switched at runtime by a mode register at 0xFFF9.
package bus

import "github.com/user-none/lynxmp/savestate"

const (
	topPageStart = 0xfc00
	suzyStart    = 0xfc00
	suzyEnd      = 0xfd00
	mikeyStart   = 0xfd00
	mikeyEnd     = 0xfe00
	romStart     = 0xfe00
	modeReg      = 0xfff9

	romSize = 0x10000 - romStart
)

// TopPageMode identifies one of the three recognized top-page routing
// configurations.
type TopPageMode byte

const (
	TopPageRAM TopPageMode = iota
	TopPageDefault
	TopPageROMEnabled
)

// RegisterFile is the small interface a coprocessor exposes for
// address-decoded register access. offset is relative to the start of the
// coprocessor's 256-byte window.
type RegisterFile interface {
	PeekReg(offset uint16) byte
	PokeReg(offset uint16, v byte)
}

type nullRegisters struct{}

func (nullRegisters) PeekReg(uint16) byte     { return 0xff }
func (nullRegisters) PokeReg(uint16, byte) {}

// Bus owns RAM, the boot ROM image, and the top-page mode register, and
// dispatches every access to exactly one of them.
type Bus struct {
	ram  [0x10000]byte
	rom  [romSize]byte
	suzy RegisterFile
	mikey RegisterFile
	mode    TopPageMode
	modeRaw byte
}

// New creates a Bus with no coprocessors attached; attach them with
// AttachSuzy/AttachMikey before use, and load a boot ROM image with
// LoadROM.
func New() *Bus {
	return &Bus{suzy: nullRegisters{}, mikey: nullRegisters{}}
}

// AttachSuzy/AttachMikey wire the graphics/sound coprocessor register
// windows. Passing nil detaches, falling back to an open-bus stub.
func (b *Bus) AttachSuzy(r RegisterFile) {
	if r == nil {
		r = nullRegisters{}
	}
	b.suzy = r
}

func (b *Bus) AttachMikey(r RegisterFile) {
	if r == nil {
		r = nullRegisters{}
	}
	b.mikey = r
}

// LoadROM copies image into the boot ROM window, truncating or
// zero-padding to romSize as needed.
func (b *Bus) LoadROM(image []byte) {
	n := copy(b.rom[:], image)
	for i := n; i < len(b.rom); i++ {
		b.rom[i] = 0
	}
}

// Reset forces the top-page mode to its default configuration.
func (b *Bus) Reset() {
	b.modeRaw = 0x02
	b.mode = TopPageDefault
}

// Mode returns the current top-page routing configuration.
func (b *Bus) Mode() TopPageMode { return b.mode }

// PeekRAM and PokeRAM always touch raw RAM regardless of the top-page
// mode or address, matching coprocessor DMA access which bypasses the CPU
// handler table entirely.
func (b *Bus) PeekRAM(addr uint16) byte    { return b.ram[addr] }
func (b *Bus) PokeRAM(addr uint16, v byte) { b.ram[addr] = v }

// PeekCPU and PokeCPU are the CPU-facing accessors: below 0xFC00 they hit
// RAM directly, and at or above it they dispatch through the top-page
// handler table.
func (b *Bus) PeekCPU(addr uint16) byte {
	if addr < topPageStart {
		return b.ram[addr]
	}
	return b.dispatchPeek(addr)
}

func (b *Bus) PokeCPU(addr uint16, v byte) {
	if addr < topPageStart {
		b.ram[addr] = v
		return
	}
	b.dispatchPoke(addr, v)
}

// PeekWord and PokeWord perform the two-byte, low-byte-first word access
// defined for the bus: both bytes go through the same handler lookup, so
// a word that straddles a region boundary is legal.
func (b *Bus) PeekWord(addr uint16) uint16 {
	lo := b.PeekCPU(addr)
	hi := b.PeekCPU(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (b *Bus) PokeWord(addr uint16, v uint16) {
	b.PokeCPU(addr, byte(v))
	b.PokeCPU(addr+1, byte(v>>8))
}

func (b *Bus) dispatchPeek(addr uint16) byte {
	if addr == modeReg {
		return b.modeRaw
	}
	if b.mode == TopPageRAM {
		return b.ram[addr]
	}
	switch {
	case addr < suzyEnd:
		return b.suzy.PeekReg(addr - suzyStart)
	case addr < mikeyEnd:
		return b.mikey.PeekReg(addr - mikeyStart)
	default:
		return b.rom[addr-romStart]
	}
}

func (b *Bus) dispatchPoke(addr uint16, v byte) {
	if addr == modeReg {
		b.modeRaw = v
		b.setMode(v)
		return
	}
	if b.mode == TopPageRAM {
		b.ram[addr] = v
		return
	}
	switch {
	case addr < suzyEnd:
		b.suzy.PokeReg(addr-suzyStart, v)
	case addr < mikeyEnd:
		b.mikey.PokeReg(addr-mikeyStart, v)
	default:
		// The boot ROM window and the vector region above it are
		// read-only; writes while mapped are dropped, matching a ROM.
	}
}

// setMode interprets the byte written to 0xFFF9: zero selects all-RAM,
// an odd value selects ROM-enabled, any other nonzero value selects the
// default configuration. Default and ROM-enabled route identically (Suzy,
// Mikey, then the boot ROM); all-RAM differs in that RAM backs the whole
// page apart from the mode register itself.
func (b *Bus) setMode(v byte) {
	switch {
	case v == 0:
		b.mode = TopPageRAM
	case v&0x01 != 0:
		b.mode = TopPageROMEnabled
	default:
		b.mode = TopPageDefault
	}
}

// ContextSave implements the "CRom::ContextSave" tagged save-state
// segment: RAM contents and the top-page mode register.
func (b *Bus) ContextSave(w *savestate.Writer) {
	w.Tag("CRom::ContextSave")
	w.Field(uint32(b.modeRaw))
	w.Bytes(b.ram[:])
}

// ContextLoad reads a "CRom::ContextSave" segment written by ContextSave.
// Fields are read into locals first so a truncated or corrupt stream
// leaves the live RAM image untouched rather than partially clobbered.
func (b *Bus) ContextLoad(r *savestate.Reader) {
	r.Tag("CRom::ContextSave")
	var modeRaw uint32
	var ram [0x10000]byte
	r.Field(&modeRaw)
	r.Bytes(ram[:])
	if r.Err() != nil {
		return
	}
	b.modeRaw = byte(modeRaw)
	b.ram = ram
	b.setMode(b.modeRaw)
}
