// Package console binds one CPU, one bus, and a console's coprocessor
// handles into a single emulated Lynx instance, advancing it one tick at
// a time and exposing the save-state, button, audio, and link surfaces
// the scheduler drives.
package console

import (
	"fmt"
	"log"

	"github.com/user-none/lynxmp/bus"
	"github.com/user-none/lynxmp/cpu"
	"github.com/user-none/lynxmp/savestate"
)

// Button bits, matching the Lynx's physical button set.
const (
	ButtonUp uint32 = 1 << iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonOpt1
	ButtonOpt2
	ButtonPause
	ButtonRestart
	ButtonFlip
)

// audioRingSamples is a 1-second capacity at 48 kHz mono.
const audioRingSamples = 48000

const bootROMSize = 512

// homeHeaderSize is the 10-byte BS93 homebrew header.
const homeHeaderSize = 10

// Cartridge is the opaque cartridge handle the scheduler supplies; bank
// switching and commercial LNX decoding are external collaborators, so
// the core only ever reads the raw image bytes.
type Cartridge interface {
	Bytes() []byte
}

// GraphicsCoprocessor is the console's video/sprite engine. Registers in
// [0xFC00, 0xFD00) are routed to it. Update advances it to cycle and
// returns the next cycle at which it needs to run again.
type GraphicsCoprocessor interface {
	bus.RegisterFile
	Update(cycle uint32) (nextEventCycle uint32)
	ContextSave(w *savestate.Writer)
	ContextLoad(r *savestate.Reader)
}

// SoundCoprocessor is the console's sound/timer chip, the sole source of
// the IRQ line. Registers in [0xFD00, 0xFE00) are routed to it.
type SoundCoprocessor interface {
	bus.RegisterFile
	cpu.WakeupExtender
	Update(cycle uint32) (nextEventCycle uint32, irq bool)
	// FetchSamples drains and returns any audio produced since the last
	// call; the console copies these into its own ring.
	FetchSamples() []int16
	// FetchOutboundBytes drains and returns any bytes its UART has
	// shifted out onto the ComLynx wire since the last call; the console
	// hands each one to its byteOut callback for the scheduler to
	// broadcast to every other linked console.
	FetchOutboundBytes() []byte
	ContextSave(w *savestate.Writer)
	ContextLoad(r *savestate.Reader)
}

// EEPROM is the console's persistent storage handle, keyed by console
// identifier and never shared across consoles.
type EEPROM interface {
	ContextSave(w *savestate.Writer)
	ContextLoad(r *savestate.Reader)
}

// Console is one emulated Lynx: RAM, boot ROM, a CPU, coprocessor
// handles, and the bookkeeping the scheduler needs to tile its output
// and mix its audio.
type Console struct {
	id int

	cpu *cpu.CPU
	bus *bus.Bus

	cart   Cartridge
	bootROM [bootROMSize]byte
	gfx    GraphicsCoprocessor
	snd    SoundCoprocessor
	eeprom EEPROM

	nextEventCycle      uint32
	cpuWakeupCycle      uint32
	irqEntryCycle       uint32
	lastFrameCycleCount uint32

	skipFrame bool
	buttons   uint32

	audio      [audioRingSamples]int16
	audioWrite int

	cableConnected bool
	byteOut        func(b byte)

	logger *log.Logger
}

type busMemory struct{ b *bus.Bus }

func (m busMemory) Peek(addr uint16) byte    { return m.b.PeekCPU(addr) }
func (m busMemory) Poke(addr uint16, v byte) { m.b.PokeCPU(addr, v) }

// New creates a console with the given identifier in [0,15], wiring its
// CPU to its own bus and coprocessor handles. bootROM must be exactly
// 512 bytes; a shorter or longer image is truncated or zero-padded.
func New(id int, cart Cartridge, bootROM []byte, gfx GraphicsCoprocessor, snd SoundCoprocessor, eeprom EEPROM, logger *log.Logger) *Console {
	c := &Console{
		id:     id,
		cart:   cart,
		gfx:    gfx,
		snd:    snd,
		eeprom: eeprom,
		logger: logger,
	}
	copy(c.bootROM[:], bootROM)

	b := bus.New()
	b.LoadROM(c.bootROM[:])
	b.AttachSuzy(gfx)
	b.AttachMikey(snd)
	c.bus = b
	c.cpu = cpu.New(busMemory{b}, snd, logger)
	return c
}

// ID returns the console's scheduler-assigned identifier.
func (c *Console) ID() int { return c.id }

// CPU and Bus expose the underlying components for tests and debugger
// tooling; the scheduler itself only calls the methods below.
func (c *Console) CPU() *cpu.CPU { return c.cpu }
func (c *Console) Bus() *bus.Bus { return c.bus }

// Reset reinitializes RAM from the cartridge header, resets the bus and
// CPU, and clears interrupt lines and scheduling bookkeeping.
func (c *Console) Reset() {
	c.bus.Reset()
	c.cpu.Reset()
	c.loadCartridge()
	c.nextEventCycle = 0
	c.cpuWakeupCycle = 0
	c.irqEntryCycle = 0
	c.lastFrameCycleCount = 0
	c.skipFrame = false
	c.audioWrite = 0
}

// loadCartridge implements the BS93 homebrew header convention: a
// 10-byte header with magic "BS93", a big-endian load address, and a
// big-endian size, followed by the payload.
func (c *Console) loadCartridge() {
	var data []byte
	if c.cart != nil {
		data = c.cart.Bytes()
	}

	if len(data) < homeHeaderSize {
		for addr := 0; addr < 0x10000; addr++ {
			c.bus.PokeRAM(uint16(addr), 0)
		}
		return
	}

	if string(data[0:4]) != "BS93" {
		if c.logger != nil {
			c.logger.Printf("console %d: invalid cart header (expected BS93 magic)", c.id)
		}
	}

	loadAddress := int(data[4])<<8 | int(data[5])
	size := int(data[6])<<8 | int(data[7])
	loadAddress -= homeHeaderSize

	dataSize := size
	if dataSize > len(data) {
		dataSize = len(data)
	}
	if loadAddress < 0 {
		loadAddress = 0
	}

	for addr := 0; addr < loadAddress && addr < 0x10000; addr++ {
		c.bus.PokeRAM(uint16(addr), 0)
	}
	for i := 0; i < dataSize && loadAddress+i < 0x10000; i++ {
		c.bus.PokeRAM(uint16(loadAddress+i), data[i])
	}
	for addr := loadAddress + dataSize; addr < 0x10000; addr++ {
		c.bus.PokeRAM(uint16(addr), 0)
	}

	c.cpu.SetPC(uint16(loadAddress))
}

// Update advances the console by one CPU Update plus any coprocessor
// events now due, and returns the number of cycles the CPU consumed.
func (c *Console) Update() int {
	consumed := c.cpu.Update()

	cycle := c.cpu.Cycles()
	if cycle >= c.nextEventCycle {
		gfxNext := c.gfx.Update(cycle)
		sndNext, irq := c.snd.Update(cycle)
		if irq {
			c.cpu.SetIRQ(true)
		}
		c.nextEventCycle = gfxNext
		if sndNext < c.nextEventCycle {
			c.nextEventCycle = sndNext
		}
		for _, b := range c.snd.FetchOutboundBytes() {
			c.emitByte(b)
		}
	}

	return consumed
}

// CyclesSinceLastFrame reports how far the console's cycle counter has
// advanced since the last SnapshotFrame call, for the scheduler's
// catch-up loop.
func (c *Console) CyclesSinceLastFrame() uint32 {
	return c.cpu.Cycles() - c.lastFrameCycleCount
}

// SnapshotFrame records the current cycle counter as the frame boundary.
func (c *Console) SnapshotFrame() {
	c.lastFrameCycleCount = c.cpu.Cycles()
}

// SetButtons feeds the host's button bitmask for this console.
func (c *Console) SetButtons(mask uint32) { c.buttons = mask }

// Buttons returns the last bitmask fed by SetButtons.
func (c *Console) Buttons() uint32 { return c.buttons }

// SetSkipFrame and SkipFrame carry the frame-skip signal between the
// video coprocessor and the scheduler.
func (c *Console) SetSkipFrame(v bool) { c.skipFrame = v }
func (c *Console) SkipFrame() bool     { return c.skipFrame }

// FetchAudioSamples drains newly produced samples from the sound
// coprocessor into the console's ring, wrapping at the ring's 1-second
// capacity, and returns the samples drained by this call.
func (c *Console) FetchAudioSamples() []int16 {
	fresh := c.snd.FetchSamples()
	for _, s := range fresh {
		c.audio[c.audioWrite] = s
		c.audioWrite = (c.audioWrite + 1) % audioRingSamples
	}
	return fresh
}

// CablePresent reports whether this console is wired into a ComLynx
// session by the scheduler.
func (c *Console) CablePresent() bool { return c.cableConnected }

// SetCablePresent is called by the scheduler when linking or unlinking
// consoles.
func (c *Console) SetCablePresent(v bool) { c.cableConnected = v }

// SetByteOutCallback registers the function the console calls whenever
// it emits a ComLynx byte; the scheduler broadcasts it to every other
// linked console's ByteIn.
func (c *Console) SetByteOutCallback(fn func(b byte)) { c.byteOut = fn }

// ByteIn delivers one byte received from the ComLynx wire. Actual
// framing and the UART register model live in the sound coprocessor;
// this is the scheduler-visible hand-off point.
func (c *Console) ByteIn(b byte) {
	c.snd.PokeReg(0, b)
}

// emitByte hands one ComLynx wire byte drained from the sound
// coprocessor's UART to the scheduler's byteOut callback, if one is
// registered.
func (c *Console) emitByte(b byte) {
	if c.byteOut != nil {
		c.byteOut(b)
	}
}

// ContextSave writes the console's CPU, RAM, and coprocessor segments in
// the fixed order the save-state stream defines: CPU, RAM, cart,
// graphics, sound/timer, EEPROM.
func (c *Console) ContextSave(w *savestate.Writer) {
	c.cpu.ContextSave(w)
	c.bus.ContextSave(w)
	w.Tag(fmt.Sprintf("console[%d]::cart", c.id))
	c.gfx.ContextSave(w)
	c.snd.ContextSave(w)
	c.eeprom.ContextSave(w)
}

// ContextLoad reads a console segment sequence written by ContextSave.
func (c *Console) ContextLoad(r *savestate.Reader) {
	c.cpu.ContextLoad(r)
	c.bus.ContextLoad(r)
	r.Tag(fmt.Sprintf("console[%d]::cart", c.id))
	c.gfx.ContextLoad(r)
	c.snd.ContextLoad(r)
	c.eeprom.ContextLoad(r)
}
