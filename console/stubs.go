package console

import "github.com/user-none/lynxmp/savestate"

// RawCartridge adapts a plain byte slice to the Cartridge interface, the
// common case of a cartridge image already read from disk by the
// frontend's ROM loader.
type RawCartridge []byte

func (r RawCartridge) Bytes() []byte { return r }

// stubGraphics, stubSound, and stubEEPROM are minimal, inert
// implementations of the coprocessor interfaces: the sprite engine,
// sound synthesis, and EEPROM persistence are deliberately out of scope
// for this core, so the scheduler can wire a console together without
// them for tests and for the thin reference CLI.
type stubGraphics struct{}

func (stubGraphics) PeekReg(uint16) byte     { return 0xff }
func (stubGraphics) PokeReg(uint16, byte) {}
func (stubGraphics) Update(uint32) uint32    { return ^uint32(0) }
func (stubGraphics) ContextSave(w *savestate.Writer) {
	w.Tag("stubGraphics::ContextSave")
}
func (stubGraphics) ContextLoad(r *savestate.Reader) {
	r.Tag("stubGraphics::ContextSave")
}

// NewStubGraphics returns a GraphicsCoprocessor that never raises an
// event and answers open-bus reads, for wiring tests and the CLI.
func NewStubGraphics() GraphicsCoprocessor { return stubGraphics{} }

type stubSound struct{}

func (stubSound) PeekReg(uint16) byte     { return 0xff }
func (stubSound) PokeReg(uint16, byte) {}
func (stubSound) Update(uint32) (uint32, bool) { return ^uint32(0), false }
func (stubSound) FetchSamples() []int16        { return nil }
func (stubSound) FetchOutboundBytes() []byte   { return nil }
func (stubSound) ExtendWakeup(uint32)          {}
func (stubSound) ContextSave(w *savestate.Writer) {
	w.Tag("stubSound::ContextSave")
}
func (stubSound) ContextLoad(r *savestate.Reader) {
	r.Tag("stubSound::ContextSave")
}

// NewStubSound returns a SoundCoprocessor that never raises IRQ and
// never produces samples.
func NewStubSound() SoundCoprocessor { return stubSound{} }

type stubEEPROM struct{}

func (stubEEPROM) ContextSave(w *savestate.Writer) {
	w.Tag("stubEEPROM::ContextSave")
}
func (stubEEPROM) ContextLoad(r *savestate.Reader) {
	r.Tag("stubEEPROM::ContextSave")
}

// NewStubEEPROM returns an EEPROM handle that persists nothing.
func NewStubEEPROM() EEPROM { return stubEEPROM{} }
