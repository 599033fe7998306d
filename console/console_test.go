package console

import "testing"

func buildCart(loadAddr, size uint16, payload []byte) RawCartridge {
	img := make([]byte, homeHeaderSize+len(payload))
	copy(img[0:4], "BS93")
	img[4] = byte(loadAddr >> 8)
	img[5] = byte(loadAddr)
	img[6] = byte(size >> 8)
	img[7] = byte(size)
	copy(img[homeHeaderSize:], payload)
	return RawCartridge(img)
}

func TestLoadCartridgeInstallsHomebrewHeader(t *testing.T) {
	payload := []byte{0xa9, 0x42, 0x00, 0x00} // LDA #$42; BRK
	cart := buildCart(0x200A, uint16(homeHeaderSize+len(payload)), payload)

	c := New(0, cart, make([]byte, bootROMSize), NewStubGraphics(), NewStubSound(), NewStubEEPROM(), nil)
	c.Reset()

	const loadAddress = 0x2000 // 0x200A - 10
	// The copy starts at the file's first byte, so the 10 header bytes
	// land in RAM ahead of the payload; load_address was backed up by
	// exactly homeHeaderSize to make room for them.
	for i, want := range payload {
		addr := loadAddress + homeHeaderSize + i
		if got := c.Bus().PeekRAM(uint16(addr)); got != want {
			t.Fatalf("RAM[%#04x] = %#02x, want %#02x", addr, got, want)
		}
	}
	if got := c.Bus().PeekRAM(0x0000); got != 0 {
		t.Fatalf("RAM before load address should be zeroed, got %#02x", got)
	}
	if c.CPU().PC() != loadAddress {
		t.Fatalf("boot PC = %#04x, want %#04x", c.CPU().PC(), loadAddress)
	}
}

func TestLoadCartridgeTooShortZeroesRAM(t *testing.T) {
	c := New(1, RawCartridge([]byte{0x01, 0x02}), make([]byte, bootROMSize), NewStubGraphics(), NewStubSound(), NewStubEEPROM(), nil)
	c.Bus().PokeRAM(0x3000, 0xaa)
	c.Reset()
	if got := c.Bus().PeekRAM(0x3000); got != 0 {
		t.Fatalf("short cartridge image should zero RAM, got %#02x", got)
	}
}

func TestUpdateAdvancesCycleCounter(t *testing.T) {
	cart := buildCart(0x200A, homeHeaderSize+2, []byte{0xea, 0xea}) // two NOPs
	c := New(2, cart, make([]byte, bootROMSize), NewStubGraphics(), NewStubSound(), NewStubEEPROM(), nil)
	c.Reset()

	before := c.CPU().Cycles()
	n := c.Update()
	if n <= 0 {
		t.Fatalf("Update should consume a positive number of cycles, got %d", n)
	}
	if c.CPU().Cycles() != before+uint32(n) {
		t.Fatalf("cycle counter did not advance by the reported consumption")
	}
}
