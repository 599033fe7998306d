package multisystem

import (
	"testing"
	"time"

	"github.com/user-none/lynxmp/console"
)

func testCart() console.RawCartridge {
	payload := []byte{0xea, 0xea, 0xea, 0xea} // NOP NOP NOP NOP
	img := make([]byte, 10+len(payload))
	copy(img[0:4], "BS93")
	const loadAddr = 0x200A
	size := 10 + len(payload)
	img[4] = byte(loadAddr >> 8)
	img[5] = byte(loadAddr & 0xff)
	img[6] = byte(size >> 8)
	img[7] = byte(size)
	copy(img[10:], payload)
	return console.RawCartridge(img)
}

func newTestFactory() ConsoleFactory {
	return func(i int, cart console.Cartridge, bootROM []byte) *console.Console {
		return console.New(i, cart, bootROM, console.NewStubGraphics(), console.NewStubSound(), console.NewStubEEPROM(), nil)
	}
}

func TestBootGameCreatesOneConsolePerPlayer(t *testing.T) {
	layout := NewLayout(2, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)

	start := time.Now()
	if err := ms.BootGame(testCart(), make([]byte, 512), false); err != nil {
		t.Fatalf("BootGame: %v", err)
	}
	elapsed := time.Since(start)

	if len(ms.Consoles()) != 2 {
		t.Fatalf("got %d consoles, want 2", len(ms.Consoles()))
	}
	// Boot must enforce a real gap between console creations so player
	// election over the link resolves deterministically.
	if elapsed < bootGap {
		t.Fatalf("boot elapsed %v, want at least %v between consoles", elapsed, bootGap)
	}
	for i, c := range ms.Consoles() {
		if c.ID() != i {
			t.Fatalf("console %d has ID %d", i, c.ID())
		}
	}
}

func TestBootGameWithComLynxConnectsCable(t *testing.T) {
	layout := NewLayout(2, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)

	if err := ms.BootGame(testCart(), make([]byte, 512), true); err != nil {
		t.Fatalf("BootGame: %v", err)
	}
	for i, c := range ms.Consoles() {
		if !c.CablePresent() {
			t.Fatalf("console %d cable not connected after ComLynx boot", i)
		}
	}
}

func TestUnbootGameClearsConsoles(t *testing.T) {
	layout := NewLayout(1, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)
	if err := ms.BootGame(testCart(), make([]byte, 512), false); err != nil {
		t.Fatalf("BootGame: %v", err)
	}
	ms.UnbootGame()
	if len(ms.Consoles()) != 0 {
		t.Fatalf("UnbootGame left %d consoles", len(ms.Consoles()))
	}
}

func TestCatchUpAllSystemsAdvancesEveryConsole(t *testing.T) {
	layout := NewLayout(2, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)
	if err := ms.BootGame(testCart(), make([]byte, 512), false); err != nil {
		t.Fatalf("BootGame: %v", err)
	}
	ms.NoteLastCycleCounts()

	const budget = 20
	ms.CatchUpAllSystems(budget)

	for i, c := range ms.Consoles() {
		if c.CyclesSinceLastFrame() < budget {
			t.Fatalf("console %d cycles since frame = %d, want >= %d", i, c.CyclesSinceLastFrame(), budget)
		}
	}
}

func TestComLynxDeliversAcrossConsoles(t *testing.T) {
	layout := NewLayout(2, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)
	if err := ms.BootGame(testCart(), make([]byte, 512), true); err != nil {
		t.Fatalf("BootGame: %v", err)
	}

	// Simulate console 0 emitting a byte over the link, as if its sound
	// coprocessor's UART had shifted one out.
	ms.linkLog = append(ms.linkLog, linkByte{sender: 0, value: 0x42})

	ms.DeliverComLynx()

	// Both cursors pass the byte (the sender skips its own), so compaction
	// then drops it and rebases both cursors to 0.
	if ms.linkCursor[0] != 0 {
		t.Fatalf("sender cursor = %d, want 0 (passed its own byte, then rebased by compaction)", ms.linkCursor[0])
	}
	if ms.linkCursor[1] != 0 {
		t.Fatalf("receiver cursor = %d, want 0 (passed the delivered byte, then rebased by compaction)", ms.linkCursor[1])
	}
}

func TestComLynxCompactsDeliveredLog(t *testing.T) {
	layout := NewLayout(2, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)
	if err := ms.BootGame(testCart(), make([]byte, 512), true); err != nil {
		t.Fatalf("BootGame: %v", err)
	}

	ms.linkLog = append(ms.linkLog, linkByte{sender: 0, value: 0x01})
	ms.DeliverComLynx()

	if len(ms.linkLog) != 0 {
		t.Fatalf("linkLog len = %d, want 0 after every receiver caught up", len(ms.linkLog))
	}
	if ms.linkCursor[0] != 0 || ms.linkCursor[1] != 0 {
		t.Fatalf("cursors should rebase to 0 after compaction, got %v", ms.linkCursor)
	}
}

func TestCheckElectionDistinctTimingSucceeds(t *testing.T) {
	layout := NewLayout(2, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)
	base := time.Now()
	ms.bootTimes = []time.Time{base, base.Add(bootGap), base.Add(2 * bootGap)}
	if err := ms.checkElection(); err != nil {
		t.Fatalf("checkElection with distinct boot timing: %v", err)
	}
}

func TestCheckElectionRaceDetected(t *testing.T) {
	layout := NewLayout(2, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)
	base := time.Now()
	// Two consoles created with no gap between them land in the same
	// bootGap quantum, exactly what a 0 ms inter-console delay causes.
	ms.bootTimes = []time.Time{base, base, base.Add(bootGap)}
	if err := ms.checkElection(); err != ErrBootElectionRace {
		t.Fatalf("checkElection with tied boot timing = %v, want ErrBootElectionRace", err)
	}
}

func TestBootGameWithComLynxElectsDistinctPlayers(t *testing.T) {
	layout := NewLayout(2, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), nil, nil)
	if err := ms.BootGame(testCart(), make([]byte, 512), true); err != nil {
		t.Fatalf("BootGame: %v", err)
	}
	if len(ms.bootTimes) != 2 {
		t.Fatalf("got %d boot timestamps, want 2", len(ms.bootTimes))
	}
}

func TestButtonFanOut(t *testing.T) {
	layout := NewLayout(3, 160, 102, OrientationNone)
	ms := New(layout, newTestFactory(), func(player int) uint32 {
		return uint32(player) + 1
	}, nil)
	if err := ms.BootGame(testCart(), make([]byte, 512), false); err != nil {
		t.Fatalf("BootGame: %v", err)
	}
	ms.UpdateButtons()
	for i, c := range ms.Consoles() {
		if want := uint32(i) + 1; c.Buttons() != want {
			t.Fatalf("console %d buttons = %d, want %d", i, c.Buttons(), want)
		}
	}
}
