// Command lynxmp boots one or more cartridge images under the
// multi-console scheduler and runs them for a fixed number of frames,
// with no video or audio sink. It exists to exercise the core end to end
// from the command line; a real frontend would replace the frame loop
// below with its own video/audio/input integration.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/user-none/lynxmp/cartdb"
	"github.com/user-none/lynxmp/console"
	"github.com/user-none/lynxmp/multisystem"
	"github.com/user-none/lynxmp/romloader"
)

const (
	cyclesPerFrame = 16000000 / 60
	frameWidth     = 160
	frameHeight    = 102
	framePitch     = frameWidth
)

func main() {
	cartPath := flag.String("cart", "", "path to a cartridge image or archive")
	bootROMPath := flag.String("bootrom", "", "path to the 512-byte boot ROM image")
	players := flag.Int("players", 1, "number of consoles to boot (1-16)")
	orientation := flag.String("orientation", "none", "tile orientation: none, left, right, flip")
	comlynx := flag.Bool("comlynx", false, "connect the ComLynx link between consoles")
	frames := flag.Int("frames", 60, "number of frames to run before exiting")
	flag.Parse()

	if *cartPath == "" {
		log.Fatal("lynxmp: -cart is required")
	}

	cartData, name, err := romloader.LoadROM(*cartPath)
	if err != nil {
		log.Fatalf("lynxmp: load cartridge: %v", err)
	}

	db, err := cartdb.New(64)
	if err != nil {
		log.Fatalf("lynxmp: cartdb: %v", err)
	}
	info := db.Lookup(cartData)
	log.Printf("lynxmp: loaded %s (%d bytes, format=%v)", name, len(cartData), info.Format)

	bootROM := make([]byte, 512)
	if *bootROMPath != "" {
		data, err := os.ReadFile(*bootROMPath)
		if err != nil {
			log.Fatalf("lynxmp: read boot rom: %v", err)
		}
		copy(bootROM, data)
	}

	logger := log.New(os.Stderr, "lynxmp: ", log.LstdFlags)
	layout := multisystem.NewLayout(*players, frameWidth, frameHeight, parseOrientation(*orientation))

	factory := func(i int, cart console.Cartridge, rom []byte) *console.Console {
		return console.New(i, cart, rom, console.NewStubGraphics(), console.NewStubSound(), console.NewStubEEPROM(), logger)
	}

	ms := multisystem.New(layout, factory, nil, logger)
	if err := ms.BootGame(console.RawCartridge(cartData), bootROM, *comlynx); err != nil {
		log.Fatalf("lynxmp: boot: %v", err)
	}

	for frame := 0; frame < *frames; frame++ {
		ms.UpdateButtons()
		ms.CatchUpAllSystems(cyclesPerFrame)
		ms.NoteLastCycleCounts()
		ms.FetchAudioSamples()
	}

	log.Printf("lynxmp: ran %d frames across %d console(s)", *frames, layout.Players)
}

func parseOrientation(s string) multisystem.Orientation {
	switch s {
	case "left":
		return multisystem.OrientationLeft
	case "right":
		return multisystem.OrientationRight
	case "flip":
		return multisystem.OrientationFlip
	default:
		return multisystem.OrientationNone
	}
}
