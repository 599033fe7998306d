package multisystem

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/user-none/lynxmp/console"
	"github.com/user-none/lynxmp/savestate"
)

// bootGap is the minimum real-time delay enforced between console
// creations during boot. Game software elects a ComLynx player number
// based on relative boot-order timing observed over the link; creating
// every console with zero gap ties that election.
const bootGap = 1 * time.Millisecond

// ErrBootElectionRace is surfaced, not returned as a fatal error, when
// the scheduler observes the same player ID claimed twice after a boot;
// the caller may retry the boot with a longer gap.
var ErrBootElectionRace = errors.New("multisystem: boot-order race detected, duplicate player election")

// ConsoleFactory creates console number i (0-based) from the given
// cartridge image and boot ROM, wired to fresh coprocessor handles.
type ConsoleFactory func(i int, cart console.Cartridge, bootROM []byte) *console.Console

// CatchUpPolicy selects one of the two catch-up loop algorithms.
type CatchUpPolicy int

const (
	// Synchronized repeats, calling Update on every console still
	// behind its target, until none are. This couples ComLynx-linked
	// consoles closely.
	Synchronized CatchUpPolicy = iota
	// Independent drives a single designated console until it alone
	// catches up, with no cross-console ordering guarantee.
	Independent
)

// MultiSystem owns up to sixteen console instances and drives them
// forward together: tile layout, button fan-out, catch-up scheduling,
// audio aggregation, ComLynx delivery, and save-state.
type MultiSystem struct {
	layout  Layout
	factory ConsoleFactory
	logger  *log.Logger

	consoles       []*console.Console
	comlynxWired   bool
	buttonCallback func(player int) uint32

	// linkLog is the shared ComLynx byte stream: every console's emitted
	// byte is appended here tagged with its sender, and each receiver's
	// cursor in linkCursor tracks how far it has been delivered. A log
	// plus per-receiver cursors (rather than direct callback broadcast)
	// keeps delivery order explicit and lets save-state capture in-flight
	// link traffic instead of losing it.
	linkLog    []linkByte
	linkCursor []int

	// bootTimes records when each console went live on the link, for
	// checkElection to derive the player number its boot-order handshake
	// would have settled on.
	bootTimes []time.Time
}

type linkByte struct {
	sender int
	value  byte
}

// New creates a scheduler for the given layout and console factory.
// buttonCallback may be nil; SetButtonCallback can be set later.
func New(layout Layout, factory ConsoleFactory, buttonCallback func(player int) uint32, logger *log.Logger) *MultiSystem {
	return &MultiSystem{layout: layout, factory: factory, buttonCallback: buttonCallback, logger: logger}
}

// SetButtonCallback installs the host's per-player button poll function.
func (m *MultiSystem) SetButtonCallback(fn func(player int) uint32) { m.buttonCallback = fn }

// BootGame creates layout.Players consoles from the given cartridge
// image, one at a time with bootGap between each so player election
// over ComLynx resolves deterministically. A previously booted game is
// unbooted first, in reverse creation order.
func (m *MultiSystem) BootGame(cart console.Cartridge, bootROM []byte, connectComLynx bool) error {
	m.UnbootGame()

	players := m.layout.Players
	if players < 1 {
		players = 1
	}
	if players > 16 {
		players = 16
	}

	consoles := make([]*console.Console, 0, players)
	bootTimes := make([]time.Time, 0, players)
	for i := 0; i < players; i++ {
		c := m.factory(i, cart, bootROM)
		c.Reset()
		consoles = append(consoles, c)
		bootTimes = append(bootTimes, time.Now())
		time.Sleep(bootGap)
	}
	m.consoles = consoles
	m.bootTimes = bootTimes

	if !connectComLynx {
		return nil
	}

	m.linkLog = nil
	m.linkCursor = make([]int, len(m.consoles))
	for i, c := range m.consoles {
		c.SetCablePresent(true)
		m.wireComLynx(i)
		time.Sleep(bootGap)
		c.Update()
	}
	m.comlynxWired = true

	return m.checkElection()
}

// wireComLynx connects console i's byte-out callback to append into the
// scheduler's shared link log rather than calling the other consoles
// directly; DeliverComLynx later drains it per receiver.
func (m *MultiSystem) wireComLynx(i int) {
	src := m.consoles[i]
	src.SetByteOutCallback(func(b byte) {
		m.linkLog = append(m.linkLog, linkByte{sender: i, value: b})
	})
}

// DeliverComLynx advances every console's cursor through the shared link
// log, feeding it each byte some other console emitted since the last
// call. The scheduler should call this once per catch-up pass while
// ComLynx is connected.
func (m *MultiSystem) DeliverComLynx() {
	if !m.comlynxWired {
		return
	}
	for receiver, c := range m.consoles {
		cursor := m.linkCursor[receiver]
		for ; cursor < len(m.linkLog); cursor++ {
			entry := m.linkLog[cursor]
			if entry.sender == receiver {
				continue
			}
			c.ByteIn(entry.value)
		}
		m.linkCursor[receiver] = cursor
	}
	m.compactLinkLog()
}

// compactLinkLog drops log entries every receiver has already consumed,
// so a long-running session doesn't grow the log without bound.
func (m *MultiSystem) compactLinkLog() {
	if len(m.linkLog) == 0 {
		return
	}
	minCursor := m.linkCursor[0]
	for _, cur := range m.linkCursor[1:] {
		if cur < minCursor {
			minCursor = cur
		}
	}
	if minCursor == 0 {
		return
	}
	m.linkLog = append([]linkByte(nil), m.linkLog[minCursor:]...)
	for i := range m.linkCursor {
		m.linkCursor[i] -= minCursor
	}
}

// electedPlayerID derives the player number a console's ComLynx boot
// handshake would settle on from its creation time relative to the first
// console created, quantized by bootGap: real hardware elects a player
// number by observing relative boot-order timing over the link, and two
// consoles landing in the same quantum are indistinguishable to it.
func electedPlayerID(created, reference time.Time) int {
	return int(created.Sub(reference) / bootGap)
}

// checkElection compares every booted console's elected player number and
// reports ErrBootElectionRace if any two collide, which a zero (or
// insufficient) inter-console boot gap causes.
func (m *MultiSystem) checkElection() error {
	if len(m.bootTimes) == 0 {
		return nil
	}
	reference := m.bootTimes[0]
	seen := make(map[int]bool, len(m.bootTimes))
	for _, t := range m.bootTimes {
		id := electedPlayerID(t, reference)
		if seen[id] {
			return ErrBootElectionRace
		}
		seen[id] = true
	}
	return nil
}

// UnbootGame destroys the current console set in reverse creation order
// and clears the ComLynx-connected flag. Unlike a reference that merely
// flips a boolean, every console handle is released so a subsequent
// BootGame starts from a clean slate.
func (m *MultiSystem) UnbootGame() {
	m.comlynxWired = false
	m.linkLog = nil
	m.linkCursor = nil
	m.bootTimes = nil
	for i := len(m.consoles) - 1; i >= 0; i-- {
		m.consoles[i] = nil
	}
	m.consoles = nil
}

// Reset reinitializes every booted console.
func (m *MultiSystem) Reset() {
	for _, c := range m.consoles {
		c.Reset()
	}
}

// UpdateButtons polls the host's button callback once per console index
// and feeds the resulting bitmask into that console.
func (m *MultiSystem) UpdateButtons() {
	if m.buttonCallback == nil {
		return
	}
	for i, c := range m.consoles {
		c.SetButtons(m.buttonCallback(i))
	}
}

// FetchAudioSamples drains every console's sound coprocessor into its
// ring; the reference exposes only the first console's stream, but a
// caller may instead pass every console's samples to MixAudio to average
// them into one.
func (m *MultiSystem) FetchAudioSamples() {
	for _, c := range m.consoles {
		c.FetchAudioSamples()
	}
}

// MixAudio averages the given per-console sample slices into one 48 kHz
// mono stream, for hosts that want every player's audio rather than just
// the first console's. The result is as long as the longest slice; each
// output sample averages only the slices long enough to reach it.
func (m *MultiSystem) MixAudio(perConsole [][]int16) []int16 {
	if len(perConsole) == 0 {
		return nil
	}
	n := 0
	for _, s := range perConsole {
		if len(s) > n {
			n = len(s)
		}
	}
	mixed := make([]int16, n)
	for i := 0; i < n; i++ {
		var sum int32
		count := 0
		for _, s := range perConsole {
			if i < len(s) {
				sum += int32(s[i])
				count++
			}
		}
		if count > 0 {
			mixed[i] = int16(sum / int32(count))
		}
	}
	return mixed
}

// DisplaySetAttributes wraps the host's single buffer-provider callback
// once per console, offsetting by that console's tile origin, and clears
// its skip-frame flag whenever the wrapped callback is invoked.
// singleSystemPitch is the pitch of one console's tile.
func (m *MultiSystem) DisplaySetAttributes(singleSystemPitch int, bufferProvider func() []byte) []func() []byte {
	callbacks := make([]func() []byte, len(m.consoles))
	for i, c := range m.consoles {
		offset := m.layout.FramebufferOffsetForPlayer(i, singleSystemPitch)
		cc := c
		callbacks[i] = func() []byte {
			cc.SetSkipFrame(false)
			buf := bufferProvider()
			if offset >= len(buf) {
				return nil
			}
			return buf[offset:]
		}
	}
	return callbacks
}

// IsAnySkippingFrame reports whether any booted console has its
// skip-frame flag set.
func (m *MultiSystem) IsAnySkippingFrame() bool {
	for _, c := range m.consoles {
		if c.SkipFrame() {
			return true
		}
	}
	return false
}

// IsNoneSkippingFrame reports whether no booted console has its
// skip-frame flag set.
func (m *MultiSystem) IsNoneSkippingFrame() bool {
	return !m.IsAnySkippingFrame()
}

// SetSkippingFrame forces every console's skip-frame flag.
func (m *MultiSystem) SetSkippingFrame(skip bool) {
	for _, c := range m.consoles {
		c.SetSkipFrame(skip)
	}
}

// NoteLastCycleCounts snapshots every console's cycle counter as the
// current frame boundary, for the next catch-up loop to measure against.
func (m *MultiSystem) NoteLastCycleCounts() {
	for _, c := range m.consoles {
		c.SnapshotFrame()
	}
}

// CatchUpAllSystems repeatedly advances every console still behind its
// per-frame cycle budget until none are. Consoles catch up roughly in
// lockstep, which keeps ComLynx-linked consoles closely coupled.
func (m *MultiSystem) CatchUpAllSystems(cyclesPerFrame uint32) {
	for m.anyBehind(cyclesPerFrame) {
		for _, c := range m.consoles {
			if behind(c, cyclesPerFrame) {
				c.Update()
			}
		}
		m.DeliverComLynx()
	}
}

// CatchUpSystem advances a single designated console until it alone has
// caught up, with no ordering guarantee relative to the others.
func (m *MultiSystem) CatchUpSystem(player int, cyclesPerFrame uint32) {
	if player < 0 || player >= len(m.consoles) {
		return
	}
	c := m.consoles[player]
	for behind(c, cyclesPerFrame) {
		c.Update()
	}
}

func behind(c *console.Console, cyclesPerFrame uint32) bool {
	return c.CyclesSinceLastFrame() < cyclesPerFrame
}

func (m *MultiSystem) anyBehind(cyclesPerFrame uint32) bool {
	for _, c := range m.consoles {
		if behind(c, cyclesPerFrame) {
			return true
		}
	}
	return false
}

// Layout returns the scheduler's tile layout.
func (m *MultiSystem) Layout() Layout { return m.layout }

// Console returns the console at the given player index, or nil if out
// of range.
func (m *MultiSystem) Console(player int) *console.Console {
	if player < 0 || player >= len(m.consoles) {
		return nil
	}
	return m.consoles[player]
}

// Consoles returns the full booted console set.
func (m *MultiSystem) Consoles() []*console.Console { return m.consoles }

// ContextSave writes every console's segment in creation order, followed
// by the in-flight ComLynx link log and per-receiver cursors so queued
// but undelivered bytes survive a save/load round trip.
func (m *MultiSystem) ContextSave(w *savestate.Writer) {
	for _, c := range m.consoles {
		c.ContextSave(w)
	}
	w.Tag("MultiSystem::ComLynx")
	w.Field(uint32(len(m.linkLog)))
	for _, entry := range m.linkLog {
		w.Field(uint32(entry.sender))
		w.Field(uint32(entry.value))
	}
	w.Field(uint32(len(m.linkCursor)))
	for _, cur := range m.linkCursor {
		w.Field(uint32(cur))
	}
}

// ContextLoad reads a segment sequence written by ContextSave.
func (m *MultiSystem) ContextLoad(r *savestate.Reader) {
	for _, c := range m.consoles {
		c.ContextLoad(r)
	}
	r.Tag("MultiSystem::ComLynx")
	var logLen uint32
	r.Field(&logLen)
	m.linkLog = make([]linkByte, logLen)
	for i := range m.linkLog {
		var sender, value uint32
		r.Field(&sender)
		r.Field(&value)
		m.linkLog[i] = linkByte{sender: int(sender), value: byte(value)}
	}
	var cursorLen uint32
	r.Field(&cursorLen)
	m.linkCursor = make([]int, cursorLen)
	for i := range m.linkCursor {
		var cur uint32
		r.Field(&cur)
		m.linkCursor[i] = int(cur)
	}
}

// String renders the scheduler's current player count and layout, for
// diagnostics.
func (m *MultiSystem) String() string {
	return fmt.Sprintf("multisystem(players=%d cols=%d rows=%d)", len(m.consoles), m.layout.Cols, m.layout.Rows)
}
