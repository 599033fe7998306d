// Package multisystem orchestrates up to sixteen console instances: it
// tiles their framebuffers, fans out button input, drives a per-frame
// catch-up loop, aggregates audio, and wires ComLynx byte delivery.
package multisystem

// Orientation is the host display rotation applied to every tiled
// console in the layout.
type Orientation byte

const (
	OrientationNone Orientation = iota
	OrientationLeft
	OrientationRight
	OrientationFlip
)

// isVertical reports whether an orientation should prefer a taller tile
// grid (rows >= cols) over a wider one.
func isVertical(o Orientation) bool {
	switch o {
	case OrientationLeft, OrientationRight:
		return true
	default:
		return false
	}
}

// tileGrid holds the (cols, rows) shape chosen for a player count.
type tileGrid struct{ cols, rows int }

// distributeHorizontally picks a tile grid favoring cols >= rows, from a
// fixed table indexed by player count.
func distributeHorizontally(players int) tileGrid {
	switch players {
	case 1:
		return tileGrid{1, 1}
	case 2:
		return tileGrid{2, 1}
	case 3, 4:
		return tileGrid{2, 2}
	case 5, 6:
		return tileGrid{3, 2}
	case 7, 8:
		return tileGrid{4, 2}
	case 9:
		return tileGrid{3, 3}
	case 10, 11, 12:
		return tileGrid{4, 3}
	case 13, 14, 15:
		return tileGrid{5, 3}
	case 16:
		return tileGrid{4, 4}
	}
	return tileGrid{1, 1}
}

// distributeVertically picks a tile grid favoring rows >= cols.
func distributeVertically(players int) tileGrid {
	switch players {
	case 1:
		return tileGrid{1, 1}
	case 2:
		return tileGrid{1, 2}
	case 3, 4:
		return tileGrid{2, 2}
	case 5, 6:
		return tileGrid{2, 3}
	case 7, 8:
		return tileGrid{2, 4}
	case 9:
		return tileGrid{3, 3}
	case 10, 11, 12:
		return tileGrid{3, 4}
	case 13, 14, 15:
		return tileGrid{3, 5}
	case 16:
		return tileGrid{4, 4}
	}
	return tileGrid{1, 1}
}

func distribute(players int, vertical bool) tileGrid {
	if vertical {
		return distributeVertically(players)
	}
	return distributeHorizontally(players)
}

// Layout computes the tile grid for a player count and orientation, and
// the offset/pitch arithmetic for placing each console's framebuffer
// slice inside one shared host buffer.
type Layout struct {
	Players            int
	Vertical           bool
	SingleWidth        int
	SingleHeight       int
	Cols, Rows         int
	TotalWidth         int
	TotalHeight        int
}

// NewLayout builds a Layout for players consoles (1..16) at the given
// per-console pixel size and orientation.
func NewLayout(players, singleWidth, singleHeight int, orientation Orientation) Layout {
	if players < 1 {
		players = 1
	}
	if players > 16 {
		players = 16
	}
	vertical := isVertical(orientation)
	grid := distribute(players, vertical)
	return Layout{
		Players:      players,
		Vertical:     vertical,
		SingleWidth:  singleWidth,
		SingleHeight: singleHeight,
		Cols:         grid.cols,
		Rows:         grid.rows,
		TotalWidth:   grid.cols * singleWidth,
		TotalHeight:  grid.rows * singleHeight,
	}
}

// ForOrientation rebuilds the layout for a different orientation,
// keeping the same player count and per-console pixel size.
func (l Layout) ForOrientation(orientation Orientation) Layout {
	return NewLayout(l.Players, l.SingleWidth, l.SingleHeight, orientation)
}

// tileCol and tileRow give the zero-based column/row of player p; the
// reference walks column-major, placing player p at (p / rows, p % rows).
func (l Layout) tileCol(p int) int { return p / l.Rows }
func (l Layout) tileRow(p int) int { return p % l.Rows }

// PositionOfPlayer returns the (col, row) tile coordinate of player p.
func (l Layout) PositionOfPlayer(p int) (col, row int) {
	return l.tileCol(p), l.tileRow(p)
}

// FramebufferPitchForPlayer returns the host buffer's pitch as seen from
// player p's tile: cols * single-console pitch.
func (l Layout) FramebufferPitchForPlayer(singleSystemPitch int) int {
	return l.Cols * singleSystemPitch
}

// FramebufferOffsetForRow returns the byte offset of tile row y within
// the shared buffer.
func (l Layout) FramebufferOffsetForRow(y, singleSystemPitch int) int {
	return l.FramebufferPitchForPlayer(singleSystemPitch) * l.SingleHeight * y
}

// FramebufferOffsetForCol returns the byte offset of tile column x
// within a single tile row.
func (l Layout) FramebufferOffsetForCol(x, singleSystemPitch int) int {
	return x * singleSystemPitch
}

// FramebufferOffsetForPlayer returns the byte offset of player p's tile
// origin within the shared host framebuffer, given the per-console pitch:
// (single_pixel_height * host_pitch * tile_row) + (single_tile_pitch * tile_col).
func (l Layout) FramebufferOffsetForPlayer(p, singleSystemPitch int) int {
	col, row := l.PositionOfPlayer(p)
	hostPitch := l.FramebufferPitchForPlayer(singleSystemPitch)
	return l.SingleHeight*hostPitch*row + singleSystemPitch*col
}
