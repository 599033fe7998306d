package multisystem

import "testing"

func TestLayoutTwoPlayersHorizontal(t *testing.T) {
	l := NewLayout(2, 160, 102, OrientationNone)
	if l.Cols != 2 || l.Rows != 1 {
		t.Fatalf("2-player horizontal grid = %dx%d, want 2x1", l.Cols, l.Rows)
	}
	if l.TotalWidth != 320 || l.TotalHeight != 102 {
		t.Fatalf("total size = %dx%d, want 320x102", l.TotalWidth, l.TotalHeight)
	}

	col0, row0 := l.PositionOfPlayer(0)
	col1, row1 := l.PositionOfPlayer(1)
	if col0 != 0 || row0 != 0 {
		t.Fatalf("player 0 at (%d,%d), want (0,0)", col0, row0)
	}
	if col1 != 1 || row1 != 0 {
		t.Fatalf("player 1 at (%d,%d), want (1,0)", col1, row1)
	}
}

func TestLayoutFramebufferOffsets(t *testing.T) {
	l := NewLayout(4, 160, 102, OrientationNone)
	if l.Cols != 2 || l.Rows != 2 {
		t.Fatalf("4-player grid = %dx%d, want 2x2", l.Cols, l.Rows)
	}

	const pitch = 160
	hostPitch := l.FramebufferPitchForPlayer(pitch)
	if hostPitch != pitch*l.Cols {
		t.Fatalf("host pitch = %d, want %d", hostPitch, pitch*l.Cols)
	}

	// Player 0 is at tile (0,0): offset 0.
	if off := l.FramebufferOffsetForPlayer(0, pitch); off != 0 {
		t.Fatalf("player 0 offset = %d, want 0", off)
	}
	// Player index p maps to (col, row) = (p/rows, p%rows) = (0,1) for p=1
	// in a 2x2 grid, i.e. same column, next row down.
	col1, row1 := l.PositionOfPlayer(1)
	want1 := l.SingleHeight*hostPitch*row1 + pitch*col1
	if off := l.FramebufferOffsetForPlayer(1, pitch); off != want1 {
		t.Fatalf("player 1 offset = %d, want %d", off, want1)
	}
}

func TestLayoutClampsPlayerCount(t *testing.T) {
	l := NewLayout(99, 160, 102, OrientationNone)
	if l.Players != 16 {
		t.Fatalf("player count = %d, want clamped to 16", l.Players)
	}
	l = NewLayout(0, 160, 102, OrientationNone)
	if l.Players != 1 {
		t.Fatalf("player count = %d, want clamped to 1", l.Players)
	}
}

func TestLayoutVerticalOrientationPrefersTallerGrid(t *testing.T) {
	l := NewLayout(8, 160, 102, OrientationLeft)
	if !l.Vertical {
		t.Fatalf("OrientationLeft should select a vertical layout")
	}
	if l.Rows < l.Cols {
		t.Fatalf("vertical 8-player grid = %dx%d, want rows >= cols", l.Cols, l.Rows)
	}
}
