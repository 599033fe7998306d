package cartdb

import "testing"

func buildHomebrewImage(loadAddr, size uint16) []byte {
	img := make([]byte, homebrewHeaderSize)
	copy(img[0:4], "BS93")
	img[4] = byte(loadAddr >> 8)
	img[5] = byte(loadAddr)
	img[6] = byte(size >> 8)
	img[7] = byte(size)
	return img
}

func TestLookupParsesHomebrewHeader(t *testing.T) {
	db, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img := buildHomebrewImage(0x200A, 14)

	info := db.Lookup(img)
	if info.Format != FormatHomebrew {
		t.Fatalf("format = %v, want FormatHomebrew", info.Format)
	}
	if info.LoadAddress != 0x200A || info.Size != 14 {
		t.Fatalf("got load=%#04x size=%d, want load=0x200a size=14", info.LoadAddress, info.Size)
	}
}

func TestLookupCachesByCRC32(t *testing.T) {
	db, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img := buildHomebrewImage(0x2000, 10)

	db.Lookup(img)
	if db.Len() != 1 {
		t.Fatalf("cache len = %d, want 1 after first lookup", db.Len())
	}
	db.Lookup(img)
	if db.Len() != 1 {
		t.Fatalf("cache len = %d, want still 1 after repeat lookup", db.Len())
	}
}

func TestLookupUnknownFormat(t *testing.T) {
	db, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	info := db.Lookup([]byte{0x00, 0x01, 0x02})
	if info.Format != FormatUnknown {
		t.Fatalf("format = %v, want FormatUnknown", info.Format)
	}
}

func TestLookupEvictsLeastRecentlyUsed(t *testing.T) {
	db, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	db.Lookup(buildHomebrewImage(0x2000, 10))
	db.Lookup(buildHomebrewImage(0x3000, 10))
	db.Lookup(buildHomebrewImage(0x4000, 10))
	if db.Len() > 2 {
		t.Fatalf("cache len = %d, want capped at 2", db.Len())
	}
}
