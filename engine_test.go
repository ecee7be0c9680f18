package dcvfs

import (
	"testing"

	"github.com/dcvfs/dcvfs/hostio"
)

func makeROM() []byte {
	b := make([]byte, RomSize)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

// TestNewEngineRejectsWrongSizedROM checks the constructor's one piece
// of input validation: the ROM region must be exactly RomSize bytes.
func TestNewEngineRejectsWrongSizedROM(t *testing.T) {
	if _, err := NewEngine(Config{ROM: make([]byte, 10)}); err == nil {
		t.Fatal("expected an error for a short ROM region")
	}
}

// TestMountLayoutListsConfiguredSubtrees checks that opendir("/")
// yields rom, flash (and no gdrom, since no drive was configured), in
// mount order.
func TestMountLayoutListsConfiguredSubtrees(t *testing.T) {
	dev := &hostio.FakeFlash{Backing: make([]byte, 64), Partitions: map[int][2]int64{0: {0, 32}}}
	e, err := NewEngine(Config{ROM: makeROM(), FlashDevice: dev})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	s := e.OpenFS()
	defer s.CloseFS()

	h, errno := s.Opendir("/")
	if errno != 0 {
		t.Fatalf("Opendir: %v", errno)
	}
	defer s.Closedir(h)

	var got []string
	for {
		de, ok, errno := s.Readdir(h)
		if errno != 0 {
			t.Fatalf("Readdir: %v", errno)
		}
		if !ok {
			break
		}
		got = append(got, de.Name)
	}

	want := []string{"rom", "flash"}
	if len(got) != len(want) {
		t.Fatalf("root listing = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("root listing = %v, want %v", got, want)
		}
	}
}
