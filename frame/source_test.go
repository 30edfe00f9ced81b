package frame

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/KrisKennaway/ii-vision-sub000/screen"
)

func writeFrame(t *testing.T, dir string, index int, ext string, fill byte) {
	t.Helper()
	var data [8192]byte
	for i := range data {
		data[i] = fill
	}
	path := filepath.Join(dir, fmtFrame(index)+"."+ext)
	if err := os.WriteFile(path, data[:], 0o644); err != nil {
		t.Fatal(err)
	}
}

func fmtFrame(i int) string {
	return (&DirSource{index: i}).frameBasename()
}

func TestDirSourceReadsSequentialFrames(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, 0, "bin", 0x00)
	writeFrame(t, dir, 1, "bin", 0x7f)

	src := NewDirSource(dir, screen.ModeHGR)

	img0, err := src.Next()
	if err != nil {
		t.Fatalf("frame 0: %v", err)
	}
	if img0.Mode() != screen.ModeHGR {
		t.Errorf("mode = %v, want HGR", img0.Mode())
	}

	img1, err := src.Next()
	if err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	if img1 == img0 {
		t.Error("expected distinct image per frame")
	}

	if _, err := src.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after exhausting frames, got %v", err)
	}
}

func TestDirSourceDHGRReadsAuxBank(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, 0, "bin", 0x11)
	writeFrame(t, dir, 0, "aux", 0x22)

	src := NewDirSource(dir, screen.ModeDHGR)
	img, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	found := false
	for page := screen.PageMin; page < screen.PageMax && !found; page++ {
		for offset := 0; offset < screen.OffsetCount; offset++ {
			if screen.IsScreenHole(page, offset) {
				continue
			}
			if img.GetAux(page, offset) != 0 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected aux bank to be populated from .aux file")
	}
}

func TestDirSourceRejectsWrongSizedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "00000000.bin"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewDirSource(dir, screen.ModeHGR)
	if _, err := src.Next(); err == nil {
		t.Error("expected error reading a short frame file")
	}
}
