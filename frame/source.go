// Package frame supplies target display-memory images to the
// scheduler, one per video frame. Producing those images from an
// arbitrary video container is explicitly out of scope (spec.md §1
// Non-goals): frame.Source only consumes already-converted memory
// dumps an external collaborator (an HGR conversion tool) produced.
package frame

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KrisKennaway/ii-vision-sub000/screen"
)

// Source yields successive target MemoryImage frames. Next returns
// io.EOF once the sequence is exhausted.
type Source interface {
	Next() (*screen.MemoryImage, error)
}

// DirSource reads a directory of raw memory dumps named %08d.bin (main
// bank) and, in double-bitplane mode, an accompanying %08d.aux file,
// mirroring the naming convention of the original encoder's
// bmp2dhr-backed frame grabber (%08dC.BIN / .AUX) without performing
// any image decoding itself: the files are already raw display memory.
type DirSource struct {
	dir   string
	mode  screen.Mode
	index int
}

// NewDirSource returns a Source reading frame dumps from dir, starting
// at index 0.
func NewDirSource(dir string, mode screen.Mode) *DirSource {
	return &DirSource{dir: dir, mode: mode}
}

func (s *DirSource) frameBasename() string {
	return fmt.Sprintf("%08d", s.index)
}

func (s *DirSource) Next() (*screen.MemoryImage, error) {
	base := s.frameBasename()
	mainPath := filepath.Join(s.dir, base+".bin")

	main, err := readFlat(mainPath)
	if os.IsNotExist(err) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("frame: reading %s: %w", mainPath, err)
	}

	img := main.ToMemoryImage(s.mode)

	if s.mode == screen.ModeDHGR {
		auxPath := filepath.Join(s.dir, base+".aux")
		aux, err := readFlat(auxPath)
		if err != nil {
			return nil, fmt.Errorf("frame: reading %s: %w", auxPath, err)
		}
		auxImg := aux.ToMemoryImage(s.mode)
		for page := screen.PageMin; page < screen.PageMax; page++ {
			for offset := 0; offset < screen.OffsetCount; offset++ {
				if screen.IsScreenHole(page, offset) {
					continue
				}
				img.WriteAux(page, offset, auxImg.Get(page, offset))
			}
		}
	}

	s.index++
	return img, nil
}

func readFlat(path string) (*screen.FlatMemoryMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) != 8192 {
		return nil, fmt.Errorf("frame: %s is %d bytes, want 8192", path, len(data))
	}
	flat := &screen.FlatMemoryMap{ScreenPage: 0}
	copy(flat.Data[:], data)
	return flat, nil
}
