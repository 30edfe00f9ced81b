package dots

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KrisKennaway/ii-vision-sub000/screen"
	"go.uber.org/zap"
)

// cacheEntry is the gob-serialized form of Tables: the exported fields
// of the unexported sub/err arrays, since gob cannot see unexported
// struct fields directly.
type cacheEntry struct {
	Mode    screen.Mode
	Palette screen.Palette
	Sub     [4][]uint16
	Err     [4][]uint16
}

// cacheFileName returns the on-disk name for a (mode, palette) table
// set, per spec.md §7's requirement that tables are memoized across
// runs rather than rebuilt from scratch every time.
func cacheFileName(mode screen.Mode, pal screen.Palette) string {
	return fmt.Sprintf("distance-%s-%s.gob.gz", mode, pal)
}

// LoadOrBuild returns the distance tables for (mode, palette), reading
// them from dir if a cache file is present and well-formed, or building
// them fresh and writing the cache back otherwise. A corrupt or
// unreadable cache file is logged as a warning and discarded rather
// than treated as fatal, matching the teacher's policy of degrading
// gracefully on bad cache state rather than aborting a run over it.
func LoadOrBuild(dir string, mode screen.Mode, pal screen.Palette, log *zap.Logger) *Tables {
	path := filepath.Join(dir, cacheFileName(mode, pal))

	if t, err := loadCache(path, mode, pal); err == nil {
		log.Debug("loaded distance table cache", zap.String("path", path))
		return t
	} else if !os.IsNotExist(err) {
		log.Warn("discarding corrupt distance table cache, rebuilding",
			zap.String("path", path), zap.Error(err))
	}

	t := Build(mode, pal)
	if err := saveCache(path, t); err != nil {
		log.Warn("failed to write distance table cache", zap.String("path", path), zap.Error(err))
	}
	return t
}

func loadCache(path string, mode screen.Mode, pal screen.Palette) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(gz).Decode(&entry); err != nil {
		return nil, err
	}
	if entry.Mode != mode || entry.Palette != pal {
		return nil, fmt.Errorf("dots: cache %s holds mode=%s palette=%s, want mode=%s palette=%s",
			path, entry.Mode, entry.Palette, mode, pal)
	}
	for _, class := range classesForMode(mode) {
		if len(entry.Sub[class]) == 0 || len(entry.Err[class]) == 0 {
			return nil, fmt.Errorf("dots: cache %s missing table for class %d", path, class)
		}
	}

	return &Tables{Mode: entry.Mode, Palette: entry.Palette, sub: entry.Sub, err: entry.Err}, nil
}

func saveCache(path string, t *Tables) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(f)
	enc := gob.NewEncoder(gz)
	entry := cacheEntry{Mode: t.Mode, Palette: t.Palette, Sub: t.sub, Err: t.err}
	encErr := enc.Encode(entry)
	closeErr := gz.Close()
	f.Close()
	if encErr != nil {
		os.Remove(tmp)
		return encErr
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}
	return os.Rename(tmp, path)
}
