package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// minRectLength pads degenerate bounds; rtreego rejects zero-size
// rectangles.
const minRectLength = 1e-9

// FileEntry is the indexed metadata for one interchange file on disk.
type FileEntry struct {
	Path     string    // absolute path to the .geojson file
	Name     string    // base name without extension
	Bound    orb.Bound // union bound over the file's features
	Features int       // feature count
}

// Bounds implements rtreego.Spatial.
func (e FileEntry) Bounds() rtreego.Rect {
	point := rtreego.Point{e.Bound.Min[0], e.Bound.Min[1]}
	lengths := []float64{
		e.Bound.Max[0] - e.Bound.Min[0],
		e.Bound.Max[1] - e.Bound.Min[1],
	}
	for i := range lengths {
		if lengths[i] < minRectLength {
			lengths[i] = minRectLength
		}
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// FileIndex answers "which extract files intersect this region" without
// opening the files again. Queries go through an R-tree.
type FileIndex struct {
	entries []FileEntry
	rtree   *rtreego.Rtree
}

// NewFileIndex builds an index over pre-scanned entries.
func NewFileIndex(entries []FileEntry) *FileIndex {
	rtree := rtreego.NewTree(2, 25, 50)
	for _, e := range entries {
		rtree.Insert(e)
	}
	return &FileIndex{entries: entries, rtree: rtree}
}

// BuildFileIndex scans a directory tree for .geojson files and indexes
// each by the union bound of its features. Files that fail to parse or
// contain no bounded feature are logged and left out.
func BuildFileIndex(root string, log *zap.Logger) (*FileIndex, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".geojson" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no extract files found in %s", root)
	}

	var entries []FileEntry
	for _, path := range paths {
		entry, err := scanFile(path)
		if err != nil {
			log.Warn("extract file not indexed", zap.String("path", path), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no extract file in %s could be indexed", root)
	}
	return NewFileIndex(entries), nil
}

func scanFile(path string) (FileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileEntry{}, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return FileEntry{}, err
	}

	var bound orb.Bound
	has := false
	count := 0
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		count++
		b := f.Geometry.Bound()
		if !has {
			bound = b
			has = true
			continue
		}
		bound = bound.Union(b)
	}
	if !has {
		return FileEntry{}, fmt.Errorf("no bounded feature in %s", path)
	}

	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	return FileEntry{Path: path, Name: name, Bound: bound, Features: count}, nil
}

// Query returns the entries whose bound intersects the query bound,
// sorted by name for stable iteration order.
func (idx *FileIndex) Query(bound orb.Bound) []FileEntry {
	probe := FileEntry{Bound: bound}
	spatials := idx.rtree.SearchIntersect(probe.Bounds())

	result := make([]FileEntry, 0, len(spatials))
	for _, spatial := range spatials {
		result = append(result, spatial.(FileEntry))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Count returns the number of indexed files.
func (idx *FileIndex) Count() int { return len(idx.entries) }

// Bound returns the union bound over every indexed file.
func (idx *FileIndex) Bound() (orb.Bound, bool) {
	if len(idx.entries) == 0 {
		return orb.Bound{}, false
	}
	bound := idx.entries[0].Bound
	for _, e := range idx.entries[1:] {
		bound = bound.Union(e.Bound)
	}
	return bound, true
}

// All returns every indexed entry.
func (idx *FileIndex) All() []FileEntry { return idx.entries }
