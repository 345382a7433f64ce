// Package importer turns a directory of text files into clip records. Each
// file becomes a leaf named by its path relative to the root, and each
// directory with no entries at all becomes an empty group.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// DefaultMaxSize is the largest file imported when Options.MaxSize is zero.
const DefaultMaxSize int64 = 1 << 20

// Options controls a directory import.
type Options struct {
	// Extensions limits the import to files with these extensions
	// (e.g. ".txt"). Empty means every file.
	Extensions []string

	// Exclude contains glob patterns matched against slash-separated
	// relative paths. Matching files and directories are skipped.
	Exclude []string

	// MaxSize skips files larger than this many bytes. 0 means DefaultMaxSize.
	MaxSize int64

	// KeepExtension keeps file extensions in clip names.
	KeepExtension bool

	// IncludeHidden imports dot files and descends into dot directories.
	IncludeHidden bool
}

// Skipped records a path that was not imported and why.
type Skipped struct {
	Path   string
	Reason string
}

// Result is the outcome of an import.
type Result struct {
	// Records are sorted by relative path.
	Records []types.Record

	// Skipped lists files that could not or should not be imported.
	Skipped []Skipped
}

// ErrNotDirectory is returned when the import root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

type walker struct {
	root    string
	opts    Options
	exclude []glob.Glob

	mu      sync.Mutex
	records []types.Record
	skipped []Skipped
	dirs    map[string]bool // relative dir -> has any entry
}

// Directory walks root in parallel and returns a record for every importable
// file. Unreadable or binary files are reported in Result.Skipped rather than
// failing the import.
func Directory(ctx context.Context, root string, opts Options) (*Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	w := &walker{root: abs, opts: opts, dirs: make(map[string]bool)}
	for _, p := range opts.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		w.exclude = append(w.exclude, g)
	}

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, abs, w.callback(ctx))
	if err != nil && !errors.Is(err, fastwalk.ErrSkipFiles) {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for dir, filled := range w.dirs {
		if !filled {
			w.records = append(w.records, types.Record{Name: dir + types.Separator})
		}
	}

	slices.SortFunc(w.records, func(a, b types.Record) int {
		return strings.Compare(a.Name, b.Name)
	})
	slices.SortFunc(w.skipped, func(a, b Skipped) int {
		return strings.Compare(a.Path, b.Path)
	})
	return &Result{Records: w.records, Skipped: w.skipped}, nil
}

func (w *walker) callback(ctx context.Context) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fastwalk.ErrSkipFiles
		}

		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			w.skip(rel, err.Error())
			return nil
		}
		if rel == "." {
			return nil
		}

		w.mu.Lock()
		w.markParents(rel)
		w.mu.Unlock()

		if w.excluded(rel, d.Name()) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			w.mu.Lock()
			if _, ok := w.dirs[rel]; !ok {
				w.dirs[rel] = false
			}
			w.mu.Unlock()
			return nil
		}

		if d.Type().IsRegular() && w.wanted(d.Name()) {
			w.importFile(path, rel)
		}
		return nil
	}
}

func (w *walker) excluded(rel, name string) bool {
	if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	for _, g := range w.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func (w *walker) wanted(name string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range w.opts.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func (w *walker) importFile(path, rel string) {
	info, err := os.Stat(path)
	if err != nil {
		w.skip(rel, err.Error())
		return
	}
	if info.Size() > w.opts.MaxSize {
		w.skip(rel, fmt.Sprintf("larger than %d bytes", w.opts.MaxSize))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.skip(rel, err.Error())
		return
	}
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		w.skip(rel, "binary content")
		return
	}

	name := rel
	if !w.opts.KeepExtension {
		if ext := filepath.Ext(name); ext != "" && ext != name && !strings.HasSuffix(name, "/"+ext) {
			name = strings.TrimSuffix(name, ext)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, types.Record{Name: name, Text: string(data)})
}

// markParents flags every ancestor directory of rel as non-empty. Callers
// hold w.mu.
func (w *walker) markParents(rel string) {
	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		w.dirs[dir] = true
	}
}

func (w *walker) skip(rel, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.skipped = append(w.skipped, Skipped{Path: rel, Reason: reason})
}
