// Package walk runs the converter over a file or a directory tree.
package walk

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	cgbi "github.com/928799934/cgbi-png-fix"
	"github.com/928799934/cgbi-png-fix/internal/log"
)

// Walker converts Source into Target. A file source is written to Target, or into it when Target
// is an existing directory. A directory source is mirrored below Target.
type Walker struct {
	Source, Target string
	// Workers bounds how many files are converted at once. Values below 1 mean 1.
	Workers int
	// Level is passed to cgbi.Codec.
	Level int
	// CopyPlain copies PNG files without a CgBI chunk to their target.
	CopyPlain bool
	// Strict turns a PNG signature mismatch into a failure.
	Strict bool
}

// FileError is the failure of one file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// Report lists what happened to every .png file the walk found. Paths are source paths.
type Report struct {
	mu        sync.Mutex
	Converted []string
	Copied    []string
	Skipped   []string
	Failed    []FileError
}

// Total is the number of files in the report.
func (r *Report) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Converted) + len(r.Copied) + len(r.Skipped) + len(r.Failed)
}

type outcome int

const (
	converted outcome = iota
	copied
	skipped
)

func (r *Report) add(path string, o outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case err != nil:
		r.Failed = append(r.Failed, FileError{Path: path, Err: err})
	case o == converted:
		r.Converted = append(r.Converted, path)
	case o == copied:
		r.Copied = append(r.Copied, path)
	default:
		r.Skipped = append(r.Skipped, path)
	}
}

func isPNGName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".png")
}

// Run converts every .png file below Source. Files that fail are recorded in the report and do
// not stop the walk; Run returns an error when any file failed or the walk could not complete.
// Once ctx is done no further file is started, but files already started are finished.
func (w *Walker) Run(ctx context.Context) (*Report, error) {
	report := new(Report)
	info, err := os.Stat(w.Source)
	if err != nil {
		return report, errors.Wrapf(err, "stat source %q", w.Source)
	}
	if !info.IsDir() {
		if !isPNGName(w.Source) {
			log.Debug(ctx, "ignoring non-png source", zap.String("source", w.Source))
			return report, nil
		}
		dst, err := w.targetPath(w.Source, false)
		if err != nil {
			return report, err
		}
		w.convert(ctx, w.Source, dst, report)
		return report, failures(report)
	}

	if tinfo, err := os.Stat(w.Target); err == nil && !tinfo.IsDir() {
		return report, errors.Errorf("target %q is a file but source %q is a directory", w.Target, w.Source)
	}
	workers := w.Workers
	if workers < 1 {
		workers = 1
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	walkErr := filepath.WalkDir(w.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walk %q", path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			// Output written below the source must not be walked again.
			if path != w.Source && filepath.Clean(path) == filepath.Clean(w.Target) {
				return fs.SkipDir
			}
			return nil
		}
		if !isPNGName(d.Name()) {
			return nil
		}
		dst, err := w.targetPath(path, true)
		if err != nil {
			report.add(path, skipped, err)
			return nil
		}
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			w.convert(ctx, path, dst, report)
			return nil
		})
		return nil
	})
	eg.Wait() //nolint:errcheck // tasks record failures in the report
	if walkErr != nil {
		return report, walkErr
	}
	return report, failures(report)
}

func failures(r *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Failed) == 0 {
		return nil
	}
	total := len(r.Converted) + len(r.Copied) + len(r.Skipped) + len(r.Failed)
	return errors.Errorf("%d of %d files failed, first: %v", len(r.Failed), total, r.Failed[0])
}

// targetPath maps a source file onto the target tree.
func (w *Walker) targetPath(file string, fromDir bool) (string, error) {
	if !fromDir {
		if info, err := os.Stat(w.Target); err == nil && info.IsDir() {
			return filepath.Join(w.Target, filepath.Base(file)), nil
		}
		return w.Target, nil
	}
	rel, err := filepath.Rel(w.Source, file)
	if err != nil {
		return "", errors.Wrapf(err, "relativize %q", file)
	}
	return filepath.Join(w.Target, rel), nil
}

// convert converts one file and records the outcome.
func (w *Walker) convert(ctx context.Context, src, dst string, report *Report) {
	ctx = log.Child(ctx, "", zap.String("source", src), zap.String("target", dst))
	o, err := w.convertFile(ctx, src, dst)
	switch {
	case err != nil:
		log.Error(ctx, "conversion failed", zap.Error(err))
	case o == converted:
		log.Info(ctx, "converted")
	case o == copied:
		log.Info(ctx, "copied")
	}
	report.add(src, o, err)
}

func (w *Walker) convertFile(ctx context.Context, src, dst string) (outcome, error) {
	f, err := os.Open(src)
	if err != nil {
		return skipped, errors.Wrapf(err, "open %q", src)
	}
	defer f.Close()
	s, err := cgbi.ReadStream(f)
	if err != nil {
		return skipped, err
	}
	if s == nil {
		if w.Strict {
			return skipped, cgbi.ErrNotPNG
		}
		log.Debug(ctx, "skipping file without PNG signature")
		return skipped, nil
	}
	if !s.IsCgBI() {
		if !w.CopyPlain {
			log.Debug(ctx, "skipping PNG without CgBI chunk")
			return skipped, nil
		}
		return copied, writeFile(dst, s, nil)
	}
	idat, err := cgbi.Codec{Level: w.Level}.Rebuild(ctx, s)
	if err != nil {
		return skipped, err
	}
	return converted, writeFile(dst, s, &idat)
}
