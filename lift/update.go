// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lift

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kortschak/liftgff/align"
)

// FileError is the error returned by Updater.Update, identifying the file
// that could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// Recorder is a persistent record of line classifications.
type Recorder interface {
	Record(path string, r *Result) error
}

// Updater rewrites GFF3 files using an alignment index.
type Updater struct {
	Index *align.Index

	// UpdatedPostfix and RemovedPostfix are inserted
	// before the extension of an input file name to
	// give the names of the output files.
	UpdatedPostfix string
	RemovedPostfix string

	// DOTPrefix, if not empty, is prepended to the base
	// name of each input to give the path of a DOT file
	// describing its feature hierarchy.
	DOTPrefix string

	// Recorder, if not nil, is given every classification.
	Recorder Recorder

	// Log receives progress messages if not nil.
	Log *log.Logger

	regions map[string]align.Region
}

// OutputPaths returns the names of the updated and removed files for the
// GFF3 file at path.
func OutputPaths(path, updatedPostfix, removedPostfix string) (updated, removed string) {
	// Leading dots do not start an extension.
	ext := filepath.Ext(strings.TrimLeft(filepath.Base(path), "."))
	root := path[:len(path)-len(ext)]
	return root + updatedPostfix + ext, root + removedPostfix + ext
}

// Update rewrites the GFF3 file at path, writing the updated and removed
// features to the files named by OutputPaths. If an error is returned,
// no output is left for path.
func (u *Updater) Update(path string) (Counts, error) {
	u.logf("processing GFF3 file: %s", path)
	f, err := os.Open(path)
	if err != nil {
		return Counts{}, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	t, err := Build(f)
	if err != nil {
		return Counts{}, &FileError{Path: path, Err: err}
	}
	u.logf("  total features: %d", t.Features)

	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return Counts{}, &FileError{Path: path, Err: err}
	}
	res, err := Classify(f, t, u.Index)
	if err != nil {
		return Counts{}, &FileError{Path: path, Err: err}
	}

	if u.regions == nil {
		u.regions = u.Index.Regions()
	}
	updated, removed := OutputPaths(path, u.UpdatedPostfix, u.RemovedPostfix)
	var c Counts
	err = writePair(updated, removed, func(uw, rw io.Writer) error {
		var err error
		c, err = res.Emit(uw, rw, u.regions)
		return err
	})
	if err != nil {
		return Counts{}, &FileError{Path: path, Err: err}
	}
	u.logf("  updated features: %d", c.Updated)
	u.logf("  removed features: %d", c.Removed)

	if u.DOTPrefix != "" {
		dotPath := u.DOTPrefix + filepath.Base(path) + ".dot"
		err = writeDOTFile(dotPath, path, res)
		if err != nil {
			return c, &FileError{Path: path, Err: err}
		}
		u.logf("  wrote hierarchy to %s", dotPath)
	}
	if u.Recorder != nil {
		err = u.Recorder.Record(path, res)
		if err != nil {
			return c, &FileError{Path: path, Err: err}
		}
	}
	return c, nil
}

func (u *Updater) logf(format string, args ...interface{}) {
	if u.Log != nil {
		u.Log.Printf(format, args...)
	}
}

// writePair calls fn with writers to temporary files that are renamed to
// the updated and removed paths only if fn and both closes succeed.
func writePair(updated, removed string, fn func(uw, rw io.Writer) error) (err error) {
	uf, err := tempFor(updated)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(uf.Name())
		}
	}()
	defer uf.Close()

	rf, err := tempFor(removed)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(rf.Name())
		}
	}()
	defer rf.Close()

	err = fn(uf, rf)
	if err != nil {
		return err
	}
	err = uf.Close()
	if err != nil {
		return err
	}
	err = rf.Close()
	if err != nil {
		return err
	}
	err = os.Rename(uf.Name(), updated)
	if err != nil {
		return err
	}
	err = os.Rename(rf.Name(), removed)
	if err != nil {
		os.Remove(updated)
	}
	return err
}

// tempFor returns a temporary file in the directory of path.
func tempFor(path string) (*os.File, error) {
	f, err := ioutil.TempFile(filepath.Dir(path), filepath.Base(path)+"-*")
	if err != nil {
		return nil, err
	}
	err = f.Chmod(0o664)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	return f, nil
}
