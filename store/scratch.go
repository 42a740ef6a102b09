package store

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/kjk/stockroom/stock"
	"github.com/kjk/stockroom/u"
)

// Some references:
// - https://www.slideshare.net/nan1nan1/eat-my-data
// - https://lwn.net/Articles/457667/

// ErrDiscarded is returned by Write and Commit after Discard
var ErrDiscarded = errors.New("scratch file discarded")

// scratchFile is written next to its destination and only replaces
// the destination on a successful Commit. Until then the destination
// is untouched and any failure removes the scratch file.
type scratchFile struct {
	dstPath string
	dir     string
	tmpFile *os.File
	tmpPath string
	// first error, sticky
	err error
}

func (s *Store) newScratch(dstPath string) (*scratchFile, error) {
	dir, fName := filepath.Split(dstPath)
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if fName == "" {
		return nil, &os.PathError{Op: "open", Path: dstPath, Err: os.ErrInvalid}
	}
	createTemp := s.createTemp
	if createTemp == nil {
		createTemp = os.CreateTemp
	}
	tmpFile, err := createTemp(dir, fName+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &scratchFile{
		dstPath: dstPath,
		dir:     dir,
		tmpFile: tmpFile,
		tmpPath: tmpFile.Name(),
	}, nil
}

func (f *scratchFile) Write(d []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.tmpFile.Write(d)
	if err != nil {
		f.err = err
		f.Discard()
	}
	return n, err
}

func (f *scratchFile) closed() bool {
	return f.tmpFile == nil
}

// Discard removes the scratch file if it wasn't committed yet.
// It's a no-op after Commit so it can be deferred.
func (f *scratchFile) Discard() {
	if f == nil || f.closed() {
		return
	}
	if f.err == nil {
		f.err = ErrDiscarded
	}
	_ = f.tmpFile.Close()
	f.tmpFile = nil
	_ = os.Remove(f.tmpPath)
}

// Commit syncs the scratch file and renames it over the destination.
// On error the scratch file is removed and the destination is untouched.
func (f *scratchFile) Commit() error {
	if f.closed() {
		return f.err
	}
	if f.err != nil {
		f.Discard()
		return f.err
	}
	tmpFile := f.tmpFile
	f.tmpFile = nil

	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	err := tmpFile.Sync()
	errClose := tmpFile.Close()
	if err == nil {
		err = errClose
	}
	if err == nil {
		// rename replaces dstPath atomically if it exists
		err = os.Rename(f.tmpPath, f.dstPath)
	}
	if err != nil {
		_ = os.Remove(f.tmpPath)
		f.err = err
		return err
	}
	// for extra protection against crashes, sync directory after rename
	// ignore errors as those are a nice have, not must have
	if fdir, _ := os.Open(f.dir); fdir != nil {
		_ = fdir.Sync()
		_ = fdir.Close()
	}
	return nil
}

// WriteFileAtomic writes d to path only if the whole write succeeds
func (s *Store) WriteFileAtomic(path string, d []byte) error {
	f, err := s.newScratch(path)
	if err != nil {
		return err
	}
	defer f.Discard()
	if _, err = f.Write(d); err != nil {
		return err
	}
	return f.Commit()
}

// Create writes a new store name with items, replacing the store if
// it exists. The store is only replaced if all items were written.
// Store names ending with .gz, .zst or .br are written compressed.
func (s *Store) Create(name string, items iter.Seq[stock.Item]) error {
	path := s.Path(name)
	f, err := s.newScratch(path)
	if err != nil {
		return err
	}
	defer f.Discard()

	bw := bufio.NewWriter(f)
	cw, err := u.NewCompressingWriter(bw, path)
	if err != nil {
		return err
	}
	cwClosed := false
	defer func() {
		if !cwClosed {
			_ = cw.Close()
		}
	}()
	for it := range items {
		if err = s.getCodec().Encode(cw, it); err != nil {
			return fmt.Errorf("store '%s': %w", name, err)
		}
	}
	cwClosed = true
	if err = cw.Close(); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	return f.Commit()
}
