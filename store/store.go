package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/kjk/stockroom/codec"
	"github.com/kjk/stockroom/stock"
	"github.com/kjk/stockroom/u"
)

// Store is a directory of record files, each a sequence of items
// encoded with the same Codec.
//
// Names of stores are file names within Dir. A name ending with .gz,
// .zst or .br is read (but never appended to) as a compressed file.
type Store struct {
	Dir   string
	Codec codec.Codec

	// if set, called by Sweep for every expired record it drops
	OnDrop func(name string, it stock.Item)

	// creates scratch files, replaceable in tests
	createTemp func(dir, pattern string) (*os.File, error)
}

// New returns a store for files in dir using codec c.
// If c is nil, codec.Default is used.
func New(dir string, c codec.Codec) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{
		Dir:        dir,
		Codec:      c,
		createTemp: os.CreateTemp,
	}
}

func (s *Store) getCodec() codec.Codec {
	if s.Codec == nil {
		return codec.Default
	}
	return s.Codec
}

// Path returns path of the file for store name
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Exists returns true if store name exists
func (s *Store) Exists(name string) bool {
	return u.FileExists(s.Path(name))
}

// IsNotFound returns true if err means that a store doesn't exist
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Items returns an iterator over items in store name, in stored order.
// Call the returned error function after iteration to check for errors.
// Decoding stops at the first malformed record. A missing store is an
// error for which IsNotFound() is true.
func (s *Store) Items(name string) (iter.Seq[stock.Item], func() error) {
	var iterErr error

	seq := func(yield func(stock.Item) bool) {
		iterErr = nil
		r, err := u.OpenFileMaybeCompressed(s.Path(name))
		if err != nil {
			iterErr = err
			return
		}
		defer r.Close()

		dec := s.getCodec().NewDecoder(r)
		for {
			it, err := dec.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				iterErr = fmt.Errorf("store '%s': %w", name, err)
				return
			}
			if !yield(it) {
				return
			}
		}
	}

	return seq, func() error { return iterErr }
}

// ReadAll returns all items in store name.
// On error it also returns items decoded before the error.
func (s *Store) ReadAll(name string) ([]stock.Item, error) {
	var res []stock.Item
	items, errFn := s.Items(name)
	for it := range items {
		res = append(res, it)
	}
	return res, errFn()
}

// Count returns number of records in store name, regardless of expiry.
// A missing store has 0 records and is not an error.
// For malformed store, returns number of records before the malformed one
// and an error.
func (s *Store) Count(name string) (int, error) {
	n := 0
	items, errFn := s.Items(name)
	for range items {
		n++
	}
	err := errFn()
	if IsNotFound(err) {
		return 0, nil
	}
	return n, err
}
