package store

import (
	"bytes"
	"errors"
	"os"

	"github.com/kjk/stockroom/stock"
)

// Appender appends items to stores in the same Store.
// It keeps files open until Close so that appending many
// items doesn't re-open the file for every item.
type Appender struct {
	s     *Store
	files map[string]*os.File
	buf   bytes.Buffer

	// if true, will call file.Sync() after every write
	SyncWrite bool
}

// NewAppender returns an appender for stores in s
func (s *Store) NewAppender() *Appender {
	return &Appender{
		s:     s,
		files: map[string]*os.File{},
	}
}

func (a *Appender) file(name string) (*os.File, error) {
	if f := a.files[name]; f != nil {
		return f, nil
	}
	f, err := os.OpenFile(a.s.Path(name), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	a.files[name] = f
	return f, nil
}

func (a *Appender) drop(name string) {
	if f := a.files[name]; f != nil {
		_ = f.Close()
		delete(a.files, name)
	}
}

// Append appends it to store name, creating the store if it doesn't exist.
// On error nothing is written for it. A file that failed to open or write
// is re-opened on the next Append to the same store.
func (a *Appender) Append(name string, it stock.Item) error {
	// encode first so that an invalid item doesn't need a file
	a.buf.Reset()
	if err := a.s.getCodec().Encode(&a.buf, it); err != nil {
		return err
	}
	f, err := a.file(name)
	if err != nil {
		return err
	}
	_, err = f.Write(a.buf.Bytes())
	if err == nil && a.SyncWrite {
		err = f.Sync()
	}
	if err != nil {
		a.drop(name)
		return err
	}
	return nil
}

// Close syncs and closes all files. It's safe to call more than once.
func (a *Appender) Close() error {
	var errs []error
	for name, f := range a.files {
		// https://www.joeshaw.org/dont-defer-close-on-writable-files/
		errs = append(errs, f.Sync(), f.Close())
		delete(a.files, name)
	}
	return errors.Join(errs...)
}

// Append appends items to store name, creating the store if needed
func (s *Store) Append(name string, items ...stock.Item) error {
	a := s.NewAppender()
	for _, it := range items {
		if err := a.Append(name, it); err != nil {
			_ = a.Close()
			return err
		}
	}
	return a.Close()
}
