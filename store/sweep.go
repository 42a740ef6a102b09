package store

import (
	"bufio"
	"fmt"
	"os"

	"github.com/kjk/stockroom/u"
)

// SweepStats describes the result of Sweep
type SweepStats struct {
	Kept    int
	Dropped int
}

// Sweep rewrites store name without expired records, keeping the order
// of the remaining records.
//
// The new content is written to a scratch file which replaces the store
// only after it was fully written. If anything fails (the store can't be
// read, a record is malformed, the scratch file can't be created or
// written) the store is left unchanged and an error is returned.
// Sweeping a store twice is the same as sweeping it once.
func (s *Store) Sweep(name string) (*SweepStats, error) {
	path := s.Path(name)
	// compressed stores can be read but not rewritten
	if u.CompressionFromPath(path) != u.CompressionNone {
		return nil, fmt.Errorf("store '%s': can't sweep a compressed store", name)
	}
	// check the source first, we don't want to create a scratch file
	// for a store that doesn't exist
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src.Close()

	scratch, err := s.newScratch(path)
	if err != nil {
		return nil, fmt.Errorf("store '%s': failed to create scratch file: %w", name, err)
	}
	defer scratch.Discard()

	w := bufio.NewWriter(scratch)
	stats := &SweepStats{}
	items, errFn := s.Items(name)
	for it := range items {
		if it.Expired() {
			stats.Dropped++
			if s.OnDrop != nil {
				s.OnDrop(name, it)
			}
			continue
		}
		if err = s.getCodec().Encode(w, it); err != nil {
			return nil, fmt.Errorf("store '%s': %w", name, err)
		}
		stats.Kept++
	}
	if err = errFn(); err != nil {
		return nil, err
	}
	if err = w.Flush(); err != nil {
		return nil, fmt.Errorf("store '%s': %w", name, err)
	}
	if err = scratch.Commit(); err != nil {
		return nil, fmt.Errorf("store '%s': %w", name, err)
	}
	return stats, nil
}
