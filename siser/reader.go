package siser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Reader reads entries framed with MarshalLine.
// Entries must have been written with a timestamp.
type Reader struct {
	r *bufio.Reader

	// Data / Name / Timestamp are available after ReadNext.
	// They are over-written in next ReadNext.
	Data      []byte
	Name      string
	Timestamp time.Time

	err  error
	done bool
}

// NewReader creates a new reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r: bufio.NewReader(r),
	}
}

// ReadNext reads the next entry. Returns false when there are no more
// entries. If returns false, check Err() to see if there were errors.
func (r *Reader) ReadNext() bool {
	if r.err != nil || r.done {
		return false
	}
	hdr, err := r.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(hdr) == 0 {
			r.done = true
		} else {
			r.err = fmt.Errorf("truncated header '%s'", string(hdr))
		}
		return false
	}
	rest, ok := bytes.CutPrefix(hdr[:len(hdr)-1], hdrPrefix)
	if !ok {
		r.err = fmt.Errorf("header '%s' doesn't start with '%s'", string(hdr), hdrPrefix)
		return false
	}
	// ${size} ${timestamp} [${name}]
	parts := bytes.SplitN(rest, []byte{' '}, 3)
	if len(parts) < 2 {
		r.err = fmt.Errorf("unexpected header '%s'", string(hdr))
		return false
	}
	size, err := strconv.Atoi(string(parts[0]))
	if err != nil || size < 0 {
		r.err = fmt.Errorf("invalid size in header '%s'", string(hdr))
		return false
	}
	timeMs, err := strconv.ParseInt(string(parts[1]), 10, 64)
	if err != nil {
		r.err = fmt.Errorf("invalid timestamp in header '%s'", string(hdr))
		return false
	}
	r.Timestamp = TimeFromUnixMillisecond(timeMs)
	r.Name = ""
	if len(parts) == 3 {
		r.Name = string(parts[2])
	}

	r.Data = make([]byte, size)
	if _, err = io.ReadFull(r.r, r.Data); err != nil {
		r.err = err
		return false
	}
	// MarshalLine pads data that doesn't end with '\n'
	if size > 0 && r.Data[size-1] != '\n' {
		if _, err = r.r.Discard(1); err != nil {
			r.err = err
			return false
		}
	}
	return true
}

// Err returns error from last ReadNext. io.EOF is not an error.
func (r *Reader) Err() error {
	return r.err
}
