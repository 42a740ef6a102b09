package log

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFile appends to <Dir>/YYYY-MM-DD.txt and moves to a new file
// when the UTC day changes. The directory and file are created on the
// first write. A nil *DailyFile discards everything written to it.
type DailyFile struct {
	Dir string

	mu  sync.Mutex
	f   *os.File
	day string
	now func() time.Time
}

func NewDailyFile(dir string) *DailyFile {
	return &DailyFile{Dir: dir, now: time.Now}
}

func (w *DailyFile) today() string {
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	return now().UTC().Format("2006-01-02")
}

// Path returns the path of the file written today
func (w *DailyFile) Path() string {
	return filepath.Join(w.Dir, w.today()+".txt")
}

// must hold w.mu
func (w *DailyFile) current() (*os.File, error) {
	day := w.today()
	if w.f != nil && w.day == day {
		return w.f, nil
	}
	if err := w.closeLocked(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(w.Dir, day+".txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	w.f, w.day = f, day
	return f, nil
}

func (w *DailyFile) Write(d []byte) (int, error) {
	if w == nil {
		return len(d), nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.current()
	if err != nil {
		return 0, err
	}
	return f.Write(d)
}

func (w *DailyFile) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *DailyFile) closeLocked() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f, w.day = nil, ""
	return err
}

// Close syncs and closes the current file. Writing after Close reopens it.
func (w *DailyFile) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f != nil {
		_ = w.f.Sync()
	}
	return w.closeLocked()
}
