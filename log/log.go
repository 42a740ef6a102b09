package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kjk/stockroom/siser"

	"github.com/toon-format/toon-go"
)

var (
	mu sync.Mutex

	logFile    *DailyFile
	errorsFile *DailyFile
	eventsFile *DailyFile

	// Logf() prints here in addition to the log file
	out   io.Writer = os.Stdout
	runID string

	// if true, Verbosef() will log messages
	Verbose bool
)

type Config struct {
	// Dir has one sub-directory per kind of log: log, errors, events.
	// If empty, Logf() only prints to Out and events are dropped.
	Dir string
	// Out replaces os.Stdout for Logf()
	Out io.Writer
}

// Init sets up logging. It can be called again after Close.
func Init(config *Config) {
	mu.Lock()
	defer mu.Unlock()
	if config.Out != nil {
		out = config.Out
	}
	if config.Dir == "" {
		return
	}
	logFile = NewDailyFile(filepath.Join(config.Dir, "log"))
	errorsFile = NewDailyFile(filepath.Join(config.Dir, "errors"))
	// files are created lazily so a run without events leaves no events file
	eventsFile = NewDailyFile(filepath.Join(config.Dir, "events"))
}

// Close closes log files and goes back to logging to stdout only
func Close() {
	mu.Lock()
	defer mu.Unlock()
	for _, f := range []**DailyFile{&logFile, &errorsFile, &eventsFile} {
		(*f).Close()
		*f = nil
	}
	out = os.Stdout
	runID = ""
}

// SetRunID sets the id stamped on every event
func SetRunID(id string) {
	mu.Lock()
	runID = id
	mu.Unlock()
}

// EventsPath returns today's events file or "" when not logging to files
func EventsPath() string {
	mu.Lock()
	defer mu.Unlock()
	if eventsFile == nil {
		return ""
	}
	return eventsFile.Path()
}

func Logf(format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	mu.Lock()
	w, f := out, logFile
	mu.Unlock()
	io.WriteString(w, s)
	f.WriteString(s)
}

func Verbosef(format string, args ...any) {
	if Verbose {
		Logf(format, args...)
	}
}

type logfWriter struct{}

func (logfWriter) Write(d []byte) (int, error) {
	Logf("%s", d)
	return len(d), nil
}

// Writer returns an io.Writer that sends everything through Logf
func Writer() io.Writer {
	return logfWriter{}
}

// Callstack returns "file:line" of the callers, skipping skip frames
// above Callstack itself
func Callstack(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var lines []string
	for {
		fr, more := frames.Next()
		if strings.HasPrefix(fr.Function, "runtime.") {
			break
		}
		lines = append(lines, fr.File+":"+strconv.Itoa(fr.Line))
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// Errorf logs the message with Logf and records it with the callstack
// in the errors log
func Errorf(format string, args ...any) {
	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	Logf("%s", s)
	mu.Lock()
	f := errorsFile
	mu.Unlock()
	f.WriteString(s + Callstack(1) + "\n")
}

// IfErrf logs err if it's not nil and reports whether it did.
// IfErrf(err) logs err.Error(), IfErrf(err, format, args...) logs
// the formatted message instead.
func IfErrf(err error, a ...any) bool {
	if err == nil {
		return false
	}
	if len(a) == 0 {
		Errorf("%s", err.Error())
		return true
	}
	format, ok := a[0].(string)
	if !ok {
		format = fmt.Sprint(a[0])
	}
	Errorf(format, a[1:]...)
	return true
}

// Event records a toon-encoded map of key / value pairs as one siser
// record named name. Keys must be strings.
func Event(name string, kv ...any) {
	mu.Lock()
	f, id := eventsFile, runID
	mu.Unlock()
	if f == nil {
		return
	}
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("log.Event(%s): odd number of key / value args", name))
	}
	m := make(map[string]any, len(kv)/2+1)
	if id != "" {
		m["run"] = id
	}
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("log.Event(%s): key %v is %T, not string", name, kv[i], kv[i]))
		}
		m[k] = kv[i+1]
	}
	d, err := toon.Marshal(m)
	if err != nil {
		Logf("log.Event: toon.Marshal() failed with '%s'\n", err)
		return
	}
	f.Write(siser.MarshalLine(name, time.Now().UTC(), d, nil))
}
