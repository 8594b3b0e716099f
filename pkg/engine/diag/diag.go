// Package diag is the diagnostic sink shared by the registry, the control
// generator and the pop-up menu engine.
//
// Configuration errors are reported once per distinct message. Programming
// errors panic when the sink is strict (development builds) and are logged
// and ignored otherwise, so a stray notification never corrupts state.
package diag

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/gookit/color"
	"github.com/zyedidia/generic/mapset"
	"golang.org/x/term"
)

// Level is the severity of a diagnostic line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	styleDebug = color.Style{color.FgGray}
	styleInfo  = color.Style{color.FgBlue}
	styleWarn  = color.Style{color.FgYellow, color.OpBold}
	styleError = color.Style{color.FgRed, color.OpBold}
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "?"
}

func (l Level) style() color.Style {
	switch l {
	case LevelDebug:
		return styleDebug
	case LevelWarn:
		return styleWarn
	case LevelError:
		return styleError
	}
	return styleInfo
}

// Sink writes levelled diagnostics to a logger.
type Sink struct {
	mu       sync.Mutex
	logger   *log.Logger
	colored  bool
	verbose  bool
	strict   bool
	reported mapset.Set[string]
}

// Option configures a Sink.
type Option func(*Sink)

// WithVerbose enables debug output.
func WithVerbose(v bool) Option {
	return func(s *Sink) { s.verbose = v }
}

// WithStrict makes programming errors fatal.
func WithStrict(v bool) Option {
	return func(s *Sink) { s.strict = v }
}

// WithColor forces coloured level prefixes on or off.
func WithColor(v bool) Option {
	return func(s *Sink) { s.colored = v }
}

// New creates a sink writing to w. Colour is enabled only when w is a terminal.
func New(w io.Writer, opts ...Option) *Sink {
	s := &Sink{
		logger:   log.New(w, "", log.LstdFlags),
		reported: mapset.New[string](),
	}
	if f, ok := w.(*os.File); ok {
		s.colored = term.IsTerminal(int(f.Fd()))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	defaultSink = New(os.Stderr)
	defaultMu   sync.RWMutex
)

// Default returns the process-wide sink.
func Default() *Sink {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultSink
}

// SetDefault replaces the process-wide sink.
func SetDefault(s *Sink) {
	if s == nil {
		return
	}
	defaultMu.Lock()
	defaultSink = s
	defaultMu.Unlock()
}

// Or returns s, or the default sink when s is nil.
func Or(s *Sink) *Sink {
	if s != nil {
		return s
	}
	return Default()
}

// Strict reports whether programming errors are fatal.
func (s *Sink) Strict() bool {
	return s.strict
}

func (s *Sink) output(l Level, msg string) {
	if l == LevelDebug && !s.verbose {
		return
	}
	prefix := "[" + l.String() + "]"
	if s.colored {
		prefix = l.style().Sprint(prefix)
	}
	s.logger.Print(prefix + " " + msg)
}

// Debugf logs at debug level (only when verbose).
func (s *Sink) Debugf(format string, args ...any) {
	s.output(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs at info level.
func (s *Sink) Infof(format string, args ...any) {
	s.output(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs at warn level.
func (s *Sink) Warnf(format string, args ...any) {
	s.output(LevelWarn, fmt.Sprintf(format, args...))
}

// ConfigError reports a configuration error. Each distinct message is
// reported once; it returns false when the message was already reported.
func (s *Sink) ConfigError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	s.mu.Lock()
	seen := s.reported.Has(msg)
	if !seen {
		s.reported.Put(msg)
	}
	s.mu.Unlock()
	if seen {
		return false
	}
	s.output(LevelError, "configuration: "+msg)
	return true
}

// ProgrammingError reports a broken invariant such as a double release.
// Strict sinks panic; others log and let the caller no-op.
func (s *Sink) ProgrammingError(err error) {
	if err == nil {
		return
	}
	if s.strict {
		panic(err)
	}
	s.output(LevelWarn, "ignored: "+err.Error())
}
