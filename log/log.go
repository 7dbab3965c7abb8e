// Package log provides the leveled, key/value logger used throughout the
// simulator. It follows the same call convention as go-ethereum's `log`
// package (log.Info("message", "key", value, ...)), which the teacher
// repo imports as github.com/probeum/go-probeum/log.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl is a logging level.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

var lvlNames = map[Lvl]string{
	LvlCrit:  "CRIT",
	LvlError: "ERROR",
	LvlWarn:  "WARN",
	LvlInfo:  "INFO",
	LvlDebug: "DEBUG",
	LvlTrace: "TRACE",
}

var lvlColors = map[Lvl]int{
	LvlCrit:  35, // magenta
	LvlError: 31, // red
	LvlWarn:  33, // yellow
	LvlInfo:  32, // green
	LvlDebug: 36, // cyan
	LvlTrace: 90, // gray
}

// Logger writes leveled, contextual log lines to an underlying writer.
type Logger struct {
	ctx   []interface{}
	mu    *sync.Mutex
	out   io.Writer
	color bool
	level Lvl
}

var root = New()

// Root returns the root logger of the process.
func Root() *Logger { return root }

// New creates a Logger. Variadic ctx pairs ("key", value, ...) are prepended
// to every line emitted through it, mirroring log.New("peer", id) in the
// teacher's handler.go.
func New(ctx ...interface{}) *Logger {
	out := colorable.NewColorable(os.Stderr)
	return &Logger{
		ctx:   ctx,
		mu:    new(sync.Mutex),
		out:   out,
		color: isatty.IsTerminal(os.Stderr.Fd()),
		level: LvlInfo,
	}
}

// SetLevel bounds which levels are actually written.
func (l *Logger) SetLevel(lvl Lvl) { l.level = lvl }

func (l *Logger) with(extra ...interface{}) []interface{} {
	all := make([]interface{}, 0, len(l.ctx)+len(extra))
	all = append(all, l.ctx...)
	all = append(all, extra...)
	return all
}

func (l *Logger) write(lvl Lvl, msg string, ctx []interface{}) {
	if lvl > l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("15:04:05.000"))
	b.WriteByte(' ')
	name := lvlNames[lvl]
	if l.color {
		fmt.Fprintf(&b, "\x1b[%dm%-5s\x1b[0m", lvlColors[lvl], name)
	} else {
		fmt.Fprintf(&b, "%-5s", name)
	}
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i+1 < len(ctx); i += 2 {
		fmt.Fprintf(&b, " %v=%v", ctx[i], ctx[i+1])
	}
	if lvl <= LvlWarn {
		// Attach the immediate caller frame, as go-ethereum's log does for
		// warnings and above.
		call := stack.Caller(2)
		fmt.Fprintf(&b, " caller=%+v", call)
	}
	b.WriteByte('\n')
	io.WriteString(l.out, b.String())
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, l.with(ctx...)) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, l.with(ctx...)) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, l.with(ctx...)) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, l.with(ctx...)) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, l.with(ctx...)) }

// Crit logs at critical level and terminates the process. Per spec.md §4.6 /
// §7, a programming invariant violation (e.g. recording a tx already in
// known_tx) is a fatal, non-recoverable error in debug builds.
func (l *Logger) Crit(msg string, ctx ...interface{}) {
	l.write(LvlCrit, msg, l.with(ctx...))
	os.Exit(1)
}

func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }
