// Package logsink receives the human-readable progress and error lines the
// sync engine emits. The engine only sees the Sink interface.
package logsink

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink receives informational and error lines.
type Sink interface {
	Log(msg string)
	Error(msg string)
}

// Logf formats and logs an informational line.
func Logf(s Sink, format string, args ...any) {
	s.Log(fmt.Sprintf(format, args...))
}

// Errorf formats and logs an error line.
func Errorf(s Sink, format string, args ...any) {
	s.Error(fmt.Sprintf(format, args...))
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// Terminal writes lines to w, rendering errors in red.
type Terminal struct {
	w  io.Writer
	mu sync.Mutex
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Log(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, msg)
}

func (t *Terminal) Error(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, errorStyle.Render(msg))
}

// File appends timestamped lines to a size-rotated log file.
type File struct {
	logger *log.Logger
	out    *lumberjack.Logger
}

// NewFile opens a rotating log at path (5 MB per file, 3 backups).
func NewFile(path string) *File {
	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 3,
	}
	return &File{logger: log.New(out, "", log.LstdFlags), out: out}
}

func (f *File) Log(msg string) {
	f.logger.Printf("INFO  %s", msg)
}

func (f *File) Error(msg string) {
	f.logger.Printf("ERROR %s", msg)
}

func (f *File) Close() error {
	return f.out.Close()
}

// Multi fans every line out to several sinks.
type Multi []Sink

func (m Multi) Log(msg string) {
	for _, s := range m {
		s.Log(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, s := range m {
		s.Error(msg)
	}
}

// Level tells informational lines from error lines.
type Level int

const (
	Info Level = iota
	Err
)

// Line is one recorded message.
type Line struct {
	Level Level
	Text  string
}

// Recorder keeps every line in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []Line
}

func (r *Recorder) Log(msg string) {
	r.add(Info, msg)
}

func (r *Recorder) Error(msg string) {
	r.add(Err, msg)
}

func (r *Recorder) add(l Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, Line{Level: l, Text: msg})
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Line(nil), r.lines...)
}

// Errors returns the text of the recorded error lines.
func (r *Recorder) Errors() []string {
	var errs []string
	for _, l := range r.Lines() {
		if l.Level == Err {
			errs = append(errs, l.Text)
		}
	}
	return errs
}

// Clear drops everything recorded so far.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
