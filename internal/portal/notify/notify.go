// Package notify surfaces user-facing messages from portal operations.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notification struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

// Error is shorthand for an error-level notification carrying err's message.
func Error(n Notifier, title string, err error) {
	n.Notify(Notification{Level: LevelError, Title: title, Message: err.Error()})
}

func Success(n Notifier, title, message string) {
	n.Notify(Notification{Level: LevelSuccess, Title: title, Message: message})
}

func Warning(n Notifier, title, message string) {
	n.Notify(Notification{Level: LevelWarning, Title: title, Message: message})
}

// LogNotifier writes notifications to a logrus logger.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(note Notification) {
	entry := n.log.WithField("title", note.Title)
	switch note.Level {
	case LevelError:
		entry.Error(note.Message)
	case LevelWarning:
		entry.Warn(note.Message)
	default:
		entry.Info(note.Message)
	}
}

// WriterNotifier prints one line per notification.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if note.Message == "" {
		fmt.Fprintf(n.w, "[%s] %s\n", note.Level, note.Title)
		return
	}
	fmt.Fprintf(n.w, "[%s] %s: %s\n", note.Level, note.Title, note.Message)
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Notify(note Notification) {
	for _, n := range m {
		n.Notify(note)
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *Recorder) Notify(note Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

// Levels returns only the notifications at level.
func (r *Recorder) Levels(level Level) []Notification {
	var out []Notification
	for _, n := range r.All() {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}
