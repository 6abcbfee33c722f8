// Package notify carries user-facing notices (the toast messages of the UI)
// from the workflow to whatever front end is driving it.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a single user-visible message.
type Notice struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to the Notifier interface.
type Func func(Notice)

func (f Func) Notify(n Notice) { f(n) }

// Nop drops every notice.
var Nop Notifier = Func(func(Notice) {})

func Info(title, description string) Notice {
	return Notice{Level: LevelInfo, Title: title, Description: description}
}

func Success(title, description string) Notice {
	return Notice{Level: LevelSuccess, Title: title, Description: description}
}

func Warning(title, description string) Notice {
	return Notice{Level: LevelWarning, Title: title, Description: description}
}

func Error(title, description string) Notice {
	return Notice{Level: LevelError, Title: title, Description: description}
}

// OrNop returns n, or Nop when n is nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop
	}
	return n
}

// LogNotifier writes notices to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(n Notice) {
	fields := []zap.Field{
		zap.String("title", n.Title),
		zap.String("description", n.Description),
	}

	switch n.Level {
	case LevelError:
		l.logger.Error("notice", fields...)
	case LevelWarning:
		l.logger.Warn("notice", fields...)
	default:
		l.logger.Info("notice", fields...)
	}
}

// Collector keeps notices in memory so they can be returned to a client.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func (c *Collector) Notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices returns a copy of everything collected so far.
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}
