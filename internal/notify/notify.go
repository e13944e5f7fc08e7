// Package notify renders transient user-visible notifications ("toasts").
// Every notification is written to the terminal, published on the event bus,
// and optionally mirrored to the desktop via github.com/gen2brain/beeep.
package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/gen2brain/beeep"

	"github.com/learnhub/learnadmin/internal/constants"
	"github.com/learnhub/learnadmin/internal/events"
	"github.com/learnhub/learnadmin/internal/logging"
)

// MessageFunc turns an error into the text shown to the user.
type MessageFunc func(error) string

// Config holds notification configuration.
type Config struct {
	// Color enables ANSI colors on terminal output.
	Color bool

	// Desktop mirrors notifications to the OS notification center.
	Desktop bool

	// Quiet suppresses success and info toasts (errors are always shown).
	Quiet bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Color:   true,
		Desktop: false,
	}
}

// Notifier handles toasts.
type Notifier struct {
	out      io.Writer
	bus      *events.EventBus
	logger   *logging.Logger
	message  MessageFunc
	cfg      Config
	send     func(title, message string) error
	mu       sync.Mutex
	shown    int
	lastText string
}

// NewNotifier creates a notifier writing to out. bus and logger may be nil.
func NewNotifier(out io.Writer, cfg *Config, bus *events.EventBus, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Notifier{
		out:     out,
		bus:     bus,
		logger:  logging.OrNop(logger),
		message: defaultMessage,
		cfg:     *cfg,
		send:    desktopNotify,
	}
}

// SetMessageFunc overrides how errors are rendered (the API package supplies
// one that prefers the backend's message field).
func (n *Notifier) SetMessageFunc(fn MessageFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if fn != nil {
		n.message = fn
	}
}

// Success shows a success toast.
func (n *Notifier) Success(title, message string) {
	n.emit(events.LevelSuccess, title, message, nil)
}

// Info shows an informational toast.
func (n *Notifier) Info(title, message string) {
	n.emit(events.LevelInfo, title, message, nil)
}

// Warn shows a warning toast.
func (n *Notifier) Warn(title, message string) {
	n.emit(events.LevelWarn, title, message, nil)
}

// Error shows an error toast. The rendered text is derived from err.
func (n *Notifier) Error(title string, err error) {
	n.mu.Lock()
	fn := n.message
	n.mu.Unlock()

	text := "Something went wrong"
	if err != nil {
		text = fn(err)
	}
	n.emit(events.LevelError, title, text, err)
}

// Count returns the number of toasts rendered so far.
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shown
}

// Last returns the text of the most recent toast.
func (n *Notifier) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastText
}

func (n *Notifier) emit(level events.Level, title, message string, err error) {
	message = truncate(strings.TrimSpace(message), constants.NotificationMaxMessageLen)

	if n.bus != nil {
		n.bus.Notify(level, title, message, err)
	}

	if n.cfg.Quiet && (level == events.LevelSuccess || level == events.LevelInfo) {
		return
	}

	n.mu.Lock()
	n.shown++
	n.lastText = message
	if n.out != nil {
		fmt.Fprintln(n.out, n.render(level, title, message))
	}
	n.mu.Unlock()

	if n.cfg.Desktop && level != events.LevelInfo {
		if sendErr := n.send(desktopTitle(title, level), message); sendErr != nil {
			n.logger.Debug().Err(sendErr).Msg("Failed to send desktop notification")
		}
	}
}

// render must be called with n.mu held.
func (n *Notifier) render(level events.Level, title, message string) string {
	var badge *color.Color
	var symbol string
	switch level {
	case events.LevelSuccess:
		badge, symbol = color.New(color.FgGreen, color.Bold), "✔"
	case events.LevelWarn:
		badge, symbol = color.New(color.FgYellow, color.Bold), "!"
	case events.LevelError:
		badge, symbol = color.New(color.FgRed, color.Bold), "✖"
	default:
		badge, symbol = color.New(color.FgCyan), "i"
	}
	if !n.cfg.Color {
		badge.DisableColor()
	} else {
		badge.EnableColor()
	}

	if title == "" {
		return badge.Sprint(symbol) + " " + message
	}
	return badge.Sprint(symbol) + " " + badge.Sprint("["+title+"]") + " " + message
}

// desktopNotify is cross-platform:
// - Windows: toast notifications
// - macOS: notification center
// - Linux: D-Bus notifications
func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

func desktopTitle(title string, level events.Level) string {
	t := "learnadmin"
	if title != "" {
		t += " - " + title
	}
	if level == events.LevelError {
		t += " (error)"
	}
	return t
}

func defaultMessage(err error) string {
	return err.Error()
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
