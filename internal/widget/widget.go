// Package widget implements the password generator widget: its state store,
// reactive regeneration and the copy-to-clipboard notification.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/passgen/passgen-go/internal/clipboard"
	"github.com/passgen/passgen-go/internal/generator"
	"github.com/passgen/passgen-go/internal/model"
)

// CopiedMessage is the notification shown after a successful copy.
const CopiedMessage = "Copied to clipboard!"

// DefaultNotificationTTL is how long CopiedMessage stays visible.
const DefaultNotificationTTL = 2 * time.Second

// Option names accepted by ToggleOption.
const (
	OptionNumbers    = "numbers"
	OptionCharacters = "characters"
)

var ErrUnknownOption = errors.New("unknown generation option")

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Widget owns the password state. All mutations go through it.
type Widget struct {
	store     *Store
	source    generator.Source
	clipboard clipboard.Clipboard
	ttl       time.Duration
	schedule  Scheduler

	// mu guards the notification timer; it is taken before the store lock.
	mu       sync.Mutex
	timer    Timer
	timerSeq uint64
}

// Option configures a Widget.
type Option func(*Widget)

// WithSource replaces the pseudo-random source.
func WithSource(src generator.Source) Option {
	return func(w *Widget) { w.source = src }
}

// WithScheduler replaces time.AfterFunc for the notification timer.
func WithScheduler(s Scheduler) Option {
	return func(w *Widget) { w.schedule = s }
}

// WithNotificationTTL changes how long the copy notification is shown.
func WithNotificationTTL(d time.Duration) Option {
	return func(w *Widget) {
		if d > 0 {
			w.ttl = d
		}
	}
}

// New mounts a widget with the default state (length 8, letters only) and
// generates its first password.
func New(clip clipboard.Clipboard, opts ...Option) *Widget {
	w := &Widget{
		store: NewStore(model.PasswordState{
			Length: generator.DefaultLength,
		}),
		source:    generator.DefaultSource(),
		clipboard: clip,
		ttl:       DefaultNotificationTTL,
		schedule:  afterFunc,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.Generate()
	return w
}

// State returns a snapshot of the current state.
func (w *Widget) State() model.PasswordState {
	return w.store.State()
}

// Subscribe registers an observer for state changes.
func (w *Widget) Subscribe(fn Observer) (unsubscribe func()) {
	return w.store.Subscribe(fn)
}

// SetLength clamps length to the accepted range and, if that changes the
// stored length, regenerates the password.
func (w *Widget) SetLength(length int) model.PasswordState {
	length = generator.Clamp(length)
	return w.store.Update(func(s *model.PasswordState) []model.Change {
		if s.Length == length {
			return nil
		}
		s.Length = length
		w.regenerate(s)
		return []model.Change{model.ChangeLength, model.ChangeGenerated}
	})
}

// ToggleOption flips the named option and regenerates the password.
func (w *Widget) ToggleOption(name string) (model.PasswordState, error) {
	if name != OptionNumbers && name != OptionCharacters {
		return w.State(), fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}

	return w.store.Update(func(s *model.PasswordState) []model.Change {
		switch name {
		case OptionNumbers:
			s.Options.IncludeNumbers = !s.Options.IncludeNumbers
		case OptionCharacters:
			s.Options.IncludeSpecialCharacters = !s.Options.IncludeSpecialCharacters
		}
		w.regenerate(s)
		return []model.Change{model.ChangeOptions, model.ChangeGenerated}
	}), nil
}

// Generate replaces the password with a fresh one for the current length and
// options. The notification is left as is.
func (w *Widget) Generate() model.PasswordState {
	return w.store.Update(func(s *model.PasswordState) []model.Change {
		w.regenerate(s)
		return []model.Change{model.ChangeGenerated}
	})
}

func (w *Widget) regenerate(s *model.PasswordState) {
	s.Password = generator.Generate(w.source, s.Length, s.Options)
	slog.Debug("password regenerated",
		"length", s.Length,
		"numbers", s.Options.IncludeNumbers,
		"characters", s.Options.IncludeSpecialCharacters,
	)
}

// Copy writes the current password to the clipboard. On success it shows
// CopiedMessage and (re)starts the timer that clears it; a copy made while
// the message is showing restarts the full window. If the password was
// regenerated while the write was in flight, the clipboard holds the old one
// and no message is shown. On failure the state is left untouched and the
// error is returned.
func (w *Widget) Copy(ctx context.Context) (model.PasswordState, error) {
	state := w.State()
	if err := w.clipboard.WriteText(ctx, state.Password); err != nil {
		slog.Warn("clipboard write failed", "error", err)
		return state, fmt.Errorf("copy password: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	password := state.Password
	copied := false
	state = w.store.Update(func(s *model.PasswordState) []model.Change {
		if s.Password != password {
			return nil
		}
		copied = true
		s.Notification = CopiedMessage
		return []model.Change{model.ChangeNotification}
	})
	if !copied {
		slog.Debug("password changed during copy, notification skipped")
		return state, nil
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerSeq++
	seq := w.timerSeq
	w.timer = w.schedule(w.ttl, func() { w.clearNotification(seq) })

	return state, nil
}

// clearNotification runs when timer seq fires. A timer superseded by a later
// copy, or by Close, does nothing.
func (w *Widget) clearNotification(seq uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if seq != w.timerSeq {
		return
	}
	w.timer = nil

	w.store.Update(func(s *model.PasswordState) []model.Change {
		if s.Notification == "" {
			return nil
		}
		s.Notification = ""
		return []model.Change{model.ChangeNotification}
	})
}

// Close cancels a pending notification timer and drops all observers.
func (w *Widget) Close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerSeq++
	w.mu.Unlock()

	w.store.Reset()
}
