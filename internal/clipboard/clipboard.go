// Package clipboard adapts platform clipboards to the widget's copy action.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

var ErrUnavailable = errors.New("clipboard is not available on this platform")

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// System writes to the operating system clipboard.
type System struct{}

// NewSystem returns the OS clipboard, or ErrUnavailable when no clipboard
// utility can be found.
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, ErrUnavailable
	}
	return &System{}, nil
}

// WriteText replaces the clipboard contents with text.
func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard for headless runs and tests.
type Memory struct {
	mu   sync.Mutex
	text string
	err  error
}

// NewMemory creates an empty in-memory clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// WriteText stores text, or returns the error set with Fail.
func (m *Memory) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Fail makes subsequent writes return err. A nil err restores normal writes.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// New selects a clipboard by mode ("system" or "memory"). The system
// clipboard degrades to memory when the platform has none.
func New(mode string) (Clipboard, error) {
	switch mode {
	case "memory":
		return NewMemory(), nil
	case "system", "":
		sys, err := NewSystem()
		if err != nil {
			return NewMemory(), err
		}
		return sys, nil
	default:
		return nil, fmt.Errorf("unknown clipboard mode %q", mode)
	}
}
