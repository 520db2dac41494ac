package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/passgen/passgen-go/internal/clipboard"
	"github.com/passgen/passgen-go/internal/generator"
	"github.com/passgen/passgen-go/internal/model"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// fakeScheduler records scheduled callbacks so tests can fire them by hand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) get(i int) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[i]
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func newTestWidget(t *testing.T) (*Widget, *clipboard.Memory, *fakeScheduler) {
	t.Helper()
	clip := clipboard.NewMemory()
	sched := &fakeScheduler{}
	w := New(clip, WithScheduler(sched.schedule))
	t.Cleanup(w.Close)
	return w, clip, sched
}

func assertFromPool(t *testing.T, password, pool string) {
	t.Helper()
	for _, ch := range password {
		if !strings.ContainsRune(pool, ch) {
			t.Fatalf("password %q contains %q outside pool", password, string(ch))
		}
	}
}

func TestNewMountsWithPassword(t *testing.T) {
	w, _, _ := newTestWidget(t)

	state := w.State()
	if state.Length != 8 {
		t.Errorf("expected length 8, got %d", state.Length)
	}
	if state.Options != (model.GenerationOptions{}) {
		t.Errorf("expected both options off, got %+v", state.Options)
	}
	if len(state.Password) != 8 {
		t.Errorf("expected password of length 8, got %q", state.Password)
	}
	assertFromPool(t, state.Password, letters)
	if state.Notification != "" {
		t.Errorf("expected empty notification, got %q", state.Notification)
	}
}

func TestSetLength(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "minimum", in: 6, want: 6},
		{name: "in range", in: 42, want: 42},
		{name: "maximum", in: 100, want: 100},
		{name: "below range", in: 1, want: 6},
		{name: "above range", in: 500, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, _ := newTestWidget(t)
			state := w.SetLength(tt.in)
			if state.Length != tt.want {
				t.Errorf("expected length %d, got %d", tt.want, state.Length)
			}
			if len(state.Password) != tt.want {
				t.Errorf("expected password length %d, got %d", tt.want, len(state.Password))
			}
		})
	}
}

func TestRegeneratesOncePerChange(t *testing.T) {
	w, _, _ := newTestWidget(t)

	var mu sync.Mutex
	counts := map[model.Change]int{}
	w.Subscribe(func(change model.Change, _ model.PasswordState) {
		mu.Lock()
		counts[change]++
		mu.Unlock()
	})

	w.SetLength(12)
	w.SetLength(12) // same value: not a change
	if _, err := w.ToggleOption(OptionNumbers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.ToggleOption(OptionCharacters); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Generate()

	mu.Lock()
	defer mu.Unlock()
	if counts[model.ChangeGenerated] != 4 {
		t.Errorf("expected 4 regenerations, got %d", counts[model.ChangeGenerated])
	}
	if counts[model.ChangeLength] != 1 {
		t.Errorf("expected 1 length change, got %d", counts[model.ChangeLength])
	}
	if counts[model.ChangeOptions] != 2 {
		t.Errorf("expected 2 option changes, got %d", counts[model.ChangeOptions])
	}
}

func TestToggleOption(t *testing.T) {
	w, _, _ := newTestWidget(t)

	state, err := w.ToggleOption(OptionNumbers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.Options.IncludeNumbers || state.Options.IncludeSpecialCharacters {
		t.Errorf("unexpected options after toggling numbers: %+v", state.Options)
	}

	if _, err := w.ToggleOption(OptionCharacters); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state = w.SetLength(12)
	if len(state.Password) != 12 {
		t.Errorf("expected password length 12, got %d", len(state.Password))
	}
	assertFromPool(t, state.Password, generator.Pool(state.Options))

	state, _ = w.ToggleOption(OptionNumbers)
	if state.Options.IncludeNumbers {
		t.Error("expected numbers to be toggled off")
	}
}

func TestToggleUnknownOption(t *testing.T) {
	w, _, _ := newTestWidget(t)
	before := w.State()

	_, err := w.ToggleOption("emoji")
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
	if w.State() != before {
		t.Error("state changed after unknown option")
	}
}

func TestGenerateKeepsNotification(t *testing.T) {
	w, _, _ := newTestWidget(t)

	if _, err := w.Copy(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state := w.Generate()
	if state.Notification != CopiedMessage {
		t.Errorf("expected notification to survive regeneration, got %q", state.Notification)
	}
}

func TestCopy(t *testing.T) {
	w, clip, sched := newTestWidget(t)
	password := w.State().Password

	state, err := w.Copy(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clip.Text() != password {
		t.Errorf("expected clipboard %q, got %q", password, clip.Text())
	}
	if state.Notification != CopiedMessage {
		t.Errorf("expected notification %q, got %q", CopiedMessage, state.Notification)
	}
	if sched.count() != 1 {
		t.Fatalf("expected 1 timer, got %d", sched.count())
	}
	if d := sched.get(0).delay; d != DefaultNotificationTTL {
		t.Errorf("expected delay %v, got %v", DefaultNotificationTTL, d)
	}

	sched.get(0).fn()
	if n := w.State().Notification; n != "" {
		t.Errorf("expected notification cleared, got %q", n)
	}
}

func TestCopyRestartsWindow(t *testing.T) {
	w, _, sched := newTestWidget(t)

	if _, err := w.Copy(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.Copy(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, second := sched.get(0), sched.get(1)
	if !first.stopped {
		t.Error("expected first timer to be stopped")
	}

	// A superseded timer that fires anyway must not clear the new message.
	first.fn()
	if n := w.State().Notification; n != CopiedMessage {
		t.Errorf("expected notification to remain, got %q", n)
	}

	second.fn()
	if n := w.State().Notification; n != "" {
		t.Errorf("expected notification cleared, got %q", n)
	}
}

func TestCopyFailure(t *testing.T) {
	w, clip, sched := newTestWidget(t)
	denied := errors.New("permission denied")
	clip.Fail(denied)

	state, err := w.Copy(context.Background())
	if !errors.Is(err, denied) {
		t.Fatalf("expected %v, got %v", denied, err)
	}
	if state.Notification != "" {
		t.Errorf("expected no notification, got %q", state.Notification)
	}
	if sched.count() != 0 {
		t.Errorf("expected no timer, got %d", sched.count())
	}
}

func TestCloseCancelsTimer(t *testing.T) {
	w, _, sched := newTestWidget(t)

	var calls int
	w.Subscribe(func(model.Change, model.PasswordState) { calls++ })

	if _, err := w.Copy(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Close()

	timer := sched.get(0)
	if !timer.stopped {
		t.Error("expected timer to be stopped on close")
	}
	timer.fn()
	if calls != 1 {
		t.Errorf("expected only the copy notification, got %d calls", calls)
	}
}

func TestNotificationClearsWithRealTimer(t *testing.T) {
	clip := clipboard.NewMemory()
	w := New(clip, WithNotificationTTL(20*time.Millisecond))
	defer w.Close()

	cleared := make(chan struct{})
	w.Subscribe(func(change model.Change, state model.PasswordState) {
		if change == model.ChangeNotification && state.Notification == "" {
			close(cleared)
		}
	})

	if _, err := w.Copy(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-cleared:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not cleared")
	}
}

func TestUnsubscribe(t *testing.T) {
	w, _, _ := newTestWidget(t)

	var calls int
	unsubscribe := w.Subscribe(func(model.Change, model.PasswordState) { calls++ })
	w.Generate()
	unsubscribe()
	unsubscribe()
	w.Generate()

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

// regeneratingClipboard regenerates the widget password while a write is in
// flight.
type regeneratingClipboard struct {
	clipboard.Memory
	widget *Widget
}

func (c *regeneratingClipboard) WriteText(ctx context.Context, text string) error {
	if err := c.Memory.WriteText(ctx, text); err != nil {
		return err
	}
	c.widget.Generate()
	return nil
}

func TestCopySkipsNotificationWhenPasswordChanged(t *testing.T) {
	clip := &regeneratingClipboard{}
	sched := &fakeScheduler{}
	w := New(clip, WithScheduler(sched.schedule))
	defer w.Close()
	clip.widget = w

	before := w.State().Password
	state, err := w.Copy(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clip.Text() != before {
		t.Errorf("expected clipboard %q, got %q", before, clip.Text())
	}
	if state.Password == before {
		t.Fatal("expected password to be regenerated during the write")
	}
	if state.Notification != "" {
		t.Errorf("expected no notification for a stale copy, got %q", state.Notification)
	}
	if sched.count() != 0 {
		t.Errorf("expected no timer, got %d", sched.count())
	}
}

func TestObserversSeeChangesInMutationOrder(t *testing.T) {
	w, _, sched := newTestWidget(t)

	if _, err := w.Copy(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu      sync.Mutex
		last    model.PasswordState
		blocked bool
	)
	w.Subscribe(func(change model.Change, state model.PasswordState) {
		mu.Lock()
		first := change == model.ChangeGenerated && !blocked
		if first {
			blocked = true
		}
		mu.Unlock()

		if first {
			close(entered)
			<-release
		}

		mu.Lock()
		last = state
		mu.Unlock()
	})

	generated := make(chan struct{})
	go func() {
		defer close(generated)
		w.Generate()
	}()
	<-entered

	// The timer fires while the regeneration is still being delivered.
	cleared := make(chan struct{})
	go func() {
		defer close(cleared)
		sched.get(0).fn()
	}()

	close(release)
	<-generated
	<-cleared

	mu.Lock()
	defer mu.Unlock()
	if got := w.State().Notification; got != "" {
		t.Fatalf("expected notification cleared, got %q", got)
	}
	if last != w.State() {
		t.Errorf("last observed state %+v, store state %+v", last, w.State())
	}
}
