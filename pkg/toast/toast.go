// Package toast implements a timed show/dismiss notification queue.
package toast

import (
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/tether/pkg/telemetry"
)

// Level indicates the severity of a toast notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// DismissReason records why a toast left the queue.
type DismissReason string

const (
	// DismissTimeout means the toast's duration elapsed.
	DismissTimeout DismissReason = "timeout"
	// DismissUser means the host dismissed the toast explicitly.
	DismissUser DismissReason = "user"
	// DismissEvicted means the toast was pushed out by newer toasts
	// past the queue limit.
	DismissEvicted DismissReason = "evicted"
)

const (
	DefaultDuration  = 4 * time.Second
	DefaultMaxToasts = 5
)

// Toast is a single notification.
type Toast struct {
	ID        string
	Level     Level
	Title     string
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// EventKind discriminates queue events.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventDismissed EventKind = "dismissed"
)

// Event describes a change to the toast queue.
type Event struct {
	Kind   EventKind
	Toast  *Toast
	Reason DismissReason // set for dismissals
}

type subscriber struct {
	handle uint64
	fn     func(Event)
}

// Manager owns the active toast queue. Safe for concurrent use;
// expiry timers fire off the caller's goroutine.
type Manager struct {
	mu          sync.RWMutex
	toasts      []*Toast
	timers      map[string]*time.Timer
	maxCount    int
	subscribers []subscriber
	nextSub     uint64
}

// NewManager creates a manager with default limits.
func NewManager() *Manager {
	return &Manager{
		maxCount: DefaultMaxToasts,
		timers:   make(map[string]*time.Timer),
	}
}

// SetMaxCount caps the number of concurrently visible toasts. The
// oldest toasts are evicted past the cap.
func (m *Manager) SetMaxCount(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mu.Lock()
	m.maxCount = n
	m.mu.Unlock()
}

// Subscribe registers a callback for queue events and returns a
// handle for Unsubscribe. Callbacks run synchronously with the
// mutation that produced the event.
func (m *Manager) Subscribe(fn func(Event)) uint64 {
	if m == nil || fn == nil {
		return 0
	}
	m.mu.Lock()
	m.nextSub++
	h := m.nextSub
	m.subscribers = append(m.subscribers, subscriber{handle: h, fn: fn})
	m.mu.Unlock()
	return h
}

// Unsubscribe removes a previously registered callback. Unknown
// handles are ignored.
func (m *Manager) Unsubscribe(handle uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	for i, s := range m.subscribers {
		if s.handle == handle {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
}

// Show creates a toast and returns its ID. A non-positive duration
// uses the default; the toast is dismissed automatically when its
// duration elapses.
func (m *Manager) Show(level Level, title, message string, duration time.Duration) string {
	if m == nil {
		return ""
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	t := &Toast{
		ID:        ulid.Make().String(),
		Level:     level,
		Title:     strings.TrimSpace(title),
		Message:   strings.TrimSpace(message),
		Duration:  duration,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	if m.timers == nil {
		m.timers = make(map[string]*time.Timer)
	}
	m.toasts = append(m.toasts, t)
	m.timers[t.ID] = time.AfterFunc(duration, func() {
		m.dismiss(t.ID, DismissTimeout)
	})

	var evicted []*Toast
	if overflow := len(m.toasts) - m.maxCount; overflow > 0 {
		evicted = append(evicted, m.toasts[:overflow]...)
		m.toasts = append([]*Toast(nil), m.toasts[overflow:]...)
		for _, e := range evicted {
			m.stopTimerLocked(e.ID)
		}
	}
	subs := append([]subscriber(nil), m.subscribers...)
	m.mu.Unlock()

	telemetry.ToastsShown.WithLabelValues(string(level)).Inc()
	publish(subs, Event{Kind: EventCreated, Toast: t})
	for _, e := range evicted {
		telemetry.ToastsDismissed.WithLabelValues(string(DismissEvicted)).Inc()
		publish(subs, Event{Kind: EventDismissed, Toast: e, Reason: DismissEvicted})
	}
	return t.ID
}

// Info shows an informational toast with the default duration.
func (m *Manager) Info(title, msg string) string {
	return m.Show(LevelInfo, title, msg, DefaultDuration)
}

// Success shows a success toast.
func (m *Manager) Success(title, msg string) string {
	return m.Show(LevelSuccess, title, msg, DefaultDuration)
}

// Warning shows a warning toast.
func (m *Manager) Warning(title, msg string) string {
	return m.Show(LevelWarning, title, msg, DefaultDuration)
}

// Error shows an error toast.
func (m *Manager) Error(title, msg string) string {
	return m.Show(LevelError, title, msg, DefaultDuration)
}

// Dismiss removes a toast on the host's behalf. Returns false if no
// toast with the ID is queued.
func (m *Manager) Dismiss(id string) bool {
	return m.dismiss(id, DismissUser)
}

func (m *Manager) dismiss(id string, reason DismissReason) bool {
	if m == nil || strings.TrimSpace(id) == "" {
		return false
	}
	m.mu.Lock()
	var dismissed *Toast
	for i, t := range m.toasts {
		if t.ID == id {
			dismissed = t
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			m.stopTimerLocked(id)
			break
		}
	}
	subs := append([]subscriber(nil), m.subscribers...)
	m.mu.Unlock()

	if dismissed == nil {
		return false
	}
	telemetry.ToastsDismissed.WithLabelValues(string(reason)).Inc()
	publish(subs, Event{Kind: EventDismissed, Toast: dismissed, Reason: reason})
	return true
}

// Toasts returns a snapshot of the queue, oldest first.
func (m *Manager) Toasts() []*Toast {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.toasts) == 0 {
		return nil
	}
	out := make([]*Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

func (m *Manager) stopTimerLocked(id string) {
	if timer, ok := m.timers[id]; ok {
		timer.Stop()
		delete(m.timers, id)
	}
}

func publish(subs []subscriber, ev Event) {
	for _, s := range subs {
		s.fn(ev)
	}
}
