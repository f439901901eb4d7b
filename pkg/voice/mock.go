package voice

import (
	"context"
	"sync"
	"time"
)

// Mock implements Speaker for testing.
type Mock struct {
	// SpeakFunc is called when Speak is invoked. If nil, Speak succeeds.
	SpeakFunc func(ctx context.Context, text string) error

	mu     sync.Mutex
	calls  []MockCall
	closed bool
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Text   string
	Time   time.Time
}

// NewMock creates a mock speaker that accepts everything.
func NewMock() *Mock {
	return &Mock{}
}

// Speak records the call and then calls SpeakFunc.
func (m *Mock) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrSpeakerClosed
	}
	m.calls = append(m.calls, MockCall{Method: "Speak", Text: text, Time: time.Now()})
	fn := m.SpeakFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	return nil
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: "Close", Time: time.Now()})
	m.closed = true
	return nil
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// Spoken returns the text of every Speak call in order.
func (m *Mock) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.Method == "Speak" {
			out = append(out, c.Text)
		}
	}
	return out
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Speaker at compile time.
var _ Speaker = (*Mock)(nil)
