package factory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/morpion/internal/dependencies/mocks"
	"github.com/mcoot/morpion/internal/storage/memory"
	"github.com/mcoot/morpion/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Signups    *SignupRecorder
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	sessions := memory.NewSessionStore()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	recorder := &SignupRecorder{}
	logger := testutil.NopLogger()

	app := newWithDependencies(store, sessions, recorder, mockClock, mockRandom, Config{}, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Signups:    recorder,
	}
}

// Signup is a recorded signup notification
type Signup struct {
	Email string
	Token string
}

// SignupRecorder is a notifier that keeps every signup in memory
type SignupRecorder struct {
	mu      sync.Mutex
	signups []Signup
}

// NotifySignup records the notification
func (r *SignupRecorder) NotifySignup(_ context.Context, email, confirmationToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signups = append(r.signups, Signup{Email: email, Token: confirmationToken})
	return nil
}

// For returns the last signup recorded for an email
func (r *SignupRecorder) For(email string) (Signup, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.signups) - 1; i >= 0; i-- {
		if r.signups[i].Email == email {
			return r.signups[i], true
		}
	}
	return Signup{}, false
}

// Count returns the number of recorded signups
func (r *SignupRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.signups)
}
