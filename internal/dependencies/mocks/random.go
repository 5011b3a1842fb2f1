package mocks

import (
	"sync"

	"github.com/mcoot/morpion/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int

	// Err, when set, is returned by every call
	Err error

	generated int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result. Once the queue is drained it returns
// a deterministic string drawn from the alphabet that differs on each call.
func (r *MockRandom) String(length int, alphabet string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return "", r.Err
	}
	if r.stringIndex < len(r.StringResults) {
		result := r.StringResults[r.stringIndex]
		r.stringIndex++
		return result, nil
	}
	if length <= 0 || len(alphabet) == 0 {
		return "", nil
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[(r.generated+i)%len(alphabet)]
	}
	r.generated++
	return string(result), nil
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = append(r.StringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = nil
	r.stringIndex = 0
	r.Err = nil
	r.generated = 0
}
