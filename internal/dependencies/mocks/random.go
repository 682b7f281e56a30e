package mocks

import (
	"fmt"

	"github.com/tcgconnect/tcgconnect-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// IDResults is a queue of results to return from ID
	IDResults []string
	idIndex   int
	idSerial  int

	// StringResults is a queue of results to return from String
	StringResults []string
	stringIndex   int
	stringSerial  int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// ID returns the next queued result, or a sequential fallback so that
// generated ids stay pairwise distinct even when nothing is queued
func (r *MockRandom) ID() string {
	if r.idIndex < len(r.IDResults) {
		result := r.IDResults[r.idIndex]
		r.idIndex++
		return result
	}
	r.idSerial++
	return fmt.Sprintf("mock-id-%d", r.idSerial)
}

// String returns the next queued result, or a sequential fallback so
// that generated codes stay pairwise distinct even when nothing is queued
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex < len(r.StringResults) {
		result := r.StringResults[r.stringIndex]
		r.stringIndex++
		return result
	}
	r.stringSerial++
	return fmt.Sprintf("MOCK%d", r.stringSerial)
}

// QueueID adds values to the ID result queue
func (r *MockRandom) QueueID(values ...string) {
	r.IDResults = append(r.IDResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}
