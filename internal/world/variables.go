// Package world provides the default execution context step handlers share
// within one scenario.
package world

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var placeholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Variables is a thread-safe store for values captured by one step and used by
// later steps of the same scenario.
type Variables struct {
	mu        sync.RWMutex
	values    map[string]string
	sequences map[string]int
	closed    bool
}

// NewVariables creates a new variable store
func NewVariables() *Variables {
	return &Variables{
		values:    make(map[string]string),
		sequences: make(map[string]int),
	}
}

// Factory creates a fresh Variables world per scenario. It fits
// executor.Factory.
func Factory(ctx context.Context) (any, error) {
	return NewVariables(), nil
}

// Set stores a value with the given key
func (v *Variables) Set(key, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[key] = value
}

// Get retrieves a value by key
func (v *Variables) Get(key string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.values[key]
	return val, ok
}

// Len returns the number of stored values.
func (v *Variables) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.values)
}

// Reset clears all stored variables and sequences
func (v *Variables) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values = make(map[string]string)
	v.sequences = make(map[string]int)
}

// Close clears the store and marks it closed.
func (v *Variables) Close(ctx context.Context) error {
	v.Reset()
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	return nil
}

// Closed reports whether Close has been called.
func (v *Variables) Closed() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.closed
}

// Replace substitutes all {{variable}} placeholders in the input string
// with their stored values or generated dynamic values
//
// Supported dynamic values:
//   - {{uuid}} - Random UUID v4
//   - {{timestamp}} - Current ISO 8601 timestamp
//   - {{timestamp:unix}} - Unix timestamp in seconds
//   - {{random:N}} - Random alphanumeric string of length N
//   - {{random:N:numeric}} - Random numeric string of length N
//   - {{sequence:name}} - Auto-incrementing sequence by name
func (v *Variables) Replace(input string) string {
	return placeholder.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}")

		if generated, ok := v.dynamicValue(name); ok {
			return generated
		}
		if val, ok := v.Get(name); ok {
			return val
		}
		return match
	})
}

func (v *Variables) dynamicValue(name string) (string, bool) {
	switch {
	case name == "uuid":
		return uuid.New().String(), true
	case name == "timestamp":
		return time.Now().UTC().Format(time.RFC3339), true
	case name == "timestamp:unix":
		return strconv.FormatInt(time.Now().Unix(), 10), true
	case strings.HasPrefix(name, "random:"):
		return randomString(name)
	case strings.HasPrefix(name, "sequence:"):
		return v.nextSequence(strings.TrimPrefix(name, "sequence:")), true
	default:
		return "", false
	}
}

// randomString handles random:N and random:N:numeric.
func randomString(name string) (string, bool) {
	parts := strings.Split(name, ":")
	length, err := strconv.Atoi(parts[1])
	if err != nil || length <= 0 {
		return "", false
	}

	charset := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	if len(parts) >= 3 && parts[2] == "numeric" {
		charset = "0123456789"
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", false
	}
	for i := range buf {
		buf[i] = charset[int(buf[i])%len(charset)]
	}
	return string(buf), true
}

func (v *Variables) nextSequence(seq string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sequences[seq]++
	return fmt.Sprintf("%d", v.sequences[seq])
}
