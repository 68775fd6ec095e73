// Package practice builds adaptive practice sets and multiple-choice quizzes.
package practice

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness the selectors need. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a seeded source. Pass a fixed seed in tests.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// lockedRand makes a *rand.Rand safe to share across sessions.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSharedRand returns a goroutine-safe source seeded from the clock.
func NewSharedRand() Rand {
	return &lockedRand{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

// shuffle is a Fisher-Yates shuffle driven by rnd.
func shuffle[T any](rnd Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
