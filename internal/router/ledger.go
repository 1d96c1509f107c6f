package router

import (
	"sync"
	"time"
)

// ledger tracks cumulative model spend for the current UTC day.
// The total resets when the day rolls over.
type ledger struct {
	mu    sync.Mutex
	day   string
	spent float64
}

func currentDay() string {
	return time.Now().UTC().Format(time.DateOnly)
}

func (l *ledger) roll() {
	day := currentDay()
	if l.day != day {
		l.day = day
		l.spent = 0
	}
}

// add records a completed call's cost and returns the new daily total.
func (l *ledger) add(cost float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll()
	l.spent += cost
	return l.spent
}

// total returns the current UTC day and the spend accumulated within it.
func (l *ledger) total() (string, float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll()
	return l.day, l.spent
}
