// Package world is the execution context the legion CLI runs schedules
// against: a tick counter, a journal of log lines and a bag of named values.
package world

import (
	"fmt"
	"sort"
)

// World is mutated in place by every action of a schedule.
type World struct {
	Tick    int
	Journal []string
	Values  map[string]float64
}

// New returns an empty world.
func New() *World {
	return &World{Values: map[string]float64{}}
}

// Logf appends a journal line prefixed with the current tick.
func (w *World) Logf(format string, args ...any) {
	w.Journal = append(w.Journal, fmt.Sprintf("[%d] ", w.Tick)+fmt.Sprintf(format, args...))
}

// Keys returns the value names, sorted.
func (w *World) Keys() []string {
	keys := make([]string, 0, len(w.Values))
	for k := range w.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
