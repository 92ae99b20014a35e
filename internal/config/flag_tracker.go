package config

import (
	"sort"
	"sync"

	"github.com/spf13/pflag"
)

// FlagTracker remembers which command-line flags were set explicitly, so that
// configuration file values are only overridden by flags the user actually passed
type FlagTracker struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// NewFlagTracker creates an empty tracker
func NewFlagTracker() *FlagTracker {
	return &FlagTracker{set: make(map[string]struct{})}
}

// NewFlagTrackerWithFlags creates a tracker from a name -> set map; false entries are ignored
func NewFlagTrackerWithFlags(flags map[string]bool) *FlagTracker {
	ft := NewFlagTracker()
	for name, wasSet := range flags {
		if wasSet {
			ft.set[name] = struct{}{}
		}
	}
	return ft
}

// NewFlagTrackerFromFlagSet records every flag the user set on the command line
func NewFlagTrackerFromFlagSet(flags *pflag.FlagSet) *FlagTracker {
	ft := NewFlagTracker()
	if flags == nil {
		return ft
	}
	flags.Visit(func(f *pflag.Flag) {
		ft.Set(f.Name)
	})
	return ft
}

// Set marks a flag as explicitly set
func (ft *FlagTracker) Set(flagName string) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.set[flagName] = struct{}{}
}

// WasSet checks if a flag was explicitly set
func (ft *FlagTracker) WasSet(flagName string) bool {
	if ft == nil {
		return false
	}
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	_, ok := ft.set[flagName]
	return ok
}

// Names returns the explicitly set flags in sorted order
func (ft *FlagTracker) Names() []string {
	ft.mu.RLock()
	defer ft.mu.RUnlock()

	names := make([]string, 0, len(ft.set))
	for name := range ft.set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of explicitly set flags
func (ft *FlagTracker) Count() int {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	return len(ft.set)
}

// Merge returns override when flagName was set explicitly and base otherwise
func Merge[T any](ft *FlagTracker, base, override T, flagName string) T {
	if ft.WasSet(flagName) {
		return override
	}
	return base
}

// MergeAny returns override when any of the flags was set explicitly
func MergeAny[T any](ft *FlagTracker, base, override T, flagNames ...string) T {
	for _, name := range flagNames {
		if ft.WasSet(name) {
			return override
		}
	}
	return base
}
