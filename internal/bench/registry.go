// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package bench

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

var ErrUnknownTest = errors.New("unknown test")

// Test is one contended memory operation timed by both workers.
type Test struct {
	Name        string
	Description string
	// Op runs the operation once on the shared word and returns the value it
	// observed, which the worker folds into a checksum. turn is the global
	// turn number; while only timed operations touch the word it equals the
	// number of completed turns.
	Op func(word *uint64, turn uint64) uint64
}

var (
	registry       = make(map[string]Test)
	registryLogger = stdr.New(log.New(os.Stderr, "[bench.registry] ", log.LstdFlags))
)

// Register adds t to the global registry. It panics if a test with the same
// name is already registered.
func Register(t Test) {
	if t.Name == "" || t.Op == nil {
		panic("bench: test needs a name and an operation")
	}
	if _, exists := registry[t.Name]; exists {
		panic(fmt.Sprintf("Test %s already registered", t.Name))
	}
	registry[t.Name] = t
	registryLogger.V(1).Info("Registered test", "test", t.Name)
}

// Get returns the registered test called name.
func Get(name string) (Test, error) {
	t, exists := registry[name]
	if !exists {
		return Test{}, fmt.Errorf("%w %q (available: %v)", ErrUnknownTest, name, Names())
	}
	registryLogger.V(1).Info("Selected test", "test", name)
	return t, nil
}

// Names returns the registered test names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetRegistryLogger allows setting a custom logger for the registry.
// This should be called before any tests are registered.
func SetRegistryLogger(logger logr.Logger) {
	registryLogger = logger
}
