package importer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownSchema is returned when an import type is not registered.
var ErrUnknownSchema = errors.New("unknown import type")

var (
	registry   = make(map[string]Definition)
	registryMu sync.RWMutex
)

// Register adds an import definition to the registry.
// Panics if the schema is invalid or its key is already registered.
func Register(def Definition) {
	if err := def.Schema.Validate(); err != nil {
		panic(fmt.Sprintf("invalid import schema: %v", err))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Schema.Key]; exists {
		panic(fmt.Sprintf("import type already registered: %s", def.Schema.Key))
	}
	registry[def.Schema.Key] = def
}

// Get returns an import definition by key.
// Returns false if not found.
func Get(key string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Lookup is Get with an error wrapping ErrUnknownSchema.
func Lookup(key string) (Definition, error) {
	def, ok := Get(key)
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownSchema, key)
	}
	return def, nil
}

// All returns all registered definitions sorted by key.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Schema.Key < result[j].Schema.Key
	})
	return result
}

// Clear removes all registered definitions.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Definition)
}
