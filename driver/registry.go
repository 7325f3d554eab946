package driver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/satishbabariya/magicorm/internal/debug"
	"github.com/satishbabariya/magicorm/runtime"
)

// Namespace prefixes the conventional driver ids.
const Namespace = "magicorm"

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Register adds a driver factory under id. Built-in drivers register
// themselves as "magicorm/driver-<name>" when their package is imported.
func Register(id string, factory Factory) error {
	if id == "" {
		return errors.New("driver id cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("driver %s: factory is nil", id)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[id]; exists {
		return fmt.Errorf("driver already registered: %s", id)
	}
	registry[id] = factory
	debug.Debug("driver registered", "id", id)
	return nil
}

// Candidates lists the registry ids tried for name, in order. Names that
// start with ".", "/" or "@" are direct references and only match exactly.
func Candidates(name string) []string {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "/") || strings.HasPrefix(name, "@") {
		return []string{name}
	}
	return []string{
		Namespace + "/driver-" + name,
		Namespace + "-driver-" + name,
		name,
	}
}

// Resolve finds the factory for a backend identifier. It returns the
// registry id that matched.
func Resolve(name any) (Factory, string, error) {
	id, ok := name.(string)
	if !ok {
		return nil, "", &runtime.DriverError{Name: name, Cause: runtime.ErrInvalidDriverName}
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, candidate := range Candidates(id) {
		if f, ok := registry[candidate]; ok {
			debug.Debug("driver resolved", "name", id, "id", candidate)
			return f, candidate, nil
		}
	}
	return nil, "", &runtime.DriverError{Name: id, Cause: runtime.ErrDriverNotFound}
}

// Create resolves name and builds the driver.
func Create(name any, opts Options) (Driver, error) {
	factory, id, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	d, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("create driver %s: %w", id, err)
	}
	return d, nil
}

// Drivers returns the registered ids sorted.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
