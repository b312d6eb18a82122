package venue

import (
	"fmt"
	"sync"

	"github.com/matrix-911/Airbitrage/internal/config"
	"github.com/matrix-911/Airbitrage/internal/logger"
)

// Constructor builds a Connector for one venue from its options and a
// sink to publish quotes through. Each concrete venue package registers
// its own constructor from an init() func, mirroring how the teacher
// wires providers into the pricing bounded context's DI tokens, but
// keyed by venue name instead of a single hardcoded provider.
type Constructor func(opts config.VenueOptions, sink Sink, log logger.LoggerInterface) (Connector, error)

var (
	registryMu sync.Mutex
	registry   = make(map[string]Constructor)
)

// Register adds a venue constructor under name. Called from each
// concrete venue package's init(); panics on a duplicate name since
// that can only be a programming error.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("venue: duplicate registration for %q", name))
	}
	registry[name] = ctor
}

// Build constructs the connector registered under name, or an error if
// no venue package registered that name.
func Build(name string, opts config.VenueOptions, sink Sink, log logger.LoggerInterface) (Connector, error) {
	registryMu.Lock()
	ctor, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("venue: no connector registered for %q", name)
	}
	return ctor(opts, sink, log)
}

// Registered returns the names of every currently registered venue, for
// diagnostics and tests.
func Registered() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
