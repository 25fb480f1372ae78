package module

import "sync"

// process wide port sets keyed by module name, filled by api.Mount
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores the port set for a module name, replacing any earlier one
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// PortsAs fetches the port set for name as a T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	out, ok := reg[name].(T)
	return out, ok
}

// Reset clears the registry; tests call it in Cleanup
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reg = map[string]any{}
}
