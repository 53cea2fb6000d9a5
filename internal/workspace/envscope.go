// Package workspace provisions an isolated home directory and environment
// for the orchestrator under test. The harness process environment is
// never modified; the provisioned environment is passed explicitly to
// every subprocess.
package workspace

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// EnvSource tracks where an environment variable came from (for debugging).
type EnvSource string

const (
	EnvSourceOS        EnvSource = "os"        // From os.Environ()
	EnvSourceProvision EnvSource = "provision" // Set during workspace provisioning
	EnvSourceDotEnv    EnvSource = "dotenv"    // From the configured env file
)

// EnvEntry represents a single environment variable with metadata.
type EnvEntry struct {
	Key    string
	Value  string
	Source EnvSource
}

// EnvScope is an isolated environment scope for orchestrator subprocesses.
// It does NOT modify the global os.Env.
type EnvScope struct {
	mu      sync.RWMutex
	entries map[string]EnvEntry
}

// NewEnvScope creates a new EnvScope. If includeOS is true, it includes
// os.Environ() as the base layer.
func NewEnvScope(includeOS bool) *EnvScope {
	e := &EnvScope{entries: make(map[string]EnvEntry)}
	if includeOS {
		for _, env := range os.Environ() {
			if k, v, ok := strings.Cut(env, "="); ok {
				e.entries[k] = EnvEntry{Key: k, Value: v, Source: EnvSourceOS}
			}
		}
	}
	return e
}

// Set adds or updates a variable in this scope.
func (e *EnvScope) Set(key, value string, source EnvSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries[key] = EnvEntry{Key: key, Value: value, Source: source}
}

// Get retrieves a variable from this scope.
func (e *EnvScope) Get(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if entry, ok := e.entries[key]; ok {
		return entry.Value, true
	}
	return "", false
}

// ToSlice returns all variables as sorted KEY=value strings (for cmd.Env).
func (e *EnvScope) ToSlice() []string {
	all := e.ToMap()
	result := make([]string, 0, len(all))
	for k, v := range all {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// ToMap returns all variables as a map.
func (e *EnvScope) ToMap() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	all := make(map[string]string, len(e.entries))
	for k, entry := range e.entries {
		all[k] = entry.Value
	}
	return all
}
