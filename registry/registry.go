// Package registry names the available digest algorithms.
//
// The built-in hashers register themselves at init; additional
// algorithms can be registered by callers before first use. Config and
// CLI layers resolve algorithm names through this registry rather than
// linking hasher types directly.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"xdao.co/dualcas/digest"
)

var (
	mu      sync.RWMutex
	hashers = map[string]func() digest.Hasher{}
)

// Register adds a named hasher constructor.
func Register(name string, open func() digest.Hasher) error {
	if name == "" {
		return fmt.Errorf("registry: hasher name is required")
	}
	if open == nil {
		return fmt.Errorf("registry: hasher %q missing constructor", name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := hashers[name]; exists {
		return fmt.Errorf("registry: hasher %q already registered", name)
	}
	hashers[name] = open
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(name string, open func() digest.Hasher) {
	if err := Register(name, open); err != nil {
		panic(err)
	}
}

// Names returns the registered algorithm names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(hashers))
	for name := range hashers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Open constructs the named hasher.
func Open(name string) (digest.Hasher, error) {
	mu.RLock()
	open, ok := hashers[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: unknown hasher %q", name)
	}
	return open(), nil
}

func init() {
	MustRegister(digest.AlgSHA256, func() digest.Hasher { return digest.SHA256{} })
	MustRegister(digest.AlgBlake2b, func() digest.Hasher { return digest.Blake2b{} })
	MustRegister(digest.AlgBlake3, func() digest.Hasher { return digest.Blake3{} })
	MustRegister(digest.AlgChecksum, func() digest.Hasher { return digest.Checksum{} })
}
