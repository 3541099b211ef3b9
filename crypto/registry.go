package crypto

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownAlgorithm is returned by Lookup for unregistered names.
var ErrUnknownAlgorithm = errors.New("crypto: unknown algorithm")

// Registered algorithm names.
const (
	AlgorithmEd25519    = "ed25519"
	AlgorithmDilithium3 = "dilithium3"
)

var (
	mu        sync.RWMutex
	functions = map[string]Function{}
)

// Register adds a Function under its Name. Registering a duplicate or
// unnamed function is an error.
//
// Functions typically register themselves in init(); the binary must import
// the implementing package for registration to occur.
func Register(fn Function) error {
	if fn == nil {
		return fmt.Errorf("crypto: nil function")
	}
	if fn.Name() == "" {
		return fmt.Errorf("crypto: function name is required")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := functions[fn.Name()]; exists {
		return fmt.Errorf("crypto: function %q already registered", fn.Name())
	}
	functions[fn.Name()] = fn
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(fn Function) {
	if err := Register(fn); err != nil {
		panic(err)
	}
}

// Lookup returns the Function registered under name.
func Lookup(name string) (Function, error) {
	mu.RLock()
	fn, ok := functions[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return fn, nil
}

// Default returns the ed25519 function, the scheme SBMF v1 messages are
// signed with unless a caller selects otherwise.
func Default() Function {
	fn, err := Lookup(AlgorithmEd25519)
	if err != nil {
		// ed25519 registers in this package's init; absence is programmer error.
		panic(err)
	}
	return fn
}

// Names returns the registered algorithm names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(functions))
	for name := range functions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	MustRegister(ed25519Function{})
	MustRegister(dilithium3Function{})
}
