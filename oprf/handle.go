package oprf

import (
	"errors"
	"sync"
)

// Handle is an opaque reference to a server instance for embedders that
// cannot hold Go objects across their boundary. Handles are indices
// into a process-wide registry; raw memory addresses are never exposed.
type Handle uint64

// ErrInvalidHandle is returned when a handle does not reference a live
// instance. Released handles stay invalid forever, so a double release
// is reported rather than corrupting another instance.
var ErrInvalidHandle = errors.New("invalid or released server handle")

var registry = struct {
	mu      sync.Mutex
	next    Handle
	servers map[Handle]*Server
}{
	next:    1,
	servers: make(map[Handle]*Server),
}

// Create constructs a server instance scoped to the given epoch tags
// and returns an exclusively-owned handle to it. The handle must be
// freed with Release.
func Create(mdTags [][]byte) (Handle, error) {
	server, err := NewServer(mdTags)
	if err != nil {
		return 0, err
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	h := registry.next
	registry.next++
	registry.servers[h] = server
	return h, nil
}

// Release destroys the instance behind the handle. The handle must not
// be used afterwards; releasing twice is an error, not a crash.
func Release(h Handle) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.servers[h]; !ok {
		return ErrInvalidHandle
	}
	delete(registry.servers, h)
	return nil
}

func lookup(h Handle) (*Server, error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	server, ok := registry.servers[h]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return server, nil
}

// EvaluateHandle evaluates the PRF on the instance behind the handle.
func EvaluateHandle(h Handle, input []byte, mdIndex int, verifiable bool) (*Evaluation, error) {
	server, err := lookup(h)
	if err != nil {
		return nil, err
	}
	return server.Evaluate(input, mdIndex, verifiable)
}

// PunctureHandle punctures an epoch key on the instance behind the handle.
func PunctureHandle(h Handle, tag []byte) error {
	server, err := lookup(h)
	if err != nil {
		return err
	}
	return server.Puncture(tag)
}
