package oprf

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwesterb/go-ristretto"
)

// CompressedPointLen is the exact byte width of a compressed ristretto
// point on the wire.
const CompressedPointLen = 32

var (
	// ErrMalformedPoint is returned when an evaluation input is not a
	// validly-encoded compressed point. This is a caller error.
	ErrMalformedPoint = errors.New("input is not a valid compressed point")

	// ErrUnknownTag is returned for evaluation or puncture requests
	// against an epoch tag the server was not created with.
	ErrUnknownTag = errors.New("unknown epoch tag")

	// ErrEpochPunctured is returned when evaluating under an epoch whose
	// key has been punctured. Puncturing is one-way; the evaluation must
	// fail closed, never silently succeed.
	ErrEpochPunctured = errors.New("epoch key has been punctured")
)

// Evaluation is the result of one PRF evaluation: the output point in
// compressed form, plus a proof of correct evaluation when requested.
type Evaluation struct {
	Output []byte `json:"output"`
	Proof  *Proof `json:"proof,omitempty"`
}

// epochKey is the per-epoch secret key plus its public commitment.
// Once punctured the scalar is zeroed and never usable again.
type epochKey struct {
	tag       []byte
	key       ristretto.Scalar
	public    ristretto.Point
	punctured bool
}

// Server is a puncturable OPRF service instance scoped to a fixed set
// of epoch tags. Safe for concurrent use.
type Server struct {
	mu    sync.RWMutex
	keys  []*epochKey
	byTag map[string]int
}

// NewServer creates a service instance with a fresh random key for each
// of the named epoch tags.
func NewServer(mdTags [][]byte) (*Server, error) {
	if len(mdTags) == 0 {
		return nil, errors.New("at least one epoch tag is required")
	}

	keys := make([]*epochKey, len(mdTags))
	byTag := make(map[string]int, len(mdTags))
	for i, tag := range mdTags {
		if _, exists := byTag[string(tag)]; exists {
			return nil, fmt.Errorf("duplicate epoch tag %q", tag)
		}

		ek := &epochKey{tag: append([]byte(nil), tag...)}
		ek.key.Rand()
		ek.public.ScalarMultBase(&ek.key)
		keys[i] = ek
		byTag[string(tag)] = i
	}

	return &Server{keys: keys, byTag: byTag}, nil
}

// TagIndex returns the key index for an epoch tag.
func (s *Server) TagIndex(tag []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byTag[string(tag)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return idx, nil
}

// PublicKey returns the compressed public commitment for the epoch at
// mdIndex, against which DLEQ proofs verify.
func (s *Server) PublicKey(mdIndex int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if mdIndex < 0 || mdIndex >= len(s.keys) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownTag, mdIndex)
	}
	return s.keys[mdIndex].public.Bytes(), nil
}

// Evaluate computes the PRF at the given compressed point under the key
// for mdIndex. When verifiable is set, the evaluation carries a DLEQ
// proof binding the output to the epoch's public key.
func (s *Server) Evaluate(input []byte, mdIndex int, verifiable bool) (*Evaluation, error) {
	if len(input) != CompressedPointLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedPoint, len(input), CompressedPointLen)
	}

	var buf [CompressedPointLen]byte
	copy(buf[:], input)
	var point ristretto.Point
	if !point.SetBytes(&buf) {
		return nil, ErrMalformedPoint
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if mdIndex < 0 || mdIndex >= len(s.keys) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownTag, mdIndex)
	}
	ek := s.keys[mdIndex]
	if ek.punctured {
		return nil, fmt.Errorf("%w: %q", ErrEpochPunctured, ek.tag)
	}

	var output ristretto.Point
	output.ScalarMult(&point, &ek.key)

	eval := &Evaluation{Output: output.Bytes()}
	if verifiable {
		proof, err := proveDLEQ(&ek.key, &ek.public, &point, &output)
		if err != nil {
			return nil, fmt.Errorf("generating evaluation proof: %w", err)
		}
		eval.Proof = proof
	}

	return eval, nil
}

// EpochStatus is one epoch's public state.
type EpochStatus struct {
	Tag       []byte
	Punctured bool
}

// Status reports every epoch tag and whether it has been punctured, in
// key-index order.
func (s *Server) Status() []EpochStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := make([]EpochStatus, len(s.keys))
	for i, ek := range s.keys {
		status[i] = EpochStatus{Tag: append([]byte(nil), ek.tag...), Punctured: ek.punctured}
	}
	return status
}

// Puncture irreversibly removes the epoch tag's key. The transition is
// one-way: the scalar is zeroed in place and every later Evaluate for
// the tag fails with ErrEpochPunctured.
func (s *Server) Puncture(tag []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byTag[string(tag)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}

	ek := s.keys[idx]
	ek.punctured = true
	ek.key.SetZero()
	return nil
}
