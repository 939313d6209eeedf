package protocol

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// TagLen is the byte width of a derived randomness tag.
const TagLen = 32

// MeasurementSampler supplies the measurement a client reports.
// Production clients report a real value; load tests use the Zipf
// sampler to model realistic measurement popularity.
type MeasurementSampler interface {
	Sample() []byte
}

// StaticSampler always reports the same measurement.
type StaticSampler []byte

// Sample returns the fixed measurement.
func (s StaticSampler) Sample() []byte {
	return []byte(s)
}

// ZipfSampler draws synthetic measurements from a Zipf distribution
// over n categories, the standard load-testing shape where a few
// measurements are very popular and most are rare.
type ZipfSampler struct {
	zipf *rand.Zipf
}

// NewZipfSampler creates a sampler over n categories with exponent s.
// The exponent must be greater than 1.
func NewZipfSampler(n uint64, s float64, seed int64) (*ZipfSampler, error) {
	if n == 0 {
		return nil, errors.New("zipf sampler needs at least one category")
	}
	if s <= 1 {
		return nil, errors.New("zipf exponent must be greater than 1")
	}
	zipf := rand.NewZipf(rand.New(rand.NewSource(seed)), s, 1, n-1)
	if zipf == nil {
		return nil, errors.New("invalid zipf parameters")
	}
	return &ZipfSampler{zipf: zipf}, nil
}

// Sample draws one synthetic measurement.
func (z *ZipfSampler) Sample() []byte {
	return []byte(fmt.Sprintf("measurement-%d", z.zipf.Uint64()))
}

// Client prepares one report for one epoch: a measurement sampled from
// the configured policy, the reporting threshold, and optional
// auxiliary bytes attached to the report.
//
// Clients share no mutable state; any number of them can generate
// triples concurrently without coordination.
type Client struct {
	Measurement []byte
	Threshold   uint32
	Epoch       string
	Aux         []byte

	// VerifyEvaluations requests and checks DLEQ proofs on OPRF
	// evaluations.
	VerifyEvaluations bool

	// rng overrides the entropy source for the share's evaluation
	// point; nil selects crypto/rand.
	rng io.Reader
}

// NewClient creates a client with a measurement drawn from the sampler.
func NewClient(sampler MeasurementSampler, threshold uint32, epoch string, aux []byte, rng io.Reader) (*Client, error) {
	if sampler == nil {
		return nil, errors.New("measurement sampler cannot be nil")
	}
	if threshold == 0 {
		return nil, errors.New("threshold must be at least 1")
	}
	if epoch == "" {
		return nil, errors.New("epoch cannot be empty")
	}

	return &Client{
		Measurement: sampler.Sample(),
		Threshold:   threshold,
		Epoch:       epoch,
		Aux:         append([]byte(nil), aux...),
		rng:         rng,
	}, nil
}

// NewZipfClient creates a client with a Zipf-sampled synthetic
// measurement, the load-testing configuration.
func NewZipfClient(n uint64, s float64, threshold uint32, epoch string, aux []byte, seed int64, rng io.Reader) (*Client, error) {
	sampler, err := NewZipfSampler(n, s, seed)
	if err != nil {
		return nil, err
	}
	return NewClient(sampler, threshold, epoch, aux, rng)
}

// SampleLocalRandomness derives the per-report randomness entirely
// client-side as a pseudorandom function of (measurement, epoch). The
// randomness is expanded into the transported tag and the dealing seed
// at triple generation. Cheap, but offers no protection against an
// aggregation server that retains per-epoch tag-measurement mappings
// indefinitely.
func (c *Client) SampleLocalRandomness(out []byte) error {
	if len(out) != TagLen {
		return fmt.Errorf("tag buffer must be %d bytes, got %d", TagLen, len(out))
	}

	reader := hkdf.New(sha3.New256, c.Measurement, []byte(c.Epoch), []byte("star-local-randomness"))
	if _, err := io.ReadFull(reader, out); err != nil {
		return fmt.Errorf("deriving local randomness: %w", err)
	}
	return nil
}
