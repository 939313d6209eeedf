package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/crypto/sha3"

	"github.com/rillian/sta-rs/oprf"
)

// ErrServiceUnavailable is returned when the randomness service cannot
// be reached. Clients must surface it rather than silently falling back
// to local randomness; the fallback is a configuration choice, not an
// error path.
var ErrServiceUnavailable = errors.New("randomness service unavailable")

// RandomnessSource evaluates the puncturable OPRF for an epoch. The
// evaluation is a synchronous request with explicit failure modes
// (service unavailable, epoch already punctured), not part of the
// client's internal concurrency.
type RandomnessSource interface {
	// Evaluate computes the PRF over a compressed point input under the
	// epoch's key, with a DLEQ proof when verifiable is set.
	Evaluate(ctx context.Context, input []byte, epoch string, verifiable bool) (*oprf.Evaluation, error)

	// PublicKey returns the epoch's public commitment for verifying
	// evaluation proofs.
	PublicKey(ctx context.Context, epoch string) ([]byte, error)
}

// LocalSource adapts an in-process oprf.Server to the RandomnessSource
// interface, for tests and single-binary demo deployments.
type LocalSource struct {
	Server *oprf.Server
}

// Evaluate resolves the epoch tag and evaluates in-process.
func (l *LocalSource) Evaluate(_ context.Context, input []byte, epoch string, verifiable bool) (*oprf.Evaluation, error) {
	idx, err := l.Server.TagIndex([]byte(epoch))
	if err != nil {
		return nil, err
	}
	return l.Server.Evaluate(input, idx, verifiable)
}

// PublicKey returns the epoch's public commitment.
func (l *LocalSource) PublicKey(_ context.Context, epoch string) ([]byte, error) {
	idx, err := l.Server.TagIndex([]byte(epoch))
	if err != nil {
		return nil, err
	}
	return l.Server.PublicKey(idx)
}

// SampleOPRFRandomness derives the per-report randomness by querying
// the OPRF service; triple generation expands it into the transported
// tag and the dealing seed. The measurement is hashed to a curve point
// and blinded with a fresh scalar before the query, so neither the
// service nor a transcript observer learns the measurement; the epoch
// key binds the randomness to the epoch. Failures propagate unchanged:
// a punctured epoch or unreachable service must never silently degrade
// to local randomness.
func (c *Client) SampleOPRFRandomness(ctx context.Context, source RandomnessSource, out []byte) error {
	if source == nil {
		return errors.New("randomness source cannot be nil")
	}
	if len(out) != TagLen {
		return fmt.Errorf("tag buffer must be %d bytes, got %d", TagLen, len(out))
	}

	var point ristretto.Point
	point.Derive(c.Measurement)

	var blind, blindInv ristretto.Scalar
	blind.Rand()
	blindInv.Inverse(&blind)

	var blinded ristretto.Point
	blinded.ScalarMult(&point, &blind)
	blindedBytes := blinded.Bytes()

	eval, err := source.Evaluate(ctx, blindedBytes, c.Epoch, c.VerifyEvaluations)
	if err != nil {
		return fmt.Errorf("oprf evaluation for epoch %q: %w", c.Epoch, err)
	}

	if c.VerifyEvaluations {
		publicKey, err := source.PublicKey(ctx, c.Epoch)
		if err != nil {
			return fmt.Errorf("fetching epoch public key: %w", err)
		}
		if err := oprf.VerifyProof(eval.Proof, publicKey, blindedBytes, eval.Output); err != nil {
			return fmt.Errorf("oprf evaluation for epoch %q: %w", c.Epoch, err)
		}
	}

	var evaluated ristretto.Point
	var buf [oprf.CompressedPointLen]byte
	if len(eval.Output) != oprf.CompressedPointLen {
		return fmt.Errorf("oprf output: %w", oprf.ErrMalformedPoint)
	}
	copy(buf[:], eval.Output)
	if !evaluated.SetBytes(&buf) {
		return fmt.Errorf("oprf output: %w", oprf.ErrMalformedPoint)
	}

	// Unblind to recover key*H(measurement), shared by every client
	// reporting the same measurement in this epoch.
	var unblinded ristretto.Point
	unblinded.ScalarMult(&evaluated, &blindInv)

	h := sha3.New256()
	h.Write([]byte("star-oprf-tag"))
	h.Write(c.Measurement)
	h.Write(unblinded.Bytes())
	copy(out, h.Sum(nil))
	return nil
}
