package crypto

import (
	"errors"
	"fmt"
	"io"
	"math/big"
)

var (
	// ErrInvalidSecretLength is returned when a secret is not a whole
	// number of field-element chunks. Callers must pad explicitly; the
	// dealer never truncates.
	ErrInvalidSecretLength = errors.New("secret length must be a multiple of the field element length")

	// ErrInvalidThreshold is returned when the threshold is outside the
	// range supported by the single-byte evaluation point domain.
	ErrInvalidThreshold = errors.New("threshold must be between 1 and 255")

	// ErrInconsistentShareLength is returned when a share set mixes
	// shares with different numbers of chunks.
	ErrInconsistentShareLength = errors.New("all shares must have the same length")

	// ErrInsufficientShares is returned when fewer than threshold
	// distinct evaluation points are available. This is the expected
	// outcome when too few clients agree, not a bug.
	ErrInsufficientShares = errors.New("not enough shares to recover original secret")
)

// Share is one evaluation of a dealt secret: the evaluation point X and
// one Y value per secret chunk, all evaluated at the same X.
//
// Shares with the same X carry no independent information; recovery
// deduplicates them rather than double-counting.
type Share struct {
	X byte
	Y []*big.Int
}

// MarshalBinary serializes the share as X followed by the fixed-width
// encoding of each Y entry in chunk order: 1 + n*FieldElementLen bytes.
func (s *Share) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 1+len(s.Y)*FieldElementLen)
	buf = append(buf, s.X)
	for _, y := range s.Y {
		buf = append(buf, EncodeFieldElement(y)...)
	}
	return buf, nil
}

// UnmarshalBinary decodes a share from its wire form, validating every
// chunk encoding.
func (s *Share) UnmarshalBinary(data []byte) error {
	if len(data) < 1 || (len(data)-1)%FieldElementLen != 0 {
		return fmt.Errorf("%w: share must be 1 + n*%d bytes", ErrInvalidEncoding, FieldElementLen)
	}
	x := data[0]
	nChunks := (len(data) - 1) / FieldElementLen
	ys := make([]*big.Int, nChunks)
	for i := 0; i < nChunks; i++ {
		y, err := DecodeFieldElement(data[1+i*FieldElementLen : 1+(i+1)*FieldElementLen])
		if err != nil {
			return fmt.Errorf("share chunk %d: %w", i, err)
		}
		ys[i] = y
	}
	s.X = x
	s.Y = ys
	return nil
}

// Evaluator holds the polynomials for one dealt secret and produces a
// lazy, effectively unbounded stream of freshly sampled shares.
//
// Evaluation points are sampled independently and uniformly rather than
// enumerated, so the stream does not leak how many shares were issued.
// The cost is a birthday-bound collision risk within the single-byte
// point domain: callers drawing close to 255 shares should draw extra
// and rely on recovery's deduplication.
type Evaluator struct {
	polys [][]*big.Int
	rng   io.Reader
}

// Next samples a fresh evaluation point and evaluates every polynomial
// at it. The point is drawn from 1..255; zero is excluded since the
// polynomials evaluate to the secret itself at zero.
func (e *Evaluator) Next() (*Share, error) {
	var xBuf [1]byte
	for {
		if _, err := io.ReadFull(e.rng, xBuf[:]); err != nil {
			return nil, fmt.Errorf("sampling evaluation point: %w", err)
		}
		if xBuf[0] != 0 {
			break
		}
	}

	x := new(big.Int).SetInt64(int64(xBuf[0]))
	ys := make([]*big.Int, len(e.polys))
	for i, poly := range e.polys {
		ys[i] = evalPolynomial(poly, x)
	}

	return &Share{X: xBuf[0], Y: ys}, nil
}

// SetPointSource replaces the entropy source used for evaluation
// points. Seeded dealing uses a deterministic source for the polynomial
// coefficients so independent dealers reproduce the same polynomials,
// while each dealer keeps sampling its evaluation points from fresh
// entropy; identical point streams would collapse to one share under
// recovery's deduplication.
func (e *Evaluator) SetPointSource(rng io.Reader) {
	e.rng = rng
}

// Take draws n shares from the stream. The shares are not guaranteed to
// have distinct evaluation points.
func (e *Evaluator) Take(n int) ([]*Share, error) {
	shares := make([]*Share, n)
	for i := range shares {
		share, err := e.Next()
		if err != nil {
			return nil, err
		}
		shares[i] = share
	}
	return shares, nil
}

// Deal splits a secret into threshold-recoverable shares. The secret is
// consumed in FieldElementLen chunks, each becoming the constant term
// of a fresh random polynomial of degree threshold-1. The returned
// Evaluator lazily produces shares; it is the only holder of the
// polynomials and is never persisted.
//
// The entropy source is injected so deployments without a system RNG
// can supply their own. A deterministic source makes dealing
// reproducible: the same secret and byte stream rebuild the same
// polynomials, so independent dealers produce mutually interpolable
// shares. Such dealers must override the evaluation point source via
// SetPointSource, or their shares all land on the same points.
func Deal(secret []byte, threshold uint32, rng io.Reader) (*Evaluator, error) {
	if threshold < 1 || threshold > 255 {
		return nil, ErrInvalidThreshold
	}
	if len(secret) == 0 || len(secret)%FieldElementLen != 0 {
		return nil, ErrInvalidSecretLength
	}

	nChunks := len(secret) / FieldElementLen
	polys := make([][]*big.Int, nChunks)
	for i := 0; i < nChunks; i++ {
		el, err := DecodeFieldElement(secret[i*FieldElementLen : (i+1)*FieldElementLen])
		if err != nil {
			return nil, fmt.Errorf("secret chunk %d: %w", i, err)
		}
		poly, err := randomPolynomial(el, int(threshold)-1, rng)
		if err != nil {
			return nil, err
		}
		polys[i] = poly
	}

	return &Evaluator{polys: polys, rng: rng}, nil
}

// Recover reconstructs a dealt secret from an unordered collection of
// shares. Shares must all have the same number of chunks; shares with
// repeated evaluation points are deduplicated (first occurrence wins)
// and do not inflate the effective share count. Exactly threshold
// distinct shares are interpolated; any valid subset reproduces the
// identical secret.
func Recover(threshold uint32, shares []*Share) ([]byte, error) {
	if threshold < 1 || threshold > 255 {
		return nil, ErrInvalidThreshold
	}

	shareLength := -1
	var seen [256]bool
	distinct := make([]*Share, 0, threshold)

	for _, share := range shares {
		if shareLength == -1 {
			shareLength = len(share.Y)
		}
		if len(share.Y) != shareLength {
			return nil, ErrInconsistentShareLength
		}
		if !seen[share.X] {
			seen[share.X] = true
			distinct = append(distinct, share)
		}
	}

	if len(distinct) == 0 || len(distinct) < int(threshold) {
		return nil, ErrInsufficientShares
	}

	// Only the threshold number of shares is needed to recover
	subset := distinct[:threshold]
	xs := make([]*big.Int, len(subset))
	for i, share := range subset {
		xs[i] = new(big.Int).SetInt64(int64(share.X))
	}

	secret := make([]byte, 0, shareLength*FieldElementLen)
	ys := make([]*big.Int, len(subset))
	for chunk := 0; chunk < shareLength; chunk++ {
		for i, share := range subset {
			ys[i] = share.Y[chunk]
		}
		el, err := InterpolateAtZero(xs, ys)
		if err != nil {
			return nil, fmt.Errorf("recovering chunk %d: %w", chunk, err)
		}
		secret = append(secret, EncodeFieldElement(el)...)
	}

	return secret, nil
}
