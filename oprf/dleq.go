package oprf

import (
	"errors"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/crypto/sha3"
)

// Proof is a Chaum-Pedersen DLEQ proof that an evaluation output was
// produced with the same key that the epoch's public commitment was
// derived from: log_G(public) == log_input(output).
type Proof struct {
	C []byte `json:"c"`
	S []byte `json:"s"`
}

const scalarLen = 32

var dleqDomain = []byte("sta-rs-dleq-v1")

// challengeScalar hashes the proof transcript to a scalar via SHA3 and
// the group's derive map. Both prover and verifier must see identical
// transcripts.
func challengeScalar(points ...*ristretto.Point) *ristretto.Scalar {
	h := sha3.New512()
	h.Write(dleqDomain)
	for _, p := range points {
		h.Write(p.Bytes())
	}

	var c ristretto.Scalar
	c.Derive(h.Sum(nil))
	return &c
}

// proveDLEQ produces a proof for output = key*input given the public
// commitment public = key*G.
func proveDLEQ(key *ristretto.Scalar, public, input, output *ristretto.Point) (*Proof, error) {
	var r ristretto.Scalar
	r.Rand()

	var commitG, commitP ristretto.Point
	commitG.ScalarMultBase(&r)
	commitP.ScalarMult(input, &r)

	var base ristretto.Point
	base.SetBase()
	c := challengeScalar(&base, public, input, output, &commitG, &commitP)

	// s = r - c*key
	var s ristretto.Scalar
	s.Mul(c, key)
	s.Sub(&r, &s)

	return &Proof{C: c.Bytes(), S: s.Bytes()}, nil
}

// VerifyProof checks a DLEQ proof against the epoch public key, the
// evaluated input point, and the evaluation output.
func VerifyProof(proof *Proof, publicKey, input, output []byte) error {
	if proof == nil {
		return errors.New("missing evaluation proof")
	}

	pub, err := decodePoint(publicKey)
	if err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	in, err := decodePoint(input)
	if err != nil {
		return fmt.Errorf("input point: %w", err)
	}
	out, err := decodePoint(output)
	if err != nil {
		return fmt.Errorf("output point: %w", err)
	}
	c, err := decodeScalar(proof.C)
	if err != nil {
		return fmt.Errorf("proof challenge: %w", err)
	}
	s, err := decodeScalar(proof.S)
	if err != nil {
		return fmt.Errorf("proof response: %w", err)
	}

	// Reconstruct the commitments: A = s*G + c*public, B = s*input + c*output
	var commitG, commitP, tmp ristretto.Point
	commitG.ScalarMultBase(s)
	tmp.ScalarMult(pub, c)
	commitG.Add(&commitG, &tmp)

	commitP.ScalarMult(in, s)
	tmp.ScalarMult(out, c)
	commitP.Add(&commitP, &tmp)

	var base ristretto.Point
	base.SetBase()
	expected := challengeScalar(&base, pub, in, out, &commitG, &commitP)
	if !expected.Equals(c) {
		return errors.New("evaluation proof does not verify")
	}
	return nil
}

func decodePoint(data []byte) (*ristretto.Point, error) {
	if len(data) != CompressedPointLen {
		return nil, ErrMalformedPoint
	}
	var buf [CompressedPointLen]byte
	copy(buf[:], data)
	var p ristretto.Point
	if !p.SetBytes(&buf) {
		return nil, ErrMalformedPoint
	}
	return &p, nil
}

func decodeScalar(data []byte) (*ristretto.Scalar, error) {
	if len(data) != scalarLen {
		return nil, errors.New("invalid scalar encoding")
	}
	var buf [scalarLen]byte
	copy(buf[:], data)
	var s ristretto.Scalar
	s.SetBytes(&buf)
	return &s, nil
}
