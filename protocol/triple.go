package protocol

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/rillian/sta-rs/crypto"
)

// Triple is one client's complete report unit for one epoch: the
// randomness tag grouping it with other reports of the same
// measurement, a single secret share of the (measurement, aux) report,
// and the epoch identifier. Triples are immutable once generated; their
// only lifecycle is transport to the aggregation server.
type Triple struct {
	Tag   []byte `json:"tag"`
	Share []byte `json:"share"`
	Epoch string `json:"epoch"`
}

// splitReportRandomness expands the per-(measurement, epoch) randomness
// into the transported tag and the private dealing seed. Only the tag
// leaves the client; the seed stays local and keys the polynomial
// coefficients, so every client holding the same randomness deals
// shares of the same polynomials.
func splitReportRandomness(rnd []byte) (tag, seed []byte, err error) {
	reader := hkdf.New(sha3.New256, rnd, nil, []byte("star-report-expand"))
	buf := make([]byte, 2*TagLen)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, nil, fmt.Errorf("expanding report randomness: %w", err)
	}
	return buf[:TagLen], buf[TagLen:], nil
}

// GenerateTriple produces the client's report. The randomness strategy
// is chosen explicitly by the caller: a nil source selects local
// derivation, a non-nil source selects the OPRF service, and a failing
// source is an error — never a silent fallback to the weaker local
// strategy.
//
// The tag and the dealing seed both derive from the same
// (measurement, epoch) randomness, so clients reporting the same
// measurement share one set of polynomials and the aggregator can
// interpolate across their shares; only the evaluation point is fresh
// per client. One triple carries exactly one share — a client
// participates once per measurement per epoch.
func GenerateTriple(ctx context.Context, client *Client, source RandomnessSource) (*Triple, error) {
	rnd := make([]byte, TagLen)
	if source == nil {
		if err := client.SampleLocalRandomness(rnd); err != nil {
			return nil, err
		}
	} else {
		if err := client.SampleOPRFRandomness(ctx, source, rnd); err != nil {
			return nil, err
		}
	}

	tag, seed, err := splitReportRandomness(rnd)
	if err != nil {
		return nil, err
	}

	coeffs := sha3.NewShake256()
	coeffs.Write(seed)

	secret := EncodeReport(client.Measurement, client.Aux)
	evaluator, err := crypto.Deal(secret, client.Threshold, coeffs)
	if err != nil {
		return nil, fmt.Errorf("dealing report: %w", err)
	}

	pointSource := client.rng
	if pointSource == nil {
		pointSource = rand.Reader
	}
	evaluator.SetPointSource(pointSource)

	share, err := evaluator.Next()
	if err != nil {
		return nil, fmt.Errorf("drawing share: %w", err)
	}
	shareBytes, err := share.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding share: %w", err)
	}

	return &Triple{
		Tag:   tag,
		Share: shareBytes,
		Epoch: client.Epoch,
	}, nil
}
