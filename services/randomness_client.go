package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rillian/sta-rs/oprf"
	"github.com/rillian/sta-rs/protocol"
)

// RandomnessClient queries a remote randomness server. It implements
// protocol.RandomnessSource, mapping transport failures onto the
// protocol's error kinds so callers can distinguish an unreachable
// service from a punctured epoch.
type RandomnessClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewRandomnessClient creates a client for the randomness server at
// baseURL.
func NewRandomnessClient(baseURL string) *RandomnessClient {
	return &RandomnessClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Evaluate sends one blinded point for evaluation under the epoch's key.
func (c *RandomnessClient) Evaluate(ctx context.Context, input []byte, epoch string, verifiable bool) (*oprf.Evaluation, error) {
	body, err := json.Marshal(RandomnessRequest{
		Epoch:      epoch,
		Points:     [][]byte{input},
		Verifiable: verifiable,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/randomness", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var randResp RandomnessResponse
	if err := json.NewDecoder(resp.Body).Decode(&randResp); err != nil {
		return nil, fmt.Errorf("decoding randomness response: %w", err)
	}
	if len(randResp.Evaluations) != 1 {
		return nil, fmt.Errorf("expected 1 evaluation, got %d", len(randResp.Evaluations))
	}
	return randResp.Evaluations[0], nil
}

// PublicKey fetches the epoch's public commitment from the server's
// info endpoint.
func (c *RandomnessClient) PublicKey(ctx context.Context, epoch string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/info", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var info RandomnessInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding info response: %w", err)
	}

	for _, e := range info.Epochs {
		if e.Tag == epoch {
			if e.Punctured {
				return nil, fmt.Errorf("%w: %q", oprf.ErrEpochPunctured, epoch)
			}
			return e.PublicKey, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", oprf.ErrUnknownTag, epoch)
}

// statusError converts an HTTP failure status back into the protocol
// error it encodes.
func statusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch resp.StatusCode {
	case http.StatusGone:
		return fmt.Errorf("%w: %s", oprf.ErrEpochPunctured, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", oprf.ErrUnknownTag, detail)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", oprf.ErrMalformedPoint, detail)
	default:
		return fmt.Errorf("%w: status %d: %s", protocol.ErrServiceUnavailable, resp.StatusCode, detail)
	}
}
