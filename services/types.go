package services

import "github.com/rillian/sta-rs/oprf"

// RandomnessRequest is a batch PRF evaluation request. Each point must
// be a compressed ristretto point; the epoch selects the key.
type RandomnessRequest struct {
	Epoch      string   `json:"epoch"`
	Points     [][]byte `json:"points"`
	Verifiable bool     `json:"verifiable,omitempty"`
}

// RandomnessResponse carries one evaluation per requested point, in
// request order.
type RandomnessResponse struct {
	Epoch       string             `json:"epoch"`
	Evaluations []*oprf.Evaluation `json:"evaluations"`
}

// RandomnessInfo describes the randomness server's epochs: tag names,
// public key commitments for proof verification, and whether the epoch
// has been punctured.
type RandomnessInfo struct {
	Epochs []EpochInfo `json:"epochs"`
}

// EpochInfo is one epoch's public state.
type EpochInfo struct {
	Tag       string `json:"tag"`
	PublicKey []byte `json:"public_key,omitempty"`
	Punctured bool   `json:"punctured"`
}

// PunctureRequest closes an epoch on the randomness server.
type PunctureRequest struct {
	Epoch string `json:"epoch"`
}

// SubmitResponse confirms a staged triple.
type SubmitResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message,omitempty"`
}
