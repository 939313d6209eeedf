package protocol

import (
	"context"
	"encoding/hex"
	"errors"
	"sort"
	"sync"

	"github.com/rillian/sta-rs/crypto"
)

// AggregationServer recovers measurements that at least threshold
// distinct clients reported in one epoch. The configuration is
// immutable; all grouping state is scratch, rebuilt per call and
// discarded when the call returns, so nothing links tags to
// measurements across epochs.
type AggregationServer struct {
	threshold uint32
	epoch     string
}

// NewAggregationServer creates a server for one epoch's aggregation
// window.
func NewAggregationServer(threshold uint32, epoch string) (*AggregationServer, error) {
	if threshold == 0 {
		return nil, errors.New("threshold must be at least 1")
	}
	if epoch == "" {
		return nil, errors.New("epoch cannot be empty")
	}
	return &AggregationServer{threshold: threshold, epoch: epoch}, nil
}

// Threshold returns the configured reporting threshold.
func (a *AggregationServer) Threshold() uint32 {
	return a.threshold
}

// Epoch returns the epoch this server aggregates.
func (a *AggregationServer) Epoch() string {
	return a.epoch
}

// Output is one successfully recovered report: the measurement that
// reached the threshold, one reporter's auxiliary payload, and the
// number of triples observed for the tag.
type Output struct {
	Measurement []byte `json:"measurement"`
	Aux         []byte `json:"aux,omitempty"`
	Count       int    `json:"count"`
}

// GroupFailure describes a tag group that reached the threshold but
// still failed recovery, e.g. because of inconsistently encoded shares.
// These are diagnostics, deliberately distinguishable from groups that
// never reached the threshold (which are dropped in silence).
type GroupFailure struct {
	Tag    string `json:"tag"`
	Shares int    `json:"shares"`
	Reason string `json:"reason"`
}

// AggregationResult is the outcome of one batch: recovered outputs,
// per-group failures, and the count of triples skipped for carrying the
// wrong epoch.
type AggregationResult struct {
	Outputs         []Output       `json:"outputs"`
	Failures        []GroupFailure `json:"failures,omitempty"`
	EpochMismatches int            `json:"epoch_mismatches,omitempty"`
}

// tagGroup is the per-tag scratch state for one retrieval call.
type tagGroup struct {
	tag    string
	shares []*crypto.Share
	count  int
}

// RetrieveOutputs partitions the batch by tag and recovers the report
// for every group whose share count reached the threshold. Group
// recoveries are independent and run concurrently; one group's failure
// never aborts the others, and no group observes another group's
// shares. The call mutates no server state.
func (a *AggregationServer) RetrieveOutputs(ctx context.Context, triples []*Triple) (*AggregationResult, error) {
	result := &AggregationResult{}

	groups := make(map[string]*tagGroup)
	for _, triple := range triples {
		if triple.Epoch != a.epoch {
			result.EpochMismatches++
			continue
		}

		key := hex.EncodeToString(triple.Tag)
		group, ok := groups[key]
		if !ok {
			group = &tagGroup{tag: key}
			groups[key] = group
		}
		group.count++

		var share crypto.Share
		if err := share.UnmarshalBinary(triple.Share); err != nil {
			// Keep the undecodable share in the count; if the group
			// reaches the threshold it is reported as a group failure
			// rather than silently shrinking below it.
			group.shares = append(group.shares, nil)
			continue
		}
		group.shares = append(group.shares, &share)
	}

	// Deterministic processing order for stable diagnostics
	candidates := make([]*tagGroup, 0, len(groups))
	for _, group := range groups {
		if group.count >= int(a.threshold) {
			candidates = append(candidates, group)
		}
		// Below threshold: dropped silently. Learning nothing about
		// these groups is the privacy guarantee, not an error.
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].tag < candidates[j].tag })

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, group := range candidates {
		wg.Add(1)
		go func(group *tagGroup) {
			defer wg.Done()

			output, err := a.recoverGroup(group)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, GroupFailure{
					Tag:    group.tag,
					Shares: group.count,
					Reason: err.Error(),
				})
				return
			}
			result.Outputs = append(result.Outputs, *output)
		}(group)
	}
	wg.Wait()

	sort.Slice(result.Outputs, func(i, j int) bool {
		return string(result.Outputs[i].Measurement) < string(result.Outputs[j].Measurement)
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Tag < result.Failures[j].Tag
	})

	return result, nil
}

// recoverGroup reconstructs one tag group's report from its shares.
func (a *AggregationServer) recoverGroup(group *tagGroup) (*Output, error) {
	shares := make([]*crypto.Share, 0, len(group.shares))
	for _, share := range group.shares {
		if share == nil {
			return nil, crypto.ErrInvalidEncoding
		}
		shares = append(shares, share)
	}

	secret, err := crypto.Recover(a.threshold, shares)
	if err != nil {
		return nil, err
	}

	measurement, aux, err := DecodeReport(secret)
	if err != nil {
		return nil, err
	}

	return &Output{Measurement: measurement, Aux: aux, Count: group.count}, nil
}
