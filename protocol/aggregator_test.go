package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rillian/sta-rs/oprf"
)

// constReader yields an endless stream of one byte value. Pinning each
// client's evaluation point this way keeps batch tests deterministic:
// independently drawn points can collide and dedupe below the
// threshold, which is legitimate protocol behavior but noise here.
type constReader byte

func (c constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(c)
	}
	return len(p), nil
}

// generateBatch produces count triples from count independent clients
// all reporting the same measurement at the given threshold.
func generateBatch(t *testing.T, measurement string, threshold uint32, epoch string, count int, source RandomnessSource) []*Triple {
	t.Helper()
	triples := make([]*Triple, count)
	for i := range triples {
		client, err := NewClient(StaticSampler(measurement), threshold, epoch, nil, constReader(i+1))
		require.NoError(t, err)
		triple, err := GenerateTriple(context.Background(), client, source)
		require.NoError(t, err)
		triples[i] = triple
	}
	return triples
}

func TestRetrieveOutputsThresholdGrouping(t *testing.T) {
	const k = 5
	server, err := NewAggregationServer(k, "epoch-1")
	require.NoError(t, err)

	// Exactly k triples for one measurement, k-1 for another
	batch := generateBatch(t, "popular", k, "epoch-1", k, nil)
	batch = append(batch, generateBatch(t, "unpopular", k, "epoch-1", k-1, nil)...)

	result, err := server.RetrieveOutputs(context.Background(), batch)
	require.NoError(t, err)

	// Only the group at threshold yields an output; the other group
	// contributes nothing and no failure either.
	require.Len(t, result.Outputs, 1)
	require.Equal(t, []byte("popular"), result.Outputs[0].Measurement)
	require.Equal(t, k, result.Outputs[0].Count)
	require.Empty(t, result.Failures)
}

func TestRetrieveOutputsAux(t *testing.T) {
	const k = 3
	server, err := NewAggregationServer(k, "epoch-1")
	require.NoError(t, err)

	var batch []*Triple
	for i := 0; i < k; i++ {
		client, err := NewClient(StaticSampler("m"), k, "epoch-1", []byte("shared aux"), constReader(i+1))
		require.NoError(t, err)
		triple, err := GenerateTriple(context.Background(), client, nil)
		require.NoError(t, err)
		batch = append(batch, triple)
	}

	result, err := server.RetrieveOutputs(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, result.Outputs, 1)
	require.Equal(t, []byte("m"), result.Outputs[0].Measurement)
	require.Equal(t, []byte("shared aux"), result.Outputs[0].Aux)
}

func TestCrossClientAggregation(t *testing.T) {
	// The defining protocol property: clients built independently of
	// each other, agreeing only on measurement and epoch, produce
	// shares of one polynomial set, and exactly threshold of them let
	// the aggregator recover the measurement.
	const k = 5
	server, err := NewAggregationServer(k, "epoch-1")
	require.NoError(t, err)

	var batch []*Triple
	for i := 0; i < k; i++ {
		client, err := NewClient(StaticSampler("agreed value"), k, "epoch-1", nil, constReader(i+1))
		require.NoError(t, err)
		triple, err := GenerateTriple(context.Background(), client, nil)
		require.NoError(t, err)
		batch = append(batch, triple)
	}

	result, err := server.RetrieveOutputs(context.Background(), batch)
	require.NoError(t, err)
	require.Empty(t, result.Failures)
	require.Len(t, result.Outputs, 1)
	require.Equal(t, []byte("agreed value"), result.Outputs[0].Measurement)
	require.Equal(t, k, result.Outputs[0].Count)
}

func TestCrossClientAggregationOblivious(t *testing.T) {
	const k = 4
	epoch := "epoch-1"
	oprfServer, err := oprf.NewServer([][]byte{[]byte(epoch)})
	require.NoError(t, err)
	source := &LocalSource{Server: oprfServer}

	server, err := NewAggregationServer(k, epoch)
	require.NoError(t, err)

	var batch []*Triple
	for i := 0; i < k; i++ {
		client, err := NewClient(StaticSampler("agreed value"), k, epoch, []byte("aux"), constReader(i+1))
		require.NoError(t, err)
		client.VerifyEvaluations = true
		triple, err := GenerateTriple(context.Background(), client, source)
		require.NoError(t, err)
		batch = append(batch, triple)
	}

	result, err := server.RetrieveOutputs(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, result.Outputs, 1)
	require.Equal(t, []byte("agreed value"), result.Outputs[0].Measurement)
	require.Equal(t, []byte("aux"), result.Outputs[0].Aux)
	require.Equal(t, k, result.Outputs[0].Count)
}

func TestRetrieveOutputsMultipleGroups(t *testing.T) {
	const k = 3
	server, err := NewAggregationServer(k, "epoch-1")
	require.NoError(t, err)

	batch := generateBatch(t, "alpha", k, "epoch-1", k+2, nil)
	batch = append(batch, generateBatch(t, "beta", k, "epoch-1", k, nil)...)
	batch = append(batch, generateBatch(t, "gamma", k, "epoch-1", 1, nil)...)

	result, err := server.RetrieveOutputs(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, result.Outputs, 2)
	require.Equal(t, []byte("alpha"), result.Outputs[0].Measurement)
	require.Equal(t, k+2, result.Outputs[0].Count)
	require.Equal(t, []byte("beta"), result.Outputs[1].Measurement)
}

func TestRetrieveOutputsGroupFailureIsolated(t *testing.T) {
	const k = 3
	server, err := NewAggregationServer(k, "epoch-1")
	require.NoError(t, err)

	good := generateBatch(t, "good", k, "epoch-1", k, nil)

	// A group that reaches the threshold with corrupted shares fails
	// recovery without disturbing the good group.
	bad := generateBatch(t, "bad", k, "epoch-1", k, nil)
	for _, triple := range bad {
		triple.Share = []byte{0xff, 0xff}
	}

	result, err := server.RetrieveOutputs(context.Background(), append(good, bad...))
	require.NoError(t, err)
	require.Len(t, result.Outputs, 1)
	require.Equal(t, []byte("good"), result.Outputs[0].Measurement)
	require.Len(t, result.Failures, 1)
	require.Equal(t, k, result.Failures[0].Shares)
}

func TestRetrieveOutputsDuplicateSharesBelowThreshold(t *testing.T) {
	const k = 3
	server, err := NewAggregationServer(k, "epoch-1")
	require.NoError(t, err)

	batch := generateBatch(t, "m", k, "epoch-1", k, nil)
	// Duplicate one triple's share into another: the group still has k
	// triples but only k-1 distinct evaluation points, which must not
	// satisfy the threshold.
	batch[1].Share = batch[0].Share

	result, err := server.RetrieveOutputs(context.Background(), batch)
	require.NoError(t, err)
	require.Empty(t, result.Outputs)
	require.Len(t, result.Failures, 1)
}

func TestRetrieveOutputsEpochMismatch(t *testing.T) {
	const k = 2
	server, err := NewAggregationServer(k, "epoch-1")
	require.NoError(t, err)

	batch := generateBatch(t, "m", k, "epoch-2", k, nil)
	result, err := server.RetrieveOutputs(context.Background(), batch)
	require.NoError(t, err)
	require.Empty(t, result.Outputs)
	require.Equal(t, k, result.EpochMismatches)
}

func TestRetrieveOutputsStateless(t *testing.T) {
	const k = 2
	server, err := NewAggregationServer(k, "epoch-1")
	require.NoError(t, err)

	// k-1 triples in one call plus k-1 in a second call must never
	// combine: grouping state is scratch, discarded per call.
	first := generateBatch(t, "m", k, "epoch-1", k-1, nil)
	second := generateBatch(t, "m", k, "epoch-1", k-1, nil)

	result, err := server.RetrieveOutputs(context.Background(), first)
	require.NoError(t, err)
	require.Empty(t, result.Outputs)

	result, err = server.RetrieveOutputs(context.Background(), second)
	require.NoError(t, err)
	require.Empty(t, result.Outputs)
}

func TestEndToEndObliviousWithPuncture(t *testing.T) {
	const k = 4
	epoch := "epoch-2026-08"

	oprfServer, err := oprf.NewServer([][]byte{[]byte(epoch)})
	require.NoError(t, err)
	source := &LocalSource{Server: oprfServer}

	batch := generateBatch(t, "shared measurement", k, epoch, k, source)
	batch = append(batch, generateBatch(t, "rare measurement", k, epoch, 1, source)...)

	// Aggregation window closes: puncture before retrieval, as the
	// operator would.
	require.NoError(t, oprfServer.Puncture([]byte(epoch)))

	aggServer, err := NewAggregationServer(k, epoch)
	require.NoError(t, err)
	result, err := aggServer.RetrieveOutputs(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, result.Outputs, 1)
	require.Equal(t, []byte("shared measurement"), result.Outputs[0].Measurement)

	// Forward secrecy: no tag for this epoch can be derived anymore
	late, err := NewClient(StaticSampler("late report"), k, epoch, nil, nil)
	require.NoError(t, err)
	_, err = GenerateTriple(context.Background(), late, source)
	require.ErrorIs(t, err, oprf.ErrEpochPunctured)
}
