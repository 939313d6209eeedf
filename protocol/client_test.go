package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalRandomnessDeterministicPerMeasurement(t *testing.T) {
	clientA, err := NewClient(StaticSampler("hello"), 2, "epoch-1", nil, nil)
	require.NoError(t, err)
	clientB, err := NewClient(StaticSampler("hello"), 2, "epoch-1", nil, nil)
	require.NoError(t, err)
	clientC, err := NewClient(StaticSampler("world"), 2, "epoch-1", nil, nil)
	require.NoError(t, err)

	tagA := make([]byte, TagLen)
	tagB := make([]byte, TagLen)
	tagC := make([]byte, TagLen)
	require.NoError(t, clientA.SampleLocalRandomness(tagA))
	require.NoError(t, clientB.SampleLocalRandomness(tagB))
	require.NoError(t, clientC.SampleLocalRandomness(tagC))

	// Same measurement, same epoch: tags collide across clients
	require.Equal(t, tagA, tagB)
	// Different measurement: cryptographically unlinkable tag
	require.NotEqual(t, tagA, tagC)
}

func TestLocalRandomnessScopedToEpoch(t *testing.T) {
	clientA, err := NewClient(StaticSampler("hello"), 2, "epoch-1", nil, nil)
	require.NoError(t, err)
	clientB, err := NewClient(StaticSampler("hello"), 2, "epoch-2", nil, nil)
	require.NoError(t, err)

	tagA := make([]byte, TagLen)
	tagB := make([]byte, TagLen)
	require.NoError(t, clientA.SampleLocalRandomness(tagA))
	require.NoError(t, clientB.SampleLocalRandomness(tagB))
	require.NotEqual(t, tagA, tagB)
}

func TestLocalRandomnessBufferLength(t *testing.T) {
	client, err := NewClient(StaticSampler("hello"), 2, "epoch-1", nil, nil)
	require.NoError(t, err)
	require.Error(t, client.SampleLocalRandomness(make([]byte, TagLen-1)))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(nil, 2, "epoch", nil, nil)
	require.Error(t, err)

	_, err = NewClient(StaticSampler("m"), 0, "epoch", nil, nil)
	require.Error(t, err)

	_, err = NewClient(StaticSampler("m"), 2, "", nil, nil)
	require.Error(t, err)
}

func TestZipfSampler(t *testing.T) {
	sampler, err := NewZipfSampler(10000, 1.03, 1)
	require.NoError(t, err)

	seen := make(map[string]int)
	for i := 0; i < 1000; i++ {
		seen[string(sampler.Sample())]++
	}
	// A Zipf draw over 10000 categories concentrates mass on a few
	// popular measurements.
	require.Greater(t, seen["measurement-0"], 100)

	_, err = NewZipfSampler(0, 1.03, 1)
	require.Error(t, err)
	_, err = NewZipfSampler(100, 1.0, 1)
	require.Error(t, err)
}

func TestZipfClientsCollideOnPopularMeasurements(t *testing.T) {
	// Distinct seeds give independent draws, but the most popular
	// category shows up for many clients.
	counts := make(map[string]int)
	for seed := int64(0); seed < 50; seed++ {
		client, err := NewZipfClient(1000, 1.5, 10, "e", nil, seed, nil)
		require.NoError(t, err)
		counts[string(client.Measurement)]++
	}
	require.Greater(t, counts["measurement-0"], 10)
}
