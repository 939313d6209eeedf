package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rillian/sta-rs/protocol"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveTriple(ctx, &protocol.Triple{Tag: []byte{1}, Share: []byte{2}, Epoch: "e1"}))
	require.NoError(t, store.SaveTriple(ctx, &protocol.Triple{Tag: []byte{3}, Share: []byte{4}, Epoch: "e1"}))
	require.NoError(t, store.SaveTriple(ctx, &protocol.Triple{Tag: []byte{5}, Share: []byte{6}, Epoch: "e2"}))

	staged, err := store.LoadTriples(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, staged, 2)

	// Purging one epoch leaves the others intact
	require.NoError(t, store.PurgeEpoch(ctx, "e1"))
	staged, err = store.LoadTriples(ctx, "e1")
	require.NoError(t, err)
	require.Empty(t, staged)

	staged, err = store.LoadTriples(ctx, "e2")
	require.NoError(t, err)
	require.Len(t, staged, 1)
}

func TestPostgresConnectionString(t *testing.T) {
	cfg := &PostgresConfig{Host: "localhost", Port: 5432, User: "star", Password: "secret", Database: "triples"}
	require.Equal(t,
		"host=localhost port=5432 user=star password=secret dbname=triples sslmode=disable",
		cfg.ConnectionString())

	cfg.SSLMode = "require"
	require.Contains(t, cfg.ConnectionString(), "sslmode=require")
}
