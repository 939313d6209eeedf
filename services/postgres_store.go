package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/rillian/sta-rs/protocol"
)

// PostgresStore implements TripleStore with PostgreSQL persistence.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS staged_triples (
		id BIGSERIAL PRIMARY KEY,
		epoch VARCHAR(128) NOT NULL,
		tag BYTEA NOT NULL,
		share BYTEA NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_triples_epoch ON staged_triples(epoch);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveTriple stages one submitted triple.
func (s *PostgresStore) SaveTriple(ctx context.Context, triple *protocol.Triple) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO staged_triples (epoch, tag, share) VALUES ($1, $2, $3)",
		triple.Epoch, triple.Tag, triple.Share)
	return err
}

// LoadTriples returns all staged triples for the epoch.
func (s *PostgresStore) LoadTriples(ctx context.Context, epoch string) ([]*protocol.Triple, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT tag, share FROM staged_triples WHERE epoch = $1", epoch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triples []*protocol.Triple
	for rows.Next() {
		triple := &protocol.Triple{Epoch: epoch}
		if err := rows.Scan(&triple.Tag, &triple.Share); err != nil {
			return nil, err
		}
		triples = append(triples, triple)
	}
	return triples, rows.Err()
}

// PurgeEpoch discards every staged triple for the epoch.
func (s *PostgresStore) PurgeEpoch(ctx context.Context, epoch string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM staged_triples WHERE epoch = $1", epoch)
	return err
}

// Close releases the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
