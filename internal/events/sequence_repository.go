package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SequenceRepository hands out per-partition event sequence numbers
// starting at 1.
type SequenceRepository interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

const nextSequenceSQL = `
INSERT INTO event_sequences (partition_key, last_sequence, updated_at)
VALUES ($1, 1, NOW())
ON CONFLICT (partition_key) DO UPDATE
SET last_sequence = event_sequences.last_sequence + 1,
    updated_at = NOW()
RETURNING last_sequence
`

var errNoPartition = errors.New("partition key is required")

// PostgresSequences keeps one counter row per partition in event_sequences.
// The increment is a single upsert, so concurrent publishers never share a
// number.
type PostgresSequences struct {
	db *sql.DB
}

func NewPostgresSequences(db *sql.DB) *PostgresSequences {
	return &PostgresSequences{db: db}
}

func (s *PostgresSequences) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if strings.TrimSpace(partitionKey) == "" {
		return 0, errNoPartition
	}

	var next int64
	if err := s.db.QueryRowContext(ctx, nextSequenceSQL, partitionKey).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", partitionKey, err)
	}
	return next, nil
}
