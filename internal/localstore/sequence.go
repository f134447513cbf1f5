package localstore

import (
	"context"
	"fmt"
	"strconv"
)

// Sequence hands out event sequence numbers per partition. It satisfies
// events.SequenceRepository.
type Sequence struct{ db *DB }

func (d *DB) Sequences() *Sequence { return &Sequence{db: d} }

func (s *Sequence) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}
	var next int64
	err := s.db.update(ctx, seqKey(partitionKey), func(cur []byte) ([]byte, error) {
		if len(cur) > 0 {
			n, err := strconv.ParseInt(string(cur), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse sequence: %w", err)
			}
			next = n
		}
		next++
		return []byte(strconv.FormatInt(next, 10)), nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
