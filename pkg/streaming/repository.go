package streaming

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

const statusKeyPrefix = "streaming_files:"

// StatusRepository keeps one JSON status document per object name in Redis.
type StatusRepository struct {
	client *redis.Client
}

func NewStatusRepository(client *redis.Client) *StatusRepository {
	return &StatusRepository{client: client}
}

// Get returns the status record for an object, or ErrNotFound.
func (r *StatusRepository) Get(ctx context.Context, name string) (*StatusRecord, error) {
	payload, err := r.client.Get(ctx, statusKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record StatusRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Set fully replaces the status record for an object.
func (r *StatusRepository) Set(ctx context.Context, name string, record StatusRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, statusKeyPrefix+name, payload, 0).Err()
}

// AppendDuplication merges a new duplication attempt into the existing
// record, newest first, leaving every other field untouched.
func (r *StatusRepository) AppendDuplication(ctx context.Context, name, attempt string) error {
	record, err := r.Get(ctx, name)
	if err != nil {
		return err
	}
	record.DuplicationAttempts = append([]string{attempt}, record.DuplicationAttempts...)
	return r.Set(ctx, name, *record)
}
