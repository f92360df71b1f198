// README: Escalation store backed by Redis (handoff queue for human agents).
package escalation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey        = "escalation:queue"
	recordKeyPrefix = "escalation:session:%s"
	// Escalations should be picked up quickly; a week of retention is plenty.
	recordTTL = 7 * 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// Enqueue pushes a record onto the shared agent queue and keeps a per-session
// copy so repeated escalations of one session stay deduplicated.
func (s *Store) Enqueue(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("escalation encode: %w", err)
	}
	key := recordKey(rec.SessionID)

	// Already queued: refresh the record, don't enqueue twice.
	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("escalation check: %w", err)
	}
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, key, raw, recordTTL)
	if exists == 0 {
		pipe.LPush(ctx, queueKey, rec.SessionID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Next pops the oldest queued session and returns its record, or nil when the
// queue is empty.
func (s *Store) Next(ctx context.Context) (*Record, error) {
	sessionID, err := s.redis.RPop(ctx, queueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	val, err := s.redis.Get(ctx, recordKey(sessionID)).Result()
	if err == redis.Nil {
		return &Record{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("escalation decode: %w", err)
	}
	return &rec, nil
}

func recordKey(sessionID string) string {
	return fmt.Sprintf(recordKeyPrefix, sessionID)
}
