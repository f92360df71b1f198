// README: Checkpoint store backed by Redis: state JSON, turn locks, transcripts.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix      = "conversation:session:%s:state"
	transcriptKeyPrefix = "conversation:session:%s:transcript"
	lockKeyPrefix       = "conversation:session:%s:turnlock"

	// Checkpoints outlive the dialogue long enough for support lookups;
	// retention beyond that is not this core's concern.
	checkpointTTL = 30 * 24 * time.Hour
	// A turn is a single synchronous call chain; 30s covers the slowest
	// extraction call with margin.
	turnLockTTL = 30 * time.Second
	// Transcript lines kept per session (both roles counted).
	transcriptCap = 200
)

// ErrSessionBusy means another turn for the same session is in flight. The
// transport layer serializes delivery per session, so hitting this is a
// client retrying too eagerly.
var ErrSessionBusy = errors.New("session turn already in progress")

// CheckpointStore persists the last-committed state per session.
// Implementations must guarantee last-writer-wins per session and
// read-your-writes between a Save and the next Load.
type CheckpointStore interface {
	Load(ctx context.Context, sessionID string) (State, bool, error)
	Save(ctx context.Context, sessionID string, st State) error
}

// TranscriptLine is one utterance of the conversation, kept for escalations.
type TranscriptLine struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// TranscriptStore records the rolling dialogue transcript.
type TranscriptStore interface {
	AppendTranscript(ctx context.Context, sessionID string, lines ...TranscriptLine) error
	RecentTranscript(ctx context.Context, sessionID string, n int) ([]TranscriptLine, error)
}

// SessionLocker provides the per-session advisory lock that enforces the
// single-writer-per-session rule.
type SessionLocker interface {
	AcquireTurnLock(ctx context.Context, sessionID string) (release func(), err error)
}

// RedisStore implements CheckpointStore, TranscriptStore, and SessionLocker
// on a single Redis client.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redis *redis.Client) *RedisStore {
	return &RedisStore{redis: redis}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (State, bool, error) {
	val, err := s.redis.Get(ctx, stateKey(sessionID)).Result()
	if err == redis.Nil {
		return NewState(), false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("checkpoint load: %w", err)
	}
	var st State
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return State{}, false, fmt.Errorf("checkpoint decode: %w", err)
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("checkpoint encode: %w", err)
	}
	if err := s.redis.Set(ctx, stateKey(sessionID), raw, checkpointTTL).Err(); err != nil {
		return fmt.Errorf("checkpoint save: %w", err)
	}
	return nil
}

func (s *RedisStore) AppendTranscript(ctx context.Context, sessionID string, lines ...TranscriptLine) error {
	if len(lines) == 0 {
		return nil
	}
	key := transcriptKey(sessionID)
	pipe := s.redis.Pipeline()
	for _, line := range lines {
		raw, err := json.Marshal(line)
		if err != nil {
			return fmt.Errorf("transcript encode: %w", err)
		}
		pipe.LPush(ctx, key, raw)
	}
	pipe.LTrim(ctx, key, 0, transcriptCap-1)
	pipe.Expire(ctx, key, checkpointTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// RecentTranscript returns up to n lines, oldest first.
func (s *RedisStore) RecentTranscript(ctx context.Context, sessionID string, n int) ([]TranscriptLine, error) {
	if n <= 0 {
		return nil, nil
	}
	raws, err := s.redis.LRange(ctx, transcriptKey(sessionID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("transcript read: %w", err)
	}
	// LPUSH stores newest first; reverse into chronological order.
	lines := make([]TranscriptLine, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		var line TranscriptLine
		if err := json.Unmarshal([]byte(raws[i]), &line); err != nil {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *RedisStore) AcquireTurnLock(ctx context.Context, sessionID string) (func(), error) {
	key := lockKey(sessionID)
	ok, err := s.redis.SetNX(ctx, key, "1", turnLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("turn lock: %w", err)
	}
	if !ok {
		return nil, ErrSessionBusy
	}
	return func() {
		// Release must not inherit a cancelled turn context.
		_ = s.redis.Del(context.Background(), key).Err()
	}, nil
}

func stateKey(sessionID string) string {
	return fmt.Sprintf(stateKeyPrefix, sessionID)
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf(transcriptKeyPrefix, sessionID)
}

func lockKey(sessionID string) string {
	return fmt.Sprintf(lockKeyPrefix, sessionID)
}
