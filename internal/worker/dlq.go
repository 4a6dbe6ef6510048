package worker

// dlq.go
// Notification jobs that exhaust their retries are parked in a Redis dead
// letter list, one per source queue (key dlq:{queue}), so an operator can
// inspect the payload and replay it by hand.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DeadLetter records a failed job with enough context to replay it.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"jobType"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failedAt"`
	Attempts int             `json:"attempts"`
}

// SendToDLQ parks a failed job in the dead letter list of its source queue.
// With a nil client the job is only logged.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	evt := log.Warn().
		Str("queue", queue).
		Str("type", jobType).
		Str("reason", reason).
		Int("attempts", attempts)
	if rdb == nil {
		evt.Msg("dlq: no redis client, job dropped")
		return
	}

	entry, err := json.Marshal(DeadLetter{
		Queue:    queue,
		JobType:  jobType,
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
		Attempts: attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, entry).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push failed, job lost")
		return
	}
	evt.Msg("dlq: job parked")
}

// DLQLength reports how many jobs sit in the dead letter list of a queue.
// Surfaced by the health endpoint.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
