package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/quizlink-backend/internal/config"
)

// ServeLog records when each question was handed to a student so the server
// can measure answer latency independently of the client:
//
//	HSET quiz:student:{id}:served  {questionID} {unix milliseconds}
//	HSET quiz:student:{id}:elapsed {questionID} {whole seconds}
//
// The measured interval spans two network trips, so LatencyGrace is taken
// off before it is rounded down to whole seconds.
type ServeLog struct {
	rdb *redis.Client
	ttl time.Duration
}

// LatencyGrace is subtracted from every measured interval.
const LatencyGrace = time.Second

// NewServeLog creates a ServeLog whose keys expire after ttl.
func NewServeLog(rdb *redis.Client, ttl time.Duration) *ServeLog {
	return &ServeLog{rdb: rdb, ttl: ttl}
}

// MarkServed records the first time a question was served. Re-serving the
// same question (a page reload) keeps the original timestamp.
func (l *ServeLog) MarkServed(ctx context.Context, studentID, questionID uuid.UUID, at time.Time) error {
	key := config.CacheKey.StudentServedKey(studentID.String())
	pipe := l.rdb.TxPipeline()
	pipe.HSetNX(ctx, key, questionID.String(), at.UnixMilli())
	if l.ttl > 0 {
		pipe.Expire(ctx, key, l.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RecordAnswered stores the whole seconds between serve and at, less
// LatencyGrace. ok is false when the question was never marked as served.
func (l *ServeLog) RecordAnswered(ctx context.Context, studentID, questionID uuid.UUID, at time.Time) (int, bool, error) {
	servedRaw, err := l.rdb.HGet(ctx, config.CacheKey.StudentServedKey(studentID.String()), questionID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read served time: %w", err)
	}
	served, err := strconv.ParseInt(servedRaw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse served time: %w", err)
	}

	elapsed := int((at.UnixMilli() - served - LatencyGrace.Milliseconds()) / 1000)
	if elapsed < 0 {
		elapsed = 0
	}

	key := config.CacheKey.StudentElapsedKey(studentID.String())
	pipe := l.rdb.TxPipeline()
	pipe.HSetNX(ctx, key, questionID.String(), elapsed)
	if l.ttl > 0 {
		pipe.Expire(ctx, key, l.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false, fmt.Errorf("store elapsed: %w", err)
	}
	return elapsed, true, nil
}

// Elapsed returns the server-measured seconds per question id.
func (l *ServeLog) Elapsed(ctx context.Context, studentID uuid.UUID) (map[string]int, error) {
	raw, err := l.rdb.HGetAll(ctx, config.CacheKey.StudentElapsedKey(studentID.String())).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for qid, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[qid] = n
	}
	return out, nil
}

// Clear removes a student's timing records.
func (l *ServeLog) Clear(ctx context.Context, studentID uuid.UUID) error {
	return l.rdb.Del(ctx,
		config.CacheKey.StudentServedKey(studentID.String()),
		config.CacheKey.StudentElapsedKey(studentID.String()),
	).Err()
}
