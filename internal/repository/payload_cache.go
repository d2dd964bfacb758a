package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizlink-backend/internal/config"
	"github.com/stemsi/quizlink-backend/internal/model"
	"golang.org/x/sync/singleflight"
)

// QuizLoader reads quiz content from the relational store on a cache miss.
type QuizLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	ListQuestions(ctx context.Context, quizID uuid.UUID) ([]model.Question, error)
}

// PayloadCache keeps the student-facing quiz payload in Redis
// (SET quiz:{id}:payload <json>) and falls back to the loader on a miss.
// Concurrent misses for one quiz share a single load.
type PayloadCache struct {
	rdb    *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	log    zerolog.Logger
}

// NewPayloadCache creates a PayloadCache. A ttl of zero disables expiry.
func NewPayloadCache(rdb *redis.Client, loader QuizLoader, ttl time.Duration, log zerolog.Logger) *PayloadCache {
	return &PayloadCache{
		rdb:    rdb,
		loader: loader,
		ttl:    ttl,
		log:    log.With().Str("component", "payload_cache").Logger(),
	}
}

// Payload returns the cached payload for a quiz, loading it if needed.
func (c *PayloadCache) Payload(ctx context.Context, quizID uuid.UUID) (*model.QuizPayload, error) {
	if p, ok := c.get(ctx, quizID); ok {
		return p, nil
	}

	v, err, _ := c.sf.Do(quizID.String(), func() (interface{}, error) {
		if p, ok := c.get(ctx, quizID); ok {
			return p, nil
		}
		return c.load(ctx, quizID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.QuizPayload), nil
}

// Invalidate drops cached payloads.
func (c *PayloadCache) Invalidate(ctx context.Context, quizIDs ...uuid.UUID) error {
	if len(quizIDs) == 0 {
		return nil
	}
	keys := make([]string, len(quizIDs))
	for i, id := range quizIDs {
		keys[i] = config.CacheKey.QuizPayloadKey(id.String())
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *PayloadCache) get(ctx context.Context, quizID uuid.UUID) (*model.QuizPayload, bool) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.QuizPayloadKey(quizID.String())).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Payload cache read failed")
		}
		return nil, false
	}
	var p model.QuizPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Discarding corrupt payload")
		return nil, false
	}
	return &p, true
}

func (c *PayloadCache) load(ctx context.Context, quizID uuid.UUID) (*model.QuizPayload, error) {
	quiz, err := c.loader.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := c.loader.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	payload := &model.QuizPayload{
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		Questions: make([]model.QuestionForStudent, len(questions)),
	}
	for i, q := range questions {
		payload.Questions[i] = q.ForStudent()
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	if err := c.rdb.Set(ctx, config.CacheKey.QuizPayloadKey(quizID.String()), raw, c.ttlWithJitter()).Err(); err != nil {
		// Serving from the store is still correct.
		c.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Payload cache write failed")
	}

	c.log.Debug().
		Str("quiz_id", quizID.String()).
		Int("questions", len(questions)).
		Msg("Payload cached")
	return payload, nil
}

func (c *PayloadCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int64N(jitterMax+1))
}
