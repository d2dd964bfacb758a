package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizPayloadKey returns the cache key for a quiz's student-facing payload
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// StudentServedKey returns the hash of question id -> unix time the question was served
func (r *CacheKeyStruct) StudentServedKey(studentID string) string {
	return fmt.Sprintf("quiz:student:%s:served", studentID)
}

// StudentElapsedKey returns the hash of question id -> server-measured elapsed seconds
func (r *CacheKeyStruct) StudentElapsedKey(studentID string) string {
	return fmt.Sprintf("quiz:student:%s:elapsed", studentID)
}

var CacheKey = NewCacheKeyStruct()
