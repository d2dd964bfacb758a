package service

import "github.com/stemsi/quizlink-backend/internal/model"

// BasePoints is awarded for every correct answer before the speed bonus.
const BasePoints = 10

// ClampTimeTaken bounds a reported time to [0, limit]. A missing value is
// treated as the whole limit.
func ClampTimeTaken(taken *int, limit int) int {
	if limit < 0 {
		limit = 0
	}
	if taken == nil {
		return limit
	}
	return min(max(*taken, 0), limit)
}

// Score returns the points for one answer: 0 when wrong or unanswered,
// otherwise BasePoints plus one point per unused second.
func Score(q model.Question, a model.Answer) int {
	if a.SelectedIndex == nil || *a.SelectedIndex != q.CorrectIndex {
		return 0
	}
	limit := max(q.TimeSeconds, 0)
	return BasePoints + max(0, limit-ClampTimeTaken(a.TimeTaken, limit))
}

// MaxScore is the best possible result for a question.
func MaxScore(q model.Question) int {
	return BasePoints + max(q.TimeSeconds, 0)
}

// Tally scores every answer against the authoritative questions keyed by id.
// Answers for unknown questions contribute nothing to either figure.
func Tally(questions map[string]model.Question, answers model.AnswerSet) (score, total int) {
	for qid, a := range answers {
		q, ok := questions[qid]
		if !ok {
			continue
		}
		score += Score(q, a)
		total += MaxScore(q)
	}
	return score, total
}
