package survey

import (
	"errors"

	"github.com/lprs-app/peer-review-server/models"
)

// QuestionStats is the aggregated result for one question of a criteria.
// Free-text questions carry the raw responses in storage order; choice
// questions carry the option list in authored order with Totals parallel to
// it (Totals[i] counts selections of Answers[i]).
type QuestionStats struct {
	Question  string   `json:"question"`
	Type      string   `json:"type,omitempty"`
	Responses []string `json:"responses,omitempty"`
	Answers   []string `json:"answers,omitempty"`
	Totals    []int64  `json:"totals,omitempty"`
}

// ComputeStats aggregates every response to a criteria, one entry per
// question in stored order. A question that has gone missing yields an empty
// placeholder entry instead of failing the whole aggregation.
func (s *Store) ComputeStats(criteriaID uint) ([]QuestionStats, error) {
	questionIDs, err := s.GetCriteria(criteriaID)
	if err != nil {
		return nil, err
	}

	out := make([]QuestionStats, 0, len(questionIDs))
	for _, qid := range questionIDs {
		q, err := s.GetQuestion(qid)
		if errors.Is(err, ErrQuestionNotFound) {
			out = append(out, QuestionStats{})
			continue
		}
		if err != nil {
			return nil, err
		}

		stats := QuestionStats{Question: q.Content, Type: q.Type}
		if q.Type == QuestionText {
			var answers []string
			err := s.db.Model(&models.Response{}).
				Where("question_id = ?", qid).
				Order("id ASC").
				Pluck("answer", &answers).Error
			if err != nil {
				return nil, storeErr(err)
			}
			stats.Responses = answers
			if stats.Responses == nil {
				stats.Responses = []string{}
			}
		} else {
			stats.Answers = q.Options
			stats.Totals = make([]int64, 0, len(q.Options))
			for _, opt := range q.Options {
				n, err := s.CountMatchingAnswer(qid, q.Type, opt)
				if err != nil {
					return nil, err
				}
				stats.Totals = append(stats.Totals, n)
			}
		}
		out = append(out, stats)
	}
	return out, nil
}
