package survey

import (
	"strings"

	"gorm.io/gorm"
)

// SubmissionAnswer is the tagged answer for one question of a submission.
// Multi selects the checkbox shape: Selected holds option indices into the
// question's authored option list. Otherwise Value carries the raw text/radio
// answer.
type SubmissionAnswer struct {
	Multi    bool
	Value    string
	Selected []int
}

// SubmissionEntry pairs a question index (into the criteria's ordered list)
// with its answer. The transport layer builds these from the raw form fields.
type SubmissionEntry struct {
	QuestionIndex int
	Answer        SubmissionAnswer
}

type Submission []SubmissionEntry

// SubmitResponses validates a submission against the criteria and upserts one
// response per answered question. The whole persist loop runs in a single
// transaction, so a failure on any question rolls back the entire submission.
//
// Blank answers (empty after trimming) are dropped without touching the
// store; a prior non-blank answer to the same question survives a blank
// resubmission.
func (s *Store) SubmitResponses(userID, criteriaID uint, sub Submission) error {
	if len(sub) == 0 {
		return ErrEmptySubmission
	}
	questionIDs, err := s.GetCriteria(criteriaID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ts := s.withTx(tx)
		for _, entry := range sub {
			if entry.QuestionIndex < 0 || entry.QuestionIndex >= len(questionIDs) {
				return ErrQuestionNotFound
			}
			questionID := questionIDs[entry.QuestionIndex]
			q, err := ts.GetQuestion(questionID)
			if err != nil {
				return err
			}

			var answer string
			if entry.Answer.Multi {
				// multiple selections are only valid for checkbox questions
				if q.Type != QuestionCheckbox {
					return ErrTypeMismatch
				}
				selected := make([]string, 0, len(entry.Answer.Selected))
				for _, idx := range entry.Answer.Selected {
					if idx < 0 || idx >= len(q.Options) {
						return ErrTypeMismatch
					}
					selected = append(selected, q.Options[idx])
				}
				answer = EncodeAnswers(selected)
			} else {
				answer = entry.Answer.Value
			}

			if strings.TrimSpace(answer) == "" {
				continue
			}
			if err := ts.UpsertResponse(userID, questionID, answer); err != nil {
				return err
			}
		}
		return nil
	})
}
