package survey

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/models"
)

// Question types as persisted.
const (
	QuestionText     = "text"
	QuestionRadio    = "radio"
	QuestionCheckbox = "checkbox"
)

// Question is a criteria question with its options decoded. Options is nil
// for free-text questions. Option order is authored order and is the index
// space used by submissions and statistics.
type Question struct {
	ID      uint     `json:"id"`
	Content string   `json:"question_content"`
	Type    string   `json:"type"`
	Options []string `json:"answers,omitempty"`
}

// CreateQuestion validates the type and persists the question, encoding the
// option list for choice types. Free-text questions store no options.
func (s *Store) CreateQuestion(content, qtype string, options []string) (uint, error) {
	rec := models.Question{Content: content, Type: qtype}
	switch qtype {
	case QuestionText:
		// no options
	case QuestionRadio, QuestionCheckbox:
		enc := EncodeAnswers(options)
		rec.Answers = &enc
	default:
		return 0, ErrInvalidQuestionType
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return 0, storeErr(err)
	}
	return rec.ID, nil
}

// GetQuestion returns the question with its option list decoded.
func (s *Store) GetQuestion(id uint) (*Question, error) {
	var rec models.Question
	if err := s.db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, storeErr(err)
	}
	q := &Question{ID: rec.ID, Content: rec.Content, Type: rec.Type}
	if rec.Type != QuestionText && rec.Answers != nil {
		q.Options = DecodeAnswers(*rec.Answers)
	}
	return q, nil
}
