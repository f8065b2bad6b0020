package survey

import (
	"strings"

	"gorm.io/gorm/clause"

	"github.com/lprs-app/peer-review-server/models"
)

// UpsertResponse stores one user's answer to one question, overwriting any
// previous answer. The write is a single insert-or-update against the
// (user_id, question_id) unique index, so it stays race-free under concurrent
// identical submissions.
func (s *Store) UpsertResponse(userID, questionID uint, answer string) error {
	rec := models.Response{UserID: userID, QuestionID: questionID, Answer: answer}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answer"}),
	}).Create(&rec).Error
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// DeleteResponsesForQuestion removes every response to one question. Called
// when the owning post (and with it the criteria) is deleted.
func (s *Store) DeleteResponsesForQuestion(questionID uint) error {
	err := s.db.Where("question_id = ?", questionID).Delete(&models.Response{}).Error
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// likeEscaper neutralizes LIKE wildcards in option text so an option such as
// "100%" matches literally. Patterns carry ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CountMatchingAnswer counts responses to a question that selected the given
// option. Radio answers are stored raw and match exactly. Checkbox answers
// are codec-encoded lists, so the escaped option must be matched wherever it
// sits among the delimited selections: alone, first, in the middle, or last.
func (s *Store) CountMatchingAnswer(questionID uint, qtype, option string) (int64, error) {
	var n int64
	var err error
	if qtype == QuestionCheckbox {
		token := escapeOption(option) + optionTerminator
		pattern := likeEscaper.Replace(token)
		err = s.db.Model(&models.Response{}).
			Where(`question_id = ? AND (answer = ?
				OR answer LIKE ? ESCAPE '\'
				OR answer LIKE ? ESCAPE '\'
				OR answer LIKE ? ESCAPE '\')`,
				questionID,
				token,             // sole selection
				pattern+"%",       // first selection
				"% ,"+pattern+"%", // middle selection
				"% ,"+pattern,     // last selection
			).Count(&n).Error
	} else {
		err = s.db.Model(&models.Response{}).
			Where("question_id = ? AND answer = ?", questionID, option).
			Count(&n).Error
	}
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}
