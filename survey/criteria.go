package survey

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/models"
)

// CreateCriteria persists the ordered question-id list of one post. The
// stored order defines the question-index mapping used everywhere else, so it
// is kept exactly as authored. Ids are decimal, no escaping needed.
func (s *Store) CreateCriteria(questionIDs []uint) (uint, error) {
	parts := make([]string, 0, len(questionIDs))
	for _, id := range questionIDs {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	rec := models.Criteria{Questions: strings.Join(parts, ",")}
	if err := s.db.Create(&rec).Error; err != nil {
		return 0, storeErr(err)
	}
	return rec.ID, nil
}

// GetCriteria returns the criteria's question ids in stored order.
func (s *Store) GetCriteria(id uint) ([]uint, error) {
	var rec models.Criteria
	if err := s.db.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCriteriaNotFound
		}
		return nil, storeErr(err)
	}
	return SplitIDList(rec.Questions), nil
}

// DeleteCriteria removes the criteria row. Question rows are left in place so
// saved-question references on user profiles never dangle; callers delete the
// questions' responses separately.
func (s *Store) DeleteCriteria(id uint) error {
	if err := s.db.Delete(&models.Criteria{}, id).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

// SplitIDList parses a comma-joined id list, skipping blank and malformed
// fragments (a trailing comma leaves a blank last entry).
func SplitIDList(s string) []uint {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, uint(v))
	}
	return out
}
