package survey

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds surfaced by the criteria/response engine. Controllers map these
// to HTTP statuses; anything store-level is wrapped in ErrStore.
var (
	ErrInvalidQuestionType = errors.New("invalid question type")
	ErrEmptySubmission     = errors.New("empty submission")
	ErrTypeMismatch        = errors.New("answer shape does not match question type")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrCriteriaNotFound    = errors.New("criteria not found")
	ErrStore               = errors.New("store failure")
)

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStore, err)
}

// Store carries the persistence handle for the criteria engine. The handle is
// injected once at startup; there is no package-level connection state.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// withTx returns a Store scoped to an open transaction.
func (s *Store) withTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}
