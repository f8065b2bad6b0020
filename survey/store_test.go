package survey

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lprs-app/peer-review-server/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// SQLite allows one writer; serialize the pool so concurrent test writes
	// queue instead of failing with a busy error
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func mustCreateQuestion(t *testing.T, s *Store, content, qtype string, options []string) uint {
	t.Helper()
	id, err := s.CreateQuestion(content, qtype, options)
	if err != nil {
		t.Fatalf("CreateQuestion(%q): %v", content, err)
	}
	return id
}
