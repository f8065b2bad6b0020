package controllers

import (
	"net/url"
	"path/filepath"
	"reflect"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lprs-app/peer-review-server/config"
	"github.com/lprs-app/peer-review-server/survey"
)

func newFlowStore(t *testing.T) *survey.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "flow.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return survey.NewStore(db)
}

// Raw form fields all the way to aggregated statistics.
func TestSubmissionFlowEndToEnd(t *testing.T) {
	store := newFlowStore(t)

	qText, err := store.CreateQuestion("Comment?", survey.QuestionText, nil)
	if err != nil {
		t.Fatal(err)
	}
	qBox, err := store.CreateQuestion("Pick colors", survey.QuestionCheckbox, []string{"Red", "Green", "Blue"})
	if err != nil {
		t.Fatal(err)
	}
	cid, err := store.CreateCriteria([]uint{qText, qBox})
	if err != nil {
		t.Fatal(err)
	}

	sub := ParseFormAnswers(url.Values{
		"field_0":   {"Great!"},
		"field_1_0": {"0"},
		"field_1_2": {"2"},
	})
	if err := store.SubmitResponses(9, cid, sub); err != nil {
		t.Fatalf("SubmitResponses: %v", err)
	}

	stats, err := store.ComputeStats(cid)
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats len = %d, want 2", len(stats))
	}

	if !reflect.DeepEqual(stats[0].Responses, []string{"Great!"}) {
		t.Errorf("text responses = %#v", stats[0].Responses)
	}
	if !reflect.DeepEqual(stats[1].Answers, []string{"Red", "Green", "Blue"}) {
		t.Errorf("checkbox answers = %#v", stats[1].Answers)
	}
	if !reflect.DeepEqual(stats[1].Totals, []int64{1, 0, 1}) {
		t.Errorf("checkbox totals = %#v", stats[1].Totals)
	}
}
