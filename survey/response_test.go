package survey

import (
	"sync"
	"testing"

	"github.com/lprs-app/peer-review-server/models"
)

func countResponses(t *testing.T, s *Store, questionID uint) int64 {
	t.Helper()
	var n int64
	if err := s.db.Model(&models.Response{}).Where("question_id = ?", questionID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestUpsertResponseOverwrites(t *testing.T) {
	s := newTestStore(t)
	qid := mustCreateQuestion(t, s, "comments", QuestionText, nil)

	if err := s.UpsertResponse(1, qid, "first draft"); err != nil {
		t.Fatalf("UpsertResponse: %v", err)
	}
	if err := s.UpsertResponse(1, qid, "final answer"); err != nil {
		t.Fatalf("UpsertResponse overwrite: %v", err)
	}

	if n := countResponses(t, s, qid); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
	var rec models.Response
	if err := s.db.Where("user_id = ? AND question_id = ?", 1, qid).First(&rec).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if rec.Answer != "final answer" {
		t.Errorf("answer = %q", rec.Answer)
	}
}

func TestUpsertResponseConcurrentOneRow(t *testing.T) {
	s := newTestStore(t)
	qid := mustCreateQuestion(t, s, "comments", QuestionText, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.UpsertResponse(1, qid, "same answer")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("UpsertResponse: %v", err)
		}
	}

	if n := countResponses(t, s, qid); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

func TestUpsertResponseIsPerUser(t *testing.T) {
	s := newTestStore(t)
	qid := mustCreateQuestion(t, s, "comments", QuestionText, nil)

	if err := s.UpsertResponse(1, qid, "from user 1"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertResponse(2, qid, "from user 2"); err != nil {
		t.Fatal(err)
	}
	if n := countResponses(t, s, qid); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}

func TestCountMatchingAnswerRadioExact(t *testing.T) {
	s := newTestStore(t)
	qid := mustCreateQuestion(t, s, "color", QuestionRadio, []string{"red", "green"})

	s.UpsertResponse(1, qid, "red")
	s.UpsertResponse(2, qid, "green")
	s.UpsertResponse(3, qid, "red")

	n, err := s.CountMatchingAnswer(qid, QuestionRadio, "red")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("red = %d, want 2", n)
	}
}

func TestCountMatchingAnswerCheckboxPositions(t *testing.T) {
	s := newTestStore(t)
	qid := mustCreateQuestion(t, s, "toppings", QuestionCheckbox, []string{"ham", "cheese", "olives"})

	s.UpsertResponse(1, qid, EncodeAnswers([]string{"cheese"}))                   // sole
	s.UpsertResponse(2, qid, EncodeAnswers([]string{"cheese", "ham"}))           // first
	s.UpsertResponse(3, qid, EncodeAnswers([]string{"ham", "cheese", "olives"})) // middle
	s.UpsertResponse(4, qid, EncodeAnswers([]string{"olives", "cheese"}))        // last
	s.UpsertResponse(5, qid, EncodeAnswers([]string{"ham"}))                     // absent

	n, err := s.CountMatchingAnswer(qid, QuestionCheckbox, "cheese")
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("cheese = %d, want 4", n)
	}
}

// An option that is a prefix of another must not match the longer one.
func TestCountMatchingAnswerPrefixOption(t *testing.T) {
	s := newTestStore(t)
	qid := mustCreateQuestion(t, s, "grade", QuestionCheckbox, []string{"A", "AB"})

	s.UpsertResponse(1, qid, EncodeAnswers([]string{"AB"}))
	s.UpsertResponse(2, qid, EncodeAnswers([]string{"A", "AB"}))

	n, err := s.CountMatchingAnswer(qid, QuestionCheckbox, "A")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("A = %d, want 1", n)
	}
	n, err = s.CountMatchingAnswer(qid, QuestionCheckbox, "AB")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("AB = %d, want 2", n)
	}
}

// Escaped commas inside an option must not let a shorter option match.
func TestCountMatchingAnswerEscapedComma(t *testing.T) {
	s := newTestStore(t)
	qid := mustCreateQuestion(t, s, "pick", QuestionCheckbox, []string{"foo,X", "X"})

	s.UpsertResponse(1, qid, EncodeAnswers([]string{"foo,X"}))

	n, err := s.CountMatchingAnswer(qid, QuestionCheckbox, "X")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("X = %d, want 0", n)
	}
	n, err = s.CountMatchingAnswer(qid, QuestionCheckbox, "foo,X")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("foo,X = %d, want 1", n)
	}
}

// Option text containing LIKE wildcards must match literally.
func TestCountMatchingAnswerWildcardOption(t *testing.T) {
	s := newTestStore(t)
	qid := mustCreateQuestion(t, s, "discount", QuestionCheckbox, []string{"100%", "100x", "a_c"})

	s.UpsertResponse(1, qid, EncodeAnswers([]string{"100x"}))
	s.UpsertResponse(2, qid, EncodeAnswers([]string{"100%"}))
	s.UpsertResponse(3, qid, EncodeAnswers([]string{"abc"}))
	s.UpsertResponse(4, qid, EncodeAnswers([]string{"a_c"}))

	n, err := s.CountMatchingAnswer(qid, QuestionCheckbox, "100%")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("100%% = %d, want 1", n)
	}
	n, err = s.CountMatchingAnswer(qid, QuestionCheckbox, "a_c")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("a_c = %d, want 1", n)
	}
}

func TestDeleteResponsesForQuestion(t *testing.T) {
	s := newTestStore(t)
	q1 := mustCreateQuestion(t, s, "a", QuestionText, nil)
	q2 := mustCreateQuestion(t, s, "b", QuestionText, nil)

	s.UpsertResponse(1, q1, "x")
	s.UpsertResponse(2, q1, "y")
	s.UpsertResponse(1, q2, "z")

	if err := s.DeleteResponsesForQuestion(q1); err != nil {
		t.Fatal(err)
	}
	if n := countResponses(t, s, q1); n != 0 {
		t.Errorf("q1 rows = %d, want 0", n)
	}
	if n := countResponses(t, s, q2); n != 1 {
		t.Errorf("q2 rows = %d, want 1", n)
	}
}
