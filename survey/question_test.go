package survey

import (
	"errors"
	"testing"
)

func TestCreateAndGetQuestion(t *testing.T) {
	s := newTestStore(t)

	id := mustCreateQuestion(t, s, "Pick a color", QuestionRadio, []string{"red", "blue,green"})
	q, err := s.GetQuestion(id)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	if q.Content != "Pick a color" || q.Type != QuestionRadio {
		t.Errorf("got %q/%q", q.Content, q.Type)
	}
	if len(q.Options) != 2 || q.Options[0] != "red" || q.Options[1] != "blue,green" {
		t.Errorf("options = %#v", q.Options)
	}
}

func TestCreateQuestionTextHasNoOptions(t *testing.T) {
	s := newTestStore(t)

	id := mustCreateQuestion(t, s, "Any comments?", QuestionText, []string{"ignored"})
	q, err := s.GetQuestion(id)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	if q.Options != nil {
		t.Errorf("text question stored options: %#v", q.Options)
	}
}

func TestCreateQuestionRejectsUnknownType(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateQuestion("q", "dropdown", nil); !errors.Is(err, ErrInvalidQuestionType) {
		t.Errorf("err = %v, want ErrInvalidQuestionType", err)
	}
}

func TestGetQuestionNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetQuestion(999); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}
