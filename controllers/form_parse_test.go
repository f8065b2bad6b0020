package controllers

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/lprs-app/peer-review-server/survey"
)

func entryFor(t *testing.T, sub survey.Submission, idx int) survey.SubmissionEntry {
	t.Helper()
	for _, e := range sub {
		if e.QuestionIndex == idx {
			return e
		}
	}
	t.Fatalf("no entry for question index %d in %#v", idx, sub)
	return survey.SubmissionEntry{}
}

func TestParseFormAnswersTextFields(t *testing.T) {
	values := url.Values{
		"question0": {"free text"},
		"question2": {"radio choice"},
	}
	sub := ParseFormAnswers(values)
	if len(sub) != 2 {
		t.Fatalf("entries = %d, want 2", len(sub))
	}

	e := entryFor(t, sub, 0)
	if e.Answer.Multi || e.Answer.Value != "free text" {
		t.Errorf("entry 0 = %#v", e)
	}
	e = entryFor(t, sub, 2)
	if e.Answer.Multi || e.Answer.Value != "radio choice" {
		t.Errorf("entry 2 = %#v", e)
	}
}

func TestParseFormAnswersCheckboxGrouping(t *testing.T) {
	// two-run field names are sub-answers; values carry the option index
	values := url.Values{
		"question1option0": {"0"},
		"question1option1": {"2"},
	}
	sub := ParseFormAnswers(values)
	if len(sub) != 1 {
		t.Fatalf("entries = %d, want 1", len(sub))
	}

	e := entryFor(t, sub, 1)
	if !e.Answer.Multi {
		t.Fatalf("entry not multi: %#v", e)
	}
	if !reflect.DeepEqual(e.Answer.Selected, []int{0, 2}) {
		t.Errorf("selected = %v, want [0 2]", e.Answer.Selected)
	}
}

func TestParseFormAnswersMixed(t *testing.T) {
	values := url.Values{
		"question0":        {"why not"},
		"question1option0": {"1"},
	}
	sub := ParseFormAnswers(values)
	if len(sub) != 2 {
		t.Fatalf("entries = %d, want 2", len(sub))
	}
	if e := entryFor(t, sub, 0); e.Answer.Multi {
		t.Errorf("entry 0 should be single-valued: %#v", e)
	}
	if e := entryFor(t, sub, 1); !e.Answer.Multi || !reflect.DeepEqual(e.Answer.Selected, []int{1}) {
		t.Errorf("entry 1 = %#v", e)
	}
}

func TestParseFormAnswersBadSubAnswerValue(t *testing.T) {
	values := url.Values{
		"question0option0": {"not a number"},
	}
	sub := ParseFormAnswers(values)
	e := entryFor(t, sub, 0)
	// impossible index, rejected later by the validator
	if !reflect.DeepEqual(e.Answer.Selected, []int{-1}) {
		t.Errorf("selected = %v, want [-1]", e.Answer.Selected)
	}
}

func TestParseFormAnswersIgnoresUnindexedFields(t *testing.T) {
	values := url.Values{
		"csrfToken": {"abc"},
		"submit":    {"Send"},
	}
	sub := ParseFormAnswers(values)
	if len(sub) != 0 {
		t.Errorf("entries = %#v, want none", sub)
	}
}

func TestParseFormAnswersSelectedOrderIsStable(t *testing.T) {
	// map iteration is random; field names are sorted before grouping
	values := url.Values{
		"question0option2": {"5"},
		"question0option0": {"3"},
		"question0option1": {"4"},
	}
	sub := ParseFormAnswers(values)
	e := entryFor(t, sub, 0)
	// lexicographic name order: option0, option1, option2
	if !reflect.DeepEqual(e.Answer.Selected, []int{3, 4, 5}) {
		t.Errorf("selected = %v", e.Answer.Selected)
	}
}
