package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/middleware"
	"github.com/lprs-app/peer-review-server/models"
	"github.com/lprs-app/peer-review-server/survey"
)

var digitRuns = regexp.MustCompile(`\d+`)

// ParseFormAnswers turns raw submission form fields into a structured
// submission. The first digit run in a field name is the question index; a
// field whose name carries a second digit run is one checkbox sub-answer, and
// its value holds the selected option index. Fields with no digits or more
// than two runs are ignored.
func ParseFormAnswers(values url.Values) survey.Submission {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make(map[int]*survey.SubmissionEntry)
	var order []int
	entryFor := func(idx int) *survey.SubmissionEntry {
		if e, ok := entries[idx]; ok {
			return e
		}
		e := &survey.SubmissionEntry{QuestionIndex: idx}
		entries[idx] = e
		order = append(order, idx)
		return e
	}

	for _, name := range names {
		runs := digitRuns.FindAllString(name, -1)
		switch len(runs) {
		case 1:
			qIdx, err := strconv.Atoi(runs[0])
			if err != nil {
				continue
			}
			e := entryFor(qIdx)
			e.Answer.Multi = false
			e.Answer.Value = values.Get(name)
		case 2:
			qIdx, err := strconv.Atoi(runs[0])
			if err != nil {
				continue
			}
			optIdx, err := strconv.Atoi(strings.TrimSpace(values.Get(name)))
			if err != nil {
				// non-numeric sub-answer; an impossible index makes the
				// validator reject the submission instead of dropping it here
				optIdx = -1
			}
			e := entryFor(qIdx)
			e.Answer.Multi = true
			e.Answer.Selected = append(e.Answer.Selected, optIdx)
		}
	}

	sub := make(survey.Submission, 0, len(order))
	for _, idx := range order {
		sub = append(sub, *entries[idx])
	}
	return sub
}

// CreateResponse records the caller's feedback on a post. Authors cannot
// respond to their own posts, and the post must be visible to the caller.
func CreateResponse(db *gorm.DB, store *survey.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		post, ok := loadPost(c, db)
		if !ok {
			return
		}
		if post.Registration.UserID == u.ID {
			// own posts are not reviewable, and we don't explain why
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}
		if !postVisible(c, db, post) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}

		if err := c.Request.ParseMultipartForm(1 << 20); err != nil {
			if err := c.Request.ParseForm(); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form"})
				return
			}
		}

		sub := ParseFormAnswers(c.Request.PostForm)
		err := store.SubmitResponses(u.ID, post.CriteriaID, sub)
		switch {
		case err == nil:
			c.JSON(http.StatusCreated, gin.H{"message": "Response recorded"})
		case errors.Is(err, survey.ErrEmptySubmission),
			errors.Is(err, survey.ErrTypeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, survey.ErrQuestionNotFound),
			errors.Is(err, survey.ErrCriteriaNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not record response"})
		}
	}
}

// GetResponseStats returns the aggregated feedback on a post. Only the post's
// author may read it.
func GetResponseStats(db *gorm.DB, store *survey.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		post, ok := loadPost(c, db)
		if !ok {
			return
		}
		if post.Registration.UserID != u.ID {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}

		stats, err := store.ComputeStats(post.CriteriaID)
		if err != nil {
			if errors.Is(err, survey.ErrCriteriaNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Criteria not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not compute statistics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": stats})
	}
}
