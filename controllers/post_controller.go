package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/middleware"
	"github.com/lprs-app/peer-review-server/models"
	"github.com/lprs-app/peer-review-server/storage"
	"github.com/lprs-app/peer-review-server/survey"
)

// questionPayload is one authored question in the create-post form. Save marks
// it for the author's reusable question list.
type questionPayload struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Answers  []string `json:"answers"`
	Save     bool     `json:"save"`
}

type questionsPayload struct {
	Questions []questionPayload `json:"questions"`
}

// CreatePost publishes a post into the current cohort. The multipart form
// carries postTitle, postDesc, a questions JSON payload and any number of
// attachment files. Questions, criteria and the post row are created in one
// transaction; files are written to disk first and swept later if the
// transaction fails.
func CreatePost(db *gorm.DB, files *storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)
		reg := c.MustGet(middleware.CtxRegistration).(models.Registration)

		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form"})
			return
		}

		title := strings.TrimSpace(c.PostForm("postTitle"))
		desc := strings.TrimSpace(c.PostForm("postDesc"))
		if title == "" || desc == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title and description are required"})
			return
		}
		if len(title) > 128 {
			title = title[:128]
		}

		var payload questionsPayload
		if err := json.Unmarshal([]byte(c.PostForm("questions")), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid questions payload"})
			return
		}
		if len(payload.Questions) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "At least one question is required"})
			return
		}

		var stored []string
		if c.Request.MultipartForm != nil {
			for _, fh := range c.Request.MultipartForm.File["files"] {
				name, err := files.SaveDocument(fh)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not store file"})
					return
				}
				stored = append(stored, name)
			}
		}

		var post models.Post
		err := db.Transaction(func(tx *gorm.DB) error {
			store := survey.NewStore(tx)

			ids := make([]uint, 0, len(payload.Questions))
			var saved []string
			for _, q := range payload.Questions {
				id, err := store.CreateQuestion(q.Question, q.Type, q.Answers)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				if q.Save {
					saved = append(saved, strconv.FormatUint(uint64(id), 10))
				}
			}

			criteriaID, err := store.CreateCriteria(ids)
			if err != nil {
				return err
			}

			post = models.Post{
				RegistrationID: reg.ID,
				CriteriaID:     criteriaID,
				Title:          title,
				Description:    desc,
				Files:          strings.Join(stored, ","),
			}
			if err := tx.Create(&post).Error; err != nil {
				return err
			}

			if len(saved) > 0 {
				list := u.SavedQuestions
				if list != "" {
					list += ","
				}
				list += strings.Join(saved, ",")
				return tx.Model(&models.User{}).Where("id = ?", u.ID).
					Update("saved_questions", list).Error
			}
			return nil
		})
		if err != nil {
			// orphaned uploads get picked up by the sweeper
			files.MarkRedundant(docPaths(files, stored)...)
			if errors.Is(err, survey.ErrInvalidQuestionType) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid question type"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create post"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"data": post})
	}
}

func docPaths(files *storage.Storage, names []string) []string {
	paths := make([]string, 0, len(names))
	for _, n := range names {
		paths = append(paths, files.DocPath(n))
	}
	return paths
}

// loadPost reads a post with its registration from the :postId param.
func loadPost(c *gin.Context, db *gorm.DB) (models.Post, bool) {
	id, err := strconv.Atoi(c.Param("postId"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid post id"})
		return models.Post{}, false
	}
	var post models.Post
	if e := db.Preload("Registration").First(&post, id).Error; e != nil {
		if errors.Is(e, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return models.Post{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not read post"})
		return models.Post{}, false
	}
	return post, true
}

// postVisible applies the owning cohort's visibility to the post.
func postVisible(c *gin.Context, db *gorm.DB, post models.Post) bool {
	var cohort models.Cohort
	if err := db.First(&cohort, post.Registration.CohortID).Error; err != nil {
		return false
	}
	var userPtr *models.User
	if u, ok := middleware.CurrentUser(c); ok {
		userPtr = &u
	}
	return middleware.CohortVisible(db, cohort, userPtr)
}

// GetPost returns one post when its cohort is visible to the caller, with the
// author's public identity and the file name list split out.
func GetPost(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, ok := loadPost(c, db)
		if !ok {
			return
		}
		if !postVisible(c, db, post) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}

		var author models.User
		db.First(&author, post.Registration.UserID)

		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"post":      post,
			"author":    publicUser(author),
			"cohort_id": post.Registration.CohortID,
			"files":     splitFileList(post.Files),
		}})
	}
}

func splitFileList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// GetCohortPosts lists the cohort's posts, newest first. Membership was
// already established by the route middleware.
func GetCohortPosts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cohort := c.MustGet(middleware.CtxCohort).(models.Cohort)

		var posts []models.Post
		err := db.
			Joins("JOIN registration ON registration.id = post.registration_id").
			Where("registration.cohort_id = ?", cohort.ID).
			Order("post.time_created DESC").
			Find(&posts).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list posts"})
			return
		}
		if len(posts) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": posts})
	}
}

func GetMyPosts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		var posts []models.Post
		err := db.
			Joins("JOIN registration ON registration.id = post.registration_id").
			Where("registration.user_id = ?", u.ID).
			Order("post.time_created DESC").
			Find(&posts).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list posts"})
			return
		}
		if len(posts) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": posts})
	}
}

// DeletePost removes a post the caller authored: attachments go on the
// redundancy ledger, the criteria row and all responses to its questions are
// deleted, and the question rows stay so saved-question references hold.
func DeletePost(db *gorm.DB, files *storage.Storage) gin.HandlerFunc {
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

		err := db.Transaction(func(tx *gorm.DB) error {
			store := survey.NewStore(tx)

			questionIDs, err := store.GetCriteria(post.CriteriaID)
			if err != nil && !errors.Is(err, survey.ErrCriteriaNotFound) {
				return err
			}
			for _, qid := range questionIDs {
				if err := store.DeleteResponsesForQuestion(qid); err != nil {
					return err
				}
			}
			if err := store.DeleteCriteria(post.CriteriaID); err != nil {
				return err
			}
			return tx.Delete(&models.Post{}, post.ID).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete post"})
			return
		}

		files.MarkRedundant(docPaths(files, splitFileList(post.Files))...)
		c.Status(http.StatusNoContent)
	}
}

// GetCriteriaQuestions returns the decoded questions of a criteria in stored
// order. Ids that no longer resolve are skipped; an empty result is 204.
func GetCriteriaQuestions(store *survey.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("criteriaId"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid criteria id"})
			return
		}

		questionIDs, err := store.GetCriteria(uint(id))
		if err != nil {
			if errors.Is(err, survey.ErrCriteriaNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Criteria not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not read criteria"})
			return
		}

		questions := make([]*survey.Question, 0, len(questionIDs))
		for _, qid := range questionIDs {
			q, err := store.GetQuestion(qid)
			if err != nil {
				continue
			}
			questions = append(questions, q)
		}
		if len(questions) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": questions})
	}
}
