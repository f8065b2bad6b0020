package controllers

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/middleware"
	"github.com/lprs-app/peer-review-server/models"
	"github.com/lprs-app/peer-review-server/storage"
	"github.com/lprs-app/peer-review-server/survey"
)

type updateUserReq struct {
	Username string `json:"username" binding:"required,min=1,max=32"`
	Name     string `json:"name" binding:"required,min=1"`
}

func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		var req updateUserReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}

		// a changed username must stay unique
		if req.Username != u.Username {
			var count int64
			db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
			if count > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Username already taken"})
				return
			}
		}

		err := db.Model(&models.User{}).Where("id = ?", u.ID).
			Updates(map[string]interface{}{"username": req.Username, "name": req.Name}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// UpdateProfilePicture replaces the avatar. The old file is appended to the
// redundancy ledger instead of being unlinked inline; the sweeper gets it.
func UpdateProfilePicture(db *gorm.DB, files *storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		picture := ""
		if fh, err := c.FormFile("avatar"); err == nil {
			name, err := files.SaveImage(fh)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not store picture"})
				return
			}
			picture = name
		}

		if err := db.Model(&models.User{}).Where("id = ?", u.ID).Update("picture", picture).Error; err != nil {
			// the replacement never became referenced, queue it for sweep
			if picture != "" {
				files.MarkRedundant(files.ImagePath(picture))
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
			return
		}

		// only now is the old file unreferenced
		if u.Picture != "" {
			files.MarkRedundant(files.ImagePath(u.Picture))
		}
		c.Status(http.StatusNoContent)
	}
}

// GetProfilePicture serves a user's avatar, falling back to the bundled
// default when the user has none or the file has gone missing.
func GetProfilePicture(db *gorm.DB, files *storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		fallback := files.ImagePath("default-profile-pic.jpg")

		id, err := strconv.Atoi(c.Param("userId"))
		if err != nil || id <= 0 {
			c.File(fallback)
			return
		}

		var user models.User
		if err := db.First(&user, id).Error; err != nil || user.Picture == "" {
			c.File(fallback)
			return
		}

		path := files.ImagePath(user.Picture)
		if _, err := os.Stat(path); err != nil {
			c.File(fallback)
			return
		}
		c.File(path)
	}
}

func CheckUniqueUsername(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)
		username := c.Param("username")

		// your own username always counts as available to you
		if username == u.Username {
			c.JSON(http.StatusOK, gin.H{"unique": true})
			return
		}

		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not check username"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"unique": count == 0})
	}
}

// GetSavedQuestions returns the questions the user flagged for reuse, with
// options decoded. Ids that no longer resolve are skipped, not errors: the
// saved list is append-only and may outlive its questions.
func GetSavedQuestions(store *survey.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		ids := survey.SplitIDList(u.SavedQuestions)
		if len(ids) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		out := []gin.H{}
		for _, id := range ids {
			q, err := store.GetQuestion(id)
			if err != nil {
				continue
			}
			item := gin.H{
				"question_content": q.Content,
				"type":             q.Type,
			}
			if q.Type != survey.QuestionText {
				item["answers"] = q.Options
			}
			out = append(out, item)
		}
		if len(out) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": out})
	}
}
