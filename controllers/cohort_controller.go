package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/middleware"
	"github.com/lprs-app/peer-review-server/models"
)

type cohortReq struct {
	Name        string `json:"name" binding:"required,min=1"`
	Description string `json:"description" binding:"required,min=1"`
	IsPrivate   bool   `json:"is_private"`
}

// name and description are silently truncated to their column widths
func (r *cohortReq) clamp() {
	if len(r.Name) > 32 {
		r.Name = r.Name[:32]
	}
	if len(r.Description) > 128 {
		r.Description = r.Description[:128]
	}
}

func CreateCohort(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		var req cohortReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		req.clamp()

		cohort := models.Cohort{
			Name:        req.Name,
			Description: req.Description,
			IsPrivate:   req.IsPrivate,
		}
		// the creator becomes owner in the same transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&cohort).Error; err != nil {
				return err
			}
			reg := models.Registration{UserID: u.ID, CohortID: cohort.ID, Rank: models.RankOwner}
			return tx.Create(&reg).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create cohort"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"data": cohort})
	}
}

func UpdateCohort(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cohort := c.MustGet(middleware.CtxCohort).(models.Cohort)

		var req cohortReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		req.clamp()

		err := db.Model(&models.Cohort{}).Where("id = ?", cohort.ID).
			Updates(map[string]interface{}{
				"name":        req.Name,
				"description": req.Description,
				"is_private":  req.IsPrivate,
			}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GetCohort returns the cohort when the caller may see it. Private cohorts
// answer 404 to outsiders.
func GetCohort(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("cohortId"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid cohort id"})
			return
		}

		var cohort models.Cohort
		if e := db.First(&cohort, id).Error; e != nil {
			if errors.Is(e, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Cohort not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not read cohort"})
			return
		}

		var userPtr *models.User
		if u, ok := middleware.CurrentUser(c); ok {
			userPtr = &u
		}
		if !middleware.CohortVisible(db, cohort, userPtr) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Cohort not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": cohort})
	}
}

func GetMyCohorts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		var cohorts []models.Cohort
		err := db.
			Joins("JOIN registration ON registration.cohort_id = cohort.id").
			Where("registration.user_id = ?", u.ID).
			Find(&cohorts).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list cohorts"})
			return
		}
		if len(cohorts) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": cohorts})
	}
}

// SearchCohorts finds public cohorts by name, excluding ones the caller is
// already in.
func SearchCohorts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)
		query := "%" + strings.ToUpper(c.Param("query")) + "%"

		var cohorts []models.Cohort
		err := db.
			Where("is_private = ? AND UPPER(name) LIKE ?", false, query).
			Where("id NOT IN (?)",
				db.Model(&models.Registration{}).Select("cohort_id").Where("user_id = ?", u.ID)).
			Find(&cohorts).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Search failed"})
			return
		}
		if len(cohorts) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": cohorts})
	}
}

// JoinCohort registers the caller into a public cohort. A pending invite for
// the cohort is consumed on the way in.
func JoinCohort(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		id, err := strconv.Atoi(c.Param("cohortId"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid cohort id"})
			return
		}

		var cohort models.Cohort
		if e := db.Where("id = ? AND is_private = ?", id, false).First(&cohort).Error; e != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Cohort not found"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			reg := models.Registration{UserID: u.ID, CohortID: cohort.ID, Rank: models.RankMember}
			if err := tx.Create(&reg).Error; err != nil {
				return err
			}
			return tx.Where("cohort_id = ? AND user_id = ?", cohort.ID, u.ID).
				Delete(&models.Invite{}).Error
		})
		if err != nil {
			// unique index on (user_id, cohort_id): already a member
			c.JSON(http.StatusConflict, gin.H{"message": "Already a member"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// LeaveCohort removes the caller's own registration. Owners cannot leave
// their cohort; it would orphan it.
func LeaveCohort(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg := c.MustGet(middleware.CtxRegistration).(models.Registration)

		if reg.Rank == models.RankOwner {
			c.JSON(http.StatusConflict, gin.H{"message": "Owners cannot leave their cohort"})
			return
		}
		if err := db.Delete(&models.Registration{}, reg.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not leave cohort"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SearchInviteableUsers finds users by username who are neither registered in
// the cohort nor already invited to it.
func SearchInviteableUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cohort := c.MustGet(middleware.CtxCohort).(models.Cohort)
		query := "%" + strings.ToUpper(c.Param("query")) + "%"

		var users []models.User
		err := db.
			Where("UPPER(username) LIKE ?", query).
			Where("id NOT IN (?)",
				db.Model(&models.Registration{}).Select("user_id").Where("cohort_id = ?", cohort.ID)).
			Where("id NOT IN (?)",
				db.Model(&models.Invite{}).Select("user_id").Where("cohort_id = ?", cohort.ID)).
			Limit(20).
			Find(&users).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Search failed"})
			return
		}
		if len(users) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		results := make([]gin.H, 0, len(users))
		for _, u := range users {
			results = append(results, publicUser(u))
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

type inviteReq struct {
	UserIDs []uint `json:"user_ids" binding:"required,min=1"`
	Message string `json:"message"`
}

// InviteUsers creates pending invites. Users already registered or already
// invited are skipped quietly.
func InviteUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cohort := c.MustGet(middleware.CtxCohort).(models.Cohort)

		var req inviteReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}

		for _, uid := range req.UserIDs {
			var count int64
			db.Model(&models.Registration{}).
				Where("cohort_id = ? AND user_id = ?", cohort.ID, uid).Count(&count)
			if count > 0 {
				continue
			}
			db.Model(&models.Invite{}).
				Where("cohort_id = ? AND user_id = ?", cohort.ID, uid).Count(&count)
			if count > 0 {
				continue
			}

			invite := models.Invite{CohortID: cohort.ID, UserID: uid, Message: req.Message}
			if err := db.Create(&invite).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create invites"})
				return
			}
		}
		c.Status(http.StatusNoContent)
	}
}

func GetMyInvites(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		var invites []models.Invite
		if err := db.Preload("Cohort").Where("user_id = ?", u.ID).Find(&invites).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list invites"})
			return
		}
		if len(invites) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": invites})
	}
}

func DeclineInvite(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)

		id, err := strconv.Atoi(c.Param("inviteId"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid invite id"})
			return
		}

		res := db.Where("id = ? AND user_id = ?", id, u.ID).Delete(&models.Invite{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not decline invite"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Invite not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
