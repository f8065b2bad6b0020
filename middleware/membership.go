package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/models"
)

const (
	CtxCohort       = "cohortObj"       // cohort loaded by the membership checks
	CtxRegistration = "registrationObj" // caller's registration in that cohort
)

// loadMembership resolves the :cohortId param and the caller's registration
// in that cohort, aborting the request when either is missing. Non-members
// get 404, not 403, so private cohorts don't leak their existence.
func loadMembership(c *gin.Context, db *gorm.DB) (models.Cohort, models.Registration, bool) {
	u := c.MustGet(CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("cohortId"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid cohort id"})
		return models.Cohort{}, models.Registration{}, false
	}

	var cohort models.Cohort
	if e := db.First(&cohort, id).Error; e != nil {
		if errors.Is(e, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Cohort not found"})
			return models.Cohort{}, models.Registration{}, false
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not read cohort"})
		return models.Cohort{}, models.Registration{}, false
	}

	var reg models.Registration
	if e := db.Where("cohort_id = ? AND user_id = ?", cohort.ID, u.ID).First(&reg).Error; e != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Cohort not found"})
		return models.Cohort{}, models.Registration{}, false
	}
	return cohort, reg, true
}

// CheckCohortMember loads the cohort from the :cohortId param and requires
// the caller to be registered in it.
func CheckCohortMember(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cohort, reg, ok := loadMembership(c, db)
		if !ok {
			return
		}
		c.Set(CtxCohort, cohort)
		c.Set(CtxRegistration, reg)
		c.Next()
	}
}

// CheckCohortOwner requires membership at owner rank. The rank is verified
// before the rest of the chain runs.
func CheckCohortOwner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cohort, reg, ok := loadMembership(c, db)
		if !ok {
			return
		}
		if reg.Rank != models.RankOwner {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Cohort not found"})
			return
		}
		c.Set(CtxCohort, cohort)
		c.Set(CtxRegistration, reg)
		c.Next()
	}
}

// CohortVisible reports whether the acting user (possibly anonymous) may see
// the cohort: public cohorts always, private cohorts members only.
func CohortVisible(db *gorm.DB, cohort models.Cohort, user *models.User) bool {
	if !cohort.IsPrivate {
		return true
	}
	if user == nil {
		return false
	}
	var reg models.Registration
	err := db.Where("cohort_id = ? AND user_id = ?", cohort.ID, user.ID).First(&reg).Error
	return err == nil
}
