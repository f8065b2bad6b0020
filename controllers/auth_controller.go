package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/config"
	"github.com/lprs-app/peer-review-server/middleware"
	"github.com/lprs-app/peer-review-server/models"
	"github.com/lprs-app/peer-review-server/storage"
	"github.com/lprs-app/peer-review-server/utils"
)

type registerReq struct {
	Username string `json:"username" binding:"required,min=1,max=32"`
	Name     string `json:"name" binding:"required,min=1"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}

		var count int64
		db.Model(&models.User{}).Where("email = ? OR username = ?", req.Email, req.Username).Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"message": "Email or username already taken"})
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not hash password"})
			return
		}

		user := models.User{
			Username: req.Username,
			Name:     req.Name,
			Email:    req.Email,
			Password: hash,
		}
		if err := provisionUser(db, &user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"user": publicUser(user)})
	}
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Wrong email or password"})
			return
		}
		if user.Password == "" || !utils.CheckPassword(user.Password, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Wrong email or password"})
			return
		}

		token, err := utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": publicUser(user)})
	}
}

type googleLoginReq struct {
	IDToken string `json:"id_token" binding:"required"`
}

// GoogleLogin verifies a Google ID token and signs the account in, creating
// it on first sight. New accounts get the Google profile picture copied into
// local storage and a membership in the default public cohort.
func GoogleLogin(db *gorm.DB, cfg *config.Config, files *storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req googleLoginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}

		payload, err := idtoken.Validate(c.Request.Context(), req.IDToken, cfg.GoogleClientID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Google token"})
			return
		}
		sub := payload.Subject

		var user models.User
		err = db.Where("google_id = ?", sub).First(&user).Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not read account"})
				return
			}

			username := "User" + sub
			if len(username) > 32 {
				username = username[:32]
			}
			user = models.User{
				GoogleID: &sub,
				Username: username,
				Name:     claimString(payload, "name"),
				Email:    claimString(payload, "email"),
			}
			if picURL := claimString(payload, "picture"); picURL != "" {
				if name, err := files.SaveRemoteImage(picURL); err == nil {
					user.Picture = name
				} else {
					log.Printf("google login: profile picture fetch failed: %v", err)
				}
			}
			if err := provisionUser(db, &user); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
				return
			}
		}

		token, err := utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": publicUser(user)})
	}
}

func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(middleware.CtxUser).(models.User)
		c.JSON(http.StatusOK, gin.H{"user": publicUser(u)})
	}
}

// provisionUser creates the account and registers it into the default public
// cohort in one transaction.
func provisionUser(db *gorm.DB, user *models.User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		reg := models.Registration{UserID: user.ID, CohortID: 1, Rank: models.RankMember}
		return tx.Create(&reg).Error
	})
}

func publicUser(u models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"name":       u.Name,
		"email":      u.Email,
		"picture":    u.Picture,
		"created_at": u.CreatedAt,
	}
}

func claimString(payload *idtoken.Payload, key string) string {
	if v, ok := payload.Claims[key].(string); ok {
		return v
	}
	return ""
}
