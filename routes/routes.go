package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/config"
	"github.com/lprs-app/peer-review-server/controllers"
	"github.com/lprs-app/peer-review-server/middleware"
	"github.com/lprs-app/peer-review-server/storage"
	"github.com/lprs-app/peer-review-server/survey"
)

// SetupRoutes wires every endpoint under /api.
func SetupRoutes(r *gin.Engine, db *gorm.DB, store *survey.Store, files *storage.Storage, cfg *config.Config) {
	api := r.Group("/api")

	api.GET("/health", controllers.HealthCheck(db))

	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimitRegister(), controllers.Register(db))
		auth.POST("/login", controllers.Login(db))
		auth.POST("/google", controllers.GoogleLogin(db, cfg, files))
	}

	me := api.Group("/me", middleware.AuthJWT(db))
	{
		me.GET("", controllers.Me())
		me.PATCH("", controllers.UpdateUser(db))
		me.PUT("/picture", controllers.UpdateProfilePicture(db, files))
		me.GET("/cohorts", controllers.GetMyCohorts(db))
		me.GET("/posts", controllers.GetMyPosts(db))
		me.GET("/invites", controllers.GetMyInvites(db))
		me.DELETE("/invites/:inviteId", controllers.DeclineInvite(db))
	}

	api.GET("/questions/saved", middleware.AuthJWT(db), controllers.GetSavedQuestions(store))

	users := api.Group("/users")
	{
		users.GET("/:userId/picture", controllers.GetProfilePicture(db, files))
		users.GET("/unique/:username", middleware.AuthJWT(db), controllers.CheckUniqueUsername(db))
	}

	cohorts := api.Group("/cohorts")
	{
		cohorts.POST("", middleware.AuthJWT(db), controllers.CreateCohort(db))
		cohorts.GET("/search/:query", middleware.AuthJWT(db), controllers.SearchCohorts(db))
		cohorts.GET("/:cohortId", middleware.OptionalAuth(db), controllers.GetCohort(db))
		cohorts.PATCH("/:cohortId", middleware.AuthJWT(db), middleware.CheckCohortOwner(db), controllers.UpdateCohort(db))
		cohorts.POST("/:cohortId/join", middleware.AuthJWT(db), controllers.JoinCohort(db))
		cohorts.POST("/:cohortId/leave", middleware.AuthJWT(db), middleware.CheckCohortMember(db), controllers.LeaveCohort(db))
		cohorts.POST("/:cohortId/invites", middleware.AuthJWT(db), middleware.CheckCohortOwner(db), controllers.InviteUsers(db))
		cohorts.GET("/:cohortId/invitees/:query", middleware.AuthJWT(db), middleware.CheckCohortOwner(db), controllers.SearchInviteableUsers(db))
		cohorts.GET("/:cohortId/posts", middleware.AuthJWT(db), middleware.CheckCohortMember(db), controllers.GetCohortPosts(db))
		cohorts.POST("/:cohortId/posts",
			middleware.AuthJWT(db), middleware.CheckCohortMember(db),
			middleware.RateLimitPostCreate(), controllers.CreatePost(db, files))
	}

	posts := api.Group("/posts")
	{
		posts.GET("/:postId", middleware.OptionalAuth(db), controllers.GetPost(db))
		posts.DELETE("/:postId", middleware.AuthJWT(db), controllers.DeletePost(db, files))
		posts.POST("/:postId/responses", middleware.AuthJWT(db), controllers.CreateResponse(db, store))
		posts.GET("/:postId/stats", middleware.AuthJWT(db), controllers.GetResponseStats(db, store))
		posts.GET("/:postId/files/zip", middleware.OptionalAuth(db), controllers.DownloadAllFiles(db, files))
		posts.POST("/:postId/export", middleware.AuthJWT(db), controllers.CreateExport(db, cfg.ExportDir))
	}

	api.GET("/criteria/:criteriaId", controllers.GetCriteriaQuestions(store))

	fileRoutes := api.Group("/files")
	{
		fileRoutes.GET("/:name", controllers.GetFile(files))
		fileRoutes.GET("/:name/download", controllers.DownloadFile(files))
	}
	api.GET("/images/:name", controllers.GetImage(files))

	api.GET("/exports/:job_id", middleware.AuthJWT(db), controllers.GetExport(db))
}
