package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lprs-app/peer-review-server/config"
	"github.com/lprs-app/peer-review-server/routes"
	"github.com/lprs-app/peer-review-server/storage"
	"github.com/lprs-app/peer-review-server/survey"
)

func main() {
	cfg := config.Load()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		log.Fatal(err)
	}
	files, err := storage.New(cfg.DocDir, cfg.ImageDir, cfg.TempDir, cfg.RedundantsLog)
	if err != nil {
		log.Fatal(err)
	}
	files.StartSweeper(cfg.SweepInterval)

	store := survey.NewStore(db)

	r := gin.Default()

	allowed := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			for _, o := range allowed {
				if o != "" && origin == o {
					return true
				}
			}
			return origin == "http://localhost:5173"
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Peer review server is running")
	})

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Fatal(err)
	}

	routes.SetupRoutes(r, db, store, files, cfg)

	log.Printf("Server listening on port %s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
