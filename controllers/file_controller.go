package controllers

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/storage"
)

// GetFile serves an uploaded document inline by stored name.
func GetFile(files *storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := files.DocPath(c.Param("name"))
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
			return
		}
		c.File(path)
	}
}

// GetImage serves a stored image by name.
func GetImage(files *storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := files.ImagePath(c.Param("name"))
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Image not found"})
			return
		}
		c.File(path)
	}
}

// DownloadFile serves a document as an attachment.
func DownloadFile(files *storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		path := files.DocPath(name)
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
			return
		}
		c.FileAttachment(path, name)
	}
}

// DownloadAllFiles streams every attachment of a post as one zip archive.
// Files that went missing on disk are skipped rather than failing the whole
// download.
func DownloadAllFiles(db *gorm.DB, files *storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, ok := loadPost(c, db)
		if !ok {
			return
		}
		if !postVisible(c, db, post) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
			return
		}

		names := splitFileList(post.Files)
		if len(names) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		archiveName := fmt.Sprintf("LPRS-%d_%d.zip", post.ID, time.Now().UnixMilli())
		c.Header("Content-Type", "application/zip")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveName))

		zw := zip.NewWriter(c.Writer)
		defer zw.Close()
		for _, name := range names {
			f, err := os.Open(files.DocPath(name))
			if err != nil {
				continue
			}
			w, err := zw.Create(name)
			if err != nil {
				f.Close()
				return
			}
			if _, err := io.Copy(w, f); err != nil {
				f.Close()
				return
			}
			f.Close()
		}
	}
}
