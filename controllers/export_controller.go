package controllers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lprs-app/peer-review-server/middleware"
	"github.com/lprs-app/peer-review-server/models"
	"github.com/lprs-app/peer-review-server/survey"
)

// Export job states.
const (
	ExportQueued     = "queued"
	ExportProcessing = "processing"
	ExportDone       = "done"
	ExportFailed     = "failed"
)

// CreateExport queues a CSV export of all responses to a post. Only the
// post's author may export. The job runs in the background; poll GetExport
// with the returned job id.
func CreateExport(db *gorm.DB, exportDir string) gin.HandlerFunc {
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

		job := models.ExportJob{
			JobID:  uuid.NewString(),
			PostID: post.ID,
			Format: "csv",
			Status: ExportQueued,
		}
		if err := db.Create(&job).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not queue export"})
			return
		}

		go processExportJob(db, exportDir, job.JobID, post)

		c.JSON(http.StatusAccepted, gin.H{"job_id": job.JobID, "status": job.Status})
	}
}

// GetExport reports a job's state, serving the CSV as an attachment once done.
func GetExport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var job models.ExportJob
		if err := db.First(&job, "job_id = ?", c.Param("job_id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Export job not found"})
			return
		}

		switch job.Status {
		case ExportDone:
			if job.FilePath == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Export file missing"})
				return
			}
			c.FileAttachment(*job.FilePath, filepath.Base(*job.FilePath))
		case ExportFailed:
			msg := "Export failed"
			if job.ErrorMsg != nil {
				msg = *job.ErrorMsg
			}
			c.JSON(http.StatusOK, gin.H{"job_id": job.JobID, "status": job.Status, "error": msg})
		default:
			c.JSON(http.StatusOK, gin.H{"job_id": job.JobID, "status": job.Status})
		}
	}
}

func processExportJob(db *gorm.DB, exportDir, jobID string, post models.Post) {
	setStatus := func(status string, path, errMsg *string) {
		db.Model(&models.ExportJob{}).Where("job_id = ?", jobID).
			Updates(map[string]interface{}{
				"status":    status,
				"file_path": path,
				"error_msg": errMsg,
			})
	}
	fail := func(err error) {
		log.Printf("export %s: %v", jobID, err)
		msg := err.Error()
		setStatus(ExportFailed, nil, &msg)
	}

	setStatus(ExportProcessing, nil, nil)

	store := survey.NewStore(db)
	questionIDs, err := store.GetCriteria(post.CriteriaID)
	if err != nil {
		fail(err)
		return
	}

	path := filepath.Join(exportDir, fmt.Sprintf("responses_%d_%s.csv", post.ID, jobID))
	f, err := os.Create(path)
	if err != nil {
		fail(err)
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"question_id", "question", "type", "user_id", "answer"}); err != nil {
		fail(err)
		return
	}

	for _, qid := range questionIDs {
		q, err := store.GetQuestion(qid)
		if err != nil {
			continue
		}

		var responses []models.Response
		if err := db.Where("question_id = ?", qid).Order("id").Find(&responses).Error; err != nil {
			fail(err)
			return
		}
		for _, r := range responses {
			answer := r.Answer
			if q.Type == survey.QuestionCheckbox {
				answer = joinDecoded(answer)
			}
			row := []string{
				strconv.FormatUint(uint64(q.ID), 10),
				q.Content,
				q.Type,
				strconv.FormatUint(uint64(r.UserID), 10),
				answer,
			}
			if err := w.Write(row); err != nil {
				fail(err)
				return
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		fail(err)
		return
	}
	setStatus(ExportDone, &path, nil)
}

// joinDecoded renders a stored checkbox answer as a human-readable list.
func joinDecoded(answer string) string {
	opts := survey.DecodeAnswers(answer)
	out := ""
	for i, o := range opts {
		if i > 0 {
			out += "; "
		}
		out += o
	}
	return out
}
