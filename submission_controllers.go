package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// -----------------------------
// Submissions
// -----------------------------

// CreateSubmission handles the multipart form: field taskAssignmentId,
// optional notes, repeated files parts (order preserved). A successful
// submission moves the assignment to Completed in the same transaction.
func CreateSubmission(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	assignmentID64, err := strconv.ParseUint(c.PostForm("taskAssignmentId"), 10, 64)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "taskAssignmentId is required")
		return
	}
	assignmentID := uint(assignmentID64)
	notes := c.PostForm("notes")

	var assignment TaskAssignment
	if err := DB.First(&assignment, assignmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "assignment not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	if assignment.AssigneeID != userID {
		jsonError(c, http.StatusForbidden, "this assignment belongs to someone else")
		return
	}

	if assignment.Status != AssignmentInProgress {
		jsonError(c, http.StatusConflict, "assignment must be InProgress to submit")
		return
	}

	var existing Submission
	if err := DB.Where("task_assignment_id = ?", assignment.ID).First(&existing).Error; err == nil {
		jsonError(c, http.StatusConflict, "assignment already has a submission")
		return
	} else if err != gorm.ErrRecordNotFound {
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	// Stage every file in the blob store before touching the database so a
	// half-written upload never leaves rows behind.
	parts := form.File["files"]
	files := make([]SubmissionFile, 0, len(parts))
	keys := make([]string, 0, len(parts))
	for i, part := range parts {
		src, err := part.Open()
		if err != nil {
			cleanupKeys(keys)
			jsonError(c, http.StatusBadRequest, "could not read file "+part.Filename)
			return
		}

		key, size, err := FileStore.Save(src)
		src.Close()
		if err != nil {
			cleanupKeys(keys)
			jsonError(c, http.StatusInternalServerError, "could not store file "+part.Filename)
			return
		}
		keys = append(keys, key)

		contentType := part.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			if mt, err := mimetype.DetectFile(FileStore.Path(key)); err == nil {
				contentType = mt.String()
			}
		}

		files = append(files, SubmissionFile{
			FileName:    part.Filename,
			FileSize:    size,
			ContentType: contentType,
			Position:    i,
			StorageKey:  key,
		})
	}

	submission := Submission{
		TaskAssignmentID: assignment.ID,
		Notes:            notes,
		SubmittedAt:      time.Now(),
	}

	if err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		for i := range files {
			files[i].SubmissionID = submission.ID
		}
		if len(files) > 0 {
			if err := tx.Create(&files).Error; err != nil {
				return err
			}
		}
		assignment.Status = AssignmentCompleted
		return tx.Save(&assignment).Error
	}); err != nil {
		cleanupKeys(keys)
		jsonError(c, http.StatusInternalServerError, "could not create submission: "+err.Error())
		return
	}

	submission.Files = files
	c.JSON(http.StatusCreated, submission)
}

func cleanupKeys(keys []string) {
	for _, key := range keys {
		FileStore.Remove(key)
	}
}

func GetSubmission(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var submission Submission
	if err := DB.Preload("Files", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&submission, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "submission not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, submission)
}

// DownloadSubmissionFile streams the stored blob back with its original
// name and content type.
func DownloadSubmissionFile(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := parseIDParam(c, "fileId")
	if !ok {
		return
	}

	var file SubmissionFile
	if err := DB.First(&file, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			jsonError(c, http.StatusNotFound, "file not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Header("Content-Type", contentType)
	c.File(FileStore.Path(file.StorageKey))
}
