package handlers

import (
	"OcuCare/middlewares"
	"OcuCare/models"
	"OcuCare/services"
	"bytes"
	"io"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	results    services.ResultService
	classifier services.ClassifierService
}

func NewResultHandler(results services.ResultService, classifier services.ClassifierService) *ResultHandler {
	return &ResultHandler{results: results, classifier: classifier}
}

// CreateResult accepts an eye image, classifies it (unless the client
// already supplies a label and confidence) and persists the outcome. The
// image blob is uploaded before the metadata record is written.
func (h *ResultHandler) CreateResult(c *gin.Context) {
	userID, err := middlewares.ExtractUserIDFromContext(c.Request.Context())
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(400, gin.H{"error": "No image file provided"})
		return
	}
	ext := filepath.Ext(fileHeader.Filename)
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		c.JSON(400, gin.H{"error": "Only JPEG and PNG files are allowed"})
		return
	}
	contentType := "image/jpeg"
	if ext == ".png" {
		contentType = "image/png"
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, 20<<20))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to read image"})
		return
	}

	ctx := c.Request.Context()
	label := c.PostForm("result")
	confidence := 0.0
	if label == "" {
		label, confidence, err = h.classifier.Classify(ctx, imageBytes)
		if err != nil {
			c.JSON(502, gin.H{"error": "Classification failed"})
			return
		}
	} else if raw := c.PostForm("confidence"); raw != "" {
		confidence, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid confidence value"})
			return
		}
	}

	result, err := h.results.SavePatientResult(ctx, userID, c.PostForm("patient_name"), label, confidence,
		bytes.NewReader(imageBytes), int64(len(imageBytes)), contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, result)
}

// ListMyResults returns the caller's results, most recent first.
func (h *ResultHandler) ListMyResults(c *gin.Context) {
	userID, err := middlewares.ExtractUserIDFromContext(c.Request.Context())
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	results, err := h.results.GetResultsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, results)
}

// GetResult returns a single result, visible to its owner and the doctor.
func (h *ResultHandler) GetResult(c *gin.Context) {
	result, ok := h.authorizeResultAccess(c)
	if !ok {
		return
	}
	c.JSON(200, result)
}

// DeleteResult removes the result record and reclaims the stored image blob.
// A failed blob cleanup never blocks removal of the record.
func (h *ResultHandler) DeleteResult(c *gin.Context) {
	result, ok := h.authorizeResultAccess(c)
	if !ok {
		return
	}

	storagePath := c.DefaultQuery("storage_path", result.StoragePath)
	if err := h.results.DeletePatientResult(c.Request.Context(), result.ID, storagePath); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Result deleted"})
}

// authorizeResultAccess loads the result from the path parameter and checks
// the caller is its owner or the doctor. Writes the error response itself.
func (h *ResultHandler) authorizeResultAccess(c *gin.Context) (*models.PatientResult, bool) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	role, _ := middlewares.ExtractUserRoleFromContext(ctx)

	result, err := h.results.GetResult(ctx, c.Param("result_id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if result.UserID != userID && role != models.RoleDoctor {
		c.JSON(403, gin.H{"error": "Forbidden"})
		return nil, false
	}
	return result, true
}
