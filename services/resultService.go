package services

import (
	"OcuCare/models"
	"OcuCare/utils"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ResultService owns the PatientResult lifecycle: blob-first creation,
// listing and deletion.
type ResultService interface {
	SavePatientResult(ctx context.Context, userID, patientName, label string, confidence float64, image io.Reader, size int64, contentType string) (*models.PatientResult, error)
	GetResultsForUser(ctx context.Context, userID string) ([]models.PatientResult, error)
	GetResult(ctx context.Context, id string) (*models.PatientResult, error)
	DeletePatientResult(ctx context.Context, documentID, storagePath string) error
}

type resultService struct {
	results ResultStore
	blobs   BlobStorage
}

func NewResultService(results ResultStore, blobs BlobStorage) ResultService {
	return &resultService{results: results, blobs: blobs}
}

// SavePatientResult uploads the image blob, resolves its retrieval URL and
// then writes the metadata record embedding that URL. The two steps are not
// atomic: a metadata failure after a successful upload leaves an orphaned
// blob, which is logged and accepted rather than reconciled.
func (s *resultService) SavePatientResult(ctx context.Context, userID, patientName, label string, confidence float64, image io.Reader, size int64, contentType string) (*models.PatientResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := utils.ValidateResultData(label, confidence); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	objectName := fmt.Sprintf("results/%s/%s%s", userID, id, extensionFor(contentType))

	storagePath, err := s.blobs.UploadFromReader(ctx, objectName, image, size, contentType)
	if err != nil {
		return nil, errors.Wrap(err, "image upload failed")
	}

	imageURL, err := s.blobs.GetPresignedURL(ctx, storagePath)
	if err != nil {
		log.Printf("Orphaned blob %s: failed to resolve image URL: %v", storagePath, err)
		return nil, errors.Wrap(err, "image URL resolution failed")
	}

	result := &models.PatientResult{
		ID:          id,
		UserID:      userID,
		PatientName: patientName,
		Result:      label,
		Confidence:  confidence,
		Timestamp:   time.Now(),
		ImageURL:    imageURL,
		StoragePath: storagePath,
	}
	if err := s.results.Create(ctx, result); err != nil {
		log.Printf("Orphaned blob %s: metadata write failed: %v", storagePath, err)
		return nil, errors.Wrap(err, "result metadata write failed")
	}

	return result, nil
}

// GetResultsForUser returns all of a user's results, most recent first.
func (s *resultService) GetResultsForUser(ctx context.Context, userID string) ([]models.PatientResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "result listing failed")
	}
	for i := range results {
		s.refreshImageURL(ctx, &results[i])
	}
	return results, nil
}

func (s *resultService) GetResult(ctx context.Context, id string) (*models.PatientResult, error) {
	result, err := s.results.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "result lookup failed")
	}
	if result == nil {
		return nil, errors.Wrapf(ErrNotFound, "result %s", id)
	}
	s.refreshImageURL(ctx, result)
	return result, nil
}

// refreshImageURL re-signs the stored object path on every read. Presigned
// URLs expire, so the one embedded at creation time only serves the initial
// response; readers always get a live link. On failure the stale URL is
// returned rather than none.
func (s *resultService) refreshImageURL(ctx context.Context, result *models.PatientResult) {
	if result.StoragePath == "" {
		return
	}
	url, err := s.blobs.GetPresignedURL(ctx, result.StoragePath)
	if err != nil {
		log.Printf("Failed to refresh image URL for result %s: %v", result.ID, err)
		return
	}
	result.ImageURL = url
}

// DeletePatientResult removes the stored image blob, then the metadata
// record. A blob-deletion failure is logged and swallowed so the visible
// record always goes away; a metadata-deletion failure propagates.
func (s *resultService) DeletePatientResult(ctx context.Context, documentID, storagePath string) error {
	if storagePath != "" {
		if err := s.blobs.DeleteFile(ctx, storagePath); err != nil {
			log.Printf("Failed to delete image blob %s for result %s: %v", storagePath, documentID, err)
		}
	}
	if err := s.results.Delete(ctx, documentID); err != nil {
		return errors.Wrap(err, "result deletion failed")
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
