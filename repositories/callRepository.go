package repositories

import (
	"OcuCare/database"
	"OcuCare/models"
	"OcuCare/services"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ services.CallStore = (*CallRepository)(nil)

// CallRepository persists the ephemeral call-signaling records. They are
// short-lived and always read fresh, so nothing here touches the cache.
type CallRepository struct{}

func NewCallRepository() *CallRepository {
	return &CallRepository{}
}

func (r *CallRepository) Get(ctx context.Context, patientID string) (*models.CallNotification, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var notification models.CallNotification
	err := database.DB.First(&notification, "patient_id = ?", patientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call notification: %w", err)
	}
	return &notification, nil
}

// Save upserts the keyed record: announcing a call for a patient who already
// has a record replaces it in place.
func (r *CallRepository) Save(ctx context.Context, notification *models.CallNotification) error {
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "patient_id"}},
		UpdateAll: true,
	}).Create(notification).Error
	if err != nil {
		return fmt.Errorf("failed to save call notification: %w", err)
	}
	return nil
}

func (r *CallRepository) UpdateStatus(ctx context.Context, patientID, status string) error {
	tx := database.DB.Model(&models.CallNotification{}).
		Where("patient_id = ?", patientID).
		Update("status", status)
	if tx.Error != nil {
		return fmt.Errorf("failed to update call status: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: call notification for patient %s", services.ErrNotFound, patientID)
	}
	return nil
}

// Delete removes the record unconditionally; a missing record is fine.
func (r *CallRepository) Delete(ctx context.Context, patientID string) error {
	err := database.DB.Delete(&models.CallNotification{}, "patient_id = ?", patientID).Error
	if err != nil {
		return fmt.Errorf("failed to delete call notification: %w", err)
	}
	return nil
}
