package models

import (
	"time"
)

// Classification labels produced by the eye-image classifier.
const (
	LabelNormal       = "Normal"
	LabelCataract     = "Cataract"
	LabelGlaucoma     = "Glaucoma"
	LabelUnclassified = "Unclassified"
)

// ClassificationLabels is the closed vocabulary accepted on a result.
var ClassificationLabels = []string{LabelNormal, LabelCataract, LabelGlaucoma, LabelUnclassified}

// PatientResult is one classification outcome owned by a patient. The image
// blob lives in object storage at StoragePath; ImageURL is the retrievable
// reference embedded at creation time. Consult is true exactly when
// ConversationID is set.
type PatientResult struct {
	ID             string    `gorm:"primaryKey;column:id" json:"id"`
	UserID         string    `gorm:"column:user_id;not null;index" json:"user_id"`
	PatientName    string    `gorm:"size:100;column:patient_name" json:"patient_name"`
	Result         string    `gorm:"size:30;not null;column:result" json:"result"`
	Confidence     float64   `gorm:"column:confidence;not null" json:"confidence"`
	Timestamp      time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
	ImageURL       string    `gorm:"type:text;column:image_url" json:"image_url"`
	StoragePath    string    `gorm:"type:text;column:storage_path" json:"storage_path"`
	ConversationID *string   `gorm:"column:conversation_id" json:"conversation_id,omitempty"`
	Consult        bool      `gorm:"column:consult;not null;default:false" json:"consult"`
}

func (PatientResult) TableName() string {
	return "patient_results"
}
